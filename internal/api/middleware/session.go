package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/akilawedasinghe/symetrix/internal/core/domain"
	"github.com/akilawedasinghe/symetrix/internal/core/session"
)

// Revalidator checks a restored session against the directory and returns
// the identity the directory holds for it.
type Revalidator interface {
	Revalidate(ctx context.Context, sess *session.Session) (*domain.User, error)
}

// Session restores the session named by the token's sid from its snapshot
// and injects it into context. It must run after Auth. A token whose session
// was logged out no longer resolves. When v is set, role and tag come from
// the directory rather than the snapshot, and a session whose identity was
// deleted is rejected.
func Session(store session.SnapshotStore, v Revalidator, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid, _ := c.Get(KeySessionID).(string)
			if sid == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing session")
			}

			ctx := c.Request().Context()
			sess := session.New(sid, store)
			if err := sess.Restore(ctx); err != nil {
				if !errors.Is(err, session.ErrCorruptSnapshot) {
					return err
				}
				log.Warn().Err(err).Str("session_id", sid).Msg("discarded corrupt session snapshot")
			}

			user := sess.User()
			if user == nil || !sess.IsAuthenticated() {
				return echo.NewHTTPError(http.StatusUnauthorized, "session expired")
			}
			if sub, _ := c.Get(KeyUserID).(string); sub != user.ID {
				return echo.NewHTTPError(http.StatusUnauthorized, "session does not match token")
			}

			if v != nil {
				fresh, err := v.Revalidate(ctx, sess)
				if errors.Is(err, domain.ErrUnauthenticated) {
					return echo.NewHTTPError(http.StatusUnauthorized, "session identity no longer exists")
				}
				if err != nil {
					return err
				}
				user = fresh
			}

			c.Set(KeyRole, string(user.Role))
			c.Set(KeyERPSystem, string(user.ERPSystem))
			c.Set(KeySession, sess)

			return next(c)
		}
	}
}
