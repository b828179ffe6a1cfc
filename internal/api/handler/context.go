package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/akilawedasinghe/symetrix/internal/api/middleware"
	"github.com/akilawedasinghe/symetrix/internal/core/ports"
	"github.com/akilawedasinghe/symetrix/internal/core/session"
)

// ctxSession extracts the session restored by the Session middleware and
// fails fast when it is missing or no longer authenticated.
func ctxSession(c echo.Context) (*session.Session, error) {
	sess, _ := c.Get(middleware.KeySession).(*session.Session)
	if sess == nil || !sess.IsAuthenticated() {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authenticated session")
	}
	return sess, nil
}

// ctxActor derives the ticket actor from the session identity.
func ctxActor(c echo.Context) (ports.Actor, error) {
	sess, err := ctxSession(c)
	if err != nil {
		return ports.Actor{}, err
	}
	return ports.ActorFromUser(*sess.User()), nil
}
