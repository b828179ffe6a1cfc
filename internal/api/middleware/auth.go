package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys set by Auth and Session.
const (
	KeySessionID = "sid"
	KeyUserID    = "user_id"
	KeyRole      = "role"
	KeyERPSystem = "erp_system"
	KeySession   = "session"
)

// Auth validates the JWT and injects claims into context.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			sid, _ := claims["sid"].(string)
			sub, _ := claims["sub"].(string)
			if sid == "" || sub == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token missing session identity")
			}

			c.Set(KeySessionID, sid)
			c.Set(KeyUserID, sub)
			c.Set(KeyRole, claims["role"])
			c.Set(KeyERPSystem, claims["erp_system"])

			return next(c)
		}
	}
}
