package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	ctxUserID = "user_id"
	ctxToken  = "token"
)

// authMiddleware checks for valid session token
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		auth := c.Request().Header.Get("Authorization")
		if auth == "" {
			return jsonError(c, http.StatusUnauthorized, "authorization required")
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth || token == "" {
			return jsonError(c, http.StatusUnauthorized, "invalid authorization format")
		}

		session, err := s.store.SessionByToken(c.Request().Context(), token)
		if errors.Is(err, ErrNotFound) {
			return jsonError(c, http.StatusUnauthorized, "invalid token")
		}
		if err != nil {
			return internalError(c, "session lookup", err)
		}

		if s.now().After(session.ExpiresAt) {
			return jsonError(c, http.StatusUnauthorized, "token expired")
		}

		c.Set(ctxUserID, session.UserID)
		c.Set(ctxToken, token)
		return next(c)
	}
}

func userID(c echo.Context) string {
	id, _ := c.Get(ctxUserID).(string)
	return id
}
