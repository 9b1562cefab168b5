package server

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/existflow/ironbill/internal/logger"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	UserID    string `json:"user_id"`
}

// handleRegister handles user registration
func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request")
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return jsonError(c, http.StatusBadRequest, "username, email, and password required")
	}
	if len(req.Password) < 8 {
		return jsonError(c, http.StatusBadRequest, "password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return internalError(c, "bcrypt", err)
	}

	user, err := s.store.CreateUser(c.Request().Context(), req.Username, req.Email, string(hash))
	if errors.Is(err, ErrConflict) {
		return jsonError(c, http.StatusConflict, "username or email already exists")
	}
	if err != nil {
		return internalError(c, "create user", err)
	}

	token, expiresAt, err := s.createSession(c, user.ID)
	if err != nil {
		return internalError(c, "create session", err)
	}

	logger.Info("User registered", logger.F("username", user.Username), logger.F("id", user.ID))
	return c.JSON(http.StatusOK, authResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
		UserID:    user.ID,
	})
}

// handleLogin handles user login
func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request")
	}

	user, err := s.store.UserByUsername(c.Request().Context(), strings.TrimSpace(req.Username))
	if errors.Is(err, ErrNotFound) {
		return jsonError(c, http.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		return internalError(c, "find user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return jsonError(c, http.StatusUnauthorized, "invalid credentials")
	}

	token, expiresAt, err := s.createSession(c, user.ID)
	if err != nil {
		return internalError(c, "create session", err)
	}

	logger.Info("User logged in", logger.F("username", user.Username))
	return c.JSON(http.StatusOK, authResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
		UserID:    user.ID,
	})
}

// handleLogout ends the session used for the request
func (s *Server) handleLogout(c echo.Context) error {
	token, _ := c.Get(ctxToken).(string)
	if err := s.store.DeleteSession(c.Request().Context(), token); err != nil {
		return internalError(c, "delete session", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "logged out"})
}

// handleMe returns current user info
func (s *Server) handleMe(c echo.Context) error {
	user, err := s.store.UserByID(c.Request().Context(), userID(c))
	if errors.Is(err, ErrNotFound) {
		return jsonError(c, http.StatusNotFound, "user not found")
	}
	if err != nil {
		return internalError(c, "find user", err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

// createSession creates a new session for a user
func (s *Server) createSession(c echo.Context, userID string) (string, time.Time, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", time.Time{}, err
	}
	token := hex.EncodeToString(tokenBytes)
	expiresAt := s.now().Add(sessionTTL)

	err := s.store.CreateSession(c.Request().Context(), userID, token, expiresAt)
	return token, expiresAt, err
}

func internalError(c echo.Context, op string, err error) error {
	logger.Error("Request failed", logger.F("op", op), logger.F("error", err), logger.F("uri", c.Request().RequestURI))
	return jsonError(c, http.StatusInternalServerError, "internal error")
}
