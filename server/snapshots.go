package server

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/existflow/ironbill/internal/logger"
	"github.com/labstack/echo/v4"
)

var collectionName = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,63}$`)

type putSnapshotRequest struct {
	Data string `json:"data"` // base64 ciphertext
}

// handleListSnapshots returns metadata for every stored collection
func (s *Server) handleListSnapshots(c echo.Context) error {
	snaps, err := s.store.ListSnapshots(c.Request().Context(), userID(c))
	if err != nil {
		return internalError(c, "list snapshots", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"snapshots": snaps})
}

// handleGetSnapshot returns one collection including its ciphertext
func (s *Server) handleGetSnapshot(c echo.Context) error {
	name := c.Param("collection")
	if !collectionName.MatchString(name) {
		return jsonError(c, http.StatusBadRequest, "invalid collection name")
	}

	snap, err := s.store.GetSnapshot(c.Request().Context(), userID(c), name)
	if errors.Is(err, ErrNotFound) {
		return jsonError(c, http.StatusNotFound, "snapshot not found")
	}
	if err != nil {
		return internalError(c, "get snapshot", err)
	}
	return c.JSON(http.StatusOK, snap)
}

// handlePutSnapshot replaces a collection and returns its new version
func (s *Server) handlePutSnapshot(c echo.Context) error {
	name := c.Param("collection")
	if !collectionName.MatchString(name) {
		return jsonError(c, http.StatusBadRequest, "invalid collection name")
	}

	var req putSnapshotRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request")
	}
	if req.Data == "" {
		return jsonError(c, http.StatusBadRequest, "data required")
	}

	snap, err := s.store.PutSnapshot(c.Request().Context(), userID(c), name, req.Data)
	if err != nil {
		return internalError(c, "put snapshot", err)
	}

	logger.Info("Snapshot stored",
		logger.F("user", userID(c)),
		logger.F("collection", name),
		logger.F("version", snap.Version),
		logger.F("size", len(req.Data)))
	return c.JSON(http.StatusOK, snap)
}

// handleClear deletes every snapshot of the user
func (s *Server) handleClear(c echo.Context) error {
	n, err := s.store.ClearSnapshots(c.Request().Context(), userID(c))
	if err != nil {
		return internalError(c, "clear snapshots", err)
	}

	logger.Info("Snapshots cleared", logger.F("user", userID(c)), logger.F("count", n))
	return c.JSON(http.StatusOK, map[string]interface{}{"status": "cleared", "deleted": n})
}
