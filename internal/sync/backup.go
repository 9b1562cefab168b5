package sync

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/existflow/ironbill/internal/billing"
	"github.com/existflow/ironbill/internal/logger"
	"github.com/existflow/ironbill/internal/model"
)

// ErrNotLoggedIn is returned by backup calls made without a session
var ErrNotLoggedIn = errors.New("not logged in, run 'ironbill auth login' first")

// Result holds backup statistics
type Result struct {
	Collections []string
	Bytes       int
}

type snapshotList struct {
	Snapshots []model.Snapshot `json:"snapshots"`
}

// Push encrypts every stored collection and uploads it, replacing the
// server copy. Collections never saved locally are skipped.
func (c *Client) Push(ctx context.Context, store billing.Gateway, crypto *Crypto) (*Result, error) {
	if !c.IsLoggedIn() {
		return nil, ErrNotLoggedIn
	}

	result := &Result{}
	for _, name := range billing.Collections {
		data, err := store.Load(ctx, name)
		if err != nil {
			return result, fmt.Errorf("failed to read %s: %w", name, err)
		}
		if data == nil {
			continue
		}

		enc, err := crypto.Encrypt(data)
		if err != nil {
			return result, fmt.Errorf("failed to encrypt %s: %w", name, err)
		}

		var stored model.Snapshot
		err = c.do(ctx, http.MethodPut, "/api/v1/snapshots/"+url.PathEscape(name),
			map[string]string{"data": enc}, &stored)
		if err != nil {
			return result, fmt.Errorf("push %s: %w", name, err)
		}

		logger.Debug("Pushed collection", logger.F("collection", name), logger.F("version", stored.Version))
		result.Collections = append(result.Collections, name)
		result.Bytes += len(data)
	}

	c.config.LastPush = time.Now().Unix()
	_ = c.saveConfig()

	logger.Info("Push completed", logger.F("collections", len(result.Collections)), logger.F("bytes", result.Bytes))
	return result, nil
}

// Pull downloads and decrypts every known collection on the server and
// writes them into store. Nothing is written unless all of them decrypt.
func (c *Client) Pull(ctx context.Context, store billing.Gateway, crypto *Crypto) (*Result, error) {
	if !c.IsLoggedIn() {
		return nil, ErrNotLoggedIn
	}

	remote, err := c.Remote(ctx)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(billing.Collections))
	for _, name := range billing.Collections {
		known[name] = true
	}

	decoded := make(map[string][]byte)
	var order []string
	for _, info := range remote {
		if !known[info.Collection] {
			logger.Warn("Skipping unknown remote collection", logger.F("collection", info.Collection))
			continue
		}

		var snap model.Snapshot
		if err := c.do(ctx, http.MethodGet, "/api/v1/snapshots/"+url.PathEscape(info.Collection), nil, &snap); err != nil {
			return nil, fmt.Errorf("pull %s: %w", info.Collection, err)
		}
		data, err := crypto.Decrypt(snap.Data)
		if err != nil {
			return nil, fmt.Errorf("pull %s: %w", info.Collection, err)
		}
		decoded[info.Collection] = data
		order = append(order, info.Collection)
	}

	result := &Result{}
	for _, name := range order {
		if err := store.Save(ctx, name, decoded[name]); err != nil {
			return result, fmt.Errorf("failed to store %s: %w", name, err)
		}
		result.Collections = append(result.Collections, name)
		result.Bytes += len(decoded[name])
	}

	c.config.LastPull = time.Now().Unix()
	_ = c.saveConfig()

	logger.Info("Pull completed", logger.F("collections", len(result.Collections)), logger.F("bytes", result.Bytes))
	return result, nil
}

// Remote lists the snapshots stored on the server, without their data
func (c *Client) Remote(ctx context.Context) ([]model.Snapshot, error) {
	if !c.IsLoggedIn() {
		return nil, ErrNotLoggedIn
	}

	var list snapshotList
	if err := c.do(ctx, http.MethodGet, "/api/v1/snapshots", nil, &list); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return list.Snapshots, nil
}

// ClearRemote deletes every snapshot stored for the account
func (c *Client) ClearRemote(ctx context.Context) error {
	if !c.IsLoggedIn() {
		return ErrNotLoggedIn
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/clear", nil, nil); err != nil {
		return fmt.Errorf("clear remote: %w", err)
	}
	logger.Info("Remote backup cleared")
	return nil
}
