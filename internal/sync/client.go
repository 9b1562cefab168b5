package sync

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/existflow/ironbill/internal/config"
	"github.com/existflow/ironbill/internal/logger"
)

// Config holds sync configuration
type Config struct {
	ServerURL     string `json:"server_url"`
	Token         string `json:"token"`
	UserID        string `json:"user_id"`
	Username      string `json:"username,omitempty"`
	LastPush      int64  `json:"last_push"`
	LastPull      int64  `json:"last_pull"`
	EncryptionKey string `json:"encryption_key,omitempty"` // Display fingerprint of the derived key
	Salt          string `json:"salt,omitempty"`           // Base64 encoded salt for key derivation
}

// Status is a read-only view of the client configuration
type Status struct {
	ServerURL string
	UserID    string
	Username  string
	LoggedIn  bool
	HasKey    bool
	LastPush  time.Time
	LastPull  time.Time
}

// Client is the backup client
type Client struct {
	config     *Config
	configPath string
	httpClient *http.Client
}

// NewClient creates a backup client using sync.json in the data directory
func NewClient() (*Client, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return NewClientAt(filepath.Join(dir, "sync.json")), nil
}

// NewClientAt creates a backup client whose settings live at configPath
func NewClientAt(configPath string) *Client {
	c := &Client{
		configPath: configPath,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	c.loadConfig()
	return c
}

func (c *Client) loadConfig() {
	c.config = &Config{ServerURL: "http://localhost:8080"}

	data, err := os.ReadFile(c.configPath)
	if err != nil {
		return
	}
	if err := json.Unmarshal(data, c.config); err != nil {
		logger.Warn("Ignoring unreadable sync config", logger.F("path", c.configPath), logger.F("error", err))
		c.config = &Config{ServerURL: "http://localhost:8080"}
	}
}

func (c *Client) saveConfig() error {
	dir := filepath.Dir(c.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c.config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.configPath, data, 0600)
}

// SetServer sets the backup server URL
func (c *Client) SetServer(url string) error {
	c.config.ServerURL = strings.TrimRight(url, "/")
	return c.saveConfig()
}

// IsLoggedIn returns true if user is logged in
func (c *Client) IsLoggedIn() bool {
	return c.config.Token != ""
}

// Status returns the current client state
func (c *Client) Status() Status {
	s := Status{
		ServerURL: c.config.ServerURL,
		UserID:    c.config.UserID,
		Username:  c.config.Username,
		LoggedIn:  c.IsLoggedIn(),
		HasKey:    c.config.Salt != "",
	}
	if c.config.LastPush > 0 {
		s.LastPush = time.Unix(c.config.LastPush, 0)
	}
	if c.config.LastPull > 0 {
		s.LastPull = time.Unix(c.config.LastPull, 0)
	}
	return s
}

type authResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// Register creates a new account and stores its session
func (c *Client) Register(ctx context.Context, username, email, password string) error {
	var result authResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, &result)
	if err != nil {
		return fmt.Errorf("register failed: %w", err)
	}

	c.config.Token = result.Token
	c.config.UserID = result.UserID
	c.config.Username = username
	return c.saveConfig()
}

// Login authenticates with username and password
func (c *Client) Login(ctx context.Context, username, password string) error {
	var result authResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/login", map[string]string{
		"username": username,
		"password": password,
	}, &result)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	c.config.Token = result.Token
	c.config.UserID = result.UserID
	c.config.Username = username
	return c.saveConfig()
}

// Logout ends the server session, if reachable, and clears it locally
func (c *Client) Logout(ctx context.Context) error {
	if c.IsLoggedIn() {
		if err := c.do(ctx, http.MethodPost, "/api/v1/logout", nil, nil); err != nil {
			logger.Warn("Server logout failed", logger.F("error", err))
		}
	}

	c.config.Token = ""
	c.config.UserID = ""
	c.config.Username = ""
	c.config.LastPush = 0
	c.config.LastPull = 0
	return c.saveConfig()
}

// GetEncryptionKey returns the fingerprint of the configured key
func (c *Client) GetEncryptionKey() string {
	return c.config.EncryptionKey
}

// GenerateEncryptionKey derives a new key from password under a fresh salt.
// Backups pushed under an older key can no longer be decrypted.
func (c *Client) GenerateEncryptionKey(password string) (string, error) {
	salt, err := GenerateSalt()
	if err != nil {
		return "", err
	}
	return c.SetEncryptionKey(password, base64.StdEncoding.EncodeToString(salt))
}

// SetEncryptionKey configures the key from password and a salt exported by
// another device, so both derive the same key
func (c *Client) SetEncryptionKey(password, salt string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(salt))
	if err != nil || len(raw) != saltSize {
		return "", fmt.Errorf("invalid salt")
	}

	c.config.Salt = base64.StdEncoding.EncodeToString(raw)
	c.config.EncryptionKey = DeriveKeyDisplay(password, raw)

	if err := c.saveConfig(); err != nil {
		return "", err
	}

	return c.config.EncryptionKey, nil
}

// Salt returns the base64 salt to copy to other devices
func (c *Client) Salt() string {
	return c.config.Salt
}

// GetCrypto returns a Crypto instance for encryption/decryption
func (c *Client) GetCrypto(password string) (*Crypto, error) {
	if c.config.Salt == "" {
		return nil, fmt.Errorf("no encryption key configured, run 'ironbill backup key' first")
	}

	salt, err := base64.StdEncoding.DecodeString(c.config.Salt)
	if err != nil {
		return nil, err
	}

	if c.config.EncryptionKey != "" && DeriveKeyDisplay(password, salt) != c.config.EncryptionKey {
		return nil, fmt.Errorf("wrong encryption password")
	}

	return NewCrypto(password, salt), nil
}

// do sends a JSON request and decodes a JSON response into out
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	url := c.config.ServerURL + path
	logger.Debug("HTTP Request", logger.F("method", method), logger.F("url", url))

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("HTTP request failed", logger.F("error", err), logger.F("url", url))
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	logger.Debug("HTTP Response", logger.F("status", resp.StatusCode), logger.F("url", url))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
		}
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// APIError is a non-2xx reply from the backup server
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
}
