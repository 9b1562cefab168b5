package sync

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	stdsync "sync"
	"testing"
	"time"

	"github.com/existflow/ironbill/internal/billing"
	"github.com/existflow/ironbill/internal/model"
)

// backupServer is a minimal in-memory stand-in for the backup API
type backupServer struct {
	mu        stdsync.Mutex
	token     string
	snapshots map[string]model.Snapshot
	loggedOut bool
}

func newBackupServer(t *testing.T) (*backupServer, *httptest.Server) {
	t.Helper()
	b := &backupServer{token: "tok-123", snapshots: map[string]model.Snapshot{}}

	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, status int, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+b.token {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
				return
			}
			h(w, r)
		}
	}

	mux.HandleFunc("POST /api/v1/register", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"token": b.token, "user_id": "u1"})
	})
	mux.HandleFunc("POST /api/v1/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": b.token, "user_id": "u1"})
	})
	mux.HandleFunc("POST /api/v1/logout", authed(func(w http.ResponseWriter, r *http.Request) {
		b.loggedOut = true
		writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
	}))
	mux.HandleFunc("GET /api/v1/snapshots", authed(func(w http.ResponseWriter, r *http.Request) {
		var list []model.Snapshot
		for _, s := range b.snapshots {
			s.Data = ""
			list = append(list, s)
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"snapshots": list})
	}))
	mux.HandleFunc("GET /api/v1/snapshots/{name}", authed(func(w http.ResponseWriter, r *http.Request) {
		s, ok := b.snapshots[r.PathValue("name")]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "snapshot not found"})
			return
		}
		writeJSON(w, http.StatusOK, s)
	}))
	mux.HandleFunc("PUT /api/v1/snapshots/{name}", authed(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Data string `json:"data"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		name := r.PathValue("name")
		s := b.snapshots[name]
		s.Collection = name
		s.Data = body.Data
		s.Version++
		s.UpdatedAt = time.Now()
		b.snapshots[name] = s
		writeJSON(w, http.StatusOK, s)
	}))
	mux.HandleFunc("POST /api/v1/clear", authed(func(w http.ResponseWriter, r *http.Request) {
		b.snapshots = map[string]model.Snapshot{}
		writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
	}))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return b, srv
}

type mapStore map[string][]byte

func (m mapStore) Load(_ context.Context, name string) ([]byte, error) { return m[name], nil }
func (m mapStore) Save(_ context.Context, name string, data []byte) error {
	m[name] = data
	return nil
}

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	c := NewClientAt(filepath.Join(t.TempDir(), "sync.json"))
	if err := c.SetServer(serverURL + "/"); err != nil {
		t.Fatalf("SetServer: %v", err)
	}
	return c
}

func TestPushPullRoundTrip(t *testing.T) {
	ctx := context.Background()
	remote, srv := newBackupServer(t)
	c := newTestClient(t, srv.URL)

	if err := c.Register(ctx, "alice", "alice@example.com", "secret"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := c.GenerateEncryptionKey("backup-pw"); err != nil {
		t.Fatalf("GenerateEncryptionKey: %v", err)
	}
	crypto, err := c.GetCrypto("backup-pw")
	if err != nil {
		t.Fatalf("GetCrypto: %v", err)
	}

	// A real tracker produces the snapshots
	local := mapStore{}
	tr := billing.Open(ctx, local)
	client, _ := tr.Entities.AddClient(ctx, model.Client{Name: "Acme Corp"})
	if _, err := tr.Entities.AddProject(ctx, model.Project{ClientID: client.ID, Name: "Website", HourlyRate: 75}); err != nil {
		t.Fatalf("AddProject: %v", err)
	}

	pushed, err := c.Push(ctx, local, crypto)
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if len(pushed.Collections) != 2 {
		t.Errorf("pushed %v, want clients and projects", pushed.Collections)
	}
	remote.mu.Lock()
	for name, s := range remote.snapshots {
		if string(local[name]) == s.Data {
			t.Errorf("%s stored in plaintext", name)
		}
	}
	remote.mu.Unlock()

	restored := mapStore{}
	pulled, err := c.Pull(ctx, restored, crypto)
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if len(pulled.Collections) != 2 {
		t.Errorf("pulled %v", pulled.Collections)
	}

	tr2 := billing.Open(ctx, restored)
	if got, err := tr2.Entities.FindProject("website"); err != nil || got.HourlyRate != 75 {
		t.Errorf("restored project = %+v, %v", got, err)
	}

	st := c.Status()
	if !st.LoggedIn || !st.HasKey || st.LastPush.IsZero() || st.LastPull.IsZero() {
		t.Errorf("Status = %+v", st)
	}
}

func TestPullWithWrongKeyWritesNothing(t *testing.T) {
	ctx := context.Background()
	_, srv := newBackupServer(t)
	c := newTestClient(t, srv.URL)
	if err := c.Login(ctx, "alice", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	salt := []byte("0123456789abcdef")
	if _, err := c.Push(ctx, mapStore{"clients": []byte("[]")}, NewCrypto("one", salt)); err != nil {
		t.Fatalf("Push: %v", err)
	}

	store := mapStore{}
	if _, err := c.Pull(ctx, store, NewCrypto("two", salt)); !errors.Is(err, ErrDecrypt) {
		t.Fatalf("err = %v, want ErrDecrypt", err)
	}
	if len(store) != 0 {
		t.Errorf("store written despite failed decrypt: %v", store)
	}
}

func TestLoginFailureReportsServerMessage(t *testing.T) {
	_, srv := newBackupServer(t)
	c := newTestClient(t, srv.URL)

	err := c.Login(context.Background(), "alice", "nope")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized || apiErr.Message != "invalid credentials" {
		t.Fatalf("err = %v", err)
	}
	if c.IsLoggedIn() {
		t.Error("logged in after failed login")
	}
}

func TestNotLoggedIn(t *testing.T) {
	c := NewClientAt(filepath.Join(t.TempDir(), "sync.json"))
	if _, err := c.Push(context.Background(), mapStore{}, nil); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("Push: err = %v", err)
	}
	if err := c.ClearRemote(context.Background()); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("ClearRemote: err = %v", err)
	}
}

func TestLogoutClearsSessionAndPersists(t *testing.T) {
	ctx := context.Background()
	remote, srv := newBackupServer(t)
	path := filepath.Join(t.TempDir(), "sync.json")
	c := NewClientAt(path)
	_ = c.SetServer(srv.URL)
	if err := c.Login(ctx, "alice", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	if !NewClientAt(path).IsLoggedIn() {
		t.Fatal("session not persisted")
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("sync.json mode = %v, want 0600", info.Mode().Perm())
	}

	if err := c.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	remote.mu.Lock()
	defer remote.mu.Unlock()
	if !remote.loggedOut {
		t.Error("server session not ended")
	}
	if NewClientAt(path).IsLoggedIn() {
		t.Error("session still stored after logout")
	}
}

func TestGetCryptoRejectsWrongPassword(t *testing.T) {
	c := NewClientAt(filepath.Join(t.TempDir(), "sync.json"))
	if _, err := c.GetCrypto("pw"); err == nil {
		t.Fatal("GetCrypto succeeded without a key")
	}
	if _, err := c.GenerateEncryptionKey("pw"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.GetCrypto("other"); err == nil {
		t.Error("GetCrypto accepted the wrong password")
	}
}

func TestSharedSaltDerivesSameKey(t *testing.T) {
	a := NewClientAt(filepath.Join(t.TempDir(), "a.json"))
	b := NewClientAt(filepath.Join(t.TempDir(), "b.json"))

	keyA, err := a.GenerateEncryptionKey("pw-12345678")
	if err != nil {
		t.Fatal(err)
	}
	keyB, err := b.SetEncryptionKey("pw-12345678", a.Salt())
	if err != nil {
		t.Fatalf("SetEncryptionKey: %v", err)
	}
	if keyA != keyB {
		t.Errorf("fingerprints differ: %s vs %s", keyA, keyB)
	}

	ca, _ := a.GetCrypto("pw-12345678")
	cb, _ := b.GetCrypto("pw-12345678")
	enc, _ := ca.Encrypt([]byte("entries"))
	if got, err := cb.Decrypt(enc); err != nil || string(got) != "entries" {
		t.Errorf("cross-device decrypt = %q, %v", got, err)
	}

	if _, err := b.SetEncryptionKey("pw", "not base64!"); err == nil {
		t.Error("accepted a malformed salt")
	}
}
