package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/existflow/ironbill/internal/logger"
	"github.com/existflow/ironbill/internal/model"
)

// Snapshot collection names used with the Gateway
const (
	CollectionClients  = "clients"
	CollectionProjects = "projects"
	CollectionEntries  = "entries"
	CollectionInvoices = "invoices"
	CollectionTimer    = "timer"
)

// Collections lists every collection the tracker persists
var Collections = []string{
	CollectionClients,
	CollectionProjects,
	CollectionEntries,
	CollectionInvoices,
	CollectionTimer,
}

// Gateway loads and saves opaque collection snapshots.
// Load returns nil data and a nil error when the collection was never saved.
type Gateway interface {
	Load(ctx context.Context, collection string) ([]byte, error)
	Save(ctx context.Context, collection string, snapshot []byte) error
}

// State is the in-memory data set shared by every component
type State struct {
	Clients  []model.Client     `json:"clients"`
	Projects []model.Project    `json:"projects"`
	Entries  []model.TimeEntry  `json:"entries"`
	Invoices []model.Invoice    `json:"invoices"`
	Timer    *model.ActiveTimer `json:"timer"`
}

// Tracker owns the state and wires the engine components to it
type Tracker struct {
	state    *State
	gateway  Gateway
	now      func() time.Time
	warnings []error

	Entities *Entities
	Entries  *TimeEntries
	Timer    *Timer
	Invoices *Invoices
}

// Option configures a Tracker
type Option func(*Tracker)

// WithClock replaces time.Now as the tracker's time source
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// Open creates a tracker and loads every collection from gw.
// A nil gateway gives a memory-only tracker. Load failures never abort:
// the affected collection starts empty and a warning is recorded.
func Open(ctx context.Context, gw Gateway, opts ...Option) *Tracker {
	t := &Tracker{
		state:   &State{},
		gateway: gw,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}

	t.Entities = &Entities{t: t}
	t.Entries = &TimeEntries{t: t}
	t.Timer = &Timer{t: t}
	t.Invoices = &Invoices{t: t}

	if gw != nil {
		t.load(ctx)
	}

	logger.Debug("Tracker opened",
		logger.F("clients", len(t.state.Clients)),
		logger.F("projects", len(t.state.Projects)),
		logger.F("entries", len(t.state.Entries)),
		logger.F("invoices", len(t.state.Invoices)),
		logger.F("timer", t.state.Timer != nil))
	return t
}

// Warnings returns the non-fatal load problems seen while opening
func (t *Tracker) Warnings() []error {
	return append([]error(nil), t.warnings...)
}

// Now returns the tracker's current time
func (t *Tracker) Now() time.Time {
	return t.now()
}

func (t *Tracker) load(ctx context.Context) {
	for _, name := range Collections {
		data, err := t.gateway.Load(ctx, name)
		if err != nil {
			t.warn(fmt.Errorf("%w: load %s: %v", ErrPersistence, name, err))
			continue
		}
		if len(data) == 0 {
			continue
		}
		if err := json.Unmarshal(data, t.target(name)); err != nil {
			t.warn(fmt.Errorf("%w: decode %s: %v", ErrPersistence, name, err))
			t.reset(name)
		}
	}
}

func (t *Tracker) warn(err error) {
	logger.Warn("Collection unavailable, starting empty", logger.F("error", err))
	t.warnings = append(t.warnings, err)
}

// target returns the pointer a collection snapshot decodes into
func (t *Tracker) target(name string) interface{} {
	switch name {
	case CollectionClients:
		return &t.state.Clients
	case CollectionProjects:
		return &t.state.Projects
	case CollectionEntries:
		return &t.state.Entries
	case CollectionInvoices:
		return &t.state.Invoices
	case CollectionTimer:
		return &t.state.Timer
	}
	return nil
}

func (t *Tracker) reset(name string) {
	switch name {
	case CollectionClients:
		t.state.Clients = nil
	case CollectionProjects:
		t.state.Projects = nil
	case CollectionEntries:
		t.state.Entries = nil
	case CollectionInvoices:
		t.state.Invoices = nil
	case CollectionTimer:
		t.state.Timer = nil
	}
}

// persist saves the named collections. A failure is logged and returned
// wrapped in ErrPersistence; in-memory state is left as is.
func (t *Tracker) persist(ctx context.Context, names ...string) error {
	if t.gateway == nil {
		return nil
	}

	var firstErr error
	for _, name := range names {
		data, err := json.Marshal(t.target(name))
		if err == nil {
			err = t.gateway.Save(ctx, name, data)
		}
		if err != nil {
			logger.Warn("Failed to save collection", logger.F("collection", name), logger.F("error", err))
			if firstErr == nil {
				firstErr = fmt.Errorf("%w: save %s: %v", ErrPersistence, name, err)
			}
		}
	}
	return firstErr
}

// Save writes every collection through the gateway
func (t *Tracker) Save(ctx context.Context) error {
	return t.persist(ctx, Collections...)
}

// Reload discards in-memory state and loads it again from the gateway
func (t *Tracker) Reload(ctx context.Context) {
	t.state = &State{}
	t.warnings = nil
	if t.gateway != nil {
		t.load(ctx)
	}
}

// Snapshot returns a deep copy of the whole data set for read-only consumers
func (t *Tracker) Snapshot() State {
	s := State{
		Clients:  append([]model.Client(nil), t.state.Clients...),
		Projects: append([]model.Project(nil), t.state.Projects...),
		Entries:  cloneEntries(t.state.Entries),
		Invoices: make([]model.Invoice, len(t.state.Invoices)),
	}
	for i, inv := range t.state.Invoices {
		s.Invoices[i] = inv.Clone()
	}
	if t.state.Timer != nil {
		timer := t.state.Timer.Clone()
		s.Timer = &timer
	}
	return s
}

func cloneEntries(entries []model.TimeEntry) []model.TimeEntry {
	out := make([]model.TimeEntry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out
}
