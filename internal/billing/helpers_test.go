package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/existflow/ironbill/internal/model"
)

// fakeClock is a settable time source
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// memGateway keeps snapshots in a map and can be told to fail
type memGateway struct {
	data     map[string][]byte
	saves    map[string]int
	failSave bool
	failLoad bool
}

func newMemGateway() *memGateway {
	return &memGateway{data: map[string][]byte{}, saves: map[string]int{}}
}

func (g *memGateway) Load(_ context.Context, collection string) ([]byte, error) {
	if g.failLoad {
		return nil, errors.New("disk on fire")
	}
	return g.data[collection], nil
}

func (g *memGateway) Save(_ context.Context, collection string, snapshot []byte) error {
	if g.failSave {
		return errors.New("disk full")
	}
	g.data[collection] = append([]byte(nil), snapshot...)
	g.saves[collection]++
	return nil
}

var epoch = time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

// fixture is a tracker with one client and one active project at 75/h
type fixture struct {
	ctx     context.Context
	clock   *fakeClock
	gw      *memGateway
	tracker *Tracker
	client  model.Client
	project model.Project
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		ctx:   context.Background(),
		clock: &fakeClock{now: epoch},
		gw:    newMemGateway(),
	}
	f.tracker = Open(f.ctx, f.gw, WithClock(f.clock.Now))

	var err error
	f.client, err = f.tracker.Entities.AddClient(f.ctx, model.Client{Name: "Acme Corp", Email: "contact@acmecorp.com"})
	if err != nil {
		t.Fatalf("AddClient: %v", err)
	}
	f.project, err = f.tracker.Entities.AddProject(f.ctx, model.Project{
		ClientID:   f.client.ID,
		Name:       "Website Redesign",
		HourlyRate: 75,
	})
	if err != nil {
		t.Fatalf("AddProject: %v", err)
	}
	return f
}

func (f *fixture) manual(t *testing.T, start, end time.Time) model.TimeEntry {
	t.Helper()
	e, err := f.tracker.Timer.AddManualEntry(f.ctx, f.project.ID, start, end, "")
	if err != nil {
		t.Fatalf("AddManualEntry: %v", err)
	}
	return e
}

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func approx(a, b float64) bool {
	const eps = 1e-9
	d := a - b
	return d < eps && d > -eps
}
