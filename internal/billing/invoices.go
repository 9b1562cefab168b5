package billing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/existflow/ironbill/internal/logger"
	"github.com/existflow/ironbill/internal/model"
	"github.com/google/uuid"
)

// GenerateParams selects the work billed by a new invoice
type GenerateParams struct {
	ClientID  string
	ProjectID string
	StartDate time.Time
	EndDate   time.Time // inclusive through 23:59:59 of this day
	Notes     string
}

// Invoices creates invoices from tracked time and tracks their status
type Invoices struct {
	t *Tracker
}

// Generate materialises a draft invoice for the project's entries that start
// within the date range. The entries and the project's current rate are
// copied into the invoice, so later edits never change it. A range with no
// entries yields a zero invoice. An unknown client or project returns
// ErrNotFound; ErrValidation is returned when the project belongs to another
// client or the range ends before it starts.
func (iv *Invoices) Generate(ctx context.Context, params GenerateParams) (model.Invoice, error) {
	if _, err := iv.t.Entities.GetClient(params.ClientID); err != nil {
		return model.Invoice{}, err
	}
	project, err := iv.t.Entities.GetProject(params.ProjectID)
	if err != nil {
		return model.Invoice{}, err
	}
	if project.ClientID != params.ClientID {
		return model.Invoice{}, fmt.Errorf("%w: project %s is not billed to client %s",
			ErrValidation, params.ProjectID, params.ClientID)
	}

	rangeEnd := EndOfDay(params.EndDate)
	if rangeEnd.Before(params.StartDate) {
		return model.Invoice{}, fmt.Errorf("%w: end date before start date", ErrValidation)
	}

	var (
		entries []model.TimeEntry
		seconds int64
	)
	for _, e := range iv.t.Entries.ListByProject(params.ProjectID) {
		if inRange(e.StartTime, params.StartDate, rangeEnd) {
			entries = append(entries, e)
			seconds += e.Duration
		}
	}
	if entries == nil {
		entries = []model.TimeEntry{}
	}

	hours := float64(seconds) / 3600
	inv := model.Invoice{
		ID:          uuid.New().String(),
		ClientID:    params.ClientID,
		ProjectID:   params.ProjectID,
		StartDate:   params.StartDate,
		EndDate:     params.EndDate,
		Entries:     entries,
		TotalHours:  hours,
		HourlyRate:  project.HourlyRate,
		TotalAmount: hours * project.HourlyRate,
		Status:      model.InvoiceDraft,
		Notes:       params.Notes,
		CreatedAt:   iv.t.now(),
	}
	iv.t.state.Invoices = append(iv.t.state.Invoices, inv)

	logger.Info("Invoice generated",
		logger.F("id", inv.ID),
		logger.F("project", inv.ProjectID),
		logger.F("entries", len(inv.Entries)),
		logger.F("hours", inv.TotalHours),
		logger.F("amount", inv.TotalAmount))
	return inv.Clone(), iv.t.persist(ctx, CollectionInvoices)
}

// UpdateStatus sets an invoice's status. Any known status is accepted from
// any other; no payment workflow order is enforced.
func (iv *Invoices) UpdateStatus(ctx context.Context, id string, status model.InvoiceStatus) (model.Invoice, error) {
	if !status.Valid() {
		return model.Invoice{}, fmt.Errorf("%w: unknown invoice status %q", ErrValidation, status)
	}
	i := iv.index(id)
	if i < 0 {
		return model.Invoice{}, fmt.Errorf("%w: invoice %s", ErrNotFound, id)
	}

	old := iv.t.state.Invoices[i].Status
	iv.t.state.Invoices[i].Status = status

	logger.Info("Invoice status changed", logger.F("id", id), logger.F("from", old), logger.F("to", status))
	return iv.t.state.Invoices[i].Clone(), iv.t.persist(ctx, CollectionInvoices)
}

// Get returns the invoice with the given id
func (iv *Invoices) Get(id string) (model.Invoice, error) {
	i := iv.index(id)
	if i < 0 {
		return model.Invoice{}, fmt.Errorf("%w: invoice %s", ErrNotFound, id)
	}
	return iv.t.state.Invoices[i].Clone(), nil
}

// Find resolves an invoice by id, id prefix or invoice number
func (iv *Invoices) Find(ref string) (model.Invoice, error) {
	ids := make([]string, len(iv.t.state.Invoices))
	numbers := make([]string, len(iv.t.state.Invoices))
	for i, inv := range iv.t.state.Invoices {
		ids[i] = inv.ID
		numbers[i] = inv.Number()
	}
	i, err := resolveRef(ref, ids, numbers)
	if err != nil {
		return model.Invoice{}, fmt.Errorf("invoice %s: %w", ref, err)
	}
	return iv.t.state.Invoices[i].Clone(), nil
}

// List returns all invoices, newest first
func (iv *Invoices) List() []model.Invoice {
	out := make([]model.Invoice, len(iv.t.state.Invoices))
	for i, inv := range iv.t.state.Invoices {
		out[i] = inv.Clone()
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (iv *Invoices) index(id string) int {
	for i, inv := range iv.t.state.Invoices {
		if inv.ID == id {
			return i
		}
	}
	return -1
}

// StartOfDay returns midnight at the start of t's calendar day
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59 of t's calendar day
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}
