package model

import "time"

// InvoiceStatus is the payment state of an invoice
type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "draft"
	InvoiceSent    InvoiceStatus = "sent"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOverdue InvoiceStatus = "overdue"
)

// InvoiceStatuses lists every valid invoice status in display order
var InvoiceStatuses = []InvoiceStatus{InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceOverdue}

// Valid reports whether s is a known invoice status
func (s InvoiceStatus) Valid() bool {
	for _, v := range InvoiceStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Next returns the following status in display order, wrapping around
func (s InvoiceStatus) Next() InvoiceStatus {
	for i, v := range InvoiceStatuses {
		if s == v {
			return InvoiceStatuses[(i+1)%len(InvoiceStatuses)]
		}
	}
	return InvoiceDraft
}

// Invoice is a frozen snapshot of billable time for a project over a date range.
// Only Status may change after creation.
type Invoice struct {
	ID          string        `json:"id"`
	ClientID    string        `json:"client_id"`
	ProjectID   string        `json:"project_id"`
	StartDate   time.Time     `json:"start_date"`
	EndDate     time.Time     `json:"end_date"`
	Entries     []TimeEntry   `json:"entries"`
	TotalHours  float64       `json:"total_hours"`
	HourlyRate  float64       `json:"hourly_rate"`
	TotalAmount float64       `json:"total_amount"`
	Status      InvoiceStatus `json:"status"`
	Notes       string        `json:"notes,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Number returns the human facing invoice number
func (i Invoice) Number() string {
	id := i.ID
	if len(id) > 6 {
		id = id[:6]
	}
	return "INV-" + id
}

// Clone returns a deep copy of the invoice including its entries
func (i Invoice) Clone() Invoice {
	entries := make([]TimeEntry, len(i.Entries))
	for k, e := range i.Entries {
		entries[k] = e.Clone()
	}
	i.Entries = entries
	return i
}
