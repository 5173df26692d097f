package invoices

import (
	"context"
	"errors"
	"time"
)

// Billing milestones of the two-stage payment plan (70% advance before
// installation, 30% on completion).
const (
	MilestoneAdvance70 = "advance_70"
	MilestoneFinal30   = "final_30"
	MilestoneFull      = "full"
)

const (
	StatusDraft   = "draft"
	StatusSent    = "sent"
	StatusPaid    = "paid"
	StatusOverdue = "overdue"
)

var ErrNotFound = errors.New("invoice not found")

type Invoice struct {
	ID            string     `json:"id"`
	ProjectID     string     `json:"project_id"`
	InvoiceNumber string     `json:"invoice_number"`
	Milestone     string     `json:"milestone"`
	Amount        float64    `json:"amount"`
	Status        string     `json:"status"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type Filter struct {
	Status    string
	ProjectID string
}

type Store interface {
	Create(ctx context.Context, inv Invoice) (*Invoice, error)
	Get(ctx context.Context, id string) (*Invoice, error)
	List(ctx context.Context, f Filter) ([]Invoice, error)
	SetStatus(ctx context.Context, id, status string, paidAt *time.Time) (*Invoice, error)
	// MarkOverdue flips every sent invoice whose due date has passed and
	// returns how many were affected. Driven by the nightly job.
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

func ValidMilestone(m string) bool {
	switch m {
	case MilestoneAdvance70, MilestoneFinal30, MilestoneFull:
		return true
	}
	return false
}

func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

// AmountFor derives the invoice amount from the project value for a
// milestone.
func AmountFor(milestone string, projectValue float64) float64 {
	switch milestone {
	case MilestoneAdvance70:
		return projectValue * 0.7
	case MilestoneFinal30:
		return projectValue * 0.3
	default:
		return projectValue
	}
}
