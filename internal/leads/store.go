package leads

import (
	"context"
	"errors"
	"time"
)

// Lead lifecycle states.
const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusQualified = "qualified"
	StatusConverted = "converted"
	StatusLost      = "lost"
)

var (
	ErrNotFound         = errors.New("lead not found")
	ErrAlreadyConverted = errors.New("lead already converted")
)

// Lead is a prospective customer captured before a project exists.
type Lead struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone,omitempty"`
	Email          string    `json:"email,omitempty"`
	Location       string    `json:"location,omitempty"`
	EstimatedValue float64   `json:"estimated_value"`
	Status         string    `json:"status"`
	AssignedToID   string    `json:"assigned_to_id,omitempty"`
	AssignedToName string    `json:"assigned_to_name,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	ProjectID      string    `json:"project_id,omitempty"` // set on conversion
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Filter struct {
	Status       string
	AssignedToID string
}

// Update carries the mutable fields; nil means "leave unchanged".
type Update struct {
	Status         *string
	Notes          *string
	AssignedToID   *string
	AssignedToName *string
}

type Store interface {
	Create(ctx context.Context, l Lead) (*Lead, error)
	Get(ctx context.Context, id string) (*Lead, error)
	List(ctx context.Context, f Filter) ([]Lead, error)
	Update(ctx context.Context, id string, upd Update) (*Lead, error)
	// MarkConverted links the created project and flips the status.
	MarkConverted(ctx context.Context, id, projectID string) (*Lead, error)
}

func ValidStatus(s string) bool {
	switch s {
	case StatusNew, StatusContacted, StatusQualified, StatusConverted, StatusLost:
		return true
	}
	return false
}
