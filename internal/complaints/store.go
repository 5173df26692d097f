package complaints

import (
	"context"
	"errors"
	"time"
)

const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusClosed     = "closed"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

var ErrNotFound = errors.New("complaint not found")

// Complaint is a post-installation service ticket raised against a project.
type Complaint struct {
	ID             string    `json:"id"`
	ProjectID      string    `json:"project_id,omitempty"`
	CustomerName   string    `json:"customer_name"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	Status         string    `json:"status"`
	Priority       string    `json:"priority"`
	TechnicianID   string    `json:"technician_id,omitempty"`
	TechnicianName string    `json:"technician_name,omitempty"`
	Resolution     string    `json:"resolution,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Filter struct {
	Status       string
	Priority     string
	ProjectID    string
	TechnicianID string
}

type Update struct {
	Status         *string
	Priority       *string
	TechnicianID   *string
	TechnicianName *string
	Resolution     *string
}

type Store interface {
	Create(ctx context.Context, cm Complaint) (*Complaint, error)
	Get(ctx context.Context, id string) (*Complaint, error)
	List(ctx context.Context, f Filter) ([]Complaint, error)
	Update(ctx context.Context, id string, upd Update) (*Complaint, error)
}

func ValidStatus(s string) bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}
