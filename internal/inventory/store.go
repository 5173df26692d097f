package inventory

import (
	"context"
	"errors"
	"time"
)

// Equipment categories tracked by serial number.
const (
	TypePanel    = "panel"
	TypeInverter = "inverter"
	TypeBattery  = "battery"
	TypeMeter    = "meter"
)

// Item lifecycle states.
const (
	StatusAvailable = "available"
	StatusAssigned  = "assigned"
	StatusInstalled = "installed"
	StatusFaulty    = "faulty"
)

var (
	ErrNotFound        = errors.New("inventory item not found")
	ErrDuplicateSerial = errors.New("serial number already registered")
)

// Item is a single piece of equipment identified by its serial number.
type Item struct {
	ID           string    `json:"id"`
	SerialNumber string    `json:"serial_number"`
	ItemType     string    `json:"item_type"`
	Status       string    `json:"status"`
	ProjectID    string    `json:"project_id,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Filter narrows List results; zero values mean "no constraint".
type Filter struct {
	Status    string
	ItemType  string
	ProjectID string
}

type Store interface {
	Create(ctx context.Context, item Item) (*Item, error)
	Get(ctx context.Context, id string) (*Item, error)
	List(ctx context.Context, f Filter) ([]Item, error)
	// SetAssignment updates status and project linkage in one step; an empty
	// projectID clears the link.
	SetAssignment(ctx context.Context, id, status, projectID string) (*Item, error)
	SetStatus(ctx context.Context, id, status string) (*Item, error)
}

func ValidType(t string) bool {
	switch t {
	case TypePanel, TypeInverter, TypeBattery, TypeMeter:
		return true
	}
	return false
}

func ValidStatus(s string) bool {
	switch s {
	case StatusAvailable, StatusAssigned, StatusInstalled, StatusFaulty:
		return true
	}
	return false
}
