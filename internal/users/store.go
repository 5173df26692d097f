package users

import (
	"context"
	"errors"
	"time"
)

// Approval workflow states for onboarded users.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

var ErrNotFound = errors.New("user not found")

// User is an onboarded identity. The identity provider owns authentication;
// this record carries the role and approval state the application layers on
// top.
type User struct {
	ID             string    `json:"id"`
	FirebaseUID    string    `json:"firebase_uid"`
	Email          string    `json:"email,omitempty"`
	DisplayName    string    `json:"display_name,omitempty"`
	Role           string    `json:"role"`
	ApprovalStatus string    `json:"approval_status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UpsertUser is the identity payload captured on each authenticated request.
type UpsertUser struct {
	FirebaseUID string
	Email       string
	DisplayName string
}

// Store abstracts the user table so the hosted Postgres repo and the
// demo-mode store are interchangeable.
type Store interface {
	// EnsureUser upserts the identity and returns the stored record. New
	// users start as role=customer, approval=pending.
	EnsureUser(ctx context.Context, u UpsertUser) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, approvalStatus string) ([]User, error)
	SetApproval(ctx context.Context, id, status string) (*User, error)
	SetRole(ctx context.Context, id, role string) (*User, error)
}
