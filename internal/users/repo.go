package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo is the hosted-Postgres implementation of Store.
type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

const userColumns = `id::text, firebase_uid, coalesce(email,''), coalesce(display_name,''), role, approval_status, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.FirebaseUID, &u.Email, &u.DisplayName, &u.Role, &u.ApprovalStatus, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) EnsureUser(ctx context.Context, u UpsertUser) (*User, error) {
	if u.FirebaseUID == "" {
		return nil, fmt.Errorf("firebase_uid required")
	}

	const q = `
insert into users (firebase_uid, email, display_name, role, approval_status, updated_at)
values ($1, nullif($2,''), nullif($3,''), 'customer', 'pending', now())
on conflict (firebase_uid) do update
set
  email = coalesce(excluded.email, users.email),
  display_name = coalesce(excluded.display_name, users.display_name),
  updated_at = now()
returning ` + userColumns + `;
`
	return scanUser(r.db.QueryRow(ctx, q, u.FirebaseUID, u.Email, u.DisplayName))
}

func (r *Repo) GetByID(ctx context.Context, id string) (*User, error) {
	const q = `select ` + userColumns + ` from users where id = $1::uuid;`
	return scanUser(r.db.QueryRow(ctx, q, id))
}

func (r *Repo) List(ctx context.Context, approvalStatus string) ([]User, error) {
	const q = `
select ` + userColumns + `
from users
where ($1 = '' or approval_status = $1)
order by created_at desc;
`
	rows, err := r.db.Query(ctx, q, approvalStatus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]User, 0, 16)
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.FirebaseUID, &u.Email, &u.DisplayName, &u.Role, &u.ApprovalStatus, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *Repo) SetApproval(ctx context.Context, id, status string) (*User, error) {
	const q = `
update users
set approval_status = $2, updated_at = now()
where id = $1::uuid
returning ` + userColumns + `;
`
	return scanUser(r.db.QueryRow(ctx, q, id, status))
}

func (r *Repo) SetRole(ctx context.Context, id, role string) (*User, error) {
	const q = `
update users
set role = $2, updated_at = now()
where id = $1::uuid
returning ` + userColumns + `;
`
	return scanUser(r.db.QueryRow(ctx, q, id, role))
}
