package leads

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

const leadColumns = `id::text, name, coalesce(phone,''), coalesce(email,''), coalesce(location,''),
estimated_value, status, coalesce(assigned_to_id,''), coalesce(assigned_to_name,''),
coalesce(notes,''), coalesce(project_id::text,''), created_at, updated_at`

func scanLead(row pgx.Row) (*Lead, error) {
	var l Lead
	err := row.Scan(&l.ID, &l.Name, &l.Phone, &l.Email, &l.Location, &l.EstimatedValue,
		&l.Status, &l.AssignedToID, &l.AssignedToName, &l.Notes, &l.ProjectID, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *Repo) Create(ctx context.Context, l Lead) (*Lead, error) {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	now := time.Now().UTC()

	const q = `
insert into leads (id, name, phone, email, location, estimated_value, status, assigned_to_id, assigned_to_name, notes, created_at, updated_at)
values ($1::uuid, $2, nullif($3,''), nullif($4,''), nullif($5,''), $6, $7, nullif($8,''), nullif($9,''), nullif($10,''), $11, $11)
returning ` + leadColumns + `;
`
	return scanLead(r.db.QueryRow(ctx, q, l.ID, l.Name, l.Phone, l.Email, l.Location,
		l.EstimatedValue, l.Status, l.AssignedToID, l.AssignedToName, l.Notes, now))
}

func (r *Repo) Get(ctx context.Context, id string) (*Lead, error) {
	const q = `select ` + leadColumns + ` from leads where id = $1::uuid;`
	return scanLead(r.db.QueryRow(ctx, q, id))
}

func (r *Repo) List(ctx context.Context, f Filter) ([]Lead, error) {
	const q = `
select ` + leadColumns + `
from leads
where ($1 = '' or status = $1)
  and ($2 = '' or assigned_to_id = $2)
order by created_at desc;
`
	rows, err := r.db.Query(ctx, q, f.Status, f.AssignedToID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Lead, 0, 16)
	for rows.Next() {
		var l Lead
		if err := rows.Scan(&l.ID, &l.Name, &l.Phone, &l.Email, &l.Location, &l.EstimatedValue,
			&l.Status, &l.AssignedToID, &l.AssignedToName, &l.Notes, &l.ProjectID, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *Repo) Update(ctx context.Context, id string, upd Update) (*Lead, error) {
	const q = `
update leads
set status = coalesce($2, status),
    notes = coalesce($3, notes),
    assigned_to_id = coalesce($4, assigned_to_id),
    assigned_to_name = coalesce($5, assigned_to_name),
    updated_at = now()
where id = $1::uuid
returning ` + leadColumns + `;
`
	return scanLead(r.db.QueryRow(ctx, q, id, upd.Status, upd.Notes, upd.AssignedToID, upd.AssignedToName))
}

func (r *Repo) MarkConverted(ctx context.Context, id, projectID string) (*Lead, error) {
	const q = `
update leads
set status = 'converted', project_id = $2::uuid, updated_at = now()
where id = $1::uuid and status <> 'converted'
returning ` + leadColumns + `;
`
	l, err := scanLead(r.db.QueryRow(ctx, q, id, projectID))
	if errors.Is(err, ErrNotFound) {
		// Either missing or already converted; disambiguate.
		if _, getErr := r.Get(ctx, id); getErr == nil {
			return nil, ErrAlreadyConverted
		}
		return nil, ErrNotFound
	}
	return l, err
}
