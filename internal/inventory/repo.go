package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

const itemColumns = `id::text, serial_number, item_type, status, coalesce(project_id::text,''), coalesce(notes,''), created_at, updated_at`

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.SerialNumber, &it.ItemType, &it.Status, &it.ProjectID, &it.Notes, &it.CreatedAt, &it.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *Repo) Create(ctx context.Context, item Item) (*Item, error) {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	now := time.Now().UTC()

	const q = `
insert into inventory_items (id, serial_number, item_type, status, notes, created_at, updated_at)
values ($1::uuid, $2, $3, $4, nullif($5,''), $6, $6)
returning ` + itemColumns + `;
`
	it, err := scanItem(r.db.QueryRow(ctx, q, item.ID, item.SerialNumber, item.ItemType, item.Status, item.Notes, now))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateSerial
		}
		return nil, err
	}
	return it, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*Item, error) {
	const q = `select ` + itemColumns + ` from inventory_items where id = $1::uuid;`
	return scanItem(r.db.QueryRow(ctx, q, id))
}

func (r *Repo) List(ctx context.Context, f Filter) ([]Item, error) {
	const q = `
select ` + itemColumns + `
from inventory_items
where ($1 = '' or status = $1)
  and ($2 = '' or item_type = $2)
  and ($3 = '' or project_id = $3::uuid)
order by created_at desc;
`
	rows, err := r.db.Query(ctx, q, f.Status, f.ItemType, f.ProjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Item, 0, 16)
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.SerialNumber, &it.ItemType, &it.Status, &it.ProjectID, &it.Notes, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *Repo) SetAssignment(ctx context.Context, id, status, projectID string) (*Item, error) {
	const q = `
update inventory_items
set status = $2, project_id = nullif($3,'')::uuid, updated_at = now()
where id = $1::uuid
returning ` + itemColumns + `;
`
	return scanItem(r.db.QueryRow(ctx, q, id, status, projectID))
}

func (r *Repo) SetStatus(ctx context.Context, id, status string) (*Item, error) {
	const q = `
update inventory_items
set status = $2, updated_at = now()
where id = $1::uuid
returning ` + itemColumns + `;
`
	return scanItem(r.db.QueryRow(ctx, q, id, status))
}
