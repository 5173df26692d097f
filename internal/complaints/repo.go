package complaints

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

const complaintColumns = `id::text, coalesce(project_id::text,''), customer_name, title, coalesce(description,''),
status, priority, coalesce(technician_id,''), coalesce(technician_name,''), coalesce(resolution,''), created_at, updated_at`

func scanComplaint(row pgx.Row) (*Complaint, error) {
	var cm Complaint
	err := row.Scan(&cm.ID, &cm.ProjectID, &cm.CustomerName, &cm.Title, &cm.Description,
		&cm.Status, &cm.Priority, &cm.TechnicianID, &cm.TechnicianName, &cm.Resolution, &cm.CreatedAt, &cm.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cm, nil
}

func (r *Repo) Create(ctx context.Context, cm Complaint) (*Complaint, error) {
	if cm.ID == "" {
		cm.ID = uuid.New().String()
	}
	now := time.Now().UTC()

	const q = `
insert into complaints (id, project_id, customer_name, title, description, status, priority, created_at, updated_at)
values ($1::uuid, nullif($2,'')::uuid, $3, $4, nullif($5,''), $6, $7, $8, $8)
returning ` + complaintColumns + `;
`
	return scanComplaint(r.db.QueryRow(ctx, q, cm.ID, cm.ProjectID, cm.CustomerName, cm.Title,
		cm.Description, cm.Status, cm.Priority, now))
}

func (r *Repo) Get(ctx context.Context, id string) (*Complaint, error) {
	const q = `select ` + complaintColumns + ` from complaints where id = $1::uuid;`
	return scanComplaint(r.db.QueryRow(ctx, q, id))
}

func (r *Repo) List(ctx context.Context, f Filter) ([]Complaint, error) {
	const q = `
select ` + complaintColumns + `
from complaints
where ($1 = '' or status = $1)
  and ($2 = '' or priority = $2)
  and ($3 = '' or project_id = $3::uuid)
  and ($4 = '' or technician_id = $4)
order by created_at desc;
`
	rows, err := r.db.Query(ctx, q, f.Status, f.Priority, f.ProjectID, f.TechnicianID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Complaint, 0, 16)
	for rows.Next() {
		var cm Complaint
		if err := rows.Scan(&cm.ID, &cm.ProjectID, &cm.CustomerName, &cm.Title, &cm.Description,
			&cm.Status, &cm.Priority, &cm.TechnicianID, &cm.TechnicianName, &cm.Resolution, &cm.CreatedAt, &cm.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, cm)
	}
	return out, rows.Err()
}

func (r *Repo) Update(ctx context.Context, id string, upd Update) (*Complaint, error) {
	const q = `
update complaints
set status = coalesce($2, status),
    priority = coalesce($3, priority),
    technician_id = coalesce($4, technician_id),
    technician_name = coalesce($5, technician_name),
    resolution = coalesce($6, resolution),
    updated_at = now()
where id = $1::uuid
returning ` + complaintColumns + `;
`
	return scanComplaint(r.db.QueryRow(ctx, q, id, upd.Status, upd.Priority, upd.TechnicianID, upd.TechnicianName, upd.Resolution))
}
