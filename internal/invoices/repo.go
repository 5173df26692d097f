package invoices

import (
	"context"
	"errors"
	"fmt"
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

const invoiceColumns = `id::text, project_id::text, invoice_number, milestone, amount, status, due_date, paid_at, created_at, updated_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.ProjectID, &inv.InvoiceNumber, &inv.Milestone, &inv.Amount,
		&inv.Status, &inv.DueDate, &inv.PaidAt, &inv.CreatedAt, &inv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// NewInvoiceNumber mints the external invoice reference.
func NewInvoiceNumber(now time.Time) string {
	return fmt.Sprintf("INV-%d", now.UnixMilli())
}

func (r *Repo) Create(ctx context.Context, inv Invoice) (*Invoice, error) {
	now := time.Now().UTC()
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	if inv.InvoiceNumber == "" {
		inv.InvoiceNumber = NewInvoiceNumber(now)
	}

	const q = `
insert into invoices (id, project_id, invoice_number, milestone, amount, status, due_date, created_at, updated_at)
values ($1::uuid, $2::uuid, $3, $4, $5, $6, $7, $8, $8)
returning ` + invoiceColumns + `;
`
	return scanInvoice(r.db.QueryRow(ctx, q, inv.ID, inv.ProjectID, inv.InvoiceNumber,
		inv.Milestone, inv.Amount, inv.Status, inv.DueDate, now))
}

func (r *Repo) Get(ctx context.Context, id string) (*Invoice, error) {
	const q = `select ` + invoiceColumns + ` from invoices where id = $1::uuid;`
	return scanInvoice(r.db.QueryRow(ctx, q, id))
}

func (r *Repo) List(ctx context.Context, f Filter) ([]Invoice, error) {
	const q = `
select ` + invoiceColumns + `
from invoices
where ($1 = '' or status = $1)
  and ($2 = '' or project_id = $2::uuid)
order by created_at desc;
`
	rows, err := r.db.Query(ctx, q, f.Status, f.ProjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Invoice, 0, 16)
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(&inv.ID, &inv.ProjectID, &inv.InvoiceNumber, &inv.Milestone, &inv.Amount,
			&inv.Status, &inv.DueDate, &inv.PaidAt, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *Repo) SetStatus(ctx context.Context, id, status string, paidAt *time.Time) (*Invoice, error) {
	const q = `
update invoices
set status = $2, paid_at = coalesce($3, paid_at), updated_at = now()
where id = $1::uuid
returning ` + invoiceColumns + `;
`
	return scanInvoice(r.db.QueryRow(ctx, q, id, status, paidAt))
}

func (r *Repo) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	const q = `
update invoices
set status = 'overdue', updated_at = now()
where status = 'sent' and due_date is not null and due_date < $1;
`
	ct, err := r.db.Exec(ctx, q, now)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}
