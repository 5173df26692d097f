package projects

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solardesk/solar-crm-backend/internal/pipeline"
)

// Repo is the hosted-Postgres implementation of Store. The aggregate's
// nested fields (actor refs, serial numbers, metadata, history) are stored
// as jsonb alongside the columns the dashboard filters on.
type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func marshalDoc(p pipeline.Project) ([]byte, error) {
	doc, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal project: %w", err)
	}
	return doc, nil
}

func unmarshalDoc(doc []byte) (*pipeline.Project, error) {
	var p pipeline.Project
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("unmarshal project: %w", err)
	}
	return &p, nil
}

func (r *Repo) Create(ctx context.Context, p pipeline.Project) (*pipeline.Project, error) {
	doc, err := marshalDoc(p)
	if err != nil {
		return nil, err
	}

	const q = `
insert into projects (id, customer_ref, status, pipeline_stage, source_flow, actor_ids, version, doc, created_at, updated_at)
values ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10);
`
	_, err = r.db.Exec(ctx, q,
		p.ID, p.CustomerRef, string(p.Status), string(p.PipelineStage), string(p.SourceFlow),
		actorIDs(p), p.Version, doc, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*pipeline.Project, error) {
	const q = `select doc from projects where id = $1::uuid and deleted_at is null;`

	var doc []byte
	err := r.db.QueryRow(ctx, q, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return unmarshalDoc(doc)
}

func (r *Repo) List(ctx context.Context, f Filter) ([]pipeline.Project, error) {
	const q = `
select doc
from projects
where deleted_at is null
  and ($1 = '' or status = $1)
  and ($2 = '' or pipeline_stage = $2)
  and ($3 = '' or source_flow = $3)
  and ($4 = '' or $4 = any(actor_ids))
order by created_at desc;
`
	rows, err := r.db.Query(ctx, q, string(f.Status), string(f.Stage), string(f.SourceFlow), f.ActorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pipeline.Project, 0, 16)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		p, err := unmarshalDoc(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Update writes a mutated snapshot. The where clause on version implements
// the optimistic-concurrency token: a stale snapshot affects zero rows and
// surfaces as ErrVersionConflict instead of silently clobbering a
// concurrent writer.
func (r *Repo) Update(ctx context.Context, p pipeline.Project) (*pipeline.Project, error) {
	doc, err := marshalDoc(p)
	if err != nil {
		return nil, err
	}

	const q = `
update projects
set status = $2, pipeline_stage = $3, actor_ids = $4, version = $5, doc = $6, updated_at = $7
where id = $1::uuid and version = $5 - 1 and deleted_at is null;
`
	ct, err := r.db.Exec(ctx, q,
		p.ID, string(p.Status), string(p.PipelineStage), actorIDs(p), p.Version, doc, p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		// Distinguish missing from stale.
		if _, getErr := r.Get(ctx, p.ID); errors.Is(getErr, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, ErrVersionConflict
	}
	return &p, nil
}

func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	const q = `
update projects
set deleted_at = now(), updated_at = now()
where id = $1::uuid and deleted_at is null;
`
	ct, err := r.db.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

// actorIDs collects the ownership/assignment references for the actor_ids
// filter column.
func actorIDs(p pipeline.Project) []string {
	out := make([]string, 0, 4)
	for _, ref := range []pipeline.ActorRef{p.CreatedBy, p.Freelancer, p.Installer, p.Agent} {
		if ref.ID != "" {
			out = append(out, ref.ID)
		}
	}
	return out
}
