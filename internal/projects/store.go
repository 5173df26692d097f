package projects

import (
	"context"
	"errors"

	"github.com/solardesk/solar-crm-backend/internal/pipeline"
)

var (
	ErrNotFound = errors.New("project not found")

	// ErrVersionConflict means the snapshot the caller mutated was stale:
	// another writer got in first. The caller re-fetches and retries.
	ErrVersionConflict = errors.New("project version conflict")
)

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	Status     pipeline.Status
	Stage      pipeline.Stage
	SourceFlow pipeline.SourceFlow
	ActorID    string // matches creator, freelancer, installer or agent
}

// Store abstracts project persistence so the hosted Postgres repo and the
// demo-mode store are interchangeable. Update performs a compare-and-swap on
// the aggregate version: it succeeds only when the stored version is exactly
// one behind the snapshot being written.
type Store interface {
	Create(ctx context.Context, p pipeline.Project) (*pipeline.Project, error)
	Get(ctx context.Context, id string) (*pipeline.Project, error)
	List(ctx context.Context, f Filter) ([]pipeline.Project, error)
	Update(ctx context.Context, p pipeline.Project) (*pipeline.Project, error)
	Delete(ctx context.Context, id string) (bool, error)
}
