package demo

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/solardesk/solar-crm-backend/internal/pipeline"
	"github.com/solardesk/solar-crm-backend/internal/projects"
)

// ProjectStore implements projects.Store on the embedded redis. The mutex
// gives the same compare-and-swap guarantee the Postgres repo gets from its
// versioned update; demo mode is single-process so this is sufficient.
type ProjectStore struct {
	mu sync.Mutex
	kv *kv
}

func NewProjectStore(client *redis.Client) *ProjectStore {
	return &ProjectStore{kv: newKV(client, "project")}
}

func (s *ProjectStore) Create(ctx context.Context, p pipeline.Project) (*pipeline.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.put(ctx, p.ID, p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProjectStore) Get(ctx context.Context, id string) (*pipeline.Project, error) {
	var p pipeline.Project
	found, err := s.kv.get(ctx, id, &p)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, projects.ErrNotFound
	}
	return &p, nil
}

func (s *ProjectStore) List(ctx context.Context, f Filter) ([]pipeline.Project, error) {
	out := []pipeline.Project{}
	err := s.kv.each(ctx, func(data []byte) error {
		var p pipeline.Project
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		if matchProject(p, f) {
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *ProjectStore) Update(ctx context.Context, p pipeline.Project) (*pipeline.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.Get(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if current.Version != p.Version-1 {
		return nil, projects.ErrVersionConflict
	}
	if err := s.kv.put(ctx, p.ID, p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProjectStore) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv.del(ctx, id)
}

func matchProject(p pipeline.Project, f Filter) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Stage != "" && p.PipelineStage != f.Stage {
		return false
	}
	if f.SourceFlow != "" && p.SourceFlow != f.SourceFlow {
		return false
	}
	if f.ActorID != "" {
		for _, ref := range []pipeline.ActorRef{p.CreatedBy, p.Freelancer, p.Installer, p.Agent} {
			if ref.ID == f.ActorID {
				return true
			}
		}
		return false
	}
	return true
}

// Filter aliases the projects package filter so call sites read naturally.
type Filter = projects.Filter
