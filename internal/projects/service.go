package projects

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/solardesk/solar-crm-backend/internal/pipeline"
)

// Service drives the pipeline engine against the project store: load a
// snapshot, run the pure engine operation, persist the result. The store's
// version compare-and-swap rejects writes computed from stale snapshots.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create classifies the creation flow from the creator's role, derives the
// initial status/stage pair and persists the new project.
func (s *Service) Create(ctx context.Context, creator pipeline.Actor, draft pipeline.Draft) (*pipeline.Project, error) {
	if draft.Title == "" {
		return nil, fmt.Errorf("title required")
	}
	if draft.Value < 0 {
		return nil, fmt.Errorf("value must be non-negative")
	}
	return s.store.Create(ctx, pipeline.NewProject(creator, draft))
}

func (s *Service) Get(ctx context.Context, id string) (*pipeline.Project, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter) ([]pipeline.Project, error) {
	return s.store.List(ctx, f)
}

func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	return s.store.Delete(ctx, id)
}

// UpdateDetails edits the descriptive attributes. Workflow fields are never
// touched here; the engine is their only writer.
type UpdateDetails struct {
	Title       *string
	Description *string
	Location    *string
	Value       *float64
}

func (s *Service) UpdateDetails(ctx context.Context, id string, upd UpdateDetails) (*pipeline.Project, error) {
	return s.mutate(ctx, id, func(p pipeline.Project) (pipeline.Project, error) {
		if upd.Title != nil {
			if *upd.Title == "" {
				return p, fmt.Errorf("title required")
			}
			p.Title = *upd.Title
		}
		if upd.Description != nil {
			p.Description = *upd.Description
		}
		if upd.Location != nil {
			p.Location = *upd.Location
		}
		if upd.Value != nil {
			if *upd.Value < 0 {
				return p, fmt.Errorf("value must be non-negative")
			}
			p.Value = *upd.Value
		}
		p.Version++
		p.UpdatedAt = time.Now().UTC()
		return p, nil
	})
}

// SetStage runs the generic transition validator.
func (s *Service) SetStage(ctx context.Context, actor pipeline.Actor, id string, target pipeline.Stage, comment string) (*pipeline.Project, error) {
	return s.mutate(ctx, id, func(p pipeline.Project) (pipeline.Project, error) {
		return pipeline.AttemptTransition(p, actor, target, comment)
	})
}

// CompleteInstallation is the installer side door.
func (s *Service) CompleteInstallation(ctx context.Context, actor pipeline.Actor, id, notes string) (*pipeline.Project, error) {
	return s.mutate(ctx, id, func(p pipeline.Project) (pipeline.Project, error) {
		return pipeline.CompleteInstallation(p, actor, notes), nil
	})
}

func (s *Service) AssignInstaller(ctx context.Context, actor pipeline.Actor, id string, installer pipeline.ActorRef) (*pipeline.Project, error) {
	return s.mutate(ctx, id, func(p pipeline.Project) (pipeline.Project, error) {
		return pipeline.AssignInstaller(p, actor, installer), nil
	})
}

func (s *Service) AssignAgent(ctx context.Context, actor pipeline.Actor, id string, agent pipeline.ActorRef) (*pipeline.Project, error) {
	return s.mutate(ctx, id, func(p pipeline.Project) (pipeline.Project, error) {
		return pipeline.AssignAgent(p, actor, agent), nil
	})
}

// AgentReview resolves the agent gate. Approval is persisted as two hops
// (agent_approved, then pending_admin_review) so both states appear in the
// project history.
func (s *Service) AgentReview(ctx context.Context, actor pipeline.Actor, id string, approve bool, comment string) (*pipeline.Project, error) {
	p, err := s.mutate(ctx, id, func(p pipeline.Project) (pipeline.Project, error) {
		return pipeline.AgentReview(p, actor, approve, comment)
	})
	if err != nil || !approve {
		return p, err
	}
	return s.mutate(ctx, id, func(p pipeline.Project) (pipeline.Project, error) {
		return pipeline.ForwardToAdminReview(p, actor, "forwarded for admin review")
	})
}

func (s *Service) AdminReview(ctx context.Context, actor pipeline.Actor, id string, approve bool, comment string) (*pipeline.Project, error) {
	return s.mutate(ctx, id, func(p pipeline.Project) (pipeline.Project, error) {
		return pipeline.AdminReview(p, actor, approve, comment)
	})
}

// AttachSerial adds an equipment serial number to the project. Idempotent.
func (s *Service) AttachSerial(ctx context.Context, id, serial string) (*pipeline.Project, error) {
	return s.mutate(ctx, id, func(p pipeline.Project) (pipeline.Project, error) {
		for _, sn := range p.SerialNumbers {
			if sn == serial {
				return p, nil
			}
		}
		p.SerialNumbers = append(append([]string(nil), p.SerialNumbers...), serial)
		p.Version++
		p.UpdatedAt = time.Now().UTC()
		return p, nil
	})
}

// DetachSerial removes an equipment serial number from the project.
func (s *Service) DetachSerial(ctx context.Context, id, serial string) (*pipeline.Project, error) {
	return s.mutate(ctx, id, func(p pipeline.Project) (pipeline.Project, error) {
		kept := make([]string, 0, len(p.SerialNumbers))
		for _, sn := range p.SerialNumbers {
			if sn != serial {
				kept = append(kept, sn)
			}
		}
		if len(kept) == len(p.SerialNumbers) {
			return p, nil
		}
		p.SerialNumbers = kept
		p.Version++
		p.UpdatedAt = time.Now().UTC()
		return p, nil
	})
}

// mutate implements the load / engine / save cycle with one retry on a
// version conflict, re-running the engine on the fresh snapshot so two
// concurrent writers cannot clobber each other.
func (s *Service) mutate(ctx context.Context, id string, fn func(pipeline.Project) (pipeline.Project, error)) (*pipeline.Project, error) {
	for attempt := 0; attempt < 2; attempt++ {
		current, err := s.store.Get(ctx, id)
		if err != nil {
			return nil, err
		}

		next, err := fn(*current)
		if err != nil {
			return nil, err
		}
		if next.Version == current.Version {
			// No-op mutation; nothing to persist.
			return current, nil
		}

		saved, err := s.store.Update(ctx, next)
		if errors.Is(err, ErrVersionConflict) && attempt == 0 {
			continue
		}
		if err != nil {
			return nil, err
		}
		return saved, nil
	}
	return nil, ErrVersionConflict
}
