package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ActorRef is a weak reference (id + display name) to a user owned by the
// identity collaborator.
type ActorRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

func (r ActorRef) IsZero() bool { return r.ID == "" && r.Name == "" }

// HistoryEntry records one workflow mutation. History is append-only.
type HistoryEntry struct {
	Stage     Stage     `json:"stage"`
	Status    Status    `json:"status"`
	Comment   string    `json:"comment,omitempty"`
	ActorID   string    `json:"actor_id,omitempty"`
	ActorName string    `json:"actor_name,omitempty"`
	ActorRole Role      `json:"actor_role,omitempty"`
	At        time.Time `json:"at"`
}

// Project is the aggregate the engine operates on. Snapshots are passed by
// value; every operation returns a new snapshot with Version bumped so the
// store can reject stale writes (compare-and-swap on Version).
type Project struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Location    string  `json:"location,omitempty"`
	Value       float64 `json:"value"`

	CustomerRef string `json:"customer_ref"`

	Status        Status     `json:"status"`
	PipelineStage Stage      `json:"pipeline_stage"`
	SourceFlow    SourceFlow `json:"source_flow"`

	CreatedBy  ActorRef `json:"created_by,omitempty"`
	Freelancer ActorRef `json:"freelancer,omitempty"`
	Installer  ActorRef `json:"installer,omitempty"`
	Agent      ActorRef `json:"agent,omitempty"`

	InstallerAssigned bool     `json:"installer_assigned"`
	SerialNumbers     []string `json:"serial_numbers,omitempty"`

	InstallationComplete bool       `json:"installation_complete"`
	CompletionDate       *time.Time `json:"completion_date,omitempty"`
	InstallerNotes       string     `json:"installer_notes,omitempty"`

	Metadata map[string]string `json:"metadata,omitempty"`
	History  []HistoryEntry    `json:"history,omitempty"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCustomerRef mints the stable external customer reference assigned at
// creation and never reassigned.
func NewCustomerRef(now time.Time) string {
	return fmt.Sprintf("CUST-%d", now.UnixMilli())
}

// NewProject builds a project from a draft submitted by creator. The
// source-flow classifier decides the creation pathway and the initial
// status/stage pair; the caller persists the result.
func NewProject(creator Actor, draft Draft) Project {
	now := time.Now().UTC()
	init := DeriveInitialState(Classify(creator.Role), creator, draft)

	p := Project{
		ID:            uuid.New().String(),
		Title:         draft.Title,
		Description:   draft.Description,
		Location:      draft.Location,
		Value:         draft.Value,
		CustomerRef:   NewCustomerRef(now),
		Status:        init.Status,
		PipelineStage: init.Stage,
		SourceFlow:    init.Flow,
		CreatedBy:     ActorRef{ID: creator.ID, Name: creator.Name},
		Metadata:      init.Metadata,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if init.Flow == FlowFreelancer {
		p.Freelancer = ActorRef{ID: creator.ID, Name: creator.Name}
	}

	p.History = []HistoryEntry{{
		Stage:     p.PipelineStage,
		Status:    p.Status,
		Comment:   "project created",
		ActorID:   creator.ID,
		ActorName: creator.Name,
		ActorRole: creator.Role,
		At:        now,
	}}

	return p
}

// clone deep-copies the mutable reference fields so engine operations never
// alias the caller's snapshot.
func (p Project) clone() Project {
	out := p
	if p.SerialNumbers != nil {
		out.SerialNumbers = append([]string(nil), p.SerialNumbers...)
	}
	if p.History != nil {
		out.History = append([]HistoryEntry(nil), p.History...)
	}
	if p.Metadata != nil {
		out.Metadata = make(map[string]string, len(p.Metadata))
		for k, v := range p.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// apply moves the snapshot to (stage, status), stamps audit fields, bumps
// the version and appends a history entry. Every engine mutation funnels
// through here so the status/stage pair can never drift apart.
func (p Project) apply(stage Stage, status Status, actor Actor, comment string) Project {
	now := time.Now().UTC()
	out := p.clone()
	out.PipelineStage = stage
	out.Status = status
	out.UpdatedAt = now
	out.Version++
	out.History = append(out.History, HistoryEntry{
		Stage:     stage,
		Status:    status,
		Comment:   comment,
		ActorID:   actor.ID,
		ActorName: actor.Name,
		ActorRole: actor.Role,
		At:        now,
	})
	return out
}
