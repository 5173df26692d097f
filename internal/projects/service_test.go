package projects

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solardesk/solar-crm-backend/internal/pipeline"
)

// memStore is a minimal Store for service tests with the same
// compare-and-swap semantics as the real repositories.
type memStore struct {
	mu       sync.Mutex
	byID     map[string]pipeline.Project
	failNext int // number of Update calls to fail with ErrVersionConflict
}

func newMemStore() *memStore {
	return &memStore{byID: map[string]pipeline.Project{}}
}

func (m *memStore) Create(_ context.Context, p pipeline.Project) (*pipeline.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[p.ID] = p
	return &p, nil
}

func (m *memStore) Get(_ context.Context, id string) (*pipeline.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *memStore) List(_ context.Context, f Filter) ([]pipeline.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []pipeline.Project{}
	for _, p := range m.byID {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *memStore) Update(_ context.Context, p pipeline.Project) (*pipeline.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext > 0 {
		m.failNext--
		return nil, ErrVersionConflict
	}
	current, ok := m.byID[p.ID]
	if !ok {
		return nil, ErrNotFound
	}
	if current.Version != p.Version-1 {
		return nil, ErrVersionConflict
	}
	m.byID[p.ID] = p
	return &p, nil
}

func (m *memStore) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return false, nil
	}
	delete(m.byID, id)
	return true, nil
}

func admin() pipeline.Actor {
	return pipeline.Actor{ID: "u-admin", Name: "Back Office", Role: pipeline.RoleCompany}
}

func TestServiceCreateClassifiesFlow(t *testing.T) {
	svc := NewService(newMemStore())

	p, err := svc.Create(context.Background(), admin(), pipeline.Draft{Title: "5kW system", Value: 450000})
	require.NoError(t, err)
	assert.Equal(t, pipeline.FlowAdmin, p.SourceFlow)
	assert.Equal(t, pipeline.StatusAdminCreated, p.Status)

	freelancer := pipeline.Actor{ID: "u-free", Name: "Freelancer", Role: pipeline.RoleFreelancer}
	fp, err := svc.Create(context.Background(), freelancer, pipeline.Draft{Title: "3kW system", Status: pipeline.StatusApproved})
	require.NoError(t, err)
	assert.Equal(t, pipeline.StatusPendingAgentReview, fp.Status, "submitted status must be overridden")
}

func TestServiceCreateValidation(t *testing.T) {
	svc := NewService(newMemStore())

	_, err := svc.Create(context.Background(), admin(), pipeline.Draft{})
	assert.Error(t, err)

	_, err = svc.Create(context.Background(), admin(), pipeline.Draft{Title: "x", Value: -1})
	assert.Error(t, err)
}

func TestServiceSetStagePersists(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)

	p, err := svc.Create(context.Background(), admin(), pipeline.Draft{Title: "5kW system"})
	require.NoError(t, err)

	updated, err := svc.SetStage(context.Background(), admin(), p.ID, pipeline.StageBankProcess, "docs in")
	require.NoError(t, err)
	assert.Equal(t, pipeline.StageBankProcess, updated.PipelineStage)

	stored, err := store.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Version, stored.Version)
}

func TestServiceSetStageForbiddenPropagates(t *testing.T) {
	svc := NewService(newMemStore())
	p, err := svc.Create(context.Background(), admin(), pipeline.Draft{Title: "5kW system"})
	require.NoError(t, err)

	agent := pipeline.Actor{ID: "u-agent", Role: pipeline.RoleAgent}
	_, err = svc.SetStage(context.Background(), agent, p.ID, pipeline.StageCompleted, "")
	assert.ErrorIs(t, err, pipeline.ErrForbidden)
}

func TestServiceRetriesOnceOnVersionConflict(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	p, err := svc.Create(context.Background(), admin(), pipeline.Draft{Title: "5kW system"})
	require.NoError(t, err)

	store.failNext = 1
	updated, err := svc.SetStage(context.Background(), admin(), p.ID, pipeline.StageBankProcess, "")
	require.NoError(t, err, "a single conflict is retried on a fresh snapshot")
	assert.Equal(t, pipeline.StageBankProcess, updated.PipelineStage)

	store.failNext = 2
	_, err = svc.SetStage(context.Background(), admin(), p.ID, pipeline.StageOnHold, "")
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestServiceSerialMembership(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	p, err := svc.Create(context.Background(), admin(), pipeline.Draft{Title: "5kW system"})
	require.NoError(t, err)

	withSerial, err := svc.AttachSerial(context.Background(), p.ID, "PNL-0001")
	require.NoError(t, err)
	assert.Equal(t, []string{"PNL-0001"}, withSerial.SerialNumbers)

	// Idempotent attach does not bump the version.
	again, err := svc.AttachSerial(context.Background(), p.ID, "PNL-0001")
	require.NoError(t, err)
	assert.Equal(t, withSerial.Version, again.Version)

	detached, err := svc.DetachSerial(context.Background(), p.ID, "PNL-0001")
	require.NoError(t, err)
	assert.Empty(t, detached.SerialNumbers)
}

func TestServiceSerialMutationsStampUpdatedAt(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	p, err := svc.Create(context.Background(), admin(), pipeline.Draft{Title: "5kW system"})
	require.NoError(t, err)

	attached, err := svc.AttachSerial(context.Background(), p.ID, "PNL-0001")
	require.NoError(t, err)
	assert.True(t, attached.UpdatedAt.After(p.UpdatedAt),
		"attach must move updatedAt forward with the version")

	detached, err := svc.DetachSerial(context.Background(), p.ID, "PNL-0001")
	require.NoError(t, err)
	assert.True(t, detached.UpdatedAt.After(attached.UpdatedAt),
		"detach must move updatedAt forward with the version")
}

func TestServiceAgentApprovalPersistsBothHops(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)

	freelancer := pipeline.Actor{ID: "u-free", Name: "Freelancer", Role: pipeline.RoleFreelancer}
	agent := pipeline.Actor{ID: "u-agent", Name: "Field Agent", Role: pipeline.RoleAgent}

	p, err := svc.Create(context.Background(), freelancer, pipeline.Draft{Title: "3kW system"})
	require.NoError(t, err)

	approved, err := svc.AgentReview(context.Background(), agent, p.ID, true, "site verified")
	require.NoError(t, err)
	assert.Equal(t, pipeline.StatusPendingAdminReview, approved.Status)
	assert.Equal(t, pipeline.StagePendingAdminReview, approved.PipelineStage)
	assert.Equal(t, int64(3), approved.Version, "two hops, two versions")

	// agent_approved is recorded as its own history entry, not skipped over.
	require.Len(t, approved.History, 3)
	assert.Equal(t, pipeline.StageAgentApproved, approved.History[1].Stage)
	assert.Equal(t, pipeline.StatusAgentApproved, approved.History[1].Status)

	stored, err := store.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, approved.Version, stored.Version)
}

func TestServiceUpdateDetailsNeverTouchesWorkflow(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	p, err := svc.Create(context.Background(), admin(), pipeline.Draft{Title: "5kW system"})
	require.NoError(t, err)

	title := "6kW system"
	value := 500000.0
	updated, err := svc.UpdateDetails(context.Background(), p.ID, UpdateDetails{Title: &title, Value: &value})
	require.NoError(t, err)
	assert.Equal(t, "6kW system", updated.Title)
	assert.Equal(t, p.Status, updated.Status)
	assert.Equal(t, p.PipelineStage, updated.PipelineStage)
}
