package demo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solardesk/solar-crm-backend/internal/inventory"
	"github.com/solardesk/solar-crm-backend/internal/invoices"
	"github.com/solardesk/solar-crm-backend/internal/pipeline"
	"github.com/solardesk/solar-crm-backend/internal/projects"
	"github.com/solardesk/solar-crm-backend/internal/users"
)

func newStores(t *testing.T) *Stores {
	t.Helper()
	mr, client, err := Start()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return NewStores(client)
}

func TestSeedPopulatesEveryStore(t *testing.T) {
	ctx := context.Background()
	s := newStores(t)
	require.NoError(t, s.Seed(ctx))

	all, err := s.Users.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 5)

	approved, err := s.Users.List(ctx, users.ApprovalApproved)
	require.NoError(t, err)
	assert.Len(t, approved, 5)

	// The header-identity fallback user must come back as an approved admin.
	admin, err := s.Users.EnsureUser(ctx, users.UpsertUser{FirebaseUID: "demo-user"})
	require.NoError(t, err)
	assert.Equal(t, "company", admin.Role)
	assert.Equal(t, users.ApprovalApproved, admin.ApprovalStatus)

	projList, err := s.Projects.List(ctx, projects.Filter{})
	require.NoError(t, err)
	assert.Len(t, projList, 4)

	pending, err := s.Projects.List(ctx, projects.Filter{Status: pipeline.StatusPendingAgentReview})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, pipeline.FlowFreelancer, pending[0].SourceFlow)

	items, err := s.Inventory.List(ctx, inventory.Filter{})
	require.NoError(t, err)
	assert.Len(t, items, 5)

	invs, err := s.Invoices.List(ctx, invoices.Filter{Status: invoices.StatusSent})
	require.NoError(t, err)
	assert.Len(t, invs, 2)
}

func TestProjectStoreRejectsStaleWrites(t *testing.T) {
	ctx := context.Background()
	s := newStores(t)

	actor := pipeline.Actor{ID: "u1", Name: "Admin", Role: pipeline.RoleCompany}
	p := pipeline.NewProject(actor, pipeline.Draft{Title: "CAS probe", Value: 100})
	_, err := s.Projects.Create(ctx, p)
	require.NoError(t, err)

	next, err := pipeline.AttemptTransition(p, actor, pipeline.StageLeadGenerated, "")
	require.NoError(t, err)
	_, err = s.Projects.Update(ctx, next)
	require.NoError(t, err)

	// Re-submitting the same snapshot must fail: the stored version moved on.
	_, err = s.Projects.Update(ctx, next)
	assert.ErrorIs(t, err, projects.ErrVersionConflict)
}

func TestInventoryStoreRejectsDuplicateSerial(t *testing.T) {
	ctx := context.Background()
	s := newStores(t)

	_, err := s.Inventory.Create(ctx, inventory.Item{SerialNumber: "PNL-X", ItemType: inventory.TypePanel, Status: inventory.StatusAvailable})
	require.NoError(t, err)

	_, err = s.Inventory.Create(ctx, inventory.Item{SerialNumber: "PNL-X", ItemType: inventory.TypePanel, Status: inventory.StatusAvailable})
	assert.ErrorIs(t, err, inventory.ErrDuplicateSerial)
}

func TestInvoiceStoreMarksOverdue(t *testing.T) {
	ctx := context.Background()
	s := newStores(t)

	past := time.Now().UTC().AddDate(0, 0, -3)
	future := time.Now().UTC().AddDate(0, 0, 3)

	late, err := s.Invoices.Create(ctx, invoices.Invoice{ProjectID: "p1", Milestone: invoices.MilestoneFull, Amount: 500, Status: invoices.StatusSent, DueDate: &past})
	require.NoError(t, err)
	ok, err := s.Invoices.Create(ctx, invoices.Invoice{ProjectID: "p2", Milestone: invoices.MilestoneFull, Amount: 500, Status: invoices.StatusSent, DueDate: &future})
	require.NoError(t, err)

	n, err := s.Invoices.MarkOverdue(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := s.Invoices.Get(ctx, late.ID)
	require.NoError(t, err)
	assert.Equal(t, invoices.StatusOverdue, got.Status)

	untouched, err := s.Invoices.Get(ctx, ok.ID)
	require.NoError(t, err)
	assert.Equal(t, invoices.StatusSent, untouched.Status)
}
