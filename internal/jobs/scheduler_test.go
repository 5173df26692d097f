package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solardesk/solar-crm-backend/internal/demo"
	"github.com/solardesk/solar-crm-backend/internal/invoices"
	"github.com/solardesk/solar-crm-backend/internal/pipeline"
)

func TestRunNightlySweepsAndPublishes(t *testing.T) {
	ctx := context.Background()

	mr, client, err := demo.Start()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	stores := demo.NewStores(client)

	past := time.Now().UTC().AddDate(0, 0, -1)
	late, err := stores.Invoices.Create(ctx, invoices.Invoice{
		ProjectID: "p1",
		Milestone: invoices.MilestoneFull,
		Amount:    1000,
		Status:    invoices.StatusSent,
		DueDate:   &past,
	})
	require.NoError(t, err)

	freelancer := pipeline.Actor{ID: "f1", Name: "Freelancer", Role: pipeline.RoleFreelancer}
	p := pipeline.NewProject(freelancer, pipeline.Draft{Title: "Review queue entry", Value: 500000})
	_, err = stores.Projects.Create(ctx, p)
	require.NoError(t, err)

	s := NewScheduler(stores.Invoices, stores.Projects, client)
	s.RunNightly(ctx)

	got, err := stores.Invoices.Get(ctx, late.ID)
	require.NoError(t, err)
	assert.Equal(t, invoices.StatusOverdue, got.Status)

	count, err := client.Get(ctx, pendingReviewKey).Result()
	require.NoError(t, err)
	assert.Equal(t, "1", count)
}
