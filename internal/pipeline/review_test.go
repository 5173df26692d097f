package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freelancerProject(t *testing.T) Project {
	t.Helper()
	return NewProject(Actor{ID: "u-free", Name: "Freelancer", Role: RoleFreelancer}, Draft{
		Title: "3kW system",
		Value: 210000,
	})
}

func TestFreelancerPathwayHappyPath(t *testing.T) {
	p := freelancerProject(t)
	agent := Actor{ID: "u-agent", Name: "Field Agent", Role: RoleAgent}
	admin := Actor{ID: "u-admin", Name: "Back Office", Role: RoleCompany}

	afterAgent, err := AgentReview(p, agent, true, "site verified")
	require.NoError(t, err)
	assert.Equal(t, StatusAgentApproved, afterAgent.Status)
	assert.Equal(t, StageAgentApproved, afterAgent.PipelineStage)
	assert.Equal(t, "u-agent", afterAgent.Metadata["reviewed_by_agent"])

	queued, err := ForwardToAdminReview(afterAgent, agent, "")
	require.NoError(t, err)
	assert.Equal(t, StatusPendingAdminReview, queued.Status)
	assert.Equal(t, StagePendingAdminReview, queued.PipelineStage)

	afterAdmin, err := AdminReview(queued, admin, true, "approved for pipeline")
	require.NoError(t, err)
	assert.Equal(t, StatusReadyForAssignment, afterAdmin.Status)
	assert.Equal(t, StageLeadGenerated, afterAdmin.PipelineStage)
	assert.Equal(t, int64(4), afterAdmin.Version)
}

func TestAgentReviewRejection(t *testing.T) {
	p := freelancerProject(t)
	agent := Actor{ID: "u-agent", Name: "Field Agent", Role: RoleAgent}

	rejected, err := AgentReview(p, agent, false, "duplicate lead")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rejected.Status)
	assert.Equal(t, StageFreelancerCreated, rejected.PipelineStage)
}

func TestAdminReviewRejectionIsTerminal(t *testing.T) {
	p := freelancerProject(t)
	agent := Actor{ID: "u-agent", Name: "Field Agent", Role: RoleAgent}
	admin := Actor{ID: "u-admin", Name: "Back Office", Role: RoleCompany}

	afterAgent, err := AgentReview(p, agent, true, "")
	require.NoError(t, err)
	queued, err := ForwardToAdminReview(afterAgent, agent, "")
	require.NoError(t, err)

	rejected, err := AdminReview(queued, admin, false, "budget mismatch")
	require.NoError(t, err)
	assert.Equal(t, StatusAdminRejected, rejected.Status)
	assert.True(t, rejected.Status.Terminal())
}

func TestReviewsRejectWrongState(t *testing.T) {
	agent := Actor{ID: "u-agent", Name: "Field Agent", Role: RoleAgent}
	admin := Actor{ID: "u-admin", Name: "Back Office", Role: RoleCompany}

	// Admin-created projects never pass through agent review.
	adminProject := NewProject(admin, Draft{Title: "10kW system"})
	_, err := AgentReview(adminProject, agent, true, "")
	assert.ErrorIs(t, err, ErrInvalidReviewState)

	// Forwarding requires an agent approval first.
	_, err = ForwardToAdminReview(freelancerProject(t), agent, "")
	assert.ErrorIs(t, err, ErrInvalidReviewState)

	// Admin review requires the agent gate first.
	_, err = AdminReview(freelancerProject(t), admin, true, "")
	assert.ErrorIs(t, err, ErrInvalidReviewState)
}
