package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, FlowAdmin, Classify(RoleCompany))
	assert.Equal(t, FlowFreelancer, Classify(RoleFreelancer))

	// Everything else falls into the agent-style bucket.
	for _, r := range []Role{RoleAgent, RoleInstaller, RoleTechnician, RoleCustomer, Role("auditor"), Role("")} {
		assert.Equal(t, FlowAgent, Classify(r), "role %q", r)
	}
}

func TestFreelancerStatusOverride(t *testing.T) {
	freelancer := Actor{ID: "u-free", Name: "Freelancer", Role: RoleFreelancer}

	// A tampering attempt: the caller submits an approved status directly.
	draft := Draft{Title: "3kW system", Status: StatusApproved, Stage: StageCompleted}
	init := DeriveInitialState(Classify(freelancer.Role), freelancer, draft)

	assert.Equal(t, StatusPendingAgentReview, init.Status)
	assert.Equal(t, StageFreelancerCreated, init.Stage)
	assert.Equal(t, FlowTypeFreelancerToAdmin, init.Metadata[MetaFlowType])
	assert.Equal(t, "true", init.Metadata[MetaRequiresAgentReview])
	assert.Equal(t, "u-free", init.Metadata[MetaSubmittedBy])
}

func TestAdminFlowForcesAdminCreated(t *testing.T) {
	admin := Actor{ID: "u-admin", Name: "Back Office", Role: RoleCompany}

	draft := Draft{Title: "10kW system", Status: StatusPending, Stage: StageBankProcess}
	init := DeriveInitialState(Classify(admin.Role), admin, draft)

	assert.Equal(t, StatusAdminCreated, init.Status)
	assert.Equal(t, StageAdminCreated, init.Stage)
	assert.Equal(t, FlowTypeAdminDirect, init.Metadata[MetaFlowType])
}

func TestAgentFlowPassesSubmittedStateThrough(t *testing.T) {
	agent := Actor{ID: "u-agent", Name: "Field Agent", Role: RoleAgent}

	draft := Draft{Title: "6kW system", Status: StatusApproved, Stage: StageBankProcess}
	init := DeriveInitialState(Classify(agent.Role), agent, draft)

	assert.Equal(t, StatusApproved, init.Status)
	assert.Equal(t, StageBankProcess, init.Stage)

	// Empty submissions get sensible defaults.
	empty := DeriveInitialState(FlowAgent, agent, Draft{Title: "bare"})
	assert.Equal(t, StatusPending, empty.Status)
	assert.Equal(t, StageLeadGenerated, empty.Stage)
}

func TestNewProjectStampsCreationFields(t *testing.T) {
	freelancer := Actor{ID: "u-free", Name: "Freelancer", Role: RoleFreelancer}
	p := NewProject(freelancer, Draft{Title: "3kW system", Value: 210000})

	assert.NotEmpty(t, p.ID)
	assert.True(t, strings.HasPrefix(p.CustomerRef, "CUST-"), "got %q", p.CustomerRef)
	assert.Equal(t, FlowFreelancer, p.SourceFlow)
	assert.Equal(t, "u-free", p.Freelancer.ID)
	assert.Equal(t, "u-free", p.CreatedBy.ID)
	assert.Equal(t, int64(1), p.Version)
	require.Len(t, p.History, 1)
	assert.Equal(t, StageFreelancerCreated, p.History[0].Stage)
	assert.False(t, p.CreatedAt.IsZero())
	assert.False(t, p.UpdatedAt.IsZero())
}

func TestParseRoleNormalises(t *testing.T) {
	assert.Equal(t, RoleCompany, ParseRole("  Company "))
	assert.True(t, KnownRole(RoleInstaller))
	assert.False(t, KnownRole(Role("auditor")))
}
