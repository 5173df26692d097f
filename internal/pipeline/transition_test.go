package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func companyActor() Actor {
	return Actor{ID: "u-admin", Name: "Back Office", Role: RoleCompany}
}

func testProject(t *testing.T) Project {
	t.Helper()
	p := NewProject(companyActor(), Draft{
		Title:    "5kW rooftop system",
		Location: "Pune",
		Value:    450000,
	})
	require.NotEmpty(t, p.ID)
	return p
}

func TestPermissionClosure(t *testing.T) {
	roles := []Role{RoleCompany, RoleAgent, RoleFreelancer, RoleInstaller, RoleTechnician, RoleCustomer, Role("auditor")}

	for _, role := range roles {
		allowed := AllowedStages(role)
		actor := Actor{ID: "u1", Name: "Someone", Role: role}

		for _, stage := range AllStages() {
			p := testProject(t)
			updated, err := AttemptTransition(p, actor, stage, "")

			if _, ok := allowed[stage]; ok {
				require.NoError(t, err, "role %s stage %s", role, stage)
				assert.Equal(t, stage, updated.PipelineStage)
			} else {
				require.Error(t, err, "role %s stage %s", role, stage)
				assert.ErrorIs(t, err, ErrForbidden)
			}
		}
	}
}

func TestRegistryLookupsArePure(t *testing.T) {
	assert.Equal(t, LabelFor(StageBankProcess), LabelFor(StageBankProcess))
	assert.Equal(t, AllowedStages(RoleAgent), AllowedStages(RoleAgent))
	assert.Equal(t, AllStages(), AllStages())

	// Mutating a returned set must not leak into the table.
	set := AllowedStages(RoleAgent)
	set[StageCompleted] = struct{}{}
	assert.NotContains(t, AllowedStages(RoleAgent), StageCompleted)
}

func TestLabelForUnknownStageFallsBack(t *testing.T) {
	assert.Equal(t, "somthing_new", LabelFor(Stage("somthing_new")))
	assert.Equal(t, TagNeutral, TagFor(Stage("somthing_new")))
}

func TestStageAliases(t *testing.T) {
	assert.Equal(t, StageQuotationGenerated, Canonical(Stage("quotation_sent")))
	assert.Equal(t, StageInstallationDone, Canonical(Stage("installation_complete")))

	// An alias submitted as a transition target must resolve before the
	// permission check.
	p := testProject(t)
	updated, err := AttemptTransition(p, companyActor(), Stage("installation_complete"), "")
	require.NoError(t, err)
	assert.Equal(t, StageInstallationDone, updated.PipelineStage)
}

func TestAgentBlockedFromCompletion(t *testing.T) {
	p := testProject(t)
	agent := Actor{ID: "u-agent", Name: "Field Agent", Role: RoleAgent}

	_, err := AttemptTransition(p, agent, StageInstallationDone, "")
	require.Error(t, err)
	var forbidden *ForbiddenError
	require.True(t, errors.As(err, &forbidden))
	assert.Equal(t, RoleAgent, forbidden.Role)
	assert.Equal(t, StageInstallationDone, forbidden.Target)

	updated, err := AttemptTransition(p, companyActor(), StageInstallationDone, "panels mounted")
	require.NoError(t, err)
	assert.Equal(t, StageInstallationDone, updated.PipelineStage)
	assert.Equal(t, StatusInProgress, updated.Status)
}

func TestInstallerSideDoor(t *testing.T) {
	p := testProject(t)
	installer := Actor{ID: "u-inst", Name: "Installer", Role: RoleInstaller}

	// No generic grant at all.
	_, err := AttemptTransition(p, installer, StageLeadGenerated, "")
	require.ErrorIs(t, err, ErrForbidden)

	// The dedicated operation succeeds unconditionally.
	done := CompleteInstallation(p, installer, "done")
	assert.True(t, done.InstallationComplete)
	assert.Equal(t, StageInstallationDone, done.PipelineStage)
	assert.Equal(t, "done", done.InstallerNotes)
	require.NotNil(t, done.CompletionDate)
}

func TestInstallationCompletionIsMonotonic(t *testing.T) {
	p := testProject(t)
	installer := Actor{ID: "u-inst", Name: "Installer", Role: RoleInstaller}

	first := CompleteInstallation(p, installer, "initial visit")
	firstDate := *first.CompletionDate

	again := CompleteInstallation(first, installer, "follow-up visit")
	assert.True(t, again.InstallationComplete)
	assert.Equal(t, firstDate, *again.CompletionDate, "completion date is set exactly once")
	assert.Equal(t, "follow-up visit", again.InstallerNotes)

	// No engine operation can reset the flag.
	moved, err := AttemptTransition(again, companyActor(), StagePending, "")
	require.NoError(t, err)
	assert.True(t, moved.InstallationComplete)
}

func TestAssignInstaller(t *testing.T) {
	p := testProject(t)
	out := AssignInstaller(p, companyActor(), ActorRef{ID: "u-inst", Name: "Installer"})

	assert.True(t, out.InstallerAssigned)
	assert.Equal(t, "u-inst", out.Installer.ID)
	assert.Equal(t, StageInstallerAssigned, out.PipelineStage)
	assert.Equal(t, StatusInProgress, out.Status)
}

func TestAssignAgent(t *testing.T) {
	p := testProject(t)
	out := AssignAgent(p, companyActor(), ActorRef{ID: "u-agent", Name: "Field Agent"})

	assert.Equal(t, "u-agent", out.Agent.ID)
	assert.Equal(t, StageAgentAssigned, out.PipelineStage)
}

func TestTransitionBumpsVersionAndHistory(t *testing.T) {
	p := testProject(t)
	require.Equal(t, int64(1), p.Version)
	require.Len(t, p.History, 1)

	updated, err := AttemptTransition(p, companyActor(), StageBankProcess, "loan docs submitted")
	require.NoError(t, err)

	assert.Equal(t, int64(2), updated.Version)
	require.Len(t, updated.History, 2)
	last := updated.History[len(updated.History)-1]
	assert.Equal(t, StageBankProcess, last.Stage)
	assert.Equal(t, "loan docs submitted", last.Comment)
	assert.Equal(t, "u-admin", last.ActorID)
	assert.False(t, last.At.IsZero())

	// The input snapshot is untouched.
	assert.Equal(t, int64(1), p.Version)
	assert.Len(t, p.History, 1)
}

func TestBackwardAndRepeatedMovesAreAccepted(t *testing.T) {
	p := testProject(t)
	admin := companyActor()

	forward, err := AttemptTransition(p, admin, StageCompleted, "")
	require.NoError(t, err)
	assert.True(t, forward.Status.Terminal())

	// No terminality or forward-only enforcement in the generic validator.
	back, err := AttemptTransition(forward, admin, StageLeadGenerated, "reopened")
	require.NoError(t, err)
	assert.Equal(t, StageLeadGenerated, back.PipelineStage)

	same, err := AttemptTransition(back, admin, StageLeadGenerated, "")
	require.NoError(t, err)
	assert.Equal(t, StageLeadGenerated, same.PipelineStage)
}

func TestStatusStaysInLockstepWithStage(t *testing.T) {
	cases := map[Stage]Status{
		StagePending:            StatusPending,
		StageOnHold:             StatusOnHold,
		StageCompleted:          StatusCompleted,
		StageActivated:          StatusCompleted,
		StageBankProcess:        StatusInProgress,
		StageMeterApplied:       StatusInProgress,
		StageQuotationGenerated: StatusInProgress,
	}

	for stage, want := range cases {
		p := testProject(t)
		updated, err := AttemptTransition(p, companyActor(), stage, "")
		require.NoError(t, err)
		assert.Equal(t, want, updated.Status, "stage %s", stage)
	}
}
