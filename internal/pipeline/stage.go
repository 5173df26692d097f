// Package pipeline implements the project workflow engine: the stage
// registry, the role-permission table, the source-flow classifier and the
// transition validator. It is pure and storage-agnostic; callers load a
// project snapshot, invoke an operation and persist the returned copy.
package pipeline

// Stage is the fine-grained workflow position of a project.
type Stage string

const (
	StageLeadGenerated        Stage = "lead_generated"
	StageQuotationGenerated   Stage = "quotation_generated"
	StageBankProcess          Stage = "bank_process"
	StagePayment70Done        Stage = "payment_70_done"
	StageReadyForInstallation Stage = "ready_for_installation"
	StageInstallationDone     Stage = "installation_done"
	StageMeterApplied         Stage = "meter_applied"
	StagePayment30Done        Stage = "payment_30_done"
	StageCompleted            Stage = "completed"
	StageActivated            Stage = "activated"
	StageOnHold               Stage = "on_hold"
	StagePending              Stage = "pending"

	// Flow-specific stages set by creation flows and side-door operations,
	// never through the generic permission table.
	StageFreelancerCreated  Stage = "freelancer_created"
	StageAgentApproved      Stage = "agent_approved"
	StagePendingAdminReview Stage = "pending_admin_review"
	StageAdminCreated       Stage = "admin_created"
	StageAgentAssigned      Stage = "agent_assigned"
	StageInstallerAssigned  Stage = "installer_assigned"
)

// Tag is a presentation hint for a stage, abstracted away from any concrete
// UI styling.
type Tag string

const (
	TagNeutral Tag = "neutral"
	TagInfo    Tag = "info"
	TagWarning Tag = "warning"
	TagSuccess Tag = "success"
	TagDanger  Tag = "danger"
)

// stageAliases maps legacy spellings seen in older records to canonical keys.
var stageAliases = map[Stage]Stage{
	"quotation_sent":        StageQuotationGenerated,
	"installation_complete": StageInstallationDone,
}

type stageInfo struct {
	label string
	tag   Tag
}

// allStages is the canonical ordering used to populate selection UIs.
var allStages = []Stage{
	StageLeadGenerated,
	StageQuotationGenerated,
	StageBankProcess,
	StagePayment70Done,
	StageReadyForInstallation,
	StageInstallationDone,
	StageMeterApplied,
	StagePayment30Done,
	StageCompleted,
	StageActivated,
	StageOnHold,
	StagePending,
	StageFreelancerCreated,
	StageAgentApproved,
	StagePendingAdminReview,
	StageAdminCreated,
	StageAgentAssigned,
	StageInstallerAssigned,
}

var stageRegistry = map[Stage]stageInfo{
	StageLeadGenerated:        {label: "Lead Generated", tag: TagInfo},
	StageQuotationGenerated:   {label: "Quotation Generated", tag: TagInfo},
	StageBankProcess:          {label: "Bank Process", tag: TagInfo},
	StagePayment70Done:        {label: "70% Payment Done", tag: TagSuccess},
	StageReadyForInstallation: {label: "Ready for Installation", tag: TagInfo},
	StageInstallationDone:     {label: "Installation Done", tag: TagSuccess},
	StageMeterApplied:         {label: "Meter Applied", tag: TagInfo},
	StagePayment30Done:        {label: "30% Payment Done", tag: TagSuccess},
	StageCompleted:            {label: "Completed", tag: TagSuccess},
	StageActivated:            {label: "System Activated", tag: TagSuccess},
	StageOnHold:               {label: "On Hold", tag: TagWarning},
	StagePending:              {label: "Pending", tag: TagNeutral},
	StageFreelancerCreated:    {label: "Submitted by Freelancer", tag: TagNeutral},
	StageAgentApproved:        {label: "Approved by Agent", tag: TagInfo},
	StagePendingAdminReview:   {label: "Pending Admin Review", tag: TagWarning},
	StageAdminCreated:         {label: "Created by Admin", tag: TagNeutral},
	StageAgentAssigned:        {label: "Agent Assigned", tag: TagInfo},
	StageInstallerAssigned:    {label: "Installer Assigned", tag: TagInfo},
}

// Canonical resolves alias spellings to their canonical stage key. Unknown
// stages pass through unchanged.
func Canonical(s Stage) Stage {
	if c, ok := stageAliases[s]; ok {
		return c
	}
	return s
}

// Known reports whether s is a member of the stage registry.
func Known(s Stage) bool {
	_, ok := stageRegistry[Canonical(s)]
	return ok
}

// LabelFor returns the human-readable label for a stage. Unknown stages fall
// back to the raw key so rendering never fails on stale data.
func LabelFor(s Stage) string {
	if info, ok := stageRegistry[Canonical(s)]; ok {
		return info.label
	}
	return string(s)
}

// TagFor returns the presentation tag for a stage; unknown stages are neutral.
func TagFor(s Stage) Tag {
	if info, ok := stageRegistry[Canonical(s)]; ok {
		return info.tag
	}
	return TagNeutral
}

// AllStages returns the registry in canonical order. The result is a copy.
func AllStages() []Stage {
	out := make([]Stage, len(allStages))
	copy(out, allStages)
	return out
}
