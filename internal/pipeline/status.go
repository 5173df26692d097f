package pipeline

// Status is the coarse lifecycle marker of a project. Status and pipeline
// stage are two axes; the engine is the only writer of either so the pair
// always stays in lockstep.
type Status string

const (
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusRejected   Status = "rejected"
	StatusOnHold     Status = "on_hold"

	// Flow-specific statuses for the freelancer -> agent -> admin pathway.
	StatusPendingAgentReview Status = "pending_agent_review"
	StatusAgentApproved      Status = "agent_approved"
	StatusPendingAdminReview Status = "pending_admin_review"
	StatusAdminRejected      Status = "admin_rejected"
	StatusAdminCreated       Status = "admin_created"
	StatusReadyForAssignment Status = "ready_for_assignment"
)

// Terminal reports whether a status ends the project lifecycle. Note the
// generic transition validator deliberately does not enforce terminality;
// callers that want it check this before invoking the engine.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusAdminRejected:
		return true
	}
	return false
}

// statusForStage derives the coarse status implied by a pipeline stage.
// Stages past quotation but before completion are all "in progress".
func statusForStage(stage Stage) Status {
	switch Canonical(stage) {
	case StagePending:
		return StatusPending
	case StageOnHold:
		return StatusOnHold
	case StageCompleted, StageActivated:
		return StatusCompleted
	case StageFreelancerCreated:
		return StatusPendingAgentReview
	case StageAgentApproved:
		return StatusAgentApproved
	case StagePendingAdminReview:
		return StatusPendingAdminReview
	case StageAdminCreated:
		return StatusAdminCreated
	default:
		return StatusInProgress
	}
}
