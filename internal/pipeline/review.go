package pipeline

import (
	"errors"
	"fmt"
)

// ErrInvalidReviewState rejects review decisions on projects that are not
// waiting for that review.
var ErrInvalidReviewState = errors.New("project is not awaiting this review")

// AgentReview resolves the first gate of the freelancer pathway. An approved
// submission moves to agent_approved; a rejected one is closed with status
// rejected while keeping its stage for auditability.
func AgentReview(p Project, actor Actor, approve bool, comment string) (Project, error) {
	if p.SourceFlow != FlowFreelancer || p.Status != StatusPendingAgentReview {
		return Project{}, fmt.Errorf("%w: status %q", ErrInvalidReviewState, p.Status)
	}

	if !approve {
		out := p.apply(p.PipelineStage, StatusRejected, actor, comment)
		return out, nil
	}

	out := p.apply(StageAgentApproved, StatusAgentApproved, actor, comment)
	if out.Metadata == nil {
		out.Metadata = map[string]string{}
	}
	out.Metadata["agent_review"] = "approved"
	out.Metadata["reviewed_by_agent"] = actor.ID
	return out, nil
}

// ForwardToAdminReview queues an agent-approved submission for the final
// admin gate. Kept as a separate hop so agent_approved shows up in the
// project history in its own right.
func ForwardToAdminReview(p Project, actor Actor, comment string) (Project, error) {
	if p.Status != StatusAgentApproved {
		return Project{}, fmt.Errorf("%w: status %q", ErrInvalidReviewState, p.Status)
	}
	return p.apply(StagePendingAdminReview, StatusPendingAdminReview, actor, comment), nil
}

// AdminReview resolves the final gate of the freelancer pathway. Approval
// drops the project into the operational pipeline ready for assignment;
// rejection is terminal.
func AdminReview(p Project, actor Actor, approve bool, comment string) (Project, error) {
	if p.Status != StatusPendingAdminReview {
		return Project{}, fmt.Errorf("%w: status %q", ErrInvalidReviewState, p.Status)
	}

	if !approve {
		out := p.apply(p.PipelineStage, StatusAdminRejected, actor, comment)
		return out, nil
	}

	out := p.apply(StageLeadGenerated, StatusReadyForAssignment, actor, comment)
	if out.Metadata == nil {
		out.Metadata = map[string]string{}
	}
	out.Metadata["admin_review"] = "approved"
	return out, nil
}
