package pipeline

// SourceFlow tags which creation pathway produced a project. Set once at
// creation, immutable afterwards.
type SourceFlow string

const (
	FlowAdmin      SourceFlow = "admin"
	FlowFreelancer SourceFlow = "freelancer"
	FlowAgent      SourceFlow = "agent"
)

// Metadata keys attached by DeriveInitialState.
const (
	MetaFlowType            = "flow_type"
	MetaRequiresAgentReview = "requires_agent_review"
	MetaSubmittedBy         = "submitted_by"

	FlowTypeAdminDirect       = "admin_direct"
	FlowTypeFreelancerToAdmin = "freelancer_to_admin"
)

// Classify buckets the creator's role into a creation flow. Anything that is
// not company or freelancer falls back to the agent-style flow.
func Classify(creator Role) SourceFlow {
	switch creator {
	case RoleCompany:
		return FlowAdmin
	case RoleFreelancer:
		return FlowFreelancer
	default:
		return FlowAgent
	}
}

// Draft carries the caller-submitted fields for a new project. Status and
// Stage are only honoured on the agent flow; the other flows force their own
// initial pair.
type Draft struct {
	Title       string
	Description string
	Location    string
	Value       float64
	Status      Status
	Stage       Stage
}

// InitialState is the derived creation-time state for a project.
type InitialState struct {
	Flow     SourceFlow
	Status   Status
	Stage    Stage
	Metadata map[string]string
}

// DeriveInitialState computes the initial status/stage pair and flow
// metadata for a new project.
//
// The freelancer flow overrides whatever status the caller submitted: a
// freelancer-originated project must not be able to self-approve by posting
// status=approved, so the pending review status is forced here. The admin
// flow is trusted but still normalised to admin_created; the agent flow
// passes submitted values through unchanged.
func DeriveInitialState(flow SourceFlow, creator Actor, draft Draft) InitialState {
	switch flow {
	case FlowAdmin:
		return InitialState{
			Flow:   FlowAdmin,
			Status: StatusAdminCreated,
			Stage:  StageAdminCreated,
			Metadata: map[string]string{
				MetaFlowType: FlowTypeAdminDirect,
			},
		}
	case FlowFreelancer:
		return InitialState{
			Flow:   FlowFreelancer,
			Status: StatusPendingAgentReview,
			Stage:  StageFreelancerCreated,
			Metadata: map[string]string{
				MetaFlowType:            FlowTypeFreelancerToAdmin,
				MetaRequiresAgentReview: "true",
				MetaSubmittedBy:         creator.ID,
			},
		}
	default:
		status := draft.Status
		if status == "" {
			status = StatusPending
		}
		stage := Canonical(draft.Stage)
		if stage == "" {
			stage = StageLeadGenerated
		}
		return InitialState{
			Flow:     FlowAgent,
			Status:   status,
			Stage:    stage,
			Metadata: map[string]string{},
		}
	}
}
