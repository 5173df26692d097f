package pipeline

import (
	"errors"
	"fmt"
	"time"
)

// ErrForbidden is the sentinel for rejected stage transitions. It is
// permanent for a given role/stage pair: retrying cannot succeed until a
// human changes one side of the equation.
var ErrForbidden = errors.New("stage transition forbidden")

// ForbiddenError carries the role and target stage of a rejected transition
// so the caller can surface a meaningful message.
type ForbiddenError struct {
	Role   Role
	Target Stage
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("role %q may not set stage %q", e.Role, e.Target)
}

func (e *ForbiddenError) Unwrap() error { return ErrForbidden }

// AttemptTransition is the single gate for generic stage changes. It
// succeeds iff the actor's role includes the target stage in its permitted
// set; on success it returns a new snapshot with stage and derived status
// updated in lockstep, the version bumped and a history entry appended.
//
// The transition is otherwise unconditional: backward moves and re-setting
// the current stage are allowed (on_hold and pending are reachable from any
// point), and terminality is not enforced here.
func AttemptTransition(p Project, actor Actor, target Stage, comment string) (Project, error) {
	target = Canonical(target)
	if !CanSet(actor.Role, target) {
		return Project{}, &ForbiddenError{Role: actor.Role, Target: target}
	}
	return p.apply(target, statusForStage(target), actor, comment), nil
}

// CompleteInstallation is the installer side door: installers have no entry
// in the generic permission table, so this dedicated operation marks the
// installation finished unconditionally. Verifying the caller actually is
// the assigned installer is the HTTP layer's job.
//
// installationComplete is monotonic: once set it stays set, and the original
// completion date is preserved on repeated calls.
func CompleteInstallation(p Project, actor Actor, notes string) Project {
	out := p.apply(StageInstallationDone, statusForStage(StageInstallationDone), actor, "installation completed")
	if !p.InstallationComplete {
		now := time.Now().UTC()
		out.CompletionDate = &now
	}
	out.InstallationComplete = true
	if notes != "" {
		out.InstallerNotes = notes
	}
	return out
}

// AssignInstaller records the installer on the project and moves it to the
// installer_assigned stage.
func AssignInstaller(p Project, actor Actor, installer ActorRef) Project {
	out := p.apply(StageInstallerAssigned, statusForStage(StageInstallerAssigned), actor,
		fmt.Sprintf("installer %s assigned", installer.Name))
	out.Installer = installer
	out.InstallerAssigned = true
	return out
}

// AssignAgent records the agent responsible for the project and moves it to
// the agent_assigned stage.
func AssignAgent(p Project, actor Actor, agent ActorRef) Project {
	out := p.apply(StageAgentAssigned, statusForStage(StageAgentAssigned), actor,
		fmt.Sprintf("agent %s assigned", agent.Name))
	out.Agent = agent
	return out
}
