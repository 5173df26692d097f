package pipeline

// rolePermissions maps each role to the stages it may set through the
// generic transition validator. Roles absent from the table (freelancer,
// installer, technician, customer) get the empty set: they advance projects
// through dedicated side-door operations instead.
var rolePermissions = map[Role][]Stage{
	RoleCompany: {
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
	},
	RoleAgent: {
		StageLeadGenerated,
		StageQuotationGenerated,
		StageBankProcess,
		StagePayment70Done,
		StageReadyForInstallation,
	},
}

// AllowedStages returns the set of stages a role may transition a project
// into. Unknown roles yield an empty set, never an error: callers must treat
// "no allowed stages" as "operation forbidden".
func AllowedStages(r Role) map[Stage]struct{} {
	stages := rolePermissions[r]
	out := make(map[Stage]struct{}, len(stages))
	for _, s := range stages {
		out[s] = struct{}{}
	}
	return out
}

// CanSet reports whether role r may set stage s via the generic validator.
func CanSet(r Role, s Stage) bool {
	target := Canonical(s)
	for _, allowed := range rolePermissions[r] {
		if allowed == target {
			return true
		}
	}
	return false
}
