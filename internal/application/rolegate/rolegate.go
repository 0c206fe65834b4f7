// Package rolegate is the single permission table for the registration workflow.
//
// Every handler and service consults Allowed/Authorize instead of comparing
// roles inline. Adding a role or granting an action is a one-line change to
// the table below.
package rolegate

import (
	"coopreg/internal/application/models"
	id "coopreg/pkg/domain"
	dErrors "coopreg/pkg/domain-errors"
)

type actionSet map[models.Action]struct{}

func actions(as ...models.Action) actionSet {
	s := make(actionSet, len(as))
	for _, a := range as {
		s[a] = struct{}{}
	}
	return s
}

func union(sets ...actionSet) actionSet {
	out := actionSet{}
	for _, s := range sets {
		for a := range s {
			out[a] = struct{}{}
		}
	}
	return out
}

var (
	reviewerBase = actions(models.ActionView, models.ActionViewHistory)

	intakeOfficer = union(reviewerBase, actions(
		models.ActionList,
		models.ActionCompleteIntake,
		models.ActionAssign,
		models.ActionBulkAssign,
		models.ActionLogCommunication,
	))

	registrar = union(reviewerBase, actions(
		models.ActionList,
		models.ActionApprove,
		models.ActionReject,
		models.ActionIssueCertificate,
	))
)

var table = map[id.Role]actionSet{
	id.RoleApplicant:            actions(models.ActionCreate, models.ActionView, models.ActionViewHistory, models.ActionSubmitAppeal),
	id.RoleGovernmentOfficer:    intakeOfficer,
	id.RoleRegulator:            intakeOfficer,
	id.RoleIntelligenceLiaison:  union(reviewerBase, actions(models.ActionSecurityClear)),
	id.RoleLegalOfficer:         union(reviewerBase, actions(models.ActionLegalReview)),
	id.RoleRegistrar:            registrar,
	id.RoleDirectorCooperatives: union(registrar, actions(models.ActionHandleAppeal)),
	id.RoleMinisterDelegate:     union(reviewerBase, actions(models.ActionList, models.ActionApprove, models.ActionReject, models.ActionHandleAppeal)),
}

// Allowed reports whether role may perform action. Unknown roles are denied.
func Allowed(role id.Role, action models.Action) bool {
	set, ok := table[role]
	if !ok {
		return false
	}
	_, ok = set[action]
	return ok
}

// Authorize returns a forbidden error when role may not perform action.
func Authorize(role id.Role, action models.Action) error {
	if !Allowed(role, action) {
		return dErrors.New(dErrors.CodeForbidden, "role "+string(role)+" may not "+string(action))
	}
	return nil
}

// RolesFor lists the roles allowed to perform action, in id.Roles order.
func RolesFor(action models.Action) []id.Role {
	var out []id.Role
	for _, r := range id.Roles {
		if Allowed(r, action) {
			out = append(out, r)
		}
	}
	return out
}
