package domain

import dErrors "coopreg/pkg/domain-errors"

// Role is the authority an authenticated actor holds within a tenant.
type Role string

const (
	RoleApplicant            Role = "applicant"
	RoleGovernmentOfficer    Role = "government_officer"
	RoleRegulator            Role = "regulator"
	RoleIntelligenceLiaison  Role = "intelligence_liaison"
	RoleLegalOfficer         Role = "legal_officer"
	RoleRegistrar            Role = "registrar"
	RoleDirectorCooperatives Role = "director_cooperatives"
	RoleMinisterDelegate     Role = "minister_delegate"
)

// Roles lists every known role in a stable order.
var Roles = []Role{
	RoleApplicant,
	RoleGovernmentOfficer,
	RoleRegulator,
	RoleIntelligenceLiaison,
	RoleLegalOfficer,
	RoleRegistrar,
	RoleDirectorCooperatives,
	RoleMinisterDelegate,
}

func (r Role) IsValid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ParseRole rejects any role outside the known set.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown role")
	}
	return r, nil
}
