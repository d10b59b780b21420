package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Role is the closed set of actor roles known to the registry.
type Role string

const (
	RoleSuperAdmin       Role = "super_admin"
	RoleDzongkhagAdmin   Role = "dzongkhag_admin"
	RoleGewogOperator    Role = "gewog_operator"
	RoleMeterReader      Role = "meter_reader"
	RoleTechnician       Role = "technician"
	RoleQualityInspector Role = "quality_inspector"
	RoleFinancialOfficer Role = "financial_officer"
	RoleViewer           Role = "viewer"
	RoleConsumer         Role = "consumer"
)

// Roles lists every valid role. permissionTable is built from this list, so a
// role added here without a case in impliedRoles panics at init.
var Roles = []Role{
	RoleSuperAdmin,
	RoleDzongkhagAdmin,
	RoleGewogOperator,
	RoleMeterReader,
	RoleTechnician,
	RoleQualityInspector,
	RoleFinancialOfficer,
	RoleViewer,
	RoleConsumer,
}

// Valid reports whether r is one of Roles.
func (r Role) Valid() bool {
	_, ok := permissionTable[r]
	return ok
}

// ParseRole converts a wire value into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", Invalid("role must be one of: %s", roleList())
	}
	return r, nil
}

func roleList() string {
	names := make([]string, len(Roles))
	for i, r := range Roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}

// PermissionSet is the immutable set of roles a caller may act as.
type PermissionSet struct {
	roles map[Role]struct{}
}

func newPermissionSet(roles ...Role) PermissionSet {
	m := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		m[r] = struct{}{}
	}
	return PermissionSet{roles: m}
}

// Has reports whether r is in the set.
func (p PermissionSet) Has(r Role) bool {
	_, ok := p.roles[r]
	return ok
}

// Intersects reports whether any of required is in the set.
func (p PermissionSet) Intersects(required ...Role) bool {
	for _, r := range required {
		if p.Has(r) {
			return true
		}
	}
	return false
}

// Len returns the number of roles in the set.
func (p PermissionSet) Len() int { return len(p.roles) }

// Roles returns the members in sorted order.
func (p PermissionSet) Roles() []Role {
	out := make([]Role, 0, len(p.roles))
	for r := range p.roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// impliedRoles is the hand-authored closure. gewog_operator deliberately
// lacks financial_officer and quality_inspector while dzongkhag_admin has
// them.
func impliedRoles(r Role) []Role {
	switch r {
	case RoleSuperAdmin:
		return []Role{
			RoleSuperAdmin, RoleDzongkhagAdmin, RoleGewogOperator,
			RoleMeterReader, RoleTechnician, RoleQualityInspector,
			RoleFinancialOfficer, RoleViewer, RoleConsumer,
		}
	case RoleDzongkhagAdmin:
		return []Role{
			RoleDzongkhagAdmin, RoleGewogOperator, RoleMeterReader,
			RoleTechnician, RoleQualityInspector, RoleFinancialOfficer,
			RoleViewer,
		}
	case RoleGewogOperator:
		return []Role{RoleGewogOperator, RoleMeterReader, RoleTechnician, RoleViewer}
	case RoleMeterReader, RoleTechnician, RoleQualityInspector,
		RoleFinancialOfficer, RoleViewer, RoleConsumer:
		return []Role{r}
	}
	return nil
}

var permissionTable = buildPermissionTable()

func buildPermissionTable() map[Role]PermissionSet {
	table := make(map[Role]PermissionSet, len(Roles))
	for _, r := range Roles {
		implied := impliedRoles(r)
		if implied == nil {
			panic(fmt.Sprintf("domain: role %q has no permission entry", r))
		}
		table[r] = newPermissionSet(implied...)
	}
	return table
}

// PermissionsFor returns the roles implied by r. Unknown roles get an empty
// set.
func PermissionsFor(r Role) PermissionSet {
	return permissionTable[r]
}
