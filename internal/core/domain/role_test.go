package domain

import (
	"errors"
	"testing"
)

func TestPermissionsFor_Reflexive(t *testing.T) {
	for _, r := range Roles {
		if !PermissionsFor(r).Has(r) {
			t.Errorf("permissions for %s do not include itself", r)
		}
	}
}

func TestPermissionsFor_SuperAdminIsSuperset(t *testing.T) {
	super := PermissionsFor(RoleSuperAdmin)
	for _, r := range Roles {
		for _, implied := range PermissionsFor(r).Roles() {
			if !super.Has(implied) {
				t.Errorf("super admin lacks %s (implied by %s)", implied, r)
			}
		}
	}
	if super.Len() != len(Roles) {
		t.Errorf("super admin: got %d roles, want %d", super.Len(), len(Roles))
	}
}

func TestPermissionsFor_Table(t *testing.T) {
	tests := []struct {
		role Role
		want []Role
	}{
		{RoleDzongkhagAdmin, []Role{
			RoleDzongkhagAdmin, RoleGewogOperator, RoleMeterReader, RoleTechnician,
			RoleQualityInspector, RoleFinancialOfficer, RoleViewer,
		}},
		{RoleGewogOperator, []Role{RoleGewogOperator, RoleMeterReader, RoleTechnician, RoleViewer}},
		{RoleMeterReader, []Role{RoleMeterReader}},
		{RoleTechnician, []Role{RoleTechnician}},
		{RoleQualityInspector, []Role{RoleQualityInspector}},
		{RoleFinancialOfficer, []Role{RoleFinancialOfficer}},
		{RoleViewer, []Role{RoleViewer}},
		{RoleConsumer, []Role{RoleConsumer}},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			got := PermissionsFor(tt.role)
			if got.Len() != len(tt.want) {
				t.Fatalf("got %v, want %v", got.Roles(), tt.want)
			}
			for _, r := range tt.want {
				if !got.Has(r) {
					t.Errorf("missing %s", r)
				}
			}
		})
	}
}

func TestPermissionsFor_GewogOperatorAsymmetry(t *testing.T) {
	op := PermissionsFor(RoleGewogOperator)
	if op.Has(RoleFinancialOfficer) || op.Has(RoleQualityInspector) {
		t.Fatalf("gewog operator must not imply financial officer or quality inspector: %v", op.Roles())
	}
	if op.Has(RoleConsumer) || PermissionsFor(RoleDzongkhagAdmin).Has(RoleConsumer) {
		t.Fatalf("only super admin implies consumer")
	}
}

func TestPermissionsFor_UnknownRoleFailsClosed(t *testing.T) {
	for _, r := range []Role{"", "admin", "SUPER_ADMIN", "root"} {
		p := PermissionsFor(r)
		if p.Len() != 0 {
			t.Errorf("%q: expected empty set, got %v", r, p.Roles())
		}
		if p.Intersects(Roles...) {
			t.Errorf("%q: empty set must not intersect anything", r)
		}
	}
}

func TestPermissionSet_Intersects(t *testing.T) {
	p := PermissionsFor(RoleGewogOperator)
	if !p.Intersects(RoleSuperAdmin, RoleViewer) {
		t.Errorf("expected intersection on viewer")
	}
	if p.Intersects(RoleSuperAdmin, RoleDzongkhagAdmin) {
		t.Errorf("unexpected intersection")
	}
	if p.Intersects() {
		t.Errorf("no required roles must not intersect")
	}
}

func TestParseRole(t *testing.T) {
	for _, r := range Roles {
		got, err := ParseRole(string(r))
		if err != nil || got != r {
			t.Errorf("ParseRole(%q) = %q, %v", r, got, err)
		}
	}
	if _, err := ParseRole("admin"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestPassword(t *testing.T) {
	if _, ok := NoPassword().Hash(); ok {
		t.Errorf("NoPassword must not carry a hash")
	}
	if HashedPassword("").IsSet() {
		t.Errorf("empty hash must be treated as absent")
	}
	h, ok := HashedPassword("$2a$10$abc").Hash()
	if !ok || h != "$2a$10$abc" {
		t.Errorf("unexpected hash %q, %v", h, ok)
	}
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		err  error
		kind error
	}{
		{ErrUserNotFound, ErrNotFound},
		{ErrUserExists, ErrConflict},
		{ErrInvalidCredentials, ErrUnauthorized},
		{ErrPasswordNotSet, ErrUnauthorized},
		{ErrPasswordNotSet, ErrInvalidCredentials},
		{ErrInvalidToken, ErrUnauthorized},
		{ErrIdentityGone, ErrUnauthorized},
		{ErrInsufficientRole, ErrForbidden},
		{ErrMissingSigningSecret, ErrConfiguration},
		{Invalid("name is required"), ErrValidation},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, tt.kind) {
			t.Errorf("%v is not %v", tt.err, tt.kind)
		}
	}
	if ErrPasswordNotSet.Error() != ErrInvalidCredentials.Error() {
		t.Errorf("password-not-set message %q differs from invalid credentials", ErrPasswordNotSet.Error())
	}
	if ErrUserNotFound.Error() != "user not found" {
		t.Errorf("unexpected message %q", ErrUserNotFound.Error())
	}
}
