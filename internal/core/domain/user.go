package domain

import "time"

// Password is either a stored bcrypt hash or nothing. An identity registered
// without a password can never log in with one.
type Password struct {
	hash string
}

// NoPassword is the absent password.
func NoPassword() Password { return Password{} }

// HashedPassword wraps a stored hash. An empty hash is treated as absent.
func HashedPassword(hash string) Password { return Password{hash: hash} }

// Hash returns the stored hash and whether one is present.
func (p Password) Hash() (string, bool) {
	return p.hash, p.hash != ""
}

// IsSet reports whether a hash is present.
func (p Password) IsSet() bool { return p.hash != "" }

// Identity models a registered actor in the system.
type Identity struct {
	ID        string
	Name      string
	Phone     string
	CID       string
	Role      Role
	Password  Password
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Permissions expands the identity's role.
func (i *Identity) Permissions() PermissionSet {
	return PermissionsFor(i.Role)
}

// IdentityPatch carries the mutable identity fields. Nil fields are left
// unchanged.
type IdentityPatch struct {
	Name  *string
	Phone *string
	CID   *string
	Role  *Role
}

// Empty reports whether the patch changes nothing.
func (p IdentityPatch) Empty() bool {
	return p.Name == nil && p.Phone == nil && p.CID == nil && p.Role == nil
}
