package domain

import "time"

// Role is the single authorization attribute carried by an account and its tokens.
type Role string

const (
	RolePatient            Role = "patient"
	RoleHealthcareProvider Role = "healthcare_provider"
	RoleAdmin              Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleHealthcareProvider, RoleAdmin:
		return true
	}
	return false
}

// Account is the persisted user record.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         Role      `json:"role,omitempty"`
	PasswordHash string    `json:"-"`
	Avatar       string    `json:"avatar,omitempty"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// Projection selects which fields a directory read returns.
type Projection int

const (
	// ProjectionFull returns every field, including the password hash.
	ProjectionFull Projection = iota
	// ProjectionIdentity omits the password hash.
	ProjectionIdentity
	// ProjectionPublic omits the password hash and the role.
	ProjectionPublic
)

// PublicAccount is the view of an account that any caller may see.
type PublicAccount struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar,omitempty"`
}

// Identity is the request-scoped caller produced by the authorization gate.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar,omitempty"`
	Role     Role   `json:"role"`
}

// Public returns the publicly visible fields of the account.
func (a *Account) Public() PublicAccount {
	return PublicAccount{
		ID:       a.ID,
		Username: a.Username,
		Email:    a.Email,
		Avatar:   a.Avatar,
	}
}

// Identity returns the authorized identity for the account.
func (a *Account) Identity() Identity {
	return Identity{
		ID:       a.ID,
		Username: a.Username,
		Email:    a.Email,
		Avatar:   a.Avatar,
		Role:     a.Role,
	}
}

// Public returns the publicly visible fields of the identity.
func (i Identity) Public() PublicAccount {
	return PublicAccount{
		ID:       i.ID,
		Username: i.Username,
		Email:    i.Email,
		Avatar:   i.Avatar,
	}
}

// AccountPatch is a partial update. Nil fields are left untouched.
// PasswordHash must already be a digest, never plaintext.
type AccountPatch struct {
	Username     *string
	Email        *string
	PasswordHash *string
	Avatar       *string
	Role         *Role
}

// IsEmpty reports whether the patch changes nothing.
func (p AccountPatch) IsEmpty() bool {
	return p.Username == nil && p.Email == nil && p.PasswordHash == nil && p.Avatar == nil && p.Role == nil
}
