package domain

import (
	"strings"
	"time"
)

// User models a staff member who can sign in.
type User struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone,omitempty"`
	RoleID       string    `json:"role_id"`
	IsActive     bool      `json:"is_active"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Role is joined on reads so capability checks need no extra lookup.
	Role *Role `json:"role,omitempty"`
}

// Can reports whether the user is active and its role grants c.
func (u *User) Can(c Capability) bool {
	return u != nil && u.IsActive && u.Role != nil && u.Role.Kind.Can(c)
}

func (u *User) Validate() error {
	v := NewValidationError()
	if strings.TrimSpace(u.Email) == "" {
		v.Add("email", "is required")
	} else if !validEmail(u.Email) {
		v.Add("email", "must be a valid email")
	}
	if strings.TrimSpace(u.FullName) == "" {
		v.Add("full_name", "is required")
	}
	if strings.TrimSpace(u.RoleID) == "" {
		v.Add("role_id", "is required")
	}
	return v.OrNil()
}

// MinPasswordLength is the shortest password accepted for staff accounts.
const MinPasswordLength = 6

// Role groups users. Kind is the stable handle for eligibility rules; the
// role id is storage detail and never compared against.
type Role struct {
	RoleID    string    `json:"role_id"`
	Name      string    `json:"name"`
	Kind      RoleKind  `json:"kind"`
	Protected bool      `json:"protected"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *Role) Validate() error {
	v := NewValidationError()
	name := strings.TrimSpace(r.Name)
	switch {
	case name == "":
		v.Add("name", "is required")
	case len(name) < 3:
		v.Add("name", "must be at least 3 characters")
	}
	if !r.Kind.Valid() {
		v.Add("kind", "must be one of: manager installer technician staff")
	}
	return v.OrNil()
}

type RoleKind string

const (
	RoleManager    RoleKind = "manager"
	RoleInstaller  RoleKind = "installer"
	RoleTechnician RoleKind = "technician"
	RoleStaff      RoleKind = "staff"
)

func (k RoleKind) Valid() bool {
	_, ok := roleCapabilities[k]
	return ok
}

// Capability is something a role is allowed or eligible to do.
type Capability string

const (
	// CapAdminister covers user and role management.
	CapAdminister Capability = "administer"
	// CapInstallAssets marks users offered as installers on assets.
	CapInstallAssets Capability = "install_assets"
	// CapPerformService marks the field technician pool for service orders.
	CapPerformService Capability = "perform_service"
)

func (c Capability) Valid() bool {
	switch c {
	case CapAdminister, CapInstallAssets, CapPerformService:
		return true
	}
	return false
}

var roleCapabilities = map[RoleKind][]Capability{
	RoleManager:    {CapAdminister, CapInstallAssets},
	RoleInstaller:  {CapInstallAssets},
	RoleTechnician: {CapPerformService},
	RoleStaff:      {},
}

// Can reports whether roles of kind k hold capability c.
func (k RoleKind) Can(c Capability) bool {
	for _, granted := range roleCapabilities[k] {
		if granted == c {
			return true
		}
	}
	return false
}

// Capabilities returns a copy of the capabilities granted to k.
func (k RoleKind) Capabilities() []Capability {
	return append([]Capability(nil), roleCapabilities[k]...)
}

// Principal is the authenticated caller. It is built per request from a
// verified token whose session is still live, and dropped at logout.
type Principal struct {
	UserID    string
	Email     string
	RoleKind  RoleKind
	SessionID string
	ExpiresAt time.Time
}

func (p Principal) Can(c Capability) bool {
	return p.RoleKind.Can(c)
}
