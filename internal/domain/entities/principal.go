package entities

// Role is the account role carried by an authenticated principal
type Role string

const (
	RoleUser  Role = "USER"
	RoleLab   Role = "LAB"
	RoleAdmin Role = "ADMIN"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleLab, RoleAdmin:
		return true
	}
	return false
}

// Principal is the authenticated caller
type Principal struct {
	ID    string  `json:"id"`
	Role  Role    `json:"role"`
	LabID *string `json:"lab_id,omitempty"`
}

// IsAdmin reports whether the principal has the ADMIN role
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// ManagesLab reports whether the principal is the LAB account of labID
func (p *Principal) ManagesLab(labID string) bool {
	return p != nil && p.Role == RoleLab && p.LabID != nil && *p.LabID == labID
}

// SessionLocation is the caller's detected position cached per session
type SessionLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city,omitempty"`
	Pincode   string  `json:"pincode,omitempty"`
}
