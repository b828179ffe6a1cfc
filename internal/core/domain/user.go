package domain

import "time"

// Role is the authorization role carried by every identity.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleClient  Role = "client"
	RoleSupport Role = "support"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleClient, RoleSupport:
		return true
	}
	return false
}

// Staff reports whether r belongs to the support organisation.
func (r Role) Staff() bool { return r == RoleAdmin || r == RoleSupport }

// ERPSystem tags a client identity with the ERP product it runs.
type ERPSystem string

const (
	ERPS4Hana      ERPSystem = "s4_hana"
	ERPSAPByDesign ERPSystem = "sap_bydesign"
	ERPAcumatica   ERPSystem = "acumatica"
)

// Valid reports whether e is a supported ERP system.
func (e ERPSystem) Valid() bool {
	switch e {
	case ERPS4Hana, ERPSAPByDesign, ERPAcumatica:
		return true
	}
	return false
}

// UserStatus is the optional activity status of an identity.
type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
)

// User models a registered identity in the directory.
type User struct {
	ID           string     `json:"id" bson:"_id"`
	Name         string     `json:"name" bson:"name"`
	Email        string     `json:"email" bson:"email"`
	PasswordHash string     `json:"-" bson:"password_hash"`
	Role         Role       `json:"role" bson:"role"`
	Avatar       string     `json:"avatar,omitempty" bson:"avatar,omitempty"`
	ERPSystem    ERPSystem  `json:"erp_system,omitempty" bson:"erp_system,omitempty"`
	Status       UserStatus `json:"status,omitempty" bson:"status,omitempty"`
	CreatedAt    time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" bson:"updated_at"`
}

// UserPatch is a shallow partial update. Nil fields keep their prior value.
type UserPatch struct {
	Name      *string
	Email     *string
	Role      *Role
	Avatar    *string
	ERPSystem *ERPSystem
	Status    *UserStatus
}

// Apply returns a copy of u with every non-nil field of p merged over it.
func (p UserPatch) Apply(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.ERPSystem != nil {
		u.ERPSystem = *p.ERPSystem
	}
	if p.Status != nil {
		u.Status = *p.Status
	}
	return u
}
