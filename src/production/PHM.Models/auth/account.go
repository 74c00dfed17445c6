package auth_models

import "strings"

// Role is the access level carried by an account
type Role string

const (
	RoleAgronomist Role = "agronomist"
	RoleFarmer     Role = "farmer"
)

const farmerPrefix = "farmer"

// RoleFromUsername applies the naming convention: usernames starting
// with "farmer" are farmers, everything else is an agronomist.
func RoleFromUsername(username string) Role {
	if strings.HasPrefix(username, farmerPrefix) {
		return RoleFarmer
	}
	return RoleAgronomist
}

func (r Role) Valid() bool {
	return r == RoleAgronomist || r == RoleFarmer
}

func (r Role) String() string {
	return string(r)
}

// Account is a row of the agronomists table. Farmers live there too.
type Account struct {
	AgronomistID   int64  `json:"agronomist_id" db:"agronomist_id"`
	Username       string `json:"username" db:"username"`
	Password       string `json:"-" db:"password"` // bcrypt hash
	FullName       string `json:"full_name" db:"full_name"`
	Specialization string `json:"specialization" db:"specialization"`
	Phone          string `json:"phone" db:"phone"`
	Email          string `json:"email" db:"email"`
	Role           Role   `json:"role" db:"role"`
}

// NewAccount builds an account whose role follows the username prefix
func NewAccount(username, passwordHash, fullName, specialization, phone, email string) *Account {
	return &Account{
		Username:       username,
		Password:       passwordHash,
		FullName:       fullName,
		Specialization: specialization,
		Phone:          phone,
		Email:          email,
		Role:           RoleFromUsername(username),
	}
}

// EffectiveRole returns the stored role, or the prefix-derived role for
// rows written before the column existed.
func (a *Account) EffectiveRole() Role {
	if a.Role.Valid() {
		return a.Role
	}
	return RoleFromUsername(a.Username)
}
