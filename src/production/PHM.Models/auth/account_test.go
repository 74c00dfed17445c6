package auth_models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleFromUsername(t *testing.T) {
	tests := []struct {
		username string
		want     Role
	}{
		{"farmer001", RoleFarmer},
		{"farmer", RoleFarmer},
		{"agro01", RoleAgronomist},
		{"Farmer001", RoleAgronomist},
		{"xfarmer", RoleAgronomist},
		{"", RoleAgronomist},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RoleFromUsername(tt.username), tt.username)
	}
}

func TestAccount_EffectiveRole(t *testing.T) {
	assert.Equal(t, RoleFarmer, NewAccount("farmer002", "h", "F", "", "", "").EffectiveRole())

	stored := &Account{Username: "farmer003", Role: RoleAgronomist}
	assert.Equal(t, RoleAgronomist, stored.EffectiveRole())

	legacy := &Account{Username: "farmer004"}
	assert.Equal(t, RoleFarmer, legacy.EffectiveRole())
}
