package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		role    Role
		wantErr bool
	}{
		{"Auth", "AUTH", RoleAuth, false},
		{"Student", "STUDENT", RoleStudent, false},
		{"Prof", "PROF", RoleProf, false},
		{"Admin", "ADMIN", RoleAdmin, false},
		{"Unknown", "ROOT", "", true},
		{"Lowercase", "admin", "", true},
		{"Empty", "", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			role, err := Parse(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.role, role)
		})
	}
}

func TestLevelOrdering(t *testing.T) {
	assert.Less(t, RoleAuth.Level(), RoleStudent.Level())
	assert.Less(t, RoleStudent.Level(), RoleAdmin.Level())
	assert.Equal(t, RoleStudent.Level(), RoleProf.Level())
	assert.Equal(t, -1, Role("ROOT").Level())
}

func TestValid(t *testing.T) {
	for _, role := range []Role{RoleAuth, RoleStudent, RoleProf, RoleAdmin} {
		assert.True(t, role.Valid(), role)
	}
	assert.False(t, Role("").Valid())
	assert.False(t, Role("SUPERUSER").Valid())
}
