// Package roles defines the application roles and their privilege ordering.
// Each role maps to a dedicated, least-privilege database identity.
package roles

import "fmt"

// Role is a string specifying which database identity a session connects
// with. The set of granted privileges is fixed per role on the database
// side; the application only picks the matching credentials.
type Role string

const (
	// RoleAuth is the pre-login role. It can only read the account
	// credential table to verify passwords.
	RoleAuth Role = "AUTH"

	// RoleStudent has scoped read access to the student's own data and may
	// file new inscription requests.
	RoleStudent Role = "STUDENT"

	// RoleProf manages courses, attendance and grades for assigned courses.
	RoleProf Role = "PROF"

	// RoleAdmin has full schema access for administrative tasks.
	RoleAdmin Role = "ADMIN"
)

// Level returns the privilege level of the role. AUTH sits below the two
// scoped roles, which sit below ADMIN. STUDENT and PROF share a level but
// are still distinct identities.
func (r Role) Level() int {
	switch r {
	case RoleAuth:
		return 0
	case RoleStudent, RoleProf:
		return 1
	case RoleAdmin:
		return 2
	default:
		return -1
	}
}

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	return r.Level() >= 0
}

func (r Role) String() string {
	return string(r)
}

// Parse converts a role string read back from the credential table into a
// Role, rejecting anything outside the known set.
func Parse(s string) (Role, error) {
	role := Role(s)
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return role, nil
}
