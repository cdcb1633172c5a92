// Package schemas defines the data structures
package schemas

import (
	"time"

	"campus-server/internal/roles"
)

// UserAccount represents a row of the credential table. The store owns
// the ACTIVE/INACTIVE status; the application only reads it.
type UserAccount struct {
	UserID    int64      `json:"userId"`    // Unique identifier for the account.
	LoginCode string     `json:"loginCode"` // Upper-cased login code, e.g. P4711 or YBOUCHAK777.
	Role      roles.Role `json:"role"`      // Application role of the account.
	Status    string     `json:"status"`    // ACTIVE or INACTIVE.
}

// AccountStatusActive is the status value required for a successful login.
const AccountStatusActive = "ACTIVE"

// Student represents the student profile row behind a STUDENT account.
type Student struct {
	StudentID         int64  `json:"studentId"`
	CodeApoge         string `json:"codeApoge"`
	FullName          string `json:"fullName"`
	FiliereID         int64  `json:"filiereId"`
	CurrentSemestreID int64  `json:"currentSemestreId"`
}

// Professor represents the professor profile row behind a PROF account.
type Professor struct {
	ProfID        int64  `json:"profId"`
	CodeApoge     string `json:"codeApoge"`
	FullName      string `json:"fullName"`
	DepartementID int64  `json:"departementId"`
}

// Seance represents a scheduled course session.
type Seance struct {
	SeanceID   int64     `json:"seanceId"`
	CourseID   int64     `json:"courseId"`
	SectionID  int64     `json:"sectionId"`
	SeanceDate time.Time `json:"seanceDate"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	Room       string    `json:"room"`
	Type       string    `json:"type"`
}

// Enrollment request states. Legality of transitions (PENDING to
// ACCEPTED or REJECTED, ACCEPTED to REJECTED for cancellation) is
// enforced by the store; the application only issues the updates.
const (
	EnrollmentPending  = "PENDING"
	EnrollmentAccepted = "ACCEPTED"
	EnrollmentRejected = "REJECTED"
)
