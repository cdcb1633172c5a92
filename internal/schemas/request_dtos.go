// Package schemas defines the request structures for various operations in the application.
package schemas

// LoginRequest is a struct that represents a login request
// Username is the login code and is case-normalized before lookup
// Password is required
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=30,login_code_validation"`
	Password string `json:"password" validate:"required"`
}

// CreateStudentRequest is a struct that represents an admin request to create a student
// FullName is required, the login code is derived from it
type CreateStudentRequest struct {
	FullName   string `json:"fullName" validate:"required,max=80"`
	Password   string `json:"password" validate:"required,min=8,password_validation"`
	FiliereID  int64  `json:"filiereId" validate:"required,gt=0"`
	SemestreID int64  `json:"semestreId" validate:"required,gt=0"`
}

// CreateProfessorRequest is a struct that represents an admin request to create a professor
// Email is optional; when given, the generated login code is mailed to it
type CreateProfessorRequest struct {
	FullName      string `json:"fullName" validate:"required,max=80"`
	DepartementID int64  `json:"departementId" validate:"required,gt=0"`
	Password      string `json:"password" validate:"required,min=8,password_validation"`
	Email         string `json:"email" validate:"omitempty,email"`
}

// CreateCourseRequest is a struct that represents an admin request to create a course
// PrerequisiteIDs may be empty
type CreateCourseRequest struct {
	Name            string  `json:"name" validate:"required,max=120"`
	FiliereID       int64   `json:"filiereId" validate:"required,gt=0"`
	SemestreID      int64   `json:"semestreId" validate:"required,gt=0"`
	Capacity        int     `json:"capacity" validate:"required,gt=0"`
	ProfID          int64   `json:"profId" validate:"required,gt=0"`
	PrerequisiteIDs []int64 `json:"prerequisiteIds" validate:"dive,gt=0"`
}

// CreateSeanceRequest is a struct that represents an admin request to schedule a seance
// Date is an ISO date, times are HH:MM
type CreateSeanceRequest struct {
	CourseID     int64  `json:"courseId" validate:"required,gt=0"`
	FiliereID    int64  `json:"filiereId" validate:"required,gt=0"`
	SemestreID   int64  `json:"semestreId" validate:"required,gt=0"`
	FiliereName  string `json:"filiereName" validate:"required,max=80"`
	SemestreCode string `json:"semestreCode" validate:"required,max=10"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime    string `json:"startTime" validate:"required,datetime=15:04"`
	EndTime      string `json:"endTime" validate:"required,datetime=15:04"`
	Room         string `json:"room" validate:"required,max=20"`
	Type         string `json:"type" validate:"required,oneof=COURS TD TP"`
}

// SubmitGradeRequest is a struct that represents a professor grade submission
// Grade is on the 0-20 scale
type SubmitGradeRequest struct {
	StudentID int64   `json:"studentId" validate:"required,gt=0"`
	CourseID  int64   `json:"courseId" validate:"required,gt=0"`
	Grade     float64 `json:"grade" validate:"gte=0,lte=20"`
}

// UpdateAttendanceRequest is a struct that represents an attendance status update
type UpdateAttendanceRequest struct {
	StudentID int64  `json:"studentId" validate:"required,gt=0"`
	Status    string `json:"status" validate:"required,oneof=PLANNED PRESENT ABSENT LATE 'ABSENT AVEC JUSTIFICATION'"`
}

// EnrollmentRequest is a struct that represents a student course registration request
type EnrollmentRequest struct {
	CourseID int64 `json:"courseId" validate:"required,gt=0"`
}

// UpdateEnrollmentRequest is a struct that represents an admin decision on an enrollment request
type UpdateEnrollmentRequest struct {
	Status string `json:"status" validate:"required,oneof=ACCEPTED REJECTED"`
}
