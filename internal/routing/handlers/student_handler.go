package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-server/internal/database"
	"campus-server/internal/roles"
	"campus-server/internal/schemas"
	"campus-server/internal/utils"
)

type StudentHdl interface {
	GetCourses(c *gin.Context)
	GetSchedule(c *gin.Context)
	GetMissingPrerequisites(c *gin.Context)
	GetAvailableCourses(c *gin.Context)
	RequestEnrollment(c *gin.Context)
}

type StudentHandler struct{}

func NewStudentHandler() StudentHdl {
	return &StudentHandler{}
}

// studentID resolves the student id behind the session's login code,
// memoizing it on the session.
func (handler *StudentHandler) studentID(c *gin.Context, executor *database.Executor) (int64, bool) {
	userSession := executor.Session()
	loginCode := userSession.User().LoginCode

	if id, ok := userSession.CachedProfileID(loginCode); ok {
		return id, true
	}

	table := executor.Query(c.Request.Context(), roles.RoleStudent,
		"SELECT student_id FROM campus.student WHERE code_apoge = $1", loginCode)
	if table.Message != "" || table.Empty() {
		utils.WriteAndLogError(c, schemas.ProfileNotFound, http.StatusNotFound, errors.New("no student profile for login code"))
		return 0, false
	}

	id := table.Int(0, "student_id")
	userSession.SetProfileID(loginCode, id)
	return id, true
}

// GetCourses lists the student's courses with current results.
func (handler *StudentHandler) GetCourses(c *gin.Context) {
	executor := executorFrom(c)
	studentID, ok := handler.studentID(c, executor)
	if !ok {
		return
	}

	table := executor.QueryFunction(c.Request.Context(), roles.RoleStudent,
		"campus.fn_student_courses", studentID)
	writeTable(c, table)
}

// GetSchedule lists the student's upcoming seances.
func (handler *StudentHandler) GetSchedule(c *gin.Context) {
	executor := executorFrom(c)
	studentID, ok := handler.studentID(c, executor)
	if !ok {
		return
	}

	table := executor.QueryFunction(c.Request.Context(), roles.RoleStudent,
		"campus.fn_student_seances", studentID)
	writeTable(c, table)
}

// GetMissingPrerequisites lists the prerequisites the student has not
// validated yet, per course of the current semester.
func (handler *StudentHandler) GetMissingPrerequisites(c *gin.Context) {
	executor := executorFrom(c)
	studentID, ok := handler.studentID(c, executor)
	if !ok {
		return
	}

	table := executor.Query(c.Request.Context(), roles.RoleStudent,
		"SELECT * FROM campus.v_student_missing_prerequisites WHERE student_id = $1", studentID)
	writeTable(c, table)
}

// GetAvailableCourses lists the courses the student can still request
// enrollment in.
func (handler *StudentHandler) GetAvailableCourses(c *gin.Context) {
	executor := executorFrom(c)
	studentID, ok := handler.studentID(c, executor)
	if !ok {
		return
	}

	table := executor.Query(c.Request.Context(), roles.RoleStudent,
		"SELECT * FROM campus.v_student_available_courses WHERE student_id = $1", studentID)
	writeTable(c, table)
}

// RequestEnrollment files an enrollment request for a course. Capacity
// and prerequisite rules are the store's to enforce; a rejection comes
// back as the trigger's message.
func (handler *StudentHandler) RequestEnrollment(c *gin.Context) {
	request := c.Value(utils.SanitizedPayloadKey.String()).(*schemas.EnrollmentRequest)

	executor := executorFrom(c)
	studentID, ok := handler.studentID(c, executor)
	if !ok {
		return
	}

	ok, message := executor.Exec(c.Request.Context(), roles.RoleStudent,
		"INSERT INTO campus.inscription_request (student_id, course_id, status) VALUES ($1, $2, 'PENDING')",
		studentID, request.CourseID)
	writeResult(c, ok, message, http.StatusCreated)
}
