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

type ProfHdl interface {
	GetCourses(c *gin.Context)
	SubmitGrade(c *gin.Context)
	GetCourseSeances(c *gin.Context)
	GetStudentsInSeance(c *gin.Context)
	UpdateAttendance(c *gin.Context)
}

type ProfHandler struct{}

func NewProfHandler() ProfHdl {
	return &ProfHandler{}
}

// profID resolves the professor id behind the session's login code,
// memoizing it on the session so later requests skip the lookup.
func (handler *ProfHandler) profID(c *gin.Context, executor *database.Executor) (int64, bool) {
	userSession := executor.Session()
	loginCode := userSession.User().LoginCode

	if id, ok := userSession.CachedProfileID(loginCode); ok {
		return id, true
	}

	table := executor.Query(c.Request.Context(), roles.RoleProf,
		"SELECT prof_id FROM campus.prof WHERE code_apoge = $1", loginCode)
	if table.Message != "" || table.Empty() {
		utils.WriteAndLogError(c, schemas.ProfileNotFound, http.StatusNotFound, errors.New("no professor profile for login code"))
		return 0, false
	}

	id := table.Int(0, "prof_id")
	userSession.SetProfileID(loginCode, id)
	return id, true
}

// GetCourses lists the courses assigned to the professor.
func (handler *ProfHandler) GetCourses(c *gin.Context) {
	executor := executorFrom(c)
	profID, ok := handler.profID(c, executor)
	if !ok {
		return
	}

	table := executor.Query(c.Request.Context(), roles.RoleProf,
		"SELECT * FROM campus.v_prof_courses WHERE prof_id = $1", profID)
	writeTable(c, table)
}

// SubmitGrade records a grade through the grading procedure. The store
// rejects grades for students not enrolled with this professor.
func (handler *ProfHandler) SubmitGrade(c *gin.Context) {
	request := c.Value(utils.SanitizedPayloadKey.String()).(*schemas.SubmitGradeRequest)

	executor := executorFrom(c)
	profID, ok := handler.profID(c, executor)
	if !ok {
		return
	}

	ok, message := executor.CallProcedure(c.Request.Context(), roles.RoleProf,
		"campus.sp_prof_submit_grade", profID, request.StudentID, request.CourseID, request.Grade)
	writeResult(c, ok, message, http.StatusOK)
}

// GetCourseSeances lists the seances of one of the professor's courses.
func (handler *ProfHandler) GetCourseSeances(c *gin.Context) {
	courseID, ok := pathID(c, utils.CourseIdKey)
	if !ok {
		return
	}

	executor := executorFrom(c)
	profID, ok := handler.profID(c, executor)
	if !ok {
		return
	}

	table := executor.Query(c.Request.Context(), roles.RoleProf,
		"SELECT * FROM campus.v_prof_seances WHERE prof_id = $1 AND course_id = $2", profID, courseID)
	writeTable(c, table)
}

// GetStudentsInSeance lists the attendance sheet of one seance.
func (handler *ProfHandler) GetStudentsInSeance(c *gin.Context) {
	seanceID, ok := pathID(c, utils.SeanceIdKey)
	if !ok {
		return
	}

	executor := executorFrom(c)
	if _, ok := handler.profID(c, executor); !ok {
		return
	}

	table := executor.QueryFunction(c.Request.Context(), roles.RoleProf,
		"campus.fn_students_in_seance", seanceID)
	writeTable(c, table)
}

// UpdateAttendance sets the attendance status of one student in one
// seance.
func (handler *ProfHandler) UpdateAttendance(c *gin.Context) {
	seanceID, ok := pathID(c, utils.SeanceIdKey)
	if !ok {
		return
	}
	request := c.Value(utils.SanitizedPayloadKey.String()).(*schemas.UpdateAttendanceRequest)

	executor := executorFrom(c)
	if _, ok := handler.profID(c, executor); !ok {
		return
	}

	ok, message := executor.Exec(c.Request.Context(), roles.RoleProf,
		"UPDATE campus.attendance SET status = $1 WHERE seance_id = $2 AND student_id = $3",
		request.Status, seanceID, request.StudentID)
	writeResult(c, ok, message, http.StatusOK)
}
