package handlers

import (
	"errors"
	"net/http"

	sq "github.com/Masterminds/squirrel"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"campus-server/internal/database"
	"campus-server/internal/managers"
	"campus-server/internal/roles"
	"campus-server/internal/schemas"
	"campus-server/internal/session"
	"campus-server/internal/utils"
)

type AdminHdl interface {
	GetStats(c *gin.Context)
	GetStudents(c *gin.Context)
	CreateStudent(c *gin.Context)
	GetStudentRecord(c *gin.Context)
	GetCourses(c *gin.Context)
	GetCourseDetail(c *gin.Context)
	CreateCourse(c *gin.Context)
	DeleteCourse(c *gin.Context)
	GetProfessors(c *gin.Context)
	CreateProfessor(c *gin.Context)
	GetDepartements(c *gin.Context)
	GetFilieres(c *gin.Context)
	GetFiliereSemestres(c *gin.Context)
	CreateSeance(c *gin.Context)
	UpdateEnrollment(c *gin.Context)
}

type AdminHandler struct {
	MailManager managers.MailMgr
	Validator   *utils.Validator
}

func NewAdminHandler(mailManager managers.MailMgr) AdminHdl {
	return &AdminHandler{
		MailManager: mailManager,
		Validator:   utils.GetValidator(),
	}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// GetStats serves the dashboard headline numbers.
func (handler *AdminHandler) GetStats(c *gin.Context) {
	executor := executorFrom(c)
	table := executor.Query(c.Request.Context(), roles.RoleAdmin, "SELECT * FROM campus.v_dashboard_stats")
	writeTable(c, table)
}

// GetStudents lists students, optionally filtered by a search term over
// name and login code.
func (handler *AdminHandler) GetStudents(c *gin.Context) {
	builder := psql.Select("*").From("campus.v_detail_student").OrderBy("full_name")
	if search := c.Query(utils.SearchParamKey); search != "" {
		pattern := "%" + search + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"full_name": pattern},
			sq.ILike{"code_apoge": pattern},
		})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	executor := executorFrom(c)
	table := executor.Query(c.Request.Context(), roles.RoleAdmin, query, args...)
	if table.Message != "" {
		utils.WriteAndLogError(c, schemas.DatabaseError.WithMessage(table.Message), http.StatusInternalServerError, errors.New(table.Message))
		return
	}

	offset, limit := utils.ParsePaginationParams(c)
	dto := tableDTO(table)
	utils.SendPaginatedTable(c, &dto, offset, limit)
}

// CreateStudent creates the account row and the student profile under a
// login code derived from the student's name. Both inserts run in one
// transaction so a profile failure never leaves a credential row behind.
func (handler *AdminHandler) CreateStudent(c *gin.Context) {
	request := c.Value(utils.SanitizedPayloadKey.String()).(*schemas.CreateStudentRequest)

	operations := database.NewOperations(c.Value(utils.SessionKey.String()).(*session.Session))
	ok, message, loginCode := operations.CreateNewStudent(c.Request.Context(),
		request.FullName, request.FiliereID, request.SemestreID, request.Password)
	if !ok {
		writeResult(c, false, message, 0)
		return
	}

	utils.WriteAndLogResponse(c, &schemas.CreatedAccountDTO{
		Message:   message,
		LoginCode: loginCode,
	}, http.StatusCreated)
}

// GetStudentRecord assembles the academic record of one student: current
// courses, per-course absence counts and blocked courses.
func (handler *AdminHandler) GetStudentRecord(c *gin.Context) {
	studentID, ok := pathID(c, utils.StudentIdKey)
	if !ok {
		return
	}

	executor := executorFrom(c)
	ctx := c.Request.Context()

	courses := executor.Query(ctx, roles.RoleAdmin, "SELECT * FROM campus.v_student_current_courses WHERE student_id = $1", studentID)
	absences := executor.Query(ctx, roles.RoleAdmin, "SELECT * FROM campus.v_student_absences WHERE student_id = $1", studentID)
	blocked := executor.Query(ctx, roles.RoleAdmin, "SELECT * FROM campus.v_student_blocked_courses WHERE student_id = $1", studentID)

	for _, table := range []*database.Table{courses, absences, blocked} {
		if table.Message != "" {
			utils.WriteAndLogError(c, schemas.DatabaseError.WithMessage(table.Message), http.StatusInternalServerError, errors.New(table.Message))
			return
		}
	}

	utils.WriteAndLogResponse(c, &schemas.StudentRecordDTO{
		Courses:        tableDTO(courses),
		Absences:       tableDTO(absences),
		BlockedCourses: tableDTO(blocked),
	}, http.StatusOK)
}

// GetCourses lists all courses with their filiere and professor.
func (handler *AdminHandler) GetCourses(c *gin.Context) {
	executor := executorFrom(c)
	table := executor.Query(c.Request.Context(), roles.RoleAdmin, "SELECT * FROM campus.v_course_list ORDER BY name")
	if table.Message != "" {
		utils.WriteAndLogError(c, schemas.DatabaseError.WithMessage(table.Message), http.StatusInternalServerError, errors.New(table.Message))
		return
	}

	offset, limit := utils.ParsePaginationParams(c)
	dto := tableDTO(table)
	utils.SendPaginatedTable(c, &dto, offset, limit)
}

// GetCourseDetail returns the full profile of one course.
func (handler *AdminHandler) GetCourseDetail(c *gin.Context) {
	courseID, ok := pathID(c, utils.CourseIdKey)
	if !ok {
		return
	}

	executor := executorFrom(c)
	ctx := c.Request.Context()

	course := executor.Query(ctx, roles.RoleAdmin, "SELECT * FROM campus.v_course_list WHERE course_id = $1", courseID)
	if course.Message != "" {
		utils.WriteAndLogError(c, schemas.DatabaseError.WithMessage(course.Message), http.StatusInternalServerError, errors.New(course.Message))
		return
	}
	if course.Empty() {
		utils.WriteAndLogError(c, schemas.NotFound, http.StatusNotFound, errors.New("course does not exist"))
		return
	}

	prerequisites := executor.Query(ctx, roles.RoleAdmin, "SELECT * FROM campus.v_course_prerequisites WHERE course_id = $1", courseID)
	enrolled := executor.Query(ctx, roles.RoleAdmin, "SELECT * FROM campus.v_course_enrollments WHERE course_id = $1", courseID)
	departement := executor.Query(ctx, roles.RoleAdmin, "SELECT * FROM campus.v_course_departement WHERE course_id = $1", courseID)

	for _, table := range []*database.Table{prerequisites, enrolled, departement} {
		if table.Message != "" {
			utils.WriteAndLogError(c, schemas.DatabaseError.WithMessage(table.Message), http.StatusInternalServerError, errors.New(table.Message))
			return
		}
	}

	utils.WriteAndLogResponse(c, &schemas.CourseDetailDTO{
		Course:        tableDTO(course),
		Prerequisites: tableDTO(prerequisites),
		Enrolled:      tableDTO(enrolled),
		Departement:   tableDTO(departement),
	}, http.StatusOK)
}

// CreateCourse creates a course with its professor assignment and
// prerequisite links in one transaction.
func (handler *AdminHandler) CreateCourse(c *gin.Context) {
	request := c.Value(utils.SanitizedPayloadKey.String()).(*schemas.CreateCourseRequest)

	operations := database.NewOperations(c.Value(utils.SessionKey.String()).(*session.Session))
	ok, message := operations.CreateCourseWithDetails(c.Request.Context(),
		request.Name, request.FiliereID, request.SemestreID, request.Capacity, request.ProfID, request.PrerequisiteIDs)
	writeResult(c, ok, message, http.StatusCreated)
}

// DeleteCourse removes a course and all dependent rows.
func (handler *AdminHandler) DeleteCourse(c *gin.Context) {
	courseID, ok := pathID(c, utils.CourseIdKey)
	if !ok {
		return
	}

	operations := database.NewOperations(c.Value(utils.SessionKey.String()).(*session.Session))
	ok, message := operations.DeleteCourseWithDetails(c.Request.Context(), courseID)
	writeResult(c, ok, message, http.StatusOK)
}

// GetProfessors lists professors, optionally filtered by a search term.
func (handler *AdminHandler) GetProfessors(c *gin.Context) {
	builder := psql.Select("*").From("campus.v_prof_list").OrderBy("full_name")
	if search := c.Query(utils.SearchParamKey); search != "" {
		pattern := "%" + search + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"full_name": pattern},
			sq.ILike{"code_apoge": pattern},
		})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	executor := executorFrom(c)
	table := executor.Query(c.Request.Context(), roles.RoleAdmin, query, args...)
	if table.Message != "" {
		utils.WriteAndLogError(c, schemas.DatabaseError.WithMessage(table.Message), http.StatusInternalServerError, errors.New(table.Message))
		return
	}

	offset, limit := utils.ParsePaginationParams(c)
	dto := tableDTO(table)
	utils.SendPaginatedTable(c, &dto, offset, limit)
}

// CreateProfessor creates a professor under a generated login code and,
// when an email address was given, mails the code to the new professor.
func (handler *AdminHandler) CreateProfessor(c *gin.Context) {
	request := c.Value(utils.SanitizedPayloadKey.String()).(*schemas.CreateProfessorRequest)

	if request.Email != "" && !handler.Validator.VerifyEmail(request.Email) {
		utils.WriteAndLogError(c, schemas.EmailUnreachable, http.StatusBadRequest, errors.New("email address failed verification"))
		return
	}

	operations := database.NewOperations(c.Value(utils.SessionKey.String()).(*session.Session))
	ok, message, loginCode := operations.CreateNewProfessor(c.Request.Context(),
		request.FullName, request.DepartementID, request.Password)
	if !ok {
		writeResult(c, false, message, 0)
		return
	}

	if request.Email != "" {
		if err := handler.MailManager.SendCredentialsMail(request.Email, request.FullName, loginCode, "Campus Registration"); err != nil {
			// The account exists either way; the admin still sees the code.
			log.WithError(err).Warn("Could not send credentials mail")
		}
	}

	utils.WriteAndLogResponse(c, &schemas.CreatedAccountDTO{
		Message:   message,
		LoginCode: loginCode,
	}, http.StatusCreated)
}

// GetDepartements lists all departements.
func (handler *AdminHandler) GetDepartements(c *gin.Context) {
	executor := executorFrom(c)
	table := executor.Query(c.Request.Context(), roles.RoleAdmin, "SELECT departement_id, name FROM campus.departement ORDER BY name")
	writeTable(c, table)
}

// GetFilieres lists all filieres with their departement.
func (handler *AdminHandler) GetFilieres(c *gin.Context) {
	executor := executorFrom(c)
	table := executor.Query(c.Request.Context(), roles.RoleAdmin,
		"SELECT f.filiere_id, f.name, d.name AS departement FROM campus.filiere f JOIN campus.departement d ON f.departement_id = d.departement_id ORDER BY f.name")
	writeTable(c, table)
}

// GetFiliereSemestres lists the semesters of one filiere.
func (handler *AdminHandler) GetFiliereSemestres(c *gin.Context) {
	filiereID, ok := pathID(c, utils.FiliereIdKey)
	if !ok {
		return
	}

	executor := executorFrom(c)
	table := executor.Query(c.Request.Context(), roles.RoleAdmin,
		"SELECT semestre_id, code, label FROM campus.semestre WHERE filiere_id = $1 ORDER BY code", filiereID)
	writeTable(c, table)
}

// CreateSeance schedules a seance, creating default sections for the
// filiere/semestre pair when none exist yet.
func (handler *AdminHandler) CreateSeance(c *gin.Context) {
	request := c.Value(utils.SanitizedPayloadKey.String()).(*schemas.CreateSeanceRequest)

	operations := database.NewOperations(c.Value(utils.SessionKey.String()).(*session.Session))
	ok, message := operations.CreateSeancesForAllSections(c.Request.Context(), request)
	writeResult(c, ok, message, http.StatusCreated)
}

// UpdateEnrollment decides a pending enrollment request. Whether the
// transition is legal for the request's current status is enforced by
// the store.
func (handler *AdminHandler) UpdateEnrollment(c *gin.Context) {
	requestID, ok := pathID(c, utils.RequestIdKey)
	if !ok {
		return
	}
	request := c.Value(utils.SanitizedPayloadKey.String()).(*schemas.UpdateEnrollmentRequest)

	executor := executorFrom(c)
	ok, message := executor.Exec(c.Request.Context(), roles.RoleAdmin,
		"UPDATE campus.inscription_request SET status = $1, decided_at = NOW() WHERE request_id = $2",
		request.Status, requestID)
	writeResult(c, ok, message, http.StatusOK)
}
