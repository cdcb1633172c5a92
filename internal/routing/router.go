// Package routing wires the dashboard endpoints to their handlers and
// middleware chains.
package routing

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"campus-server/internal/managers"
	"campus-server/internal/middleware"
	"campus-server/internal/roles"
	"campus-server/internal/routing/handlers"
	"campus-server/internal/schemas"
	"campus-server/internal/session"
	"campus-server/internal/utils"
)

func InitRouter(sessions *session.Manager, jwtMgr managers.JWTMgr, mailMgr managers.MailMgr) *gin.Engine {
	router := gin.New()
	// Initialize middleware
	setupCommonMiddleware(router)
	// Set up routes
	setupRoutes(router, sessions, jwtMgr, mailMgr)

	return router
}

func setupCommonMiddleware(router *gin.Engine) {
	router.Use(middleware.InjectTrace())
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"http://localhost:5173", "http://localhost:19000"},
		AllowMethods:  []string{"GET", "PATCH", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Accept, Authorization", "Content-Type", "Origin"},
		ExposeHeaders: []string{"Content-Length", "Content-Type", "X-Correlation-ID"},
		MaxAge:        12 * time.Hour,
	}))
	router.Use(middleware.SanitizePath())
	router.Use(middleware.LogRequest())
}

func setupRoutes(router *gin.Engine, sessions *session.Manager, jwtMgr managers.JWTMgr, mailMgr managers.MailMgr) {
	// Set up version route
	router.GET("/", func(c *gin.Context) {
		apiVersion := os.Getenv("API_VERSION")
		if apiVersion == "" {
			apiVersion = "main:latest"
		}
		metadata := &schemas.MetadataDTO{
			ApiVersion: apiVersion,
			ApiName:    "Campus Registration API",
		}
		c.JSON(http.StatusOK, metadata)
	})

	// Set up health route
	router.GET("/health", func(c *gin.Context) {
		if err := sessions.Ping(c.Request.Context()); err != nil {
			c.String(http.StatusInternalServerError, "Database not responding")
			return
		}
		c.Status(http.StatusOK)
	})

	authHandler := handlers.NewAuthHandler(sessions, jwtMgr)
	adminHandler := handlers.NewAdminHandler(mailMgr)
	profHandler := handlers.NewProfHandler()
	studentHandler := handlers.NewStudentHandler()

	// Set up API routes
	api := router.Group("/api")
	{
		api.POST("/login", middleware.ValidateAndSanitizeStruct[schemas.LoginRequest](), authHandler.Login)
		api.POST("/logout", jwtMgr.JWTMiddleware(), middleware.ResolveSession(sessions), authHandler.Logout)

		// Set up admin dashboard routes
		admin := api.Group("/admin")
		admin.Use(jwtMgr.JWTMiddleware(), middleware.RequireRole(sessions, roles.RoleAdmin))
		adminRoutes(admin, adminHandler)

		// Set up professor dashboard routes
		prof := api.Group("/prof")
		prof.Use(jwtMgr.JWTMiddleware(), middleware.RequireRole(sessions, roles.RoleProf))
		profRoutes(prof, profHandler)

		// Set up student dashboard routes
		student := api.Group("/student")
		student.Use(jwtMgr.JWTMiddleware(), middleware.RequireRole(sessions, roles.RoleStudent))
		studentRoutes(student, studentHandler)
	}
}

func adminRoutes(admin *gin.RouterGroup, handler handlers.AdminHdl) {
	admin.GET("/stats", handler.GetStats)

	admin.GET("/students", handler.GetStudents)
	admin.POST("/students", middleware.ValidateAndSanitizeStruct[schemas.CreateStudentRequest](), handler.CreateStudent)
	admin.GET("/students/:"+utils.StudentIdKey+"/record", handler.GetStudentRecord)

	admin.GET("/courses", handler.GetCourses)
	admin.GET("/courses/:"+utils.CourseIdKey, handler.GetCourseDetail)
	admin.POST("/courses", middleware.ValidateAndSanitizeStruct[schemas.CreateCourseRequest](), handler.CreateCourse)
	admin.DELETE("/courses/:"+utils.CourseIdKey, handler.DeleteCourse)

	admin.GET("/professors", handler.GetProfessors)
	admin.POST("/professors", middleware.ValidateAndSanitizeStruct[schemas.CreateProfessorRequest](), handler.CreateProfessor)

	admin.GET("/departements", handler.GetDepartements)
	admin.GET("/filieres", handler.GetFilieres)
	admin.GET("/filieres/:"+utils.FiliereIdKey+"/semestres", handler.GetFiliereSemestres)

	admin.POST("/seances", middleware.ValidateAndSanitizeStruct[schemas.CreateSeanceRequest](), handler.CreateSeance)

	admin.PATCH("/enrollments/:"+utils.RequestIdKey, middleware.ValidateAndSanitizeStruct[schemas.UpdateEnrollmentRequest](), handler.UpdateEnrollment)
}

func profRoutes(prof *gin.RouterGroup, handler handlers.ProfHdl) {
	prof.GET("/courses", handler.GetCourses)
	prof.GET("/courses/:"+utils.CourseIdKey+"/seances", handler.GetCourseSeances)
	prof.POST("/grades", middleware.ValidateAndSanitizeStruct[schemas.SubmitGradeRequest](), handler.SubmitGrade)
	prof.GET("/seances/:"+utils.SeanceIdKey+"/students", handler.GetStudentsInSeance)
	prof.PATCH("/seances/:"+utils.SeanceIdKey+"/attendance", middleware.ValidateAndSanitizeStruct[schemas.UpdateAttendanceRequest](), handler.UpdateAttendance)
}

func studentRoutes(student *gin.RouterGroup, handler handlers.StudentHdl) {
	student.GET("/courses", handler.GetCourses)
	student.GET("/schedule", handler.GetSchedule)
	student.GET("/prerequisites/missing", handler.GetMissingPrerequisites)
	student.GET("/courses/available", handler.GetAvailableCourses)
	student.POST("/enrollments", middleware.ValidateAndSanitizeStruct[schemas.EnrollmentRequest](), handler.RequestEnrollment)
}
