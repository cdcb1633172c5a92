package database

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"

	"campus-server/internal/roles"
	"campus-server/internal/schemas"
	"campus-server/internal/session"
)

// Operations are the named multi-statement admin operations. Each one is
// atomic: a single connection from the ADMIN pool, one explicit
// transaction, full rollback on any failure.
type Operations struct {
	session *session.Session
}

// NewOperations binds the operation layer to a session. The session must
// be authenticated as ADMIN or every operation will fail at pool time.
func NewOperations(sess *session.Session) *Operations {
	return &Operations{session: sess}
}

const profCodeAttempts = 5

// CreateCourseWithDetails inserts a course together with its professor
// assignment and prerequisite links. The professor's department must
// match the filiere's department; the check runs inside the same
// transaction so the answer cannot go stale between check and insert.
func (o *Operations) CreateCourseWithDetails(ctx context.Context, name string, filiereID, semestreID int64, capacity int, profID int64, prerequisiteIDs []int64) (bool, string) {
	tx, err := o.begin(ctx)
	if err != nil {
		return false, err.Error()
	}
	committed := false
	defer rollbackUnless(&committed, tx, ctx)

	var filiereDept int64
	err = tx.QueryRow(ctx,
		"SELECT d.departement_id FROM campus.filiere f JOIN campus.departement d ON f.departement_id = d.departement_id WHERE f.filiere_id = $1",
		filiereID).Scan(&filiereDept)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, "Invalid filiere id provided."
	} else if err != nil {
		return false, Classify(err).Message
	}

	var profDept int64
	err = tx.QueryRow(ctx, "SELECT departement_id FROM campus.prof WHERE prof_id = $1", profID).Scan(&profDept)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, "Invalid professor id provided."
	} else if err != nil {
		return false, Classify(err).Message
	}

	if filiereDept != profDept {
		return false, "The assigned professor must belong to the same department as the course's filiere."
	}

	var courseID int64
	err = tx.QueryRow(ctx,
		"INSERT INTO campus.course (name, filiere_id, semestre_id, capacity) VALUES ($1, $2, $3, $4) RETURNING course_id",
		name, filiereID, semestreID, capacity).Scan(&courseID)
	if err != nil {
		return false, Classify(err).Message
	}

	if _, err = tx.Exec(ctx, "INSERT INTO campus.prof_course (prof_id, course_id) VALUES ($1, $2)", profID, courseID); err != nil {
		return false, Classify(err).Message
	}

	for _, prereqID := range prerequisiteIDs {
		if _, err = tx.Exec(ctx,
			"INSERT INTO campus.course_prerequisite (course_id, prerequisite_course_id) VALUES ($1, $2)",
			courseID, prereqID); err != nil {
			return false, Classify(err).Message
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return false, Classify(err).Message
	}
	committed = true

	return true, fmt.Sprintf("Course '%s' created successfully.", name)
}

// CreateNewProfessor creates a credential row and a professor profile
// under a generated login code of the form P<4 digits>. Code generation
// is not collision-free; a uniqueness violation on the code regenerates
// and retries, bounded to five attempts. The generated code is returned
// so it can be communicated to the new professor.
func (o *Operations) CreateNewProfessor(ctx context.Context, fullName string, departementID int64, password string) (bool, string, string) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, "An unexpected error occurred: " + err.Error(), ""
	}

	var code string
	policy := RetryPolicy{MaxAttempts: profCodeAttempts}
	err = policy.Do(func(try int) (bool, error) {
		candidate := generateProfCode()
		if try > 1 {
			log.WithFields(log.Fields{"attempt": try, "code": candidate}).Info("Retrying professor creation with a new login code")
		}

		if err := o.insertProfessor(ctx, candidate, hashedPassword, fullName, departementID); err != nil {
			storeErr := Classify(err)
			return storeErr.Kind == KindUniqueViolation, storeErr
		}

		code = candidate
		return false, nil
	})

	if errors.Is(err, ErrRetriesExhausted) {
		return false, "Could not generate a unique login code for the new professor. Please try again.", ""
	}
	if err != nil {
		return false, err.Error(), ""
	}

	return true, fmt.Sprintf("Professor '%s' created.", fullName), code
}

func (o *Operations) insertProfessor(ctx context.Context, code string, hashedPassword []byte, fullName string, departementID int64) error {
	tx, err := o.begin(ctx)
	if err != nil {
		return err
	}
	committed := false
	defer rollbackUnless(&committed, tx, ctx)

	if _, err = tx.Exec(ctx,
		"INSERT INTO campus.user_account (login_code, password_hash, role) VALUES ($1, $2, 'PROF')",
		code, string(hashedPassword)); err != nil {
		return err
	}

	if _, err = tx.Exec(ctx,
		"INSERT INTO campus.prof (code_apoge, full_name, departement_id) VALUES ($1, $2, $3)",
		code, fullName, departementID); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}
	committed = true
	return nil
}

// CreateNewStudent creates a credential row and a student profile under a
// login code derived from the student's name, in one transaction: a
// profile insert failure must not leave an orphaned credential row
// behind. A code collision is reported to the admin, who resubmits.
func (o *Operations) CreateNewStudent(ctx context.Context, fullName string, filiereID, semestreID int64, password string) (bool, string, string) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, "An unexpected error occurred: " + err.Error(), ""
	}

	code := generateStudentCode(fullName)

	tx, err := o.begin(ctx)
	if err != nil {
		return false, err.Error(), ""
	}
	committed := false
	defer rollbackUnless(&committed, tx, ctx)

	if _, err = tx.Exec(ctx,
		"INSERT INTO campus.user_account (login_code, password_hash, role) VALUES ($1, $2, 'STUDENT')",
		code, string(hashedPassword)); err != nil {
		return false, Classify(err).Message, ""
	}

	if _, err = tx.Exec(ctx,
		"INSERT INTO campus.student (code_apoge, full_name, filiere_id, semestre_id) VALUES ($1, $2, $3, $4)",
		code, fullName, filiereID, semestreID); err != nil {
		return false, Classify(err).Message, ""
	}

	if err = tx.Commit(ctx); err != nil {
		return false, Classify(err).Message, ""
	}
	committed = true

	return true, fmt.Sprintf("Student '%s' created.", fullName), code
}

// deleteCourseSteps is the fixed dependency order for a course cascade.
// Attendance hangs off seances, so it goes first; the prerequisite table
// is cleared in both directions before the course row itself.
var deleteCourseSteps = []string{
	"DELETE FROM campus.attendance WHERE seance_id IN (SELECT seance_id FROM campus.seance WHERE course_id = $1)",
	"DELETE FROM campus.seance WHERE course_id = $1",
	"DELETE FROM campus.course_result WHERE course_id = $1",
	"DELETE FROM campus.inscription_request WHERE course_id = $1",
	"DELETE FROM campus.unblock_request WHERE course_id = $1",
	"DELETE FROM campus.course_prerequisite WHERE course_id = $1",
	"DELETE FROM campus.course_prerequisite WHERE prerequisite_course_id = $1",
	"DELETE FROM campus.prof_course WHERE course_id = $1",
	"DELETE FROM campus.course WHERE course_id = $1",
}

// DeleteCourseWithDetails removes a course and every dependent row in one
// transaction, so a partial cascade is never visible.
func (o *Operations) DeleteCourseWithDetails(ctx context.Context, courseID int64) (bool, string) {
	tx, err := o.begin(ctx)
	if err != nil {
		return false, err.Error()
	}
	committed := false
	defer rollbackUnless(&committed, tx, ctx)

	for _, step := range deleteCourseSteps {
		if _, err = tx.Exec(ctx, step, courseID); err != nil {
			return false, Classify(err).Message
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return false, Classify(err).Message
	}
	committed = true

	return true, fmt.Sprintf("Course %d and related data deleted.", courseID)
}

// CreateSeancesForAllSections makes sure the filiere/semestre pair has at
// least one section (creating two defaults when none exist) and schedules
// the seance on the first available section only. Duplicating the seance
// across sections would trip the room/time overlap trigger, so one
// section it is.
func (o *Operations) CreateSeancesForAllSections(ctx context.Context, req *schemas.CreateSeanceRequest) (bool, string) {
	seanceDate, startTime, endTime, err := parseSeanceTimes(req)
	if err != nil {
		return false, err.Error()
	}

	tx, err := o.begin(ctx)
	if err != nil {
		return false, err.Error()
	}
	committed := false
	defer rollbackUnless(&committed, tx, ctx)

	rows, err := tx.Query(ctx,
		"SELECT section_id FROM campus.section WHERE filiere_id = $1 AND semestre_id = $2",
		req.FiliereID, req.SemestreID)
	if err != nil {
		return false, Classify(err).Message
	}
	sections, err := materializeRows(rows)
	if err != nil {
		return false, Classify(err).Message
	}

	var sectionIDs []int64
	for i := 0; i < sections.Len(); i++ {
		sectionIDs = append(sectionIDs, sections.Int(i, "section_id"))
	}

	if len(sectionIDs) == 0 {
		log.WithFields(log.Fields{"filiereId": req.FiliereID, "semestreId": req.SemestreID}).Info("No sections found, creating two default sections")
		for i := 1; i <= 2; i++ {
			sectionName := defaultSectionName(req.FiliereName, req.SemestreCode, i)
			var sectionID int64
			err = tx.QueryRow(ctx,
				"INSERT INTO campus.section (name, filiere_id, semestre_id) VALUES ($1, $2, $3) RETURNING section_id",
				sectionName, req.FiliereID, req.SemestreID).Scan(&sectionID)
			if err != nil {
				return false, Classify(err).Message
			}
			sectionIDs = append(sectionIDs, sectionID)
		}
	}

	if _, err = tx.Exec(ctx,
		"INSERT INTO campus.seance (course_id, section_id, seance_date, start_time, end_time, room, type) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		req.CourseID, sectionIDs[0], seanceDate, startTime, endTime, req.Room, req.Type); err != nil {
		return false, Classify(err).Message
	}

	if err = tx.Commit(ctx); err != nil {
		return false, Classify(err).Message
	}
	committed = true

	return true, "Seance created and assigned to the first available section."
}

func (o *Operations) begin(ctx context.Context) (pgx.Tx, error) {
	pool, err := o.session.Pool(ctx, roles.RoleAdmin)
	if err != nil {
		return nil, err
	}
	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, Classify(err)
	}
	return tx, nil
}

func rollbackUnless(committed *bool, tx pgx.Tx, ctx context.Context) {
	if !*committed {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			log.WithError(err).Error("Error rolling back transaction")
		}
	}
}

func generateProfCode() string {
	return fmt.Sprintf("P%d", rand.Intn(9000)+1000)
}

// generateStudentCode derives a login code like JDOE482 from the
// student's full name. Accented letters fold to their base form; a name
// with no foldable letters falls back to a plain S prefix. Collisions
// surface as a unique violation on the account insert.
func generateStudentCode(fullName string) string {
	fields := strings.Fields(strings.ToUpper(fullName))

	var initial, last string
	if len(fields) > 0 {
		initial = letters(fields[0])
		last = letters(fields[len(fields)-1])
	}
	if len(initial) > 1 {
		initial = initial[:1]
	}
	if len(fields) < 2 {
		last = ""
	}

	prefix := initial + last
	if prefix == "" {
		prefix = "S"
	}

	return fmt.Sprintf("%s%d", prefix, rand.Intn(900)+100)
}

// letters keeps the A-Z characters of an upper-cased name, first
// stripping combining marks so that É becomes E rather than nothing.
func letters(s string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// defaultSectionName derives a deterministic section name like
// INFO-S3-G1 from the filiere and semester code.
func defaultSectionName(filiereName, semestreCode string, group int) string {
	prefix := []rune(strings.ToUpper(filiereName))
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	return fmt.Sprintf("%s-%s-G%d", string(prefix), semestreCode, group)
}

func parseSeanceTimes(req *schemas.CreateSeanceRequest) (time.Time, time.Time, time.Time, error) {
	seanceDate, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return time.Time{}, time.Time{}, time.Time{}, fmt.Errorf("invalid seance date: %w", err)
	}

	start, err := time.Parse("15:04", req.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, time.Time{}, fmt.Errorf("invalid start time: %w", err)
	}

	end, err := time.Parse("15:04", req.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, time.Time{}, fmt.Errorf("invalid end time: %w", err)
	}

	startAt := time.Date(seanceDate.Year(), seanceDate.Month(), seanceDate.Day(), start.Hour(), start.Minute(), 0, 0, time.UTC)
	endAt := time.Date(seanceDate.Year(), seanceDate.Month(), seanceDate.Day(), end.Hour(), end.Minute(), 0, 0, time.UTC)
	return seanceDate, startAt, endAt, nil
}
