package grading

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/tecliberacion/campus/core"
)

var (
	ErrNotFound            = errors.New("course assignment not found")
	ErrRecordNotFound      = errors.New("grade record not found")
	ErrDuplicateAssignment = errors.New("an assignment for this teacher, course, group and period already exists")
	ErrNoGradesRecorded    = errors.New("no grades have been recorded for this group")
)

// StudentContact is what the grade notification email needs to know about a
// student.
type StudentContact struct {
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	Email     string `db:"email"`
}

type Repository interface {
	CreateAssignment(ctx context.Context, data NewCourseAssignment, exec ...core.DBExecutor) (CourseAssignment, error)
	GetAssignment(ctx context.Context, id int, exec ...core.DBExecutor) (CourseAssignment, error)
	// GetAssignmentByTuple looks up the unique (teacher, course, group, period)
	// row. Creation and updates use it as a pre-check so a conflict surfaces as
	// a validation error instead of a failed INSERT.
	GetAssignmentByTuple(ctx context.Context, teacherID, courseID int, groupLabel, period string, exec ...core.DBExecutor) (CourseAssignment, error)
	QueryAllAssignments(ctx context.Context, exec ...core.DBExecutor) ([]CourseAssignment, error)
	QueryAssignmentsForTeacher(ctx context.Context, teacherID int, exec ...core.DBExecutor) ([]CourseAssignment, error)
	UpdateAssignment(ctx context.Context, id int, data UpdateCourseAssignment, exec ...core.DBExecutor) error
	DeleteAssignment(ctx context.Context, id int, exec ...core.DBExecutor) error

	CountGradeRecords(ctx context.Context, assignmentID int, exec ...core.DBExecutor) (int, error)
	DeleteGradeRecordsForAssignment(ctx context.Context, assignmentID int, exec ...core.DBExecutor) error
	UpsertGradeRecord(ctx context.Context, studentID, assignmentID, grade int, comment string, exec ...core.DBExecutor) (GradeRecord, error)
	QueryRoster(ctx context.Context, assignmentID int, exec ...core.DBExecutor) ([]RosterRow, error)
	GetStudentContact(ctx context.Context, studentID int, exec ...core.DBExecutor) (StudentContact, error)
}

// EnrollmentSyncRepository is the slice of the enrollment storage grading
// needs: a recorded group grade also becomes the student's canonical course
// grade.
type EnrollmentSyncRepository interface {
	UpsertEnrollmentGrade(ctx context.Context, studentID, courseID, grade int, exec ...core.DBExecutor) error
}

type Service struct {
	db          core.DB
	repo        Repository
	enrollments EnrollmentSyncRepository
	mailSvc     core.EmailService
	conf        *core.Config
}

func NewService(db core.DB, repo Repository, enrollments EnrollmentSyncRepository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{db: db, repo: repo, enrollments: enrollments, mailSvc: mailSvc, conf: conf}
}

func (svc *Service) CreateAssignment(ctx context.Context, data NewCourseAssignment) (CourseAssignment, error) {
	if err := svc.checkTupleFree(ctx, data.TeacherID, data.CourseID, data.GroupLabel, data.Period, 0); err != nil {
		return CourseAssignment{}, err
	}
	return svc.repo.CreateAssignment(ctx, data)
}

func (svc *Service) GetAssignment(ctx context.Context, id int) (CourseAssignment, error) {
	return svc.repo.GetAssignment(ctx, id)
}

func (svc *Service) ListAssignments(ctx context.Context) ([]CourseAssignment, error) {
	return svc.repo.QueryAllAssignments(ctx)
}

func (svc *Service) ListAssignmentsForTeacher(ctx context.Context, teacherID int) ([]CourseAssignment, error) {
	return svc.repo.QueryAssignmentsForTeacher(ctx, teacherID)
}

func (svc *Service) UpdateAssignment(ctx context.Context, id int, data UpdateCourseAssignment) (CourseAssignment, error) {
	orig, err := svc.repo.GetAssignment(ctx, id)
	if err != nil {
		return CourseAssignment{}, err
	}
	if data.TeacherID == 0 {
		data.TeacherID = orig.TeacherID
	}
	if data.CourseID == 0 {
		data.CourseID = orig.CourseID
	}
	if data.GroupLabel == "" {
		data.GroupLabel = orig.GroupLabel
	}
	if data.Period == "" {
		data.Period = orig.Period
	}
	if !data.StartDate.Valid {
		data.StartDate = orig.StartDate
	}
	if !data.EndDate.Valid {
		data.EndDate = orig.EndDate
	}
	if err = svc.checkTupleFree(ctx, data.TeacherID, data.CourseID, data.GroupLabel, data.Period, id); err != nil {
		return CourseAssignment{}, err
	}
	if err = svc.repo.UpdateAssignment(ctx, id, data); err != nil {
		return CourseAssignment{}, err
	}
	return svc.repo.GetAssignment(ctx, id)
}

// DeleteAssignment removes a teaching group. When the group still holds grade
// records the caller must confirm: the first call fails with a confirmation
// error and the retry passes force to delete the records along with the group.
func (svc *Service) DeleteAssignment(ctx context.Context, id int, force bool) error {
	if _, err := svc.repo.GetAssignment(ctx, id); err != nil {
		return err
	}
	n, err := svc.repo.CountGradeRecords(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 && !force {
		return core.NewConfirmationRequiredError(
			fmt.Sprintf("this group has %d grade record(s) that will be deleted with it", n),
			"force",
		)
	}
	return core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		if err := svc.repo.DeleteGradeRecordsForAssignment(ctx, id, tx); err != nil {
			return err
		}
		return svc.repo.DeleteAssignment(ctx, id, tx)
	})
}

// RecordGrade stores a student's grade for one group and mirrors it onto the
// student's enrollment, if any. The student is notified by email after the
// write commits.
func (svc *Service) RecordGrade(ctx context.Context, data RecordGrade) (GradeRecord, error) {
	var (
		rec        GradeRecord
		assignment CourseAssignment
	)
	err := core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		var err error
		assignment, err = svc.repo.GetAssignment(ctx, data.CourseAssignmentID, tx)
		if err != nil {
			return err
		}
		rec, err = svc.repo.UpsertGradeRecord(ctx, data.StudentID, data.CourseAssignmentID, data.Grade, data.Comment, tx)
		if err != nil {
			return err
		}
		return svc.enrollments.UpsertEnrollmentGrade(ctx, data.StudentID, assignment.CourseID, data.Grade, tx)
	})
	if err != nil {
		return GradeRecord{}, err
	}

	svc.notifyGrade(ctx, data.StudentID, assignment, data.Grade)
	return rec, nil
}

// GroupRoster returns the enrolled students of a group with their grades, for
// the teacher portal.
func (svc *Service) GroupRoster(ctx context.Context, assignmentID, teacherID int) ([]RosterRow, error) {
	if err := svc.checkOwnership(ctx, assignmentID, teacherID); err != nil {
		return nil, err
	}
	return svc.repo.QueryRoster(ctx, assignmentID)
}

// ExportGroupGrades returns a group's grade sheet. A group where no grade has
// been recorded yet has nothing to export and fails validation.
func (svc *Service) ExportGroupGrades(ctx context.Context, assignmentID, teacherID int) (GroupExport, error) {
	if err := svc.checkOwnership(ctx, assignmentID, teacherID); err != nil {
		return GroupExport{}, err
	}
	assignment, err := svc.repo.GetAssignment(ctx, assignmentID)
	if err != nil {
		return GroupExport{}, err
	}
	roster, err := svc.repo.QueryRoster(ctx, assignmentID)
	if err != nil {
		return GroupExport{}, err
	}

	export := GroupExport{
		CourseName: assignment.CourseName,
		GroupLabel: assignment.GroupLabel,
		Period:     assignment.Period,
		Rows:       []ExportRow{},
	}
	graded := false
	for _, row := range roster {
		if row.Grade.Valid {
			graded = true
		}
		export.Rows = append(export.Rows, ExportRow{
			ControlNumber: row.ControlNumber,
			FirstName:     row.FirstName,
			LastName:      row.LastName,
			Grade:         row.Grade,
		})
	}
	if !graded {
		return GroupExport{}, core.NewValidationError(ErrNoGradesRecorded)
	}
	return export, nil
}

// checkOwnership restricts teacher portal operations to the teacher's own
// groups. A teacherID of zero skips the check; admin callers pass zero.
func (svc *Service) checkOwnership(ctx context.Context, assignmentID, teacherID int) error {
	if teacherID == 0 {
		return nil
	}
	assignment, err := svc.repo.GetAssignment(ctx, assignmentID)
	if err != nil {
		return err
	}
	if assignment.TeacherID != teacherID {
		return ErrNotFound
	}
	return nil
}

func (svc *Service) checkTupleFree(ctx context.Context, teacherID, courseID int, groupLabel, period string, excludeID int) error {
	existing, err := svc.repo.GetAssignmentByTuple(ctx, teacherID, courseID, groupLabel, period)
	switch {
	case err == nil:
		if existing.ID != excludeID {
			return core.NewValidationError(ErrDuplicateAssignment)
		}
		return nil
	case errors.Cause(err) == ErrNotFound:
		return nil
	default:
		return err
	}
}

func (svc *Service) notifyGrade(ctx context.Context, studentID int, assignment CourseAssignment, grade int) {
	contact, err := svc.repo.GetStudentContact(ctx, studentID)
	if err != nil || contact.Email == "" {
		return
	}
	msg := &core.EmailMessage{
		To:      []mail.Address{{Name: contact.FirstName + " " + contact.LastName, Address: contact.Email}},
		Subject: fmt.Sprintf("%s | Grade recorded", svc.conf.AppName),
		Body: fmt.Sprintf(
			"Hi %s,\n\nA grade of %d has been recorded for you in %s (group %s, %s).",
			contact.FirstName, grade, assignment.CourseName, assignment.GroupLabel, assignment.Period,
		),
	}
	svc.mailSvc.SendMessages(msg)
}
