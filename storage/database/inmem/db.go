// Package inmemdb provides map-backed repositories for tests. Writes apply
// immediately; a transaction snapshots the whole store on begin and restores
// it on rollback, so tests can assert that an aborted batch left nothing
// behind.
package inmemdb

import (
	"context"
	"database/sql"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/tecliberacion/campus/core"
	"github.com/tecliberacion/campus/core/admin"
	"github.com/tecliberacion/campus/core/catalog"
	"github.com/tecliberacion/campus/core/enrollment"
	"github.com/tecliberacion/campus/core/grading"
	"github.com/tecliberacion/campus/core/student"
	"github.com/tecliberacion/campus/core/teacher"
)

type DB struct {
	mutex sync.RWMutex

	pkCount int

	students        map[int]*student.Student
	admins          map[int]*admin.Admin
	teachers        map[int]*teacher.Teacher
	courses         map[int]*catalog.Course
	exams           map[int]*catalog.Exam
	enrollments     map[int]*enrollment.Enrollment
	examEnrollments map[int]*enrollment.ExamEnrollment
	assignments     map[int]*grading.CourseAssignment
	gradeRecords    map[int]*grading.GradeRecord
}

var _ core.DB = (*DB)(nil)

func NewDB() *DB {
	return &DB{
		students:        make(map[int]*student.Student),
		admins:          make(map[int]*admin.Admin),
		teachers:        make(map[int]*teacher.Teacher),
		courses:         make(map[int]*catalog.Course),
		exams:           make(map[int]*catalog.Exam),
		enrollments:     make(map[int]*enrollment.Enrollment),
		examEnrollments: make(map[int]*enrollment.ExamEnrollment),
		assignments:     make(map[int]*grading.CourseAssignment),
		gradeRecords:    make(map[int]*grading.GradeRecord),
	}
}

// nextPK must be called with the write lock held.
func (db *DB) nextPK() int {
	db.pkCount++
	return db.pkCount
}

func (db *DB) BeginTx(ctx context.Context) (core.DBTransactor, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	return &memTx{DB: db, snap: db.snapshot()}, nil
}

// snapshot must be called with the lock held.
func (db *DB) snapshot() *snapshot {
	snap := &snapshot{pkCount: db.pkCount, db: NewDB()}
	for id, v := range db.students {
		cp := *v
		snap.db.students[id] = &cp
	}
	for id, v := range db.admins {
		cp := *v
		snap.db.admins[id] = &cp
	}
	for id, v := range db.teachers {
		cp := *v
		snap.db.teachers[id] = &cp
	}
	for id, v := range db.courses {
		cp := *v
		snap.db.courses[id] = &cp
	}
	for id, v := range db.exams {
		cp := *v
		snap.db.exams[id] = &cp
	}
	for id, v := range db.enrollments {
		cp := *v
		snap.db.enrollments[id] = &cp
	}
	for id, v := range db.examEnrollments {
		cp := *v
		snap.db.examEnrollments[id] = &cp
	}
	for id, v := range db.assignments {
		cp := *v
		snap.db.assignments[id] = &cp
	}
	for id, v := range db.gradeRecords {
		cp := *v
		snap.db.gradeRecords[id] = &cp
	}
	return snap
}

// restore must be called with the lock held.
func (db *DB) restore(snap *snapshot) {
	db.pkCount = snap.pkCount
	db.students = snap.db.students
	db.admins = snap.db.admins
	db.teachers = snap.db.teachers
	db.courses = snap.db.courses
	db.exams = snap.db.exams
	db.enrollments = snap.db.enrollments
	db.examEnrollments = snap.db.examEnrollments
	db.assignments = snap.db.assignments
	db.gradeRecords = snap.db.gradeRecords
}

type snapshot struct {
	pkCount int
	db      *DB
}

// The core.DBExecutor methods exist only to satisfy the interface; inmem
// repositories ignore the exec argument entirely.

func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	panic("inmemdb: raw SQL not supported")
}

func (db *DB) NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error) {
	panic("inmemdb: raw SQL not supported")
}

func (db *DB) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	panic("inmemdb: raw SQL not supported")
}

func (db *DB) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	panic("inmemdb: raw SQL not supported")
}

func (db *DB) QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row {
	panic("inmemdb: raw SQL not supported")
}

// memTx restores the begin-time snapshot on rollback. A rollback after commit
// is a no-op, matching database/sql.
type memTx struct {
	*DB
	snap *snapshot
	done bool
}

func (tx *memTx) Commit() error {
	tx.done = true
	return nil
}

func (tx *memTx) Rollback() error {
	if tx.done {
		return nil
	}
	tx.done = true
	tx.DB.mutex.Lock()
	defer tx.DB.mutex.Unlock()
	tx.DB.restore(tx.snap)
	return nil
}
