package student

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/tecliberacion/campus/core"
	"github.com/tecliberacion/campus/core/batch"
)

var (
	// errors
	ErrNotFound            = errors.New("student not found")
	ErrControlNumberExists = errors.New("control number already registered")
	ErrInvalidPassword     = errors.New("current password is incorrect")
)

type (
	// GetFilter selects a single student; the first non-zero field wins.
	GetFilter struct {
		ID            int
		ControlNumber string
		Email         string
	}

	Repository interface {
		CreateStudent(ctx context.Context, std Student, exec ...core.DBExecutor) (Student, error)
		GetStudent(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Student, error)
		QueryAllStudents(ctx context.Context, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Student, error)
		UpdateStudent(ctx context.Context, std Student, exec ...core.DBExecutor) (Student, error)
		// DeleteStudent removes the student and their enrollment, exam
		// enrollment and grade record rows.
		DeleteStudent(ctx context.Context, id int, exec ...core.DBExecutor) error
	}

	Service struct {
		db   core.DB
		repo Repository
		mail core.EmailService
		conf *core.Config
	}
)

func NewService(db core.DB, repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{db: db, repo: repo, mail: mailSvc, conf: conf}
}

func (svc *Service) checkControlNumberFree(ctx context.Context, noControl string, exec ...core.DBExecutor) error {
	_, err := svc.repo.GetStudent(ctx, GetFilter{ControlNumber: noControl}, exec...)
	if err == nil {
		return ErrControlNumberExists
	}
	if errors.Cause(err) != ErrNotFound {
		return errors.Wrap(err, "checking control number uniqueness")
	}
	return nil
}

func (svc *Service) newStudent(ns NewStudent, adminID int) (Student, error) {
	now := time.Now().UTC()
	std := Student{
		FirstName:     ns.FirstName,
		LastName:      ns.LastName,
		ControlNumber: ns.ControlNumber,
		Email:         ns.Email,
		AdminID:       adminID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	pwd := ns.Password
	if pwd == "" {
		pwd = ns.ControlNumber
	}
	if err := std.SetPassword(pwd); err != nil {
		return Student{}, errors.Wrap(err, "setting password")
	}
	return std, nil
}

func (svc *Service) Create(ctx context.Context, ns NewStudent, adminID int) (Student, error) {
	if err := svc.checkControlNumberFree(ctx, ns.ControlNumber); err != nil {
		if errors.Cause(err) == ErrControlNumberExists {
			return Student{}, core.NewValidationError(err, core.FieldError{Field: "control_number", Error: err.Error()})
		}
		return Student{}, err
	}
	std, err := svc.newStudent(ns, adminID)
	if err != nil {
		return Student{}, err
	}
	return svc.repo.CreateStudent(ctx, std)
}

// BulkCreate registers a list of candidate students inside one transaction.
// A candidate whose control number is already registered is recorded as that
// row's failure and skipped; the remaining candidates still go through. Any
// other error rolls the whole batch back.
func (svc *Service) BulkCreate(ctx context.Context, rows []NewStudent, adminID int) (batch.Result, error) {
	acc := batch.NewAccumulator()
	created := make([]Student, 0, len(rows))

	err := core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		for _, row := range rows {
			row := row
			err := acc.Do(batch.Detail{ControlNumber: row.ControlNumber}, func() error {
				if err := svc.checkControlNumberFree(ctx, row.ControlNumber, tx); err != nil {
					if errors.Cause(err) == ErrControlNumberExists {
						return batch.Recoverable(err)
					}
					return err
				}
				std, err := svc.newStudent(row, adminID)
				if err != nil {
					return err
				}
				std, err = svc.repo.CreateStudent(ctx, std, tx)
				if err != nil {
					return errors.Wrap(err, "inserting student")
				}
				created = append(created, std)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return batch.Result{}, err
	}

	svc.sendWelcomeEmails(created)
	return acc.Result(), nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudent(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByControlNumber(ctx context.Context, noControl string) (Student, error) {
	return svc.repo.GetStudent(ctx, GetFilter{ControlNumber: core.CleanString(noControl, true /* lower */)})
}

func (svc *Service) QueryAll(ctx context.Context, ordering []core.DBOrdering) ([]Student, error) {
	return svc.repo.QueryAllStudents(ctx, ordering)
}

func (svc *Service) Update(ctx context.Context, id int, us UpdateStudent) (Student, error) {
	std, err := svc.repo.GetStudent(ctx, GetFilter{ID: id})
	if err != nil {
		return Student{}, err
	}
	std.FirstName = us.FirstName
	std.LastName = us.LastName
	std.Email = us.Email
	std.UpdatedAt = time.Now().UTC()
	if us.Password != "" {
		if err := std.SetPassword(us.Password); err != nil {
			return Student{}, errors.Wrap(err, "setting password")
		}
	}
	return svc.repo.UpdateStudent(ctx, std)
}

func (svc *Service) UpdateProfile(ctx context.Context, id int, up UpdateProfile) (Student, error) {
	std, err := svc.repo.GetStudent(ctx, GetFilter{ID: id})
	if err != nil {
		return Student{}, err
	}
	std.FirstName = up.FirstName
	std.LastName = up.LastName
	std.Email = up.Email
	std.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, std)
}

func (svc *Service) ChangePassword(ctx context.Context, id int, cp ChangePassword) error {
	std, err := svc.repo.GetStudent(ctx, GetFilter{ID: id})
	if err != nil {
		return err
	}
	if err := std.CheckPassword(cp.CurrentPassword); err != nil {
		return core.NewValidationError(ErrInvalidPassword, core.FieldError{Field: "current_password", Error: ErrInvalidPassword.Error()})
	}
	if err := std.SetPassword(cp.NewPassword); err != nil {
		return errors.Wrap(err, "setting password")
	}
	std.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateStudent(ctx, std)
	return err
}

// Delete removes a student together with their dependent rows, all in one
// transaction.
func (svc *Service) Delete(ctx context.Context, id int) error {
	return core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		return svc.repo.DeleteStudent(ctx, id, tx)
	})
}

func (svc *Service) sendWelcomeEmails(students []Student) {
	if svc.mail == nil || len(students) == 0 {
		return
	}
	msgs := make([]*core.EmailMessage, 0, len(students))
	for _, std := range students {
		msgs = append(msgs, &core.EmailMessage{
			To:      []mail.Address{{Name: std.FirstName + " " + std.LastName, Address: std.Email}},
			Subject: "Welcome to " + svc.conf.AppName,
			Body: fmt.Sprintf(
				"Hi %s,\r\n\r\nYour account has been created. Log in with your control number (%s); "+
					"if you were not given a password, your control number is your initial password.\r\n\r\n%s",
				std.FirstName, std.ControlNumber, svc.conf.FrontendBaseURL,
			),
		})
	}
	svc.mail.SendMessages(msgs...)
}
