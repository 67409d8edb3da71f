package student

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/tecliberacion/campus/core"
)

type Student struct {
	ID            int       `json:"id" db:"id"`
	FirstName     string    `json:"first_name" db:"first_name"`
	LastName      string    `json:"last_name" db:"last_name"`
	ControlNumber string    `json:"control_number" db:"control_number"`
	Email         string    `json:"email" db:"email"`
	PasswordHash  []byte    `json:"-" db:"password_hash"`
	AdminID       int       `json:"admin_id" db:"admin_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"` // UTC
}

func (s *Student) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.PasswordHash = hash
	return nil
}

func (s *Student) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(s.PasswordHash, []byte(pwd))
}

// NewStudent contains information needed to register a new Student.
// Password is optional; it defaults to the control number so imported
// students can log in before setting their own.
type NewStudent struct {
	FirstName     string `json:"first_name" validate:"required"`
	LastName      string `json:"last_name" validate:"required"`
	ControlNumber string `json:"control_number" validate:"required,controlnum"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"omitempty,min=6"`
}

func (ns *NewStudent) Clean() {
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.ControlNumber = core.CleanString(ns.ControlNumber, true /* lower */)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Clean()
	return validate.Struct(ns)
}

// UpdateStudent defines what an admin may modify on an existing Student.
type UpdateStudent struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" validate:"omitempty,email"`
	Password  string `json:"password" validate:"omitempty,min=6"`
}

func (us *UpdateStudent) Validate(orig Student, validate *validator.Validate) error {
	if fname := core.CleanString(us.FirstName); fname != "" {
		us.FirstName = fname
	} else {
		us.FirstName = orig.FirstName
	}
	if lname := core.CleanString(us.LastName); lname != "" {
		us.LastName = lname
	} else {
		us.LastName = orig.LastName
	}
	if email := core.CleanString(us.Email, true /* lower */); email != "" {
		us.Email = email
	} else {
		us.Email = orig.Email
	}
	return validate.Struct(us)
}

// UpdateProfile defines what a student may modify on their own account.
type UpdateProfile struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
}

func (up *UpdateProfile) Validate(validate *validator.Validate) error {
	up.FirstName = core.CleanString(up.FirstName)
	up.LastName = core.CleanString(up.LastName)
	up.Email = core.CleanString(up.Email, true /* lower */)
	return validate.Struct(up)
}

type ChangePassword struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

func (cp ChangePassword) Validate(validate *validator.Validate) error {
	return validate.Struct(cp)
}
