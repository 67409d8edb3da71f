// Package batch implements the result accounting shared by all bulk
// operations: one request acting on many independent rows, reporting per-row
// success/failure plus aggregate counts.
//
// The engine distinguishes two failure categories. Recoverable errors
// (an expected business conflict on one row: a duplicate control number, a
// missing enrollment) are recorded against that row and the batch moves on.
// Any other error is fatal: it aborts the loop and the caller is expected to
// roll back the enclosing transaction wholesale, so a mid-batch
// infrastructure failure leaves no partial writes visible.
package batch

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Detail reports the outcome of a single failed row. Exactly one of
// ControlNumber/StudentID identifies the row, depending on the operation.
type Detail struct {
	ControlNumber string `json:"control_number,omitempty"`
	StudentID     int    `json:"student_id,omitempty"`
	Error         string `json:"error"`
}

// Result aggregates per-row outcomes of one batch operation.
type Result struct {
	OperationID string   `json:"operation_id"`
	Successful  int      `json:"successful"`
	Failed      int      `json:"failed"`
	Details     []Detail `json:"details"`
}

type recoverableError struct {
	err error
}

func (e *recoverableError) Error() string { return e.err.Error() }
func (e *recoverableError) Unwrap() error { return e.err }

// Recoverable marks err as a per-row failure that must not abort the batch.
func Recoverable(err error) error {
	if err == nil {
		return nil
	}
	return &recoverableError{err: err}
}

// IsRecoverable reports whether err (or any error it wraps) was marked Recoverable.
func IsRecoverable(err error) bool {
	var rerr *recoverableError
	return errors.As(err, &rerr)
}

// Accumulator collects row outcomes for one batch run.
type Accumulator struct {
	res Result
}

func NewAccumulator() *Accumulator {
	return &Accumulator{
		res: Result{
			OperationID: uuid.New().String(),
			Details:     []Detail{},
		},
	}
}

// Do runs fn as one unit of work identified by detail. A nil return counts as
// a success; a Recoverable error is recorded as that row's failure and
// swallowed; any other error is returned unchanged for the caller to abort
// the whole batch.
func (a *Accumulator) Do(detail Detail, fn func() error) error {
	err := fn()
	if err == nil {
		a.res.Successful++
		return nil
	}

	var rerr *recoverableError
	if errors.As(err, &rerr) {
		detail.Error = rerr.err.Error()
		a.res.Failed++
		a.res.Details = append(a.res.Details, detail)
		return nil
	}
	return err
}

func (a *Accumulator) Result() Result {
	return a.res
}
