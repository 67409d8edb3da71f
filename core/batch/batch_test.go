package batch

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestAccumulator_Do(t *testing.T) {
	errDup := errors.New("control number already registered")
	errBoom := errors.New("connection reset")

	t.Run("successes and recoverable failures accumulate", func(t *testing.T) {
		acc := NewAccumulator()

		assert.NoError(t, acc.Do(Detail{StudentID: 1}, func() error { return nil }))
		assert.NoError(t, acc.Do(Detail{StudentID: 2}, func() error { return Recoverable(errDup) }))
		assert.NoError(t, acc.Do(Detail{StudentID: 3}, func() error { return nil }))

		res := acc.Result()
		assert.NotEmpty(t, res.OperationID)
		assert.Equal(t, 2, res.Successful)
		assert.Equal(t, 1, res.Failed)
		if assert.Len(t, res.Details, 1) {
			assert.Equal(t, 2, res.Details[0].StudentID)
			assert.Equal(t, errDup.Error(), res.Details[0].Error)
		}
	})

	t.Run("fatal error aborts", func(t *testing.T) {
		acc := NewAccumulator()

		assert.NoError(t, acc.Do(Detail{StudentID: 1}, func() error { return nil }))
		err := acc.Do(Detail{StudentID: 2}, func() error { return errBoom })
		assert.Equal(t, errBoom, err)

		// the partial tally is never reported; no failure row is recorded either
		res := acc.Result()
		assert.Equal(t, 1, res.Successful)
		assert.Equal(t, 0, res.Failed)
		assert.Empty(t, res.Details)
	})

	t.Run("wrapped recoverable errors are still recoverable", func(t *testing.T) {
		acc := NewAccumulator()

		wrapped := errors.Wrap(Recoverable(errDup), "upserting enrollment")
		assert.True(t, IsRecoverable(wrapped))
		assert.NoError(t, acc.Do(Detail{ControlNumber: "C1939010"}, func() error { return wrapped }))

		res := acc.Result()
		assert.Equal(t, 1, res.Failed)
		assert.Equal(t, "C1939010", res.Details[0].ControlNumber)
	})

	t.Run("Recoverable(nil) is nil", func(t *testing.T) {
		assert.Nil(t, Recoverable(nil))
	})
}

func TestResult_EmptyDetailsMarshalsAsList(t *testing.T) {
	res := NewAccumulator().Result()
	assert.NotNil(t, res.Details) // "details": [] on the wire, not null
}
