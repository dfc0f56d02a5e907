package wire

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultKindRoundTrip(t *testing.T) {
	for k := ResultRows; k <= ResultCmdDone; k++ {
		assert.Equal(t, k, ResultKindOf(k.Code()), k.String())
	}
	assert.Equal(t, ResultUnknown, ResultKindOf(9999))
	assert.Equal(t, int32(0), ResultUnknown.Code())
	assert.Equal(t, "CS_ROW_RESULT", ResultRows.String())
	assert.Equal(t, "CS_CMD_DONE", ResultCmdDone.String())
}

func TestDataTypeString(t *testing.T) {
	assert.Equal(t, "CS_BIGDATETIME_TYPE", BigDateTime.String())
	assert.Equal(t, "CS_UNKNOWN_TYPE(-42)", DataType(-42).String())
}

func TestMostSevere(t *testing.T) {
	assert.Nil(t, MostSevere(nil))

	msgs := []Message{
		{Code: 1, Severity: 10, Text: "info"},
		{Code: 2, Severity: 16, Text: "first error"},
		{Code: 3, Severity: 16, Text: "second error"},
		{Code: 4, Severity: 0, Text: "trailing"},
	}
	assert.Equal(t, "second error", MostSevere(msgs).Text)
	assert.Equal(t, "first error", FirstError(msgs).Text)
	assert.Nil(t, FirstError(msgs[:1]))
}

func TestMessage(t *testing.T) {
	m := &Message{Origin: OriginServer, Code: 208, Severity: 16, Proc: "sp_x", Line: 3, Text: "titlez not found.\n"}
	assert.True(t, m.IsError())
	assert.Equal(t, "titlez not found.\n", m.Error())
	assert.Contains(t, m.String(), "message 208, severity 16, procedure sp_x, line 3: titlez not found.")
	assert.False(t, (&Message{Severity: 10}).IsError())
}

func TestDriverError(t *testing.T) {
	cause := errors.New("connection reset")
	err := &DriverError{Op: "ct_send", Cause: cause}
	assert.Equal(t, "ct_send failed: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)

	msg := &Message{Text: "login failed"}
	err = &DriverError{Op: "ct_connect", Message: msg}
	assert.Equal(t, "ct_connect failed: login failed", err.Error())
	var got *Message
	assert.True(t, errors.As(err, &got))
	assert.Same(t, msg, got)

	assert.Equal(t, "ct_results failed with code 0", (&DriverError{Op: "ct_results"}).Error())
}
