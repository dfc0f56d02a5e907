package wire

import (
	"fmt"
	"strings"
)

// Origin tells which layer raised a diagnostic.
type Origin int

// Message origins.
const (
	OriginLibrary Origin = iota
	OriginClient
	OriginServer
)

// String returns the origin name.
func (o Origin) String() string {
	switch o {
	case OriginClient:
		return "client"
	case OriginServer:
		return "server"
	default:
		return "library"
	}
}

// ErrorSeverity is the lowest severity that denotes an error rather than an
// informational message.
const ErrorSeverity = 11

// Message is one diagnostic collected while a command runs.
type Message struct {
	Origin   Origin
	Severity int
	Code     int
	State    int
	SQLState string
	Server   string
	Proc     string
	Line     int
	Text     string
}

// Error implements the error interface with the server wording verbatim.
func (m *Message) Error() string {
	return m.Text
}

// IsError reports whether the message is severe enough to be an error.
func (m *Message) IsError() bool {
	return m.Severity >= ErrorSeverity
}

// String returns a log friendly form.
func (m Message) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s message %d, severity %d", m.Origin, m.Code, m.Severity)
	if m.Proc != "" {
		fmt.Fprintf(&b, ", procedure %s", m.Proc)
	}
	if m.Line > 0 {
		fmt.Fprintf(&b, ", line %d", m.Line)
	}
	b.WriteString(": ")
	b.WriteString(strings.TrimRight(m.Text, "\n"))
	return b.String()
}

// MostSevere returns the message with the highest severity. Ties go to the
// later message. It returns nil for an empty slice.
func MostSevere(msgs []Message) *Message {
	var best *Message
	for i := range msgs {
		if best == nil || msgs[i].Severity >= best.Severity {
			best = &msgs[i]
		}
	}
	return best
}

// FirstError returns the first message at or above ErrorSeverity.
func FirstError(msgs []Message) *Message {
	for i := range msgs {
		if msgs[i].IsError() {
			return &msgs[i]
		}
	}
	return nil
}

// DriverError reports a session call that returned a failure code.
type DriverError struct {
	Op      string
	Code    int
	Message *Message
	Cause   error
}

// Error implements the error interface.
func (e *DriverError) Error() string {
	switch {
	case e.Message != nil:
		return fmt.Sprintf("%s failed: %s", e.Op, e.Message.Text)
	case e.Cause != nil:
		return fmt.Sprintf("%s failed: %v", e.Op, e.Cause)
	default:
		return fmt.Sprintf("%s failed with code %d", e.Op, e.Code)
	}
}

// Unwrap returns the underlying error.
func (e *DriverError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	if e.Message != nil {
		return e.Message
	}
	return nil
}
