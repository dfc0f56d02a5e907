package debug

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitWriter(t *testing.T) {
	t.Cleanup(func() { Init(false) })

	var buf bytes.Buffer
	InitWriter(true, &buf)
	assert.True(t, Enabled())

	Debug("submitting", "sql", "select 1")
	With("conn", 1).Info("connected")
	assert.Contains(t, buf.String(), "msg=submitting")
	assert.Contains(t, buf.String(), `sql="select 1"`)
	assert.Contains(t, buf.String(), "conn=1")
	assert.Contains(t, buf.String(), "component=tds")

	buf.Reset()
	InitWriter(false, &buf)
	assert.False(t, Enabled())
	Debug("hidden")
	Error("also hidden")
	assert.Empty(t, buf.String())
}
