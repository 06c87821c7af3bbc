package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(ComponentResolver, &buf, false)

	log.Info("resolved", "document", "index.html")

	line := buf.String()
	assert.Contains(t, line, "[RESOLVER] resolved")
	assert.Contains(t, line, "document=index.html")
	assert.NotContains(t, line, "\033[")
}

func TestWithAttrsCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(ComponentServer, &buf, false)

	log.With("request_id", "abc").Info("request")

	assert.Contains(t, buf.String(), "request_id=abc")
}

func TestSetLevelFiltersDebug(t *testing.T) {
	defer SetLevel("info")

	var buf bytes.Buffer
	log := NewWithWriter(ComponentRegistry, &buf, false)

	SetLevel("info")
	log.Debug("hidden")
	assert.Empty(t, buf.String())

	SetLevel("debug")
	log.Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestSection(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(ComponentServer, &buf, true)

	log.Section("STARTING")

	out := buf.String()
	assert.Equal(t, 5, strings.Count(out, "\n"))
	assert.Contains(t, out, " STARTING")
	assert.Contains(t, out, colorWhite)
}
