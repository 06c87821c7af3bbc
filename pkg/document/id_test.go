package document

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestValidateID(t *testing.T) {
	valid := []ID{"index.html", "index2.html", "a", "report_v2-final.doc", ".hidden", "..html"}
	for _, id := range valid {
		assert.NoError(t, ValidateID(id), "id %q", id)
	}

	invalid := []ID{"", ".", "..", "../x", "a/b", `a\b`, "/etc/passwd", "a b", "a\x00b", "ünï.html",
		ID(strings.Repeat("a", MaxIDLength+1))}
	for _, id := range invalid {
		err := ValidateID(id)
		require.Error(t, err, "id %q", id)
		assert.True(t, errors.Is(err, ErrInvalidID))
	}
}

func TestValidateIDNeverEscapesBase(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		id := ID(rapid.String().Draw(rt, "id"))
		if ValidateID(id) != nil {
			return
		}
		base := "/srv/htmls"
		joined := filepath.Join(base, string(id))
		if filepath.Dir(joined) != base {
			rt.Fatalf("valid id %q escapes base: %s", id, joined)
		}
	})
}

func TestValidateIDAcceptsSafeAlphabet(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		id := rapid.StringMatching(`[A-Za-z0-9_-][A-Za-z0-9._-]{0,40}`).Draw(rt, "id")
		if id == "." || id == ".." {
			return
		}
		if err := ValidateID(ID(id)); err != nil {
			rt.Fatalf("safe id %q rejected: %v", id, err)
		}
	})
}

func TestReasonString(t *testing.T) {
	assert.Equal(t, "not_found", NotFound.String())
	assert.Equal(t, "read_error", ReadError.String())
	assert.Equal(t, "empty_content", EmptyContent.String())
	assert.Equal(t, "reason(0)", Reason(0).String())

	text, err := EmptyContent.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "empty_content", string(text))
}

func TestBaseDirAbsolute(t *testing.T) {
	dir := t.TempDir()
	got, err := BaseDir(dir + "/./")
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(dir), got)
}

func TestBaseDirRelativeIsAnchoredToExecutable(t *testing.T) {
	t.Chdir(t.TempDir())

	exe, err := os.Executable()
	require.NoError(t, err)
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	got, err := BaseDir("htmls")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(exe), "htmls"), got)

	cwd, _ := os.Getwd()
	assert.False(t, strings.HasPrefix(got, cwd+string(filepath.Separator)))
}
