package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("  hello world  \n"))
	out := &bytes.Buffer{}

	text, err := GetSimpleText(reader, "Say something", out)
	require.NoError(t, err)

	assert.Equal(t, "hello world", text)
	assert.Contains(t, out.String(), "Say something")
}

func TestGetSimpleText_PartialLineOnEOF(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("no newline"))
	out := &bytes.Buffer{}

	text, err := GetSimpleText(reader, "Say something", out)
	require.NoError(t, err)
	assert.Equal(t, "no newline", text)
}

func TestGetPassword_UsesSeam(t *testing.T) {
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })
	readPassword = func(fd int) ([]byte, error) {
		return []byte("s3cret"), nil
	}

	out := &bytes.Buffer{}
	pw, err := GetPassword(out)
	require.NoError(t, err)

	assert.Equal(t, []byte("s3cret"), pw)
	assert.Contains(t, out.String(), "Enter password")
}
