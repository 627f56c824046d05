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
	var out bytes.Buffer
	got, err := GetSimpleText(bufio.NewReader(strings.NewReader("  carol@example.com \n")), "Email", &out)
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", got)
	assert.Equal(t, "Email\n> ", out.String())

	got, err = GetSimpleText(bufio.NewReader(strings.NewReader("partial")), "Email", &out)
	require.NoError(t, err)
	assert.Equal(t, "partial", got)

	_, err = GetSimpleText(bufio.NewReader(strings.NewReader("")), "Email", &out)
	assert.Error(t, err)
}

func TestGetPassword(t *testing.T) {
	stubPassword(t, "secret1")
	var out bytes.Buffer
	got, err := GetPassword(&out)
	require.NoError(t, err)
	assert.Equal(t, "secret1", got)
	assert.Equal(t, "Password: \n", out.String())
}

func TestReadLines(t *testing.T) {
	var lines []string
	require.NoError(t, readLines(bufio.NewReader(strings.NewReader("one\r\ntwo\n\nthree\n")), func(s string) {
		lines = append(lines, s)
	}))
	assert.Equal(t, []string{"one", "two"}, lines)

	lines = nil
	require.NoError(t, readLines(bufio.NewReader(strings.NewReader("tail")), func(s string) {
		lines = append(lines, s)
	}))
	assert.Equal(t, []string{"tail"}, lines)
}
