package exec

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drainString(t *testing.T, input string, limit int) ([]string, []string, error) {
	t.Helper()
	var lines, seen []string
	err := drain(stream{
		name:   "stdout",
		reader: strings.NewReader(input),
		lines:  &lines,
		sink:   func(line string) { seen = append(seen, line) },
	}, limit)
	return lines, seen, err
}

func TestDrain(t *testing.T) {
	tests := []struct {
		name  string
		input string
		limit int
		want  []string
	}{
		{"empty", "", 16, nil},
		{"lines", "a\nb\n", 16, []string{"a", "b"}},
		{"final line without newline", "a\nb", 16, []string{"a", "b"}},
		{"crlf", "a\r\nb\r\n", 16, []string{"a", "b"}},
		{"blank lines kept", "\n\nx\n", 16, []string{"", "", "x"}},
		{"long line chunked", "abcdefghij\nafter\n", 4, []string{"abcd", "efgh", "ij", "after"}},
		{"exact multiple of limit", "abcdefgh\nz\n", 4, []string{"abcd", "efgh", "z"}},
		{"line at limit", "abcd\n", 4, []string{"abcd"}},
		{"long final line", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, seen, err := drainString(t, tt.input, tt.limit)

			require.NoError(t, err)
			assert.Equal(t, tt.want, lines)
			assert.Equal(t, tt.want, seen)
		})
	}

	t.Run("line longer than read buffer", func(t *testing.T) {
		long := strings.Repeat("x", 3*readBufferBytes+5)
		lines, _, err := drainString(t, long+"\nafter\n", maxLineBytes)

		require.NoError(t, err)
		assert.Equal(t, []string{long, "after"}, lines)
	})

	t.Run("read error keeps pending bytes", func(t *testing.T) {
		boom := errors.New("boom")
		var lines []string
		err := drain(stream{
			reader: io.MultiReader(strings.NewReader("one\ntw"), iotest.ErrReader(boom)),
			lines:  &lines,
		}, 16)

		assert.ErrorIs(t, err, boom)
		assert.Equal(t, []string{"one", "tw"}, lines)
	})
}

func TestDrainAll(t *testing.T) {
	t.Run("no errors", func(t *testing.T) {
		var out, errLines []string
		err := drainAll([]stream{
			{name: "stdout", reader: strings.NewReader("a\n"), lines: &out},
			{name: "stderr", reader: strings.NewReader("b\n"), lines: &errLines},
		}, 16)

		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, out)
		assert.Equal(t, []string{"b"}, errLines)
	})

	t.Run("reports every failed stream", func(t *testing.T) {
		outErr := errors.New("stdout broke")
		errErr := errors.New("stderr broke")
		var out, errLines []string

		err := drainAll([]stream{
			{name: "stdout", reader: iotest.ErrReader(outErr), lines: &out},
			{name: "stderr", reader: iotest.ErrReader(errErr), lines: &errLines},
		}, 16)

		require.Error(t, err)
		assert.ErrorIs(t, err, outErr)
		assert.ErrorIs(t, err, errErr)
		assert.Contains(t, err.Error(), "stdout: stdout broke")
		assert.Contains(t, err.Error(), "stderr: stderr broke")
	})

	t.Run("one failed stream", func(t *testing.T) {
		boom := errors.New("boom")
		var out, errLines []string

		err := drainAll([]stream{
			{name: "stdout", reader: strings.NewReader("fine\n"), lines: &out},
			{name: "stderr", reader: iotest.ErrReader(boom), lines: &errLines},
		}, 16)

		assert.ErrorIs(t, err, boom)
		assert.Equal(t, []string{"fine"}, out)
	})
}
