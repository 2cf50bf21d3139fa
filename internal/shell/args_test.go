package shell

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildArguments(t *testing.T) {
	tests := []struct {
		kind    Kind
		command string
		want    string
	}{
		{Cmd, "echo Hello World", "/c echo Hello World"},
		{PowerShell, "Write-Output hi", `-Command "Write-Output hi"`},
		{Bash, "echo Hello World", `-c "echo Hello World"`},
		{Sh, "ls -la", `-c "ls -la"`},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			got, err := BuildArguments(tt.kind, tt.command)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("unknown kind", func(t *testing.T) {
		_, err := BuildArguments(Kind(7), "echo")
		assert.ErrorIs(t, err, ErrUnsupportedApplication)
	})
}

func TestBuildArguments_Verbatim(t *testing.T) {
	commands := []string{
		`echo "quoted" 'single' $HOME`,
		"a && b || c; d | e > f",
		`back\slash`,
		"",
	}

	for _, kind := range Kinds() {
		for _, command := range commands {
			first, err := BuildArguments(kind, command)
			require.NoError(t, err)
			second, err := BuildArguments(kind, command)
			require.NoError(t, err)

			assert.Equal(t, first, second, "building arguments must be deterministic")
			assert.True(t, strings.Contains(first, command),
				"expected %q to contain %q unescaped", first, command)
		}
	}
}

func TestBuildArgv(t *testing.T) {
	tests := []struct {
		kind    Kind
		command string
		want    []string
	}{
		{Cmd, "echo Hello World", []string{"/c", "echo Hello World"}},
		{PowerShell, "Write-Output hi", []string{"-Command", "Write-Output hi"}},
		{Bash, `printf 'a\nb\n'`, []string{"-c", `printf 'a\nb\n'`}},
		{Sh, "ls -la", []string{"-c", "ls -la"}},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			got, err := BuildArgv(tt.kind, tt.command)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("unknown kind", func(t *testing.T) {
		_, err := BuildArgv(Kind(7), "echo")
		assert.ErrorIs(t, err, ErrUnsupportedApplication)
	})
}

func TestBuildArgv_Verbatim(t *testing.T) {
	commands := []string{
		`printf 'a\nb\n'`,
		`echo C:\temp`,
		`echo "say \"hi\""`,
		`echo a#b # trailing comment`,
		`echo "unbalanced`,
		"a && b || c; d | e > f",
		"",
	}

	for _, kind := range Kinds() {
		for _, command := range commands {
			argv, err := BuildArgv(kind, command)
			require.NoError(t, err)
			require.Len(t, argv, 2)
			assert.Equal(t, command, argv[1], "command must reach %s unchanged", kind)
		}
	}
}

func TestBuilders(t *testing.T) {
	t.Run("kind builder", func(t *testing.T) {
		got, err := KindBuilder{Kind: Bash}.BuildArguments("pwd")
		require.NoError(t, err)
		assert.Equal(t, `-c "pwd"`, got)

		argv, err := KindBuilder{Kind: Bash}.BuildArgv("pwd")
		require.NoError(t, err)
		assert.Equal(t, []string{"-c", "pwd"}, argv)
	})

	t.Run("passthrough", func(t *testing.T) {
		got, err := Passthrough{}.BuildArguments("--version")
		require.NoError(t, err)
		assert.Equal(t, "--version", got)

		argv, err := Passthrough{}.BuildArgv(`status --short "my file"`)
		require.NoError(t, err)
		assert.Equal(t, []string{"status", "--short", "my file"}, argv)
	})
}

func TestSplitCommandLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"empty", "", []string{}},
		{"only spaces", "   \t ", []string{}},
		{"words", "status  --short\t-b", []string{"status", "--short", "-b"}},
		{"quoted group", `-c "echo Hello World"`, []string{"-c", "echo Hello World"}},
		{"empty quoted argument", `a "" b`, []string{"a", "", "b"}},
		{"backslash is literal", `C:\temp\dir`, []string{`C:\temp\dir`}},
		{"trailing backslash", `C:\temp\`, []string{`C:\temp\`}},
		{"escape sequences kept", `'a\nb\n'`, []string{`'a\nb\n'`}},
		{"escaped quote", `"say \"hi\""`, []string{`say "hi"`}},
		{"doubled quote inside quotes", `"say ""hi"""`, []string{`say "hi"`}},
		{"even backslashes before quote", `a\\"b c"`, []string{`a\b c`}},
		{"odd backslashes before quote", `a\\\"b`, []string{`a\"b`}},
		{"hash is not a comment", `a#b # c`, []string{"a#b", "#", "c"}},
		{"no expansion", `$HOME ~ *`, []string{"$HOME", "~", "*"}},
		{"single quotes do not group", `'a b'`, []string{"'a", "b'"}},
		{"unterminated quote runs to end", `-c "echo  x`, []string{"-c", "echo  x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitCommandLine(tt.line))
		})
	}
}
