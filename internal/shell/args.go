package shell

import (
	"fmt"
	"strings"
)

// ArgumentBuilder turns command text into the arguments for an application.
// BuildArguments gives the single argument line used in messages and handed
// to Windows verbatim; BuildArgv gives the argv used everywhere else.
type ArgumentBuilder interface {
	BuildArguments(command string) (string, error)
	BuildArgv(command string) ([]string, error)
}

// KindBuilder builds arguments for one interpreter kind.
type KindBuilder struct {
	Kind Kind
}

// BuildArguments implements ArgumentBuilder.
func (b KindBuilder) BuildArguments(command string) (string, error) {
	return BuildArguments(b.Kind, command)
}

// BuildArgv implements ArgumentBuilder.
func (b KindBuilder) BuildArgv(command string) ([]string, error) {
	return BuildArgv(b.Kind, command)
}

// Passthrough hands the command text to the application unchanged. It is
// used for applications that are not interpreters.
type Passthrough struct{}

// BuildArguments implements ArgumentBuilder.
func (Passthrough) BuildArguments(command string) (string, error) {
	return command, nil
}

// BuildArgv implements ArgumentBuilder. The text is split with
// SplitCommandLine.
func (Passthrough) BuildArgv(command string) ([]string, error) {
	return SplitCommandLine(command), nil
}

// BuildArguments returns the argument line that makes kind run command and
// exit. The command is inserted verbatim.
func BuildArguments(kind Kind, command string) (string, error) {
	switch kind {
	case Cmd:
		return "/c " + command, nil
	case PowerShell:
		return `-Command "` + command + `"`, nil
	case Bash, Sh:
		return `-c "` + command + `"`, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedApplication, kind)
	}
}

// BuildArgv returns the argv equivalent of BuildArguments. The command is
// always a single element, byte for byte, so the interpreter is the only
// thing that ever parses it.
func BuildArgv(kind Kind, command string) ([]string, error) {
	switch kind {
	case Cmd:
		return []string{"/c", command}, nil
	case PowerShell:
		return []string{"-Command", command}, nil
	case Bash, Sh:
		return []string{"-c", command}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedApplication, kind)
	}
}

// SplitCommandLine splits an argument line the way Windows programs and
// .NET parse their command line:
//
//   - spaces and tabs separate arguments outside double quotes
//   - double quotes group and are removed; "" inside quotes is a literal quote
//   - 2n backslashes before a quote give n backslashes and the quote toggles
//     grouping; 2n+1 give n backslashes and a literal quote
//   - any other backslash is literal
//
// Nothing is expanded and '#' has no special meaning.
func SplitCommandLine(line string) []string {
	args := []string{}
	var current strings.Builder
	inArg, inQuotes := false, false

	for i := 0; i < len(line); i++ {
		c := line[i]

		switch {
		case c == '\\':
			n := 0
			for i < len(line) && line[i] == '\\' {
				n++
				i++
			}
			if i < len(line) && line[i] == '"' {
				current.WriteString(strings.Repeat(`\`, n/2))
				if n%2 == 1 {
					current.WriteByte('"')
				} else {
					inQuotes = !inQuotes
				}
			} else {
				current.WriteString(strings.Repeat(`\`, n))
				i--
			}
			inArg = true

		case c == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				current.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
			inArg = true

		case (c == ' ' || c == '\t') && !inQuotes:
			if inArg {
				args = append(args, current.String())
				current.Reset()
				inArg = false
			}

		default:
			current.WriteByte(c)
			inArg = true
		}
	}

	if inArg {
		args = append(args, current.String())
	}
	return args
}
