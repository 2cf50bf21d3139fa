// Package shell maps command interpreters to executables and builds the
// argument line each interpreter expects.
//
// Command text is placed inside the interpreter's argument line verbatim.
// Embedded quotes and shell metacharacters are NOT escaped: callers are
// responsible for the safety of the commands they pass in.
package shell

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Sentinel errors for resolution and argument building.
var (
	ErrUnsupportedApplication     = errors.New("unsupported application")
	ErrUnsupportedOperatingSystem = errors.New("unsupported operating system")
)

// Supported operating system families.
const (
	GOOSWindows = "windows"
	GOOSLinux   = "linux"
	GOOSDarwin  = "darwin"
)

// Kind identifies a supported command interpreter.
type Kind int

// Supported interpreters.
const (
	Cmd Kind = iota
	PowerShell
	Bash
	Sh
)

// kindNames holds the serialized name of each kind.
var kindNames = map[Kind]string{
	Cmd:        "CMD",
	PowerShell: "PowerShell",
	Bash:       "Bash",
	Sh:         "Sh",
}

// executables maps an operating system family to the interpreters it ships.
var executables = map[string]map[Kind]string{
	GOOSWindows: {
		Cmd:        "cmd.exe",
		PowerShell: "powershell.exe",
	},
	GOOSLinux: {
		Bash: "/bin/bash",
		Sh:   "/bin/sh",
	},
	GOOSDarwin: {
		Bash: "/bin/bash",
		Sh:   "/bin/sh",
	},
}

// Kinds returns all supported interpreter kinds in declaration order.
func Kinds() []Kind {
	return []Kind{Cmd, PowerShell, Bash, Sh}
}

// String returns the serialized name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind matches name exactly (case-sensitive) against the serialized
// kind names.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// KindFromName identifies the interpreter behind name. It accepts a
// serialized kind name or one of the well-known executable paths
// (compared case-insensitively).
func KindFromName(name string) (Kind, error) {
	if k, ok := ParseKind(name); ok {
		return k, nil
	}

	switch strings.ToLower(name) {
	case "cmd.exe":
		return Cmd, nil
	case "powershell.exe":
		return PowerShell, nil
	case "/bin/bash":
		return Bash, nil
	case "/bin/sh":
		return Sh, nil
	}

	return 0, fmt.Errorf("%w: %s", ErrUnsupportedApplication, name)
}

// Resolver resolves interpreters for one operating system family.
type Resolver struct {
	goos string
}

// NewResolver returns a Resolver for goos. An empty goos selects the host.
func NewResolver(goos string) *Resolver {
	if goos == "" {
		goos = runtime.GOOS
	}
	return &Resolver{goos: goos}
}

// GOOS returns the operating system family this resolver targets.
func (r *Resolver) GOOS() string {
	return r.goos
}

// Resolve returns the executable path of kind on the target OS.
func (r *Resolver) Resolve(kind Kind) (string, error) {
	if path, ok := executables[r.goos][kind]; ok {
		return path, nil
	}
	return "", fmt.Errorf("%w: %s is not available on %s", ErrUnsupportedApplication, kind, r.goos)
}

// ResolveName resolves a serialized kind name to its executable. Any other
// name is returned unchanged and is only checked when it is spawned.
func (r *Resolver) ResolveName(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: application name cannot be empty", ErrUnsupportedApplication)
	}
	if kind, ok := ParseKind(name); ok {
		return r.Resolve(kind)
	}
	return name, nil
}

// DefaultKind returns the interpreter used when none is requested.
func (r *Resolver) DefaultKind() (Kind, error) {
	switch r.goos {
	case GOOSWindows:
		return Cmd, nil
	case GOOSLinux:
		return Bash, nil
	case GOOSDarwin:
		return Sh, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedOperatingSystem, r.goos)
	}
}

// Resolve resolves kind for the host operating system.
func Resolve(kind Kind) (string, error) {
	return NewResolver("").Resolve(kind)
}

// DefaultKind returns the default interpreter for the host operating system.
func DefaultKind() (Kind, error) {
	return NewResolver("").DefaultKind()
}
