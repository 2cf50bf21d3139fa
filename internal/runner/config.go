package runner

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance.
var validate = validator.New()

// Config describes how a Runner starts its application.
type Config struct {
	// Application is the executable name or path.
	Application string `validate:"required"`

	// WorkingDir is the directory the process starts in. Empty means the
	// current directory.
	WorkingDir string `validate:"omitempty,dir"`

	// RedirectStdout captures stdout into the runner's buffer.
	RedirectStdout bool

	// RedirectStderr captures stderr into the runner's buffer.
	RedirectStderr bool
}

// DefaultConfig returns a Config for application with both streams captured.
func DefaultConfig(application string) Config {
	return Config{
		Application:    application,
		RedirectStdout: true,
		RedirectStderr: true,
	}
}

// Validate checks the configuration. A missing working directory is
// reported as ErrDirectoryNotFound.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Field() == "WorkingDir" && fe.Tag() == "dir" {
				return fmt.Errorf("%w: %s", ErrDirectoryNotFound, c.WorkingDir)
			}
		}
	}

	return fmt.Errorf("config validation failed: %w", err)
}
