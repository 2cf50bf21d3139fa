package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	execmocks "github.com/jmgilman/procrun/internal/exec/mocks"
	probemocks "github.com/jmgilman/procrun/internal/probe/mocks"
)

func TestRunWhich(t *testing.T) {
	known := map[string]string{"bash": "/bin/bash", "git": "/usr/bin/git"}

	checker := &probemocks.CheckerMock{
		AvailableFunc: func(name string) bool {
			_, ok := known[name]
			return ok
		},
	}
	executor := &execmocks.ExecutorMock{
		LookPathFunc: func(name string) (string, error) {
			if path, ok := known[name]; ok {
				return path, nil
			}
			return "", errors.New("not found")
		},
	}

	c := &cobra.Command{}
	c.SetContext(context.Background())

	t.Run("all available", func(t *testing.T) {
		require.NoError(t, runWhich(checker, executor, []string{"bash", "git"}, c))
	})

	t.Run("missing exits 1", func(t *testing.T) {
		err := runWhich(checker, executor, []string{"bash", "nonexistent_application_12345"}, c)

		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 1, exitErr.Code)
		assert.Len(t, checker.AvailableCalls(), 4)
	})
}
