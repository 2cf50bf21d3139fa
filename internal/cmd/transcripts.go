package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmgilman/procrun/internal/logging"
	"github.com/jmgilman/procrun/internal/slogger"
)

// errNoTranscriptDir is returned when output.transcript_dir is not set.
var errNoTranscriptDir = errors.New("output.transcript_dir is not set")

var transcriptsCmd = &cobra.Command{
	Use:   "transcripts [run-id]",
	Short: "List or show stored run transcripts",
	Long: `List or show transcripts of earlier runs.

When output.transcript_dir is set, every "procrun run" writes the lines it
captured to <transcript_dir>/<run-id>.log. With no argument, the stored run IDs
are listed. With a run ID, the end of that transcript is printed.`,
	Example: `  # List stored transcripts
  procrun transcripts

  # Show the last 100 lines of a transcript
  procrun transcripts 0b5c2f4e-3f1a-4c51-9b7e-2a9d41f6c0aa

  # Show the whole transcript
  procrun transcripts 0b5c2f4e-3f1a-4c51-9b7e-2a9d41f6c0aa --full`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTranscriptsCmd,
}

func runTranscriptsCmd(cmd *cobra.Command, args []string) error {
	lines, err := cmd.Flags().GetInt("lines")
	if err != nil {
		return fmt.Errorf("get lines flag: %w", err)
	}

	full, err := cmd.Flags().GetBool("full")
	if err != nil {
		return fmt.Errorf("get full flag: %w", err)
	}

	pathMgr, err := transcriptPaths(cmd.Context())
	if err != nil {
		return err
	}

	if len(args) == 0 {
		return listTranscripts(cmd.Context(), pathMgr)
	}

	runID := args[0]
	if !pathMgr.Exists(runID) {
		return fmt.Errorf("no transcript found for run %s", runID)
	}

	return outputTranscript(logging.NewReader(pathMgr), runID, lines, full)
}

func listTranscripts(ctx context.Context, pathMgr *logging.PathManager) error {
	ids, err := pathMgr.List()
	if err != nil {
		return err
	}

	if len(ids) == 0 {
		slogger.L(ctx).Info("no transcripts found", "dir", pathMgr.BaseDir())
		return nil
	}

	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

func outputTranscript(reader *logging.Reader, runID string, lines int, full bool) error {
	var out []string
	var err error

	if full {
		out, err = reader.ReadAll(runID)
	} else {
		out, err = reader.ReadLastN(runID, lines)
	}

	if err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}

	for _, line := range out {
		fmt.Println(line)
	}

	return nil
}

// transcriptPaths returns the PathManager for the configured transcript directory.
func transcriptPaths(ctx context.Context) (*logging.PathManager, error) {
	dir := currentConfig(ctx).Output.TranscriptDir
	if dir == "" {
		return nil, errNoTranscriptDir
	}
	return logging.NewPathManager(dir), nil
}

func init() {
	rootCmd.AddCommand(transcriptsCmd)

	transcriptsCmd.Flags().IntP("lines", "n", logging.DefaultTailLines, "number of lines to show")
	transcriptsCmd.Flags().Bool("full", false, "show the entire transcript")
}
