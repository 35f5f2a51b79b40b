// Package cli implements the clpir command line tool.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	_ "time/tzdata" // zone lookups must not depend on the host's zoneinfo

	"github.com/spf13/cobra"
)

// app holds state shared by all subcommands.
type app struct {
	verbose   bool
	logFormat string
	logger    *slog.Logger
}

// NewRoot constructs the root command and registers the encode, decode, search and
// metadata subcommands.
func NewRoot() *cobra.Command {
	a := &app{logger: slog.New(slog.DiscardHandler)}

	root := &cobra.Command{
		Use:   "clpir",
		Short: "Encode, decode and search CLP IR log streams",
		Long: `clpir converts plain log lines into compact IR streams and back, and searches
IR streams by time range and wildcard patterns without decoding them to text first.

Compressed streams (zstd, s2, lz4) are detected automatically when reading.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setupLogger(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "text", "Log format: text or json")

	root.AddCommand(newEncodeCommand(a))
	root.AddCommand(newDecodeCommand(a))
	root.AddCommand(newSearchCommand(a))
	root.AddCommand(newMetadataCommand(a))

	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	root := NewRoot()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		os.Exit(1)
	}
}

func (a *app) setupLogger(w io.Writer) error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	switch a.logFormat {
	case "text":
		a.logger = slog.New(slog.NewTextHandler(w, opts))
	case "json":
		a.logger = slog.New(slog.NewJSONHandler(w, opts))
	default:
		return fmt.Errorf("invalid log format %q, want text or json", a.logFormat)
	}

	return nil
}

// openInput opens path for reading; "-" reads standard input.
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}

	return f, nil
}

// createOutput opens path for writing; "-" writes to standard output.
func createOutput(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopWriteCloser{cmd.OutOrStdout()}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}

	return f, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
