package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const Version = "0.1.0"

// Exit codes per the archive/CLI contract: 0 success, 1 user/config
// error, 2 I/O or format error.
const (
	ExitOK         = 0
	ExitUserError  = 1
	ExitIOOrFormat = 2
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:     "logshrink",
	Short:   "LogShrink syslog collection and compact-archival engine",
	Long:    `logshrink ingests syslog messages, discovers repeating templates, and archives them in a columnar, delta-encoded, compressed format.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(logLevel)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log verbosity: debug, info, warn, error")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(benchCmd)
}

func setupLogging(level string) error {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info", "":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return errUserError("invalid --log-level %q (want debug, info, warn, error)", level)
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
	return nil
}

// cliError carries an explicit exit code so main can translate an
// error into the right process exit status without string sniffing.
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

func errUserError(format string, args ...any) error {
	return &cliError{code: ExitUserError, err: fmt.Errorf(format, args...)}
}

func errIOOrFormat(format string, args ...any) error {
	return &cliError{code: ExitIOOrFormat, err: fmt.Errorf(format, args...)}
}

// ExitCodeFor maps a command error back to the process exit code the
// CLI surface contract requires.
func ExitCodeFor(err error) int {
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	if err != nil {
		return ExitUserError
	}
	return ExitOK
}
