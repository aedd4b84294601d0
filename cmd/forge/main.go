// cmd/forge/main.go
package main

import (
	"fmt"
	"os"

	"github.com/mstvb/forge/internal/config"
	forgeerr "github.com/mstvb/forge/internal/errors"
	"github.com/mstvb/forge/internal/logging"
	"github.com/mstvb/forge/internal/middleware"
	"github.com/mstvb/forge/internal/repo"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newRootCmd(logger *logging.Logger) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "forge",
		Short: "Forge is a minimal snapshot version control system",
		Long: `Forge tracks snapshots of a working directory in a content-addressed
object store. Stage files with add, freeze them with commit and move between
snapshots with back. Objects and commits can be copied to a shared directory
with push and pull.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// wrap applies the standard middleware to a command body.
	wrap := func(h middleware.RunE) func(*cobra.Command, []string) error {
		return middleware.Chain(h,
			middleware.InvocationID,
			middleware.Logger(logger),
			middleware.Recover(logger),
		)
	}

	c := &cli{logger: logger}
	rootCmd.AddCommand(
		c.initCmd(wrap),
		c.addCmd(wrap),
		c.rmCmd(wrap),
		c.commitCmd(wrap),
		c.statusCmd(wrap),
		c.diffCmd(wrap),
		c.showCmd(wrap),
		c.restoreCmd(wrap),
		c.backCmd(wrap),
		c.logCmd(wrap),
		c.pushCmd(wrap),
		c.pullCmd(wrap),
	)
	return rootCmd
}

type wrapFunc func(middleware.RunE) func(*cobra.Command, []string) error

// cli holds what every command body needs.
type cli struct {
	logger *logging.Logger
}

// openRepo opens the repository enclosing the working directory and applies
// its configured log level.
func (c *cli) openRepo(cmd *cobra.Command) (*repo.Repository, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}

	r, err := repo.Open(cwd, c.logger.WithInvocationID(cmd.Context()))
	if err != nil {
		return nil, err
	}
	if err := c.logger.SetLevel(r.Config.LogLevel); err != nil {
		c.logger.Warn("ignoring invalid log level in config")
	}
	return r, nil
}

// exitCode maps a command error to the process exit status. Outcomes the
// user is told about but that leave the repository consistent exit 0.
func exitCode(err error) int {
	switch forgeerr.KindOf(err) {
	case forgeerr.KindEmptyIndex, forgeerr.KindNoMatchFound, forgeerr.KindPathNotIndexed, forgeerr.KindObjectMissing:
		return 0
	}
	return 1
}

func main() {
	cfg := config.FromEnv()
	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		logger, err = logging.NewLogger("warn")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	defer logger.Sync()

	rootCmd := newRootCmd(logger)
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "[forge] %v\n", err)
		logger.Sync()
		os.Exit(exitCode(err))
	}
}
