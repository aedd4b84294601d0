// cmd/forge/commands.go
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mstvb/forge/internal/config"
	"github.com/mstvb/forge/internal/repo"
	"github.com/mstvb/forge/internal/watch"

	"github.com/spf13/cobra"
)

func (c *cli) initCmd(wrap wrapFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create an empty repository in the current directory",
		Args:  cobra.NoArgs,
		RunE: wrap(func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting current directory: %w", err)
			}

			created, err := repo.Initialize(dir)
			if err != nil {
				return fmt.Errorf("initializing repository: %w", err)
			}

			out := cmd.OutOrStdout()
			if !created {
				failure.Fprintf(out, "Repository already exists in %s\n", filepath.Join(dir, config.RepoDir))
				return nil
			}
			success.Fprintf(out, "Initialized empty forge repository in %s\n", filepath.Join(dir, config.RepoDir))
			return nil
		}),
	}
}

func (c *cli) addCmd(wrap wrapFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [paths...]",
		Short: "Stage files for the next commit",
		Long: `Stores the content of each file and records it in the index.
Directories are only descended into with --all; without paths --all stages
the whole working tree.`,
		Example: `  forge add notes.txt
  forge add --all src
  forge add --all`,
		RunE: wrap(func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")
			if len(args) == 0 && !all {
				return errors.New("specify files to add, or use --all")
			}

			r, err := c.openRepo(cmd)
			if err != nil {
				return err
			}

			report, err := r.Add(args, all)
			if report != nil {
				out := cmd.OutOrStdout()
				for _, p := range report.Processed {
					fmt.Fprintf(out, "\t%s %s\n", green("+"), p)
				}
				for _, p := range report.Skipped {
					fmt.Fprintf(out, "\t%s %s (skipped, use --all for directories)\n", yellow("~"), p)
				}
				printFailures(out, report)
				fmt.Fprintf(out, "Staged %d file(s)\n", len(report.Processed))
			}
			return err
		}),
	}
	cmd.Flags().BoolP("all", "A", false, "Descend into directories; with no paths, add everything")
	return cmd
}

func (c *cli) rmCmd(wrap wrapFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm [paths...]",
		Short: "Remove files from the index and the working tree",
		RunE: wrap(func(cmd *cobra.Command, args []string) error {
			cached, _ := cmd.Flags().GetBool("cached")
			all, _ := cmd.Flags().GetBool("all")
			if len(args) == 0 && !all {
				return errors.New("specify files to remove, or use --all")
			}

			r, err := c.openRepo(cmd)
			if err != nil {
				return err
			}

			report, err := r.Remove(args, cached, all)
			if report != nil {
				out := cmd.OutOrStdout()
				for _, p := range report.Processed {
					fmt.Fprintf(out, "\t%s %s\n", red("-"), p)
				}
				printFailures(out, report)
				fmt.Fprintf(out, "Removed %d file(s) from the index\n", len(report.Processed))
			}
			return err
		}),
	}
	cmd.Flags().Bool("cached", false, "Only remove from the index, keep the working files")
	cmd.Flags().BoolP("all", "A", false, "Remove every indexed path")
	return cmd
}

func (c *cli) commitCmd(wrap wrapFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "commit <message>",
		Short: "Record the index as a new snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: wrap(func(cmd *cobra.Command, args []string) error {
			r, err := c.openRepo(cmd)
			if err != nil {
				return err
			}

			entry, err := r.Commit(args[0])
			if err != nil {
				return err
			}

			success.Fprintf(cmd.OutOrStdout(), "[%s] %s (%d file(s))\n",
				shortDigest(entry.Digest), entry.Commit.Message, len(entry.Commit.Files))
			return nil
		}),
	}
}

func (c *cli) statusCmd(wrap wrapFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show how the working tree differs from the index",
		Args:  cobra.NoArgs,
		RunE: wrap(func(cmd *cobra.Command, args []string) error {
			watching, _ := cmd.Flags().GetBool("watch")

			r, err := c.openRepo(cmd)
			if err != nil {
				return err
			}

			show := func() error {
				st, err := r.Status()
				if err != nil {
					return fmt.Errorf("getting status: %w", err)
				}
				printStatus(cmd.OutOrStdout(), st)
				return nil
			}

			if err := show(); err != nil || !watching {
				return err
			}

			w, err := watch.New(r.Root, r.Logger)
			if err != nil {
				return err
			}
			defer w.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintln(cmd.OutOrStdout(), "Watching for changes (Ctrl+C to stop)")
			err = w.Run(ctx, func() {
				fmt.Fprintln(cmd.OutOrStdout())
				if err := show(); err != nil {
					c.logger.Warn(err.Error())
				}
			})
			if errors.Is(err, ctx.Err()) {
				return nil
			}
			return err
		}),
	}
	cmd.Flags().BoolP("watch", "w", false, "Keep running and reprint status on every change")
	return cmd
}

func (c *cli) diffCmd(wrap wrapFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff [paths...]",
		Short: "Show changes between the index and the working tree",
		RunE: wrap(func(cmd *cobra.Command, args []string) error {
			details, _ := cmd.Flags().GetBool("details")

			r, err := c.openRepo(cmd)
			if err != nil {
				return err
			}

			diffs, report, err := r.Diff(args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if details {
				printDetails(out, diffs)
			} else {
				printSummary(out, diffs)
			}
			printFailures(out, report)
			return nil
		}),
	}
	cmd.Flags().BoolP("details", "d", false, "Show full hunks instead of a summary")
	return cmd
}

func (c *cli) showCmd(wrap wrapFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a stored object or the indexed content of a path",
		Example: `  forge show --object 3a7bd3e2360a3d29eea436fcfb7e44c735d117c42d1c1835420b6b9942dd4f1b
  forge show --path notes.txt`,
		Args: cobra.NoArgs,
		RunE: wrap(func(cmd *cobra.Command, args []string) error {
			object, _ := cmd.Flags().GetString("object")
			path, _ := cmd.Flags().GetString("path")

			r, err := c.openRepo(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if object != "" {
				data, err := r.ShowObject(object)
				if err != nil {
					return err
				}
				printContent(out, data)
				return nil
			}

			data, digest, err := r.ShowPath(path)
			if err != nil {
				return err
			}
			printObjectHeader(out, path, digest, r)
			printContent(out, data)
			return nil
		}),
	}
	cmd.Flags().String("object", "", "Digest of the object to print")
	cmd.Flags().String("path", "", "Indexed path whose content to print")
	cmd.MarkFlagsMutuallyExclusive("object", "path")
	cmd.MarkFlagsOneRequired("object", "path")
	return cmd
}

func (c *cli) restoreCmd(wrap wrapFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore [paths...]",
		Short: "Overwrite working files with their indexed content",
		Long: `Rewrites each path from the object store. With --all, or with no
paths, every indexed file is restored. The index is not changed.`,
		RunE: wrap(func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")

			r, err := c.openRepo(cmd)
			if err != nil {
				return err
			}

			report, err := r.Restore(args, all)
			if report != nil {
				out := cmd.OutOrStdout()
				for _, p := range report.Processed {
					fmt.Fprintf(out, "\t%s %s\n", green("✓"), p)
				}
				printFailures(out, report)
				fmt.Fprintf(out, "Restored %d file(s)\n", len(report.Processed))
			}
			return err
		}),
	}
	cmd.Flags().BoolP("all", "A", false, "Restore every indexed file")
	return cmd
}

func (c *cli) backCmd(wrap wrapFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "back <message-substring>",
		Short: "Return to the latest snapshot whose message matches",
		Long: `Searches every stored commit for a message containing the given text,
case-insensitively, and checks out the most recent match. Its files are
written to the working tree, the index is replaced and HEAD moves to it.
Files the snapshot does not contain are left alone.`,
		Args: cobra.ExactArgs(1),
		RunE: wrap(func(cmd *cobra.Command, args []string) error {
			r, err := c.openRepo(cmd)
			if err != nil {
				return err
			}

			entry, report, err := r.Back(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printFailures(out, report)
			success.Fprintf(out, "Back at [%s] %s (%s), %d file(s) restored\n",
				shortDigest(entry.Digest), entry.Commit.Message, when(entry.When), len(report.Processed))
			return nil
		}),
	}
}

func (c *cli) logCmd(wrap wrapFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "log",
		Short: "List snapshots from HEAD back to the first commit",
		Args:  cobra.NoArgs,
		RunE: wrap(func(cmd *cobra.Command, args []string) error {
			r, err := c.openRepo(cmd)
			if err != nil {
				return err
			}

			history, err := r.Log()
			if err != nil {
				return err
			}
			printLog(cmd.OutOrStdout(), history)
			return nil
		}),
	}
}

func (c *cli) pushCmd(wrap wrapFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "push <remote-dir>",
		Short: "Replace the objects and commits of a remote directory",
		Args:  cobra.ExactArgs(1),
		RunE: wrap(func(cmd *cobra.Command, args []string) error {
			r, err := c.openRepo(cmd)
			if err != nil {
				return err
			}

			result, err := r.Push(args[0])
			if err != nil {
				return err
			}
			printSync(cmd.OutOrStdout(), "Pushed", result)
			return nil
		}),
	}
}

func (c *cli) pullCmd(wrap wrapFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "pull <remote-dir>",
		Short: "Copy objects and commits missing locally from a remote directory",
		Args:  cobra.ExactArgs(1),
		RunE: wrap(func(cmd *cobra.Command, args []string) error {
			r, err := c.openRepo(cmd)
			if err != nil {
				return err
			}

			result, err := r.Pull(args[0])
			if err != nil {
				return err
			}
			printSync(cmd.OutOrStdout(), "Pulled", result)
			return nil
		}),
	}
}
