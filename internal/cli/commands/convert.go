package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/leapstack-labs/dialectshift/internal/driver"
	"github.com/leapstack-labs/dialectshift/pkg/rewrite"
	"github.com/spf13/cobra"
)

// ConvertOptions holds options for the convert command.
type ConvertOptions struct {
	Watch   bool // Re-run when a target file changes
	NoCheck bool // Skip the syntax check of converted files
}

// NewConvertCommand creates the convert command.
func NewConvertCommand() *cobra.Command {
	opts := &ConvertOptions{}
	cmd := &cobra.Command{
		Use:   "convert [files...]",
		Short: "Rewrite route handlers from pg queries to sqlite helpers",
		Long: `Rewrite route handler files that call pool.query with the PostgreSQL
dialect so they call the get/run/all SQLite helpers instead.

Files are relative to the routes directory and may be glob patterns
("*.js", "v2/**.js"). With no arguments the configured file list is used.

Each file is converted independently. A missing file or a file that fails
to convert is reported and does not stop the others. Lossy rewrites
(RETURNING folds, ILIKE, removed transactions) are reported as warnings.`,
		Example: `  # Convert the configured route files
  dialectshift convert

  # Preview the changes as a diff without writing
  dialectshift convert --dry-run

  # Convert specific files in another directory
  dialectshift convert --routes-dir api/routes users.js "v2/*.js"

  # Keep ILIKE untouched and re-run on every save
  dialectshift convert --disable DS07 --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args, opts)
		},
	}

	cmd.Flags().String("routes-dir", "", "Directory the target files are relative to")
	cmd.Flags().Bool("dry-run", false, "Print a diff instead of writing files")
	cmd.Flags().Int("workers", 0, "Files converted in parallel (default: number of CPUs)")
	cmd.Flags().StringSlice("disable", nil, "Rule IDs to skip (e.g. DS07)")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-run when a target file changes")
	cmd.Flags().BoolVar(&opts.NoCheck, "no-check", false, "Write converted files even if they no longer parse")

	_ = cmd.RegisterFlagCompletionFunc("disable", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		var ids []string
		for _, rule := range rewrite.All() {
			ids = append(ids, rule.ID+"\t"+rule.Name)
		}
		return ids, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runConvert(cmd *cobra.Command, args []string, opts *ConvertOptions) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	files := cfg.Files
	if len(args) > 0 {
		files = args
	}
	if len(files) == 0 {
		return fmt.Errorf("no files to convert")
	}

	info, err := os.Stat(cfg.RoutesDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("routes directory does not exist: %s\nHint: use --routes-dir or set routes_dir in dialectshift.yaml", cfg.RoutesDir)
	}

	pipeline, err := rewrite.NewPipeline(cfg.RewriteOptions())
	if err != nil {
		return err
	}

	d := driver.New(pipeline, cmdCtx.Logger)
	d.Workers = cfg.Workers
	d.DryRun = cfg.DryRun
	if opts.NoCheck {
		d.Checker = nil
	}

	if opts.Watch {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		r.Println(r.Styles().Muted.Render(fmt.Sprintf("watching %s (Ctrl+C to stop)", cfg.RoutesDir)))
		return d.Watch(ctx, cfg.RoutesDir, files, func(rep *driver.Report) {
			if err := r.ConvertReport(rep, cfg.Verbose); err != nil {
				cmdCtx.Logger.Error("failed to render report", "error", err)
			}
		})
	}

	rep, err := d.Run(cmd.Context(), cfg.RoutesDir, files)
	if err != nil {
		return err
	}
	return r.ConvertReport(rep, cfg.Verbose)
}
