/*
Package cli is the zimage command line.

The root command loads the configuration, initializes logging and builds the shared
dependencies once; each subcommand then drives one page controller or API group and prints
its result as a table, JSON or YAML. Logs go to stderr so stdout stays parseable.
*/
package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"zimage/internal/app/chat"
	"zimage/internal/configs"
	"zimage/internal/pkg/confirm"
	"zimage/internal/pkg/logx"
)

// Options replaces the process-level collaborators, mainly for tests. Zero values use the real ones.
type Options struct {
	Out        io.Writer
	Err        io.Writer
	LoadConfig func() (*configs.AppConfig, error)
	Confirmer  confirm.Confirmer
	Dialer     chat.Dialer
}

type app struct {
	opts Options

	output string
	yes    bool
	debug  bool

	deps    *AppDeps
	printer *Printer
}

// Execute runs the command line with the process arguments.
func Execute(ctx context.Context) error {
	return Run(ctx, Options{}, os.Args[1:])
}

// Run executes args against a fresh command tree and releases the shared dependencies afterwards.
func Run(ctx context.Context, opts Options, args []string) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.LoadConfig == nil {
		opts.LoadConfig = configs.LoadConfig
	}

	a := &app{opts: opts}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)

	err := root.ExecuteContext(ctx)
	if a.deps != nil {
		if cerr := a.deps.Close(); cerr != nil {
			logx.Error(cerr, "Failed to close the local store")
		}
	}
	return err
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "zimage",
		Short:         "Generate images, browse the gallery and chat from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.output, "output", "o", formatTable, "output format: table|json|yaml")
	flags.BoolVarP(&a.yes, "yes", "y", false, "answer yes to every confirmation")
	flags.BoolVar(&a.debug, "debug", false, "log at debug level")

	root.AddCommand(
		a.loginCmd(),
		a.loginURLCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.generateCmd(),
		a.jobsCmd(),
		a.galleryCmd(),
		a.socialCmd(),
		a.workersCmd(),
		a.adminCmd(),
		a.chatCmd(),
	)
	return root
}

func (a *app) setup(ctx context.Context) error {
	printer, err := newPrinter(a.output, a.opts.Out)
	if err != nil {
		return err
	}
	a.printer = printer

	cfg, err := a.opts.LoadConfig()
	if err != nil {
		return err
	}
	logx.InitGlobalLogger(cfg.IsDevelopment() || a.debug, a.opts.Err)
	logx.Debug("Configuration loaded", "api_base", cfg.APIBase, "data_dir", cfg.DataDir, "s3_export", cfg.S3Enabled())

	confirmer := a.opts.Confirmer
	switch {
	case a.yes:
		confirmer = confirm.Always(true)
	case confirmer == nil:
		confirmer = confirm.Terminal{}
	}

	deps, err := NewAppDeps(ctx, cfg, confirmer, loginHint(a.opts.Err))
	if err != nil {
		return err
	}
	if a.opts.Dialer != nil {
		deps.Dialer = a.opts.Dialer
	}
	a.deps = deps
	return nil
}
