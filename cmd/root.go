package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/PolarWolf314/tarvault/internal/configs"
	kerrors "github.com/PolarWolf314/tarvault/internal/errors"
	"github.com/PolarWolf314/tarvault/internal/gpg"
	logger "github.com/PolarWolf314/tarvault/internal/logging"
	"github.com/PolarWolf314/tarvault/internal/ui"
	"github.com/PolarWolf314/tarvault/internal/utils"
	"github.com/PolarWolf314/tarvault/internal/workflows"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const longDescription = `tarvault keeps files and directories in an encrypted vault.

Each item is packed into a tar archive, optionally gzip-compressed, and
encrypted symmetrically with OpenPGP. The vault is a plain directory
(default ~/.tarvault) holding one <key>.tar.gpg or <key>.tar.gz.gpg file
per item, readable with gpg and tar alone.

Examples:
  tarvault -e ./notes                   store ./notes under the key "notes"
  tarvault -e ./notes -z -k diary       store compressed under the key "diary"
  tarvault -l                           list every stored key
  tarvault -d diary                     extract "diary" into the current directory

Environment:
  TARVAULT_DIR          vault directory
  TARVAULT_BACKEND      auto, gpg or native
  TARVAULT_CLEAR_CACHE  set to 0 to keep gpg-agent's passphrase cache
  TARVAULT_HISTORY      set to 0 to stop recording the operation history
  NO_COLOR              disable colored output`

// flagValues receives the parsed command line. It is read exactly once, into
// workflows.Options.
type flagValues struct {
	store          bool
	retrieve       bool
	enumerate      bool
	compress       bool
	removeOriginal bool
	key            string
	password       string
	verbose        bool
	debug          bool
}

// runner holds the state of one invocation.
type runner struct {
	stdout io.Writer
	stderr io.Writer
	log    logger.Logger
}

// NewRootCmd builds the tarvault command. Output goes to stdout and stderr
// rather than the process streams so tests can capture it.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var fv flagValues
	r := &runner{stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:           "tarvault [flags] [item]",
		Short:         "Store files and directories in an encrypted tar vault",
		Long:          longDescription,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			r.log = logger.Logger{Verbose: fv.verbose, Debug: fv.debug, Out: stderr}
			if fv.debug {
				cmd.Flags().VisitAll(func(f *pflag.Flag) {
					value := f.Value.String()
					if f.Name == "password" && f.Changed {
						value = "<redacted>"
					}
					r.log.Debugf("flag --%s=%q (set: %t)", f.Name, value, f.Changed)
				})
			}

			opts := workflows.Options{
				Store:          fv.store,
				Retrieve:       fv.retrieve,
				Enumerate:      fv.enumerate,
				Compress:       fv.compress,
				RemoveOriginal: fv.removeOriginal,
				Key:            fv.key,
				KeySet:         cmd.Flags().Changed("key"),
				Passphrase:     fv.password,
				PassphraseSet:  cmd.Flags().Changed("password"),
				Args:           args,
			}
			return r.run(cmd.Context(), opts)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", kerrors.ErrUsage, err)
	})

	flags := cmd.Flags()
	flags.SortFlags = false
	flags.BoolVarP(&fv.store, "encrypt", "e", false, "store the given file or directory in the vault")
	flags.BoolVarP(&fv.retrieve, "decrypt", "d", false, "extract the item with the given key into the current directory")
	flags.BoolVarP(&fv.enumerate, "list", "l", false, "list stored keys, optionally only the given one")
	flags.BoolVarP(&fv.compress, "compress", "z", false, "gzip the archive before encrypting (with -e)")
	flags.BoolVarP(&fv.removeOriginal, "remove", "r", false, "remove the original once it is stored (with -e)")
	flags.StringVarP(&fv.key, "key", "k", "", "store under this key instead of the base name (with -e)")
	flags.StringVarP(&fv.password, "password", "p", "", "passphrase to use instead of prompting")
	flags.BoolVarP(&fv.verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVar(&fv.debug, "debug", false, "enable debug output")

	return cmd
}

// Execute runs tarvault with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	fmt.Fprintln(stderr, ui.ErrorLine("%s", errorMessage(err)))
	for _, hint := range errorHints(err) {
		fmt.Fprintln(stderr, ui.HintLine("%s", hint))
	}
	if errors.Is(err, kerrors.ErrUsage) {
		fmt.Fprintln(stderr)
		fmt.Fprint(stderr, cmd.UsageString())
	}
	return 1
}

// run validates opts, loads settings and dispatches to the workflow for the
// requested mode.
func (r *runner) run(ctx context.Context, opts workflows.Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	r.log.Debugf("Mode: %s, args: %v", opts.Mode(), opts.Args)

	settings, err := configs.Load()
	if err != nil {
		return r.log.ErrorfAndReturn("loading settings: %w", err)
	}
	r.log.Debugf("Vault directory: %s, backend: %s, clear cache: %t", settings.VaultDir, settings.Backend, settings.ClearCache)

	if opts.Mode() == workflows.ModeEnumerate {
		rt := &workflows.Runtime{Settings: settings, Log: r.log}
		return r.enumerate(ctx, rt, opts)
	}

	rt, err := workflows.NewRuntime(settings, r.log, r.stderr)
	if err != nil {
		return err
	}

	pass := gpg.Interactive()
	if opts.PassphraseSet {
		if pass, err = gpg.NewPassphrase([]byte(opts.Passphrase)); err != nil {
			return err
		}
	}

	switch opts.Mode() {
	case workflows.ModeStore:
		return r.store(ctx, rt, opts, pass)
	case workflows.ModeRetrieve:
		return r.retrieve(ctx, rt, opts, pass)
	}
	return fmt.Errorf("%w: unhandled mode %s", kerrors.ErrUsage, opts.Mode())
}

// spinnerEnabled reports whether a spinner may draw on stderr. Prompts and
// log lines would be overdrawn by it.
func (r *runner) spinnerEnabled(pass *gpg.Passphrase) bool {
	return !r.log.Verbose && !r.log.Debug && !pass.IsInteractive() && utils.IsTerminalWriter(r.stderr)
}

func (r *runner) store(ctx context.Context, rt *workflows.Runtime, opts workflows.Options, pass *gpg.Passphrase) error {
	spinner, cleanup := r.startSpinner("Storing "+opts.Item()+"...", r.spinnerEnabled(pass))
	defer cleanup()

	result, err := workflows.Store(ctx, rt, workflows.StoreOptions{
		Source:         opts.Item(),
		Key:            opts.Key,
		KeySet:         opts.KeySet,
		Compress:       opts.Compress,
		RemoveOriginal: opts.RemoveOriginal,
		Passphrase:     pass,
	})
	if err != nil {
		return err
	}

	msg := ui.SuccessLine("Stored %s as %s", ui.Key.Sprint(result.Key), ui.Path.Sprint(result.Path))
	if result.Removed {
		msg += "\n" + ui.HintLine("Removed the original %s", ui.Path.Sprint(opts.Item()))
	}
	spinner.FinalMSG = msg
	return nil
}

func (r *runner) retrieve(ctx context.Context, rt *workflows.Runtime, opts workflows.Options, pass *gpg.Passphrase) error {
	spinner, cleanup := r.startSpinner("Retrieving "+opts.Item()+"...", r.spinnerEnabled(pass))
	defer cleanup()

	result, err := workflows.Retrieve(ctx, rt, workflows.RetrieveOptions{
		Key:        opts.Item(),
		Passphrase: pass,
	})
	if err != nil {
		return err
	}

	spinner.FinalMSG = ui.SuccessLine("Retrieved %s into %s", ui.Key.Sprint(result.Key), ui.Path.Sprint(result.DestDir))
	return nil
}

// enumerate prints matching keys to stdout, one per line, and nothing else.
func (r *runner) enumerate(ctx context.Context, rt *workflows.Runtime, opts workflows.Options) error {
	result, err := workflows.List(ctx, rt, workflows.ListOptions{Filter: opts.Item()})
	if err != nil {
		return err
	}
	if len(result.Entries) == 0 {
		r.log.Infof("No items in %s", rt.Settings.VaultDir)
	}
	for _, key := range result.Keys() {
		fmt.Fprintln(r.stdout, key)
	}
	return nil
}
