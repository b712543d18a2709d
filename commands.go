package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/williamokano/r2_uploader/pkg/capture"
	"github.com/williamokano/r2_uploader/pkg/editor"
	"github.com/williamokano/r2_uploader/pkg/logger"
	"github.com/williamokano/r2_uploader/pkg/pathtemplate"
	"github.com/williamokano/r2_uploader/pkg/settings"
	"github.com/williamokano/r2_uploader/pkg/storage"
	"github.com/williamokano/r2_uploader/pkg/uploader"
)

// errBatchFailed means the upload failed and the user was already told
var errBatchFailed = errors.New("upload batch failed")

type rootFlags struct {
	settingsFile string
	logLevel     string
	logFormat    string
	vault        string
	doc          string
	from         int
	to           int
}

// target is where links go and which note feeds the md* variables
type target interface {
	uploader.Editor
	uploader.Workspace
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "r2_uploader",
		Short:         "Upload files to an S3-compatible bucket and insert markdown links",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.InitWithWriter(flags.logLevel, flags.logFormat, cmd.ErrOrStderr())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.settingsFile, "settings", "data.json", "settings file")
	pf.StringVar(&flags.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	pf.StringVar(&flags.logFormat, "log-format", "console", "log format: json, console")

	root.AddCommand(
		newDropCmd(flags),
		newPasteCmd(flags),
		newConfigCmd(flags),
	)

	return root
}

func addTargetFlags(cmd *cobra.Command, flags *rootFlags) {
	cmd.Flags().StringVar(&flags.vault, "vault", ".", "vault root the document lives in")
	cmd.Flags().StringVar(&flags.doc, "doc", "", "markdown document to insert links into (stdout when empty)")
	cmd.Flags().IntVar(&flags.from, "from", editor.EndOfDocument, "selection start as a byte offset (-1 = end of document)")
	cmd.Flags().IntVar(&flags.to, "to", editor.EndOfDocument, "selection end as a byte offset (defaults to --from)")
}

func openTarget(cmd *cobra.Command, flags *rootFlags) (target, error) {
	if flags.doc == "" {
		return editor.NewWriter(cmd.OutOrStdout()), nil
	}

	doc, err := editor.Open(flags.vault, flags.doc)
	if err != nil {
		return nil, err
	}

	to := flags.to
	if !cmd.Flags().Changed("to") {
		to = flags.from
	}
	if err := doc.Select(flags.from, to); err != nil {
		return nil, err
	}

	return doc, nil
}

// batchFailed adds a hint for settings problems; the notice itself has
// already been printed by the uploader.
func batchFailed(cmd *cobra.Command, err error) error {
	if storage.IsConfigError(err) {
		fmt.Fprintf(cmd.ErrOrStderr(), "hint: run `%s config set <field> <value>` (see `%s config fields`)\n",
			cmd.Root().Name(), cmd.Root().Name())
	}
	return errBatchFailed
}

func newUploader(cmd *cobra.Command, flags *rootFlags) (*uploader.Uploader, error) {
	log := logger.Get().With().Str("command", cmd.Name()).Logger()

	store, err := settings.Load(flags.settingsFile, log)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("settings_file", store.Path()).
		Uint64("settings_version", store.Version()).
		Msg("settings loaded")

	stderr := cmd.ErrOrStderr()
	return uploader.New(store,
		uploader.WithLogger(log),
		uploader.WithNotifier(uploader.NotifierFunc(func(msg string) {
			fmt.Fprintln(stderr, msg)
		})),
	), nil
}

func newDropCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drop <file>...",
		Short: "Upload files from disk, as if they were dropped onto the editor",
		RunE: func(cmd *cobra.Command, args []string) error {
			event, err := capture.FromPaths(args)
			if err != nil {
				return err
			}

			tgt, err := openTarget(cmd, flags)
			if err != nil {
				return err
			}

			u, err := newUploader(cmd, flags)
			if err != nil {
				return err
			}

			handled, err := u.HandleDrop(cmd.Context(), event, tgt, tgt)
			if err != nil {
				return batchFailed(cmd, err)
			}
			if !handled {
				logger.Get().Debug().Msg("drop carried no files")
			}
			return nil
		},
	}
	addTargetFlags(cmd, flags)
	return cmd
}

func newPasteCmd(flags *rootFlags) *cobra.Command {
	var name, mimeType string

	cmd := &cobra.Command{
		Use:   "paste",
		Short: "Upload content read from stdin, as if it was pasted into the editor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			event, err := capture.FromReader(name, mimeType, cmd.InOrStdin())
			if err != nil {
				return err
			}

			tgt, err := openTarget(cmd, flags)
			if err != nil {
				return err
			}

			u, err := newUploader(cmd, flags)
			if err != nil {
				return err
			}

			handled, err := u.HandlePaste(cmd.Context(), event, tgt, tgt)
			if err != nil {
				return batchFailed(cmd, err)
			}
			if !handled {
				logger.Get().Debug().Msg("clipboard carried no files")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "file name of the pasted content (default: pasted.<ext>)")
	cmd.Flags().StringVar(&mimeType, "type", "", "MIME type of the pasted content (sniffed when empty)")
	addTargetFlags(cmd, flags)
	return cmd
}

func newConfigCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or edit the uploader settings",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the current settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := settings.Load(flags.settingsFile, *logger.Get())
				if err != nil {
					return err
				}
				return printSettings(cmd.OutOrStdout(), store.Get())
			},
		},
		&cobra.Command{
			Use:   "set <field> <value>",
			Short: "Change one setting and save it immediately",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				field, err := settings.ParseField(args[0])
				if err != nil {
					return err
				}

				store, err := settings.Load(flags.settingsFile, *logger.Get())
				if err != nil {
					return err
				}
				if err := store.Set(field, args[1]); err != nil {
					return err
				}

				if field == settings.FieldPath {
					if _, unknown := pathtemplate.Placeholders(store.Get().Path); len(unknown) > 0 {
						fmt.Fprintf(cmd.ErrOrStderr(), "warning: unknown variables render as empty: %s\n", strings.Join(unknown, ", "))
					}
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "fields",
			Short: "List the available settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, info := range settings.Fields {
					fmt.Fprintf(w, "%s\t%s\t%s\n", info.Field, info.Name, info.Description)
				}
				return w.Flush()
			},
		},
	)

	return cmd
}

func printSettings(out io.Writer, s settings.Settings) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, info := range settings.Fields {
		value := s.Get(info.Field)
		switch {
		case value == "" && info.Placeholder != "":
			value = "(unset, e.g. " + info.Placeholder + ")"
		case info.Secret:
			value = settings.Mask(value)
		}
		fmt.Fprintf(w, "%s\t%s\n", info.Name, value)
	}
	return w.Flush()
}
