// Package cli implements the kokoro command line client.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kokoro-wiki/kokoro/pkg/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Server     string
	ConfigPath string
	DraftPath  string
	Verbose    bool

	log zerolog.Logger
}

// NewRootCommand creates the root command for the kokoro CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{log: zerolog.Nop()}

	cmd := &cobra.Command{
		Use:           "kokoro",
		Short:         "kokoro - thoughts and contacts",
		Long:          "Post your current thought and the people on your mind to a public kokoro profile.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if opts.Verbose {
				level = "debug"
			}
			opts.log = logger.New(logger.Options{
				Level:    level,
				Pretty:   true,
				Output:   cmd.ErrOrStderr(),
				NoCaller: true,
			})
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Server, "server", "", "kokoro server URL (overrides the config file)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default $KOKORO_CONFIG or <config dir>/kokoro/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.DraftPath, "draft-file", "", "draft file (default <config dir>/kokoro/drafts.json)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewSignUpCommand(opts))
	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewLogoutCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewSetupCommand(opts))
	cmd.AddCommand(NewPostCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewRenameCommand(opts))

	return cmd
}
