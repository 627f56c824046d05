package cli

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/kokoro-wiki/kokoro/internal/client/apiclient"
)

// NewSetupCommand creates the setup command.
func NewSetupCommand(rootOpts *RootOptions) *cobra.Command {
	var displayName string
	cmd := &cobra.Command{
		Use:   "setup <username>",
		Short: "Claim a username for the signed-in account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(rootOpts, cmd, args[0], displayName)
		},
	}
	cmd.Flags().StringVar(&displayName, "display-name", "", "name shown on the public page")
	return cmd
}

func runSetup(opts *RootOptions, cmd *cobra.Command, username, displayName string) error {
	s, err := openSession(opts)
	if err != nil {
		return err
	}
	if s.cfg.Token == "" {
		return errNotSignedIn
	}

	out := cmd.OutOrStdout()
	res, err := s.client.Setup(cmd.Context(), username, displayName)

	var redirect *apiclient.RedirectError
	if errors.As(err, &redirect) && redirect.Status == http.StatusSeeOther {
		me, err := s.client.Me(cmd.Context())
		if err != nil {
			return explain(err)
		}
		if me.Profile == nil {
			return fmt.Errorf("server redirected to %s", redirect.Location)
		}
		s.cfg.Username = me.Profile.Username
		if err := s.save(); err != nil {
			return err
		}
		fmt.Fprintf(out, "You already own %q.\n", me.Profile.DisplayUsername)
		return nil
	}
	if err != nil {
		return explain(err)
	}

	s.cfg.Username = res.Profile.Username
	if err := s.save(); err != nil {
		return err
	}
	opts.log.Debug().Str("username", res.Profile.Username).Msg("profile registered")
	fmt.Fprintf(out, "Claimed %q. Your page: %s%s\n", res.Profile.DisplayUsername, s.cfg.Server, res.Profile.Links.Public)
	return nil
}

// NewRenameCommand creates the rename command.
func NewRenameCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <new-username>",
		Short: "Change the username of your profile, keeping every entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRename(rootOpts, cmd, args[0])
		},
	}
}

func runRename(opts *RootOptions, cmd *cobra.Command, newUsername string) error {
	s, err := openSession(opts)
	if err != nil {
		return err
	}
	current, err := s.username()
	if err != nil {
		return err
	}

	res, err := s.client.Rename(cmd.Context(), current, newUsername)
	if err != nil {
		return explain(err)
	}

	s.cfg.Username = res.Profile.Username
	if err := s.save(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s. Your page: %s%s\n", current, res.Profile.DisplayUsername, s.cfg.Server, res.Profile.Links.Public)
	return nil
}
