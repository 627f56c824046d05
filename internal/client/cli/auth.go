package cli

import (
	"bufio"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kokoro-wiki/kokoro/internal/core/domain"
)

// NewSignUpCommand creates the signup command.
func NewSignUpCommand(rootOpts *RootOptions) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSignUp(rootOpts, cmd, email)
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	return cmd
}

func runSignUp(opts *RootOptions, cmd *cobra.Command, email string) error {
	s, err := openSession(opts)
	if err != nil {
		return err
	}
	email, password, err := credentials(cmd, email)
	if err != nil {
		return err
	}

	if _, err := s.client.SignUp(cmd.Context(), email, password); err != nil {
		return explain(err)
	}
	opts.log.Debug().Str("email", email).Msg("account created")

	if err := signIn(cmd, s, email, password); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Account created. Claim a username with \"kokoro setup <username>\".")
	return nil
}

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(rootOpts, cmd, email)
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	return cmd
}

func runLogin(opts *RootOptions, cmd *cobra.Command, email string) error {
	s, err := openSession(opts)
	if err != nil {
		return err
	}
	if email == "" {
		email = s.cfg.Email
	}
	email, password, err := credentials(cmd, email)
	if err != nil {
		return err
	}
	if err := signIn(cmd, s, email, password); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if s.cfg.Username == "" {
		fmt.Fprintf(out, "Signed in as %s. Claim a username with \"kokoro setup <username>\".\n", email)
		return nil
	}
	fmt.Fprintf(out, "Signed in as %s (%s).\n", email, s.cfg.Username)
	return nil
}

// signIn stores the session token and the owned username, if any.
func signIn(cmd *cobra.Command, s *session, email, password string) error {
	sess, err := s.client.SignIn(cmd.Context(), email, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return errors.New("invalid email or password")
		}
		return explain(err)
	}

	s.cfg.Token = sess.Token
	s.cfg.Email = sess.Principal.Email
	s.cfg.Username = ""

	me, err := s.client.Me(cmd.Context())
	if err != nil {
		return explain(err)
	}
	if me.Profile != nil {
		s.cfg.Username = me.Profile.Username
	}
	return s.save()
}

func credentials(cmd *cobra.Command, email string) (string, string, error) {
	if email == "" {
		var err error
		email, err = GetSimpleText(bufio.NewReader(cmd.InOrStdin()), "Email", cmd.OutOrStdout())
		if err != nil {
			return "", "", err
		}
	}
	if email == "" {
		return "", "", errors.New("email is required")
	}
	password, err := GetPassword(cmd.OutOrStdout())
	if err != nil {
		return "", "", err
	}
	return email, password, nil
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session and forget the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(rootOpts, cmd)
		},
	}
}

func runLogout(opts *RootOptions, cmd *cobra.Command) error {
	s, err := openSession(opts)
	if err != nil {
		return err
	}
	if s.cfg.Token == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
		return nil
	}

	// an expired token is already as good as revoked
	if err := s.client.SignOut(cmd.Context()); err != nil && !errors.Is(err, domain.ErrUnauthenticated) {
		return explain(err)
	}
	s.cfg.Token = ""
	if err := s.save(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
	return nil
}
