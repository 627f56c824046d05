package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kokoro-wiki/kokoro/internal/client/availability"
	"github.com/kokoro-wiki/kokoro/internal/core/domain"
)

// NewCheckCommand creates the check command. Without an argument it reads
// candidate names line by line and reports only the latest one.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "check [username]",
		Short: "Check whether a username is available",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, cmd, args, debounce)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", availability.DefaultDebounce, "quiet period before a name is checked")
	return cmd
}

func runCheck(opts *RootOptions, cmd *cobra.Command, args []string, debounce time.Duration) error {
	s, err := openSession(opts)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	results := make(chan availability.Result, 16)
	checker := availability.NewChecker(s.client.Availability, func(r availability.Result) {
		results <- r
	}, availability.WithDebounce(debounce))
	defer checker.Close()

	if len(args) == 1 {
		checker.Submit(args[0])
		select {
		case r := <-results:
			return printAvailability(out, r)
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	lines := make(chan string)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()

	var last string
	answered := true
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				if answered {
					return nil
				}
				return drainUntil(ctx.Done(), results, out, last)
			}
			last = strings.TrimSpace(line)
			answered = last == ""
			checker.Submit(line)
		case r := <-results:
			if err := printAvailability(out, r); err != nil {
				return err
			}
			if r.Username == last {
				answered = true
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// drainUntil prints results until the one for name arrives.
func drainUntil(stop <-chan struct{}, results <-chan availability.Result, out io.Writer, name string) error {
	for {
		select {
		case r := <-results:
			if err := printAvailability(out, r); err != nil {
				return err
			}
			if r.Username == name {
				return nil
			}
		case <-stop:
			return nil
		}
	}
}

func printAvailability(w io.Writer, r availability.Result) error {
	if r.Err != nil {
		_, err := fmt.Fprintf(w, "%s: check failed: %v\n", r.Username, explain(r.Err))
		return err
	}
	var note string
	switch r.Status {
	case domain.AvailabilityAvailable:
		note = "available"
	case domain.AvailabilityTaken:
		note = "taken"
	case domain.AvailabilityInvalid:
		note = "invalid"
		var ve *domain.ValidationError
		if errors.As(domain.ValidateUsername(r.Username), &ve) {
			note = "invalid: " + ve.Message
		}
	default:
		note = string(r.Status)
	}
	_, err := fmt.Fprintf(w, "%s: %s\n", r.Username, note)
	return err
}
