package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kokoro-wiki/kokoro/internal/client/apiclient"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	var tz string
	cmd := &cobra.Command{
		Use:   "show [username]",
		Short: "Print a public profile, grouped by day",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, cmd, args, tz)
		},
	}
	cmd.Flags().StringVar(&tz, "tz", "", "IANA time zone for day grouping (default from config, then UTC)")
	return cmd
}

func runShow(opts *RootOptions, cmd *cobra.Command, args []string, tz string) error {
	s, err := openSession(opts)
	if err != nil {
		return err
	}

	username := s.cfg.Username
	if len(args) == 1 {
		username = args[0]
	}
	if username == "" {
		return fmt.Errorf("which profile? pass a username")
	}
	if tz == "" {
		tz = s.cfg.Timezone
	}

	view, err := s.client.Profile(cmd.Context(), username, tz)
	if err != nil {
		return explain(err)
	}
	return printProfile(cmd.OutOrStdout(), s.cfg.Server, view)
}

func printProfile(w io.Writer, server string, view *apiclient.PublicProfile) error {
	loc, err := time.LoadLocation(view.Timezone)
	if err != nil {
		loc = time.UTC
	}

	var b strings.Builder
	name := view.Profile.DisplayUsername
	if name == "" {
		name = view.Profile.Username
	}
	if view.Profile.DisplayName != "" {
		fmt.Fprintf(&b, "%s (%s)\n", view.Profile.DisplayName, name)
	} else {
		fmt.Fprintf(&b, "%s\n", name)
	}
	fmt.Fprintf(&b, "%s%s\n", server, view.Profile.Links.Public)

	writeStream(&b, "Thoughts", view.Thoughts, view.ThoughtDays, loc)
	writeStream(&b, "People", view.People, view.PeopleDays, loc)

	_, err = io.WriteString(w, b.String())
	return err
}

func writeStream(b *strings.Builder, title string, stream apiclient.Stream, days []apiclient.DayGroup, loc *time.Location) {
	fmt.Fprintf(b, "\n%s\n", title)
	if stream.Current == nil {
		b.WriteString("  Nothing has been posted yet.\n")
		return
	}
	writeEntry(b, "  ", *stream.Current, loc)

	for _, day := range days {
		var past []apiclient.Entry
		for _, e := range day.Entries {
			if e.ID != stream.Current.ID {
				past = append(past, e)
			}
		}
		if len(past) == 0 {
			continue
		}
		fmt.Fprintf(b, "  -- %s\n", day.Label)
		for _, e := range past {
			writeEntry(b, "    ", e, loc)
		}
	}
}

func writeEntry(b *strings.Builder, indent string, e apiclient.Entry, loc *time.Location) {
	lines := strings.Split(e.Content, "\n")
	fmt.Fprintf(b, "%s%s  %s\n", indent, e.CreatedAt.In(loc).Format("15:04"), lines[0])
	for _, line := range lines[1:] {
		fmt.Fprintf(b, "%s       %s\n", indent, line)
	}
}
