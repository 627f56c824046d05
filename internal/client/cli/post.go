package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/kokoro-wiki/kokoro/internal/client/draft"
	"github.com/kokoro-wiki/kokoro/internal/core/domain"
)

type postOptions struct {
	message  string
	discard  bool
	interval time.Duration
}

// NewPostCommand creates the post command. Without --message the entry is
// read from stdin and mirrored to the draft file while it is being written.
func NewPostCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &postOptions{}
	cmd := &cobra.Command{
		Use:       "post [thought|people]",
		Short:     "Publish a new current thought or people entry",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(domain.StreamThought), string(domain.StreamPeople)},
		RunE: func(cmd *cobra.Command, args []string) error {
			stream := string(domain.StreamThought)
			if len(args) == 1 {
				stream = args[0]
			}
			return runPost(rootOpts, opts, cmd, stream)
		},
	}
	cmd.Flags().StringVarP(&opts.message, "message", "m", "", "entry text; skips the editor and the draft")
	cmd.Flags().BoolVar(&opts.discard, "discard-draft", false, "start from scratch instead of restoring the saved draft")
	cmd.Flags().DurationVar(&opts.interval, "autosave", draft.DefaultInterval, "draft save interval")
	return cmd
}

func runPost(rootOpts *RootOptions, opts *postOptions, cmd *cobra.Command, streamArg string) error {
	stream, err := domain.ParseStream(streamArg)
	if err != nil {
		return err
	}
	s, err := openSession(rootOpts)
	if err != nil {
		return err
	}
	username, err := s.username()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.message != "" {
		return publish(cmd, s, username, stream, opts.message)
	}

	store, err := draftStore(rootOpts)
	if err != nil {
		return err
	}

	buf := &editBuffer{}
	if opts.discard {
		if err := store.Clear(); err != nil {
			return err
		}
	} else if d := draft.LoadOnMount(store); d != nil {
		if d.Stream == stream {
			buf.add(d.Content)
			fmt.Fprintf(out, "Restored draft from %s:\n%s\n", d.SavedAt.Local().Format(time.Kitchen), d.Content)
		} else {
			fmt.Fprintf(out, "A %s draft is saved; it is replaced once you type.\n", d.Stream)
		}
	}

	saver := draft.NewAutosaver(store, opts.interval, rootOpts.log)
	if err := saver.Start(cmd.Context(), func() draft.Draft {
		return draft.Draft{Stream: stream, Content: buf.text()}
	}); err != nil {
		return err
	}

	fmt.Fprintf(out, "Writing %s for %s (press Enter on an empty line to publish)\n", stream, username)
	if err := readLines(bufio.NewReader(cmd.InOrStdin()), buf.add); err != nil {
		_ = saver.Stop(true)
		return err
	}

	content := buf.text()
	if strings.TrimSpace(content) == "" {
		_ = saver.Stop(false)
		return errors.New("nothing to post")
	}

	if err := publish(cmd, s, username, stream, content); err != nil {
		if ferr := saver.Stop(true); ferr != nil {
			rootOpts.log.Warn().Err(ferr).Msg("draft flush failed")
			return err
		}
		return fmt.Errorf("%w (draft kept)", err)
	}
	if err := saver.Stop(false); err != nil {
		return err
	}
	return saver.Clear()
}

func publish(cmd *cobra.Command, s *session, username string, stream domain.Stream, content string) error {
	entry, err := s.client.Post(cmd.Context(), username, stream, content)
	if err != nil {
		return explain(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Posted %s at %s. %s/%s\n", entry.Stream, entry.CreatedAt.Local().Format(time.Kitchen), s.cfg.Server, username)
	return nil
}

// editBuffer is read by the autosaver while stdin is being consumed.
type editBuffer struct {
	mu    sync.Mutex
	lines []string
}

func (b *editBuffer) add(line string) {
	b.mu.Lock()
	b.lines = append(b.lines, line)
	b.mu.Unlock()
}

func (b *editBuffer) text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Join(b.lines, "\n")
}
