package cli

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/kokoro-wiki/kokoro/internal/client/apiclient"
	"github.com/kokoro-wiki/kokoro/internal/client/config"
	"github.com/kokoro-wiki/kokoro/internal/client/draft"
)

// session is the loaded config plus a client authenticated with its token.
type session struct {
	path   string
	cfg    *config.Config
	client *apiclient.Client
}

func openSession(opts *RootOptions) (*session, error) {
	path := opts.ConfigPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if opts.Server != "" {
		cfg.Server = opts.Server
	}

	return &session{
		path:   path,
		cfg:    cfg,
		client: apiclient.New(cfg.Server, apiclient.WithToken(cfg.Token)),
	}, nil
}

func (s *session) save() error {
	return config.Save(s.path, s.cfg)
}

// username returns the profile the signed-in principal owns.
func (s *session) username() (string, error) {
	if s.cfg.Token == "" {
		return "", errNotSignedIn
	}
	if s.cfg.Username == "" {
		return "", errors.New("no username yet; claim one with \"kokoro setup <username>\"")
	}
	return s.cfg.Username, nil
}

func draftStore(opts *RootOptions) (*draft.FileStore, error) {
	path := opts.DraftPath
	if path == "" {
		p, err := draft.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return draft.NewFileStore(path), nil
}

var errNotSignedIn = errors.New("not signed in; run \"kokoro login\" first")

// explain turns API failures into messages fit for a terminal.
func explain(err error) error {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status == http.StatusUnauthorized && apiErr.Redirect == "/auth" {
			return errNotSignedIn
		}
		if apiErr.Message != "" {
			return errors.New(apiErr.Message)
		}
		return fmt.Errorf("server answered %d", apiErr.Status)
	}
	var redirect *apiclient.RedirectError
	if errors.As(err, &redirect) {
		return fmt.Errorf("server redirected to %s", redirect.Location)
	}
	return err
}
