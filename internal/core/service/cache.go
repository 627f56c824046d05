package service

import (
	"context"

	"github.com/kokoro-wiki/kokoro/internal/core/ports"
)

// noopCache is used when no view cache is configured.
type noopCache struct{}

func (noopCache) Generation(context.Context, string) (int64, error) { return 0, nil }

func (noopCache) Get(context.Context, string, int64) (*ports.ProfileView, bool, error) {
	return nil, false, nil
}

func (noopCache) Set(context.Context, string, int64, *ports.ProfileView) error { return nil }

func (noopCache) Invalidate(context.Context, ...string) error { return nil }
