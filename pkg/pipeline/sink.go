package pipeline

import (
	"context"

	"github.com/matzehuels/ghcensus/pkg/census"
)

// Sinks fans each call out to every member in order and stops at the first
// error.
type Sinks []Sink

func (s Sinks) WriteUsers(ctx context.Context, users []census.User) error {
	for _, sink := range s {
		if err := sink.WriteUsers(ctx, users); err != nil {
			return err
		}
	}
	return nil
}

func (s Sinks) WriteRepos(ctx context.Context, repos []census.Repo) error {
	for _, sink := range s {
		if err := sink.WriteRepos(ctx, repos); err != nil {
			return err
		}
	}
	return nil
}

func (s Sinks) Finish(ctx context.Context, result *Result) error {
	for _, sink := range s {
		if err := sink.Finish(ctx, result); err != nil {
			return err
		}
	}
	return nil
}
