package voevent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunAll runs independent clients concurrently, for example one per broker.
// It returns when every client has stopped. The first failure to start (a
// client that was already stopped or running) stops the others and is
// returned; a canceled ctx stops all clients and returns ctx.Err().
func RunAll(ctx context.Context, clients ...*Client) error {
	group, child := errgroup.WithContext(ctx)
	for _, c := range clients {
		c := c
		group.Go(func() error {
			return c.Run(child)
		})
	}
	return group.Wait()
}
