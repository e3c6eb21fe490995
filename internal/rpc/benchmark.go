package rpc

import (
	"context"

	"github.com/Mohsinsiddi/tokendash/internal/log"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentProbes bounds parallel probes per selection.
const maxConcurrentProbes = 8

// ProbeAll probes every URL concurrently and returns results in input order.
func ProbeAll(ctx context.Context, urls []string, wantChainID int64) []Endpoint {
	results := make([]Endpoint, len(urls))

	var g errgroup.Group
	g.SetLimit(maxConcurrentProbes)
	for i, url := range urls {
		g.Go(func() error {
			results[i] = Probe(ctx, url, wantChainID)
			ep := results[i]
			log.Debug("rpc probe", "url", ep.URL, "latency", ep.Latency, "block", ep.BlockNumber, "err", ep.Err)
			return nil
		})
	}
	_ = g.Wait() // probes never fail the group; errors live on each Endpoint
	return results
}
