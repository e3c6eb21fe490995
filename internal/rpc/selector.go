package rpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/tokendash/internal/chain"
	"github.com/Mohsinsiddi/tokendash/internal/log"
)

// SelectBest picks the best RPC URL from urls using algorithm.
//
// algorithm must be "fastest" or "failover"; empty defaults to "fastest".
// A single URL is returned without probing. When wantChainID is non-zero,
// endpoints serving another chain are skipped.
//
// Returns ErrNoHealthyRPC when the list is empty or all endpoints fail.
func SelectBest(ctx context.Context, urls []string, wantChainID int64, algorithm string) (string, error) {
	if len(urls) == 0 {
		return "", ErrNoHealthyRPC
	}
	if len(urls) == 1 {
		return urls[0], nil
	}
	algo, err := ParseAlgorithm(algorithm)
	if err != nil {
		return "", err
	}

	endpoints := ProbeAll(ctx, urls, wantChainID)
	winner, err := Pick(endpoints, algo)
	if err != nil {
		return "", fmt.Errorf("%w: %w", err, firstError(endpoints))
	}
	log.Debug("rpc selected", "url", winner.URL, "algorithm", algo, "latency", winner.Latency)
	return winner.URL, nil
}

// Connect selects the best endpoint and dials it.
func Connect(ctx context.Context, urls []string, wantChainID int64, algorithm string) (*chain.EVMClient, error) {
	url, err := SelectBest(ctx, urls, wantChainID, algorithm)
	if err != nil {
		return nil, err
	}
	return chain.Dial(ctx, url)
}

func firstError(endpoints []Endpoint) error {
	for _, e := range endpoints {
		if e.Err != nil {
			return e.Err
		}
	}
	return errors.New("no endpoints probed")
}
