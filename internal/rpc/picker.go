package rpc

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoHealthyRPC is returned when no healthy RPC endpoint is available.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// ErrWrongChain marks an endpoint that answered with an unexpected chain ID.
var ErrWrongChain = errors.New("endpoint serves a different chain")

// Algorithm defines how an RPC endpoint is selected.
type Algorithm string

const (
	AlgorithmFastest  Algorithm = "fastest"
	AlgorithmFailover Algorithm = "failover"

	// Discard nodes more than this many blocks behind the best.
	staleBlockThreshold = 3
)

// ParseAlgorithm maps a config value to an Algorithm. Empty means fastest.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case "", AlgorithmFastest:
		return AlgorithmFastest, nil
	case AlgorithmFailover:
		return AlgorithmFailover, nil
	}
	return "", fmt.Errorf("unknown rpc algorithm %q (want fastest or failover)", s)
}

// Endpoint is one probed RPC URL.
type Endpoint struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	ChainID     int64
	Err         error
}

// Healthy reports whether the probe succeeded.
func (e Endpoint) Healthy() bool { return e.Err == nil }

// Pick selects an endpoint from probe results according to algo.
// Results must be in configured priority order.
func Pick(endpoints []Endpoint, algo Algorithm) (*Endpoint, error) {
	if algo == AlgorithmFailover {
		for i := range endpoints {
			if endpoints[i].Healthy() {
				return &endpoints[i], nil
			}
		}
		return nil, ErrNoHealthyRPC
	}
	return pickFastest(endpoints)
}

// pickFastest returns the lowest-latency healthy endpoint that is not stale.
// Ties keep the earlier (higher priority) endpoint.
func pickFastest(endpoints []Endpoint) (*Endpoint, error) {
	var bestBlock uint64
	for _, e := range endpoints {
		if e.Healthy() && e.BlockNumber > bestBlock {
			bestBlock = e.BlockNumber
		}
	}

	var winner *Endpoint
	for i := range endpoints {
		e := &endpoints[i]
		if !e.Healthy() || isStale(e.BlockNumber, bestBlock) {
			continue
		}
		if winner == nil || e.Latency < winner.Latency {
			winner = e
		}
	}
	if winner == nil {
		return nil, ErrNoHealthyRPC
	}
	return winner, nil
}

func isStale(block, best uint64) bool {
	return best > block && best-block > staleBlockThreshold
}
