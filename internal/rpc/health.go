package rpc

import (
	"context"
	"fmt"
	"time"

	"github.com/Mohsinsiddi/tokendash/internal/chain"
)

// probeTimeout bounds a single endpoint probe.
const probeTimeout = 5 * time.Second

// Probe pings url and reads its chain ID. wantChainID of 0 skips the
// chain check; any other value marks a mismatching endpoint unhealthy.
func Probe(ctx context.Context, url string, wantChainID int64) Endpoint {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	ep := Endpoint{URL: url}
	c, err := chain.Dial(ctx, url)
	if err != nil {
		ep.Err = err
		return ep
	}
	defer c.Close()

	ep.Latency, ep.BlockNumber, ep.Err = c.Ping(ctx)
	if ep.Err != nil {
		return ep
	}
	if wantChainID == 0 {
		return ep
	}
	ep.ChainID, ep.Err = c.ChainID64(ctx)
	if ep.Err == nil && ep.ChainID != wantChainID {
		ep.Err = fmt.Errorf("%w: got %d, want %d", ErrWrongChain, ep.ChainID, wantChainID)
	}
	return ep
}
