package events

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/tokendash/internal/log"
	"github.com/Mohsinsiddi/tokendash/internal/token"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// LogSource is the part of an EVM client events need.
type LogSource interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
}

// Query builds the filter for Transfer and Approval logs of tokens in the
// inclusive block range [from, to].
func Query(tokens []token.Token, from, to uint64) ethereum.FilterQuery {
	addrs := make([]common.Address, 0, len(tokens))
	for _, t := range tokens {
		addrs = append(addrs, t.Address)
	}
	return ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: addrs,
		Topics:    Topics(),
	}
}

// History returns the decoded events of tokens in [from, to], in chain
// order. Logs that do not decode are skipped.
func History(ctx context.Context, src LogSource, tokens []token.Token, from, to uint64) ([]Event, error) {
	if len(tokens) == 0 || from > to {
		return nil, nil
	}
	byAddr := make(map[common.Address]token.Token, len(tokens))
	for _, t := range tokens {
		byAddr[t.Address] = t
	}

	logs, err := src.FilterLogs(ctx, Query(tokens, from, to))
	if err != nil {
		return nil, fmt.Errorf("fetching logs %d-%d: %w", from, to, err)
	}

	out := make([]Event, 0, len(logs))
	for _, lg := range logs {
		if lg.Removed {
			continue
		}
		tok, ok := byAddr[lg.Address]
		if !ok {
			continue
		}
		ev, err := Decode(tok, lg)
		if err != nil {
			log.Debug("skipping log", "tx", lg.TxHash.Hex(), "index", lg.Index, "err", err)
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

// Recent returns the events of the last span blocks up to the current head,
// querying at most maxBlockSpan blocks per request.
func Recent(ctx context.Context, src LogSource, tokens []token.Token, span uint64) ([]Event, error) {
	head, err := src.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting block number: %w", err)
	}
	var from uint64
	if head > span {
		from = head - span
	}

	var out []Event
	for start := from; ; start += maxBlockSpan {
		end := min(start+maxBlockSpan-1, head)
		evs, err := History(ctx, src, tokens, start, end)
		if err != nil {
			return nil, err
		}
		out = append(out, evs...)
		if end == head {
			return out, nil
		}
	}
}
