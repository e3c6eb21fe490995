// Package events decodes ERC-20 Transfer and Approval logs and follows them
// as new blocks arrive.
package events

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/tokendash/internal/contract"
	"github.com/Mohsinsiddi/tokendash/internal/token"
	"github.com/Mohsinsiddi/tokendash/internal/validate"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Errors returned by Decode.
var (
	ErrUnknownEvent = errors.New("not a Transfer or Approval log")
	ErrMalformedLog = errors.New("malformed log")
)

// Kind is the event name.
type Kind string

const (
	KindTransfer Kind = "Transfer"
	KindApproval Kind = "Approval"
)

var (
	transferEvent = contract.ERC20.Events[string(KindTransfer)]
	approvalEvent = contract.ERC20.Events[string(KindApproval)]
)

// Event is one decoded token log. For approvals From is the owner and To
// the spender.
type Event struct {
	Kind        Kind
	Token       token.Token
	From        common.Address
	To          common.Address
	Value       *big.Int
	TxHash      common.Hash
	BlockNumber uint64
	LogIndex    uint
}

// Amount renders Value in whole token units.
func (e Event) Amount() string {
	return validate.FormatUnits(e.Value, e.Token.Decimals)
}

// Key identifies the log that produced the event.
func (e Event) Key() string {
	return fmt.Sprintf("%s:%d", e.TxHash.Hex(), e.LogIndex)
}

// Topics is the topic-0 filter matching both event kinds.
func Topics() [][]common.Hash {
	return [][]common.Hash{{transferEvent.ID, approvalEvent.ID}}
}

// Decode turns a raw log emitted by tok into an Event.
func Decode(tok token.Token, lg types.Log) (Event, error) {
	if len(lg.Topics) == 0 {
		return Event{}, ErrUnknownEvent
	}
	var ev abi.Event
	switch lg.Topics[0] {
	case transferEvent.ID:
		ev = transferEvent
	case approvalEvent.ID:
		ev = approvalEvent
	default:
		return Event{}, ErrUnknownEvent
	}
	if len(lg.Topics) != 3 {
		return Event{}, fmt.Errorf("%w: %s with %d topics", ErrMalformedLog, ev.Name, len(lg.Topics))
	}

	var indexed abi.Arguments
	for _, arg := range ev.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	fields := make(map[string]interface{}, 3)
	if err := abi.ParseTopicsIntoMap(fields, indexed, lg.Topics[1:]); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedLog, err)
	}
	if err := contract.ERC20.UnpackIntoMap(fields, ev.Name, lg.Data); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedLog, err)
	}

	value, ok := fields["value"].(*big.Int)
	if !ok {
		return Event{}, fmt.Errorf("%w: missing value", ErrMalformedLog)
	}
	out := Event{
		Kind:        Kind(ev.Name),
		Token:       tok,
		Value:       value,
		TxHash:      lg.TxHash,
		BlockNumber: lg.BlockNumber,
		LogIndex:    lg.Index,
	}
	from, to := indexed[0].Name, indexed[1].Name
	out.From, _ = fields[from].(common.Address)
	out.To, _ = fields[to].(common.Address)
	return out, nil
}
