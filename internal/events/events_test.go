package events_test

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/Mohsinsiddi/tokendash/internal/events"
	"github.com/Mohsinsiddi/tokendash/internal/token"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = common.HexToAddress("0x1111111111111111111111111111111111111111")
	bob   = common.HexToAddress("0x2222222222222222222222222222222222222222")

	transferTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))
	approvalTopic = crypto.Keccak256Hash([]byte("Approval(address,address,uint256)"))
)

func tokens(t *testing.T) (dai, usdc token.Token) {
	t.Helper()
	reg, err := token.NewRegistry(nil)
	require.NoError(t, err)
	dai, err = reg.Get("DAI")
	require.NoError(t, err)
	usdc, err = reg.Get("USDC")
	require.NoError(t, err)
	return dai, usdc
}

func mkLog(tok token.Token, topic common.Hash, from, to common.Address, value int64, block uint64, index uint) types.Log {
	return types.Log{
		Address: tok.Address,
		Topics: []common.Hash{
			topic,
			common.BytesToHash(from.Bytes()),
			common.BytesToHash(to.Bytes()),
		},
		Data:        common.LeftPadBytes(big.NewInt(value).Bytes(), 32),
		BlockNumber: block,
		TxHash:      common.BigToHash(new(big.Int).SetUint64(block*1000 + uint64(index))),
		Index:       index,
	}
}

// ---------------------------------------------------------------------------
// Decode
// ---------------------------------------------------------------------------

func TestDecodeTransfer(t *testing.T) {
	dai, _ := tokens(t)
	ev, err := events.Decode(dai, mkLog(dai, transferTopic, alice, bob, 1_500_000_000_000_000_000, 7, 2))
	require.NoError(t, err)

	assert.Equal(t, events.KindTransfer, ev.Kind)
	assert.Equal(t, alice, ev.From)
	assert.Equal(t, bob, ev.To)
	assert.Equal(t, "1.5", ev.Amount())
	assert.Equal(t, uint64(7), ev.BlockNumber)
	assert.Equal(t, uint(2), ev.LogIndex)
	assert.Equal(t, "DAI", ev.Token.Symbol)
}

func TestDecodeApproval(t *testing.T) {
	_, usdc := tokens(t)
	ev, err := events.Decode(usdc, mkLog(usdc, approvalTopic, alice, bob, 2_500_000, 1, 0))
	require.NoError(t, err)

	assert.Equal(t, events.KindApproval, ev.Kind)
	assert.Equal(t, alice, ev.From, "owner")
	assert.Equal(t, bob, ev.To, "spender")
	assert.Equal(t, "2.5", ev.Amount())
}

func TestDecodeRejectsOtherEvents(t *testing.T) {
	dai, _ := tokens(t)
	lg := mkLog(dai, crypto.Keccak256Hash([]byte("Paused(address)")), alice, bob, 1, 1, 0)
	_, err := events.Decode(dai, lg)
	assert.ErrorIs(t, err, events.ErrUnknownEvent)

	_, err = events.Decode(dai, types.Log{})
	assert.ErrorIs(t, err, events.ErrUnknownEvent)
}

func TestDecodeMalformed(t *testing.T) {
	dai, _ := tokens(t)

	lg := mkLog(dai, transferTopic, alice, bob, 1, 1, 0)
	lg.Topics = lg.Topics[:2]
	_, err := events.Decode(dai, lg)
	assert.ErrorIs(t, err, events.ErrMalformedLog)

	lg = mkLog(dai, transferTopic, alice, bob, 1, 1, 0)
	lg.Data = nil
	_, err = events.Decode(dai, lg)
	assert.ErrorIs(t, err, events.ErrMalformedLog)
}

// ---------------------------------------------------------------------------
// Feed
// ---------------------------------------------------------------------------

func TestFeedNewestFirstAndDeduped(t *testing.T) {
	dai, _ := tokens(t)
	a, _ := events.Decode(dai, mkLog(dai, transferTopic, alice, bob, 1, 10, 0))
	b, _ := events.Decode(dai, mkLog(dai, transferTopic, alice, bob, 2, 11, 0))

	f := events.NewFeed(200)
	assert.Equal(t, 2, f.Push(a, b))
	assert.Equal(t, 0, f.Push(b), "re-delivered log is ignored")

	rows := f.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, uint64(11), rows[0].BlockNumber)
	assert.Equal(t, uint64(10), rows[1].BlockNumber)
}

func TestFeedCap(t *testing.T) {
	dai, _ := tokens(t)
	f := events.NewFeed(3)
	for i := uint64(1); i <= 5; i++ {
		ev, err := events.Decode(dai, mkLog(dai, transferTopic, alice, bob, 1, i, 0))
		require.NoError(t, err)
		f.Push(ev)
	}
	require.Equal(t, 3, f.Len())
	assert.Equal(t, uint64(5), f.Rows()[0].BlockNumber)
	assert.Equal(t, uint64(3), f.Rows()[2].BlockNumber)

	dropped, _ := events.Decode(dai, mkLog(dai, transferTopic, alice, bob, 1, 1, 0))
	assert.Equal(t, 1, f.Push(dropped), "dropped rows are forgotten")
}

// ---------------------------------------------------------------------------
// History / Watcher
// ---------------------------------------------------------------------------

type fakeSource struct {
	mu      sync.Mutex
	heads   []uint64
	logs    []types.Log
	headErr error
	logErr  error
	queries []ethereum.FilterQuery
}

func (f *fakeSource) BlockNumber(context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.headErr != nil {
		return 0, f.headErr
	}
	h := f.heads[0]
	if len(f.heads) > 1 {
		f.heads = f.heads[1:]
	}
	return h, nil
}

func (f *fakeSource) FilterLogs(_ context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.logErr != nil {
		return nil, f.logErr
	}
	var out []types.Log
	for _, lg := range f.logs {
		if lg.BlockNumber >= q.FromBlock.Uint64() && lg.BlockNumber <= q.ToBlock.Uint64() {
			out = append(out, lg)
		}
	}
	return out, nil
}

func TestQueryFiltersBothKindsAndTokens(t *testing.T) {
	dai, usdc := tokens(t)
	q := events.Query([]token.Token{dai, usdc}, 5, 9)

	assert.Equal(t, []common.Address{dai.Address, usdc.Address}, q.Addresses)
	assert.Equal(t, int64(5), q.FromBlock.Int64())
	assert.Equal(t, int64(9), q.ToBlock.Int64())
	require.Len(t, q.Topics, 1)
	assert.ElementsMatch(t, []common.Hash{transferTopic, approvalTopic}, q.Topics[0])
}

func TestHistoryDecodesAndSkips(t *testing.T) {
	dai, usdc := tokens(t)
	removed := mkLog(dai, transferTopic, alice, bob, 1, 3, 1)
	removed.Removed = true
	stranger := mkLog(dai, transferTopic, alice, bob, 1, 3, 2)
	stranger.Address = bob

	src := &fakeSource{logs: []types.Log{
		mkLog(dai, transferTopic, alice, bob, 1, 3, 0),
		removed,
		stranger,
		mkLog(usdc, approvalTopic, alice, bob, 1, 4, 0),
	}}
	evs, err := events.History(context.Background(), src, []token.Token{dai, usdc}, 0, 10)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.Equal(t, "DAI", evs[0].Token.Symbol)
	assert.Equal(t, events.KindApproval, evs[1].Kind)
}

func TestHistoryError(t *testing.T) {
	dai, _ := tokens(t)
	boom := errors.New("range too wide")
	_, err := events.History(context.Background(), &fakeSource{logErr: boom}, []token.Token{dai}, 0, 1)
	assert.ErrorIs(t, err, boom)
}

func TestRecentUsesHeadSpan(t *testing.T) {
	dai, _ := tokens(t)
	src := &fakeSource{heads: []uint64{1000}}
	_, err := events.Recent(context.Background(), src, []token.Token{dai}, 100)
	require.NoError(t, err)
	require.Len(t, src.queries, 1)
	assert.Equal(t, int64(900), src.queries[0].FromBlock.Int64())
	assert.Equal(t, int64(1000), src.queries[0].ToBlock.Int64())
}

func TestRecentSplitsWideSpans(t *testing.T) {
	dai, _ := tokens(t)
	src := &fakeSource{heads: []uint64{10000}}
	_, err := events.Recent(context.Background(), src, []token.Token{dai}, 5000)
	require.NoError(t, err)
	require.Len(t, src.queries, 3)
	assert.Equal(t, int64(5000), src.queries[0].FromBlock.Int64())
	assert.Equal(t, int64(6999), src.queries[0].ToBlock.Int64())
	assert.Equal(t, int64(9000), src.queries[2].FromBlock.Int64())
	assert.Equal(t, int64(10000), src.queries[2].ToBlock.Int64())
}

func TestWatcherStartsFromHead(t *testing.T) {
	dai, _ := tokens(t)
	src := &fakeSource{
		heads: []uint64{100, 102},
		logs: []types.Log{
			mkLog(dai, transferTopic, alice, bob, 1, 100, 0), // before start: never replayed
			mkLog(dai, transferTopic, alice, bob, 2, 101, 0),
			mkLog(dai, approvalTopic, alice, bob, 3, 102, 0),
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan []events.Event, 4)
	done := make(chan error, 1)
	go func() {
		done <- events.NewWatcher(src, []token.Token{dai}, 10*time.Millisecond).Run(ctx, func(evs []events.Event) {
			got <- evs
		}, nil)
	}()

	select {
	case evs := <-got:
		require.Len(t, evs, 2)
		assert.Equal(t, uint64(101), evs[0].BlockNumber)
		assert.Equal(t, uint64(102), evs[1].BlockNumber)
	case <-time.After(2 * time.Second):
		t.Fatal("no events delivered")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}

	select {
	case evs := <-got:
		t.Fatalf("unexpected second batch: %v", evs)
	default:
	}
}

func TestWatcherStartError(t *testing.T) {
	dai, _ := tokens(t)
	src := &fakeSource{headErr: errors.New("dial tcp: refused")}
	err := events.NewWatcher(src, []token.Token{dai}, time.Millisecond).Run(context.Background(), func([]events.Event) {}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "starting block")
}

func TestWatcherReportsPollErrors(t *testing.T) {
	dai, _ := tokens(t)
	src := &fakeSource{heads: []uint64{5, 6}, logErr: errors.New("rate limited")}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	statuses := make(chan events.Status, 16)
	go events.NewWatcher(src, []token.Token{dai}, 10*time.Millisecond).Run(ctx, func([]events.Event) {}, func(s events.Status) {
		select {
		case statuses <- s:
		default:
		}
	})

	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-statuses:
			if s.Err != nil {
				assert.Contains(t, s.Err.Error(), "rate limited")
				assert.Equal(t, uint64(5), s.Block, "progress is not advanced past a failed range")
				return
			}
		case <-deadline:
			t.Fatal("no error status reported")
		}
	}
}
