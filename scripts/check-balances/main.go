// check-balances: reads the balance of every configured token for a set of
// wallets, connecting once per chain, and prints a summary table.
//
// Run from the module root:
//
//	go run ./scripts/check-balances [address...]
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/Mohsinsiddi/tokendash/internal/chain"
	"github.com/Mohsinsiddi/tokendash/internal/config"
	"github.com/Mohsinsiddi/tokendash/internal/contract"
	"github.com/Mohsinsiddi/tokendash/internal/rpc"
	"github.com/Mohsinsiddi/tokendash/internal/token"
	"github.com/Mohsinsiddi/tokendash/internal/validate"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

// ── config ────────────────────────────────────────────────────────────────────

var defaultWallets = []string{
	"0x802D8097eC1D49808F3c2c866020442891adde57",
	"0x315a352720E52EaDCB62f5e0879D5Fea82B959A4",
	"0x5d1D0b1d5790B1c88cC1e94366D3B242991DC05d",
}

const (
	rpcTimeout = 12 * time.Second
	maxReads   = 8
)

// ── types ─────────────────────────────────────────────────────────────────────

type result struct {
	network string
	symbol  string
	wallet  string // short form
	balance string
	err     string
}

// ── main ──────────────────────────────────────────────────────────────────────

func main() {
	wallets := os.Args[1:]
	if len(wallets) == 0 {
		wallets = defaultWallets
	}
	for _, w := range wallets {
		if err := validate.ValidateAddress(w, "").Err(); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", w, err)
			os.Exit(2)
		}
	}

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	toks, err := token.NewRegistry(cfg.Tokens)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	byChain := make(map[int64][]token.Token)
	for _, t := range toks.All() {
		byChain[t.ChainID] = append(byChain[t.ChainID], t)
	}

	reg := chain.NewRegistry()
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []result
	)
	add := func(r result) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	}

	for id, chainToks := range byChain {
		wg.Add(1)
		go func(id int64, chainToks []token.Token) {
			defer wg.Done()
			for _, r := range checkChain(cfg, reg, id, chainToks, wallets) {
				add(r)
			}
		}(id, chainToks)
	}
	wg.Wait()

	printTable(results)
}

// checkChain connects to one chain and reads every token balance on it.
func checkChain(cfg *config.Config, reg *chain.Registry, id int64, toks []token.Token, wallets []string) []result {
	network := fmt.Sprintf("chain %d", id)
	fail := func(msg string) []result {
		var out []result
		for _, t := range toks {
			for _, w := range wallets {
				out = append(out, result{network: network, symbol: t.Symbol, wallet: shortAddr(w), balance: "—", err: msg})
			}
		}
		return out
	}

	c, err := reg.GetByChainID(id)
	if err != nil {
		return fail("unknown chain")
	}
	mode := chain.ModeMainnet
	if c.TestnetChainID == id {
		mode = chain.ModeTestnet
	}
	network = c.NetworkName(mode)

	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

	client, err := rpc.Connect(ctx, cfg.RPCsFor(c.Name, c.RPCs(mode)), id, cfg.RPCAlgorithm)
	if err != nil {
		return fail("unreachable")
	}
	defer client.Close()
	reader := contract.NewReader(client)

	out := make([]result, len(toks)*len(wallets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxReads)
	for i, t := range toks {
		for j, w := range wallets {
			r := &out[i*len(wallets)+j]
			*r = result{network: network, symbol: t.Symbol, wallet: shortAddr(w)}
			owner := common.HexToAddress(w)
			g.Go(func() error {
				bal, err := reader.BalanceOf(gctx, t.Address, owner)
				if err != nil {
					r.balance, r.err = "—", shortErr(err)
					return nil
				}
				r.balance = validate.FormatUnits(bal, t.Decimals)
				return nil
			})
		}
	}
	_ = g.Wait()
	return out
}

// ── output ────────────────────────────────────────────────────────────────────

func printTable(results []result) {
	// Sort by network → token → wallet.
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.network != b.network {
			return a.network < b.network
		}
		if a.symbol != b.symbol {
			return a.symbol < b.symbol
		}
		return a.wallet < b.wallet
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "NETWORK\tTOKEN\tWALLET\tBALANCE\tNOTE")
	fmt.Fprintln(w, strings.Repeat("-", 18)+"\t"+
		strings.Repeat("-", 6)+"\t"+
		strings.Repeat("-", 14)+"\t"+
		strings.Repeat("-", 24)+"\t"+
		strings.Repeat("-", 12))

	lastSymbol := ""
	for _, r := range results {
		if r.symbol != lastSymbol {
			if lastSymbol != "" {
				fmt.Fprintln(w, "\t\t\t\t") // blank separator between tokens
			}
			lastSymbol = r.symbol
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.network, r.symbol, r.wallet, r.balance, r.err)
	}
	w.Flush()
}

// ── helpers ───────────────────────────────────────────────────────────────────

func shortAddr(addr string) string {
	if len(addr) < 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

func shortErr(err error) string {
	s := err.Error()
	if len(s) > 30 {
		return s[:30] + "…"
	}
	return s
}
