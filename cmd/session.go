package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/tokendash/internal/chain"
	"github.com/Mohsinsiddi/tokendash/internal/config"
	"github.com/Mohsinsiddi/tokendash/internal/ens"
	"github.com/Mohsinsiddi/tokendash/internal/log"
	"github.com/Mohsinsiddi/tokendash/internal/rpc"
	"github.com/Mohsinsiddi/tokendash/internal/token"
	"github.com/Mohsinsiddi/tokendash/internal/ui"
	"github.com/Mohsinsiddi/tokendash/internal/validate"
	"github.com/Mohsinsiddi/tokendash/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
)

var chainReg = chain.NewRegistry()

// session is a connection to one chain in one network mode.
type session struct {
	chain   *chain.Chain
	mode    string
	chainID int64
	client  *chain.EVMClient
	tokens  *token.Registry
}

// resolveChain returns the chain named by --network, or the configured default.
func resolveChain() (*chain.Chain, error) {
	name := networkFlag
	if name == "" {
		name = cfg.DefaultNetwork
	}
	c, err := chainReg.GetByName(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q (run 'tokendash network list')", err, name)
	}
	return c, nil
}

// endpointsFor lists the RPC URLs to try for c in the current mode.
func endpointsFor(c *chain.Chain) []string {
	return cfg.RPCsFor(c.Name, c.RPCs(cfg.NetworkMode))
}

func openSession(ctx context.Context) (*session, error) {
	c, err := resolveChain()
	if err != nil {
		return nil, err
	}
	if cfg.IsTestnet() && !config.TestnetsEnabled() {
		return nil, fmt.Errorf("testnets are disabled by $%s, use --mainnet", config.EnvEnableTestnets)
	}
	reg, err := token.NewRegistry(cfg.Tokens)
	if err != nil {
		return nil, fmt.Errorf("loading tokens: %w", err)
	}

	urls := endpointsFor(c)
	if len(urls) == 0 {
		return nil, fmt.Errorf("no RPCs configured for %s (%s), add one with 'tokendash rpc add %s <url>'", c.Name, cfg.NetworkMode, c.Name)
	}

	network := c.NetworkName(cfg.NetworkMode)
	spin := ui.NewSpinner(fmt.Sprintf("Connecting to %s...", ui.ChainName(network)))
	spin.Start()
	pctx, cancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
	client, err := rpc.Connect(pctx, urls, c.ID(cfg.NetworkMode), cfg.RPCAlgorithm)
	cancel()
	spin.Stop()
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", network, err)
	}
	log.Debug("connected", "network", network, "rpc", client.URL())

	return &session{
		chain:   c,
		mode:    cfg.NetworkMode,
		chainID: c.ID(cfg.NetworkMode),
		client:  client,
		tokens:  reg,
	}, nil
}

func (s *session) Close() { s.client.Close() }

// Network is the human label of the connected chain.
func (s *session) Network() string { return s.chain.NetworkName(s.mode) }

func (s *session) txURL(hash string) string { return s.chain.TxURL(s.mode, hash) }

// token looks up symbol and checks the node is on the token's chain.
func (s *session) token(ctx context.Context, symbol string) (token.Token, error) {
	tok, err := s.tokens.Get(symbol)
	if err != nil {
		return token.Token{}, fmt.Errorf("%w (run 'tokendash token list')", err)
	}
	if err := wallet.RequireChain(ctx, s.client, tok.ChainID, chainReg); err != nil {
		return token.Token{}, err
	}
	return tok, nil
}

// pickTokens resolves symbols, or every token on the connected chain when
// none are given.
func (s *session) pickTokens(ctx context.Context, symbols []string) ([]token.Token, error) {
	if len(symbols) == 0 {
		toks := s.tokens.ForChain(s.chainID)
		if len(toks) == 0 {
			return nil, fmt.Errorf("no tokens configured for %s, try --testnet or 'tokendash token add'", s.Network())
		}
		return toks, nil
	}
	toks := make([]token.Token, 0, len(symbols))
	for _, sym := range symbols {
		tok, err := s.token(ctx, sym)
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
	}
	return toks, nil
}

func newWalletManager() *wallet.Manager {
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeystore(wallet.DefaultKeystore(cfg.Dir())),
	)
}

// resolveWallet returns the wallet named by --wallet, the configured
// default, or the manager's default.
func resolveWallet(mgr *wallet.Manager) (*wallet.Wallet, error) {
	name := walletFlag
	if name == "" {
		name = cfg.DefaultWallet
	}
	return mgr.Resolve(name)
}

// resolveAddress accepts an address or a wallet name.
func resolveAddress(mgr *wallet.Manager, s string) (common.Address, error) {
	if validate.IsAddress(s) {
		return common.HexToAddress(s), nil
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return common.Address{}, fmt.Errorf("%w: %q", wallet.ErrInvalidAddress, s)
	}
	w, err := mgr.Get(s)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w (pass an address or a name from 'tokendash wallet list')", err)
	}
	return w.Addr(), nil
}

// resolveOwner is the account named by args[0], else the selected wallet.
func resolveOwner(mgr *wallet.Manager, args []string) (common.Address, error) {
	if len(args) > 0 {
		return resolveAddress(mgr, args[0])
	}
	w, err := resolveWallet(mgr)
	if err != nil {
		return common.Address{}, err
	}
	return w.Addr(), nil
}

// account resolves an address, a wallet name, or an ENS name looked up on
// the session's chain.
func (s *session) account(ctx context.Context, mgr *wallet.Manager, in string) (common.Address, error) {
	if !ens.IsName(in) {
		return resolveAddress(mgr, in)
	}
	addr, err := ens.Resolve(ctx, s.client, in)
	if err != nil {
		return common.Address{}, err
	}
	log.Debug("ens name resolved", "name", in, "address", addr.Hex())
	return addr, nil
}

// owner is the account named by args[0], else the selected wallet.
func (s *session) owner(ctx context.Context, mgr *wallet.Manager, args []string) (common.Address, error) {
	if len(args) > 0 {
		return s.account(ctx, mgr, args[0])
	}
	return resolveOwner(mgr, nil)
}
