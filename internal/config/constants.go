package config

import "time"

// Gas limits used as EstimateGas fallbacks when the node cannot simulate the tx.
// These are conservative upper bounds; actual gas used will be lower.
const (
	GasLimitERC20Approve  = uint64(60_000)
	GasLimitERC20Transfer = uint64(60_000)
	GasLimitERC20Mint     = uint64(80_000)
)

// Timeouts and polling intervals.
const (
	RPCSelectTimeout     = 10 * time.Second // endpoint probing
	TxConfirmTimeout     = 3 * time.Minute  // submission confirmation wait
	ReceiptPollInterval  = 2 * time.Second
	BalanceRefreshPeriod = 10 * time.Second // live balances board
	DefaultWatchInterval = 3 * time.Second  // events watcher
)

// MaxEventRows caps the events feed.
const MaxEventRows = 20
