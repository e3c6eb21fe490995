package ui

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/Mohsinsiddi/tokendash/internal/config"
	"github.com/Mohsinsiddi/tokendash/internal/contract"
	"github.com/Mohsinsiddi/tokendash/internal/events"
	"github.com/Mohsinsiddi/tokendash/internal/form"
	"github.com/Mohsinsiddi/tokendash/internal/token"
	"github.com/Mohsinsiddi/tokendash/internal/validate"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
)

// Actions are the chain side effects the dashboard drives. Each runs off
// the update loop as a tea.Cmd.
type Actions struct {
	// Broadcast signs and sends call, returning the transaction hash.
	Broadcast func(ctx context.Context, call contract.Call) (common.Hash, error)
	// Confirm blocks until hash is mined; a reverted receipt is an error.
	Confirm func(ctx context.Context, hash common.Hash) error
	// Balance reads the connected account's balance of tok.
	Balance func(ctx context.Context, tok token.Token) (*big.Int, error)
	// Allowance reads allowance(account, spender) on tok.
	Allowance func(ctx context.Context, tok token.Token, spender common.Address) (*big.Int, error)
	// TxURL links a hash on the explorer, or returns "".
	TxURL func(hash string) string
}

// DashboardConfig describes the session the dashboard runs in.
type DashboardConfig struct {
	Account   string
	Network   string
	Tokens    []token.Token
	Refresh   time.Duration
	MaxEvents int
}

type formKey struct {
	symbol string
	kind   form.Kind
}

type balanceMsg struct {
	symbol string
	bal    *big.Int
	err    error
}

type allowanceMsg struct {
	symbol  string
	spender string
	amount  *big.Int
	err     error
}

// allowanceView is the last allowance read for a token's approve form.
type allowanceView struct {
	spender string
	amount  *big.Int
	err     string
}

type broadcastMsg struct {
	key  formKey
	hash common.Hash
	err  error
}

type confirmedMsg struct {
	key formKey
	err error
}

type refreshMsg time.Time

// DashboardModel is the interactive approve / transfer / mint screen with
// a live events pane.
type DashboardModel struct {
	ctx  context.Context
	acts Actions
	cfg  DashboardConfig

	forms    map[formKey]*form.Form
	balances   map[string]*big.Int
	balErr     string
	allowances map[string]allowanceView

	tokIdx  int
	kindIdx int
	focus   int
	inputs  []textinput.Model

	feed   *events.Feed
	status events.Status

	spin     spinner.Model
	flash    string
	quitting bool
}

// NewDashboard builds the dashboard model. ctx bounds every chain call it
// starts.
func NewDashboard(ctx context.Context, cfg DashboardConfig, acts Actions) DashboardModel {
	if cfg.Refresh <= 0 {
		cfg.Refresh = config.BalanceRefreshPeriod
	}
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = config.MaxEventRows
	}
	m := DashboardModel{
		ctx:      ctx,
		acts:     acts,
		cfg:      cfg,
		forms:    make(map[formKey]*form.Form),
		balances:   make(map[string]*big.Int),
		allowances: make(map[string]allowanceView),
		feed:     events.NewFeed(cfg.MaxEvents),
		spin:     spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(StyleInfo)),
	}
	for _, tok := range cfg.Tokens {
		for _, k := range kindsFor(tok) {
			m.forms[formKey{tok.Symbol, k}] = form.New(k, tok, cfg.Account)
		}
	}

	account := textinput.New()
	account.Placeholder = "0x..."
	account.CharLimit = 42
	account.Width = 44
	amount := textinput.New()
	amount.Placeholder = "0.0"
	amount.CharLimit = 80
	amount.Width = 24
	m.inputs = []textinput.Model{account, amount}
	m.inputs[0].Focus()
	m.syncInputs()
	return m
}

func kindsFor(tok token.Token) []form.Kind {
	kinds := []form.Kind{form.KindApprove, form.KindTransfer}
	if tok.Mintable {
		kinds = append(kinds, form.KindMint)
	}
	return kinds
}

// Active returns the form on screen, or nil when no tokens are configured.
func (m DashboardModel) Active() *form.Form {
	if len(m.cfg.Tokens) == 0 {
		return nil
	}
	tok := m.cfg.Tokens[m.tokIdx]
	return m.forms[formKey{tok.Symbol, kindsFor(tok)[m.kindIdx]}]
}

// Form returns the form for a token and operation.
func (m DashboardModel) Form(symbol string, kind form.Kind) *form.Form {
	return m.forms[formKey{symbol, kind}]
}

// Feed returns the events shown, newest first.
func (m DashboardModel) Feed() []events.Event { return m.feed.Rows() }

func (m DashboardModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick, textinput.Blink, refreshTick(m.cfg.Refresh)}
	for _, tok := range m.cfg.Tokens {
		cmds = append(cmds, m.fetchBalance(tok))
	}
	return tea.Batch(cmds...)
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case refreshMsg:
		cmds := []tea.Cmd{refreshTick(m.cfg.Refresh)}
		for _, tok := range m.cfg.Tokens {
			cmds = append(cmds, m.fetchBalance(tok))
		}
		return m, tea.Batch(cmds...)

	case balanceMsg:
		if msg.err != nil {
			m.balErr = fmt.Sprintf("%s balance: %s", msg.symbol, trimErr(msg.err.Error()))
			return m, nil
		}
		m.balErr = ""
		m.balances[msg.symbol] = msg.bal
		if f := m.forms[formKey{msg.symbol, form.KindTransfer}]; f != nil {
			f.SetBalance(msg.bal)
		}

	case allowanceMsg:
		// Drop replies for a spender that has since been replaced.
		if cur, ok := m.allowances[msg.symbol]; !ok || cur.spender != msg.spender {
			return m, nil
		}
		v := allowanceView{spender: msg.spender, amount: msg.amount}
		if msg.err != nil {
			v.err = trimErr(msg.err.Error())
		}
		m.allowances[msg.symbol] = v

	case broadcastMsg:
		f := m.forms[msg.key]
		if msg.err != nil {
			_ = f.Fail(msg.err)
			return m, nil
		}
		if err := f.Broadcast(msg.hash); err != nil {
			return m, nil
		}
		return m, m.confirm(msg.key, msg.hash)

	case confirmedMsg:
		f := m.forms[msg.key]
		if msg.err != nil {
			_ = f.Fail(msg.err)
			return m, nil
		}
		if err := f.Confirm(); err != nil {
			return m, nil
		}
		m.flash = fmt.Sprintf("%s %s confirmed", msg.key.symbol, msg.key.kind)
		if f == m.Active() {
			m.syncInputs()
		}
		tok := f.Token()
		cmds := []tea.Cmd{m.fetchBalance(tok)}
		if msg.key.kind == form.KindApprove {
			if cur, ok := m.allowances[tok.Symbol]; ok {
				cmds = append(cmds, m.requestAllowance(tok, cur.spender))
			}
		}
		return m, tea.Batch(cmds...)

	case EventsMsg:
		m.feed.Push(msg...)

	case WatchStatusMsg:
		m.status = events.Status(msg)
	}
	return m, nil
}

func (m DashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.Active()
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "ctrl+t":
		if len(m.cfg.Tokens) > 0 {
			m.tokIdx = (m.tokIdx + 1) % len(m.cfg.Tokens)
			m.kindIdx = min(m.kindIdx, len(kindsFor(m.cfg.Tokens[m.tokIdx]))-1)
			m.flash = ""
			m.syncInputs()
		}
		return m, nil

	case "ctrl+o":
		if len(m.cfg.Tokens) > 0 {
			m.kindIdx = (m.kindIdx + 1) % len(kindsFor(m.cfg.Tokens[m.tokIdx]))
			m.flash = ""
			m.syncInputs()
		}
		return m, nil

	case "tab", "down", "shift+tab", "up":
		m.inputs[m.focus].Blur()
		m.focus = (m.focus + 1) % len(m.inputs)
		return m, m.inputs[m.focus].Focus()

	case "ctrl+y":
		if f != nil && f.TxHash() != (common.Hash{}) {
			m.flash = copyHash(&events.Event{TxHash: f.TxHash()})
		}
		return m, nil

	case "ctrl+e":
		if f != nil && f.TxHash() != (common.Hash{}) {
			m.flash = openTx(&events.Event{TxHash: f.TxHash()}, m.acts.TxURL)
		}
		return m, nil

	case "enter":
		if f == nil {
			return m, nil
		}
		call, err := f.Submit()
		if err != nil {
			m.flash = err.Error()
			return m, nil
		}
		m.flash = ""
		tok := f.Token()
		return m, m.broadcast(formKey{tok.Symbol, f.Kind()}, call)
	}

	if f == nil {
		return m, nil
	}
	var cmd tea.Cmd
	field := f.Fields()[m.focus]
	before := m.inputs[m.focus].Value()
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	value := m.inputs[m.focus].Value()
	_ = f.Set(field, value)
	if value != before && f.Kind() == form.KindApprove && field == form.FieldSpender &&
		f.FieldError(field) == "" && validate.IsAddress(value) {
		return m, tea.Batch(cmd, m.requestAllowance(f.Token(), value))
	}
	return m, cmd
}

// requestAllowance marks spender as the one shown for tok and reads its
// allowance.
func (m *DashboardModel) requestAllowance(tok token.Token, spender string) tea.Cmd {
	if m.acts.Allowance == nil {
		return nil
	}
	prev := m.allowances[tok.Symbol]
	v := allowanceView{spender: spender}
	if strings.EqualFold(prev.spender, spender) {
		v.amount = prev.amount
	}
	m.allowances[tok.Symbol] = v

	ctx := m.ctx
	read := m.acts.Allowance
	return func() tea.Msg {
		amt, err := read(ctx, tok, common.HexToAddress(spender))
		return allowanceMsg{symbol: tok.Symbol, spender: spender, amount: amt, err: err}
	}
}

// syncInputs loads the active form's values into the text inputs.
func (m *DashboardModel) syncInputs() {
	f := m.Active()
	if f == nil {
		return
	}
	for i, field := range f.Fields() {
		m.inputs[i].SetValue(f.Value(field))
	}
}

func (m DashboardModel) fetchBalance(tok token.Token) tea.Cmd {
	if m.acts.Balance == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		bal, err := m.acts.Balance(ctx, tok)
		return balanceMsg{symbol: tok.Symbol, bal: bal, err: err}
	}
}

func (m DashboardModel) broadcast(key formKey, call contract.Call) tea.Cmd {
	ctx := m.ctx
	send := m.acts.Broadcast
	return func() tea.Msg {
		hash, err := send(ctx, call)
		return broadcastMsg{key: key, hash: hash, err: err}
	}
}

func (m DashboardModel) confirm(key formKey, hash common.Hash) tea.Cmd {
	ctx := m.ctx
	wait := m.acts.Confirm
	return func() tea.Msg {
		return confirmedMsg{key: key, err: wait(ctx, hash)}
	}
}

func refreshTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return refreshMsg(t) })
}

// --- view ---

func (m DashboardModel) View() string {
	if m.quitting {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(Banner())
	sb.WriteString(Meta("Account ") + Addr(m.cfg.Account) + Meta("  ·  ") + ChainName(m.cfg.Network) + "\n\n")

	f := m.Active()
	if f == nil {
		sb.WriteString(Warn("No tokens configured for this network") + "\n")
		return sb.String()
	}

	sb.WriteString(m.viewTabs() + "\n")
	sb.WriteString(StyleActiveBorder.Render(m.viewForm(f)) + "\n")
	if m.balErr != "" {
		sb.WriteString(Err(m.balErr) + "\n")
	}

	sb.WriteString("\n" + StyleTitle.Render("Recent Events") + "\n")
	sb.WriteString(statusLine(m.status, m.spin.View()) + "\n")
	sb.WriteString(renderEvents(m.feed.Rows(), -1, 8))

	if m.flash != "" {
		sb.WriteString("\n" + StyleInfo.Render(m.flash) + "\n")
	}
	sb.WriteString("\n" + StyleDim.Render("tab field · enter submit · ctrl+t token · ctrl+o operation · ctrl+y copy tx · ctrl+e explorer · esc quit") + "\n")
	return sb.String()
}

func (m DashboardModel) viewTabs() string {
	var toks []string
	for i, tok := range m.cfg.Tokens {
		label := " " + tok.Symbol + " "
		if i == m.tokIdx {
			toks = append(toks, StyleSelected.Render(label))
		} else {
			toks = append(toks, TokenSymbol(label, tok.Color))
		}
	}
	var kinds []string
	for i, k := range kindsFor(m.cfg.Tokens[m.tokIdx]) {
		label := " " + strings.ToUpper(string(k)[:1]) + string(k)[1:] + " "
		if i == m.kindIdx {
			kinds = append(kinds, StyleHeader.Render(label))
		} else {
			kinds = append(kinds, StyleDim.Render(label))
		}
	}
	return strings.Join(toks, " ") + Meta("   │   ") + strings.Join(kinds, " ")
}

func (m DashboardModel) viewForm(f *form.Form) string {
	var sb strings.Builder
	tok := f.Token()

	bal := Meta("…")
	if b, ok := m.balances[tok.Symbol]; ok {
		bal = Val(validate.FormatUnits(b, tok.Decimals))
	}
	sb.WriteString(Meta("Balance: ") + bal + " " + TokenSymbol(tok.Symbol, tok.Color) + "\n\n")

	for i, field := range f.Fields() {
		label := "Amount"
		if field != form.FieldAmount {
			label = strings.ToUpper(string(field)[:1]) + string(field)[1:]
		}
		cursor := "  "
		if i == m.focus {
			cursor = StyleHeader.Render("›") + " "
		}
		sb.WriteString(cursor + padR(Meta(label), 10) + m.inputs[i].View() + "\n")
		if e := f.FieldError(field); e != "" {
			sb.WriteString("            " + StyleError.Render(e) + "\n")
		} else if field == form.FieldSpender {
			if line := m.viewAllowance(tok, f.Value(field)); line != "" {
				sb.WriteString("            " + line + "\n")
			}
		}
	}
	sb.WriteString("\n" + m.viewPhase(f))
	return sb.String()
}

// viewAllowance shows the allowance read for spender. An empty spender
// (after a confirmed approve clears the form) shows the last one read.
func (m DashboardModel) viewAllowance(tok token.Token, spender string) string {
	v, ok := m.allowances[tok.Symbol]
	if !ok || (spender != "" && !strings.EqualFold(spender, v.spender)) {
		return ""
	}
	if v.err != "" {
		return Err("Allowance: " + v.err)
	}
	amt := "…"
	if v.amount != nil {
		amt = validate.FormatUnits(v.amount, tok.Decimals)
		if v.amount.Cmp(validate.MaxUint256) == 0 {
			amt = "unlimited"
		}
	}
	line := fmt.Sprintf("Current allowance: %s %s", amt, tok.Symbol)
	if spender == "" {
		line += " for " + TruncateAddr(v.spender)
	}
	return StyleInfo.Render(line)
}

func (m DashboardModel) viewPhase(f *form.Form) string {
	var line string
	switch f.Phase() {
	case form.Submitting:
		line = StyleInfo.Render(m.spin.View() + " Signing and broadcasting…")
	case form.Confirming:
		line = StyleWarning.Render(m.spin.View() + " Waiting for confirmation " + TruncateAddr(f.TxHash().Hex()))
	case form.Idle:
		line = Success("Confirmed " + TruncateAddr(f.TxHash().Hex()))
	default:
		button := " " + strings.ToUpper(string(f.Kind())) + " "
		if f.CanSubmit() {
			line = StyleSelected.Render(button)
		} else {
			line = StyleDim.Render("[" + button + "]")
		}
	}
	if b := f.Banner(); b != "" {
		line += "\n" + Err(trimErr(b))
	}
	return line
}
