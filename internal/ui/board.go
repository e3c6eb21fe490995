package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Mohsinsiddi/tokendash/internal/token"
	tea "github.com/charmbracelet/bubbletea"
)

// BalanceEntry holds one token's balance for the board.
type BalanceEntry struct {
	Token   token.Token
	Balance string
	Err     string
}

// boardModel is the Bubble Tea model for the live balances board.
type boardModel struct {
	title      string
	entries    []BalanceEntry
	lastUpdate time.Time
	interval   time.Duration
	quitting   bool
	fetcher    func() ([]BalanceEntry, error)
	err        string
}

type tickMsg time.Time
type balancesFetchedMsg []BalanceEntry
type balancesErrorMsg string

// NewBalanceBoard creates a Bubble Tea program that refreshes balances
// every interval.
func NewBalanceBoard(title string, interval time.Duration, fetcher func() ([]BalanceEntry, error)) *tea.Program {
	return tea.NewProgram(newBoardModel(title, interval, fetcher))
}

func newBoardModel(title string, interval time.Duration, fetcher func() ([]BalanceEntry, error)) boardModel {
	return boardModel{title: title, interval: interval, fetcher: fetcher}
}

func (m boardModel) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), tick(m.interval))
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "r":
			return m, m.fetchCmd()
		}

	case tickMsg:
		return m, tea.Batch(m.fetchCmd(), tick(m.interval))

	case balancesFetchedMsg:
		m.entries = []BalanceEntry(msg)
		m.lastUpdate = time.Now()
		m.err = ""

	case balancesErrorMsg:
		m.err = string(msg)
	}
	return m, nil
}

func (m boardModel) View() string {
	if m.quitting {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(StyleTitle.Render(m.title) + "\n")
	updated := "never"
	if !m.lastUpdate.IsZero() {
		updated = m.lastUpdate.Format("15:04:05")
	}
	sb.WriteString(StyleMeta.Render(fmt.Sprintf("Updated: %s · every %s · r refresh · q quit", updated, m.interval)) + "\n\n")

	if m.err != "" {
		sb.WriteString(Err(trimErr(m.err)) + "\n")
	}
	if len(m.entries) == 0 {
		sb.WriteString(StyleMeta.Render("Loading...") + "\n")
		return sb.String()
	}
	sb.WriteString(RenderBalances(m.entries))
	return sb.String()
}

func (m boardModel) fetchCmd() tea.Cmd {
	return func() tea.Msg {
		entries, err := m.fetcher()
		if err != nil {
			return balancesErrorMsg(err.Error())
		}
		return balancesFetchedMsg(entries)
	}
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// RenderBalances draws a token balance table.
func RenderBalances(entries []BalanceEntry) string {
	t := NewTable([]Column{
		{Title: "Token", Width: 8},
		{Title: "Contract", Width: 13},
		{Title: "Balance", Width: 28, Right: true},
		{Title: "", Width: 24},
	})
	for _, e := range entries {
		bal, note := Val(e.Balance), ""
		if e.Err != "" {
			bal, note = Meta("—"), StyleError.Render(trimErr(e.Err))
		}
		t.AddRow(Row{
			TokenSymbol(e.Token.Symbol, e.Token.Color),
			Addr(TruncateAddr(e.Token.Address.Hex())),
			bal,
			note,
		})
	}
	return t.Render()
}
