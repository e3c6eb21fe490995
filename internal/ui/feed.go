package ui

import (
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/tokendash/internal/events"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// EventsMsg delivers a batch of decoded events in chain order.
type EventsMsg []events.Event

// WatchStatusMsg updates the polling status bar.
type WatchStatusMsg events.Status

// FeedModel is the Bubble Tea model for the live events table.
type FeedModel struct {
	title    string
	feed     *events.Feed
	txURL    func(hash string) string
	status   events.Status
	cursor   int
	spin     spinner.Model
	flash    string
	quitting bool
}

// NewFeedModel creates an events feed holding at most max rows. txURL maps
// a transaction hash to an explorer link ("" when none).
func NewFeedModel(title string, max int, txURL func(hash string) string) FeedModel {
	return FeedModel{
		title: title,
		feed:  events.NewFeed(max),
		txURL: txURL,
		spin:  spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(StyleInfo)),
	}
}

// Rows returns the events shown, newest first.
func (m FeedModel) Rows() []events.Event { return m.feed.Rows() }

func (m FeedModel) Init() tea.Cmd { return m.spin.Tick }

func (m FeedModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.flash = ""
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < m.feed.Len()-1 {
				m.cursor++
			}
		case "c":
			m.flash = copyHash(m.selected())
		case "o":
			m.flash = openTx(m.selected(), m.txURL)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case EventsMsg:
		added := m.feed.Push(msg...)
		// Keep the cursor on the same row as new rows arrive on top.
		if m.cursor > 0 {
			m.cursor = min(m.cursor+added, m.feed.Len()-1)
		}

	case WatchStatusMsg:
		m.status = events.Status(msg)
	}
	return m, nil
}

func (m FeedModel) selected() *events.Event {
	rows := m.feed.Rows()
	if m.cursor >= len(rows) {
		return nil
	}
	return &rows[m.cursor]
}

func (m FeedModel) View() string {
	if m.quitting {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(StyleTitle.Render(m.title) + "\n")
	sb.WriteString(statusLine(m.status, m.spin.View()) + "\n\n")
	sb.WriteString(renderEvents(m.feed.Rows(), m.cursor, 0))
	if m.flash != "" {
		sb.WriteString("\n" + StyleInfo.Render(m.flash) + "\n")
	}
	sb.WriteString("\n" + StyleDim.Render("↑↓ navigate · c copy tx hash · o open in explorer · q quit") + "\n")
	return sb.String()
}

// statusLine renders the watcher state.
func statusLine(s events.Status, spin string) string {
	switch {
	case s.Err != nil:
		return StyleError.Render("✗ " + trimErr(s.Err.Error()))
	case s.Fetching:
		return StyleInfo.Render(fmt.Sprintf("%s polling block #%d…", spin, s.Block))
	case s.Block > 0:
		return StyleMeta.Render(fmt.Sprintf("  last checked: block #%d", s.Block))
	}
	return StyleMeta.Render("  connecting…")
}

// renderEvents draws the events table. cursor < 0 disables selection and
// limit > 0 caps the rows drawn.
func renderEvents(rows []events.Event, cursor, limit int) string {
	if len(rows) == 0 {
		return StyleMeta.Render("  No events yet. New Transfer and Approval events appear here.") + "\n"
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	t := NewTable([]Column{
		{Title: "TYPE", Width: 8},
		{Title: "TOKEN", Width: 6},
		{Title: "FROM / OWNER", Width: 13},
		{Title: "TO / SPENDER", Width: 13},
		{Title: "VALUE", Width: 18, Right: true},
		{Title: "TX", Width: 13},
		{Title: "BLOCK", Width: 10},
	})
	for _, ev := range rows {
		kind := StyleSuccess.Render(string(ev.Kind))
		if ev.Kind == events.KindApproval {
			kind = StyleWarning.Render(string(ev.Kind))
		}
		t.AddRow(Row{
			kind,
			TokenSymbol(ev.Token.Symbol, ev.Token.Color),
			Addr(TruncateAddr(ev.From.Hex())),
			Addr(TruncateAddr(ev.To.Hex())),
			Val(ev.Amount()),
			Addr(TruncateAddr(ev.TxHash.Hex())),
			Meta(fmt.Sprintf("#%d", ev.BlockNumber)),
		})
	}
	t.SelIdx = cursor
	return t.Render()
}

func copyHash(ev *events.Event) string {
	if ev == nil {
		return "Nothing selected"
	}
	hash := ev.TxHash.Hex()
	if err := clipboardWriter(hash); err != nil {
		return "Copy failed: " + err.Error()
	}
	return "Copied: " + TruncateAddr(hash)
}

func openTx(ev *events.Event, txURL func(string) string) string {
	if ev == nil {
		return "Nothing selected"
	}
	url := ""
	if txURL != nil {
		url = txURL(ev.TxHash.Hex())
	}
	if url == "" {
		return "No explorer URL available"
	}
	if err := browserOpener(url); err != nil {
		return err.Error()
	}
	return "Opening in browser…"
}
