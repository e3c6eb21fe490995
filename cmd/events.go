package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/tokendash/internal/config"
	"github.com/Mohsinsiddi/tokendash/internal/events"
	"github.com/Mohsinsiddi/tokendash/internal/token"
	"github.com/Mohsinsiddi/tokendash/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	eventsFollow bool
	eventsBlocks uint64
)

var eventsCmd = &cobra.Command{
	Use:   "events [token...]",
	Short: "Show Transfer and Approval events",
	Long: `List recent Transfer and Approval events of the given tokens, or of every
token on the connected chain.

With --follow, new blocks are polled every watch_interval seconds and
events stream into a live table (c copies the hash, o opens the explorer).
History is not replayed in follow mode.

Examples:
  tokendash events
  tokendash events DAI --blocks 5000
  tokendash events --follow`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sess, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer sess.Close()

		toks, err := sess.pickTokens(ctx, args)
		if err != nil {
			return err
		}
		if eventsFollow {
			return followEvents(ctx, sess, toks)
		}

		spin := ui.NewSpinner(fmt.Sprintf("Scanning the last %d blocks...", eventsBlocks))
		spin.Start()
		evs, err := events.Recent(ctx, sess.client, toks, eventsBlocks)
		spin.Stop()
		if err != nil {
			return err
		}

		feed := events.NewFeed(config.MaxEventRows)
		feed.Push(evs...)
		if feed.Len() == 0 {
			fmt.Println(ui.Info(fmt.Sprintf("No events in the last %d blocks.", eventsBlocks)))
			return nil
		}
		fmt.Println(eventsTable(feed.Rows()))
		fmt.Println(ui.Meta(fmt.Sprintf("%d event(s), newest first", feed.Len())))
		return nil
	},
}

// followEvents runs the watcher under a live feed until the user quits.
func followEvents(ctx context.Context, sess *session, toks []token.Token) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	title := fmt.Sprintf("Events on %s", sess.Network())
	prog := tea.NewProgram(ui.NewFeedModel(title, config.MaxEventRows, sess.txURL))
	done := watchInto(ctx, prog, events.NewWatcher(sess.client, toks, cfg.WatchEvery()))

	if _, err := prog.Run(); err != nil {
		return err
	}
	cancel()
	return <-done
}

// watchInto runs w in the background, forwarding events and status to prog.
// The returned channel yields the watcher's exit error.
func watchInto(ctx context.Context, prog *tea.Program, w *events.Watcher) <-chan error {
	done := make(chan error, 1)
	go func() {
		err := w.Run(ctx,
			func(evs []events.Event) { prog.Send(ui.EventsMsg(evs)) },
			func(s events.Status) { prog.Send(ui.WatchStatusMsg(s)) },
		)
		if err != nil {
			prog.Send(ui.WatchStatusMsg(events.Status{Err: err}))
		}
		done <- err
	}()
	return done
}

func eventsTable(rows []events.Event) string {
	t := ui.NewTable([]ui.Column{
		{Title: "Block", Width: 10},
		{Title: "Event", Width: 9},
		{Title: "Token", Width: 6},
		{Title: "From", Width: 13},
		{Title: "To", Width: 13},
		{Title: "Amount", Width: 20, Right: true},
		{Title: "Tx", Width: 13},
	})
	for _, ev := range rows {
		t.AddRow(ui.Row{
			ui.Meta(fmt.Sprintf("#%d", ev.BlockNumber)),
			string(ev.Kind),
			ui.TokenSymbol(ev.Token.Symbol, ev.Token.Color),
			ui.Addr(ui.TruncateAddr(ev.From.Hex())),
			ui.Addr(ui.TruncateAddr(ev.To.Hex())),
			ui.Val(ev.Amount()),
			ui.Meta(ui.TruncateAddr(ev.TxHash.Hex())),
		})
	}
	return t.Render()
}

func init() {
	eventsCmd.Flags().BoolVarP(&eventsFollow, "follow", "f", false, "stream new events live")
	eventsCmd.Flags().Uint64Var(&eventsBlocks, "blocks", 1000, "how many recent blocks to scan")
}
