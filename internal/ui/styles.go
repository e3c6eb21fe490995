package ui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	ColorSuccess   = lipgloss.Color("#00D26A") // green: confirmed, incoming
	ColorWarning   = lipgloss.Color("#FFB800") // yellow: pending, outgoing
	ColorError     = lipgloss.Color("#FF4444") // red: failures
	ColorAddress   = lipgloss.Color("#00B4D8") // cyan: addresses, hashes
	ColorValue     = lipgloss.Color("#FFFFFF") // white bold: amounts
	ColorMeta      = lipgloss.Color("#555555") // dim gray: metadata
	ColorBorder    = lipgloss.Color("#1E3A5F") // dark blue: UI chrome
	ColorChain     = lipgloss.Color("#9B5DE5") // purple: networks, titles
	ColorHighlight = lipgloss.Color("#F15BB5") // pink: selection
)

// Base styles.
var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleAddress = lipgloss.NewStyle().Foreground(ColorAddress)
	StyleValue   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	StyleMeta    = lipgloss.NewStyle().Foreground(ColorMeta)
	StyleChain   = lipgloss.NewStyle().Foreground(ColorChain).Bold(true)
	StyleInfo    = lipgloss.NewStyle().Foreground(ColorAddress)

	StyleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StyleActiveBorder = StyleBorder.
				BorderForeground(ColorHighlight)

	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true).
			Underline(true)

	StyleSelected = lipgloss.NewStyle().
			Background(ColorHighlight).
			Foreground(lipgloss.Color("#000000")).
			Bold(true)

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorChain).
			Bold(true).
			MarginBottom(1)

	StyleDim = lipgloss.NewStyle().Foreground(ColorMeta)
)

// Banner returns the tokendash title line.
func Banner() string {
	title := StyleChain.Render("◆ tokendash")
	tagline := StyleMeta.Render("  ERC-20 test token dashboard")
	return title + tagline + "\n"
}

// Success formats a success message.
func Success(msg string) string { return StyleSuccess.Render("✓ " + msg) }

// Warn formats a warning message.
func Warn(msg string) string { return StyleWarning.Render("⚠ " + msg) }

// Err formats an error message.
func Err(msg string) string { return StyleError.Render("✗ " + msg) }

// Info formats a neutral notice.
func Info(msg string) string { return StyleInfo.Render("ℹ " + msg) }

// Hint formats a suggestion for what to run next.
func Hint(msg string) string { return StyleMeta.Render("→ " + msg) }

// Addr formats an address.
func Addr(a string) string { return StyleAddress.Render(a) }

// Val formats a value.
func Val(v string) string { return StyleValue.Render(v) }

// Meta formats metadata text.
func Meta(m string) string { return StyleMeta.Render(m) }

// ChainName formats a network name.
func ChainName(c string) string { return StyleChain.Render(c) }

// TokenSymbol renders a symbol in the token's accent colour, if it has one.
func TokenSymbol(symbol, color string) string {
	if color == "" {
		return StyleValue.Render(symbol)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true).Render(symbol)
}

// TruncateAddr shortens an address for display: 0x1234…5678.
func TruncateAddr(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

// trimErr shortens an error for a one-line status bar.
func trimErr(s string) string {
	const max = 60
	if len(s) > max {
		return s[:max] + "…"
	}
	return s
}

// padR pads s with spaces to n visible columns.
func padR(s string, n int) string {
	w := lipgloss.Width(s)
	if w >= n {
		return s
	}
	return s + spaces(n-w)
}

func spaces(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
