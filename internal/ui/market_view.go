package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nishant0581/metacount/internal/market"
)

// renderMarket renders the market view: global stats and fees on top, the
// top coins table below.
func (m Model) renderMarket() string {
	styles := m.theme.Styles()
	contentHeight := m.height - 2

	if m.market == nil {
		msg := styles.MutedText.Render("Market data is disabled")
		return lipgloss.Place(m.width, contentHeight, lipgloss.Center, lipgloss.Center, msg)
	}

	snap := m.marketSnap
	if !snap.HasData() {
		msg := styles.WarningText.Render("Loading market data...")
		if snap.LastError != nil {
			msg = styles.DangerText.Render("Market data unavailable") + "\n" +
				styles.MutedText.Render(truncate(snap.LastError.Error(), max(m.width-4, 10))) + "\n" +
				styles.FaintText.Render("Retrying...")
		}
		return lipgloss.Place(m.width, contentHeight, lipgloss.Center, lipgloss.Center, msg)
	}

	var sections []string
	used := 0
	if snap.IsOffline() {
		sections = append(sections, m.renderOfflineBanner(snap))
		used++
	}

	statsHeight := 9
	leftWidth := m.width / 2
	rightWidth := m.width - leftWidth
	globalPane := m.renderTitledBox("Global", m.renderGlobalStats(snap), leftWidth, statsHeight, false)
	feesPane := m.renderTitledBox("Network Fees", m.renderFees(snap), rightWidth, statsHeight, false)
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, globalPane, feesPane))
	used += statsHeight

	coinsHeight := max(contentHeight-used, 3)
	title := fmt.Sprintf("Top %d by market cap", len(snap.Coins))
	sections = append(sections, m.renderTitledBox(title, m.renderCoinTable(snap.Coins, m.width-4), m.width, coinsHeight, true))

	return strings.Join(sections, "\n")
}

func (m Model) renderOfflineBanner(snap market.Snapshot) string {
	bg := NewBgStyle(m.theme.Danger)
	text := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Background)).Bold(true)
	msg := fmt.Sprintf("OFFLINE  %d failed polls", snap.ConsecutiveFailures)
	if !snap.LastUpdated.IsZero() {
		msg += "  last attempt " + snap.LastUpdated.Format("15:04:05")
	}
	return bg.FillLine(bg.Render(msg, text), m.width)
}

func (m Model) renderGlobalStats(snap market.Snapshot) string {
	bg := NewBgStyle(m.theme.SurfaceAlt)
	styles := m.theme.Styles()
	if !snap.HasGlobal {
		return bg.Render("No global data yet", styles.MutedText)
	}
	g := snap.Global
	cur := g.Currency
	if cur == "" {
		cur = m.vsCurrency
	}

	changeStyle := styles.SuccessText
	if g.MarketCapChange24h < 0 {
		changeStyle = styles.DangerText
	}

	row := func(label, value string, style lipgloss.Style) string {
		return bg.Render(padRight(label, 16), styles.MutedText) + bg.Render(value, style)
	}
	return strings.Join([]string{
		row("Market cap", formatCompact(g.TotalMarketCap, cur), styles.Text),
		row("24h change", formatPercent(g.MarketCapChange24h), changeStyle),
		row("24h volume", formatCompact(g.TotalVolume, cur), styles.Text),
		row("BTC dominance", fmt.Sprintf("%.1f%%", g.BTCDominance), styles.AccentText),
		row("Cryptocurrencies", fmt.Sprintf("%d", g.ActiveCryptocurrencies), styles.Text),
		row("Markets", fmt.Sprintf("%d", g.Markets), styles.Text),
	}, "\n")
}

func (m Model) renderFees(snap market.Snapshot) string {
	bg := NewBgStyle(m.theme.SurfaceAlt)
	styles := m.theme.Styles()
	if !snap.HasFees {
		return bg.Render("No fee data yet", styles.MutedText)
	}

	value := func(v *float64, unit string) (string, lipgloss.Style) {
		if v == nil {
			return "n/a", styles.FaintText
		}
		return fmt.Sprintf("%.1f %s", *v, unit), styles.Text
	}
	btc, btcStyle := value(snap.Fees.BitcoinSatPerByte, "sat/vB")
	eth, ethStyle := value(snap.Fees.EthereumGasGwei, "gwei")

	lines := []string{
		bg.Render(padRight("Bitcoin", 16), styles.MutedText) + bg.Render(btc, btcStyle),
		bg.Render(padRight("Ethereum gas", 16), styles.MutedText) + bg.Render(eth, ethStyle),
		"",
	}
	if !snap.LastUpdated.IsZero() {
		lines = append(lines, bg.Label("Updated", snap.LastUpdated.Format("15:04:05"), styles.FaintText, styles.MutedText))
	}
	return strings.Join(lines, "\n")
}

// renderCoinTable renders rank, symbol, name, price, 24h change and market cap.
func (m Model) renderCoinTable(coins []market.Coin, width int) string {
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles()
	if len(coins) == 0 {
		return bg.Render("No coins returned", styles.MutedText)
	}

	compact := m.width < LayoutCompactWidth
	nameWidth := 18
	if compact {
		nameWidth = 10
	}
	header := padRight("#", 4) + padRight("Symbol", 8) + padRight("Name", nameWidth) +
		padRight("Price", 18) + padRight("24h", 10)
	if !compact {
		header += "Market cap"
	}
	lines := []string{bg.Render(truncate(header, width), styles.FaintText)}

	for _, c := range coins {
		changeStyle := styles.SuccessText
		if c.PriceChangePercentage24h < 0 {
			changeStyle = styles.DangerText
		}
		line := bg.Render(padRight(fmt.Sprintf("%d", c.MarketCapRank), 4), styles.MutedText) +
			bg.Render(padRight(strings.ToUpper(c.Symbol), 8), styles.AccentText) +
			bg.Render(padRight(truncate(c.Name, nameWidth-1), nameWidth), styles.Text) +
			bg.Render(padRight(formatPrice(c.CurrentPrice, m.vsCurrency), 18), styles.Text) +
			bg.Render(padRight(formatPercent(c.PriceChangePercentage24h), 10), changeStyle)
		if !compact {
			line += bg.Render(formatCompact(c.MarketCap, m.vsCurrency), styles.MutedText)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
