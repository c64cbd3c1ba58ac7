// Package status renders the fleet board shown after initialization and on
// the status command.
package status

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"klokfarm/internal/domain"
)

func Render(accounts []domain.Account) string {
	return renderView(accounts, newStyles())
}

func renderView(accounts []domain.Account, s styles) string {
	lines := []string{
		s.title.Render("Wallet fleet"),
		s.header.Render(fmt.Sprintf("accounts: %d", len(accounts))),
	}

	if len(accounts) == 0 {
		lines = append(lines, s.empty.Render("No accounts loaded."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, account := range accounts {
		lines = append(lines, renderAccount(account, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderAccount(account domain.Account, s styles) string {
	sep := s.separator.Render(" | ")

	line := s.account.Render(fmt.Sprintf("account %d", account.Index+1)) +
		sep + s.detail.Render(addressLabel(account.WalletAddress)) +
		sep + s.detail.Render("ip "+ipLabel(account.ProxyIP)) +
		sep + s.detail.Render("points "+domain.FormatPoints(account.PointsTotal)) +
		sep + s.detail.Render(fmt.Sprintf("chats left %d", account.RateLimit.Remaining)) +
		sep + stateLabel(account, s)

	return line
}

func addressLabel(address string) string {
	if address == "" {
		return "unverified"
	}
	return domain.ShortAddress(address)
}

func ipLabel(ip string) string {
	if ip == "" {
		return "Unknown"
	}
	return ip
}

func stateLabel(account domain.Account, s styles) string {
	switch {
	case account.HasError:
		return s.errored.Render("error")
	case account.RateLimit.Exhausted:
		return s.warning.Render(fmt.Sprintf("rate limited (%ds)", account.RateLimit.ResetSeconds))
	default:
		return s.healthy.Render("ready")
	}
}
