// Package textfile loads the newline-delimited wallet and proxy lists the
// bot is fed with. The bare-text format is a contract with the operator:
// one entry per line, blanks ignored.
package textfile

import (
	"fmt"
	"os"
	"strings"

	"klokfarm/internal/domain"
)

func LoadWallets(path string) ([]string, error) {
	lines, err := loadLines(path)
	if err != nil {
		return nil, fmt.Errorf("read wallets file: %w", err)
	}
	if len(lines) == 0 {
		return nil, domain.ErrNoWallets
	}

	return lines, nil
}

func LoadProxies(path string) ([]string, error) {
	lines, err := loadLines(path)
	if err != nil {
		return nil, fmt.Errorf("read proxies file: %w", err)
	}
	if len(lines) == 0 {
		return nil, domain.ErrNoProxies
	}

	return lines, nil
}

func loadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	raw := strings.Split(string(data), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}

	return lines, nil
}
