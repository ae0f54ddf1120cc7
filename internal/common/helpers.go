package common

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	BTCDecimals = 8 // BTC has 8 decimals (satoshi)
	SOLDecimals = 9 // SOL has 9 decimals (lamports)
)

// Decimals returns the number of decimals of the chain's base unit.
func Decimals(chain string) (int, error) {
	switch strings.ToUpper(chain) {
	case "BTC":
		return BTCDecimals, nil
	case "SOL":
		return SOLDecimals, nil
	default:
		return 0, fmt.Errorf("unsupported chain: %s", chain)
	}
}

// FormatUnits converts base units to a decimal string of the chain's coin
// without float precision loss.
func FormatUnits(chain string, value int64) (string, error) {
	decimals, err := Decimals(chain)
	if err != nil {
		return "", err
	}
	if value < 0 {
		return "-" + formatWithDecimals(uint64(-value), decimals), nil
	}
	return formatWithDecimals(uint64(value), decimals), nil
}

// ParseUnits converts a decimal coin amount to base units of the chain.
func ParseUnits(chain, amount string) (int64, error) {
	decimals, err := Decimals(chain)
	if err != nil {
		return 0, err
	}
	n, err := parseWithDecimals(amount, decimals)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if n > 1<<63-1 {
		return 0, fmt.Errorf("amount %q out of range", amount)
	}
	return int64(n), nil
}

// formatWithDecimals converts integer to decimal string by inserting decimal point
// Example: formatWithDecimals(24981836, 9) = "0.024981836"
func formatWithDecimals(value uint64, decimals int) string {
	s := strconv.FormatUint(value, 10)

	for len(s) <= decimals {
		s = "0" + s
	}

	pos := len(s) - decimals
	return s[:pos] + "." + s[pos:]
}

// parseWithDecimals converts decimal string to integer by removing decimal point
// Example: parseWithDecimals("0.024981836", 9) = 24981836
func parseWithDecimals(s string, decimals int) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty string")
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, fmt.Errorf("invalid decimal format")
	}

	whole := parts[0]
	if whole == "" {
		whole = "0"
	}
	frac := ""
	if len(parts) == 2 {
		frac = parts[1]
	}

	// Amounts finer than the base unit are rejected rather than truncated.
	if len(frac) > decimals {
		if strings.Trim(frac[decimals:], "0") != "" {
			return 0, fmt.Errorf("more than %d decimals", decimals)
		}
		frac = frac[:decimals]
	}
	frac += strings.Repeat("0", decimals-len(frac))

	return strconv.ParseUint(whole+frac, 10, 64)
}
