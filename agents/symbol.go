package agents

import (
	"fmt"
	"regexp"
	"strings"

	"stockscope/services"
)

var symbolPattern = regexp.MustCompile(`^[A-Z.]+$`)

// ValidateSymbol normalizes and validates a ticker symbol. The input
// is trimmed and uppercased; the result must be 1-5 characters of
// A-Z and dots, with no leading, trailing or consecutive dots.
func ValidateSymbol(raw string) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(raw))

	if symbol == "" {
		return "", services.NewStockDataError(services.KindInvalidSymbol, "validate_symbol", "input",
			fmt.Errorf("symbol is empty"))
	}
	if len(symbol) > 5 {
		return "", services.NewStockDataError(services.KindInvalidSymbol, "validate_symbol", "input",
			fmt.Errorf("symbol %q exceeds 5 characters", symbol))
	}
	if !symbolPattern.MatchString(symbol) {
		return "", services.NewStockDataError(services.KindInvalidSymbol, "validate_symbol", "input",
			fmt.Errorf("symbol %q contains invalid characters", symbol))
	}
	if strings.HasPrefix(symbol, ".") || strings.HasSuffix(symbol, ".") || strings.Contains(symbol, "..") {
		return "", services.NewStockDataError(services.KindInvalidSymbol, "validate_symbol", "input",
			fmt.Errorf("symbol %q has misplaced dots", symbol))
	}

	return symbol, nil
}
