package enums

import "fmt"

// Currency is the closed set of billing currencies.
type Currency string

const (
	CurrencyMZN Currency = "MZN"
	CurrencyUSD Currency = "USD"
)

var validCurrencies = []Currency{CurrencyMZN, CurrencyUSD}

// IsValid reports whether the value is a known Currency.
func (c Currency) IsValid() bool {
	for _, candidate := range validCurrencies {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCurrency converts raw input into a Currency.
func ParseCurrency(value string) (Currency, error) {
	for _, candidate := range validCurrencies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid currency %q", value)
}
