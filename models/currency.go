package models

import (
	"strings"

	"github.com/pkg/errors"
)

type CurrencyPair struct {
	Trading    string `json:"trading"`
	Settlement string `json:"settlement"`
}

// ParseSymbol splits a unified symbol like "BTC/USD".
func ParseSymbol(symbol string) (CurrencyPair, error) {
	xs := strings.Split(symbol, "/")
	if len(xs) != 2 || xs[0] == "" || xs[1] == "" {
		return CurrencyPair{}, errors.Errorf("invalid symbol %q", symbol)
	}
	return CurrencyPair{
		Trading:    strings.ToUpper(xs[0]),
		Settlement: strings.ToUpper(xs[1]),
	}, nil
}

func (c CurrencyPair) Symbol() string {
	return c.Trading + "/" + c.Settlement
}
