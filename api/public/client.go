package public

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/fxpgr/go-crypto-cart/models"
	"github.com/pkg/errors"
)

//go:generate mockery -name=PublicClient
type PublicClient interface {
	// Tickers returns the latest ticker for each pair, keyed by unified
	// symbol ("BTC/USD"). Pairs the exchange does not list are omitted.
	Tickers(ctx context.Context, pairs []models.CurrencyPair) (map[string]*models.Ticker, error)
}

type Options struct {
	BaseURL    string
	HttpClient *http.Client
}

func (o Options) baseURL(def string) string {
	if o.BaseURL != "" {
		return strings.TrimRight(o.BaseURL, "/")
	}
	return def
}

func (o Options) httpClient() *http.Client {
	if o.HttpClient != nil {
		return o.HttpClient
	}
	return &http.Client{Timeout: 20 * time.Second}
}

func NewClient(exchangeName string, opts Options) (PublicClient, error) {
	switch strings.ToLower(exchangeName) {
	case "binance":
		return NewBinancePublicApi(opts), nil
	case "binanceus":
		return NewBinanceUSPublicApi(opts), nil
	case "hitbtc":
		return NewHitbtcPublicApi(opts), nil
	case "kraken":
		return NewKrakenPublicApi(opts), nil
	case "kucoin":
		return NewKucoinPublicApi(opts), nil
	}
	return nil, errors.Errorf("failed to init exchange api: unknown exchange %q", exchangeName)
}
