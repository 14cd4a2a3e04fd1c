package private

import (
	"context"
	"strings"

	"github.com/fxpgr/go-crypto-cart/api/public"
	"github.com/fxpgr/go-crypto-cart/models"
	"github.com/pkg/errors"
)

//go:generate mockery -name=PrivateClient
type PrivateClient interface {
	public.PublicClient
	CompleteBalances(ctx context.Context) (map[string]*models.Balance, error)
	MarketBuy(ctx context.Context, pair models.CurrencyPair, amount float64) (*models.Order, error)
}

func NewClient(exchangeName string, creds models.Credentials, opts public.Options) (PrivateClient, error) {
	switch strings.ToLower(exchangeName) {
	case "binance":
		return NewBinanceApi(creds, public.NewBinancePublicApi(opts)), nil
	case "binanceus":
		return NewBinanceApi(creds, public.NewBinanceUSPublicApi(opts)), nil
	case "hitbtc":
		return NewHitbtcApi(creds, public.NewHitbtcPublicApi(opts)), nil
	case "kraken":
		client, err := NewKrakenApi(creds, public.NewKrakenPublicApi(opts))
		if err != nil {
			return nil, err
		}
		return client, nil
	case "kucoin":
		client, err := NewKucoinApi(creds, public.NewKucoinPublicApi(opts))
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	return nil, errors.Errorf("failed to init exchange api: unknown exchange %q", exchangeName)
}
