package api

import (
	"context"

	"github.com/fxpgr/go-crypto-cart/api/private"
	"github.com/fxpgr/go-crypto-cart/logger"
	"github.com/fxpgr/go-crypto-cart/models"
	"github.com/pkg/errors"
)

type Capability string

const (
	FetchBalance Capability = "fetchBalance"
	FetchTickers Capability = "fetchTickers"
	CreateOrder  Capability = "createOrder"
)

// Exchange is an authenticated handle on one exchange. Callers must check
// Has before using an operation; unsupported operations return an error.
//
//go:generate mockery -name=Exchange
type Exchange interface {
	ID() string
	Has(c Capability) bool
	FetchBalance(ctx context.Context) (map[string]*models.Balance, error)
	FetchTickers(ctx context.Context, symbols []string) (map[string]*models.Ticker, error)
	CreateMarketBuyOrder(ctx context.Context, symbol string, amount float64) (*models.Order, error)
}

type exchange struct {
	id     string
	has    map[Capability]bool
	client private.PrivateClient
}

func (e *exchange) ID() string {
	return e.id
}

func (e *exchange) Has(c Capability) bool {
	return e.has[c]
}

func (e *exchange) require(c Capability) error {
	if !e.has[c] {
		return errors.Wrapf(ErrUnsupportedCapability, "%s on %s", c, e.id)
	}
	return nil
}

func (e *exchange) FetchBalance(ctx context.Context) (map[string]*models.Balance, error) {
	if err := e.require(FetchBalance); err != nil {
		return nil, err
	}
	balances, err := e.client.CompleteBalances(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch %s balance", e.id)
	}
	return balances, nil
}

func (e *exchange) FetchTickers(ctx context.Context, symbols []string) (map[string]*models.Ticker, error) {
	if err := e.require(FetchTickers); err != nil {
		return nil, err
	}
	pairs := make([]models.CurrencyPair, 0, len(symbols))
	for _, s := range symbols {
		pair, err := models.ParseSymbol(s)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, pair)
	}
	tickers, err := e.client.Tickers(ctx, pairs)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch %s tickers", e.id)
	}
	return tickers, nil
}

func (e *exchange) CreateMarketBuyOrder(ctx context.Context, symbol string, amount float64) (*models.Order, error) {
	if err := e.require(CreateOrder); err != nil {
		return nil, err
	}
	pair, err := models.ParseSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, errors.Errorf("order amount must be positive, got %v", amount)
	}
	order, err := e.client.MarketBuy(ctx, pair, amount)
	if err != nil {
		return nil, err
	}
	logger.Get().Infow("market buy order placed",
		"exchange", e.id, "symbol", symbol, "amount", amount, "order_id", order.ExchangeOrderID)
	return order, nil
}
