package cart

import (
	"bytes"
	"context"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/fxpgr/go-crypto-cart/api"
	"github.com/fxpgr/go-crypto-cart/config"
	"github.com/fxpgr/go-crypto-cart/models"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type placedOrder struct {
	symbol string
	amount float64
}

type fakeExchange struct {
	has        map[api.Capability]bool
	balance    map[string]*models.Balance
	prices     map[string]float64
	failOn     string
	tickerErr  error
	tickerReqs []string
	orders     []placedOrder
}

func newFakeExchange(usd float64, prices map[string]float64) *fakeExchange {
	return &fakeExchange{
		has: map[api.Capability]bool{
			api.FetchBalance: true,
			api.FetchTickers: true,
			api.CreateOrder:  true,
		},
		balance: map[string]*models.Balance{"USD": models.NewBalance(usd, 0)},
		prices:  prices,
	}
}

func (f *fakeExchange) ID() string { return "fake" }

func (f *fakeExchange) Has(c api.Capability) bool { return f.has[c] }

func (f *fakeExchange) FetchBalance(ctx context.Context) (map[string]*models.Balance, error) {
	return f.balance, nil
}

func (f *fakeExchange) FetchTickers(ctx context.Context, symbols []string) (map[string]*models.Ticker, error) {
	f.tickerReqs = append(f.tickerReqs, symbols...)
	if f.tickerErr != nil {
		return nil, f.tickerErr
	}
	tickers := make(map[string]*models.Ticker)
	for _, s := range symbols {
		if p, ok := f.prices[s]; ok {
			tickers[s] = &models.Ticker{Symbol: s, Last: p}
		}
	}
	return tickers, nil
}

func (f *fakeExchange) CreateMarketBuyOrder(ctx context.Context, symbol string, amount float64) (*models.Order, error) {
	if symbol == f.failOn {
		return nil, errors.New("rejected")
	}
	f.orders = append(f.orders, placedOrder{symbol, amount})
	return &models.Order{ExchangeOrderID: symbol, Symbol: symbol, Amount: amount}, nil
}

func newTestBot(ex api.Exchange, input string) (*Bot, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return NewBot(ex, NewPrompter(strings.NewReader(input), out)), out
}

func TestShoppingListKeepsFirstInsertionOrder(t *testing.T) {
	l := NewShoppingList()
	l.Add("btc", decimal.NewFromInt(100))
	l.Add("ETH", decimal.NewFromInt(50))
	l.Add("BTC", decimal.NewFromInt(20))
	items := l.Items()
	if len(items) != 2 || items[0].Coin != "BTC" || items[1].Coin != "ETH" {
		t.Fatalf("ShoppingList: unexpected items %v", items)
	}
	if !items[0].Amount.Equal(decimal.NewFromInt(20)) {
		t.Errorf("ShoppingList: Expected %v. Got %v", 20, items[0].Amount)
	}
	if !l.Total().Equal(decimal.NewFromInt(70)) {
		t.Errorf("ShoppingList: Expected %v. Got %v", 70, l.Total())
	}
}

func TestBotsDoNotShareLists(t *testing.T) {
	a, _ := newTestBot(newFakeExchange(0, nil), "")
	b, _ := newTestBot(newFakeExchange(0, nil), "")
	a.ShoppingList().Add("BTC", decimal.NewFromInt(1))
	if b.ShoppingList().Len() != 0 {
		t.Error("Bot: shopping lists must not be shared")
	}
}

func TestBuildShoppingList(t *testing.T) {
	input := "btc\n100\ny\n\nETH\nfifty\n-5\n50\nY\nbtc\n10.5\nn\n"
	bot, out := newTestBot(newFakeExchange(0, nil), input)
	if err := bot.BuildShoppingList(); err != nil {
		t.Fatal(err)
	}
	items := bot.ShoppingList().Items()
	if len(items) != 2 {
		t.Fatalf("BuildShoppingList: unexpected items %v", items)
	}
	if items[0].Coin != "BTC" || !items[0].Amount.Equal(decimal.RequireFromString("10.5")) {
		t.Errorf("BuildShoppingList: unexpected first item %v", items[0])
	}
	if items[1].Coin != "ETH" || !items[1].Amount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("BuildShoppingList: unexpected second item %v", items[1])
	}
	if n := strings.Count(out.String(), "Please enter a positive number."); n != 2 {
		t.Errorf("BuildShoppingList: expected 2 re-prompts, got %d", n)
	}
}

func TestBuildShoppingListEOF(t *testing.T) {
	bot, _ := newTestBot(newFakeExchange(0, nil), "BTC\n")
	if err := bot.BuildShoppingList(); err != io.EOF {
		t.Errorf("BuildShoppingList: Expected %v. Got %v", io.EOF, err)
	}
}

func TestCheckoutBuysEverything(t *testing.T) {
	ex := newFakeExchange(200, map[string]float64{"BTC/USD": 50000, "ETH/USD": 2000})
	bot, out := newTestBot(ex, "y\n")
	bot.ShoppingList().Add("BTC", decimal.NewFromInt(100))
	bot.ShoppingList().Add("ETH", decimal.NewFromInt(50))
	if err := bot.Checkout(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(ex.orders) != 2 {
		t.Fatalf("Checkout: Expected %v orders. Got %v", 2, ex.orders)
	}
	if ex.orders[0].symbol != "BTC/USD" || math.Abs(ex.orders[0].amount-0.002) > 1e-12 {
		t.Errorf("Checkout: unexpected first order %+v", ex.orders[0])
	}
	if ex.orders[1].symbol != "ETH/USD" || math.Abs(ex.orders[1].amount-0.025) > 1e-12 {
		t.Errorf("Checkout: unexpected second order %+v", ex.orders[1])
	}
	for _, want := range []string{
		"- $100 of BTC.",
		"Your available USD balance is: $200.00",
		"Your total purchase amount is: $150",
		"BTC Market Price: $50000",
		"$100 of BTC is 0.002BTC.",
		"Market buy order for ETH, completed.",
		"Payment Complete.",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Checkout: output is missing %q:\n%s", want, out.String())
		}
	}
}

func TestCheckoutQuantityTimesPriceIsAmount(t *testing.T) {
	prices := map[string]float64{"BTC/USD": 43127.91, "ETH/USD": 2291.37, "SOL/USD": 98.765}
	ex := newFakeExchange(1000, prices)
	bot, _ := newTestBot(ex, "y\n")
	amounts := map[string]float64{"BTC": 123.45, "ETH": 77.7, "SOL": 12}
	for _, coin := range []string{"BTC", "ETH", "SOL"} {
		bot.ShoppingList().Add(coin, decimal.NewFromFloat(amounts[coin]))
	}
	if err := bot.Checkout(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(ex.orders) != 3 {
		t.Fatalf("Checkout: Expected %v orders. Got %v", 3, len(ex.orders))
	}
	for _, o := range ex.orders {
		coin := strings.TrimSuffix(o.symbol, "/USD")
		if got := o.amount * prices[o.symbol]; math.Abs(got-amounts[coin]) > 1e-9 {
			t.Errorf("Checkout: %s quantity %v x price %v = %v, want %v", coin, o.amount, prices[o.symbol], got, amounts[coin])
		}
	}
}

func TestCheckoutInsufficientFunds(t *testing.T) {
	ex := newFakeExchange(100, map[string]float64{"BTC/USD": 50000})
	bot, out := newTestBot(ex, "y\n")
	bot.ShoppingList().Add("BTC", decimal.NewFromInt(500))
	if err := bot.Checkout(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "You have insufficient funds for this purchase.") {
		t.Errorf("Checkout: missing insufficient funds message:\n%s", out.String())
	}
	if strings.Contains(out.String(), "Are you ready to checkout?") {
		t.Error("Checkout: must not ask for confirmation")
	}
	if len(ex.tickerReqs) != 0 || len(ex.orders) != 0 {
		t.Errorf("Checkout: expected no ticker fetch and no orders, got %v %v", ex.tickerReqs, ex.orders)
	}
}

func TestCheckoutBalanceIsRoundedToCents(t *testing.T) {
	ex := newFakeExchange(99.996, map[string]float64{"BTC/USD": 50000})
	bot, out := newTestBot(ex, "n\n")
	bot.ShoppingList().Add("BTC", decimal.NewFromInt(100))
	if err := bot.Checkout(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Your available USD balance is: $100.00") {
		t.Errorf("Checkout: balance should be rounded:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Are you ready to checkout?") {
		t.Error("Checkout: a rounded balance equal to the total should reach confirmation")
	}
}

func TestCheckoutMissingUSDBalance(t *testing.T) {
	ex := newFakeExchange(0, nil)
	ex.balance = map[string]*models.Balance{"BTC": models.NewBalance(1, 0)}
	bot, out := newTestBot(ex, "")
	bot.ShoppingList().Add("BTC", decimal.NewFromInt(1))
	if err := bot.Checkout(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Your available USD balance is: $0.00") {
		t.Errorf("Checkout: missing USD should count as zero:\n%s", out.String())
	}
}

func TestCheckoutDeclined(t *testing.T) {
	for _, answer := range []string{"n", "N", "yes", ""} {
		ex := newFakeExchange(200, map[string]float64{"BTC/USD": 50000})
		bot, out := newTestBot(ex, answer+"\n")
		bot.ShoppingList().Add("BTC", decimal.NewFromInt(100))
		if err := bot.Checkout(context.Background()); err != nil {
			t.Fatal(err)
		}
		if len(ex.orders) != 0 || len(ex.tickerReqs) != 0 {
			t.Errorf("Checkout(%q): expected no orders, got %v", answer, ex.orders)
		}
		if !strings.Contains(out.String(), "Exiting now.") {
			t.Errorf("Checkout(%q): missing exit message", answer)
		}
	}
}

func TestCheckoutWithoutFetchBalance(t *testing.T) {
	ex := newFakeExchange(200, nil)
	delete(ex.has, api.FetchBalance)
	bot, out := newTestBot(ex, "")
	bot.ShoppingList().Add("BTC", decimal.NewFromInt(100))
	if err := bot.Checkout(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Sorry, this exchange doesn't support fetchBalance.") {
		t.Errorf("Checkout: missing capability message:\n%s", out.String())
	}
}

func TestCheckoutBuildsListWhenEmpty(t *testing.T) {
	ex := newFakeExchange(200, map[string]float64{"BTC/USD": 50000})
	bot, _ := newTestBot(ex, "BTC\n100\nn\ny\n")
	if err := bot.Checkout(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(ex.orders) != 1 {
		t.Errorf("Checkout: Expected %v orders. Got %v", 1, ex.orders)
	}
}

func TestProcessPaymentWithoutCreateOrder(t *testing.T) {
	ex := newFakeExchange(200, map[string]float64{"BTC/USD": 50000, "ETH/USD": 2000})
	delete(ex.has, api.CreateOrder)
	bot, out := newTestBot(ex, "")
	bot.ShoppingList().Add("BTC", decimal.NewFromInt(100))
	bot.ShoppingList().Add("ETH", decimal.NewFromInt(50))
	orders := bot.ProcessPayment(context.Background())
	if len(orders) != 0 || len(ex.orders) != 0 {
		t.Errorf("ProcessPayment: Expected no orders. Got %v", ex.orders)
	}
	if len(ex.tickerReqs) != 1 || ex.tickerReqs[0] != "BTC/USD" {
		t.Errorf("ProcessPayment: remaining items must be untouched, got %v", ex.tickerReqs)
	}
	if !strings.Contains(out.String(), "Sorry, this exchange doesn't support createOrder.") {
		t.Errorf("ProcessPayment: missing capability message:\n%s", out.String())
	}
}

func TestProcessPaymentWithoutFetchTickers(t *testing.T) {
	ex := newFakeExchange(200, map[string]float64{"BTC/USD": 50000})
	delete(ex.has, api.FetchTickers)
	bot, out := newTestBot(ex, "")
	bot.ShoppingList().Add("BTC", decimal.NewFromInt(100))
	if orders := bot.ProcessPayment(context.Background()); len(orders) != 0 {
		t.Errorf("ProcessPayment: Expected no orders. Got %v", orders)
	}
	if len(ex.tickerReqs) != 0 {
		t.Errorf("ProcessPayment: expected no ticker fetch, got %v", ex.tickerReqs)
	}
	if !strings.Contains(out.String(), "Sorry, this exchange doesn't support fetchTickers.") {
		t.Errorf("ProcessPayment: missing capability message:\n%s", out.String())
	}
}

func TestProcessPaymentStopsAtFirstFailure(t *testing.T) {
	prices := map[string]float64{"BTC/USD": 50000, "ETH/USD": 2000, "SOL/USD": 100}
	ex := newFakeExchange(1000, prices)
	ex.failOn = "ETH/USD"
	bot, out := newTestBot(ex, "")
	for _, coin := range []string{"BTC", "ETH", "SOL"} {
		bot.ShoppingList().Add(coin, decimal.NewFromInt(10))
	}
	orders := bot.ProcessPayment(context.Background())
	if len(orders) != 1 || orders[0].Symbol != "BTC/USD" {
		t.Errorf("ProcessPayment: Expected only the BTC order. Got %v", orders)
	}
	for _, s := range ex.tickerReqs {
		if s == "SOL/USD" {
			t.Error("ProcessPayment: items after a failure must not be priced")
		}
	}
	if !strings.Contains(out.String(), "Sorry, there was a problem placing your order for ETH.") {
		t.Errorf("ProcessPayment: missing failure message:\n%s", out.String())
	}
}

func TestProcessPaymentWithoutPrice(t *testing.T) {
	ex := newFakeExchange(1000, map[string]float64{"ETH/USD": 2000})
	bot, out := newTestBot(ex, "")
	bot.ShoppingList().Add("DOGE", decimal.NewFromInt(10))
	bot.ShoppingList().Add("ETH", decimal.NewFromInt(10))
	if orders := bot.ProcessPayment(context.Background()); len(orders) != 0 {
		t.Errorf("ProcessPayment: Expected no orders. Got %v", orders)
	}
	if !strings.Contains(out.String(), "Could not get a market price for DOGE/USD.") {
		t.Errorf("ProcessPayment: missing price message:\n%s", out.String())
	}

	ex = newFakeExchange(1000, nil)
	ex.tickerErr = errors.New("timeout")
	bot, _ = newTestBot(ex, "")
	bot.ShoppingList().Add("BTC", decimal.NewFromInt(10))
	if orders := bot.ProcessPayment(context.Background()); len(orders) != 0 {
		t.Errorf("ProcessPayment: Expected no orders. Got %v", orders)
	}
}

func TestResolveExchangeID(t *testing.T) {
	p := NewPrompter(strings.NewReader(""), io.Discard)
	id, err := ResolveExchangeID(p, "Kraken")
	if err != nil || id != "kraken" {
		t.Errorf("ResolveExchangeID: Expected %v. Got %v %v", "kraken", id, err)
	}

	out := &bytes.Buffer{}
	p = NewPrompter(strings.NewReader("mtgox\n\nkucoin\n"), out)
	id, err = ResolveExchangeID(p, "ftx")
	if err != nil || id != "kucoin" {
		t.Errorf("ResolveExchangeID: Expected %v. Got %v %v", "kucoin", id, err)
	}
	if n := strings.Count(out.String(), "Invalid exchange."); n != 3 {
		t.Errorf("ResolveExchangeID: expected 3 invalid messages, got %d:\n%s", n, out.String())
	}
	if n := strings.Count(out.String(), "Please Select an Exchange:"); n != 3 {
		t.Errorf("ResolveExchangeID: expected 3 prompts, got %d", n)
	}
	for _, ex := range api.Exchanges() {
		if !strings.Contains(out.String(), ex) {
			t.Errorf("ResolveExchangeID: exchange %s not listed", ex)
		}
	}

	p = NewPrompter(strings.NewReader("mtgox\n"), io.Discard)
	if _, err := ResolveExchangeID(p, ""); err != io.EOF {
		t.Errorf("ResolveExchangeID: Expected %v. Got %v", io.EOF, err)
	}
}

func TestResolveCredentials(t *testing.T) {
	cfg := &config.Config{APIKey: "key"}
	out := &bytes.Buffer{}
	p := NewPrompter(strings.NewReader("\nsecret\npass\n"), out)
	creds, err := ResolveCredentials(p, cfg, "kucoin")
	if err != nil {
		t.Fatal(err)
	}
	if creds.APIKey != "key" || creds.Secret != "secret" || creds.Passphrase != "pass" {
		t.Errorf("ResolveCredentials: unexpected %#v", creds)
	}
	if strings.Contains(out.String(), "API key:") {
		t.Error("ResolveCredentials: configured key must not be asked for")
	}

	p = NewPrompter(strings.NewReader(""), io.Discard)
	creds, err = ResolveCredentials(p, &config.Config{APIKey: "k", APISecret: "s"}, "binance")
	if err != nil {
		t.Fatal(err)
	}
	if creds.Passphrase != "" {
		t.Errorf("ResolveCredentials: binance needs no passphrase, got %q", creds.Passphrase)
	}
}
