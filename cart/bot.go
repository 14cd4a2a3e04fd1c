package cart

import (
	"context"
	"strings"

	"github.com/fxpgr/go-crypto-cart/api"
	"github.com/fxpgr/go-crypto-cart/logger"
	"github.com/fxpgr/go-crypto-cart/models"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const quoteCurrency = "USD"

// Bot walks the user through filling a shopping list and buying it with
// market orders on one exchange.
type Bot struct {
	exchange api.Exchange
	prompter *Prompter
	list     *ShoppingList
}

func NewBot(ex api.Exchange, p *Prompter) *Bot {
	return &Bot{
		exchange: ex,
		prompter: p,
		list:     NewShoppingList(),
	}
}

func (b *Bot) ShoppingList() *ShoppingList {
	return b.list
}

// BuildShoppingList asks for coin and USD amount pairs until the user
// declines to add another.
func (b *Bot) BuildShoppingList() error {
	for {
		coin, err := b.askCoin()
		if err != nil {
			return err
		}
		amount, err := b.askAmount(coin)
		if err != nil {
			return err
		}
		b.list.Add(coin, amount)

		more, err := b.prompter.Confirm("Would you like to add another item? [y/n]")
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

func (b *Bot) askCoin() (string, error) {
	for {
		coin, err := b.prompter.Ask("Which coin would you like to buy?")
		if err != nil {
			return "", err
		}
		if coin != "" {
			return strings.ToUpper(coin), nil
		}
	}
}

func (b *Bot) askAmount(coin string) (decimal.Decimal, error) {
	for {
		answer, err := b.prompter.Ask("How much USD of " + coin + " would you like to buy?")
		if err != nil {
			return decimal.Zero, err
		}
		amount, err := decimal.NewFromString(answer)
		if err == nil && amount.IsPositive() {
			return amount, nil
		}
		b.prompter.Say("Please enter a positive number.")
	}
}

// Checkout buys the shopping list after checking the USD balance and
// asking for confirmation. Declined or unaffordable carts are not errors.
func (b *Bot) Checkout(ctx context.Context) error {
	if b.list.Len() == 0 {
		if err := b.BuildShoppingList(); err != nil {
			return err
		}
	}

	if !b.exchange.Has(api.FetchBalance) {
		b.prompter.Say("Sorry, this exchange doesn't support %s.", api.FetchBalance)
		return nil
	}
	balances, err := b.exchange.FetchBalance(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to fetch balance")
	}
	balance := decimal.Zero
	if usd, ok := balances[quoteCurrency]; ok {
		balance = decimal.NewFromFloat(usd.Total).Round(2)
	} else {
		logger.Get().Warnw("no balance reported", "exchange", b.exchange.ID(), "currency", quoteCurrency)
	}
	total := b.list.Total()

	b.prompter.Say("You will purchase:")
	for _, item := range b.list.Items() {
		b.prompter.Say("- $%s of %s.", item.Amount, item.Coin)
	}
	b.prompter.Say("Your available USD balance is: $%s", balance.StringFixed(2))
	b.prompter.Say("Your total purchase amount is: $%s", total)

	if balance.LessThan(total) {
		b.prompter.Say("You have insufficient funds for this purchase. Please remove some items from your cart.")
		return nil
	}

	ok, err := b.prompter.Confirm("Are you ready to checkout? [y/n]")
	if err != nil {
		return err
	}
	if !ok {
		b.prompter.Say("Exiting now.")
		return nil
	}

	b.prompter.Say("Beginning purchases...")
	orders := b.ProcessPayment(ctx)
	logger.Get().Infow("checkout finished", "exchange", b.exchange.ID(), "orders", len(orders), "items", b.list.Len())

	b.prompter.Say("Payment Complete. Please remember to take your items. Have a nice day!")
	return nil
}

// ProcessPayment places one market buy per item in list order. The first
// failure stops the remaining items; orders already placed stay placed.
func (b *Bot) ProcessPayment(ctx context.Context) []*models.Order {
	orders := make([]*models.Order, 0, b.list.Len())
	for _, item := range b.list.Items() {
		symbol := item.Coin + "/" + quoteCurrency

		if !b.exchange.Has(api.FetchTickers) {
			b.prompter.Say("Sorry, this exchange doesn't support %s.", api.FetchTickers)
			return orders
		}
		tickers, err := b.exchange.FetchTickers(ctx, []string{symbol})
		if err != nil {
			logger.Get().Errorw("failed to fetch ticker", "symbol", symbol, "error", err)
			b.prompter.Say("Could not get a market price for %s.", symbol)
			return orders
		}
		ticker, ok := tickers[symbol]
		if !ok || ticker.Last <= 0 {
			b.prompter.Say("Could not get a market price for %s.", symbol)
			return orders
		}
		price := decimal.NewFromFloat(ticker.Last)
		b.prompter.Say("%s Market Price: $%s", item.Coin, price)

		amountInCoin := item.Amount.Div(price)
		b.prompter.Say("$%s of %s is %s%s.", item.Amount, item.Coin, amountInCoin, item.Coin)

		if !b.exchange.Has(api.CreateOrder) {
			b.prompter.Say("Sorry, this exchange doesn't support %s.", api.CreateOrder)
			return orders
		}
		qty, _ := amountInCoin.Float64()
		order, err := b.exchange.CreateMarketBuyOrder(ctx, symbol, qty)
		if err != nil {
			logger.Get().Errorw("market buy order failed", "symbol", symbol, "amount", qty, "error", err)
			b.prompter.Say("Sorry, there was a problem placing your order for %s.", item.Coin)
			return orders
		}
		orders = append(orders, order)
		b.prompter.Say("Market buy order for %s, completed.", item.Coin)
	}
	return orders
}
