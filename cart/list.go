package cart

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Item struct {
	Coin   string
	Amount decimal.Decimal // USD
}

// ShoppingList keeps coins in the order they were first added. Adding a
// coin again replaces its amount in place.
type ShoppingList struct {
	items []Item
	index map[string]int
}

func NewShoppingList() *ShoppingList {
	return &ShoppingList{index: make(map[string]int)}
}

func (l *ShoppingList) Add(coin string, amount decimal.Decimal) {
	coin = strings.ToUpper(strings.TrimSpace(coin))
	if i, ok := l.index[coin]; ok {
		l.items[i].Amount = amount
		return
	}
	l.index[coin] = len(l.items)
	l.items = append(l.items, Item{Coin: coin, Amount: amount})
}

func (l *ShoppingList) Items() []Item {
	items := make([]Item, len(l.items))
	copy(items, l.items)
	return items
}

func (l *ShoppingList) Len() int {
	return len(l.items)
}

func (l *ShoppingList) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range l.items {
		total = total.Add(item.Amount)
	}
	return total
}
