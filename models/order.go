package models

type OrderSide string

const (
	Buy  OrderSide = "buy"
	Sell OrderSide = "sell"
)

type OrderType string

const (
	Market OrderType = "market"
	Limit  OrderType = "limit"
)

type Order struct {
	ExchangeOrderID string
	Symbol          string
	Side            OrderSide
	Type            OrderType
	Amount          float64
	Filled          float64
	Status          string
}
