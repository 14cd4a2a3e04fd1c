package models

import "time"

// Ticker is a snapshot of the latest trade for a symbol such as "BTC/USD".
type Ticker struct {
	Symbol    string
	Last      float64
	Bid       float64
	Ask       float64
	Timestamp time.Time
}
