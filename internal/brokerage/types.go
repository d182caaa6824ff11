package brokerage

// Cash is the free cash balance of the brokerage account.
type Cash struct {
	Free     float64 `json:"free"`
	Currency string  `json:"currency"`
}

// Position is one open portfolio position.
type Position struct {
	Ticker       string  `json:"ticker"`
	Quantity     float64 `json:"quantity"`
	CurrentPrice float64 `json:"currentPrice"`
	PPL          float64 `json:"ppl"`
}

// MarketValue returns the current value of the position.
func (p Position) MarketValue() float64 {
	return p.Quantity * p.CurrentPrice
}

// Order is one executed order from the order history.
type Order struct {
	ID             int64   `json:"id"`
	Type           string  `json:"type"`
	Ticker         string  `json:"ticker"`
	DateExecuted   string  `json:"dateExecuted"`
	DateCreated    string  `json:"dateCreated"`
	FillPrice      float64 `json:"fillPrice"`
	FilledQuantity float64 `json:"filledQuantity"`
	Status         string  `json:"status"`
}

// EffectiveDate returns the execution timestamp, falling back to the
// creation timestamp.
func (o Order) EffectiveDate() string {
	if o.DateExecuted != "" {
		return o.DateExecuted
	}
	return o.DateCreated
}

// Dividend is one dividend payment from the dividend history.
type Dividend struct {
	Reference string  `json:"reference"`
	Ticker    string  `json:"ticker"`
	Amount    float64 `json:"amount"`
	PaidOn    string  `json:"paidOn"`
}
