package api

// API request/response types for REST endpoints and WebSocket messages.
// Decimal fields marshal as quoted strings so precision survives the wire.

import "github.com/shopspring/decimal"

// ==============================
// REST Response Types
// ==============================

// MarketInfo represents a trading pair's static configuration
type MarketInfo struct {
	Symbol      string          `json:"symbol"`     // e.g., "CPO-OGN"
	BaseAsset   string          `json:"baseAsset"`  // e.g., "CPO"
	QuoteAsset  string          `json:"quoteAsset"` // e.g., "OGN"
	Status      string          `json:"status"`     // "Active", "Paused"
	MaxPrice    decimal.Decimal `json:"maxPrice"`
	MaxOrderQty decimal.Decimal `json:"maxOrderQty"`
}

// OrderbookSnapshot represents current orderbook state
type OrderbookSnapshot struct {
	Symbol    string      `json:"symbol"`
	Bids      []OrderInfo `json:"bids"`      // Sorted high to low
	Asks      []OrderInfo `json:"asks"`      // Sorted low to high
	Timestamp int64       `json:"timestamp"` // Unix milliseconds
}

// OrderInfo represents one resting order
type OrderInfo struct {
	ID        string          `json:"id"`
	Symbol    string          `json:"symbol"`
	Side      string          `json:"side"` // "buy" or "sell"
	Owner     string          `json:"owner"`
	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"` // unfilled remainder
	Timestamp int64           `json:"timestamp"`
}

// TradeInfo represents an executed trade
type TradeInfo struct {
	ID        string          `json:"id"`
	Symbol    string          `json:"symbol"`
	Buyer     string          `json:"buyer"`
	Seller    string          `json:"seller"`
	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"`
	Timestamp int64           `json:"timestamp"` // Unix milliseconds
}

// BalancesInfo represents a user's balances across all assets
type BalancesInfo struct {
	User     string                     `json:"user"`
	Balances map[string]decimal.Decimal `json:"balances"` // asset -> amount
}

// FundingRequestInfo represents a deposit or withdrawal request
type FundingRequestInfo struct {
	ID        string          `json:"id"`
	User      string          `json:"user"`
	Asset     string          `json:"asset"`
	Kind      string          `json:"kind"`   // "deposit" or "withdrawal"
	Status    string          `json:"status"` // "pending", "approved", "rejected"
	Amount    decimal.Decimal `json:"amount"`
	Timestamp int64           `json:"timestamp"`
}

// ==============================
// REST Request Types
// ==============================

// SubmitOrderRequest is the payload for POST /api/v1/orders
type SubmitOrderRequest struct {
	Symbol   string          `json:"symbol"`
	Side     string          `json:"side"` // "buy" or "sell"
	Owner    string          `json:"owner"`
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// CancelOrderRequest is the payload for POST /api/v1/orders/cancel
type CancelOrderRequest struct {
	OrderID string `json:"orderId"`
	Owner   string `json:"owner"`
}

// FundingRequestBody is the payload for POST /api/v1/funding/deposits
// and POST /api/v1/funding/withdrawals
type FundingRequestBody struct {
	User   string          `json:"user"`
	Asset  string          `json:"asset"`
	Amount decimal.Decimal `json:"amount"`
}

// SubmitOrderResponse is the response from order submission
type SubmitOrderResponse struct {
	Status         string      `json:"status"`                   // "filled", "resting", "partially_filled"
	RestingOrderID string      `json:"restingOrderId,omitempty"` // id of the resting remainder
	Trades         []TradeInfo `json:"trades"`                   // fills, in execution order
}

// CancelOrderResponse is the response from order cancellation
type CancelOrderResponse struct {
	Cancelled bool   `json:"cancelled"`
	OrderID   string `json:"orderId"`
}

// ErrorResponse is returned for all errors
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ==============================
// WebSocket Message Types
// ==============================

// WSSubscribeRequest is sent by client to subscribe to channels
type WSSubscribeRequest struct {
	Op       string   `json:"op"`       // "subscribe" or "unsubscribe"
	Channels []string `json:"channels"` // e.g., ["trades:CPO-OGN", "orderbook:CPO-OGN"]
}

// TradeUpdate is broadcast when a trade executes
type TradeUpdate struct {
	Type      string          `json:"type"` // "trade"
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"`
	Timestamp int64           `json:"timestamp"`
}

// OrderbookUpdate is broadcast after the book changes
type OrderbookUpdate struct {
	Type      string      `json:"type"` // "orderbook"
	Symbol    string      `json:"symbol"`
	Bids      []OrderInfo `json:"bids"`
	Asks      []OrderInfo `json:"asks"`
	Timestamp int64       `json:"timestamp"`
}
