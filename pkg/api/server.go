package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/shopspring/decimal"

	"github.com/AnDev002/cpotrade/pkg/app/core/account"
	"github.com/AnDev002/cpotrade/pkg/app/core/funding"
	"github.com/AnDev002/cpotrade/pkg/app/core/orderbook"
	"github.com/AnDev002/cpotrade/pkg/app/spot"
)

// Server handles REST API and WebSocket connections
type Server struct {
	engine *spot.Engine
	desk   *funding.Desk
	router *mux.Router
	hub    *Hub // WebSocket hub

	allowedOrigins []string
}

// NewServer creates a new API server over the trading engine and funding desk
func NewServer(engine *spot.Engine, desk *funding.Desk, allowedOrigins []string) *Server {
	s := &Server{
		engine:         engine,
		desk:           desk,
		router:         mux.NewRouter(),
		hub:            NewHub(),
		allowedOrigins: allowedOrigins,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// API v1 routes
	api := s.router.PathPrefix("/api/v1").Subrouter()

	// Market endpoints
	api.HandleFunc("/markets", s.handleGetMarkets).Methods("GET")
	api.HandleFunc("/markets/{symbol}", s.handleGetMarket).Methods("GET")
	api.HandleFunc("/markets/{symbol}/orderbook", s.handleGetOrderbook).Methods("GET")
	api.HandleFunc("/markets/{symbol}/trades", s.handleGetTrades).Methods("GET")

	// Account endpoints
	api.HandleFunc("/accounts/{id}/balances", s.handleGetBalances).Methods("GET")

	// Order submission
	api.HandleFunc("/orders", s.handleSubmitOrder).Methods("POST")
	api.HandleFunc("/orders/cancel", s.handleCancelOrder).Methods("POST")

	// Funding workflow
	api.HandleFunc("/funding/deposits", s.handleSubmitDeposit).Methods("POST")
	api.HandleFunc("/funding/withdrawals", s.handleSubmitWithdrawal).Methods("POST")
	api.HandleFunc("/funding/requests", s.handleGetFundingRequests).Methods("GET")
	api.HandleFunc("/funding/requests/{id}/approve", s.handleApproveFunding).Methods("POST")
	api.HandleFunc("/funding/requests/{id}/reject", s.handleRejectFunding).Methods("POST")

	// WebSocket endpoint
	s.router.HandleFunc("/ws", s.handleWebSocket)

	// Health check
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Start starts the API server
func (s *Server) Start(addr string) error {
	// Start WebSocket hub
	go s.hub.Run()

	// CORS configuration
	c := cors.New(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	handler := c.Handler(s.router)

	log.Printf("[api] server starting on %s", addr)
	return http.ListenAndServe(addr, handler)
}

// ==============================
// REST Handlers
// ==============================

func (s *Server) handleGetMarkets(w http.ResponseWriter, r *http.Request) {
	pairs := s.engine.Pairs()

	response := make([]MarketInfo, len(pairs))
	for i, p := range pairs {
		response[i] = MarketInfo{
			Symbol:      p.Symbol,
			BaseAsset:   p.BaseAsset,
			QuoteAsset:  p.QuoteAsset,
			Status:      p.Status.String(),
			MaxPrice:    p.MaxPrice,
			MaxOrderQty: p.MaxOrderQty,
		}
	}

	respondJSON(w, response)
}

func (s *Server) handleGetMarket(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	for _, p := range s.engine.Pairs() {
		if p.Symbol == symbol {
			respondJSON(w, MarketInfo{
				Symbol:      p.Symbol,
				BaseAsset:   p.BaseAsset,
				QuoteAsset:  p.QuoteAsset,
				Status:      p.Status.String(),
				MaxPrice:    p.MaxPrice,
				MaxOrderQty: p.MaxOrderQty,
			})
			return
		}
	}

	respondError(w, http.StatusNotFound, "market not found", symbol)
}

func (s *Server) handleGetOrderbook(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	snap, err := s.engine.OrderBook(symbol)
	if err != nil {
		respondError(w, http.StatusNotFound, "orderbook not found", err.Error())
		return
	}

	response := OrderbookSnapshot{
		Symbol:    symbol,
		Bids:      toOrderInfos(snap.Bids),
		Asks:      toOrderInfos(snap.Asks),
		Timestamp: time.Now().UnixMilli(),
	}

	respondJSON(w, response)
}

func (s *Server) handleGetTrades(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	trades, err := s.engine.Trades(symbol)
	if err != nil {
		respondError(w, http.StatusNotFound, "market not found", err.Error())
		return
	}

	response := make([]TradeInfo, len(trades))
	for i, t := range trades {
		response[i] = toTradeInfo(t)
	}

	respondJSON(w, response)
}

func (s *Server) handleGetBalances(w http.ResponseWriter, r *http.Request) {
	user := mux.Vars(r)["id"]

	balances := s.engine.Balances(user)
	out := make(map[string]decimal.Decimal, len(balances))
	for asset, amount := range balances {
		out[string(asset)] = amount
	}

	respondJSON(w, BalancesInfo{User: user, Balances: out})
}

func (s *Server) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req SubmitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	var side orderbook.Side
	switch req.Side {
	case "buy":
		side = orderbook.Buy
	case "sell":
		side = orderbook.Sell
	default:
		respondError(w, http.StatusBadRequest, "invalid side", "expected buy or sell")
		return
	}

	result, err := s.engine.SubmitOrder(req.Symbol, side, req.Quantity, req.Price, req.Owner)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, spot.ErrUnknownPair) {
			status = http.StatusNotFound
		}
		respondError(w, status, "order rejected", err.Error())
		return
	}

	trades := make([]TradeInfo, len(result.Trades))
	for i, t := range result.Trades {
		trades[i] = toTradeInfo(t)
	}

	status := "filled"
	if result.RestingOrderID != "" {
		status = "resting"
		if len(result.Trades) > 0 {
			status = "partially_filled"
		}
	}

	log.Printf("[api] order submitted: owner=%s %s %s %s@%s fills=%d resting=%s",
		req.Owner, req.Symbol, req.Side, req.Quantity, req.Price, len(trades), result.RestingOrderID)

	respondJSON(w, SubmitOrderResponse{
		Status:         status,
		RestingOrderID: result.RestingOrderID,
		Trades:         trades,
	})
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	var req CancelOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.OrderID == "" {
		respondError(w, http.StatusBadRequest, "missing orderId", "")
		return
	}

	cancelled, err := s.engine.CancelOrder(req.OrderID, req.Owner)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, spot.ErrNotOwner) {
			status = http.StatusForbidden
		}
		respondError(w, status, "cancel rejected", err.Error())
		return
	}

	log.Printf("[api] cancel: id=%s owner=%s cancelled=%v", req.OrderID, req.Owner, cancelled)

	respondJSON(w, CancelOrderResponse{Cancelled: cancelled, OrderID: req.OrderID})
}

func (s *Server) handleSubmitDeposit(w http.ResponseWriter, r *http.Request) {
	s.handleSubmitFunding(w, r, funding.Deposit)
}

func (s *Server) handleSubmitWithdrawal(w http.ResponseWriter, r *http.Request) {
	s.handleSubmitFunding(w, r, funding.Withdrawal)
}

func (s *Server) handleSubmitFunding(w http.ResponseWriter, r *http.Request, kind funding.Kind) {
	var body FundingRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	var req *funding.Request
	var err error
	if kind == funding.Deposit {
		req, err = s.desk.SubmitDeposit(body.User, account.Asset(body.Asset), body.Amount)
	} else {
		req, err = s.desk.SubmitWithdrawal(body.User, account.Asset(body.Asset), body.Amount)
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, "funding request rejected", err.Error())
		return
	}

	log.Printf("[api] funding request: id=%s user=%s %s %s %s", req.ID, req.User, req.Kind, req.Amount, req.Asset)

	respondJSON(w, toFundingInfo(*req))
}

func (s *Server) handleGetFundingRequests(w http.ResponseWriter, r *http.Request) {
	var reqs []funding.Request
	if r.URL.Query().Get("status") == "pending" {
		reqs = s.desk.PendingRequests()
	} else {
		reqs = s.desk.Requests()
	}

	response := make([]FundingRequestInfo, len(reqs))
	for i, req := range reqs {
		response[i] = toFundingInfo(req)
	}

	respondJSON(w, response)
}

func (s *Server) handleApproveFunding(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.desk.Approve(id); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, funding.ErrRequestNotFound) {
			status = http.StatusNotFound
		}
		respondError(w, status, "approve failed", err.Error())
		return
	}

	req, _ := s.desk.Get(id)
	respondJSON(w, toFundingInfo(req))
}

func (s *Server) handleRejectFunding(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.desk.Reject(id); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, funding.ErrRequestNotFound) {
			status = http.StatusNotFound
		}
		respondError(w, status, "reject failed", err.Error())
		return
	}

	req, _ := s.desk.Get(id)
	respondJSON(w, toFundingInfo(req))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

// ==============================
// Broadcast Methods
// ==============================

// BroadcastTrade pushes an executed trade to subscribed WebSocket clients.
// Wired to the engine's OnTrade hook.
func (s *Server) BroadcastTrade(t spot.Trade) {
	update := TradeUpdate{
		Type:      "trade",
		Symbol:    t.Pair,
		Price:     t.Price,
		Quantity:  t.Quantity,
		Timestamp: t.Timestamp,
	}

	s.hub.BroadcastToChannel("trades:"+t.Pair, update)
	s.BroadcastOrderbook(t.Pair)
}

// BroadcastOrderbook broadcasts the current book to WebSocket clients
func (s *Server) BroadcastOrderbook(symbol string) {
	snap, err := s.engine.OrderBook(symbol)
	if err != nil {
		return
	}

	update := OrderbookUpdate{
		Type:      "orderbook",
		Symbol:    symbol,
		Bids:      toOrderInfos(snap.Bids),
		Asks:      toOrderInfos(snap.Asks),
		Timestamp: time.Now().UnixMilli(),
	}

	s.hub.BroadcastToChannel("orderbook:"+symbol, update)
}

// ==============================
// Helper Functions
// ==============================

func toOrderInfos(orders []orderbook.Order) []OrderInfo {
	out := make([]OrderInfo, len(orders))
	for i, o := range orders {
		out[i] = OrderInfo{
			ID:        o.ID,
			Symbol:    o.Pair,
			Side:      o.Side.String(),
			Owner:     o.Owner,
			Price:     o.Price,
			Quantity:  o.Quantity,
			Timestamp: o.CreatedAt,
		}
	}
	return out
}

func toTradeInfo(t spot.Trade) TradeInfo {
	return TradeInfo{
		ID:        t.ID,
		Symbol:    t.Pair,
		Buyer:     t.Buyer,
		Seller:    t.Seller,
		Price:     t.Price,
		Quantity:  t.Quantity,
		Timestamp: t.Timestamp,
	}
}

func toFundingInfo(req funding.Request) FundingRequestInfo {
	return FundingRequestInfo{
		ID:        req.ID,
		User:      req.User,
		Asset:     string(req.Asset),
		Kind:      string(req.Kind),
		Status:    string(req.Status),
		Amount:    req.Amount,
		Timestamp: req.CreatedAt,
	}
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, error string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Message: message,
	})
}
