package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"folio/internal/broker"
	"folio/internal/domain"
)

// Server serves the broker HTTP API.
type Server struct {
	broker broker.Broker
	log    *slog.Logger
}

// NewServer creates a server exposing the given broker.
func NewServer(b broker.Broker, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		broker: b,
		log:    log.With("component", "httpapi"),
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/allocation", s.handleAllocation)
	mux.HandleFunc("GET /api/cash", s.handleCash)
	mux.HandleFunc("POST /api/orders/buy", s.handleBuy)
	mux.HandleFunc("POST /api/orders/sell", s.handleSell)
}

// Handler returns an http.Handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return mux
}

func (s *Server) handleAllocation(w http.ResponseWriter, r *http.Request) {
	allocations, err := s.broker.GetCurrentAllocation(r.Context())
	if err != nil {
		s.writeBrokerError(w, "getting allocation", err)
		return
	}

	total, converted := convertAllocations(allocations)
	writeJSON(w, http.StatusOK, AllocationResponse{
		Broker:      s.broker.Name(),
		TotalValue:  total,
		Allocations: converted,
	})
}

func (s *Server) handleCash(w http.ResponseWriter, r *http.Request) {
	cash, err := s.broker.GetAccountCash(r.Context())
	if err != nil {
		s.writeBrokerError(w, "getting cash", err)
		return
	}
	writeJSON(w, http.StatusOK, CashResponse{Broker: s.broker.Name(), Cash: cash})
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	var req BuyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Symbol == "" || !req.Amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "symbol and a positive amount are required")
		return
	}

	if err := s.broker.Buy(r.Context(), req.Symbol, req.Amount); err != nil {
		s.writeBrokerError(w, "buying "+req.Symbol, err)
		return
	}
	writeJSON(w, http.StatusAccepted, OrderResponse{
		Symbol:   req.Symbol,
		Side:     string(domain.SideBuy),
		Accepted: true,
	})
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	var req SellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Symbol == "" || !req.Quantity.IsPositive() {
		writeError(w, http.StatusBadRequest, "symbol and a positive quantity are required")
		return
	}

	if err := s.broker.Sell(r.Context(), req.Symbol, req.Quantity); err != nil {
		s.writeBrokerError(w, "selling "+req.Symbol, err)
		return
	}
	writeJSON(w, http.StatusAccepted, OrderResponse{
		Symbol:   req.Symbol,
		Side:     string(domain.SideSell),
		Accepted: true,
	})
}

// writeBrokerError maps the broker's typed errors onto HTTP statuses:
// unknown instrument → 404, sizing/rejection → 422, anything else → 502.
func (s *Server) writeBrokerError(w http.ResponseWriter, action string, err error) {
	s.log.Error(action, "error", err)

	status := http.StatusBadGateway
	switch {
	case errors.Is(err, broker.ErrUnknownInstrument):
		status = http.StatusNotFound
	case errors.Is(err, broker.ErrAmountTooSmall), errors.Is(err, broker.ErrOrderRejected):
		status = http.StatusUnprocessableEntity
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
