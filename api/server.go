// Package api provides the HTTP call/response surface over the
// contract engines.
//
// It exposes endpoints for initial states, schedule segments, state
// transitions, payoffs, business-day shifting, replay simulation, and
// WebSocket streaming of replay rows. The surface is stateless: every
// request carries the full terms (and state, where needed), and nothing
// is persisted.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/atpar/actus-core/internal/config"
	"github.com/atpar/actus-core/internal/engine"
	"github.com/atpar/actus-core/internal/simulation"
	"github.com/atpar/actus-core/pkg/fixedpoint"
	"github.com/atpar/actus-core/pkg/models"
	"github.com/atpar/actus-core/pkg/schedule"
)

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	cfg    *config.Config
	wsHub  *WSHub
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config) *Server {
	srv := &Server{
		cfg:   cfg,
		wsHub: NewWSHub(),
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start WebSocket hub
	go s.wsHub.Run()

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Engine operations
		r.Post("/state", s.handleInitialState)
		r.Post("/schedule", s.handleSchedule)
		r.Post("/schedule/segment", s.handleScheduleSegment)
		r.Post("/transition", s.handleTransition)
		r.Post("/payoff", s.handlePayoff)
		r.Post("/shift", s.handleShift)

		// Replay
		r.Post("/simulate", s.handleSimulate)
		r.Post("/simulate/batch", s.handleSimulateBatch)

		// WebSocket stream of replay rows
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// ════════════════════════════════════════════════════════════════════
// Request / Response types
// ════════════════════════════════════════════════════════════════════

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// TermsRequest is the body for POST /api/v1/state.
type TermsRequest struct {
	Terms *models.Terms `json:"terms"`
}

// ScheduleRequest is the body for POST /api/v1/schedule and
// /api/v1/schedule/segment. EventType selects a single cyclic stream
// for the segment endpoint; empty means the non-cyclic events.
type ScheduleRequest struct {
	Terms     *models.Terms `json:"terms"`
	Start     int64         `json:"start,omitempty"`
	End       int64         `json:"end,omitempty"`
	EventType string        `json:"event_type,omitempty"`
}

// EventSpec names one event by type and schedule time.
type EventSpec struct {
	Type models.EventType `json:"type"`
	Time int64            `json:"time"`
}

// EventInfo is one schedule entry in a response.
type EventInfo struct {
	Token models.Event     `json:"token"`
	Type  models.EventType `json:"type"`
	Time  int64            `json:"time"`
}

// TransitionRequest is the body for POST /api/v1/transition and
// /api/v1/payoff.
type TransitionRequest struct {
	Terms    *models.Terms   `json:"terms"`
	State    *models.State   `json:"state"`
	Event    EventSpec       `json:"event"`
	External *fixedpoint.Int `json:"external,omitempty"`
}

// ShiftRequest is the body for POST /api/v1/shift.
type ShiftRequest struct {
	Time                  int64                        `json:"time"`
	BusinessDayConvention models.BusinessDayConvention `json:"business_day_convention"`
	Calendar              models.Calendar              `json:"calendar"`
	MaturityDate          int64                        `json:"maturity_date,omitempty"`
}

// SimulateRequest is the body for POST /api/v1/simulate.
type SimulateRequest struct {
	Contract simulation.Contract `json:"contract"`
	Start    int64               `json:"start,omitempty"`
	End      int64               `json:"end,omitempty"`
}

// SimulateBatchRequest is the body for POST /api/v1/simulate/batch.
type SimulateBatchRequest struct {
	Contracts []simulation.Contract `json:"contracts"`
	Start     int64                 `json:"start,omitempty"`
	End       int64                 `json:"end,omitempty"`
}

// ════════════════════════════════════════════════════════════════════
// Handlers
// ════════════════════════════════════════════════════════════════════

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleInitialState(w http.ResponseWriter, r *http.Request) {
	var req TermsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Terms == nil {
		writeError(w, http.StatusBadRequest, "terms is required")
		return
	}
	eng, err := engine.ForContractType(req.Terms.ContractType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	state, err := eng.ComputeInitialState(req.Terms)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: state})
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeScheduleRequest(w, r)
	if !ok {
		return
	}
	events, err := simulation.Schedule(req.Terms, req.Start, s.windowEnd(req.Terms, req.End))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: eventInfos(events)})
}

func (s *Server) handleScheduleSegment(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeScheduleRequest(w, r)
	if !ok {
		return
	}
	eng, err := engine.ForContractType(req.Terms.ContractType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	end := s.windowEnd(req.Terms, req.End)

	var events []models.Event
	if req.EventType == "" {
		events, err = eng.ComputeNonCyclicScheduleSegment(req.Terms, req.Start, end)
	} else {
		var et models.EventType
		et, err = models.ParseEventType(req.EventType)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		events, err = eng.ComputeCyclicScheduleSegment(req.Terms, req.Start, end, et)
	}
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: eventInfos(events)})
}

func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request) {
	req, eng, ok := decodeTransitionRequest(w, r)
	if !ok {
		return
	}
	event := models.EncodeEvent(req.Event.Type, req.Event.Time)
	state, err := eng.ComputeStateForEvent(req.Terms, req.State, event, req.External)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: state})
}

func (s *Server) handlePayoff(w http.ResponseWriter, r *http.Request) {
	req, eng, ok := decodeTransitionRequest(w, r)
	if !ok {
		return
	}
	event := models.EncodeEvent(req.Event.Type, req.Event.Time)
	payoff, err := eng.ComputePayoffForEvent(req.Terms, req.State, event, req.External)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]interface{}{"payoff": payoff},
	})
}

func (s *Server) handleShift(w http.ResponseWriter, r *http.Request) {
	var req ShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	shifted := schedule.ShiftEventTime(req.Time, req.BusinessDayConvention, req.Calendar, req.MaturityDate)
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]interface{}{"time": shifted},
	})
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Contract.Terms == nil {
		writeError(w, http.StatusBadRequest, "contract terms are required")
		return
	}
	result, err := simulation.Run(r.Context(), req.Contract, req.Start, s.windowEnd(req.Contract.Terms, req.End))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	// Stream the rows to WebSocket subscribers
	for _, row := range result.Rows {
		s.wsHub.Broadcast(WSMessage{
			Type: "cashflow_row",
			Data: map[string]interface{}{
				"run_id":      result.RunID,
				"contract_id": result.ContractID,
				"row":         row,
			},
		})
	}
	s.wsHub.Broadcast(WSMessage{
		Type: "simulation_complete",
		Data: map[string]interface{}{
			"run_id":      result.RunID,
			"contract_id": result.ContractID,
			"rows":        len(result.Rows),
		},
	})

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: result})
}

func (s *Server) handleSimulateBatch(w http.ResponseWriter, r *http.Request) {
	var req SimulateBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Contracts) == 0 {
		writeError(w, http.StatusBadRequest, "contracts are required")
		return
	}
	if max := s.cfg.Simulation.MaxBatchSize; max > 0 && len(req.Contracts) > max {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("batch size %d exceeds limit %d", len(req.Contracts), max))
		return
	}
	for _, c := range req.Contracts {
		if c.Terms == nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("contract %s has no terms", c.ID))
			return
		}
	}

	end := req.End
	if end == 0 {
		for _, c := range req.Contracts {
			if h := s.windowEnd(c.Terms, 0); h > end {
				end = h
			}
		}
	}
	results, err := simulation.RunBatch(r.Context(), req.Contracts, req.Start, end)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: results})
}

// windowEnd resolves the replay window end: the explicit end when
// given, otherwise the contract horizon bounded by the configured
// horizon for open ended contracts.
func (s *Server) windowEnd(terms *models.Terms, end int64) int64 {
	if end != 0 {
		return end
	}
	years := s.cfg.Simulation.HorizonYears
	if years <= 0 {
		years = 50
	}
	fallback := time.Now().UTC().AddDate(years, 0, 0).Unix()
	return simulation.Horizon(terms, fallback)
}

func decodeScheduleRequest(w http.ResponseWriter, r *http.Request) (*ScheduleRequest, bool) {
	var req ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	if req.Terms == nil {
		writeError(w, http.StatusBadRequest, "terms is required")
		return nil, false
	}
	return &req, true
}

func decodeTransitionRequest(w http.ResponseWriter, r *http.Request) (*TransitionRequest, engine.Engine, bool) {
	var req TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, nil, false
	}
	if req.Terms == nil || req.State == nil {
		writeError(w, http.StatusBadRequest, "terms and state are required")
		return nil, nil, false
	}
	eng, err := engine.ForContractType(req.Terms.ContractType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, nil, false
	}
	return &req, eng, true
}

func eventInfos(events []models.Event) []EventInfo {
	out := make([]EventInfo, 0, len(events))
	for _, ev := range events {
		out = append(out, EventInfo{Token: ev, Type: ev.Type(), Time: ev.ScheduleTime()})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}

// ════════════════════════════════════════════════════════════════════
// WebSocket Hub
// ════════════════════════════════════════════════════════════════════

// WSMessage is a message sent over WebSocket connections.
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// WSHub manages WebSocket connections and message broadcasting.
type WSHub struct {
	mu         sync.RWMutex
	clients    map[*WSClient]bool
	broadcast  chan WSMessage
	register   chan *WSClient
	unregister chan *WSClient
}

// WSClient represents a single WebSocket connection.
type WSClient struct {
	hub  *WSHub
	send chan WSMessage
}

// NewWSHub creates a new WebSocket hub.
func NewWSHub() *WSHub {
	return &WSHub{
		clients:    make(map[*WSClient]bool),
		broadcast:  make(chan WSMessage, 256),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
	}
}

// Run starts the hub event loop.
func (h *WSHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					// Slow client; disconnect
					h.mu.RUnlock()
					h.mu.Lock()
					delete(h.clients, client)
					close(client.send)
					h.mu.Unlock()
					h.mu.RLock()
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast sends a message to all connected WebSocket clients.
func (h *WSHub) Broadcast(msg WSMessage) {
	select {
	case h.broadcast <- msg:
	default:
		// Drop message if broadcast channel is full
	}
}

// ClientCount returns the number of connected WebSocket clients.
func (h *WSHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register adds a client to the hub.
func (h *WSHub) Register(client *WSClient) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *WSHub) Unregister(client *WSClient) {
	h.unregister <- client
}
