// Package server exposes the fulfillment workflow over a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/storeship/dhlbridge/internal/batch"
	"github.com/storeship/dhlbridge/internal/fulfillment"
	"github.com/storeship/dhlbridge/internal/labels"
	"github.com/storeship/dhlbridge/internal/telemetry"
	"github.com/storeship/dhlbridge/pkg/dhlecs"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Server is the HTTP server for the fulfillment service.
type Server struct {
	port    int
	logger  *otelzap.Logger
	metrics *telemetry.Metrics

	aggregator *batch.Aggregator
	orders     *batch.Repository
	workflow   *fulfillment.Workflow
	waybills   *labels.Waybill
	linker     *fulfillment.StoreLinker
	carrier    *dhlecs.Client
	labelDir   string
}

// Config holds server configuration.
type Config struct {
	Port     int
	LabelDir string
}

// Deps bundles the collaborators the HTTP handlers delegate to.
type Deps struct {
	Aggregator *batch.Aggregator
	Orders     *batch.Repository
	Workflow   *fulfillment.Workflow
	Waybills   *labels.Waybill
	Linker     *fulfillment.StoreLinker
	Carrier    *dhlecs.Client
}

// New creates a new server instance.
func New(cfg Config, deps Deps, logger *otelzap.Logger) *Server {
	return &Server{
		port:       cfg.Port,
		logger:     logger,
		metrics:    telemetry.NewMetrics(),
		aggregator: deps.Aggregator,
		orders:     deps.Orders,
		workflow:   deps.Workflow,
		waybills:   deps.Waybills,
		linker:     deps.Linker,
		carrier:    deps.Carrier,
		labelDir:   cfg.LabelDir,
	}
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/batch", s.handleGetBatch)
	mux.HandleFunc("POST /api/batch/items", s.handleAddItem)
	mux.HandleFunc("DELETE /api/batch/items/{barcode}", s.handleRemoveItem)
	mux.HandleFunc("POST /api/batch/submit", s.handleSubmit)
	mux.HandleFunc("POST /api/batch/reset", s.handleReset)

	mux.HandleFunc("GET /api/orders/{id}", s.handleGetOrder)
	mux.HandleFunc("GET /api/orders/{id}/waybill", s.handleGetWaybill)
	mux.HandleFunc("POST /api/orders/{id}/waybill", s.handleMergeWaybill)

	mux.HandleFunc("GET /api/source-orders/{id}", s.handleGetSourceOrder)
	mux.HandleFunc("GET /api/tracking/{awb}", s.handleGetTracking)
	mux.HandleFunc("POST /api/items", s.handleCreateItem)

	if s.labelDir != "" {
		mux.Handle("GET /labels/", http.StripPrefix("/labels/", http.FileServer(http.Dir(s.labelDir))))
	}

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	order, err := s.aggregator.Current(r.Context())
	if err != nil {
		s.writeError(w, "get_batch", err)
		return
	}
	s.writeJSON(w, http.StatusOK, order)
}

type addItemRequest struct {
	Barcode       string `json:"barcode"`
	SourceOrderID string `json:"source_order_id"`
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON: " + err.Error()})
		return
	}
	if req.Barcode == "" || req.SourceOrderID == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "barcode and source_order_id are required"})
		return
	}

	if err := s.aggregator.AddItem(r.Context(), req.Barcode, req.SourceOrderID); err != nil {
		s.writeError(w, "add_item", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"barcode": req.Barcode})
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	barcode := r.PathValue("barcode")
	if err := s.aggregator.RemoveItem(r.Context(), barcode); err != nil {
		s.writeError(w, "remove_item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.aggregator.Reset(r.Context()); err != nil {
		s.writeError(w, "reset_batch", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type submitResponse struct {
	OrderID string `json:"order_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	orderID, err := s.workflow.Finalize(r.Context())
	s.metrics.RequestDuration.WithLabelValues("submit").Observe(time.Since(start).Seconds())

	if err != nil {
		s.metrics.RecordSubmission("error")
		s.logger.Error("Batch finalization failed",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		// A non-empty order id means the order was finalized but a later
		// step failed; the caller needs both the id and the error.
		status := s.errorStatus(err)
		s.writeJSON(w, status, submitResponse{OrderID: orderID, Error: err.Error()})
		return
	}

	s.metrics.RecordSubmission("success")
	s.writeJSON(w, http.StatusOK, submitResponse{OrderID: orderID})
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.orders.Finalized(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, "get_order", err)
		return
	}
	s.writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleGetWaybill(w http.ResponseWriter, r *http.Request) {
	info, err := s.waybills.Find(r.PathValue("id"))
	if err != nil {
		s.writeError(w, "get_waybill", err)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleMergeWaybill(w http.ResponseWriter, r *http.Request) {
	info, err := s.waybills.MergeOrderLabels(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, "merge_waybill", err)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleGetSourceOrder(w http.ResponseWriter, r *http.Request) {
	link, err := s.linker.Link(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, "get_source_order", err)
		return
	}
	s.writeJSON(w, http.StatusOK, link)
}

func (s *Server) handleGetTracking(w http.ResponseWriter, r *http.Request) {
	tracking, err := s.carrier.GetTracking(r.Context(), r.PathValue("awb"))
	if err != nil {
		s.writeError(w, "get_tracking", err)
		return
	}
	s.writeJSON(w, http.StatusOK, tracking)
}

type createItemRequest struct {
	Product       string           `json:"product"`
	LabelRef      string           `json:"label_ref"`
	Value         float64          `json:"value"`
	Currency      string           `json:"currency"`
	Weight        float64          `json:"weight"`
	NatureType    string           `json:"nature_type"`
	Recipient     dhlecs.Recipient `json:"recipient"`
	Contents      []dhlecs.Content `json:"contents"`
	SourceOrderID string           `json:"source_order_id"`
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON: " + err.Error()})
		return
	}

	item, err := s.carrier.CreateItem(r.Context(), &dhlecs.ItemInfo{
		Product:    req.Product,
		LabelRef:   req.LabelRef,
		Value:      req.Value,
		Currency:   req.Currency,
		Weight:     req.Weight,
		NatureType: req.NatureType,
		Recipient:  req.Recipient,
		Contents:   req.Contents,
	})
	if err != nil {
		s.writeError(w, "create_item", err)
		return
	}

	// A created item joins the pending batch right away when its source
	// order is known.
	if req.SourceOrderID != "" {
		if err := s.aggregator.AddItem(r.Context(), item.Barcode, req.SourceOrderID); err != nil {
			s.writeError(w, "create_item", err)
			return
		}
	}

	s.writeJSON(w, http.StatusOK, item)
}

// ============================================================================
// Response helpers
// ============================================================================

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, operation string, err error) {
	status := s.errorStatus(err)
	if status == http.StatusBadGateway {
		s.metrics.RecordCarrierError(operation)
	}

	s.logger.Error("Request failed",
		zap.String("operation", operation),
		zap.Int("status", status),
		zap.Error(err),
	)
	// Counting only: handlers do not time error paths, and a zero-duration
	// observation would skew the latency histogram.
	s.metrics.RequestsTotal.WithLabelValues(operation, fmt.Sprintf("%d", status)).Inc()
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) errorStatus(err error) int {
	var apiErr *dhlecs.APIError
	switch {
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	case errors.Is(err, batch.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, labels.ErrWaybillNotFound):
		return http.StatusNotFound
	case errors.Is(err, labels.ErrMergeUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, labels.ErrNothingToMerge):
		return http.StatusConflict
	case errors.Is(err, labels.ErrInvalidPath):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
