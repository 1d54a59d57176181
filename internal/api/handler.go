package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"drugtrack/m/domain"
	"drugtrack/m/internal/invoice"
	"drugtrack/m/internal/monitor"
	"drugtrack/m/internal/workflow"
)

// maxDocumentSize bounds the multipart body of a hospital application.
const maxDocumentSize = 10 << 20

// warningHeader carries a save failure on responses whose result still stands.
const warningHeader = "X-Persistence-Warning"

// Service is the workflow surface the handlers drive.
type Service interface {
	SubmitOrder(ctx context.Context, req workflow.NewOrder) (workflow.OrderOutcome, error)
	UpdateStatus(ctx context.Context, orderID string, status domain.Status) ([]domain.OrderLine, error)
	AdmitHospital(ctx context.Context, app workflow.Application) (domain.Hospital, error)
	Inventory(ctx context.Context) ([]domain.InventoryItem, error)
	Alerts(ctx context.Context, cfg monitor.Config) (monitor.Alerts, error)
	Hospitals(ctx context.Context) ([]domain.Hospital, error)
	Consumption(ctx context.Context) ([]domain.ConsumptionRecord, error)
	OrderIDs(ctx context.Context) ([]string, error)
	Track(ctx context.Context, orderID string) (workflow.Tracking, error)
	Invoice(ctx context.Context, orderID string) (invoice.Document, error)
}

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	svc     Service
	log     *slog.Logger
	metrics http.Handler
}

// New constructs a Handler. A nil metrics handler leaves /metrics unmounted.
func New(svc Service, log *slog.Logger, metrics http.Handler) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log.With("component", "api"), metrics: metrics}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}

	r.Route("/inventory", func(r chi.Router) {
		r.Get("/", h.listInventory)
		r.Get("/alerts", h.inventoryAlerts)
	})
	r.Get("/consumption", h.listConsumption)

	r.Route("/hospitals", func(r chi.Router) {
		r.Get("/", h.listHospitals)
		r.Post("/", h.admitHospital)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.listOrders)
		r.Post("/", h.submitOrder)
		r.Get("/{id}", h.trackOrder)
		r.Put("/{id}/status", h.updateStatus)
		r.Get("/{id}/invoice", h.downloadInvoice)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Inventory handlers

func (h *Handler) listInventory(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Inventory(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(items))
}

type alertsResponse struct {
	Threshold  int64                  `json:"threshold"`
	Days       int                    `json:"days"`
	LowStock   []domain.InventoryItem `json:"low_stock"`
	NearExpiry []domain.InventoryItem `json:"near_expiry"`
}

func (h *Handler) inventoryAlerts(w http.ResponseWriter, r *http.Request) {
	var cfg monitor.Config
	if v := r.URL.Query().Get("threshold"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "threshold must be a positive integer")
			return
		}
		cfg.LowStockThreshold = n
	}
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		cfg.ExpiryHorizonDays = n
	}
	alerts, err := h.svc.Alerts(r.Context(), cfg)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, alertsResponse{
		Threshold:  alerts.Threshold,
		Days:       alerts.Horizon,
		LowStock:   nonNil(alerts.LowStock),
		NearExpiry: nonNil(alerts.NearExpiry),
	})
}

func (h *Handler) listConsumption(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.Consumption(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(records))
}

// Hospital handlers

func (h *Handler) listHospitals(w http.ResponseWriter, r *http.Request) {
	hospitals, err := h.svc.Hospitals(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(hospitals))
}

func (h *Handler) admitHospital(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentSize)
	if err := r.ParseMultipartForm(maxDocumentSize); err != nil {
		respondError(w, http.StatusBadRequest, "expected a multipart form")
		return
	}
	verification, err := domain.ParseVerification(r.FormValue("verification"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	artifact, err := readDocument(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	hospital, err := h.svc.AdmitHospital(r.Context(), workflow.Application{
		Hospital: domain.Hospital{
			ID:      r.FormValue("hospital_id"),
			Name:    r.FormValue("hospital_name"),
			Place:   r.FormValue("place"),
			Address: r.FormValue("address"),
			Phone:   r.FormValue("phone"),
			Email:   r.FormValue("email"),
		},
		Verification: verification,
		Artifact:     artifact,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, hospital)
}

// readDocument returns the uploaded legal document, or nil when none was sent.
// Only PDF uploads are accepted.
func readDocument(r *http.Request) ([]byte, error) {
	file, _, err := r.FormFile("legal_document")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read legal_document: %w", err)
	}
	defer file.Close()
	body, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("unable to read legal_document: %w", err)
	}
	if len(body) > 0 && http.DetectContentType(body) != "application/pdf" {
		return nil, errors.New("legal_document must be a PDF")
	}
	return body, nil
}

// Order handlers

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	ids, err := h.svc.OrderIDs(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ids)
}

func (h *Handler) trackOrder(w http.ResponseWriter, r *http.Request) {
	tracking, err := h.svc.Track(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, tracking)
}

type orderRequest struct {
	OrderID   string          `json:"order_id"`
	Hospital  string          `json:"hospital"`
	OrderDate string          `json:"order_date"`
	Status    string          `json:"status"`
	Items     []workflow.Item `json:"items"`
}

type orderResponse struct {
	OrderID      string             `json:"order_id"`
	Lines        []domain.OrderLine `json:"lines"`
	InvoiceFile  string             `json:"invoice_file,omitempty"`
	InvoiceTotal *decimal.Decimal   `json:"invoice_total,omitempty"`
	Warning      string             `json:"warning,omitempty"`
}

func (h *Handler) submitOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	order := workflow.NewOrder{
		OrderID:  req.OrderID,
		Hospital: req.Hospital,
		Items:    req.Items,
	}
	if req.Status != "" {
		status, err := domain.ParseStatus(req.Status)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		order.Status = status
	}
	if req.OrderDate != "" {
		d, err := time.ParseInLocation(domain.DateLayout, req.OrderDate, time.Local)
		if err != nil {
			respondError(w, http.StatusBadRequest, "order_date must be YYYY-MM-DD")
			return
		}
		order.OrderDate = d
	}

	out, err := h.svc.SubmitOrder(r.Context(), order)
	warning, err := h.persistWarning(r, err, out.OrderID != "")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if warning != "" {
		w.Header().Set(warningHeader, warning)
	}
	if out.Invoice != nil && wantsSpreadsheet(r) {
		sendDocument(w, http.StatusCreated, *out.Invoice)
		return
	}
	resp := orderResponse{OrderID: out.OrderID, Lines: out.Lines, Warning: warning}
	if out.Invoice != nil {
		resp.InvoiceFile = out.Invoice.FileName
		resp.InvoiceTotal = &out.Invoice.Total
	}
	respondJSON(w, http.StatusCreated, resp)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	lines, err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), status)
	warning, err := h.persistWarning(r, err, len(lines) > 0)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if warning != "" {
		w.Header().Set(warningHeader, warning)
	}
	respondJSON(w, http.StatusOK, lines)
}

func (h *Handler) downloadInvoice(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Invoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	sendDocument(w, http.StatusOK, doc)
}

// persistWarning turns a save failure into a warning when the operation still
// produced its result. Any other error is returned unchanged.
func (h *Handler) persistWarning(r *http.Request, err error, computed bool) (string, error) {
	if err == nil || !computed || !errors.Is(err, workflow.ErrPersistence) {
		return "", err
	}
	h.log.Error("result not saved", "method", r.Method, "path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()), "err", err)
	return strings.ReplaceAll(err.Error(), "\n", "; "), nil
}

// fail maps workflow errors onto HTTP status codes.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(r, err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", "method", r.Method, "path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()), "err", err)
	}
	respondError(w, status, err.Error())
}

func statusFor(r *http.Request, err error) int {
	switch {
	case errors.Is(err, workflow.ErrPersistence):
		return http.StatusInternalServerError
	case errors.Is(err, workflow.ErrUnknownOrder) && chi.URLParam(r, "id") != "":
		return http.StatusNotFound
	case errors.Is(err, workflow.ErrDuplicateHospital):
		return http.StatusConflict
	case errors.Is(err, workflow.ErrVerificationPending),
		errors.Is(err, workflow.ErrHospitalRejected),
		errors.Is(err, workflow.ErrStatusRegression):
		return http.StatusUnprocessableEntity
	case errors.Is(err, workflow.ErrInventoryEmpty),
		errors.Is(err, workflow.ErrNoItems),
		errors.Is(err, workflow.ErrInvalidQuantity),
		errors.Is(err, workflow.ErrUnknownDrug),
		errors.Is(err, workflow.ErrInsufficientStock),
		errors.Is(err, workflow.ErrUnknownHospital),
		errors.Is(err, workflow.ErrUnknownOrder),
		errors.Is(err, workflow.ErrInvalidStatus),
		errors.Is(err, workflow.ErrArtifactRequired),
		errors.Is(err, workflow.ErrHospitalFields):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Helpers

func wantsSpreadsheet(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && mt == invoice.ContentType {
			return true
		}
	}
	return false
}

func sendDocument(w http.ResponseWriter, status int, doc invoice.Document) {
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Body)))
	w.WriteHeader(status)
	_, _ = w.Write(doc.Body)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
