// Package server exposes a record store as a JSON HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/etnz/dge"
	"github.com/etnz/dge/date"
	"github.com/etnz/dge/renderer"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Server serves one store. Requests are serialized on the store.
type Server struct {
	mu    sync.Mutex
	store *dge.Store
	ports []string
	log   *zap.Logger
	now   func() time.Time
}

// New returns a server for store. ports lists the ports offered to clients.
func New(store *dge.Store, ports []string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{store: store, ports: ports, log: log, now: time.Now}
}

// Handler returns the routes of the API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/records", s.listRecords)
	r.Post("/records", s.createRecord)
	r.Get("/records/{id}", s.getRecord)
	r.Delete("/records/{id}", s.deleteRecord)
	r.Patch("/records/{id}/status", s.setStatus)
	r.Get("/opportunities", s.listOpportunities)
	r.Get("/metrics", s.getMetrics)
	r.Get("/categories", s.listCategories)
	r.Post("/quote", s.quote)
	r.Get("/report", s.report)
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		fields := []zap.Field{
			zap.Int("status", ww.Status()),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		}
		switch {
		case ww.Status() >= 500:
			s.log.Error("request completed", fields...)
		case ww.Status() >= 400:
			s.log.Warn("request completed", fields...)
		default:
			s.log.Info("request completed", fields...)
		}
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, dge.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, dge.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, dge.ErrScfCapExceeded),
		errors.Is(err, dge.ErrInvalidScfTerm),
		errors.Is(err, dge.ErrInvalidPercent),
		errors.Is(err, dge.ErrInvalidPrice),
		errors.Is(err, dge.ErrInvalidCategory),
		errors.Is(err, dge.ErrInvalidService),
		errors.Is(err, dge.ErrInvalidRecord):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	writeJSON(w, statusOf(err), errorResponse{Error: err.Error()})
}

func badRequest(w http.ResponseWriter, format string, args ...any) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf(format, args...)})
}

// parseQuery reads the record filters from the URL query.
func parseQuery(r *http.Request) (dge.Query, error) {
	v := r.URL.Query()
	q := dge.Query{Category: dge.Category(v.Get("category")), Port: v.Get("port")}
	var err error
	if q.SCF, err = dge.ParseSCFFilter(v.Get("scf")); err != nil {
		return q, err
	}
	if x := v.Get("min_amount"); x != "" {
		m, err := dge.ParseMoney(x, dge.USD)
		if err != nil {
			return q, fmt.Errorf("invalid min_amount: %w", err)
		}
		q.MinSCFAmount = &m
	}
	if x := v.Get("max_rate"); x != "" {
		p, err := dge.ParsePercent(x)
		if err != nil {
			return q, fmt.Errorf("invalid max_rate: %w", err)
		}
		q.MaxInterestRate = &p
	}
	if x := v.Get("max_days"); x != "" {
		d, err := strconv.Atoi(x)
		if err != nil {
			return q, fmt.Errorf("invalid max_days: %w", err)
		}
		q.MaxDurationDays = &d
	}
	return q, nil
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		badRequest(w, "%v", err)
		return
	}
	s.mu.Lock()
	records := s.store.Records()
	s.mu.Unlock()

	records = dge.Search(q.Apply(records), r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) getRecord(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	rec, err := s.store.Get(chi.URLParam(r, "id"))
	s.mu.Unlock()
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// intakeRequest is the body of POST /records.
type intakeRequest struct {
	ItemName         string          `json:"item_name"`
	HSCode           string          `json:"hs_code"`
	Quantity         int             `json:"quantity"`
	Port             string          `json:"port"`
	Reason           string          `json:"reason"`
	Category         dge.Category    `json:"category"`
	RejectionDate    date.Date       `json:"rejection_date"`
	Urgency          dge.Urgency     `json:"urgency"`
	OriginalPrice    dge.Money       `json:"original_price"`
	ValuationPercent *dge.Percent    `json:"valuation_percent"`
	File             string          `json:"file"`
	Services         []string        `json:"services"`
	SCF              *dge.SCFRequest `json:"scf"`
}

func (s *Server) createRecord(w http.ResponseWriter, r *http.Request) {
	var req intakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid body: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := dge.NewRecord(s.store.Categories(), dge.Intake{
		ItemName:      req.ItemName,
		HSCode:        req.HSCode,
		Quantity:      req.Quantity,
		Port:          req.Port,
		Reason:        req.Reason,
		Category:      req.Category,
		RejectionDate: req.RejectionDate,
		Urgency:       req.Urgency,
		OriginalPrice: req.OriginalPrice,
		Override:      req.ValuationPercent,
		Attachment:    req.File,
	}, s.now())
	if err != nil {
		s.fail(w, err)
		return
	}
	for _, name := range req.Services {
		kind, err := dge.ParseServiceKind(name)
		if err != nil {
			s.fail(w, fmt.Errorf("%w: %v", dge.ErrInvalidService, err))
			return
		}
		if _, err := rec.SelectService(kind); err != nil {
			s.fail(w, err)
			return
		}
	}
	if req.SCF != nil {
		if err := rec.RequestSCF(req.SCF.Requested, req.SCF.InterestRate, req.SCF.DurationDays); err != nil {
			s.fail(w, err)
			return
		}
	}
	if err := s.store.Append(rec); err != nil {
		s.log.Error("could not save record", zap.String("id", rec.ID), zap.Error(err))
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) deleteRecord(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	err := s.store.Delete(chi.URLParam(r, "id"))
	s.mu.Unlock()
	if err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) setStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid body: %v", err)
		return
	}
	status, err := dge.ParseStatus(req.Status)
	if err != nil {
		badRequest(w, "%v", err)
		return
	}

	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.SetStatus(id, status); err != nil {
		s.fail(w, err)
		return
	}
	rec, err := s.store.Get(id)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) listOpportunities(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		badRequest(w, "%v", err)
		return
	}
	s.mu.Lock()
	records := s.store.Records()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, dge.Opportunities(q.Apply(records)))
}

func (s *Server) getMetrics(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		badRequest(w, "%v", err)
		return
	}
	s.mu.Lock()
	records := s.store.Records()
	s.mu.Unlock()

	m := dge.NewMetrics(q.Apply(records))
	if m == nil {
		m = &dge.Metrics{TotalValued: dge.USDollars(0)}
	}
	writeJSON(w, http.StatusOK, m)
}

type categoryResponse struct {
	Category dge.Category `json:"category"`
	Percent  dge.Percent  `json:"percent"`
}

type categoriesResponse struct {
	Categories []categoryResponse `json:"categories"`
	Ports      []string           `json:"ports"`
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	t := s.store.Categories()
	var resp categoriesResponse
	for _, c := range t.Sorted() {
		p, _ := t.Default(c)
		resp.Categories = append(resp.Categories, categoryResponse{Category: c, Percent: p})
	}
	resp.Ports = append(resp.Ports, s.ports...)
	writeJSON(w, http.StatusOK, resp)
}

// quoteRequest is the body of POST /quote.
type quoteRequest struct {
	Category         dge.Category    `json:"category"`
	OriginalPrice    dge.Money       `json:"original_price"`
	ValuationPercent *dge.Percent    `json:"valuation_percent"`
	SCF              *dge.SCFRequest `json:"scf"`
}

func (s *Server) quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid body: %v", err)
		return
	}
	q, err := s.store.Categories().Quote(req.Category, req.OriginalPrice, req.ValuationPercent, req.SCF)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// report serves the metrics and the opportunities as an HTML page.
func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	records := s.store.Records()
	s.mu.Unlock()

	md := renderer.MetricsMarkdown(dge.NewMetrics(records)) + "\n" + renderer.OpportunitiesMarkdown(records)
	html, err := renderer.HTML(md)
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, html)
}
