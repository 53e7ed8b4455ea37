package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimemonitor/internal/domain"
	apimw "github.com/hamed0406/uptimemonitor/internal/httpapi/middleware"
	"github.com/hamed0406/uptimemonitor/internal/repo"
	"github.com/hamed0406/uptimemonitor/internal/scheduler"
)

const defaultIntervalSeconds = 60

// PhaseReporter exposes the scheduler state on /health.
type PhaseReporter interface {
	Phase() scheduler.Phase
}

type Server struct {
	Logger    *zap.Logger
	Monitors  repo.MonitorAdmin
	Scheduler PhaseReporter
	validate  *payloadValidator
}

func NewServer(l *zap.Logger, monitors repo.MonitorAdmin, sched PhaseReporter) *Server {
	return &Server{Logger: l, Monitors: monitors, Scheduler: sched, validate: newPayloadValidator()}
}

// Router mounts the API. Reads need a public or admin key, writes an admin
// key; each group has its own per-IP rate limit.
func (s *Server) Router(keys apimw.Keys, allowedOrigins []string, pubRPM, pubBurst, admRPM, admBurst int) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.accessLog)
	if len(allowedOrigins) == 0 {
		r.Use(cors.AllowAll().Handler)
	} else {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-API-Key"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", s.handleHealth)

	r.Route("/monitors", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(apimw.RateLimit(pubRPM, pubBurst))
			r.Use(apimw.RequireAny(keys))
			r.Get("/", s.handleList)
			r.Get("/{id}", s.handleGet)
		})
		r.Group(func(r chi.Router) {
			r.Use(apimw.RateLimit(admRPM, admBurst))
			r.Use(apimw.RequireAdmin(keys))
			r.Post("/", s.handleCreate)
			r.Put("/{id}", s.handleUpdate)
			r.Delete("/{id}", s.handleDelete)
		})
	})

	return r
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.Logger.Debug("http_request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.Monitors.Ping(r.Context()); err != nil {
		s.Logger.Warn("health_ping_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "store unavailable")
		return
	}
	body := map[string]string{"status": "ok"}
	if s.Scheduler != nil {
		body["scheduler"] = s.Scheduler.Phase().String()
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ms, err := s.Monitors.List(r.Context())
	if err != nil {
		s.Logger.Warn("list_monitors_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list error")
		return
	}
	if ms == nil {
		ms = []domain.Monitor{}
	}
	writeJSON(w, http.StatusOK, ms)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	m, err := s.Monitors.Get(r.Context(), monitorID(r))
	if err != nil {
		s.storeError(w, "get_monitor_error", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := s.decode(w, r)
	if !ok {
		return
	}
	m := p.monitor()
	if err := s.Monitors.Create(r.Context(), m); err != nil {
		s.storeError(w, "create_monitor_error", err)
		return
	}
	s.Logger.Info("monitor_created",
		zap.String("monitor_id", string(m.ID)),
		zap.String("url", m.URL),
	)
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	p, ok := s.decode(w, r)
	if !ok {
		return
	}
	m := p.monitor()
	m.ID = monitorID(r)
	if err := s.Monitors.Update(r.Context(), m); err != nil {
		s.storeError(w, "update_monitor_error", err)
		return
	}
	s.Logger.Info("monitor_updated", zap.String("monitor_id", string(m.ID)))
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := monitorID(r)
	if err := s.Monitors.Delete(r.Context(), id); err != nil {
		s.storeError(w, "delete_monitor_error", err)
		return
	}
	s.Logger.Info("monitor_deleted", zap.String("monitor_id", string(id)))
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (monitorPayload, bool) {
	var p monitorPayload
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad payload")
		return p, false
	}
	p.normalize()
	if problems := s.validate.check(p); len(problems) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": problems,
		})
		return p, false
	}
	return p, true
}

func (s *Server) storeError(w http.ResponseWriter, event string, err error) {
	if errors.Is(err, repo.ErrNotFound) {
		writeError(w, http.StatusNotFound, "monitor not found")
		return
	}
	s.Logger.Warn(event, zap.Error(err))
	writeError(w, http.StatusInternalServerError, "store error")
}

func monitorID(r *http.Request) domain.MonitorID {
	return domain.MonitorID(chi.URLParam(r, "id"))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
