package http

import (
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/text/language"

	"github.com/aretw0/mold"
	"github.com/aretw0/mold/pkg/bind"
	"github.com/aretw0/mold/pkg/message"
	"github.com/aretw0/mold/pkg/serialize"
	"github.com/aretw0/mold/pkg/typedesc"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// App is the part of *mold.Mold the playground needs.
type App interface {
	Bind(name string, target any, params bind.Params, tag language.Tag) error
	From(root any, name ...string) *serialize.Session
	Localize(err error, tag language.Tag) []message.Message
	Types() *typedesc.Registry
	Locale() language.Tag
	Defaults() serialize.Defaults
}

var _ App = (*mold.Mold)(nil)

// Server holds the playground handlers.
type Server struct {
	App      App
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

type Option func(*Server)

// WithGatherer sets the registry served on /metrics. Defaults to the
// Prometheus default gatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.Gatherer = g
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Errors []message.Message `json:"errors"`
}

// NewHandler creates the playground router:
//
//	POST /bind/{type}      bind the request parameters, answer with the bound value
//	GET  /describe/{type}  OpenAPI schema of a registered type
//	GET  /types            registered type names
//	GET  /health, /info, /metrics
func NewHandler(app App, opts ...Option) http.Handler {
	s := &Server{
		App:      app,
		Gatherer: prometheus.DefaultGatherer,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Post("/bind/{type}", s.Bind)
	r.Get("/describe/{type}", s.Describe)
	r.Get("/types", s.ListTypes)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept-Language")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Bind handles POST /bind/{type}. Parameters under the type name are bound
// into a new value, which is serialized back with the view options of the
// query. Binding failures answer 422 with one localized message per
// parameter.
func (s *Server) Bind(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "type")
	tag := Locale(r, s.App.Locale())

	typ, ok := s.App.Types().Lookup(name)
	if !ok {
		s.fail(w, http.StatusNotFound, "unknown type "+name)
		return
	}
	format, err := Negotiate(r, s.App.Defaults().Format)
	if err != nil {
		s.fail(w, http.StatusNotAcceptable, err.Error())
		return
	}
	params, err := ParamsFromRequest(r)
	if err != nil {
		s.fail(w, http.StatusBadRequest, err.Error())
		s.Logger.Warn("Bind: invalid request", "error", err)
		return
	}

	target := reflect.New(typ)
	if err := s.App.Bind(name, target.Interface(), params, tag); err != nil {
		status := http.StatusInternalServerError
		var errs *bind.Errors
		if errors.As(err, &errs) {
			status = http.StatusUnprocessableEntity
		} else {
			s.Logger.Error("Bind failed", "type", name, "error", err)
		}
		s.writeErrors(w, status, s.App.Localize(err, tag))
		return
	}

	session := s.App.From(target.Interface(), name).As(format)
	if err := configure(session, r); err != nil {
		s.fail(w, http.StatusBadRequest, err.Error())
		return
	}
	out, err := session.Serialize()
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err.Error())
		s.Logger.Error("Serialize failed", "type", name, "error", err)
		return
	}
	if err := Write(w, out, format); err != nil {
		s.Logger.Error("Bind response write failed", "error", err)
	}
}

// Describe handles GET /describe/{type}. The version query parameter hides
// fields introduced after it.
func (s *Server) Describe(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "type")
	typ, ok := s.App.Types().Lookup(name)
	if !ok {
		s.fail(w, http.StatusNotFound, "unknown type "+name)
		return
	}

	version, versioned, err := Version(r.URL.Query())
	if err != nil {
		s.fail(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, s.App.Types().OpenAPISchema(typ, version, versioned))
}

// ListTypes handles GET /types.
func (s *Server) ListTypes(w http.ResponseWriter, r *http.Request) {
	names := s.App.Types().Names()
	slices.Sort(names)
	s.writeJSON(w, http.StatusOK, names)
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "mold-http",
		"version": mold.Version,
		"locale":  s.App.Locale().String(),
	})
}

func (s *Server) fail(w http.ResponseWriter, status int, text string) {
	s.writeErrors(w, status, []message.Message{{Text: text}})
}

func (s *Server) writeErrors(w http.ResponseWriter, status int, msgs []message.Message) {
	s.writeJSON(w, status, ErrorResponse{Errors: msgs})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.MarshalToString(v)
	if err != nil {
		http.Error(w, "response encode failed", http.StatusInternalServerError)
		s.Logger.Error("response encode failed", "error", err)
		return
	}
	if err := WriteStatus(w, status, body, serialize.FormatJSON); err != nil {
		s.Logger.Error("response write failed", "error", err)
	}
}
