package api

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/zkrest/zkrest/server/internal/metrics"
	"github.com/zkrest/zkrest/server/internal/nodepath"
	"github.com/zkrest/zkrest/server/internal/service"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// faultBody is sent with every 500 response.
const faultBody = "<html><body><h1>500 Internal Error</h1></body></html>"

//go:embed greeting.html
var greetingHTML string

var greetingTmpl = template.Must(template.New("greeting").Parse(greetingHTML))

// Options configures a Handler. All fields are optional.
type Options struct {
	// Version is shown on the greeting page.
	Version string

	Logger *slog.Logger

	// Metrics, when set, counts faults and is served at /metrics.
	Metrics *metrics.Metrics

	// Middleware wraps the /v1/ operation routes, e.g. for authentication.
	Middleware func(http.Handler) http.Handler
}

// Handler is the HTTP handler for the gateway.
type Handler struct {
	svc  *service.Service
	opts Options
	log  *slog.Logger
	mux  *http.ServeMux
}

// New creates a Handler serving svc and registers all routes.
func New(svc *service.Service, opts Options) http.Handler {
	h := &Handler{svc: svc, opts: opts, log: opts.Logger, mux: http.NewServeMux()}
	if h.log == nil {
		h.log = slog.Default()
	}

	wrap := opts.Middleware
	if wrap == nil {
		wrap = func(next http.Handler) http.Handler { return next }
	}

	h.mux.HandleFunc("GET /{$}", h.greeting)
	h.mux.Handle("GET /v1/tree/{path...}", wrap(h.operation(h.tree)))
	h.mux.Handle("GET /v1/list/{path...}", wrap(h.operation(h.list)))
	h.mux.Handle("GET /v1/get/{path...}", wrap(h.operation(h.get)))
	h.mux.Handle("PUT /v1/set/{path...}", wrap(h.operation(h.set)))
	h.mux.Handle("DELETE /v1/delete/{path...}", wrap(h.operation(h.delete)))
	if opts.Metrics != nil {
		h.mux.Handle("GET /metrics", opts.Metrics.Handler())
	}

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := r.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(RequestIDHeader, id)

	sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
	defer func() {
		if v := recover(); v != nil {
			err := fmt.Errorf("panic: %v", v)
			if sw.wroteHeader {
				// Too late for a 500; the client sees a truncated response.
				h.logFault(r, id, err)
			} else {
				h.fault(sw, r, id, err)
			}
		}
		h.log.Debug("api: request",
			"request_id", id,
			"method", r.Method,
			"url", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start),
		)
	}()

	h.mux.ServeHTTP(sw, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
}

// --- route handlers ---------------------------------------------------------

// greeting serves GET /, a small HTML page showing the version.
func (h *Handler) greeting(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := greetingTmpl.Execute(w, struct{ Version string }{h.opts.Version}); err != nil {
		h.log.Warn("api: render greeting", "err", err)
	}
}

// opFunc runs one gateway operation for a resolved node path.
type opFunc func(r *http.Request, path string) (service.Result, error)

// operation resolves the node path from the route wildcard, runs fn and
// writes the envelope. Operation errors are reported in the body with 200;
// anything fn returns as an error is a fault.
func (h *Handler) operation(fn opFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := nodepath.FromWildcard(r.PathValue("path"))
		res, err := fn(r, path)
		if err != nil {
			h.fault(w, r, requestID(r.Context()), err)
			return
		}
		jsonResp(w, http.StatusOK, NewResponse(res))
	})
}

func (h *Handler) tree(r *http.Request, path string) (service.Result, error) {
	return h.svc.Tree(r.Context(), path)
}

func (h *Handler) list(r *http.Request, path string) (service.Result, error) {
	return h.svc.List(r.Context(), path)
}

func (h *Handler) get(r *http.Request, path string) (service.Result, error) {
	return h.svc.Get(r.Context(), path)
}

func (h *Handler) set(r *http.Request, path string) (service.Result, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return service.Result{}, fmt.Errorf("read request body: %w", err)
	}
	return h.svc.Set(r.Context(), path, data)
}

func (h *Handler) delete(r *http.Request, path string) (service.Result, error) {
	return h.svc.Delete(r.Context(), path)
}

// --- helpers ----------------------------------------------------------------

// fault answers with 500 after an error outside any store operation.
func (h *Handler) fault(w http.ResponseWriter, r *http.Request, id string, err error) {
	h.logFault(r, id, err)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	io.WriteString(w, faultBody) //nolint:errcheck
}

func (h *Handler) logFault(r *http.Request, id string, err error) {
	h.log.Error("api: internal error",
		"request_id", id, "method", r.Method, "url", r.URL.Path, "err", err)
	h.opts.Metrics.IncFault()
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// JSONError writes a bare error body. It is used by middleware that rejects
// a request before any operation runs.
func JSONError(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Status: StatusError, Error: msg})
}

type requestIDKey struct{}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// statusWriter remembers the status code for the request log.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}
