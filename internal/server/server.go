// Package server exposes a loaded design over HTTP.
//
// The API is read-only with respect to the served design: queries answer from
// the netlist and the current board snapshot, and POST /drc checks either the
// served design, an uploaded TOML design or a design file below Root.
//
//	GET  /health
//	GET  /nets
//	GET  /nets/{net}/pins
//	GET  /pins/{pin}/net
//	GET  /ratsnest?format=json|dot|svg&net=NAME&all=true
//	POST /drc[?path=relative/design.toml]
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/copper/pkg/buildinfo"
	"github.com/matzehuels/copper/pkg/drc"
	cerrors "github.com/matzehuels/copper/pkg/errors"
	designio "github.com/matzehuels/copper/pkg/io"
	"github.com/matzehuels/copper/pkg/netlist"
	"github.com/matzehuels/copper/pkg/observability"
	"github.com/matzehuels/copper/pkg/pipeline"
	"github.com/matzehuels/copper/pkg/render/ratsnest"
)

// DefaultAddr is the listen address used when Config.Addr is empty.
const DefaultAddr = "127.0.0.1:7420"

// maxBody caps uploaded designs.
const maxBody = 8 << 20

// Config configures a Server.
type Config struct {
	// Addr is the listen address. Defaults to DefaultAddr.
	Addr string

	// Design is the design answered by the query endpoints.
	Design *designio.Design

	// Key is the exclusion store key of Design.
	Key string

	// Root is the directory POST /drc?path= resolves against. Empty
	// disables path lookups.
	Root string

	Runner *pipeline.Runner
	Logger *log.Logger
}

// Server serves a design over HTTP.
type Server struct {
	cfg Config

	server   *http.Server
	listener net.Listener
	running  bool

	mu sync.Mutex
}

// New creates a server. Runner and Design are required.
func New(cfg Config) (*Server, error) {
	if cfg.Design == nil {
		return nil, cerrors.New(cerrors.ErrCodeInvalidInput, "server needs a design")
	}
	if cfg.Runner == nil {
		return nil, cerrors.New(cerrors.ErrCodeInvalidInput, "server needs a runner")
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Key == "" {
		cfg.Key = pipeline.DesignKey(cfg.Design, "")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Server{cfg: cfg}, nil
}

// Handler returns the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/health", s.handleHealth)
	r.Get("/nets", s.handleNets)
	r.Get("/nets/{net}/pins", s.handleNetPins)
	r.Get("/pins/{pin}/net", s.handlePinNet)
	r.Get("/ratsnest", s.handleRatsnest)
	r.Post("/drc", s.handleDRC)
	return r
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.listener = ln
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.cfg.Logger.Error("server stopped", "err", err)
		}
	}()

	s.running = true
	s.cfg.Logger.Info("serving", "addr", ln.Addr().String(), "design", s.cfg.Key)
	return nil
}

// Stop shuts the server down, waiting for in-flight requests until ctx ends.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	s.cfg.Logger.Info("server stopped")
	return nil
}

// Addr returns the bound address once started, else the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.cfg.Addr
}

// statusWriter records the status code written by a handler.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		start := time.Now()
		observability.HTTP().OnRequest(ctx, r.Method, r.URL.Path)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		elapsed := time.Since(start)
		observability.HTTP().OnResponse(ctx, r.Method, r.URL.Path, sw.status, elapsed)
		s.cfg.Logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", sw.status, "took", elapsed)
	})
}

// NetInfo describes one net in GET /nets.
type NetInfo struct {
	Name     netlist.NetID      `json:"name"`
	Type     netlist.NetType    `json:"type"`
	Class    netlist.NetClassID `json:"class"`
	Pins     int                `json:"pins"`
	Islands  int                `json:"islands"`
	Airwires int                `json:"airwires"`
	Complete bool               `json:"complete"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "design": s.cfg.Key, "version": buildinfo.Read().Short()})
}

func (s *Server) handleNets(w http.ResponseWriter, _ *http.Request) {
	d := s.cfg.Design
	status := ratsnest.Compute(d.Board.Snapshot(), d.Netlist)

	nets := d.Netlist.Nets()
	out := make([]NetInfo, 0, len(nets))
	for _, n := range nets {
		info := NetInfo{
			Name:  n.Name,
			Type:  n.Type,
			Class: d.Netlist.ClassOf(n.Name),
			Pins:  len(d.Netlist.PinsOf(n.Name)),
		}
		if st, ok := ratsnest.Find(status, n.Name); ok {
			info.Islands = len(st.Islands)
			info.Airwires = len(st.Airwires)
			info.Complete = st.Complete()
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleNetPins(w http.ResponseWriter, r *http.Request) {
	net := netlist.NetID(chi.URLParam(r, "net"))
	if !s.cfg.Design.Netlist.HasNet(net) {
		writeError(w, cerrors.New(cerrors.ErrCodeNotFound, "net %s does not exist", net))
		return
	}
	pins := s.cfg.Design.Netlist.PinsOf(net)
	out := make([]string, len(pins))
	for i, p := range pins {
		out[i] = p.String()
	}
	writeJSON(w, http.StatusOK, map[string]any{"net": net, "pins": out})
}

func (s *Server) handlePinNet(w http.ResponseWriter, r *http.Request) {
	ref, err := netlist.ParsePinRef(chi.URLParam(r, "pin"))
	if err != nil {
		writeError(w, cerrors.Wrap(cerrors.ErrCodeInvalidInput, err, "bad pin reference"))
		return
	}
	nl := s.cfg.Design.Netlist
	if !nl.HasPin(ref) {
		writeError(w, cerrors.New(cerrors.ErrCodeNotFound, "pin %s does not exist", ref))
		return
	}
	resp := map[string]any{"pin": ref.String(), "net": nil}
	if net, ok := nl.NetFor(ref); ok {
		resp["net"] = net
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRatsnest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := pipeline.RatsnestOptions{
		Format: q.Get("format"),
		Net:    netlist.NetID(q.Get("net")),
	}
	if opts.Format == "" {
		opts.Format = pipeline.FormatJSON
	}
	if v := q.Get("all"); v != "" {
		all, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, cerrors.Wrap(cerrors.ErrCodeInvalidInput, err, "bad all parameter"))
			return
		}
		opts.All = all
	}
	if err := pipeline.ValidateFormat(opts.Format); err != nil {
		writeError(w, cerrors.Wrap(cerrors.ErrCodeInvalidInput, err, "bad format"))
		return
	}

	data, _, err := s.cfg.Runner.RatsnestWithCacheInfo(r.Context(), s.cfg.Design, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	switch opts.Format {
	case pipeline.FormatSVG:
		w.Header().Set("Content-Type", "image/svg+xml")
	case pipeline.FormatDOT:
		w.Header().Set("Content-Type", "text/vnd.graphviz")
	default:
		w.Header().Set("Content-Type", "application/json")
	}
	_, _ = w.Write(data)
}

// DRCResponse is the body of POST /drc.
type DRCResponse struct {
	Key       string      `json:"key"`
	BoardHash string      `json:"board_hash"`
	Cached    bool        `json:"cached"`
	Passed    bool        `json:"passed"`
	Report    *drc.Report `json:"report"`
	Stale     int         `json:"stale_exclusions"`
}

func (s *Server) handleDRC(w http.ResponseWriter, r *http.Request) {
	opts, err := s.drcOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}
	opts.Logger = s.cfg.Logger

	res, err := s.cfg.Runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DRCResponse{
		Key:       res.Key,
		BoardHash: res.BoardHash,
		Cached:    res.CacheInfo.ReportHit,
		Passed:    res.Report.Passed(),
		Report:    res.Report,
		Stale:     len(res.Stale),
	})
}

// drcOptions selects the design to check: a file below Root, an uploaded
// TOML body, or the served design when the body is empty.
func (s *Server) drcOptions(r *http.Request) (pipeline.Options, error) {
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))

	if p := r.URL.Query().Get("path"); p != "" {
		if s.cfg.Root == "" {
			return pipeline.Options{}, cerrors.New(cerrors.ErrCodeUnsupported, "path lookups are disabled")
		}
		if err := cerrors.ValidatePath(p); err != nil {
			return pipeline.Options{}, err
		}
		return pipeline.Options{Path: filepath.Join(s.cfg.Root, p), Refresh: refresh}, nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody+1))
	if err != nil {
		return pipeline.Options{}, cerrors.Wrap(cerrors.ErrCodeInvalidInput, err, "read body")
	}
	if len(body) > maxBody {
		return pipeline.Options{}, cerrors.New(cerrors.ErrCodeInvalidInput, "design exceeds %d bytes", maxBody)
	}
	if len(body) == 0 {
		return pipeline.Options{Design: s.cfg.Design, Key: s.cfg.Key, Refresh: refresh}, nil
	}

	d, err := designio.Read(bytes.NewReader(body))
	if err != nil {
		return pipeline.Options{}, cerrors.Wrap(cerrors.ErrCodeInvalidInput, err, "parse design")
	}
	key := r.URL.Query().Get("key")
	if key == "" {
		key = pipeline.DesignKey(d, "upload")
	}
	return pipeline.Options{Design: d, Key: key, Refresh: refresh}, nil
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Code    cerrors.Code `json:"code"`
	Message string       `json:"message"`
}

// statusFor maps error codes to HTTP statuses.
func statusFor(err error) int {
	switch cerrors.GetCode(err) {
	case cerrors.ErrCodeNotFound:
		return http.StatusNotFound
	case cerrors.ErrCodeConflict, cerrors.ErrCodeDanglingRoute:
		return http.StatusConflict
	case cerrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case cerrors.ErrCodeCancelled:
		return http.StatusServiceUnavailable
	}
	if cerrors.IsInputError(err) {
		return http.StatusBadRequest
	}
	if errors.Is(err, fs.ErrNotExist) {
		return http.StatusNotFound
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	code := cerrors.GetCode(err)
	if code == "" {
		code = cerrors.ErrCodeInternal
	}
	writeJSON(w, statusFor(err), ErrorResponse{Code: code, Message: cerrors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
