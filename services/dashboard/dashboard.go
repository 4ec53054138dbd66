// Package dashboard serves the sensor page and a JSON snapshot. Handlers
// never touch the sensors; they ask the sampler over the bus and render
// N/A when it does not answer in time.
package dashboard

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"goji.io"
	"goji.io/pat"

	"sensordash/bus"
	"sensordash/errcode"
	"sensordash/services/sampler"
	"sensordash/types"
	"sensordash/x/logx"
)

// Config is the listener setup.
type Config struct {
	Listen string
	// RequestTimeout bounds each sampler round trip. Default 2 s.
	RequestTimeout time.Duration
}

// Server is the HTTP front end.
type Server struct {
	cfg  Config
	conn *bus.Connection
	log  logx.Logger
	mux  *goji.Mux
}

// New builds the handler tree. conn must be a connection on the bus the
// sampler listens on.
func New(cfg Config, conn *bus.Connection, log logx.Logger) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 2 * time.Second
	}
	if log == nil {
		log = logx.Nop()
	}
	s := &Server{cfg: cfg, conn: conn, log: log, mux: goji.NewMux()}
	s.mux.Use(s.logRequests)
	s.mux.HandleFunc(pat.Get("/"), s.pageHandler(types.ReasonInitial))
	s.mux.HandleFunc(pat.Get("/refresh"), s.pageHandler(types.ReasonRefresh))
	s.mux.HandleFunc(pat.Get("/api/readings"), s.handleAPI)
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.mux }

// Serve listens on cfg.Listen until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return errors.Wrapf(err, "listen %s", s.cfg.Listen)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is done, then shuts down.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			s.log.Warnf("dashboard shutdown: %v", err)
		}
	}()
	s.log.Infof("dashboard listening on http://%s", ln.Addr())
	err := srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		return nil
	}
	return err
}

// pageHandler polls with reason and renders the result. Both the index
// and /refresh read the sensors, as the page is the only trigger most
// users have.
func (s *Server) pageHandler(reason types.Reason) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
		defer cancel()

		st, err := sampler.Refresh(ctx, s.conn, reason)
		if err != nil {
			s.log.Warnf("refresh (%s): %v", reason, err)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := pageTmpl.Execute(w, newPage(st, err != nil)); err != nil {
			s.log.Errorf("render: %v", err)
		}
	}
}

// apiReadings is the /api/readings body.
type apiReadings struct {
	types.State
	Stats map[types.Channel]Summary `json:"stats"`
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	st, err := sampler.Query(ctx, s.conn)
	if err != nil {
		s.log.Warnf("query: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": string(errcode.Of(err))})
		return
	}
	if err := json.NewEncoder(w).Encode(apiReadings{State: st, Stats: SummarizeAll(st.History)}); err != nil {
		s.log.Errorf("encode: %v", err)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debugf("%s %s from %s in %s", r.Method, r.URL.Path, r.RemoteAddr, time.Since(start))
	})
}
