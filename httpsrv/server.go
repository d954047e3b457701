// Package httpsrv serves prime generation, primality tests and sampling
// over HTTP, with background jobs streamed over websocket.
package httpsrv

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tutils/tprime/cache/lru"
	"github.com/tutils/tprime/counter/period"
	"github.com/tutils/tprime/prime"
)

const shutdownTimeout = 5 * time.Second

// Server is the tprime HTTP service
type Server struct {
	cfg     Config
	mux     *http.ServeMux
	cache   *lru.Cache
	counter *period.Counter
	jobs    *JobManager
}

// Stats is the body of /api/stats.
type Stats struct {
	Candidates period.Snapshot `json:"candidates"`
	Cache      lru.Stats       `json:"cache"`
	Jobs       int             `json:"jobs"`
}

// NewServer creates a new Server
func NewServer(cfg Config) *Server {
	c := period.New(cfg.StatsPeriod)
	s := &Server{
		cfg:     cfg,
		mux:     http.NewServeMux(),
		cache:   lru.New(cfg.CacheSize),
		counter: c,
		jobs:    NewJobManager(c, cfg.JobTimeout, cfg.JobRetention),
	}

	s.mux.HandleFunc("/api/generate", s.handleGenerate)
	s.mux.HandleFunc("/api/test", s.handleTest)
	s.mux.HandleFunc("/api/sample", s.handleSample)
	s.mux.HandleFunc("/api/modpow", s.handleModPow)
	s.mux.HandleFunc("/api/stats", s.handleStats)
	s.mux.HandleFunc("/api/jobs", s.handleJobs)
	s.mux.HandleFunc("/api/jobs/start", s.handleStartJob)
	s.mux.HandleFunc("/api/jobs/stop", s.handleStopJob)
	s.mux.HandleFunc("/api/jobs/delete", s.handleDeleteJob)
	s.mux.HandleFunc("/api/stream", s.handleStream)
	return s
}

// Jobs returns the background job manager.
func (s *Server) Jobs() *JobManager { return s.jobs }

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves on cfg.Listen until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Listen,
		Handler: s,
	}

	go func() {
		<-ctx.Done()
		s.jobs.StopAll()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		srv.Shutdown(sctx)
	}()

	log.Printf("[INFO] tprime server listening on %s", s.cfg.Listen)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func requestID() string {
	return uuid.New().String()[:8]
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := r.Body
	if s.cfg.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return BadRequest.New("invalid request: %v", err)
	}
	return nil
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	reqID := requestID()

	var req GenerateRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, reqID, err)
		return
	}
	gen, err := req.resolve(s.cfg.Limits())
	if err != nil {
		writeError(w, reqID, err)
		return
	}
	log.Printf("[INFO] %s %s generate bits=%d algorithm=%s test=%s", reqID, r.RemoteAddr, gen.req.Bits, gen.req.Algorithm, gen.req.Test)

	if v, ok := s.cache.Get(gen.key); ok {
		resp := v.(GenerateResponse)
		resp.Cached = true
		writeData(w, resp)
		return
	}

	ctx := r.Context()
	if s.cfg.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.JobTimeout)
		defer cancel()
	}

	start := time.Now()
	res, err := prime.Run(ctx, gen.req,
		prime.WithCounter(s.counter),
		prime.WithPRNGOptions(gen.prngOpts...))
	if err != nil {
		writeError(w, reqID, err)
		return
	}
	log.Printf("[INFO] %s prime found after %d candidates in %v", reqID, res.Attempts, time.Since(start))

	resp := GenerateResponse{
		Prime:    res.Prime.String(),
		Bits:     gen.req.Bits,
		Attempts: res.Attempts,
		Last:     res.Last.String(),
	}
	s.cache.Add(gen.key, resp)
	writeData(w, resp)
}

func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	reqID := requestID()

	var req TestRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, reqID, err)
		return
	}
	resp, err := req.run(s.cfg.Limits())
	if err != nil {
		writeError(w, reqID, err)
		return
	}
	writeData(w, resp)
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	reqID := requestID()

	var req SampleRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, reqID, err)
		return
	}
	resp, err := req.run(s.cfg.Limits())
	if err != nil {
		writeError(w, reqID, err)
		return
	}
	writeData(w, resp)
}

func (s *Server) handleModPow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	reqID := requestID()

	var req ModPowRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, reqID, err)
		return
	}
	x, err := req.run(s.cfg.Limits())
	if err != nil {
		writeError(w, reqID, err)
		return
	}
	writeData(w, x)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeData(w, Stats{
		Candidates: s.counter.Snapshot(),
		Cache:      s.cache.Stats(),
		Jobs:       len(s.jobs.List()),
	})
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get("id"); id != "" {
		info, err := s.jobs.Get(id)
		if err != nil {
			writeError(w, requestID(), err)
			return
		}
		writeData(w, info)
		return
	}
	writeData(w, s.jobs.List())
}

func (s *Server) handleStartJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	reqID := requestID()

	var req GenerateRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, reqID, err)
		return
	}
	info, err := s.jobs.Start(req, s.cfg.Limits())
	if err != nil {
		writeError(w, reqID, fmt.Errorf("failed to start job: %w", err))
		return
	}
	log.Printf("[INFO] %s %s started job %s bits=%d", reqID, r.RemoteAddr, info.ID, req.Bits)
	writeData(w, info)
}

func (s *Server) handleStopJob(w http.ResponseWriter, r *http.Request) {
	s.handleJobAction(w, r, "stop", s.jobs.Stop)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	s.handleJobAction(w, r, "delete", s.jobs.Delete)
}

func (s *Server) handleJobAction(w http.ResponseWriter, r *http.Request, action string, fn func(id string) error) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	reqID := requestID()

	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, reqID, BadRequest.New("missing job ID"))
		return
	}
	if err := fn(id); err != nil {
		writeError(w, reqID, fmt.Errorf("failed to %s job: %w", action, err))
		return
	}
	log.Printf("[INFO] %s %s job %s: %s", reqID, r.RemoteAddr, id, action)
	writeJSON(w, http.StatusOK, APIResponse{Success: true})
}
