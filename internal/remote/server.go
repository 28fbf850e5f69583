package remote

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lowaak/interval-timer/internal/go_func_utils"
	"github.com/lowaak/interval-timer/internal/timer"
	"github.com/lowaak/interval-timer/internal/workout"
)

const shutdownTimeout = 5 * time.Second

// TimerControl is the part of the timer the remote API drives
type TimerControl interface {
	Start() timer.Snapshot
	Pause() timer.Snapshot
	Reset() timer.Snapshot
	Toggle() timer.Snapshot
	Snapshot() timer.Snapshot
	Plan() timer.Plan
	SetStructure(structure workout.WorkoutStructure) timer.Snapshot
	SetExerciseNames(names []string) timer.Snapshot
	EditBlock(edit timer.BlockEdit) (workout.CompiledBlock, bool)
}

// Server exposes the timer over HTTP for control from another device.
type Server struct {
	timer  TimerControl
	logger *log.Logger
	router chi.Router

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	wg       sync.WaitGroup
}

// New creates a Server with all routes configured.
func New(control TimerControl, logger *log.Logger) *Server {
	if control == nil {
		panic("RemoteServer: timer cannot be nil")
	}
	if logger == nil {
		panic("RemoteServer: logger cannot be nil")
	}
	s := &Server{
		timer:  control,
		logger: logger,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.logger))
	s.router.Use(CORS)

	s.router.Get("/", s.handleIndex)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Post("/start", s.handleControl(s.timer.Start))
		r.Post("/pause", s.handleControl(s.timer.Pause))
		r.Post("/reset", s.handleControl(s.timer.Reset))
		r.Post("/toggle", s.handleControl(s.timer.Toggle))

		r.Get("/structure", s.handleGetStructure)
		r.Put("/structure", s.handlePutStructure)
		r.Put("/exercises", s.handlePutExerciseNames)

		r.Get("/phases", s.handleGetPhases)
		r.Post("/phases", s.handleAppendPhase)
		r.Put("/phases/{id}", s.handleUpdatePhase)
		r.Delete("/phases/{id}", s.handleDeletePhase)
	})
}

// Start listens on addr and serves in the background. The listen error, if
// any, is returned directly.
func (s *Server) Start(addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server != nil {
		return errors.New("remote server already started")
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	s.listener = ln
	s.server = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	srv := s.server
	s.wg.Add(1)
	go_func_utils.SafeGo(s.logger, "RemoteServer", func() {
		defer s.wg.Done()
		s.logger.Printf("RemoteServer: Listening on http://%s", ln.Addr())
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			s.logger.Printf("RemoteServer: Serve error: %v", err)
		}
	})
	return nil
}

// Addr returns the address the server is listening on, or "" before Start
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops the server, waiting up to a few seconds for requests to end
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	s.logger.Printf("RemoteServer: Shutting down")
	err := srv.Shutdown(ctx)
	s.wg.Wait()
	if err != nil {
		return fmt.Errorf("shutdown remote server: %w", err)
	}
	s.logger.Printf("RemoteServer: Shutdown complete")
	return nil
}
