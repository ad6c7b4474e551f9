package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mchmarny/healsure/pkg/session"
	urfave "github.com/urfave/cli/v2"
)

const (
	serverShutdownWaitSeconds = 5
	serverTimeoutSeconds      = 300
	serverMaxHeaderBytes      = 20
)

var (
	portFlag = &urfave.IntFlag{
		Name:  "port",
		Usage: "Port on which the server will listen (default: from config)",
	}

	serverCmd = &urfave.Command{
		Name:    "server",
		Aliases: []string{"serve"},
		Usage:   "Start local HTTP API server",
		Action:  cmdStartServer,
		Flags:   joinFlags([]urfave.Flag{portFlag}, sourceFlags, modelFlags),
	}
)

func cmdStartServer(c *urfave.Context) error {
	cfg := getConfig(c)

	port := cfg.Config.Server.Port
	if c.IsSet(portFlag.Name) {
		port = c.Int(portFlag.Name)
	}
	address := fmt.Sprintf("127.0.0.1:%d", port)

	src, err := sourceFromFlags(c)
	if err != nil {
		return err
	}

	h := &api{
		db:       cfg.DB,
		source:   src,
		sessions: session.NewManager(src, modelOptions(c)),
	}

	s := &http.Server{
		Addr:           address,
		Handler:        logRequests(makeRouter(h)),
		ReadTimeout:    serverTimeoutSeconds * time.Second,
		WriteTimeout:   serverTimeoutSeconds * time.Second,
		MaxHeaderBytes: 1 << serverMaxHeaderBytes,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("error starting server", "error", err)
		}
	}()

	slog.Info("server started", "address", fmt.Sprintf("http://%s", address))

	<-done

	ctx, cancel := context.WithTimeout(context.Background(), serverShutdownWaitSeconds*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("error shutting down server", "error", err)
	}
	return nil
}

func makeRouter(h *api) *http.ServeMux {
	mux := http.NewServeMux()

	// Sessions
	mux.HandleFunc("GET /api/sessions", h.listSessions)
	mux.HandleFunc("POST /api/sessions", h.createSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.deleteSession)
	mux.HandleFunc("POST /api/sessions/{id}/train", h.trainSession)
	mux.HandleFunc("GET /api/sessions/{id}/metrics", h.sessionMetrics)
	mux.HandleFunc("GET /api/sessions/{id}/importance", h.sessionImportance)
	mux.HandleFunc("POST /api/sessions/{id}/predict", h.predict)
	mux.HandleFunc("POST /api/sessions/{id}/quote", h.quote)

	// Wellness
	mux.HandleFunc("POST /api/wellness", h.score)
	mux.HandleFunc("GET /api/wellness/tiers", h.tiers)
	mux.HandleFunc("GET /api/tips", h.tips)

	// History and data
	mux.HandleFunc("GET /api/history", h.history)
	mux.HandleFunc("GET /api/history/summary", h.historySummary)
	mux.HandleFunc("DELETE /api/history", h.clearHistory)
	mux.HandleFunc("GET /api/dataset/stats", h.datasetStats)

	return mux
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
