// Package server is the REST backend the remote and bulk strategies talk to.
// It serves the four club resources under /api from a Repository.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/gzip"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/crypton-club/clubdata/internal/club"
)

const (
	defaultCacheTTL = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Options tune a Server.
type Options struct {
	Logger   *zap.Logger
	IDs      club.IDGenerator
	CacheTTL time.Duration
}

// Server serves the club resources.
type Server struct {
	repo   Repository
	ids    club.IDGenerator
	log    *zap.SugaredLogger
	cache  *cache.Cache
	locks  map[club.Resource]*sync.RWMutex
	router *gin.Engine
}

// New builds a Server over repo.
func New(repo Repository, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ids := opts.IDs
	if ids == nil {
		ids = &club.TimestampIDs{}
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	s := &Server{
		repo:  repo,
		ids:   ids,
		log:   logger.Sugar().Named("server"),
		cache: cache.New(ttl, 2*ttl),
		locks: make(map[club.Resource]*sync.RWMutex, len(club.Resources)),
	}
	for _, r := range club.Resources {
		s.locks[r] = &sync.RWMutex{}
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger, true))
	router.Use(countRequests)

	router.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "online") })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api", gzip.Gzip(gzip.DefaultCompression))
	register[club.Event](s, api, club.Events)
	register[club.Member](s, api, club.Members)
	register[club.Achievement](s, api, club.Achievements)
	register[club.BlogPost](s, api, club.Blog)

	s.router = router
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run listens on bind until ctx is cancelled.
func (s *Server) Run(ctx context.Context, bind string) error {
	srv := &http.Server{
		Addr:              bind,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("listening", "bind", bind)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.log.Infow("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func writeJSON(c *gin.Context, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(status, "application/json; charset=utf-8", body)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, gin.H{"error": msg})
}
