package http_init

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	http_common "github.com/humanbelnik/livepoll/internal/delivery/http/common"
	http_access_middleware "github.com/humanbelnik/livepoll/internal/delivery/http/middleware/access"
)

const (
	apiPrefix    = "/api/v1"
	legacyPrefix = "/api"

	shutdownTimeout = 10 * time.Second
)

type Controller interface {
	RegisterRoutes(router *gin.RouterGroup)
}

// LegacyController serves the unversioned paths older clients still call.
type LegacyController interface {
	RegisterLegacyRoutes(router *gin.RouterGroup)
}

type ControllerPool struct {
	pool   []Controller
	root   []Controller
	rg     *gin.RouterGroup
	legacy *gin.RouterGroup
	engine *gin.Engine
	logger *slog.Logger
}

// NewControllerPool builds the engine. mode RO turns the instance read-only.
func NewControllerPool(mode string) *ControllerPool {
	engine := gin.Default()
	engine.Use(http_common.CORS(), http_access_middleware.ReadOnly(mode))
	return &ControllerPool{
		pool:   make([]Controller, 0, 10),
		rg:     engine.Group(apiPrefix),
		legacy: engine.Group(legacyPrefix),
		engine: engine,
		logger: slog.Default(),
	}
}

func (pool *ControllerPool) Add(c Controller) {
	pool.pool = append(pool.pool, c)
}

// AddRoot mounts c outside of the API prefix.
func (pool *ControllerPool) AddRoot(c Controller) {
	pool.root = append(pool.root, c)
}

func (pool *ControllerPool) Register() {
	for _, c := range pool.pool {
		c.RegisterRoutes(pool.rg)
		if lc, ok := c.(LegacyController); ok {
			lc.RegisterLegacyRoutes(pool.legacy)
		}
	}
	for _, c := range pool.root {
		c.RegisterRoutes(&pool.engine.RouterGroup)
	}
}

func (pool *ControllerPool) Handler() http.Handler {
	return pool.engine
}

// RunAll serves until ctx is done, then drains in-flight requests.
func (pool *ControllerPool) RunAll(ctx context.Context, host, port string) error {
	srv := &http.Server{
		Addr:              net.JoinHostPort(host, port),
		Handler:           pool.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		pool.logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
