package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/orgball2608/insta-profile-proxy/internal/api"
	"github.com/orgball2608/insta-profile-proxy/pkg/config"
	"github.com/orgball2608/insta-profile-proxy/pkg/logger"
	"go.uber.org/fx"
)

const readHeaderTimeout = 10 * time.Second

type Opts struct {
	fx.In
	LC fx.Lifecycle

	Config *config.Config
	Logger logger.Logger
	API    *api.Handler
}

type Server struct {
	engine *gin.Engine
	http   *http.Server
	logger logger.Logger
}

func New(opts Opts) *Server {
	log := opts.Logger.WithComponent("HTTPServer")

	if opts.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(requestID(), accessLog(log), recovery(log))
	engine.GET("/healthz", healthz)
	opts.API.Register(engine)

	s := &Server{
		engine: engine,
		http: &http.Server{
			Addr:              fmt.Sprintf(":%d", opts.Config.App.Port),
			Handler:           engine,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		logger: log,
	}

	opts.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", s.http.Addr)
			if err != nil {
				return err
			}
			log.Info(fmt.Sprintf("Starting server on %s", s.http.Addr))
			go s.serve(ln)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Stopping server")
			return s.http.Shutdown(ctx)
		},
	})

	return s
}

// Handler exposes the configured router.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) serve(ln net.Listener) {
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Server stopped unexpectedly", "error", err)
	}
}

func healthz(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
