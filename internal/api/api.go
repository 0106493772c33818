package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/orgball2608/insta-profile-proxy/internal/guard"
	"github.com/orgball2608/insta-profile-proxy/internal/instagram"
	"github.com/orgball2608/insta-profile-proxy/internal/normalizer"
	"github.com/orgball2608/insta-profile-proxy/pkg/config"
	"github.com/orgball2608/insta-profile-proxy/pkg/logger"
	"go.uber.org/fx"
)

const (
	ProfilePath    = "/api/instagram-profile"
	PostsPath      = "/api/instagram-posts"
	ImageProxyPath = "/api/image-proxy"
)

type Opts struct {
	fx.In

	Instagram instagram.Client
	Config    *config.Config
	Logger    logger.Logger
}

// Handler serves the profile, posts and image proxy endpoints. It holds no
// per-request state.
type Handler struct {
	instagram instagram.Client
	guard     *guard.Guard
	schema    normalizer.Schema
	logger    logger.Logger
}

func New(opts Opts) (*Handler, error) {
	schema, ok := normalizer.Lookup(opts.Config.Upstream.Schema)
	if !ok {
		return nil, fmt.Errorf("unknown upstream schema %q (known: %v)", opts.Config.Upstream.Schema, normalizer.Names())
	}

	return &Handler{
		instagram: opts.Instagram,
		guard:     guard.New(opts.Config.ImageProxy.AllowedDomains),
		schema:    schema,
		logger:    opts.Logger.WithComponent("API"),
	}, nil
}

// Register mounts the endpoints on r.
func (h *Handler) Register(r gin.IRouter) {
	r.OPTIONS(ProfilePath, preflight("GET, POST, OPTIONS"))
	r.POST(ProfilePath, allowOrigin, h.Profile)
	r.GET(ProfilePath, allowOrigin, h.ImageProxy)

	r.OPTIONS(PostsPath, preflight("POST, OPTIONS"))
	r.POST(PostsPath, allowOrigin, h.Posts)

	r.OPTIONS(ImageProxyPath, preflight("GET, OPTIONS"))
	r.GET(ImageProxyPath, allowOrigin, h.ImageProxy)
}
