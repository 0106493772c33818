package app

import (
	"github.com/orgball2608/insta-profile-proxy/internal/api"
	"github.com/orgball2608/insta-profile-proxy/internal/instagram"
	"github.com/orgball2608/insta-profile-proxy/internal/instagram/instagramimpl"
	"github.com/orgball2608/insta-profile-proxy/internal/server"
	"github.com/orgball2608/insta-profile-proxy/pkg/config"
	"github.com/orgball2608/insta-profile-proxy/pkg/logger"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
	),
	fx.Provide(
		fx.Annotate(
			instagramimpl.New,
			fx.As(new(instagram.Client)),
		),
	),
	fx.Provide(
		api.New,
		server.New,
	),
	fx.Invoke(func(*server.Server) {}),
)
