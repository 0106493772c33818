package instagramimpl

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/orgball2608/insta-profile-proxy/internal/guard"
	"github.com/orgball2608/insta-profile-proxy/internal/instagram"
	"github.com/orgball2608/insta-profile-proxy/pkg/config"
	"github.com/orgball2608/insta-profile-proxy/pkg/logger"
	"go.uber.org/fx"
)

const (
	defaultImageTimeout  = 10 * time.Second
	defaultMaxImageBytes = 20 << 20
	maxJSONBytes         = 10 << 20
	maxImageRedirects    = 10
)

type Opts struct {
	fx.In

	Config     *config.Config
	Logger     logger.Logger
	HTTPClient *http.Client `optional:"true"`
}

// InstaImpl talks to the RapidAPI Instagram provider and to Instagram's
// media CDN. Credentials come from the config it was built with.
type InstaImpl struct {
	client *http.Client
	// images shares client's transport but checks every redirect hop
	// against the allow-list.
	images *http.Client
	guard  *guard.Guard
	logger logger.Logger

	baseURL string
	host    string
	apiKey  string

	apiTimeout   time.Duration
	imageTimeout time.Duration
	userAgent    string

	maxJSONBytes  int64
	maxImageBytes int64
}

func New(opts Opts) *InstaImpl {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	imageTimeout := opts.Config.ImageProxy.Timeout
	if imageTimeout <= 0 {
		imageTimeout = defaultImageTimeout
	}

	maxImageBytes := opts.Config.ImageProxy.MaxBytes
	if maxImageBytes <= 0 {
		maxImageBytes = defaultMaxImageBytes
	}

	ig := &InstaImpl{
		client:       client,
		guard:        guard.New(opts.Config.ImageProxy.AllowedDomains),
		logger:       opts.Logger.WithComponent("InstagramClient"),
		baseURL:      strings.TrimRight(opts.Config.Upstream.BaseURL, "/"),
		host:         opts.Config.Upstream.Host,
		apiKey:       opts.Config.Upstream.APIKey,
		apiTimeout:   opts.Config.Upstream.Timeout,
		imageTimeout: imageTimeout,
		userAgent:    opts.Config.ImageProxy.UserAgent,

		maxJSONBytes:  maxJSONBytes,
		maxImageBytes: maxImageBytes,
	}

	images := *client
	images.CheckRedirect = ig.checkImageRedirect
	ig.images = &images

	return ig
}

var _ instagram.Client = (*InstaImpl)(nil)

// withTimeout bounds ctx by d; a non-positive d leaves ctx as is.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// readLimited reads body up to limit bytes. tooLarge is set when the body
// holds more than that.
func readLimited(body io.Reader, limit int64) (data []byte, tooLarge bool, err error) {
	data, err = io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(data)) > limit {
		return nil, true, nil
	}
	return data, false, nil
}

// statusText returns the reason phrase of resp, e.g. "Too Many Requests".
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
