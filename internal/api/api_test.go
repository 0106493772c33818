package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/orgball2608/insta-profile-proxy/internal/domain"
	"github.com/orgball2608/insta-profile-proxy/internal/instagram"
	"github.com/orgball2608/insta-profile-proxy/internal/instagram/instagramimpl"
	mock_instagram "github.com/orgball2608/insta-profile-proxy/internal/instagram/mocks"
	"github.com/orgball2608/insta-profile-proxy/pkg/config"
	"github.com/orgball2608/insta-profile-proxy/pkg/errors"
	"github.com/orgball2608/insta-profile-proxy/pkg/logger"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T, client instagram.Client) *gin.Engine {
	t.Helper()
	h, err := New(Opts{Instagram: client, Config: config.Default(), Logger: logger.Nop()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r := gin.New()
	h.Register(r)
	return r
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func TestProfile_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock_instagram.NewMockClient(ctrl)
	client.EXPECT().
		FetchProfile(gomock.Any(), "alice").
		Return([]byte(`{"followers":"1200","username":"alice"}`), nil)

	w := do(newRouter(t, client), http.MethodPost, ProfilePath, `{"username":"alice"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body)
	}
	out := decode(t, w)
	if out["success"] != true {
		t.Fatalf("success = %v", out["success"])
	}
	profile := out["profile"].(map[string]any)
	if profile["username"] != "alice" {
		t.Fatalf("username = %v", profile["username"])
	}
	for key, want := range map[string]float64{"followers_count": 1200, "follower_count": 1200, "posts_count": 0, "media_count": 0, "following_count": 0} {
		if profile[key] != want {
			t.Errorf("%s = %v, want %v", key, profile[key], want)
		}
	}
	raw := profile["raw_data"].(map[string]any)
	if raw["followers"] != "1200" || raw["username"] != "alice" {
		t.Fatalf("raw_data = %v", raw)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("missing Access-Control-Allow-Origin")
	}
}

func TestProfile_MissingUsername(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock_instagram.NewMockClient(ctrl)

	for _, body := range []string{`{}`, `{"username":""}`, ""} {
		w := do(newRouter(t, client), http.MethodPost, ProfilePath, body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%q: status = %d", body, w.Code)
		}
		out := decode(t, w)
		if out["success"] != false || out["error"] != "Username is required" {
			t.Fatalf("%q: body = %v", body, out)
		}
	}
}

func TestProfile_MalformedBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock_instagram.NewMockClient(ctrl)

	for _, body := range []string{`{"username":`, `{"username":42}`, `not json`} {
		w := do(newRouter(t, client), http.MethodPost, ProfilePath, body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%q: status = %d", body, w.Code)
		}
		if out := decode(t, w); out["error"] != "Invalid request body" {
			t.Fatalf("%q: body = %v", body, out)
		}
	}
}

func TestProfile_UpstreamStatusPassthrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock_instagram.NewMockClient(ctrl)
	client.EXPECT().
		FetchProfile(gomock.Any(), "alice").
		Return(nil, errors.Upstream(http.StatusForbidden, "Instagram API error: Forbidden"))

	w := do(newRouter(t, client), http.MethodPost, ProfilePath, `{"username":"alice"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d", w.Code)
	}
	out := decode(t, w)
	if out["success"] != false || out["error"] != "Instagram API error: Forbidden" {
		t.Fatalf("body = %v", out)
	}
}

func TestProfile_EmptyBodyIsNotFound(t *testing.T) {
	for _, body := range []string{`{}`, `null`, ``, `[]`, `true`, `1`} {
		ctrl := gomock.NewController(t)
		client := mock_instagram.NewMockClient(ctrl)
		client.EXPECT().FetchProfile(gomock.Any(), "ghost").Return([]byte(body), nil)

		w := do(newRouter(t, client), http.MethodPost, ProfilePath, `{"username":"ghost"}`)
		if w.Code != http.StatusNotFound {
			t.Fatalf("%q: status = %d", body, w.Code)
		}
		if out := decode(t, w); out["error"] != "No profile data found" || out["success"] != false {
			t.Fatalf("%q: body = %v", body, out)
		}
	}
}

func TestProfile_InternalError(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock_instagram.NewMockClient(ctrl)
	client.EXPECT().
		FetchProfile(gomock.Any(), "alice").
		Return(nil, errors.Internal("failed to reach Instagram API", context.Canceled))

	w := do(newRouter(t, client), http.MethodPost, ProfilePath, `{"username":"alice"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if out := decode(t, w); out["error"] != "failed to reach Instagram API" || out["success"] != false {
		t.Fatalf("body = %v", out)
	}
}

func TestPosts_BareArray(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock_instagram.NewMockClient(ctrl)
	client.EXPECT().
		FetchPosts(gomock.Any(), "bob").
		Return([]byte(`[{"pk":"1","text":"hi","likes":"5"}]`), nil)

	w := do(newRouter(t, client), http.MethodPost, PostsPath, `{"username":"bob"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body)
	}
	out := decode(t, w)
	posts := out["posts"].([]any)
	if len(posts) != 1 {
		t.Fatalf("posts = %v", posts)
	}
	post := posts[0].(map[string]any)
	if post["id"] != "1" || post["caption"] != "hi" || post["like_count"] != float64(5) || post["media_type"] != "image" {
		t.Fatalf("post = %v", post)
	}
	if post["timestamp"] != nil || post["comment_count"] != float64(0) || post["media_url"] != "" {
		t.Fatalf("post defaults = %v", post)
	}
	if raw := out["raw_response"].([]any); len(raw) != 1 {
		t.Fatalf("raw_response = %v", out["raw_response"])
	}
}

func TestPosts_EmptyListIsSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock_instagram.NewMockClient(ctrl)
	client.EXPECT().FetchPosts(gomock.Any(), "bob").Return([]byte(`{"status":"ok"}`), nil)

	w := do(newRouter(t, client), http.MethodPost, PostsPath, `{"username":"bob"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"posts":[]`) {
		t.Fatalf("expected empty posts array, got %s", w.Body)
	}
	if out := decode(t, w); out["success"] != true {
		t.Fatalf("body = %v", out)
	}
}

func TestPosts_MissingUsername(t *testing.T) {
	ctrl := gomock.NewController(t)
	w := do(newRouter(t, mock_instagram.NewMockClient(ctrl)), http.MethodPost, PostsPath, `{"user":"bob"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestImageProxy_Success(t *testing.T) {
	const src = "https://scontent-gru2-1.cdninstagram.com/v/t51.2885-15/a.jpg?stp=dst-jpg&oh=abc"

	ctrl := gomock.NewController(t)
	client := mock_instagram.NewMockClient(ctrl)
	client.EXPECT().
		FetchImage(gomock.Any(), src).
		Return(&domain.Image{Data: []byte("jpegbytes"), ContentType: "image/jpeg"}, nil)

	w := do(newRouter(t, client), http.MethodGet, ProfilePath+"?url="+url.QueryEscape(src), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body)
	}
	if w.Body.String() != "jpegbytes" {
		t.Fatalf("body = %q", w.Body)
	}
	if got := w.Header().Get("Content-Type"); got != "image/jpeg" {
		t.Fatalf("Content-Type = %q", got)
	}
	if got := w.Header().Get("Cache-Control"); got != "public, max-age=604800, immutable" {
		t.Fatalf("Cache-Control = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestImageProxy_ForbiddenDomainMakesNoCall(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock_instagram.NewMockClient(ctrl)
	client.EXPECT().FetchImage(gomock.Any(), gomock.Any()).Times(0)

	w := do(newRouter(t, client), http.MethodGet, ImageProxyPath+"?url="+url.QueryEscape("https://evil.example.com/x.jpg"), "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d", w.Code)
	}
	out := decode(t, w)
	if out["error"] != "Forbidden: Domain not allowed" {
		t.Fatalf("body = %v", out)
	}
	if _, ok := out["success"]; ok {
		t.Fatal("image errors carry no success flag")
	}
}

func TestImageProxy_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock_instagram.NewMockClient(ctrl)

	tests := []struct {
		target string
		status int
		msg    string
	}{
		{ImageProxyPath, http.StatusBadRequest, "Image URL is required"},
		{ImageProxyPath + "?url=", http.StatusBadRequest, "Image URL is required"},
		{ImageProxyPath + "?url=not-a-url", http.StatusBadRequest, "Invalid URL format"},
		{ImageProxyPath + "?url=" + url.QueryEscape("ftp://instagram.com/a.jpg"), http.StatusBadRequest, "Invalid URL format"},
	}
	for _, tt := range tests {
		w := do(newRouter(t, client), http.MethodGet, tt.target, "")
		if w.Code != tt.status {
			t.Fatalf("%s: status = %d", tt.target, w.Code)
		}
		if out := decode(t, w); out["error"] != tt.msg {
			t.Fatalf("%s: body = %v", tt.target, out)
		}
	}
}

func TestImageProxy_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"upstream", errors.Upstream(http.StatusNotFound, "Failed to fetch image from source"), http.StatusNotFound, "Failed to fetch image from source"},
		{"timeout", errors.Timeout("Request timeout", context.DeadlineExceeded), http.StatusGatewayTimeout, "Request timeout"},
		{"internal", errors.Internal("failed to fetch image", context.Canceled), http.StatusInternalServerError, "Internal server error"},
		{"unclassified", context.Canceled, http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			client := mock_instagram.NewMockClient(ctrl)
			client.EXPECT().FetchImage(gomock.Any(), gomock.Any()).Return(nil, tt.err)

			w := do(newRouter(t, client), http.MethodGet, ImageProxyPath+"?url="+url.QueryEscape("https://scontent.cdninstagram.com/a.jpg"), "")
			if w.Code != tt.status {
				t.Fatalf("status = %d", w.Code)
			}
			if out := decode(t, w); out["error"] != tt.msg {
				t.Fatalf("body = %v", out)
			}
		})
	}
}

// TestImageProxy_SlowUpstreamTimesOut runs the real fetch client against a
// responder that never answers.
func TestImageProxy_SlowUpstreamTimesOut(t *testing.T) {
	cfg := config.Default()
	cfg.ImageProxy.Timeout = 50 * time.Millisecond
	client := instagramimpl.New(instagramimpl.Opts{
		Config:     cfg,
		Logger:     logger.Nop(),
		HTTPClient: &http.Client{Transport: stallingTransport{}},
	})

	start := time.Now()
	w := do(newRouter(t, client), http.MethodGet, ProfilePath+"?url="+url.QueryEscape("https://scontent.cdninstagram.com/slow.jpg"), "")
	if w.Code != http.StatusGatewayTimeout {
		t.Fatalf("status = %d body=%s", w.Code, w.Body)
	}
	if out := decode(t, w); out["error"] != "Request timeout" {
		t.Fatalf("body = %v", out)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("timeout not honored, took %v", elapsed)
	}
}

func TestImageProxy_RedirectOffAllowListIsForbidden(t *testing.T) {
	var deniedCalls atomic.Int32
	denied := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deniedCalls.Add(1)
		_, _ = w.Write([]byte("internal"))
	}))
	defer denied.Close()

	deniedURL, err := url.Parse(denied.URL)
	if err != nil {
		t.Fatal(err)
	}
	allowed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "http://localhost:"+deniedURL.Port()+"/admin", http.StatusFound)
	}))
	defer allowed.Close()

	cfg := config.Default()
	cfg.ImageProxy.AllowedDomains = []string{"127.0.0.1"}
	client := instagramimpl.New(instagramimpl.Opts{Config: cfg, Logger: logger.Nop(), HTTPClient: allowed.Client()})
	h, err := New(Opts{Instagram: client, Config: cfg, Logger: logger.Nop()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r := gin.New()
	h.Register(r)

	w := do(r, http.MethodGet, ImageProxyPath+"?url="+url.QueryEscape(allowed.URL+"/a.jpg"), "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d body=%s", w.Code, w.Body)
	}
	if out := decode(t, w); out["error"] != "Forbidden: Domain not allowed" {
		t.Fatalf("body = %v", out)
	}
	if deniedCalls.Load() != 0 {
		t.Fatalf("redirect target was fetched %d times", deniedCalls.Load())
	}
}

func TestPreflight(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := newRouter(t, mock_instagram.NewMockClient(ctrl))

	tests := map[string]string{
		ProfilePath:    "GET, POST, OPTIONS",
		PostsPath:      "POST, OPTIONS",
		ImageProxyPath: "GET, OPTIONS",
	}
	for path, methods := range tests {
		w := do(r, http.MethodOptions, path, "")
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", path, w.Code)
		}
		if w.Body.Len() != 0 {
			t.Fatalf("%s: expected empty body, got %q", path, w.Body)
		}
		h := w.Header()
		if h.Get("Access-Control-Allow-Origin") != "*" || h.Get("Access-Control-Allow-Methods") != methods || h.Get("Access-Control-Allow-Headers") != "Content-Type" {
			t.Fatalf("%s: headers = %v", path, h)
		}
	}
}

func TestNew_UnknownSchema(t *testing.T) {
	cfg := config.Default()
	cfg.Upstream.Schema = "nope"
	if _, err := New(Opts{Config: cfg, Logger: logger.Nop()}); err == nil {
		t.Fatal("expected error for unknown schema")
	}
}

type stallingTransport struct{}

func (stallingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	<-r.Context().Done()
	return nil, r.Context().Err()
}
