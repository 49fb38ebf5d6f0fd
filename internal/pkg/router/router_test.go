package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/chequeflow/internal/pkg/config"
	"github.com/shandysiswandi/chequeflow/internal/pkg/goerror"
	"github.com/shandysiswandi/chequeflow/internal/pkg/instrument"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type created struct {
	ID string `json:"id"`
}

func (created) StatusCode() int { return http.StatusCreated }
func (created) Message() string { return "created" }

func newTestRouter(lim *RateLimiter) *Router {
	return NewRouter(Config{Instrument: instrument.NewNoop(), Limiter: lim})
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRouter_Success(t *testing.T) {
	r := newTestRouter(nil)
	r.POST("/things/:id", func(req *Request) (any, error) {
		return created{ID: req.GetParam("id")}, nil
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/things/42", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "created", body["message"])
	assert.Equal(t, map[string]any{"id": "42"}, body["data"])
}

func TestRouter_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
		wantFields map[string]any
		retryAfter string
	}{
		{
			name:       "business with fields",
			err:        goerror.NewBusinessWrap(errors.New("x"), "Please wait", goerror.CodeTooManyRequest, "retry_after_seconds", "12"),
			wantStatus: http.StatusTooManyRequests,
			wantMsg:    "Please wait",
			wantFields: map[string]any{"retry_after_seconds": "12"},
			retryAfter: "12",
		},
		{
			name:       "gone",
			err:        goerror.NewBusiness("Session expired", goerror.CodeGone),
			wantStatus: http.StatusGone,
			wantMsg:    "Session expired",
		},
		{
			name:       "plain error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(nil)
			r.GET("/fail", func(*Request) (any, error) { return nil, tt.err })

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tt.wantMsg, body["message"])
			if tt.wantFields != nil {
				assert.Equal(t, tt.wantFields, body["error"])
			}
			assert.Equal(t, tt.retryAfter, rec.Header().Get("Retry-After"))
		})
	}
}

func TestRouter_NotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequest_DecodeBody(t *testing.T) {
	type payload struct {
		Code string `json:"code"`
	}

	tests := []struct {
		name       string
		body       string
		allowEmpty bool
		wantErr    bool
	}{
		{name: "valid", body: `{"code":"123456"}`},
		{name: "unknown field", body: `{"code":"1","x":1}`, wantErr: true},
		{name: "trailing data", body: `{"code":"1"}{}`, wantErr: true},
		{name: "empty rejected", body: ``, wantErr: true},
		{name: "empty allowed", body: ``, allowEmpty: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &Request{Request: httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))}
			var dst payload
			err := req.DecodeBody(&dst, tt.allowEmpty)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 2)
	rl.now = func() time.Time { return now }

	ok, _ := rl.Allow("1.1.1.1")
	assert.True(t, ok)
	ok, _ = rl.Allow("1.1.1.1")
	assert.True(t, ok)

	ok, wait := rl.Allow("1.1.1.1")
	assert.False(t, ok)
	assert.Equal(t, time.Second, wait)

	ok, _ = rl.Allow("2.2.2.2")
	assert.True(t, ok, "limits are per ip")

	now = now.Add(time.Second)
	ok, _ = rl.Allow("1.1.1.1")
	assert.True(t, ok)

	now = now.Add(time.Hour)
	rl.evict()
	assert.Empty(t, rl.limiters)
}

func TestRateLimiter_Middleware(t *testing.T) {
	r := newTestRouter(NewRateLimiter(0.001, 1))
	r.GET("/x", func(*Request) (any, error) { return map[string]string{}, nil })

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
}

func TestRequireAPIKey(t *testing.T) {
	r := newTestRouter(nil)
	r.POST("/admin", func(*Request) (any, error) { return map[string]string{}, nil }, RequireAPIKey([]string{"k1", "k2"}))

	tests := []struct {
		key  string
		want int
	}{
		{key: "", want: http.StatusUnauthorized},
		{key: "bad", want: http.StatusUnauthorized},
		{key: "k2", want: http.StatusOK},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/admin", nil)
		if tt.key != "" {
			req.Header.Set(HeaderAPIKey, tt.key)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, tt.want, rec.Code, tt.key)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "peer only", remote: "10.0.0.7:5123", want: "10.0.0.7"},
		{name: "true client ip first", headers: map[string]string{"True-Client-IP": "203.0.113.9", "X-Real-IP": "198.51.100.1"}, remote: "10.0.0.7:5123", want: "203.0.113.9"},
		{name: "forwarded for takes first hop", headers: map[string]string{"X-Forwarded-For": "198.51.100.4, 10.0.0.1"}, remote: "10.0.0.7:5123", want: "198.51.100.4"},
		{name: "invalid header falls through", headers: map[string]string{"X-Real-IP": "nope"}, remote: "10.0.0.7:5123", want: "10.0.0.7"},
		{name: "nothing usable", remote: "pipe", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}

func TestCorrelationID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderCorrelationID, "bad\r\nvalue")
	req.Header.Set(HeaderRequestID, "  req-1  ")
	assert.Equal(t, "req-1", correlationID(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderCorrelationID, strings.Repeat("a", 200))
	assert.Len(t, correlationID(req), maxCorrelationIDLen)

	r := newTestRouter(nil)
	r.GET("/ping", func(*Request) (any, error) { return map[string]string{}, nil })
	rec := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "abc")
	r.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get(HeaderCorrelationID))
}

func TestMiddlewareMaintenance(t *testing.T) {
	cfg, err := config.NewViperFromBytes("yaml", []byte("app:\n  maintenance:\n    endpoints:\n      - /closed\n"))
	require.NoError(t, err)

	r := NewRouter(Config{Config: cfg, Instrument: instrument.NewNoop()})
	r.GET("/closed", func(*Request) (any, error) { return map[string]string{}, nil })
	r.GET("/open", func(*Request) (any, error) { return map[string]string{}, nil })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/closed", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "120", rec.Header().Get("Retry-After"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/open", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddlewareRecoverer(t *testing.T) {
	r := newTestRouter(nil)
	r.GET("/boom", func(*Request) (any, error) { panic("boom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decode(t, rec)["message"])
}
