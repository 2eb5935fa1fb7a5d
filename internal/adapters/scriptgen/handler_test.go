package scriptgen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ipstudio/pkg/domain"
)

type stubGenerator struct {
	script domain.Script
	err    error
	last   Request
}

func (s *stubGenerator) GenerateScript(_ context.Context, req Request) (domain.Script, error) {
	s.last = req
	return s.script, s.err
}

func postScript(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/ai/generate-script", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerGenerateSuccess(t *testing.T) {
	gen := &stubGenerator{script: domain.Script{
		Hook:       "你有没有想过：如何三个月转行？",
		Outline:    []string{"现状", "方法", "结果"},
		FullScript: "完整脚本",
	}}
	h := NewHandler(gen, "sk-live-key", nil)

	rec := postScript(t, h, `{"title":"三个月转行指南","platform":"douyin","topicCluster":"转行"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing X-Request-ID header")
	}
	var out struct {
		Success bool          `json:"success"`
		Script  domain.Script `json:"script"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !out.Success || out.Script.Hook != gen.script.Hook {
		t.Fatalf("unexpected response: %+v", out)
	}
	if gen.last.Title != "三个月转行指南" || gen.last.Platform != domain.PlatformDouyin {
		t.Fatalf("request not forwarded: %+v", gen.last)
	}
}

func TestHandlerRejectsMissingFields(t *testing.T) {
	h := NewHandler(&stubGenerator{}, "sk-live-key", nil)
	cases := map[string]string{
		"bad json":         `{`,
		"missing title":    `{"platform":"douyin"}`,
		"missing platform": `{"title":"x"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := postScript(t, h, body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestHandlerUnconfiguredKey(t *testing.T) {
	for _, key := range []string{"", "  ", "your-api-key-here", "sk-xxx"} {
		h := NewHandler(&stubGenerator{}, key, nil)
		rec := postScript(t, h, `{"title":"x","platform":"douyin"}`)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("key %q: status = %d, want 500", key, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "not configured") {
			t.Fatalf("key %q: body = %s", key, rec.Body.String())
		}
	}
}

func TestHandlerProxiesUpstreamStatus(t *testing.T) {
	gen := &stubGenerator{err: &UpstreamError{Status: http.StatusTooManyRequests, Body: "rate limited"}}
	h := NewHandler(gen, "sk-live-key", nil)
	rec := postScript(t, h, `{"title":"x","platform":"douyin"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "rate limited") {
		t.Fatalf("upstream body leaked into response: %s", rec.Body.String())
	}
}

func TestHandlerEmptyAndUnparsableReplies(t *testing.T) {
	for _, tc := range []struct {
		name string
		err  error
		want string
	}{
		{"empty reply", ErrEmptyReply, "empty reply"},
		{"parse failure", errors.Join(ErrParse, errors.New("unexpected token")), "could not be parsed"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHandler(&stubGenerator{err: tc.err}, "sk-live-key", nil)
			rec := postScript(t, h, `{"title":"x","platform":"douyin"}`)
			if rec.Code != http.StatusInternalServerError {
				t.Fatalf("status = %d, want 500", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tc.want) {
				t.Fatalf("body = %s, want substring %q", rec.Body.String(), tc.want)
			}
		})
	}
}

func TestHandlerMethodAndPath(t *testing.T) {
	h := NewHandler(&stubGenerator{}, "sk-live-key", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/ai/generate-script", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET status = %d, want 405", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/ai/other", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown path status = %d, want 404", rec.Code)
	}
}
