package whttp

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestSendHTTPRequestParamsAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("per_page"); got != "100" {
			t.Errorf("want per_page=100, got %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token" {
			t.Errorf("want Authorization header, got %q", got)
		}
		w.Header().Set("Link", `<https://example.com/next>; rel="next"`)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	res, err := SendHTTPRequest(&WHTTPReq{
		URL:    srv.URL,
		Method: "GET",
		Params: url.Values{"per_page": {"100"}},
		Headers: []WHTTPHeader{
			{Name: "Authorization", Value: "Bearer token"},
		},
	}, NewClient(5*time.Second))
	if err != nil {
		t.Fatalf("SendHTTPRequest: %v", err)
	}
	if res.StatusCode != 200 {
		t.Fatalf("want status 200, got %d", res.StatusCode)
	}
	if res.BodyString != `{"ok":true}` {
		t.Fatalf("want body %q, got %q", `{"ok":true}`, res.BodyString)
	}
	if got := res.Headers.Get("Link"); got == "" {
		t.Fatal("want Link header on response, got none")
	}
}

func TestSendHTTPRequestTruncatedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		w.Write([]byte("short"))
	}))
	defer srv.Close()

	_, err := SendHTTPRequest(&WHTTPReq{URL: srv.URL, Method: "GET"}, NewClient(5*time.Second))
	if err == nil {
		t.Fatal("want body read error, got nil")
	}
}
