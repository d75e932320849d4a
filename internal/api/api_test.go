package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte(`{"status":"ok"}`))
		case "/echo":
			if r.Header.Get("Content-Type") != "application/json" {
				w.WriteHeader(http.StatusUnsupportedMediaType)
				return
			}
			var buf bytes.Buffer
			buf.ReadFrom(r.Body)
			w.Write(buf.Bytes())
		default:
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"bad input","job_id":"failed-1"}`))
		}
	}))
	defer srv.Close()
	c := NewClient(srv.URL)
	ctx := context.Background()

	var got map[string]string
	if err := c.Get(ctx, "/ok", &got); err != nil || got["status"] != "ok" {
		t.Fatalf("Get() = %v, %v", got, err)
	}

	var echo map[string]string
	if err := c.Post(ctx, "/echo", map[string]string{"a": "b"}, &echo); err != nil || echo["a"] != "b" {
		t.Fatalf("Post() = %v, %v", echo, err)
	}

	err := c.Get(ctx, "/fail", nil)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != 400 || statusErr.Message != "bad input" {
		t.Errorf("StatusError = %+v", statusErr)
	}
	var body map[string]string
	if err := statusErr.Decode(&body); err != nil || body["job_id"] != "failed-1" {
		t.Errorf("Decode() = %v, %v", body, err)
	}
}

func TestOutputTo(t *testing.T) {
	data := struct {
		JobID string `json:"job_id"`
		Note  string `json:"note,omitempty"`
	}{JobID: "j-<1>"}

	var buf bytes.Buffer
	if err := OutputTo(&buf, OutputFormatYAML, data); err != nil {
		t.Fatalf("OutputTo(yaml) error = %v", err)
	}
	if !strings.Contains(buf.String(), "job_id: j-<1>") || strings.Contains(buf.String(), "note") {
		t.Errorf("yaml = %q", buf.String())
	}

	buf.Reset()
	if err := OutputTo(&buf, OutputFormatJSON, data); err != nil {
		t.Fatalf("OutputTo(json) error = %v", err)
	}
	if !strings.Contains(buf.String(), `"job_id": "j-<1>"`) {
		t.Errorf("json = %q", buf.String())
	}

	if err := OutputTo(&buf, "xml", data); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := ParseOutputFormat("xml"); err == nil {
		t.Error("expected ParseOutputFormat error")
	}
}

type fakeEndpoint struct {
	path string
	init bool
}

func (e fakeEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", e.path, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }
}
func (e fakeEndpoint) RequiresInit() bool { return e.init }
func (e fakeEndpoint) Command(func() string) *cobra.Command {
	return &cobra.Command{Use: strings.TrimPrefix(e.path, "/")}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(fakeEndpoint{path: "/open"})
	r.Register(fakeEndpoint{path: "/guarded", init: true})

	mux := http.NewServeMux()
	r.RegisterRoutes(mux, func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) }
	})

	for path, want := range map[string]int{"/open": 204, "/guarded": 503} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		if rec.Code != want {
			t.Errorf("%s status = %d, want %d", path, rec.Code, want)
		}
	}

	group := Group("x", "x", func() string { return "" }, r.Endpoints()...)
	if len(group.Commands()) != 2 {
		t.Errorf("Group() commands = %d", len(group.Commands()))
	}
}
