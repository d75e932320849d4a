// Package testutil holds helpers shared by package tests: free ports,
// server lifecycle and input fixtures under a temporary home.
package testutil

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackzampolin/qaflow/internal/config"
	"github.com/jackzampolin/qaflow/internal/home"
)

// NewHome creates a temporary home directory with its data and secrets
// subdirectories.
func NewHome(t *testing.T) *home.Dir {
	t.Helper()
	h, err := home.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := h.EnsureExists(); err != nil {
		t.Fatal(err)
	}
	return h
}

// WriteInput writes data at key under the home data directory and returns
// the file:// locator for it.
func WriteInput(t *testing.T, h *home.Dir, key string, data string) string {
	t.Helper()
	path := filepath.Join(h.DataPath(), filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return "file://" + key
}

// MockConfig returns the default configuration pointed at the mock provider
// with no secret lookup.
func MockConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.LLMProviders = map[string]config.LLMProviderCfg{
		"local": {Type: "mock", Enabled: true},
	}
	cfg.Defaults.LLMProvider = "local"
	cfg.Secrets = config.SecretsCfg{}
	return cfg
}

// FindFreePort finds an available TCP port and returns it as a string.
func FindFreePort() (string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	defer listener.Close()
	return fmt.Sprintf("%d", listener.Addr().(*net.TCPAddr).Port), nil
}

// WaitForServer polls /health until it answers 200.
func WaitForServer(url string, timeout time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	return fmt.Errorf("server not ready after %v", timeout)
}

// StartServer manages a server goroutine in tests.
//
//	ctx, cancel := context.WithCancel(context.Background())
//	done := make(chan error, 1)
//	go func() { done <- srv.Start(ctx) }()
//	starter := testutil.StartServer{Cancel: cancel, Done: done}
//	t.Cleanup(starter.Stop)
type StartServer struct {
	Cancel context.CancelFunc
	Done   <-chan error
}

// Stop cancels the server context and waits for shutdown.
func (s *StartServer) Stop() {
	if s.Cancel != nil {
		s.Cancel()
	}
	if s.Done != nil {
		<-s.Done
	}
}

// Wait returns the server's exit error or fails after timeout.
func (s *StartServer) Wait(timeout time.Duration) error {
	select {
	case err := <-s.Done:
		s.Done = nil
		return err
	case <-time.After(timeout):
		return fmt.Errorf("timeout waiting for shutdown")
	}
}
