package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/starford/onboard/internal"
)

func testServices(t *testing.T) *internal.Services {
	t.Helper()
	dir := t.TempDir()
	cfg := internal.NewDefaultConfig()
	cfg.Content.Path = filepath.Join(dir, "content")
	cfg.SQLite.Path = filepath.Join(dir, "onboard.db")

	services, err := internal.Setup(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatal(err)
	}
	return services
}

func TestServeMCP_StopsWatcherBeforeReturning(t *testing.T) {
	services := testServices(t)
	defer services.Close()
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	served := false
	err := serveMCP(context.Background(), services, func() error {
		// Give the watcher time to start.
		time.Sleep(50 * time.Millisecond)
		served = true
		return nil
	})
	if err != nil {
		t.Fatalf("serveMCP: %v", err)
	}
	if !served {
		t.Error("serve was not called")
	}
	if _, err := services.DB.ListPages(); err != nil {
		t.Errorf("index unusable after serveMCP: %v", err)
	}
}

func TestServeMCP_ReturnsServeError(t *testing.T) {
	services := testServices(t)
	defer services.Close()

	boom := errors.New("stdin closed")
	err := serveMCP(context.Background(), services, func() error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}
