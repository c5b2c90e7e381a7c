package app

import (
	"context"
	"net/http"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/yungbote/mlcatalog-backend/internal/platform/logger"
)

func TestServeStopsOnContextCancel(t *testing.T) {
	a := &App{Log: &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}}
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.serve(ctx, srv) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned %v after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("serve did not stop after context cancel")
	}
}
