package configwatcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"talent_match_backend/internal/config"
)

func writeFile(t *testing.T, path, secret string) {
	t.Helper()
	body := []byte("server:\n  mode: debug\nstorage:\n  type: minio\ncron:\n  secret: " + secret + "\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestWatchConfigReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "old")

	reloaded := make(chan *config.Config, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		WatchConfig(ctx, path, func(cfg *config.Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()
	defer func() {
		cancel()
		<-done
	}()

	// 等待 watcher 注册完成
	time.Sleep(100 * time.Millisecond)
	writeFile(t, path, "rotated")

	select {
	case cfg := <-reloaded:
		if cfg.Cron.Secret != "rotated" {
			t.Fatalf("expected rotated secret, got %q", cfg.Cron.Secret)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
}
