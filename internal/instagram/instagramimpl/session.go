package instagramimpl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Davincible/goinsta/v3"
	"github.com/orgball2608/insta-archive/internal/instagram"
	"github.com/orgball2608/insta-archive/pkg/retry"
)

// Login attempts to reuse the exported session, falling back to a credential login.
func (ig *InstaImpl) Login(ctx context.Context) error {
	ig.mu.Lock()
	defer ig.mu.Unlock()

	return ig.login(ctx)
}

// session returns a logged-in client. Callers hold ig.mu.
func (ig *InstaImpl) session(ctx context.Context) (*goinsta.Instagram, error) {
	if ig.client == nil {
		if err := ig.login(ctx); err != nil {
			return nil, err
		}
	}
	return ig.client, nil
}

func (ig *InstaImpl) login(ctx context.Context) error {
	if err := ig.reloadSession(); err == nil {
		if ig.validateSession(ctx) {
			ig.logger.Info("Successfully logged in using existing session")
			return nil
		}
		ig.logger.Warn("Session loaded but appears to be invalid, attempting fresh login")
	}

	if ig.username == "" || ig.password == "" {
		ig.client = nil
		return instagram.ErrNotConfigured
	}

	ig.logger.Info("Attempting to log in with credentials", "username", ig.username)

	client := goinsta.New(ig.username, ig.password)
	cfg := retry.DefaultConfig()
	cfg.InitialInterval = time.Second
	cfg.MaxRetries = 2

	if err := retry.Do(ctx, ig.logger, "instagram login", func() error { return client.Login() }, cfg); err != nil {
		ig.client = nil
		return fmt.Errorf("failed to log in after multiple attempts: %w", err)
	}
	ig.client = client

	ig.logger.Info("Successfully logged in with credentials")

	if err := ig.saveSession(); err != nil {
		ig.logger.Warn("Failed to save Instagram session", "error", err)
	}

	return nil
}

func (ig *InstaImpl) reloadSession() error {
	if _, err := os.Stat(ig.sessionPath); err != nil {
		return fmt.Errorf("session file not found: %w", err)
	}

	client, err := goinsta.Import(ig.sessionPath)
	if err != nil {
		return fmt.Errorf("failed to import session: %w", err)
	}

	ig.client = client
	return nil
}

func (ig *InstaImpl) validateSession(ctx context.Context) bool {
	if ig.client == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	done := make(chan bool, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ig.logger.Error("Panic in Instagram session validation", "panic", r)
				done <- false
			}
		}()
		done <- ig.client.Account.Sync() == nil
	}()

	select {
	case valid := <-done:
		return valid
	case <-ctx.Done():
		ig.logger.Warn("Session validation timed out")
		return false
	}
}

func (ig *InstaImpl) saveSession() error {
	if ig.client == nil {
		return fmt.Errorf("no active Instagram session to save")
	}

	if err := os.MkdirAll(filepath.Dir(ig.sessionPath), 0o755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	if err := ig.client.Export(ig.sessionPath); err != nil {
		return fmt.Errorf("failed to export session: %w", err)
	}

	ig.logger.Info("Instagram session saved", "path", ig.sessionPath)
	return nil
}
