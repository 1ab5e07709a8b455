package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// PendingSyncer syncs whatever commits are still pending.
type PendingSyncer interface {
	ProcessPendingCommits(ctx context.Context) error
}

// SyncPollerConfig holds configuration for the sync poller
type SyncPollerConfig struct {
	// PollInterval is how often to check for pending commits (default: 30s)
	PollInterval time.Duration
}

func DefaultSyncPollerConfig() SyncPollerConfig {
	return SyncPollerConfig{PollInterval: 30 * time.Second}
}

// SyncPoller is the backup path for commits whose AMQP message was lost.
type SyncPoller struct {
	syncer PendingSyncer
	config SyncPollerConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewSyncPoller(syncer PendingSyncer, config SyncPollerConfig) *SyncPoller {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultSyncPollerConfig().PollInterval
	}
	return &SyncPoller{syncer: syncer, config: config}
}

// Start begins the polling loop. Returns an error if already running.
func (p *SyncPoller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return errors.New("sync poller is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	go p.runLoop(ctx, stopCh, doneCh)

	slog.InfoContext(ctx, "Sync poller started", "poll_interval", p.config.PollInterval)
	return nil
}

// Stop signals the loop and waits for the current batch to finish.
func (p *SyncPoller) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.running = false
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Sync poller stopped gracefully")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Sync poller stop timed out")
		return ctx.Err()
	}
}

func (p *SyncPoller) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *SyncPoller) runLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	// Process immediately on startup
	p.poll(ctx)

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *SyncPoller) poll(ctx context.Context) {
	if err := p.syncer.ProcessPendingCommits(ctx); err != nil && ctx.Err() == nil {
		slog.ErrorContext(ctx, "Failed to process pending commits", "error", err)
	}
}
