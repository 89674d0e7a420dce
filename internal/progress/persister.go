package progress

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/mxchestnut/workshelf/internal/api"
	"github.com/mxchestnut/workshelf/internal/database"
	"github.com/mxchestnut/workshelf/internal/session"
)

const (
	defaultMaxAttempts = 5
	defaultBaseDelay   = 2 * time.Second
	flushBatchSize     = 16
)

// Persister bridges the reader widget's progress callback to the backend.
// Writes are best effort: queued locally, flushed in the background with
// bounded retry, and never surfaced to the user. Reading is never blocked on
// connectivity.
type Persister struct {
	db     *database.DB
	client *api.Client
	logger *log.Logger

	// flushMu serializes flushes: the background loop and the close-time
	// flush would otherwise both read the same due entry and send it twice.
	flushMu sync.Mutex

	maxAttempts int
	baseDelay   time.Duration
}

func NewPersister(db *database.DB, client *api.Client, logger *log.Logger) *Persister {
	return &Persister{
		db:          db,
		client:      client,
		logger:      logger,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
	}
}

// Record accepts the latest (location, percentage) for a book. It only
// touches local storage; failures are logged and swallowed.
func (p *Persister) Record(bookID, location string, percentage int) {
	if err := p.db.UpdateCachedProgress(bookID, location, percentage); err != nil {
		p.logger.Printf("progress: caching position for %s: %v", bookID, err)
	}
	if err := p.db.EnqueueProgress(bookID, location, percentage); err != nil {
		p.logger.Printf("progress: enqueuing for %s: %v", bookID, err)
	}
}

// Flush attempts delivery of every due entry once. Failed entries are backed
// off exponentially and dropped after the attempt limit; a missing session
// drops the entry silently, since progress is never saved while logged out.
func (p *Persister) Flush(ctx context.Context) {
	p.flushMu.Lock()
	defer p.flushMu.Unlock()

	entries, err := p.db.DueProgress(time.Now(), flushBatchSize)
	if err != nil {
		p.logger.Printf("progress: reading queue: %v", err)
		return
	}

	for _, e := range entries {
		err := p.client.UpdateProgress(ctx, e.BookID, e.LastLocation, e.Percentage)
		switch {
		case err == nil:
			if err := p.db.DeleteProgress(e.ID); err != nil {
				p.logger.Printf("progress: removing delivered entry: %v", err)
			}

		case errors.Is(err, session.ErrNotLoggedIn):
			p.logger.Printf("progress: dropping update for %s: not logged in", e.BookID)
			if err := p.db.DeleteProgress(e.ID); err != nil {
				p.logger.Printf("progress: removing entry: %v", err)
			}

		case e.Attempts+1 >= p.maxAttempts:
			p.logger.Printf("progress: giving up on %s after %d attempts: %v", e.BookID, e.Attempts+1, err)
			if err := p.db.DeleteProgress(e.ID); err != nil {
				p.logger.Printf("progress: removing entry: %v", err)
			}

		default:
			next := time.Now().Add(p.baseDelay << e.Attempts)
			p.logger.Printf("progress: update for %s failed (attempt %d), retrying at %s: %v", e.BookID, e.Attempts+1, next.Format(time.RFC3339), err)
			if err := p.db.RescheduleProgress(e.ID, next); err != nil {
				p.logger.Printf("progress: rescheduling entry: %v", err)
			}
		}

		if ctx.Err() != nil {
			return
		}
	}
}

// Run flushes on an interval until the context is cancelled.
func (p *Persister) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Flush(ctx)
		}
	}
}
