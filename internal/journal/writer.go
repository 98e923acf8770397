package journal

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/drivesight/console/internal/config"
	"github.com/drivesight/console/internal/connection"
)

// Metrics counts journal activity.
type Metrics struct {
	Inserts   int64
	Conflicts int64
	Flushes   int64
	Errors    int64
}

// incidentRow is the flattened journal row for one pushed incident.
type incidentRow struct {
	IncidentID   int64
	CameraID     int64
	IncidentType string
	Severity     string
	Confidence   float64
	Latitude     float64
	Longitude    float64
	Alerted      bool
	CreatedAt    time.Time
	ReceivedAt   int64 // microseconds
}

// Writer batches pushed incidents and inserts them append-only.
type Writer struct {
	cfg    config.JournalConfig
	logger *slog.Logger
	db     *pgxpool.Pool

	batch       []incidentRow
	batchMu     sync.Mutex
	flushTicker *time.Ticker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	metrics Metrics
}

// NewWriter creates a journal writer on the given pool.
func NewWriter(cfg config.JournalConfig, db *pgxpool.Pool, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		cfg:    cfg,
		logger: logger.With("component", "journal"),
		db:     db,
		batch:  make([]incidentRow, 0, cfg.BatchSize),
	}
}

// Start begins the periodic flush cycle.
func (w *Writer) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.flushTicker = time.NewTicker(w.cfg.FlushInterval)

	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("incident journal started",
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop drains the pending batch and shuts down.
func (w *Writer) Stop(ctx context.Context) error {
	w.logger.Info("stopping incident journal")

	if w.cancel != nil {
		w.cancel()
	}
	if w.flushTicker != nil {
		w.flushTicker.Stop()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		w.logger.Warn("incident journal stop timed out")
	}

	// Final flush with the caller's context; w.ctx is already canceled.
	w.flush(ctx)
	w.logger.Info("incident journal stopped")
	return nil
}

// Stats returns current metrics.
func (w *Writer) Stats() Metrics {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.metrics
}

// Handle consumes a push event. It matches the multiplexer handler
// signature; events that are not incident arrivals are ignored.
func (w *Writer) Handle(ev connection.EventEnvelope) {
	if ev.Kind != connection.EventNewIncident || ev.NewIncident == nil {
		return
	}
	row := w.transform(ev)

	w.batchMu.Lock()
	w.batch = append(w.batch, row)
	shouldFlush := len(w.batch) >= w.cfg.BatchSize
	w.batchMu.Unlock()

	if shouldFlush {
		w.flush(w.ctx)
	}
}

// transform flattens an incident arrival into a journal row.
func (w *Writer) transform(ev connection.EventEnvelope) incidentRow {
	inc := ev.NewIncident.Incident
	return incidentRow{
		IncidentID:   inc.ID,
		CameraID:     inc.CameraID,
		IncidentType: inc.IncidentType,
		Severity:     inc.Severity,
		Confidence:   inc.Confidence,
		Latitude:     inc.Latitude,
		Longitude:    inc.Longitude,
		Alerted:      ev.NewIncident.Alert != nil,
		CreatedAt:    inc.CreatedAt,
		ReceivedAt:   ev.ReceivedAt.UnixMicro(),
	}
}

// flushLoop periodically flushes the batch.
func (w *Writer) flushLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.flushTicker.C:
			w.flush(w.ctx)
		}
	}
}

// flush writes the current batch to the database.
func (w *Writer) flush(ctx context.Context) {
	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return
	}

	// Take ownership of current batch
	batch := w.batch
	w.batch = make([]incidentRow, 0, w.cfg.BatchSize)
	w.batchMu.Unlock()

	start := time.Now()

	conflicts, err := w.batchInsert(ctx, batch)
	if err != nil {
		w.logger.Error("batch insert failed", "error", err, "count", len(batch))
		w.batchMu.Lock()
		w.metrics.Errors++
		w.batchMu.Unlock()
		return
	}

	w.batchMu.Lock()
	w.metrics.Inserts += int64(len(batch) - conflicts)
	w.metrics.Conflicts += int64(conflicts)
	w.metrics.Flushes++
	w.batchMu.Unlock()

	w.logger.Debug("flushed incidents",
		"count", len(batch),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
}

// batchInsert inserts rows using pgx.Batch with ON CONFLICT DO NOTHING.
func (w *Writer) batchInsert(ctx context.Context, rows []incidentRow) (conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO incident_journal (incident_id, camera_id, incident_type, severity, confidence, latitude, longitude, alerted, created_at, received_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (incident_id) DO NOTHING
		`, r.IncidentID, r.CameraID, r.IncidentType, r.Severity, r.Confidence, r.Latitude, r.Longitude, r.Alerted, r.CreatedAt, r.ReceivedAt)
	}

	results := w.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	return conflicts, nil
}
