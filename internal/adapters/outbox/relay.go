package outbox

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"github.com/AchilleasB/campus-library/library-service/internal/config"
	"github.com/AchilleasB/campus-library/library-service/internal/core/ports"
	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"
	"github.com/sony/gobreaker"
)

const (
	// PostgreSQL NOTIFY/LISTEN configuration
	listenerMinReconnectInterval = 10 * time.Second
	listenerMaxReconnectInterval = time.Minute
	outboxChannelName            = "outbox_channel"

	// Event processing timeouts
	eventProcessTimeout     = 30 * time.Second
	batchProcessTimeout     = 60 * time.Second
	periodicProcessInterval = 90 * time.Second

	healthCheckStaleThreshold = 5 * time.Minute

	maxEventsPerBatch = 100
)

var errInvalidPayload = errors.New("outbox payload is not valid JSON")

type record struct {
	ID          string
	EventType   string
	AggregateID string
	CreatedAt   time.Time
	Payload     []byte
}

func (rec record) event() (ports.LibraryEvent, error) {
	if !jsoniter.ConfigFastest.Valid(rec.Payload) {
		return ports.LibraryEvent{}, errInvalidPayload
	}
	return ports.LibraryEvent{
		ID:          rec.ID,
		Type:        rec.EventType,
		AggregateID: rec.AggregateID,
		OccurredAt:  rec.CreatedAt,
		Payload:     rec.Payload,
	}, nil
}

// Relay listens for PostgreSQL NOTIFY signals on outbox_channel and hands
// every unprocessed outbox row to the publisher. A row is marked processed
// only after the publisher accepted it, so delivery is at least once.
type Relay struct {
	db            *sql.DB
	publisher     ports.LibraryEventPublisher
	listener      *pq.Listener
	dbURL         string
	dbCB          *gobreaker.CircuitBreaker
	lastProcessed atomic.Int64
	healthy       atomic.Bool
}

func NewRelay(db *sql.DB, dbURL string, publisher ports.LibraryEventPublisher) *Relay {
	r := &Relay{
		db:        db,
		dbURL:     dbURL,
		publisher: publisher,
		dbCB:      config.NewCircuitBreaker("Relay-PostgreSQL"),
	}
	r.markProcessed()
	return r
}

// IsHealthy is the liveness signal: the process is running its loop.
func (r *Relay) IsHealthy() bool {
	return r.healthy.Load()
}

// IsReady reports whether the relay can currently move events: the
// database breaker is closed and the loop made progress recently.
func (r *Relay) IsReady() bool {
	if r.dbCB.State() == gobreaker.StateOpen {
		return false
	}
	if time.Since(time.Unix(0, r.lastProcessed.Load())) > healthCheckStaleThreshold {
		return false
	}
	return r.healthy.Load()
}

func (r *Relay) markProcessed() {
	r.lastProcessed.Store(time.Now().UnixNano())
	r.healthy.Store(true)
}

// Start blocks until ctx is cancelled.
func (r *Relay) Start(ctx context.Context) error {
	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Printf("outbox relay: listener error: %v", err)
		}
	}

	r.listener = pq.NewListener(r.dbURL, listenerMinReconnectInterval, listenerMaxReconnectInterval, reportProblem)
	defer r.listener.Close()

	if err := r.listener.Listen(outboxChannelName); err != nil {
		return err
	}

	log.Printf("outbox relay: listening on '%s' for notifications...", outboxChannelName)

	// catch up on anything written while the relay was down
	if err := r.processUnprocessedEvents(ctx); err != nil {
		log.Printf("outbox relay: error processing startup backlog: %v", err)
	}

	ticker := time.NewTicker(periodicProcessInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("outbox relay: shutting down...")
			return ctx.Err()

		case notification := <-r.listener.Notify:
			if notification == nil {
				log.Println("outbox relay: received nil notification (reconnecting...)")
				r.healthy.Store(false)
				// notifications may have been lost while disconnected
				if err := r.processUnprocessedEvents(ctx); err != nil {
					log.Printf("outbox relay: error processing backlog after reconnect: %v", err)
				}
				continue
			}

			if err := r.processEventByID(ctx, notification.Extra); err != nil {
				log.Printf("outbox relay: error processing event %s: %v", notification.Extra, err)
			} else {
				r.markProcessed()
			}

		case <-ticker.C:
			go r.listener.Ping()

			if err := r.processUnprocessedEvents(ctx); err != nil {
				log.Printf("outbox relay: error in periodic processing: %v", err)
			} else {
				r.markProcessed()
			}
		}
	}
}

// deliver publishes one record. Records whose payload cannot be decoded
// are reported as errInvalidPayload and must be retired, not retried.
func (r *Relay) deliver(ctx context.Context, rec record) error {
	evt, err := rec.event()
	if err != nil {
		return err
	}
	return r.publisher.Publish(ctx, evt)
}

func markDone(ctx context.Context, tx *sql.Tx, id string) error {
	_, err := tx.ExecContext(ctx, `UPDATE outbox_events SET processed_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *Relay) processEventByID(ctx context.Context, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, eventProcessTimeout)
	defer cancel()

	_, err := r.dbCB.Execute(func() (interface{}, error) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		var rec record
		err = tx.QueryRowContext(ctx, `
			SELECT id, event_type, aggregate_id, created_at, payload
			FROM outbox_events
			WHERE id = $1 AND processed_at IS NULL
			FOR UPDATE SKIP LOCKED`, eventID).
			Scan(&rec.ID, &rec.EventType, &rec.AggregateID, &rec.CreatedAt, &rec.Payload)
		if errors.Is(err, sql.ErrNoRows) {
			// already handled or locked by another relay
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		if err := r.deliver(ctx, rec); err != nil {
			if !errors.Is(err, errInvalidPayload) {
				return nil, err
			}
			log.Printf("outbox relay: dropping event %s (%s): %v", rec.ID, rec.EventType, err)
		}

		if err := markDone(ctx, tx, rec.ID); err != nil {
			return nil, err
		}
		log.Printf("outbox relay: published %s %s", rec.EventType, rec.ID)
		return nil, tx.Commit()
	})
	return err
}

// processUnprocessedEvents drains up to maxEventsPerBatch pending rows in
// creation order. A publish failure stops the batch so later events are not
// delivered ahead of it.
func (r *Relay) processUnprocessedEvents(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, batchProcessTimeout)
	defer cancel()

	_, err := r.dbCB.Execute(func() (interface{}, error) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		rows, err := tx.QueryContext(ctx, `
			SELECT id, event_type, aggregate_id, created_at, payload
			FROM outbox_events
			WHERE processed_at IS NULL
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED`, maxEventsPerBatch)
		if err != nil {
			return nil, err
		}

		var records []record
		for rows.Next() {
			var rec record
			if err := rows.Scan(&rec.ID, &rec.EventType, &rec.AggregateID, &rec.CreatedAt, &rec.Payload); err != nil {
				rows.Close()
				return nil, err
			}
			records = append(records, rec)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}

		sent, err := r.deliverBatch(ctx, records, func(id string) error { return markDone(ctx, tx, id) })
		if sent > 0 {
			log.Printf("outbox relay: published %d of %d pending events", sent, len(records))
		}
		if commitErr := tx.Commit(); commitErr != nil {
			return nil, commitErr
		}
		return nil, err
	})
	return err
}

// deliverBatch publishes records in order and calls done for each one that
// is finished with. It stops at the first publish failure and returns it.
func (r *Relay) deliverBatch(ctx context.Context, records []record, done func(id string) error) (int, error) {
	sent := 0
	for _, rec := range records {
		if err := r.deliver(ctx, rec); err != nil {
			if !errors.Is(err, errInvalidPayload) {
				return sent, err
			}
			log.Printf("outbox relay: dropping event %s (%s): %v", rec.ID, rec.EventType, err)
		} else {
			sent++
		}
		if err := done(rec.ID); err != nil {
			return sent, err
		}
	}
	return sent, nil
}
