// Package analytics records conversation activity for observability
// and serves the statistics queries. The engine writes here and never
// reads back; purging analytics must leave trained data intact.
package analytics

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "persona-service:"
	maxActivities = 200
)

// Activity is one resolved chat turn.
type Activity struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Persona   string    `json:"persona"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	Turn      int       `json:"turn"`
	Semi      bool      `json:"is_semi"`
	Final     bool      `json:"is_last"`
	Emotion   string    `json:"emotion"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// Sink fans activity records out to redis and SQLite through a small
// worker pool, so slow storage never blocks a chat turn. Submit is
// fire-and-forget; a full queue drops the record with a log line.
type Sink struct {
	store *Store
	rdb   *redis.Client
	log   *log.Logger

	jobs chan Activity
	wg   sync.WaitGroup
	once sync.Once
}

// NewSink builds a sink with the given worker and queue sizes. The
// redis client may be nil; the sink then only writes SQLite.
func NewSink(store *Store, rdb *redis.Client, workers, queueSize int, logger *log.Logger) *Sink {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 64
	}
	s := &Sink{
		store: store,
		rdb:   rdb,
		log:   logger,
		jobs:  make(chan Activity, queueSize),
	}
	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	return s
}

// Submit queues an activity record. It never blocks the caller.
func (s *Sink) Submit(a Activity) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}
	select {
	case s.jobs <- a:
	default:
		s.log.Warn("activity queue full, dropping record", "persona", a.Persona, "user", a.UserID)
	}
}

// Close drains the queue and stops the workers.
func (s *Sink) Close() {
	s.once.Do(func() { close(s.jobs) })
	s.wg.Wait()
}

func (s *Sink) worker() {
	defer s.wg.Done()
	for a := range s.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.store.InsertConversation(ctx, a); err != nil {
			s.log.Error("could not persist conversation", "persona", a.Persona, "err", err)
		}
		s.pushActivity(ctx, a)
		cancel()
	}
}

func (s *Sink) pushActivity(ctx context.Context, a Activity) {
	if s.rdb == nil {
		return
	}
	payload, err := json.Marshal(a)
	if err != nil {
		s.log.Error("could not marshal activity", "err", err)
		return
	}
	key := activityKey(a.Persona)
	pipe := s.rdb.Pipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, maxActivities-1)
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn("could not push activity to redis", "persona", a.Persona, "err", err)
	}
}

func activityKey(personaID string) string {
	return keyPrefix + "activity:" + personaID
}

func ratingsKey() string {
	return keyPrefix + "stats:ratings"
}
