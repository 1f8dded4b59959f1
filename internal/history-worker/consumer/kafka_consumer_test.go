package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/keyshop-casino/internal/history-worker/cache"
	"github.com/radieske/keyshop-casino/internal/history-worker/pubsub"
	"github.com/radieske/keyshop-casino/internal/shared/kafka"
	"github.com/radieske/keyshop-casino/pkg/contracts/events"
	"github.com/radieske/keyshop-casino/pkg/contracts/stats"
)

// fakeReader entrega as mensagens em ordem e cancela o contexto ao esvaziar
type fakeReader struct {
	msgs      []kafka.Message
	cancel    context.CancelFunc
	committed []int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		r.cancel()
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

type captureWriter struct{ msgs []kafka.Message }

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

// memStore imita o repositório: idempotente por roundId, falha as N primeiras chamadas
type memStore struct {
	failFirst int
	calls     int
	seen      map[string]bool
	agg       map[string]stats.PlayerStats
}

func (s *memStore) Record(_ context.Context, e events.RoundSettled) (stats.PlayerStats, bool, error) {
	s.calls++
	if s.calls <= s.failFirst {
		return stats.PlayerStats{}, false, errors.New("db down")
	}
	if s.seen == nil {
		s.seen, s.agg = map[string]bool{}, map[string]stats.PlayerStats{}
	}
	if s.seen[e.RoundID] {
		return s.agg[e.UserID], false, nil
	}
	s.seen[e.RoundID] = true
	s.agg[e.UserID] = stats.Apply(s.agg[e.UserID], e)
	return s.agg[e.UserID], true, nil
}

type captureBroadcast struct {
	mu       sync.Mutex
	channels []string
	payloads [][]byte
}

func (b *captureBroadcast) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.channels = append(b.channels, channel)
	b.payloads = append(b.payloads, payload)
	return nil
}

func msg(t *testing.T, offset int64, e events.RoundSettled) kafka.Message {
	t.Helper()
	b, err := json.Marshal(e)
	if err != nil {
		t.Fatal(err)
	}
	return kafka.Message{Topic: "round_settled", Offset: offset, Key: []byte(e.UserID), Value: b}
}

type harness struct {
	proc   *Processor
	reader *fakeReader
	dlq    *captureWriter
	store  *memStore
	bc     *captureBroadcast
	mr     *miniredis.Miniredis
	stages []string
}

func newHarness(t *testing.T, store *memStore, msgs ...kafka.Message) (*harness, context.Context) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	h := &harness{
		reader: &fakeReader{msgs: msgs, cancel: cancel},
		dlq:    &captureWriter{},
		store:  store,
		bc:     &captureBroadcast{},
		mr:     mr,
	}
	h.proc = &Processor{
		Log:         zap.NewNop(),
		Reader:      h.reader,
		DLQ:         h.dlq,
		Store:       store,
		Cache:       cache.NewRedisCache(rdb, time.Minute),
		Broadcaster: h.bc,
		Channel:     "round_settled_broadcast",
		Backoff:     func(int) time.Duration { return 0 },
		OnError:     func(stage string) { h.stages = append(h.stages, stage) },
	}
	return h, ctx
}

func TestProcessorPersistsCachesAndBroadcasts(t *testing.T) {
	ev := events.RoundSettled{RoundID: "r1", UserID: "u1", Game: "roulette", TotalStaked: 100, TotalPaid: 3500}
	h, ctx := newHarness(t, &memStore{}, msg(t, 7, ev), msg(t, 8, ev))

	if err := h.proc.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("run = %v", err)
	}
	if len(h.reader.committed) != 2 {
		t.Fatalf("committed = %v", h.reader.committed)
	}

	raw, err := h.mr.Get(stats.CacheKey("u1"))
	if err != nil {
		t.Fatalf("stats not cached: %v", err)
	}
	var cached stats.PlayerStats
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		t.Fatal(err)
	}
	if cached.GamesPlayed != 1 || cached.TotalWon != 3500 {
		t.Fatalf("cached = %+v", cached)
	}
	if ttl := h.mr.TTL(stats.CacheKey("u1")); ttl != time.Minute {
		t.Fatalf("ttl = %v", ttl)
	}

	// a reentrega (offset 8) não gera segundo broadcast
	if len(h.bc.payloads) != 1 || h.bc.channels[0] != "round_settled_broadcast" {
		t.Fatalf("broadcasts = %d", len(h.bc.payloads))
	}
	var upd pubsub.WSUpdate
	if err := json.Unmarshal(h.bc.payloads[0], &upd); err != nil || upd.UserID != "u1" {
		t.Fatalf("update = %+v (%v)", upd, err)
	}
	if len(h.dlq.msgs) != 0 || len(h.stages) != 0 {
		t.Fatalf("dlq = %d, errors = %v", len(h.dlq.msgs), h.stages)
	}
}

func TestProcessorRetriesThenSucceeds(t *testing.T) {
	store := &memStore{failFirst: 2}
	ev := events.RoundSettled{RoundID: "r1", UserID: "u1", TotalStaked: 10}
	h, ctx := newHarness(t, store, msg(t, 1, ev))

	_ = h.proc.Run(ctx)
	if store.calls != 3 {
		t.Fatalf("calls = %d, want 3", store.calls)
	}
	if len(h.dlq.msgs) != 0 {
		t.Fatal("message sent to dlq after successful retry")
	}
}

func TestProcessorDeadLettersAfterRetries(t *testing.T) {
	store := &memStore{failFirst: 100}
	ev := events.RoundSettled{RoundID: "r1", UserID: "u1", TotalStaked: 10}
	m := msg(t, 42, ev)
	h, ctx := newHarness(t, store, m)

	_ = h.proc.Run(ctx)
	if store.calls != 4 {
		t.Fatalf("calls = %d, want 1 + 3 retries", store.calls)
	}
	if len(h.dlq.msgs) != 1 || string(h.dlq.msgs[0].Value) != string(m.Value) {
		t.Fatalf("dlq = %+v", h.dlq.msgs)
	}
	var stage, origin string
	for _, hd := range h.dlq.msgs[0].Headers {
		switch hd.Key {
		case "x-failed-stage":
			stage = string(hd.Value)
		case "x-origin":
			origin = string(hd.Value)
		}
	}
	if stage != "db" || origin != "round_settled/0/42" {
		t.Fatalf("headers stage=%q origin=%q", stage, origin)
	}
	if len(h.reader.committed) != 1 {
		t.Fatal("dead-lettered message was not committed")
	}
	if h.mr.Exists(stats.CacheKey("u1")) {
		t.Fatal("cache written for failed message")
	}
}

func TestProcessorRejectsInvalidPayload(t *testing.T) {
	h, ctx := newHarness(t, &memStore{},
		kafka.Message{Offset: 1, Value: []byte("{not json")},
		kafka.Message{Offset: 2, Value: []byte(`{"roundId":""}`)},
	)
	_ = h.proc.Run(ctx)

	if h.store.calls != 0 {
		t.Fatalf("store called %d times", h.store.calls)
	}
	if len(h.dlq.msgs) != 2 || len(h.reader.committed) != 2 {
		t.Fatalf("dlq = %d, committed = %v", len(h.dlq.msgs), h.reader.committed)
	}
	if len(h.stages) != 2 || h.stages[0] != "decode" {
		t.Fatalf("stages = %v", h.stages)
	}
}

func TestHandleStopsOnCancel(t *testing.T) {
	store := &memStore{failFirst: 100}
	h, _ := newHarness(t, store)
	h.proc.Backoff = func(int) time.Duration { return time.Hour }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := h.proc.Handle(ctx, msg(t, 1, events.RoundSettled{RoundID: "r", UserID: "u"}))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if len(h.dlq.msgs) != 0 {
		t.Fatal("cancelled message must not go to dlq")
	}
}
