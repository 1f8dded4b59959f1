package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/keyshop-casino/internal/history-worker/pubsub"
	"github.com/radieske/keyshop-casino/internal/shared/kafka"
	"github.com/radieske/keyshop-casino/pkg/contracts/events"
	"github.com/radieske/keyshop-casino/pkg/contracts/stats"
)

// Store persiste a rodada e devolve o agregado atualizado do jogador
type Store interface {
	Record(ctx context.Context, e events.RoundSettled) (stats.PlayerStats, bool, error)
}

type StatsCache interface {
	SetStats(ctx context.Context, s stats.PlayerStats) error
}

type Broadcaster interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Processor consome round_settled, grava histórico/stats e avisa o history-service.
// O offset só é confirmado depois que a mensagem foi persistida ou enviada à DLQ.
type Processor struct {
	Log         *zap.Logger
	Reader      kafka.MessageReader
	DLQ         kafka.MessageWriter // opcional
	Store       Store
	Cache       StatsCache  // opcional
	Broadcaster Broadcaster // opcional
	Channel     string

	Retries int                     // tentativas extras de persistência (padrão 3)
	Backoff func(int) time.Duration // espera antes da tentativa i

	OnConsumed func()       // métricas (counter++)
	OnPersist  func()       // métricas
	OnError    func(string) // métricas por fase
}

// Run inicia o loop principal de consumo e processamento das mensagens Kafka
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka fetch failed", zap.Error(err))
			p.fail("read")
			if !sleep(ctx, 500*time.Millisecond) {
				return ctx.Err()
			}
			continue
		}
		if err := p.Handle(ctx, m); err != nil {
			return err // cancelado no meio: a mensagem é reentregue
		}
		if err := p.Reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Warn("kafka commit failed", zap.Int64("offset", m.Offset), zap.Error(err))
			p.fail("commit")
		}
	}
}

// Handle processa uma mensagem; nunca bloqueia a partição numa mensagem ruim.
// Só devolve erro quando o contexto é cancelado antes de concluir.
func (p *Processor) Handle(ctx context.Context, m kafka.Message) error {
	if p.OnConsumed != nil {
		p.OnConsumed()
	}

	var ev events.RoundSettled
	if err := json.Unmarshal(m.Value, &ev); err != nil || ev.RoundID == "" || ev.UserID == "" {
		p.Log.Warn("invalid round_settled message", zap.Int64("offset", m.Offset), zap.Error(err))
		p.fail("decode")
		p.deadLetter(ctx, m, "decode")
		return nil
	}

	s, inserted, err := p.record(ctx, ev)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		p.Log.Error("persist round failed, sending to dlq",
			zap.String("roundId", ev.RoundID),
			zap.String("userId", ev.UserID),
			zap.Error(err),
		)
		p.fail("db")
		p.deadLetter(ctx, m, "db")
		return nil
	}
	if p.OnPersist != nil {
		p.OnPersist()
	}
	if !inserted {
		p.Log.Debug("duplicate round ignored", zap.String("roundId", ev.RoundID))
		return nil
	}

	// cache e broadcast são best effort: o histórico já está gravado
	if p.Cache != nil {
		if err := p.Cache.SetStats(ctx, s); err != nil {
			p.Log.Warn("redis set stats failed", zap.String("userId", ev.UserID), zap.Error(err))
			p.fail("cache")
		}
	}
	if p.Broadcaster != nil {
		b, _ := json.Marshal(pubsub.WSUpdate{UserID: ev.UserID, Payload: ev})
		if err := p.Broadcaster.Publish(ctx, p.Channel, b); err != nil {
			p.Log.Warn("ws broadcast publish failed", zap.Error(err))
			p.fail("broadcast")
		}
	}
	return nil
}

// record tenta gravar com retry simples antes de desistir
func (p *Processor) record(ctx context.Context, ev events.RoundSettled) (stats.PlayerStats, bool, error) {
	retries := p.Retries
	if retries <= 0 {
		retries = 3
	}
	s, inserted, err := p.Store.Record(ctx, ev)
	for i := 0; err != nil && i < retries; i++ {
		if !sleep(ctx, p.backoff(i)) {
			return s, false, ctx.Err()
		}
		s, inserted, err = p.Store.Record(ctx, ev)
	}
	return s, inserted, err
}

func (p *Processor) backoff(i int) time.Duration {
	if p.Backoff != nil {
		return p.Backoff(i)
	}
	return time.Duration(300*(i+1)) * time.Millisecond
}

func (p *Processor) deadLetter(ctx context.Context, m kafka.Message, stage string) {
	if p.DLQ == nil {
		return
	}
	dlq := kafka.Message{
		Key:   m.Key,
		Value: m.Value,
		Headers: append(append([]kafka.Header(nil), m.Headers...),
			kafka.Header{Key: "x-failed-stage", Value: []byte(stage)},
			kafka.Header{Key: "x-origin", Value: []byte(fmt.Sprintf("%s/%d/%d", m.Topic, m.Partition, m.Offset))},
		),
		Time: time.Now(),
	}
	if err := p.DLQ.WriteMessages(ctx, dlq); err != nil {
		p.Log.Error("dlq write failed", zap.Int64("offset", m.Offset), zap.Error(err))
		p.fail("dlq")
	}
}

func (p *Processor) fail(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
