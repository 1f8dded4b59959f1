package producer

import (
	"context"

	"github.com/radieske/keyshop-casino/internal/shared/kafka"
	"github.com/radieske/keyshop-casino/pkg/contracts/events"
)

// KafkaPublisher publica rodadas liquidadas no tópico round_settled (key = userId)
type KafkaPublisher struct {
	Writer kafka.MessageWriter
	Topic  string
}

func NewKafkaPublisher(w kafka.MessageWriter, topic string) *KafkaPublisher {
	return &KafkaPublisher{Writer: w, Topic: topic}
}

func (p *KafkaPublisher) PublishRoundSettled(ctx context.Context, e events.RoundSettled) error {
	return kafka.WriteJSON(ctx, p.Writer, e.UserID, e)
}
