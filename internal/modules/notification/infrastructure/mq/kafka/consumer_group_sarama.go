package kafka

import (
	"context"
	"errors"
	"strings"
	"time"

	"FPKProgress/internal/modules/notification/infrastructure/mq"
	"FPKProgress/pkg/zlog"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

type saramaConsumer struct {
	cg     sarama.ConsumerGroup
	topics []string
}

func NewConsumer(opts Options, groupID string, topics ...string) (mq.Consumer, error) {
	if !opts.Enabled() {
		return nil, errors.New("kafka brokers is empty")
	}
	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		return nil, errors.New("kafka consumer group id is empty")
	}
	if len(topics) == 0 {
		return nil, errors.New("kafka topics is empty")
	}

	sc := newSaramaConfig(opts.ClientID)
	// 推送只关心新通知，离线期间的通知由列表接口补齐
	sc.Consumer.Offsets.Initial = sarama.OffsetNewest
	sc.Consumer.Group.Rebalance.Timeout = 30 * time.Second
	sc.Consumer.Group.Session.Timeout = 30 * time.Second

	cg, err := sarama.NewConsumerGroup(opts.Brokers, groupID, sc)
	if err != nil {
		return nil, err
	}
	return &saramaConsumer{cg: cg, topics: topics}, nil
}

func (c *saramaConsumer) Run(ctx context.Context, handler mq.Handler) error {
	if handler == nil {
		return errors.New("handler is nil")
	}
	h := &consumerGroupHandler{h: handler}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		// Consume 在每次 rebalance 后返回，需要循环重新加入
		if err := c.cg.Consume(ctx, c.topics, h); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return err
		}
	}
}

func (c *saramaConsumer) Close() error {
	if c == nil || c.cg == nil {
		return nil
	}
	return c.cg.Close()
}

type consumerGroupHandler struct {
	h mq.Handler
}

func (consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *consumerGroupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for m := range claim.Messages() {
		msg := mq.Message{
			Topic: m.Topic,
			Key:   m.Key,
			Value: m.Value,
		}
		if len(m.Headers) > 0 {
			msg.Headers = make(map[string]string, len(m.Headers))
			for _, hdr := range m.Headers {
				if hdr == nil || len(hdr.Key) == 0 {
					continue
				}
				msg.Headers[string(hdr.Key)] = string(hdr.Value)
			}
		}

		if err := h.h.Handle(sess.Context(), msg); err != nil {
			zlog.Warn("kafka handler failed", zap.String("topic", m.Topic), zap.Int32("partition", m.Partition), zap.Int64("offset", m.Offset), zap.Error(err))
			continue
		}
		sess.MarkMessage(m, "")
	}
	return nil
}
