package service

import (
	"context"
	"encoding/json"

	"clara-backend/internal/pkg/logger"
	"clara-backend/pkg/events"
	pktNats "clara-backend/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the in-process event bus: every event is written
// to the audit log, and mirrored to NATS when a publisher is connected.
type consumerService struct {
	bus     *events.Bus
	log     logger.ILogger
	natsPub *pktNats.Publisher
}

func NewConsumerService(bus *events.Bus, log logger.ILogger, natsPub *pktNats.Publisher) IConsumerService {
	return &consumerService{
		bus:     bus,
		log:     log,
		natsPub: natsPub,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.bus.Subscribe(ctx)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var envelope events.Envelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		cs.log.Error("consumer", "failed to unmarshal event", map[string]interface{}{
			"error": err.Error(),
		})
		// Ack malformed messages to prevent infinite retry.
		msg.Ack()
		return
	}

	cs.log.Info("audit", envelope.Type, envelope.Data)

	if cs.natsPub != nil {
		event := events.BaseEvent{
			Type:       envelope.Type,
			Data:       envelope.Data,
			OccurredAt: envelope.OccurredAt,
		}
		if err := cs.natsPub.Publish(ctx, event); err != nil {
			cs.log.Warn("consumer", "failed to mirror event to NATS", map[string]interface{}{
				"event": envelope.Type,
				"error": err.Error(),
			})
		}
	}

	msg.Ack()
}
