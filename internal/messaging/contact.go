package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/drstein77/batterycatalog/internal/models"
)

type Log interface {
	Info(string, ...zap.Field)
	Error(string, ...zap.Field)
}

// Publisher sends raw messages to a queue.
type Publisher interface {
	Publish(ctx context.Context, queue string, message []byte) error
}

// Notifier delivers a contact notification, e.g. by e-mail.
type Notifier interface {
	NotifyContact(ctx context.Context, msg models.ContactMessage) error
}

// ContactPublisher queues contact.created events instead of mailing inline.
type ContactPublisher struct {
	pub   Publisher
	queue string
}

func NewContactPublisher(pub Publisher) *ContactPublisher {
	return &ContactPublisher{pub: pub, queue: ContactQueue}
}

// NotifyContact publishes the stored message as a contact.created event.
func (p *ContactPublisher) NotifyContact(ctx context.Context, msg models.ContactMessage) error {
	body, err := json.Marshal(models.ContactEvent{Message: msg})
	if err != nil {
		return fmt.Errorf("failed to encode contact event: %w", err)
	}
	return p.pub.Publish(ctx, p.queue, body)
}

// ContactConsumer mails the contact.created events read from the queue.
type ContactConsumer struct {
	notifier Notifier
	log      Log
}

func NewContactConsumer(notifier Notifier, log Log) *ContactConsumer {
	return &ContactConsumer{notifier: notifier, log: log}
}

// Run handles deliveries until the channel closes or ctx is done.
// Malformed events are dropped. Failed notifications are requeued once.
func (c *ContactConsumer) Run(ctx context.Context, messages <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			c.handle(ctx, msg)
		}
	}
}

func (c *ContactConsumer) handle(ctx context.Context, msg amqp.Delivery) {
	var event models.ContactEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		c.log.Error("failed to parse contact event", zap.Error(err))
		msg.Nack(false, false)
		return
	}

	id := models.FormatID(event.Message.ID)
	if err := c.notifier.NotifyContact(ctx, event.Message); err != nil {
		c.log.Error("failed to send contact notification",
			zap.String("message_id", id), zap.Bool("redelivered", msg.Redelivered), zap.Error(err))
		msg.Nack(false, !msg.Redelivered)
		return
	}

	msg.Ack(false)
	c.log.Info("contact notification sent", zap.String("message_id", id))
}
