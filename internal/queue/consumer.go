package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/maker-accounts/internal/logging"
	"github.com/iliyamo/maker-accounts/internal/model"
)

// UsageReleaser credits released bytes back to an account.
type UsageReleaser interface {
	Decrease(ctx context.Context, accountID uint64, size int64) (model.Usage, error)
}

// StartStorageReleasedConsumer connects to RabbitMQ, declares the
// storage.released queue (durable) and applies every message to the quota
// ledger. It reconnects with backoff until ctx is cancelled, then returns
// ctx.Err(). Messages that cannot be applied are logged and rejected without
// requeue so a bad message cannot spin the consumer.
func StartStorageReleasedConsumer(ctx context.Context, url string, ledger UsageReleaser, log logging.Logger) error {
	log = log.With("component", "storage-released-consumer")
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn(ctx, "failed to dial broker", "error", err, "retry_in", backoff.String())
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = consumeLoop(ctx, conn, ledger, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn(ctx, "consume loop ended; reconnecting", "error", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, ledger UsageReleaser, log logging.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn(ctx, "set QoS failed", "error", err)
	}

	if _, err := ch.QueueDeclare(StorageReleasedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(StorageReleasedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handleMessage(ctx, d.Body, ledger); err != nil {
				log.Error(ctx, "handle message failed", "error", err)
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
			log.Debug(ctx, "storage release applied", "delivery_tag", d.DeliveryTag)
		}
	}
}

func handleMessage(ctx context.Context, body []byte, ledger UsageReleaser) error {
	var ev StorageReleasedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.AccountID == 0 {
		return errors.New("missing account_id")
	}
	if ev.Size < 0 {
		return fmt.Errorf("negative size %d", ev.Size)
	}
	if _, err := ledger.Decrease(ctx, ev.AccountID, ev.Size); err != nil {
		return fmt.Errorf("decrease usage for account %d: %w", ev.AccountID, err)
	}
	return nil
}

// sleep waits for d or until ctx is done, reporting whether the full wait
// elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
