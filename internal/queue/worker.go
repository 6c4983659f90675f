package queue

import (
	"context"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const retryHeader = "x-retry-count"

var ErrConsumerClosed = errors.New("consumer closed")

type HandlerFunc func(ctx context.Context, body []byte) error

// ConsumeWithRetry acks handled messages and republishes failed ones with an
// incremented x-retry-count header. After maxRetries the message is rejected
// without requeue so it reaches the dead letter exchange. It returns when ctx
// is done or the channel closes.
func (c *Client) ConsumeWithRetry(ctx context.Context, queue string, handler HandlerFunc, maxRetries int, retryDelay time.Duration) error {
	msgs, err := c.ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return ErrConsumerClosed
			}
			c.handleDelivery(ctx, queue, msg, handler, maxRetries, retryDelay)
		}
	}
}

func (c *Client) handleDelivery(ctx context.Context, queue string, msg amqp.Delivery, handler HandlerFunc, maxRetries int, retryDelay time.Duration) {
	if err := handler(ctx, msg.Body); err == nil {
		_ = msg.Ack(false)
		return
	}

	retryCount := getRetryCount(msg.Headers)
	if retryCount >= maxRetries {
		_ = msg.Nack(false, false)
		return
	}

	headers := msg.Headers
	if headers == nil {
		headers = amqp.Table{}
	}
	headers[retryHeader] = int32(retryCount + 1)

	select {
	case <-ctx.Done():
		_ = msg.Nack(false, true)
		return
	case <-time.After(retryDelay):
	}

	_ = c.publish(ctx, "", queue, amqp.Publishing{
		ContentType: msg.ContentType,
		Body:        msg.Body,
		Headers:     headers,
		Timestamp:   time.Now(),
	})
	_ = msg.Ack(false)
}

func getRetryCount(headers amqp.Table) int {
	if headers == nil {
		return 0
	}
	if v, ok := headers[retryHeader]; ok {
		switch t := v.(type) {
		case int32:
			return int(t)
		case int64:
			return int(t)
		case int:
			return t
		}
	}
	return 0
}
