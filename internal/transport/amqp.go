package transport

import (
	"context"
	"encoding/json"

	"github.com/streadway/amqp"

	"github.com/mkandie/concierge-backend/internal/model"
)

const DeliveryQueue = "push_deliveries"

// PushJob is the wire shape consumed by cmd/worker.
type PushJob struct {
	Message  json.RawMessage `json:"message"`
	Audience json.RawMessage `json:"audience,omitempty"`
}

// AMQPSender hands campaign sends to the device-facing worker through a
// durable queue. A confirmed publish counts as delivered; publish
// refusals are ordinary delivery failures and come back in the outcome.
type AMQPSender struct {
	ch    *amqp.Channel
	queue string
}

func NewAMQPSender(conn *amqp.Connection) (*AMQPSender, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	q, err := ch.QueueDeclare(
		DeliveryQueue, // name
		true,          // durable
		false,         // delete when unused
		false,         // exclusive
		false,         // no-wait
		nil,           // arguments
	)
	if err != nil {
		return nil, err
	}

	return &AMQPSender{ch: ch, queue: q.Name}, nil
}

func (s *AMQPSender) Send(ctx context.Context, message, audience json.RawMessage) (model.DeliveryOutcome, error) {
	body, err := json.Marshal(PushJob{Message: message, Audience: audience})
	if err != nil {
		return model.DeliveryOutcome{Delivered: false, Error: "encode push job: " + err.Error()}, nil
	}

	err = s.ch.Publish(
		"",      // exchange
		s.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return model.DeliveryOutcome{Delivered: false, Error: "publish: " + err.Error()}, nil
	}

	return model.DeliveryOutcome{
		Delivered:      true,
		RecipientCount: RecipientCountHint(audience),
	}, nil
}

func (s *AMQPSender) Close() error {
	return s.ch.Close()
}
