// Package reminder turns the settings toggles into outbound pickup and
// payment reminder messages on a message queue.
package reminder

import (
	"encoding/json"

	"github.com/streadway/amqp"
)

const (
	QueuePickup  = "pickup_reminders"
	QueuePayment = "payment_reminders"
)

// Message is one reminder for one customer. Channel flags mirror the
// settings toggles; a downstream consumer decides how to deliver.
type Message struct {
	Kind         string `json:"kind"` // "pickup" or "payment"
	CustomerID   string `json:"customer_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	ViaEmail     bool   `json:"via_email"`
	ViaSMS       bool   `json:"via_sms"`
	PickupDate   string `json:"pickup_date,omitempty"`
	PaymentState string `json:"payment_state,omitempty"`
}

// Publisher delivers reminder messages to a named queue.
type Publisher interface {
	Publish(queue string, msg Message) error
	Close() error
}

// AMQPPublisher publishes reminders to RabbitMQ queues.
type AMQPPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	prefix  string
}

// NewAMQPPublisher dials the broker and declares the reminder queues.
// prefix namespaces the queues, useful when environments share a broker.
func NewAMQPPublisher(url, prefix string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	p := &AMQPPublisher{conn: conn, channel: ch, prefix: prefix}
	for _, q := range []string{QueuePickup, QueuePayment} {
		if _, err := ch.QueueDeclare(p.prefix+q, true, false, false, false, nil); err != nil {
			p.Close()
			return nil, err
		}
	}
	return p, nil
}

// Publish sends one message to the queue as JSON.
func (p *AMQPPublisher) Publish(queue string, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return p.channel.Publish("", p.prefix+queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

// Close releases the channel and connection.
func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
