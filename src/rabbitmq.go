package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"
)

// endOfExport is the sentinel body the relay publishes after the last
// file. Receiving it means the batch is complete and analysis can run.
const endOfExport = "__END_OF_EXPORT__"

// RabbitMQConfig holds RabbitMQ connection configuration
type RabbitMQConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Queue    string
}

// RabbitMQ wraps one connection, channel, and declared queue
type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	config  RabbitMQConfig
}

// NewRabbitMQ creates a new RabbitMQ connection
func NewRabbitMQ(config RabbitMQConfig) (*RabbitMQ, error) {
	// Build connection URL
	url := fmt.Sprintf("amqp://%s:%s@%s:%d/", config.Username, config.Password, config.Host, config.Port)

	// Connect to RabbitMQ
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	// Create channel
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	// Declare queue
	q, err := ch.QueueDeclare(
		config.Queue, // name
		true,         // durable
		false,        // delete when unused
		false,        // exclusive
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	// Set QoS for fair dispatch
	err = ch.Qos(
		1,     // prefetch count
		0,     // prefetch size
		false, // global
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	return &RabbitMQ{
		conn:    conn,
		channel: ch,
		queue:   q,
		config:  config,
	}, nil
}

// Close closes the RabbitMQ connection
func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// QueueInfo returns the queue's current depth and consumer count.
func (r *RabbitMQ) QueueInfo() (map[string]interface{}, error) {
	queue, err := r.channel.QueueInspect(r.config.Queue)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect queue: %w", err)
	}

	return map[string]interface{}{
		"name":      queue.Name,
		"messages":  queue.Messages,
		"consumers": queue.Consumers,
	}, nil
}

// ConsumeRows drains the queue until the end-of-export sentinel arrives
// and returns every data row received before it. Messages that do not
// parse as a CSV row are logged and skipped; the stream keeps going.
func (r *RabbitMQ) ConsumeRows(ctx context.Context) ([][]string, error) {
	msgs, err := r.channel.Consume(
		r.queue.Name, // queue
		"",           // consumer
		true,         // auto-ack
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register a consumer: %w", err)
	}

	var rows [][]string
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return nil, fmt.Errorf("delivery channel closed before end of export")
			}
			body := string(msg.Body)
			if body == endOfExport {
				slog.Info("End of export received", "rows", len(rows))
				return rows, nil
			}
			row, err := decodeRow(body)
			if err != nil {
				slog.Warn("Skipping unparsable message", "error", err)
				continue
			}
			rows = append(rows, row)
		}
	}
}

// decodeRow parses one message body as a single CSV record. Quoted
// fields may span lines, so one message stays one row even when the
// post text contains newlines.
func decodeRow(body string) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(body))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader.Read()
}

// mqCredentials reads broker credentials from the environment, falling
// back to the broker's out-of-the-box guest account.
func mqCredentials() (string, string) {
	user := os.Getenv("PULSE_MQ_USER")
	if user == "" {
		user = "guest"
	}
	pass := os.Getenv("PULSE_MQ_PASS")
	if pass == "" {
		pass = "guest"
	}
	return user, pass
}
