// Command relay streams export CSV files to a RabbitMQ queue, one
// message per data row, and marks the end of the batch with a sentinel
// message. The analyzer's mq mode consumes the stream and runs the same
// analysis as a batch run.
package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// endOfExport is published after the last file so the consumer knows the
// batch is complete. It must match what the analyzer expects.
const endOfExport = "__END_OF_EXPORT__"

func main() {
	inputDir := flag.String("inputdir", "", "Path to input directory containing export CSV files")
	pattern := flag.String("pattern", "*.csv", "Glob pattern for export files")
	host := flag.String("host", "localhost", "RabbitMQ host")
	port := flag.Int("port", 5672, "RabbitMQ port")
	queue := flag.String("queue", "post_rows", "Queue to publish rows to")
	flag.Parse()

	if *inputDir == "" {
		log.Fatalf("Usage: relay -inputdir input_dir [-pattern *.csv] [-host localhost] [-port 5672] [-queue post_rows]")
	}

	files, err := filepath.Glob(filepath.Join(*inputDir, *pattern))
	if err != nil {
		log.Fatalf("Failed to list input files: %v", err)
	}
	if len(files) == 0 {
		log.Fatalf("No files matching %s found in %s", *pattern, *inputDir)
	}
	sort.Strings(files) // publish in the same order the batch loader reads

	user := os.Getenv("PULSE_MQ_USER")
	if user == "" {
		user = "guest"
	}
	pass := os.Getenv("PULSE_MQ_PASS")
	if pass == "" {
		pass = "guest"
	}

	url := fmt.Sprintf("amqp://%s:%s@%s:%d/", user, pass, *host, *port)
	conn, err := amqp.Dial(url)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("Failed to open channel: %v", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		*queue, // name
		true,   // durable
		false,  // delete when unused
		false,  // exclusive
		false,  // no-wait
		nil,    // arguments
	)
	if err != nil {
		log.Fatalf("Failed to declare queue: %v", err)
	}

	total := 0
	for _, file := range files {
		n, err := publishFile(ch, q.Name, file)
		if err != nil {
			log.Fatalf("Failed to relay %s: %v", file, err)
		}
		log.Printf("Relayed %s (%d rows)", filepath.Base(file), n)
		total += n
	}

	if err := publish(ch, q.Name, []byte(endOfExport)); err != nil {
		log.Fatalf("Failed to publish end-of-export sentinel: %v", err)
	}
	log.Printf("Done. Relayed %d rows from %d files", total, len(files))
}

// publishFile streams one export file to the queue, one message per data
// row. The header row is skipped; the consumer assigns columns by
// position, just like the batch loader.
func publishFile(ch *amqp.Channel, queue, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	var reader *csv.Reader
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return 0, fmt.Errorf("failed to open gzip: %w", err)
		}
		defer gz.Close()
		reader = csv.NewReader(gz)
	} else {
		reader = csv.NewReader(f)
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	if _, err := reader.Read(); err != nil {
		return 0, fmt.Errorf("failed to read header: %w", err)
	}

	count := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("Skipping row: %v", err)
			continue
		}
		body, err := encodeRow(row)
		if err != nil {
			log.Printf("Skipping unencodable row: %v", err)
			continue
		}
		if err := publish(ch, queue, body); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// encodeRow renders one row as a single CSV line without the trailing
// newline. Quoted fields keep embedded newlines intact.
func encodeRow(row []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(row); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func publish(ch *amqp.Channel, queue string, body []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return ch.PublishWithContext(ctx,
		"",    // exchange
		queue, // routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "text/csv",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		})
}
