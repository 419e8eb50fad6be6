// Package kafka publishes output records to a Kafka topic through an
// IBM/sarama synchronous producer.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"github.com/kilianp07/baysim/core/model"
	"github.com/kilianp07/baysim/infra/logger"
)

// Config holds the producer settings.
type Config struct {
	Brokers   string        `json:"brokers"`
	Topic     string        `json:"topic"`
	BatchSize int           `json:"batch_size"`
	ClientID  string        `json:"client_id"`
	Timeout   time.Duration `json:"timeout"`
}

// SetDefaults fills the unset fields.
func (c *Config) SetDefaults() {
	if c.Topic == "" {
		c.Topic = "baysim.records"
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 500
	}
	if c.ClientID == "" {
		c.ClientID = "baysim"
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if len(c.BrokerList()) == 0 {
		return fmt.Errorf("kafka brokers required")
	}
	return nil
}

// BrokerList splits the comma separated broker list.
func (c Config) BrokerList() []string {
	var out []string
	for _, b := range strings.Split(c.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// SaramaConfig returns the producer configuration used for the records.
func (c Config) SaramaConfig() *sarama.Config {
	sc := sarama.NewConfig()
	sc.ClientID = c.ClientID
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = 5
	sc.Producer.Retry.Backoff = 100 * time.Millisecond
	sc.Producer.Return.Successes = true
	sc.Producer.Partitioner = sarama.NewHashPartitioner
	sc.Net.DialTimeout = c.Timeout
	sc.Net.ReadTimeout = c.Timeout
	sc.Net.WriteTimeout = c.Timeout
	return sc
}

// RecordProducer sends records keyed by run ID so a run stays on one
// partition and keeps its order.
type RecordProducer struct {
	producer  sarama.SyncProducer
	topic     string
	batchSize int
	logger    logger.Logger
}

// NewRecordProducer connects to the brokers.
func NewRecordProducer(cfg Config) (*RecordProducer, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p, err := sarama.NewSyncProducer(cfg.BrokerList(), cfg.SaramaConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create Sarama producer: %w", err)
	}
	return NewRecordProducerWith(p, cfg), nil
}

// NewRecordProducerWith wraps an existing producer.
func NewRecordProducerWith(p sarama.SyncProducer, cfg Config) *RecordProducer {
	cfg.SetDefaults()
	return &RecordProducer{
		producer:  p,
		topic:     cfg.Topic,
		batchSize: cfg.BatchSize,
		logger:    logger.New("kafka_records"),
	}
}

type recordMessage struct {
	RunID string `json:"run_id"`
	model.OutputRecord
}

// Append sends the records in batches of the configured size.
func (p *RecordProducer) Append(ctx context.Context, runID string, recs []model.OutputRecord) error {
	if p.producer == nil {
		return fmt.Errorf("Sarama producer is not initialized")
	}
	batch := make([]*sarama.ProducerMessage, 0, p.batchSize)
	for i, r := range recs {
		b, err := json.Marshal(recordMessage{RunID: runID, OutputRecord: r})
		if err != nil {
			return err
		}
		batch = append(batch, &sarama.ProducerMessage{
			Topic: p.topic,
			Key:   sarama.StringEncoder(runID),
			Value: sarama.ByteEncoder(b),
		})
		if len(batch) == p.batchSize || i == len(recs)-1 {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := p.producer.SendMessages(batch); err != nil {
				p.logger.Errorf("failed to send %d records to %s: %v", len(batch), p.topic, err)
				return fmt.Errorf("send records: %w", err)
			}
			batch = batch[:0]
		}
	}
	p.logger.Debugf("sent %d records to %s", len(recs), p.topic)
	return nil
}

// Close closes the producer.
func (p *RecordProducer) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
