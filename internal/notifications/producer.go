package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"weddingrsvp/internal/events"
	"weddingrsvp/internal/shared/models"
	"weddingrsvp/pkg/logger"
)

// KafkaProducerConfig contains configuration for the confirmation producer
type KafkaProducerConfig struct {
	Brokers          []string
	Topic            string
	RetryMax         int
	TimeoutMs        int
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
	MaxMessageBytes  int
}

// DefaultKafkaProducerConfig returns a default producer configuration
func DefaultKafkaProducerConfig(brokers []string, topic string) *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:          brokers,
		Topic:            topic,
		RetryMax:         3,
		TimeoutMs:        10000,
		RequiredAcks:     sarama.WaitForAll,
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
		MaxMessageBytes:  1000000,
	}
}

// NewSaramaProducerConfig translates the producer settings into a sarama config
func NewSaramaProducerConfig(config *KafkaProducerConfig) *sarama.Config {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(config.TimeoutMs) * time.Millisecond
	saramaConfig.Producer.Idempotent = config.IdempotentWrites
	saramaConfig.Producer.MaxMessageBytes = config.MaxMessageBytes

	// idempotent producers require a single in-flight request
	if config.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	// hash partitioner keeps a guest's mail ordered
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	return saramaConfig
}

// KafkaDispatcher queues confirmations on a Kafka topic for the consumer workers
type KafkaDispatcher struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
	wg       sync.WaitGroup
}

// NewKafkaDispatcher connects a sync producer to the brokers
func NewKafkaDispatcher(config *KafkaProducerConfig, log *logger.Logger) (*KafkaDispatcher, error) {
	producer, err := sarama.NewSyncProducer(config.Brokers, NewSaramaProducerConfig(config))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return NewKafkaDispatcherWithProducer(producer, config.Topic, log), nil
}

// NewKafkaDispatcherWithProducer wraps an existing producer
func NewKafkaDispatcherWithProducer(producer sarama.SyncProducer, topic string, log *logger.Logger) *KafkaDispatcher {
	if log == nil {
		log = logger.GetDefault()
	}
	return &KafkaDispatcher{producer: producer, topic: topic, log: log}
}

// Dispatch publishes the job in the background
func (d *KafkaDispatcher) Dispatch(ctx context.Context, sub models.Submission, ev events.Event) {
	detached := context.WithoutCancel(ctx)
	job := NewConfirmationJob(sub, ev)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.Publish(detached, job); err != nil {
			d.log.LogEmailFailed(detached, sub.Email, ev.Slug, err)
		}
	}()
}

// Publish sends one job to the topic and waits for the broker ack
func (d *KafkaDispatcher) Publish(ctx context.Context, job *ConfirmationJob) error {
	job.Status = JobStatusQueued

	messageBytes, err := job.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal confirmation job: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     d.topic,
		Key:       sarama.StringEncoder(job.PartitionKey()),
		Value:     sarama.ByteEncoder(messageBytes),
		Headers:   d.createHeaders(job),
		Timestamp: job.CreatedAt,
	}

	partition, offset, err := d.producer.SendMessage(message)
	if err != nil {
		job.MarkFailed(err)
		return fmt.Errorf("failed to send confirmation job to Kafka: %w", err)
	}

	d.log.DebugContext(ctx, "Confirmation job queued",
		"topic", d.topic,
		"partition", partition,
		"offset", offset,
		"job_id", job.ID.String(),
		"event", job.Event.Slug,
	)
	return nil
}

func (d *KafkaDispatcher) createHeaders(job *ConfirmationJob) []sarama.RecordHeader {
	return []sarama.RecordHeader{
		{Key: []byte("job_id"), Value: []byte(job.ID.String())},
		{Key: []byte("event_slug"), Value: []byte(job.Event.Slug)},
		{Key: []byte("will_attend"), Value: []byte(job.Submission.WillAttend)},
		{Key: []byte("producer"), Value: []byte("weddingrsvp")},
		{Key: []byte("created_at"), Value: []byte(job.CreatedAt.Format(time.RFC3339))},
	}
}

// Wait blocks until in-flight publishes finish or ctx is done
func (d *KafkaDispatcher) Wait(ctx context.Context) error {
	return waitGroupContext(ctx, &d.wg)
}

// Close closes the Kafka producer
func (d *KafkaDispatcher) Close() error {
	if d.producer == nil {
		return nil
	}
	if err := d.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	return nil
}
