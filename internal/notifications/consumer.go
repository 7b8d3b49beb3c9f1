package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"weddingrsvp/pkg/logger"
)

type ConsumerConfig struct {
	Brokers              []string
	GroupID              string
	Topics               []string
	SessionTimeoutMs     int
	HeartbeatMs          int
	RetryBackoffMs       int
	MaxProcessingTime    time.Duration
	AutoCommit           bool
	OffsetOldest         bool
	MaxRetries           int
	RetryBackoffDuration time.Duration
}

func DefaultConsumerConfig(brokers []string, groupID, topic string) *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:              brokers,
		GroupID:              groupID,
		Topics:               []string{topic},
		SessionTimeoutMs:     30000,
		HeartbeatMs:          3000,
		RetryBackoffMs:       100,
		MaxProcessingTime:    5 * time.Minute,
		AutoCommit:           true,
		OffsetOldest:         false,
		MaxRetries:           3,
		RetryBackoffDuration: time.Second,
	}
}

// ConfirmationConsumer reads queued confirmation jobs and mails them
type ConfirmationConsumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	sender        Sender
	log           *logger.Logger
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

func NewConfirmationConsumer(config *ConsumerConfig, sender Sender, log *logger.Logger) (*ConfirmationConsumer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Consumer.Group.Session.Timeout = time.Duration(config.SessionTimeoutMs) * time.Millisecond
	saramaConfig.Consumer.Group.Heartbeat.Interval = time.Duration(config.HeartbeatMs) * time.Millisecond
	saramaConfig.Consumer.Retry.Backoff = time.Duration(config.RetryBackoffMs) * time.Millisecond
	saramaConfig.Consumer.MaxProcessingTime = config.MaxProcessingTime
	saramaConfig.Consumer.Return.Errors = true

	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	if config.AutoCommit {
		saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
		saramaConfig.Consumer.Offsets.AutoCommit.Interval = 1 * time.Second
	}

	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	if log == nil {
		log = logger.GetDefault()
	}

	return &ConfirmationConsumer{
		consumerGroup: consumerGroup,
		config:        config,
		sender:        sender,
		log:           log.WithComponent("confirmation-consumer"),
	}, nil
}

// Start launches numWorkers consume loops. They run until Stop is called or ctx is done.
func (c *ConfirmationConsumer) Start(ctx context.Context, numWorkers int) {
	ctx, c.cancel = context.WithCancel(ctx)

	go c.handleErrors()

	for i := 0; i < numWorkers; i++ {
		c.wg.Add(1)
		go func(workerID int) {
			defer c.wg.Done()
			c.runWorker(ctx, workerID)
		}(i)
	}

	c.log.Info("Confirmation consumers started", "workers", numWorkers, "topics", c.config.Topics)
}

func (c *ConfirmationConsumer) runWorker(ctx context.Context, workerID int) {
	handler := &consumerGroupHandler{
		worker: newJobWorker(workerID, c.sender, c.config, c.log),
	}

	for {
		if ctx.Err() != nil {
			return
		}
		if err := c.consumerGroup.Consume(ctx, c.config.Topics, handler); err != nil {
			c.log.Error("Error consuming confirmation jobs", "worker", workerID, "error", err.Error())
			time.Sleep(time.Second)
		}
	}
}

func (c *ConfirmationConsumer) handleErrors() {
	for err := range c.consumerGroup.Errors() {
		c.log.Error("Consumer group error", "error", err.Error())
	}
}

// Stop cancels the workers, waits for them, and closes the group
func (c *ConfirmationConsumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()

	if err := c.consumerGroup.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	return nil
}

type consumerGroupHandler struct {
	worker *jobWorker
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			// undeliverable jobs are logged and committed; there is no dead-letter topic
			_ = h.worker.process(session.Context(), message.Value)
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

// jobWorker decodes and delivers one job with retries
type jobWorker struct {
	id         int
	sender     Sender
	maxRetries int
	backoff    time.Duration
	log        *logger.Logger
}

func newJobWorker(id int, sender Sender, config *ConsumerConfig, log *logger.Logger) *jobWorker {
	return &jobWorker{
		id:         id,
		sender:     sender,
		maxRetries: config.MaxRetries,
		backoff:    config.RetryBackoffDuration,
		log:        log,
	}
}

func (w *jobWorker) process(ctx context.Context, value []byte) error {
	var job ConfirmationJob
	if err := json.Unmarshal(value, &job); err != nil {
		w.log.Error("Discarding malformed confirmation job", "worker", w.id, "error", err.Error())
		return fmt.Errorf("failed to unmarshal confirmation job: %w", err)
	}

	job.Status = JobStatusSending
	if err := w.executeWithRetry(ctx, &job); err != nil {
		job.MarkFailed(err)
		w.log.LogEmailFailed(ctx, job.Submission.Email, job.Event.Slug, err)
		return err
	}

	job.MarkSent()
	return nil
}

func (w *jobWorker) executeWithRetry(ctx context.Context, job *ConfirmationJob) error {
	var err error
	for attempt := 0; attempt <= w.maxRetries; attempt++ {
		err = w.sender.Send(ctx, job.Submission, job.Event)
		if err == nil {
			return nil
		}
		job.RetryCount = attempt + 1

		if attempt == w.maxRetries {
			break
		}

		// exponential backoff
		delay := w.backoff * time.Duration(1<<attempt)
		w.log.Warn("Retrying confirmation email", "worker", w.id, "attempt", attempt+1, "delay", delay.String())

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
