package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
)

// MessageHandler обрабатывает одно сообщение из Kafka.
type MessageHandler func(ctx context.Context, message *sarama.ConsumerMessage) error

// Consumer — обёртка над consumer group. Сообщение, на котором handler
// падает maxRetries раз подряд, уходит в DLQ, чтобы не блокировать партицию.
type Consumer struct {
	consumer    sarama.ConsumerGroup
	topics      []string
	handler     MessageHandler
	logger      *log.Entry
	wg          sync.WaitGroup
	dlqProducer *Producer
	maxRetries  int
}

// NewConsumer создаёт consumer без DLQ с тремя попытками обработки.
func NewConsumer(brokers []string, groupID string, topics []string, handler MessageHandler) (*Consumer, error) {
	return NewConsumerWithDLQ(brokers, groupID, topics, handler, nil, 3)
}

// NewConsumerWithDLQ создаёт consumer с отправкой необработанных
// сообщений в dead letter queue.
func NewConsumerWithDLQ(brokers []string, groupID string, topics []string, handler MessageHandler, dlqProducer *Producer, maxRetries int) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.Strategy = sarama.NewBalanceStrategyRoundRobin()
	config.Consumer.Offsets.Initial = sarama.OffsetNewest
	config.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer group: %w", err)
	}

	return &Consumer{
		consumer:    group,
		topics:      topics,
		handler:     handler,
		logger:      log.WithField("component", "kafka-consumer"),
		dlqProducer: dlqProducer,
		maxRetries:  maxRetries,
	}, nil
}

// Start запускает цикл потребления в фоне.
func (c *Consumer) Start(ctx context.Context) error {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			// Consume возвращается при каждом rebalance, поэтому цикл.
			if err := c.consumer.Consume(ctx, c.topics, c); err != nil {
				c.logger.WithError(err).Error("error from consumer")
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for err := range c.consumer.Errors() {
			c.logger.WithError(err).Error("consumer error")
		}
	}()

	c.logger.WithField("topics", c.topics).Info("kafka consumer started")
	return nil
}

// Stop закрывает consumer group и дожидается фоновых горутин.
func (c *Consumer) Stop() error {
	if err := c.consumer.Close(); err != nil {
		return fmt.Errorf("close kafka consumer: %w", err)
	}
	c.wg.Wait()
	c.logger.Info("kafka consumer stopped")
	return nil
}

// Setup — часть sarama.ConsumerGroupHandler; состояния сессии нет.
func (c *Consumer) Setup(sarama.ConsumerGroupSession) error { return nil }

// Cleanup — часть sarama.ConsumerGroupHandler.
func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim читает партицию до закрытия канала или конца сессии.
func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}

			c.logger.WithFields(log.Fields{
				"topic":     message.Topic,
				"partition": message.Partition,
				"offset":    message.Offset,
			}).Debug("received message")

			if err := c.handleMessageWithRetry(session.Context(), message); err != nil {
				c.logger.WithError(err).WithFields(log.Fields{
					"topic":     message.Topic,
					"partition": message.Partition,
					"offset":    message.Offset,
				}).Error("message processing failed after all retries")
				// Offset не двигаем: сообщение либо уже в DLQ,
				// либо будет перечитано.
				continue
			}

			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

func (c *Consumer) handleMessageWithRetry(ctx context.Context, message *sarama.ConsumerMessage) error {
	err := c.handler(ctx, message)
	if err == nil {
		return nil
	}

	retryCount := c.getRetryCount(message)
	if retryCount < c.maxRetries {
		c.logger.WithFields(log.Fields{
			"topic":       message.Topic,
			"retry_count": retryCount,
			"max_retries": c.maxRetries,
		}).Warn("message processing failed, will retry")
		return err
	}

	// Попытки исчерпаны. Без DLQ остаётся только вернуть ошибку.
	if c.dlqProducer == nil {
		return err
	}
	if dlqErr := c.sendToDLQ(message, err); dlqErr != nil {
		c.logger.WithError(dlqErr).Error("failed to send message to DLQ")
		return fmt.Errorf("send to DLQ: %w", dlqErr)
	}
	c.logger.WithFields(log.Fields{
		"topic":       message.Topic,
		"retry_count": retryCount,
	}).Info("message sent to DLQ after max retries")
	return nil
}

func (c *Consumer) getRetryCount(message *sarama.ConsumerMessage) int {
	for _, header := range message.Headers {
		if string(header.Key) != HeaderRetryCount {
			continue
		}
		if count, err := strconv.Atoi(string(header.Value)); err == nil {
			return count
		}
	}
	return 0
}

// sendToDLQ сохраняет координаты исходного сообщения и текст ошибки —
// этот формат разбирает cmd/dlq-reprocess.
func (c *Consumer) sendToDLQ(message *sarama.ConsumerMessage, processingErr error) error {
	envelope := map[string]interface{}{
		"original_topic":     message.Topic,
		"original_partition": message.Partition,
		"original_offset":    message.Offset,
		"original_key":       string(message.Key),
		"original_value":     string(message.Value),
		"error_message":      processingErr.Error(),
		"failed_at":          time.Now().UTC().Format(time.RFC3339),
		"retry_count":        c.getRetryCount(message),
	}

	return c.dlqProducer.PublishEvent(TopicDeadLetterQueue, string(message.Key), envelope)
}

// ParseOrderEvent разбирает OrderEvent из тела сообщения.
func ParseOrderEvent(message *sarama.ConsumerMessage) (*OrderEvent, error) {
	var event OrderEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return nil, fmt.Errorf("unmarshal order event: %w", err)
	}
	return &event, nil
}

// ParseNotificationEvent разбирает NotificationEvent из тела сообщения.
func ParseNotificationEvent(message *sarama.ConsumerMessage) (*NotificationEvent, error) {
	var event NotificationEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return nil, fmt.Errorf("unmarshal notification event: %w", err)
	}
	return &event, nil
}
