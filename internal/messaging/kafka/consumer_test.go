package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"
)

type fakeConsumerGroup struct {
	consumeFn func(context.Context, []string, sarama.ConsumerGroupHandler) error
	errorsCh  chan error
	closeFn   func() error
}

func (m *fakeConsumerGroup) Consume(ctx context.Context, topics []string, handler sarama.ConsumerGroupHandler) error {
	if m.consumeFn != nil {
		return m.consumeFn(ctx, topics, handler)
	}
	return nil
}

func (m *fakeConsumerGroup) Errors() <-chan error {
	return m.errorsCh
}

func (m *fakeConsumerGroup) Close() error {
	if m.closeFn != nil {
		return m.closeFn()
	}
	if m.errorsCh != nil {
		close(m.errorsCh)
	}
	return nil
}

func (m *fakeConsumerGroup) Pause(map[string][]int32)  {}
func (m *fakeConsumerGroup) Resume(map[string][]int32) {}
func (m *fakeConsumerGroup) PauseAll()                 {}
func (m *fakeConsumerGroup) ResumeAll()                {}

type fakeSession struct {
	ctx    context.Context
	marked []*sarama.ConsumerMessage
}

func (m *fakeSession) Claims() map[string][]int32               { return nil }
func (m *fakeSession) MemberID() string                         { return "member" }
func (m *fakeSession) GenerationID() int32                      { return 1 }
func (m *fakeSession) MarkOffset(string, int32, int64, string)  {}
func (m *fakeSession) Commit()                                  {}
func (m *fakeSession) ResetOffset(string, int32, int64, string) {}
func (m *fakeSession) Context() context.Context                 { return m.ctx }
func (m *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	m.marked = append(m.marked, msg)
}

type fakeClaim struct {
	topic     string
	partition int32
	messages  chan *sarama.ConsumerMessage
}

func (m *fakeClaim) Topic() string                            { return m.topic }
func (m *fakeClaim) Partition() int32                         { return m.partition }
func (m *fakeClaim) InitialOffset() int64                     { return 0 }
func (m *fakeClaim) HighWaterMarkOffset() int64               { return 0 }
func (m *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return m.messages }

func TestNewConsumerErrors(t *testing.T) {
	if _, err := NewConsumer([]string{"invalid-broker:9092"}, "group", []string{"topic"}, func(context.Context, *sarama.ConsumerMessage) error { return nil }); err == nil {
		t.Fatal("expected new consumer error")
	}
	if _, err := NewConsumerWithDLQ([]string{"invalid-broker:9092"}, "group", []string{"topic"}, func(context.Context, *sarama.ConsumerMessage) error { return nil }, nil, 3); err == nil {
		t.Fatal("expected new consumer with dlq error")
	}
}

func TestConsumerStartStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	consumeCalls := 0
	errorsCh := make(chan error, 1)
	group := &fakeConsumerGroup{
		errorsCh: errorsCh,
		consumeFn: func(_ context.Context, _ []string, _ sarama.ConsumerGroupHandler) error {
			consumeCalls++
			cancel()
			return nil
		},
		closeFn: func() error {
			close(errorsCh)
			return nil
		},
	}

	consumer := &Consumer{
		consumer:   group,
		topics:     []string{"topic-a"},
		handler:    func(context.Context, *sarama.ConsumerMessage) error { return nil },
		logger:     log.WithField("test", "consumer"),
		maxRetries: 2,
	}

	errorsCh <- errors.New("background error")
	if err := consumer.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := consumer.Stop(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if consumeCalls == 0 {
		t.Fatal("expected consume call")
	}
}

func TestConsumerStopError(t *testing.T) {
	errorsCh := make(chan error)
	group := &fakeConsumerGroup{errorsCh: errorsCh, closeFn: func() error {
		close(errorsCh)
		return errors.New("close failed")
	}}
	consumer := &Consumer{consumer: group, logger: log.WithField("test", "stop")}
	if err := consumer.Stop(); err == nil {
		t.Fatal("expected stop error")
	}
}

func TestConsumerSetupCleanup(t *testing.T) {
	consumer := &Consumer{}
	if err := consumer.Setup(nil); err != nil {
		t.Fatalf("setup should return nil: %v", err)
	}
	if err := consumer.Cleanup(nil); err != nil {
		t.Fatalf("cleanup should return nil: %v", err)
	}
}

func TestConsumeClaim(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := &Consumer{
		handler: func(context.Context, *sarama.ConsumerMessage) error { return nil },
		logger:  log.WithField("test", "claim"),
	}

	session := &fakeSession{ctx: ctx}
	claim := &fakeClaim{topic: "topic", partition: 0, messages: make(chan *sarama.ConsumerMessage, 2)}
	claim.messages <- &sarama.ConsumerMessage{Topic: "topic", Partition: 0, Offset: 1, Key: []byte("k"), Value: []byte("v")}
	close(claim.messages)

	if err := consumer.ConsumeClaim(session, claim); err != nil {
		t.Fatalf("ConsumeClaim failed: %v", err)
	}
	if len(session.marked) != 1 {
		t.Fatalf("expected one marked message, got %d", len(session.marked))
	}
}

func TestConsumeClaimFailedHandler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := &Consumer{
		handler:    func(context.Context, *sarama.ConsumerMessage) error { return errors.New("failed") },
		logger:     log.WithField("test", "claim-fail"),
		maxRetries: 1,
	}

	session := &fakeSession{ctx: ctx}
	claim := &fakeClaim{topic: "topic", partition: 0, messages: make(chan *sarama.ConsumerMessage, 1)}
	claim.messages <- &sarama.ConsumerMessage{Topic: "topic", Partition: 0, Offset: 1, Key: []byte("k"), Value: []byte("v")}
	close(claim.messages)

	if err := consumer.ConsumeClaim(session, claim); err != nil {
		t.Fatalf("ConsumeClaim failed: %v", err)
	}
	if len(session.marked) != 0 {
		t.Fatalf("failed message should not be marked, got %d", len(session.marked))
	}
}

func TestHandleMessageWithRetry(t *testing.T) {
	msg := &sarama.ConsumerMessage{Topic: "topic", Key: []byte("key"), Value: []byte(`{"a":1}`)}

	t.Run("success", func(t *testing.T) {
		consumer := &Consumer{
			handler:    func(context.Context, *sarama.ConsumerMessage) error { return nil },
			logger:     log.WithField("test", "retry-success"),
			maxRetries: 2,
		}
		if err := consumer.handleMessageWithRetry(context.Background(), msg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("retry below limit", func(t *testing.T) {
		retryingMessage := &sarama.ConsumerMessage{
			Topic:   "topic",
			Key:     []byte("key"),
			Value:   []byte("{}"),
			Headers: []*sarama.RecordHeader{{Key: []byte(HeaderRetryCount), Value: []byte("1")}},
		}
		consumer := &Consumer{
			handler:    func(context.Context, *sarama.ConsumerMessage) error { return errors.New("temporary") },
			logger:     log.WithField("test", "retry"),
			maxRetries: 3,
		}
		if err := consumer.handleMessageWithRetry(context.Background(), retryingMessage); err == nil {
			t.Fatal("expected retry error")
		}
	})

	t.Run("max retries without dlq", func(t *testing.T) {
		retryingMessage := &sarama.ConsumerMessage{
			Topic:   "topic",
			Key:     []byte("key"),
			Value:   []byte("{}"),
			Headers: []*sarama.RecordHeader{{Key: []byte(HeaderRetryCount), Value: []byte("3")}},
		}
		consumer := &Consumer{
			handler:    func(context.Context, *sarama.ConsumerMessage) error { return errors.New("permanent") },
			logger:     log.WithField("test", "max-no-dlq"),
			maxRetries: 3,
		}
		if err := consumer.handleMessageWithRetry(context.Background(), retryingMessage); err == nil {
			t.Fatal("expected error when dlq is absent")
		}
	})

	t.Run("max retries with dlq success", func(t *testing.T) {
		dlqBroker := mocks.NewSyncProducer(t, nil)
		dlqBroker.ExpectSendMessageAndSucceed()
		retryingMessage := &sarama.ConsumerMessage{
			Topic:   "topic",
			Key:     []byte("key"),
			Value:   []byte("{}"),
			Headers: []*sarama.RecordHeader{{Key: []byte(HeaderRetryCount), Value: []byte("3")}},
		}
		consumer := &Consumer{
			handler:     func(context.Context, *sarama.ConsumerMessage) error { return errors.New("permanent") },
			dlqProducer: &Producer{producer: dlqBroker, logger: log.WithField("test", "dlq")},
			logger:      log.WithField("test", "max-dlq"),
			maxRetries:  3,
		}
		if err := consumer.handleMessageWithRetry(context.Background(), retryingMessage); err != nil {
			t.Fatalf("unexpected error after dlq publish: %v", err)
		}
		if err := dlqBroker.Close(); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("max retries with dlq failure", func(t *testing.T) {
		dlqBroker := mocks.NewSyncProducer(t, nil)
		dlqBroker.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
		retryingMessage := &sarama.ConsumerMessage{
			Topic:   "topic",
			Key:     []byte("key"),
			Value:   []byte("{}"),
			Headers: []*sarama.RecordHeader{{Key: []byte(HeaderRetryCount), Value: []byte("3")}},
		}
		consumer := &Consumer{
			handler:     func(context.Context, *sarama.ConsumerMessage) error { return errors.New("permanent") },
			dlqProducer: &Producer{producer: dlqBroker, logger: log.WithField("test", "dlq")},
			logger:      log.WithField("test", "max-dlq-fail"),
			maxRetries:  3,
		}
		if err := consumer.handleMessageWithRetry(context.Background(), retryingMessage); err == nil {
			t.Fatal("expected dlq failure")
		}
		if err := dlqBroker.Close(); err != nil {
			t.Fatal(err)
		}
	})
}

func TestGetRetryCount(t *testing.T) {
	consumer := &Consumer{}

	cases := []struct {
		name    string
		headers []*sarama.RecordHeader
		want    int
	}{
		{
			name:    "numeric header",
			headers: []*sarama.RecordHeader{{Key: []byte(HeaderRetryCount), Value: []byte("5")}},
			want:    5,
		},
		{
			name:    "invalid header falls back to zero",
			headers: []*sarama.RecordHeader{{Key: []byte(HeaderRetryCount), Value: []byte("bad")}},
			want:    0,
		},
		{
			name: "no header",
			want: 0,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := &sarama.ConsumerMessage{Headers: tc.headers}
			if got := consumer.getRetryCount(msg); got != tc.want {
				t.Fatalf("unexpected retry count: got=%d want=%d", got, tc.want)
			}
		})
	}
}

func TestEventParsers(t *testing.T) {
	orderMsg := &sarama.ConsumerMessage{Value: []byte(`{"event_type":"order.created","order_id":"o-1","status":"pending"}`)}
	if _, err := ParseOrderEvent(orderMsg); err != nil {
		t.Fatalf("ParseOrderEvent failed: %v", err)
	}
	if _, err := ParseOrderEvent(&sarama.ConsumerMessage{Value: []byte("{")}); err == nil {
		t.Fatal("expected ParseOrderEvent error")
	}

	notifyMsg := &sarama.ConsumerMessage{Value: []byte(`{"event_type":"notification.email","order_id":"o-1","recipient":"a@b.c","status":"paid"}`)}
	event, err := ParseNotificationEvent(notifyMsg)
	if err != nil {
		t.Fatalf("ParseNotificationEvent failed: %v", err)
	}
	if event.Recipient != "a@b.c" {
		t.Fatalf("unexpected recipient: %s", event.Recipient)
	}
	if _, err := ParseNotificationEvent(&sarama.ConsumerMessage{Value: []byte("{")}); err == nil {
		t.Fatal("expected ParseNotificationEvent error")
	}
}

func TestSendToDLQ(t *testing.T) {
	dlqBroker := mocks.NewSyncProducer(t, nil)
	dlqBroker.ExpectSendMessageAndSucceed()

	consumer := &Consumer{
		dlqProducer: &Producer{producer: dlqBroker, logger: log.WithField("test", "send-dlq")},
		logger:      log.WithField("test", "consumer-send-dlq"),
	}

	msg := &sarama.ConsumerMessage{Topic: "orders", Partition: 1, Offset: 42, Key: []byte("k"), Value: []byte("v")}
	if err := consumer.sendToDLQ(msg, errors.New("boom")); err != nil {
		t.Fatalf("sendToDLQ failed: %v", err)
	}

	if err := dlqBroker.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestConsumeClaimStopsOnContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	consumer := &Consumer{
		handler:    func(context.Context, *sarama.ConsumerMessage) error { return nil },
		logger:     log.WithField("test", "claim-stop"),
		maxRetries: 1,
	}
	session := &fakeSession{ctx: ctx}
	claim := &fakeClaim{topic: "topic", partition: 0, messages: make(chan *sarama.ConsumerMessage)}

	done := make(chan struct{})
	go func() {
		_ = consumer.ConsumeClaim(session, claim)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ConsumeClaim did not stop after context cancellation")
	}
}
