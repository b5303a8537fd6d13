package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jesseruhland/SBUnit26TwitterClone/internal/queue"
)

const (
	// DefaultWorkerCount is the number of concurrent worker goroutines
	DefaultWorkerCount = 2

	// DefaultBatchSize is the max messages read per XREADGROUP call
	DefaultBatchSize = 10

	// DefaultBlockTimeout is how long a read blocks waiting for messages
	DefaultBlockTimeout = 5 * time.Second
)

// Manager runs a pool of workers that consume timeline events from the
// stream and apply them through the Handler.
type Manager struct {
	consumer queue.Consumer
	handler  *Handler

	workerCount  int
	batchSize    int64
	blockTimeout time.Duration

	// Unique per process so parallel deployments don't steal each other's
	// pending messages.
	consumerPrefix string

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewManager creates a worker pool manager with default settings.
func NewManager(consumer queue.Consumer, handler *Handler) *Manager {
	return &Manager{
		consumer:       consumer,
		handler:        handler,
		workerCount:    DefaultWorkerCount,
		batchSize:      DefaultBatchSize,
		blockTimeout:   DefaultBlockTimeout,
		consumerPrefix: fmt.Sprintf("worker-%s", uuid.NewString()[:8]),
	}
}

// Start creates the consumer group, recovers pending messages, and launches
// the worker goroutines. Returns after startup; workers run until Stop.
func (m *Manager) Start(ctx context.Context) error {
	if err := m.consumer.EnsureGroup(ctx, queue.StreamTimeline, queue.ConsumerGroupTimeline); err != nil {
		return fmt.Errorf("ensure consumer group: %w", err)
	}

	ctx, m.cancel = context.WithCancel(ctx)

	for i := 0; i < m.workerCount; i++ {
		m.wg.Add(1)
		go m.runWorker(ctx, m.consumerName(i))
	}

	logrus.WithField("workers", m.workerCount).Info("worker: pool started")
	return nil
}

// Stop signals all workers to finish and waits for them.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	logrus.Info("worker: pool stopped")
}

func (m *Manager) consumerName(index int) string {
	return fmt.Sprintf("%s-%d", m.consumerPrefix, index)
}

func (m *Manager) runWorker(ctx context.Context, name string) {
	defer m.wg.Done()

	log := logrus.WithField("consumer", name)
	log.Info("worker: started")

	// Pick up messages delivered to this consumer name before a crash
	m.processPending(ctx, name, log)

	for {
		select {
		case <-ctx.Done():
			log.Info("worker: stopping")
			return
		default:
			m.processNew(ctx, name, log)
		}
	}
}

// processPending drains delivered-but-unacknowledged messages at startup.
func (m *Manager) processPending(ctx context.Context, name string, log *logrus.Entry) {
	for {
		messages, err := m.consumer.ReadPending(ctx, queue.StreamTimeline, queue.ConsumerGroupTimeline, name, m.batchSize)
		if err != nil {
			log.WithError(err).Error("worker: read pending failed")
			return
		}
		if len(messages) == 0 {
			return
		}

		log.WithField("count", len(messages)).Info("worker: recovering pending messages")
		m.handleMessages(ctx, messages, log)
	}
}

func (m *Manager) processNew(ctx context.Context, name string, log *logrus.Entry) {
	messages, err := m.consumer.Read(ctx, queue.StreamTimeline, queue.ConsumerGroupTimeline, name, m.batchSize, m.blockTimeout)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.WithError(err).Error("worker: read failed")
		// Back off so a dead Redis doesn't spin the loop
		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
		}
		return
	}

	m.handleMessages(ctx, messages, log)
}

// handleMessages processes a batch and acknowledges every message,
// including ones whose handler failed. Timeline caches are rebuilt from
// the database on a miss, so dropping an event is recoverable; redelivery
// loops are not.
func (m *Manager) handleMessages(ctx context.Context, messages []queue.Message, log *logrus.Entry) {
	for _, msg := range messages {
		if err := m.handler.Handle(ctx, msg.Event); err != nil {
			log.WithFields(logrus.Fields{"msg_id": msg.ID, "type": msg.Event.Type}).
				WithError(err).Error("worker: event handling failed")
		}

		if err := m.consumer.Ack(ctx, queue.StreamTimeline, queue.ConsumerGroupTimeline, msg.ID); err != nil {
			log.WithField("msg_id", msg.ID).WithError(err).Error("worker: ack failed")
		}
	}
}
