package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/ecomm-delivery-backend/internal/config"
	"github.com/iliyamo/ecomm-delivery-backend/internal/metrics"
)

const (
	defaultDialTimeout = 3 * time.Second
	defaultBuffer      = 256
	publishTimeout     = 5 * time.Second
)

// dial opens a connection whose TCP connect and AMQP handshake together
// are bounded by timeout.
func dial(url string, timeout time.Duration) (*amqp.Connection, error) {
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	return amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
}

// Publisher keeps one AMQP connection open and reopens it lazily after the
// broker drops it.  Background events go through a bounded buffer drained
// by a single worker; when the buffer is full new events are dropped.  It
// is safe for concurrent use.
type Publisher struct {
	url         string
	queue       string
	dialTimeout time.Duration
	log         *zap.Logger

	// lock guards conn and ch.  It is a channel so waiting honours ctx.
	lock chan struct{}
	conn *amqp.Connection
	ch   *amqp.Channel

	pending   chan AccountEvent
	dropped   atomic.Uint64
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// NewPublisher returns a publisher for cfg and starts its background
// worker.  No connection is made until the first event.
func NewPublisher(cfg config.RabbitMQConfig, log *zap.Logger) *Publisher {
	buf := cfg.Buffer
	if buf <= 0 {
		buf = defaultBuffer
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Publisher{
		url:         cfg.URL,
		queue:       cfg.Queue,
		dialTimeout: cfg.DialTimeout,
		log:         log,
		lock:        make(chan struct{}, 1),
		pending:     make(chan AccountEvent, buf),
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *Publisher) run() {
	defer close(p.done)
	for {
		select {
		case <-p.ctx.Done():
			return
		case ev := <-p.pending:
			ctx, cancel := context.WithTimeout(p.ctx, publishTimeout)
			err := p.Publish(ctx, ev)
			cancel()
			if err != nil {
				p.log.Warn("account event publish failed",
					zap.String("event_id", ev.ID),
					zap.String("type", ev.Type),
					zap.Error(err))
			}
		}
	}
}

// channel returns an open channel, dialing and declaring the durable queue
// when needed.  The dial never outlives ctx.  Caller must hold p.lock.
func (p *Publisher) channel(ctx context.Context) (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	if p.conn == nil || p.conn.IsClosed() {
		timeout := p.dialTimeout
		if timeout <= 0 {
			timeout = defaultDialTimeout
		}
		if dl, ok := ctx.Deadline(); ok {
			left := time.Until(dl)
			if left <= 0 {
				return nil, context.DeadlineExceeded
			}
			if left < timeout {
				timeout = left
			}
		}
		conn, err := dial(p.url, timeout)
		if err != nil {
			return nil, fmt.Errorf("dial: %w", err)
		}
		p.conn = conn
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("channel open: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	p.ch = ch
	return ch, nil
}

// Publish sends ev as a persistent JSON message on the configured queue and
// gives up when ctx ends, including while waiting for another publish.
func (p *Publisher) Publish(ctx context.Context, ev AccountEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := ctx.Err(); err != nil {
		metrics.EventPublishErrors.Inc()
		return fmt.Errorf("publish: %w", err)
	}

	select {
	case p.lock <- struct{}{}:
	case <-ctx.Done():
		metrics.EventPublishErrors.Inc()
		return fmt.Errorf("publish: %w", ctx.Err())
	}
	defer func() { <-p.lock }()
	if err := ctx.Err(); err != nil {
		metrics.EventPublishErrors.Inc()
		return fmt.Errorf("publish: %w", err)
	}

	ch, err := p.channel(ctx)
	if err != nil {
		metrics.EventPublishErrors.Inc()
		return err
	}
	err = ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Type:         ev.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		metrics.EventPublishErrors.Inc()
		_ = ch.Close()
		p.ch = nil
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// PublishAsync hands ev to the background worker without blocking.
// Failures are logged and never reach the request that triggered the event.
func (p *Publisher) PublishAsync(ev AccountEvent) {
	select {
	case p.pending <- ev:
	default:
		p.drop(ev, "buffer full")
	}
}

func (p *Publisher) drop(ev AccountEvent, reason string) {
	p.dropped.Add(1)
	metrics.EventsDropped.Inc()
	p.log.Warn("account event dropped",
		zap.String("event_id", ev.ID),
		zap.String("type", ev.Type),
		zap.String("reason", reason))
}

// Close stops the worker, drops whatever is still buffered and closes the
// connection.  It is safe to call more than once.
func (p *Publisher) Close() error {
	p.closeOnce.Do(p.cancel)
	<-p.done
drain:
	for {
		select {
		case ev := <-p.pending:
			p.drop(ev, "shutdown")
		default:
			break drain
		}
	}

	p.lock <- struct{}{}
	defer func() { <-p.lock }()
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		err := p.conn.Close()
		p.conn = nil
		return err
	}
	return nil
}
