package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"budgetapi/internal/log"
)

// Circuit breaker states
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures          = 5
	openTimeout          = 30 * time.Second
	maxBackoff           = 30 * time.Second
	maxReconnectAttempts = 3
	publishTimeout       = 5 * time.Second
)

// Publisher sends ledger events to a direct exchange. The connection is
// re-established lazily on publish; repeated failures open a circuit so a
// dead broker does not slow down every write.
type Publisher struct {
	url          string
	exchangeName string
	routingKey   string
	logger       *log.Logger

	mu          sync.Mutex
	conn        *amqp091.Connection
	channel     *amqp091.Channel
	lastFailure time.Time
	closed      bool

	failureCount int64
	state        int32
}

// NewPublisher connects to url and declares the exchange.
func NewPublisher(ctx context.Context, url, exchangeName, routingKey string, logger *log.Logger) (*Publisher, error) {
	p := &Publisher{
		url:          url,
		exchangeName: exchangeName,
		routingKey:   routingKey,
		logger:       logger.WithComponent(log.ComponentAMQP),
	}

	p.mu.Lock()
	err := p.connectLocked(ctx)
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) connectLocked(ctx context.Context) error {
	var err error
	for attempt := 0; attempt < maxReconnectAttempts; attempt++ {
		if err = p.dialLocked(); err == nil {
			return nil
		}
		if !isConnectionError(err) || attempt == maxReconnectAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(exponentialBackoff(attempt)):
		}
	}
	return err
}

func (p *Publisher) dialLocked() error {
	conn, err := amqp091.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		p.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("declare exchange: %w", err)
	}

	p.conn = conn
	p.channel = channel
	return nil
}

// PublishLedgerEvent publishes evt with persistent delivery.
func (p *Publisher) PublishLedgerEvent(ctx context.Context, evt *LedgerEvent) error {
	if p.isCircuitOpen() {
		return errors.New("circuit breaker is open")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := evt.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	channel, err := p.ensureChannel(ctx)
	if err != nil {
		p.recordFailure()
		return err
	}

	err = channel.PublishWithContext(
		ctx,
		p.exchangeName, // exchange
		p.routingKey,   // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    evt.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		p.recordFailure()
		if isConnectionError(err) {
			p.dropConnection()
		}
		return fmt.Errorf("publish message: %w", err)
	}

	p.recordSuccess()
	p.logger.DebugContext(ctx, "Published ledger event",
		log.FieldUser, evt.User,
		log.FieldMonth, evt.Month,
		"kind", evt.Kind,
		"exchange", p.exchangeName)
	return nil
}

func (p *Publisher) ensureChannel(ctx context.Context) (*amqp091.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, errors.New("publisher is closed")
	}
	if p.conn != nil && !p.conn.IsClosed() && p.channel != nil && !p.channel.IsClosed() {
		return p.channel, nil
	}

	p.logger.WarnContext(ctx, "AMQP connection lost, reconnecting", "exchange", p.exchangeName)
	p.closeLocked()
	if err := p.connectLocked(ctx); err != nil {
		return nil, fmt.Errorf("reconnect: %w", err)
	}
	return p.channel, nil
}

func (p *Publisher) dropConnection() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
}

func (p *Publisher) closeLocked() {
	if p.channel != nil {
		p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
}

func (p *Publisher) isCircuitOpen() bool {
	if atomic.LoadInt32(&p.state) != StateOpen {
		return false
	}

	p.mu.Lock()
	last := p.lastFailure
	p.mu.Unlock()

	if time.Since(last) > openTimeout {
		atomic.CompareAndSwapInt32(&p.state, StateOpen, StateHalfOpen)
		return false
	}
	return true
}

func (p *Publisher) recordFailure() {
	n := atomic.AddInt64(&p.failureCount, 1)

	p.mu.Lock()
	p.lastFailure = time.Now()
	p.mu.Unlock()

	if n >= maxFailures || atomic.LoadInt32(&p.state) == StateHalfOpen {
		if atomic.SwapInt32(&p.state, StateOpen) != StateOpen && p.logger != nil {
			p.logger.Warn("AMQP circuit breaker opened", "failures", n)
		}
	}
}

func (p *Publisher) recordSuccess() {
	atomic.StoreInt64(&p.failureCount, 0)
	atomic.StoreInt32(&p.state, StateClosed)
}

// Close shuts the channel and connection. Further publishes fail.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	var err error
	if p.channel != nil {
		err = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		if cerr := p.conn.Close(); cerr != nil && err == nil {
			err = cerr
		}
		p.conn = nil
	}
	return err
}

func exponentialBackoff(attempt int) time.Duration {
	if attempt >= 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{
		"connection refused",
		"connection closed",
		"connection reset",
		"eof",
		"broken pipe",
		"use of closed network connection",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
