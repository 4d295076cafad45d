package messaging

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const maxDialAttempts = 5

var (
	// ErrNotConnected is returned while the broker link is down. A reconnect
	// runs in the background; later calls succeed once it completes.
	ErrNotConnected = errors.New("rabbitmq connection is not open")
	// ErrConnectionClosed is returned after Close
	ErrConnectionClosed = errors.New("rabbitmq connection closed")
)

// Connection wraps a RabbitMQ connection and the channel events go out on.
// It is safe for concurrent use.
type Connection struct {
	url      string
	exchange string
	logger   *zap.Logger
	done     chan struct{}

	mu           sync.Mutex
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	reconnecting bool
	closed       bool
}

// NewConnection dials url and declares the lifecycle exchange
func NewConnection(url, exchange string, logger *zap.Logger) (*Connection, error) {
	c := newConnection(url, exchange, logger)
	if err := c.connect(); err != nil {
		return nil, fmt.Errorf("failed to establish initial connection: %w", err)
	}
	return c, nil
}

func newConnection(url, exchange string, logger *zap.Logger) *Connection {
	return &Connection{
		url:      url,
		exchange: exchange,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// connect dials with backoff until it succeeds, the attempts run out or the
// connection is closed
func (c *Connection) connect() error {
	var err error
	for i := 0; i < maxDialAttempts; i++ {
		var conn *amqp091.Connection
		var channel *amqp091.Channel
		conn, channel, err = c.dial()
		if err == nil {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.closed {
				channel.Close()
				conn.Close()
				return ErrConnectionClosed
			}
			c.conn, c.channel = conn, channel
			return nil
		}

		if i < maxDialAttempts-1 {
			wait := time.Duration(i+1) * 2 * time.Second
			c.logger.Warn("rabbitmq connection failed, retrying",
				zap.Duration("wait", wait),
				zap.Int("attempt", i+1),
				zap.Error(err))
			select {
			case <-c.done:
				return ErrConnectionClosed
			case <-time.After(wait):
			}
		}
	}
	return fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxDialAttempts, err)
}

func (c *Connection) dial() (*amqp091.Connection, *amqp091.Channel, error) {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return nil, nil, err
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	if err := c.setupTopology(channel); err != nil {
		c.logger.Error("rabbitmq topology setup failed", zap.Error(err))
		channel.Close()
		conn.Close()
		return nil, nil, err
	}
	return conn, channel, nil
}

// setupTopology declares the durable topic exchange lifecycle events are
// routed through. Consumers bind their own queues.
func (c *Connection) setupTopology(channel *amqp091.Channel) error {
	err := channel.ExchangeDeclare(
		c.exchange, // name
		"topic",    // type
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s exchange: %w", c.exchange, err)
	}
	return nil
}

// Channel returns the open channel. When the connection or channel has
// died it starts a background reconnect and returns ErrNotConnected
// without waiting for it.
func (c *Connection) Channel() (*amqp091.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrConnectionClosed
	}
	if c.isOpenLocked() {
		return c.channel, nil
	}
	c.reconnectLocked()
	return nil, ErrNotConnected
}

func (c *Connection) Exchange() string {
	return c.exchange
}

func (c *Connection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.isOpenLocked()
}

func (c *Connection) isOpenLocked() bool {
	return c.conn != nil && !c.conn.IsClosed() && c.channel != nil && !c.channel.IsClosed()
}

// reconnectLocked drops the dead link and redials in a goroutine. At most
// one reconnect runs at a time.
func (c *Connection) reconnectLocked() {
	if c.reconnecting {
		return
	}
	c.reconnecting = true
	c.releaseLocked()

	go func() {
		err := c.connect()

		c.mu.Lock()
		c.reconnecting = false
		c.mu.Unlock()

		switch {
		case err == nil:
			c.logger.Info("rabbitmq connection restored")
		case errors.Is(err, ErrConnectionClosed):
		default:
			c.logger.Error("rabbitmq reconnect failed", zap.Error(err))
		}
	}()
}

func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.done)
	return c.releaseLocked()
}

func (c *Connection) releaseLocked() error {
	var err error
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil && !c.conn.IsClosed() {
		err = c.conn.Close()
	}
	c.conn, c.channel = nil, nil
	return err
}
