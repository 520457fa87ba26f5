package replication

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const clientBuffer = 512

// Client is one site's connection to the relay. Send never blocks; inbound
// messages are delivered on Inbound for the simulation goroutine to apply.
type Client struct {
	conn *websocket.Conn
	site string
	log  *zap.Logger

	out     chan []byte
	in      chan Message
	done    chan struct{}
	once    sync.Once
	seq     atomic.Uint64
	dropped atomic.Uint64
}

// Dial connects to the relay at url and announces site.
func Dial(ctx context.Context, url, site string, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial relay %s: %w", url, err)
	}
	c := &Client{
		conn: conn,
		site: site,
		log:  log,
		out:  make(chan []byte, clientBuffer),
		in:   make(chan Message, clientBuffer),
		done: make(chan struct{}),
	}
	hello, err := Encode(Message{Type: TypeHello, Site: site})
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	c.out <- hello
	return c, nil
}

func (c *Client) Site() string {
	return c.site
}

// Inbound yields messages relayed from other sites. It is closed when the
// connection ends.
func (c *Client) Inbound() <-chan Message {
	return c.in
}

// Dropped counts outgoing messages discarded because the buffer was full.
func (c *Client) Dropped() uint64 {
	return c.dropped.Load()
}

// Send stamps msg with this site and queues it.
func (c *Client) Send(msg Message) error {
	msg.Site = c.site
	msg.Seq = c.seq.Add(1)
	data, err := Encode(msg)
	if err != nil {
		return err
	}
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.out <- data:
		return nil
	case <-c.done:
		return ErrClosed
	default:
		c.dropped.Add(1)
		return ErrBackpressure
	}
}

// Run pumps the connection until ctx ends or the connection fails.
func (c *Client) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(c.in)
		return c.readLoop()
	})
	g.Go(func() error {
		return c.writeLoop(ctx)
	})
	g.Go(func() error {
		select {
		case <-ctx.Done():
		case <-c.done:
		}
		c.Close()
		return nil
	})
	err := g.Wait()
	if errors.Is(err, ErrClosed) {
		return nil
	}
	return err
}

// Close ends the connection.
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		err = c.conn.Close()
	})
	return err
}

func (c *Client) readLoop() error {
	c.conn.SetReadLimit(maxMessageSize)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				return ErrClosed
			default:
			}
			c.Close()
			return fmt.Errorf("read relay: %w", err)
		}
		msg, err := Decode(data)
		if err != nil {
			c.log.Debug("bad relay message", zap.Error(err))
			continue
		}
		if msg.Site == c.site {
			continue
		}
		select {
		case c.in <- msg:
		case <-c.done:
			return ErrClosed
		}
	}
}

func (c *Client) writeLoop(ctx context.Context) error {
	for {
		select {
		case data := <-c.out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.Close()
				return fmt.Errorf("write relay: %w", err)
			}
		case <-ctx.Done():
			return nil
		case <-c.done:
			return nil
		}
	}
}
