package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
)

// ErrClosed is returned by calls made after the server stream ended.
var ErrClosed = errors.New("language server connection closed")

// Conn multiplexes JSON-RPC requests over a language server's stdio.
type Conn struct {
	w      io.Writer
	writeM sync.Mutex
	r      *bufio.Reader
	logger *slog.Logger

	mu      sync.Mutex
	nextID  int
	pending map[int]chan *Message
	done    chan struct{}
	readErr error
}

// NewConn starts reading responses from r. Requests are written to w.
func NewConn(r io.Reader, w io.Writer, logger *slog.Logger) *Conn {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Conn{
		w:       w,
		r:       bufio.NewReader(r),
		logger:  logger,
		nextID:  1,
		pending: make(map[int]chan *Message),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// Call sends a request and decodes the response result into result, which
// may be nil.
func (c *Conn) Call(ctx context.Context, method string, params, result any) error {
	c.mu.Lock()
	if c.readErr != nil {
		c.mu.Unlock()
		return ErrClosed
	}
	id := c.nextID
	c.nextID++
	ch := make(chan *Message, 1)
	c.pending[id] = ch
	c.mu.Unlock()

	forget := func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}

	c.logger.Debug("LSP request", "method", method, "id", id)
	if err := c.write(&Message{ID: json.RawMessage(strconv.Itoa(id)), Method: method, Params: params}); err != nil {
		forget()
		return fmt.Errorf("failed to send %s: %w", method, err)
	}

	select {
	case resp := <-ch:
		if resp.Error != nil {
			return resp.Error
		}
		return decodeResult(method, resp.Result, result)
	case <-ctx.Done():
		forget()
		return fmt.Errorf("%s: %w", method, ctx.Err())
	case <-c.done:
		select {
		case resp := <-ch:
			if resp.Error != nil {
				return resp.Error
			}
			return decodeResult(method, resp.Result, result)
		default:
			return ErrClosed
		}
	}
}

func decodeResult(method string, raw json.RawMessage, result any) error {
	if result == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	return nil
}

// Notify sends a notification.
func (c *Conn) Notify(method string, params any) error {
	c.logger.Debug("LSP notification", "method", method)
	return c.write(&Message{Method: method, Params: params})
}

// Done is closed when the read side of the connection ends.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

func (c *Conn) write(m *Message) error {
	c.writeM.Lock()
	defer c.writeM.Unlock()
	return writeMessage(c.w, m)
}

func (c *Conn) readLoop() {
	var err error
	defer func() {
		c.mu.Lock()
		if err == nil {
			err = io.EOF
		}
		c.readErr = err
		c.pending = make(map[int]chan *Message)
		c.mu.Unlock()
		close(c.done)
	}()

	for {
		var msg *Message
		msg, err = readMessage(c.r)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				c.logger.Debug("LSP read failed", "error", err)
			}
			return
		}
		c.dispatch(msg)
	}
}

func (c *Conn) dispatch(msg *Message) {
	if msg.IsResponse() {
		id, ok := msg.intID()
		if !ok {
			return
		}
		c.mu.Lock()
		ch, found := c.pending[id]
		delete(c.pending, id)
		c.mu.Unlock()
		if found {
			ch <- msg
		}
		return
	}

	switch msg.Method {
	case "window/logMessage", "window/showMessage":
		c.logger.Debug("LSP server message", "method", msg.Method, "params", msg.Params)
	}
	if len(msg.ID) == 0 {
		return
	}
	// Server requests get an empty answer; configuration wants one entry per item.
	result := json.RawMessage("null")
	if msg.Method == "workspace/configuration" {
		result = json.RawMessage(configurationReply(msg.Params))
	}
	_ = c.write(&Message{ID: msg.ID, Result: result})
}

func configurationReply(params any) string {
	n := 0
	if m, ok := params.(map[string]any); ok {
		if items, ok := m["items"].([]any); ok {
			n = len(items)
		}
	}
	out := "["
	for i := 0; i < n; i++ {
		if i > 0 {
			out += ","
		}
		out += "null"
	}
	return out + "]"
}
