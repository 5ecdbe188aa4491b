package traffic

// --------------------------------------------------------------------------
//
//	Gurux Ltd
//
// Filename:        $HeadURL$
//
// Version:         $Revision$,
//
//	$Date$
//	$Author$
//
// # Copyright (c) Gurux Ltd
//
// ---------------------------------------------------------------------------
//
//	DESCRIPTION
//
// This file is a part of Gurux Device Framework.
//
// Gurux Device Framework is Open Source software; you can redistribute it
// and/or modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2 of the License.
// Gurux Device Framework is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU General Public License for more details.
//
// More information of Gurux products: https://www.gurux.org
//
// This code is licensed under the GNU General Public License v2.
// Full text may be retrieved at http://www.gnu.org/licenses/gpl-2.0.txt
// ---------------------------------------------------------------------------

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Gurux/gxcommon-go"
	"github.com/Gurux/gxdccpp-go/internal/dccpp"
)

// DefaultReplyTimeout is used when Options.ReplyTimeout is zero.
const DefaultReplyTimeout = 50 * time.Millisecond

const readBufferSize = 256

var (
	// ErrNotStarted is returned by Send before Start.
	ErrNotStarted = errors.New("traffic: controller not started")

	// ErrClosed is returned by Send after Close.
	ErrClosed = errors.New("traffic: controller closed")
)

// Link is the open serial link the controller pumps.
type Link interface {
	InputStream() (io.Reader, error)
	OutputStream() (io.Writer, error)
}

// Options configures a Controller.
type Options struct {
	// ReplyTimeout bounds the wait for a correlated reply.
	ReplyTimeout time.Duration
	// TraceLevel gates TX/RX frame tracing.
	TraceLevel gxcommon.TraceLevel
	Logger     Logger
}

// Stats is a snapshot of traffic counters.
type Stats struct {
	FramesSent     uint64
	FramesReceived uint64
	BytesSent      uint64
	BytesReceived  uint64
	DecodeErrors   uint64
	Discarded      uint64
	Timeouts       uint64
	ListenerPanics uint64
}

type pendingReply struct {
	cmd      dccpp.Command
	sender   Listener
	deadline time.Time
}

// Controller is the session pump for one link.
type Controller struct {
	link         Link
	replyTimeout time.Duration
	traceLevel   gxcommon.TraceLevel
	log          Logger

	// writeMu serializes frames onto the wire.
	writeMu sync.Mutex
	out     io.Writer

	mu        sync.RWMutex
	listeners []Listener

	pendingMu sync.Mutex
	pending   []pendingReply

	framer *dccpp.Framer

	started   atomic.Bool
	stop      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	readErr   atomic.Value

	framesSent     atomic.Uint64
	framesReceived atomic.Uint64
	bytesSent      atomic.Uint64
	bytesReceived  atomic.Uint64
	decodeErrors   atomic.Uint64
	discarded      atomic.Uint64
	timeouts       atomic.Uint64
	listenerPanics atomic.Uint64
}

// New returns a controller for link. Call Start once the link is open.
func New(link Link, opts Options) *Controller {
	c := &Controller{
		link:         link,
		replyTimeout: opts.ReplyTimeout,
		traceLevel:   opts.TraceLevel,
		log:          opts.Logger,
		stop:         make(chan struct{}),
	}
	if c.replyTimeout <= 0 {
		c.replyTimeout = DefaultReplyTimeout
	}
	if c.log == nil {
		c.log = slog.New(slog.DiscardHandler)
	}
	c.framer = dccpp.NewFramer(c.onDiscard)
	return c
}

// Start acquires the link streams and launches the reader goroutine.
func (c *Controller) Start() error {
	in, err := c.link.InputStream()
	if err != nil {
		return fmt.Errorf("traffic: input stream: %w", err)
	}
	out, err := c.link.OutputStream()
	if err != nil {
		return fmt.Errorf("traffic: output stream: %w", err)
	}
	c.writeMu.Lock()
	c.out = out
	c.writeMu.Unlock()

	if !c.started.CompareAndSwap(false, true) {
		return nil
	}
	c.wg.Add(1)
	go c.reader(in)
	return nil
}

// Close stops the reader goroutine and drops any partial frame. The link
// itself is not closed.
func (c *Controller) Close() error {
	c.closeOnce.Do(func() {
		close(c.stop)
	})
	c.wg.Wait()
	// The reader has exited, so the framer is ours.
	if n := c.framer.Pending(); n > 0 {
		c.discarded.Add(1)
		c.log.Debug("framer discarded input", "reason", "partial frame at close", "bytes", n)
		c.framer.Reset()
	}
	return nil
}

// Err returns the read error that stopped the reader, if any.
func (c *Controller) Err() error {
	if v := c.readErr.Load(); v != nil {
		return v.(error)
	}
	return nil
}

// Register adds l to the fan-out set. l must be comparable; registering
// it twice has no effect.
func (c *Controller) Register(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range c.listeners {
		if it == l {
			return
		}
	}
	c.listeners = append(c.listeners, l)
}

// Unregister removes l from the fan-out set.
func (c *Controller) Unregister(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, it := range c.listeners {
		if it == l {
			c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
			return
		}
	}
}

func (c *Controller) snapshot() []Listener {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.listeners
}

// Send writes cmd as one frame. sender is the listener awaiting the
// result; it may be nil. Registered listeners other than sender that
// implement MessageListener observe the command after it is written.
//
// An encode or write failure is returned to the caller and logged; it does
// not stop the controller.
func (c *Controller) Send(ctx context.Context, cmd dccpp.Command, sender Listener) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-c.stop:
		return ErrClosed
	default:
	}
	frame, err := dccpp.Encode(cmd)
	if err != nil {
		c.log.Error("encode failed", "command", cmd.Kind, "error", err)
		return err
	}

	c.writeMu.Lock()
	if c.out == nil {
		c.writeMu.Unlock()
		return ErrNotStarted
	}
	n, err := c.out.Write(frame)
	c.bytesSent.Add(uint64(n))
	if err == nil && cmd.ExpectsReply() {
		c.pendingMu.Lock()
		c.pending = append(c.pending, pendingReply{cmd: cmd, sender: sender, deadline: time.Now().Add(c.replyTimeout)})
		c.pendingMu.Unlock()
	}
	c.writeMu.Unlock()

	if err != nil {
		c.log.Error("write failed", "frame", string(frame), "error", err)
		return fmt.Errorf("traffic: write %s: %w", frame, err)
	}
	c.framesSent.Add(1)
	c.trace(gxcommon.TraceTypesSent, "TX", string(frame))

	for _, l := range c.snapshot() {
		if l == sender {
			continue
		}
		if ml, ok := l.(MessageListener); ok {
			c.safeCall(func() { ml.OnMessage(cmd) })
		}
	}
	return nil
}

// Stats returns a snapshot of the traffic counters.
func (c *Controller) Stats() Stats {
	return Stats{
		FramesSent:     c.framesSent.Load(),
		FramesReceived: c.framesReceived.Load(),
		BytesSent:      c.bytesSent.Load(),
		BytesReceived:  c.bytesReceived.Load(),
		DecodeErrors:   c.decodeErrors.Load(),
		Discarded:      c.discarded.Load(),
		Timeouts:       c.timeouts.Load(),
		ListenerPanics: c.listenerPanics.Load(),
	}
}

func (c *Controller) reader(in io.Reader) {
	defer c.wg.Done()
	buf := make([]byte, readBufferSize)
	for {
		select {
		case <-c.stop:
			return
		default:
		}
		n, err := in.Read(buf)
		if n > 0 {
			c.bytesReceived.Add(uint64(n))
			c.framer.Append(buf[:n])
			c.drain()
		}
		if err != nil {
			select {
			case <-c.stop:
			default:
				c.readErr.Store(err)
				c.log.Error("read failed, reader stopped", "error", err)
			}
			return
		}
		if n == 0 {
			// Receive-idle window.
			c.framer.Idle()
		}
		c.expire(time.Now())
	}
}

func (c *Controller) drain() {
	for {
		frame, ok := c.framer.Next()
		if !ok {
			return
		}
		c.trace(gxcommon.TraceTypesReceived, "RX", string(frame))
		reply, err := dccpp.Decode(frame)
		if err != nil {
			c.decodeErrors.Add(1)
			c.log.Warn("discarding frame", "frame", string(frame), "error", err)
			continue
		}
		c.framesReceived.Add(1)
		c.correlate(reply)
		for _, l := range c.snapshot() {
			c.safeCall(func() { l.OnReply(reply) })
		}
	}
}

// correlate clears the oldest pending command that waits for reply.
func (c *Controller) correlate(reply dccpp.Reply) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	for i, p := range c.pending {
		if p.cmd.Correlates(reply) {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return
		}
	}
}

func (c *Controller) expire(now time.Time) {
	c.pendingMu.Lock()
	var expired []pendingReply
	kept := c.pending[:0]
	for _, p := range c.pending {
		if now.After(p.deadline) {
			expired = append(expired, p)
		} else {
			kept = append(kept, p)
		}
	}
	c.pending = kept
	c.pendingMu.Unlock()

	for _, p := range expired {
		c.timeouts.Add(1)
		c.log.Warn("no reply", "command", p.cmd.String(), "timeout", c.replyTimeout)
		notified := false
		for _, l := range c.snapshot() {
			if l == p.sender {
				notified = true
			}
			c.safeCall(func() { l.OnTimeout(p.cmd) })
		}
		if p.sender != nil && !notified {
			c.safeCall(func() { p.sender.OnTimeout(p.cmd) })
		}
	}
}

func (c *Controller) onDiscard(reason string, data []byte) {
	c.discarded.Add(1)
	c.log.Debug("framer discarded input", "reason", reason, "data", string(data))
}

func (c *Controller) safeCall(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.listenerPanics.Add(1)
			c.log.Error("listener panicked", "panic", r)
		}
	}()
	fn()
}

func (c *Controller) trace(traceType gxcommon.TraceTypes, dir, frame string) {
	if int(c.traceLevel) >= int(traceType) {
		c.log.Info(dir, "frame", frame)
	}
}
