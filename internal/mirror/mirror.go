package mirror

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
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Gurux/gxdccpp-go/internal/dccpp"
	"github.com/Gurux/gxdccpp-go/internal/mqtt"
	"github.com/Gurux/gxdccpp-go/internal/reconcile"
)

// DefaultQueueSize is used when Options.QueueSize is zero.
const DefaultQueueSize = 100

// Publisher sends one MQTT message. *mqtt.Client implements it.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Logger is the logging surface a Mirror needs.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Options configures a Mirror.
type Options struct {
	Prefix    string
	QoS       byte
	QueueSize int
	Logger    Logger
}

type message struct {
	topic    string
	payload  []byte
	retained bool
}

// Mirror is a traffic listener that publishes what it observes.
type Mirror struct {
	pub    Publisher
	prefix string
	qos    byte
	log    Logger

	queue     chan message
	stop      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	published atomic.Uint64
	dropped   atomic.Uint64
	failed    atomic.Uint64
}

// New starts a mirror publishing through pub.
func New(pub Publisher, opts Options) *Mirror {
	size := opts.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}
	m := &Mirror{
		pub:    pub,
		prefix: opts.Prefix,
		qos:    opts.QoS,
		log:    opts.Logger,
		queue:  make(chan message, size),
		stop:   make(chan struct{}),
	}
	if m.log == nil {
		m.log = slog.New(slog.DiscardHandler)
	}
	m.wg.Add(1)
	go m.worker()
	return m
}

type defPayload struct {
	Kind   string    `json:"kind"`
	Index  int       `json:"index"`
	Fields any       `json:"fields"`
	Frame  string    `json:"frame"`
	Time   time.Time `json:"time"`
}

type framePayload struct {
	Kind  string    `json:"kind"`
	Frame string    `json:"frame"`
	Time  time.Time `json:"time"`
}

// OnReply publishes a definition as retained state, anything else as a
// plain reply.
func (m *Mirror) OnReply(r dccpp.Reply) {
	now := time.Now().UTC()
	if rec, ok := reconcile.RecordFromReply(r); ok {
		kind := rec.Fields.Kind().String()
		m.enqueue(mqtt.DefTopic(m.prefix, kind, rec.Index), defPayload{
			Kind: kind, Index: rec.Index, Fields: rec.Fields, Frame: r.Frame(), Time: now,
		}, true)
		return
	}
	m.enqueue(mqtt.RxTopic(m.prefix), framePayload{Kind: r.Kind().String(), Frame: r.Frame(), Time: now}, false)
}

// OnMessage publishes a transmitted command.
func (m *Mirror) OnMessage(c dccpp.Command) {
	m.enqueue(mqtt.TxTopic(m.prefix), framePayload{Kind: c.Kind.String(), Frame: c.String(), Time: time.Now().UTC()}, false)
}

// OnTimeout publishes a command the device did not answer.
func (m *Mirror) OnTimeout(c dccpp.Command) {
	m.enqueue(mqtt.TimeoutTopic(m.prefix), framePayload{Kind: c.Kind.String(), Frame: c.String(), Time: time.Now().UTC()}, false)
}

func (m *Mirror) enqueue(topic string, v any, retained bool) {
	payload, err := json.Marshal(v)
	if err != nil {
		m.failed.Add(1)
		m.log.Warn("mirror payload encoding failed", "topic", topic, "error", err)
		return
	}
	select {
	case <-m.stop:
		return
	default:
	}
	select {
	case m.queue <- message{topic: topic, payload: payload, retained: retained}:
	default:
		m.dropped.Add(1)
		m.log.Warn("mirror queue full, dropping message", "topic", topic)
	}
}

func (m *Mirror) worker() {
	defer m.wg.Done()
	for {
		select {
		case msg := <-m.queue:
			m.publish(msg)
		case <-m.stop:
			// Flush what is already queued.
			for {
				select {
				case msg := <-m.queue:
					m.publish(msg)
				default:
					return
				}
			}
		}
	}
}

func (m *Mirror) publish(msg message) {
	if err := m.pub.Publish(msg.topic, msg.payload, m.qos, msg.retained); err != nil {
		m.failed.Add(1)
		m.log.Debug("mirror publish failed", "topic", msg.topic, "error", err)
		return
	}
	m.published.Add(1)
}

// Close stops the worker after the queued messages are published.
func (m *Mirror) Close() error {
	m.closeOnce.Do(func() {
		close(m.stop)
	})
	m.wg.Wait()
	return nil
}

// Stats returns published, dropped and failed message counts.
func (m *Mirror) Stats() (published, dropped, failed uint64) {
	return m.published.Load(), m.dropped.Load(), m.failed.Load()
}
