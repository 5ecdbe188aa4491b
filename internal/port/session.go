package port

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
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Gurux/gxcommon-go"
	"go.bug.st/serial"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Default line settings.
const (
	DefaultDataBits       = 8
	DefaultOpenTimeout    = 2000 * time.Millisecond
	DefaultReceiveTimeout = 50 * time.Millisecond
)

// Port is the part of an open serial device a Session uses.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
	SetRTS(rts bool) error
	SetDTR(dtr bool) error
}

// Driver opens a named device with the given line settings.
type Driver func(name string, mode *serial.Mode) (Port, error)

// SerialDriver opens a real device through go.bug.st/serial.
func SerialDriver(name string, mode *serial.Mode) (Port, error) {
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Logger is the logging surface a Session needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Settings configures a Session. Zero values select the defaults.
type Settings struct {
	BaudIndex      int
	DataBits       int
	Parity         gxcommon.Parity
	StopBits       gxcommon.StopBits
	OpenTimeout    time.Duration
	ReceiveTimeout time.Duration
	RTS            bool
	DTR            bool
	Language       language.Tag

	// Driver defaults to SerialDriver.
	Driver Driver
	Logger Logger
	// OnState is called on every state change.
	OnState func(state gxcommon.MediaState)
}

// Session owns one serial link.
type Session struct {
	mu sync.RWMutex

	name      string
	appName   string
	baudIndex int
	dataBits  int
	parity    gxcommon.Parity
	stopBits  gxcommon.StopBits

	openTimeout    time.Duration
	receiveTimeout time.Duration
	rts            bool
	dtr            bool

	state gxcommon.MediaState
	port  Port

	driver  Driver
	log     Logger
	onState func(gxcommon.MediaState)

	bytesSent     atomic.Uint64
	bytesReceived atomic.Uint64

	// Printer for localized messages.
	p *message.Printer
}

// NewSession returns a closed session.
func NewSession(s Settings) *Session {
	g := &Session{
		baudIndex:      s.BaudIndex,
		dataBits:       s.DataBits,
		parity:         s.Parity,
		stopBits:       s.StopBits,
		openTimeout:    s.OpenTimeout,
		receiveTimeout: s.ReceiveTimeout,
		rts:            s.RTS,
		dtr:            s.DTR,
		state:          gxcommon.MediaStateClosed,
		driver:         s.Driver,
		log:            s.Logger,
		onState:        s.OnState,
	}
	if g.dataBits == 0 {
		g.dataBits = DefaultDataBits
	}
	if g.stopBits == 0 {
		g.stopBits = gxcommon.StopBitsOne
	}
	if g.openTimeout <= 0 {
		g.openTimeout = DefaultOpenTimeout
	}
	if g.receiveTimeout <= 0 {
		g.receiveTimeout = DefaultReceiveTimeout
	}
	if g.baudIndex < 0 || g.baudIndex >= len(baudNumbers) {
		g.baudIndex = DefaultBaudIndex()
	}
	if g.driver == nil {
		g.driver = SerialDriver
	}
	if g.log == nil {
		g.log = slog.New(slog.DiscardHandler)
	}
	tag := s.Language
	if tag == language.Und {
		tag = language.AmericanEnglish
	}
	g.Localize(tag)
	return g
}

// Open opens name for appName.
//
// A busy port is waited on for the open timeout and tried once more. Any
// failure leaves the session Closed and returns an *OpenError.
func (g *Session) Open(name, appName string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == gxcommon.MediaStateOpen {
		return nil
	}
	g.setState(gxcommon.MediaStateOpening)
	g.log.Info(g.p.Sprintf("msg.connecting_to", appName, name, g.openTimeout.Milliseconds()))

	p, err := g.openWithRetry(name)
	if err == nil {
		err = g.configure(name, p)
		if err != nil {
			_ = p.Close()
		}
	}
	if err != nil {
		g.log.Error(g.p.Sprintf("msg.connect_failed", name, err))
		g.setState(gxcommon.MediaStateClosed)
		return err
	}
	g.name = name
	g.appName = appName
	g.port = p
	g.bytesSent.Store(0)
	g.bytesReceived.Store(0)
	g.log.Info(g.p.Sprintf("msg.connected_to", name), "baud", baudNumbers[g.baudIndex])
	g.setState(gxcommon.MediaStateOpen)
	return nil
}

func (g *Session) openWithRetry(name string) (Port, error) {
	br, err := BaudRate(g.baudIndex)
	if err != nil {
		return nil, newOpenError(g.p, name, ErrUnsupportedParameters, err)
	}
	mode := &serial.Mode{
		BaudRate: int(br),
		DataBits: g.dataBits,
		Parity:   toSerialParity(g.parity),
		StopBits: toSerialStopBits(g.stopBits),
	}
	p, err := g.driver(name, mode)
	if err != nil && classify(err) == ErrPortBusy {
		g.log.Debug("port busy, waiting", "port", name, "wait", g.openTimeout)
		time.Sleep(g.openTimeout)
		p, err = g.driver(name, mode)
	}
	if err != nil {
		return nil, newOpenError(g.p, name, classify(err), err)
	}
	return p, nil
}

// configure applies the receive timeout, purges stray input and sets the leads.
func (g *Session) configure(name string, p Port) error {
	if err := p.SetReadTimeout(g.receiveTimeout); err != nil {
		return newOpenError(g.p, name, classify(err), err)
	}
	if err := p.ResetInputBuffer(); err != nil {
		return newOpenError(g.p, name, ErrIOFailure, err)
	}
	if err := p.SetRTS(g.rts); err != nil {
		return newOpenError(g.p, name, ErrIOFailure, err)
	}
	if err := p.SetDTR(g.dtr); err != nil {
		return newOpenError(g.p, name, ErrIOFailure, err)
	}
	return nil
}

// Status reports whether the session is open.
func (g *Session) Status() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state == gxcommon.MediaStateOpen
}

// State returns the current media state.
func (g *Session) State() gxcommon.MediaState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// InputStream returns the receive side of the link. Reads return 0 bytes
// and no error when a receive-idle window passes without input.
func (g *Session) InputStream() (io.Reader, error) {
	p, err := g.openPort()
	if err != nil {
		return nil, err
	}
	return &countingReader{r: p, n: &g.bytesReceived}, nil
}

// OutputStream returns the transmit side of the link.
func (g *Session) OutputStream() (io.Writer, error) {
	p, err := g.openPort()
	if err != nil {
		return nil, err
	}
	return &countingWriter{w: p, n: &g.bytesSent}, nil
}

func (g *Session) openPort() (Port, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.state != gxcommon.MediaStateOpen {
		return nil, newOpenError(g.p, g.name, ErrNotOpened, nil)
	}
	return g.port, nil
}

// Close closes the link. Blocked reads return with an error.
func (g *Session) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != gxcommon.MediaStateOpen {
		return nil
	}
	g.log.Info(g.p.Sprintf("msg.closing_connection", g.name))
	g.setState(gxcommon.MediaStateClosing)
	err := g.port.Close()
	g.port = nil
	g.log.Info(g.p.Sprintf("msg.connection_closed", g.name))
	g.setState(gxcommon.MediaStateClosed)
	if err != nil {
		return fmt.Errorf("close %s: %w", g.name, err)
	}
	return nil
}

// BytesSent returns the number of bytes written since open.
func (g *Session) BytesSent() uint64 {
	return g.bytesSent.Load()
}

// BytesReceived returns the number of bytes read since open.
func (g *Session) BytesReceived() uint64 {
	return g.bytesReceived.Load()
}

// ConfigureBaudRateFromIndex selects a speed from ValidBaudNumbers. It
// takes effect on the next open.
func (g *Session) ConfigureBaudRateFromIndex(i int) error {
	if _, err := BaudRate(i); err != nil {
		return err
	}
	g.mu.Lock()
	g.baudIndex = i
	g.mu.Unlock()
	return nil
}

// ConfigureBaudRate selects a speed by its ValidBaudRates label.
func (g *Session) ConfigureBaudRate(label string) error {
	i, ok := baudIndexOfLabel(label)
	if !ok {
		return fmt.Errorf("%w: baud rate %q", gxcommon.ErrInvalidArgument, label)
	}
	return g.ConfigureBaudRateFromIndex(i)
}

// ConfigureBaudRateFromNumber selects a speed by its decimal value.
func (g *Session) ConfigureBaudRateFromNumber(number string) error {
	i, ok := baudIndexOfNumber(number)
	if !ok {
		return fmt.Errorf("%w: baud number %q", gxcommon.ErrInvalidArgument, number)
	}
	return g.ConfigureBaudRateFromIndex(i)
}

// CurrentBaudRate returns the label of the selected speed.
func (g *Session) CurrentBaudRate() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return baudLabels[g.baudIndex]
}

// CurrentBaudNumber returns the selected speed as a decimal string.
func (g *Session) CurrentBaudNumber() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return fmt.Sprint(baudNumbers[g.baudIndex])
}

// CurrentBaudIndex returns the index of the selected speed.
func (g *Session) CurrentBaudIndex() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.baudIndex
}

// CurrentPortName returns the name passed to the last successful open.
func (g *Session) CurrentPortName() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.name
}

// AppName returns the owner label passed to the last successful open.
func (g *Session) AppName() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.appName
}

func (g *Session) String() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return fmt.Sprintf("%s %d %d %s %s", g.name, baudNumbers[g.baudIndex], g.dataBits, g.stopBits, g.parity)
}

// PortNames returns the serial ports known to the host.
func PortNames() ([]string, error) {
	return serial.GetPortsList()
}

// Localize messages for the specified language.
// No error is returned if the language is not supported.
func (g *Session) Localize(tag language.Tag) {
	g.p = message.NewPrinter(tag)
}

// setState must be called with g.mu held.
func (g *Session) setState(state gxcommon.MediaState) {
	g.state = state
	if g.onState != nil {
		g.onState(state)
	}
}

func toSerialParity(p gxcommon.Parity) serial.Parity {
	switch p {
	case gxcommon.ParityOdd:
		return serial.OddParity
	case gxcommon.ParityEven:
		return serial.EvenParity
	case gxcommon.ParityMark:
		return serial.MarkParity
	case gxcommon.ParitySpace:
		return serial.SpaceParity
	default:
		return serial.NoParity
	}
}

func toSerialStopBits(s gxcommon.StopBits) serial.StopBits {
	if s == gxcommon.StopBitsTwo {
		return serial.TwoStopBits
	}
	return serial.OneStopBit
}

type countingReader struct {
	r io.Reader
	n *atomic.Uint64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n.Add(uint64(n))
	return n, err
}

type countingWriter struct {
	w io.Writer
	n *atomic.Uint64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n.Add(uint64(n))
	return n, err
}
