package session

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

	"golang.org/x/text/language"

	"github.com/Gurux/gxdccpp-go/internal/config"
	"github.com/Gurux/gxdccpp-go/internal/journal"
	"github.com/Gurux/gxdccpp-go/internal/logging"
	"github.com/Gurux/gxdccpp-go/internal/mirror"
	"github.com/Gurux/gxdccpp-go/internal/mqtt"
	"github.com/Gurux/gxdccpp-go/internal/port"
	"github.com/Gurux/gxdccpp-go/internal/reconcile"
	"github.com/Gurux/gxdccpp-go/internal/records"
	"github.com/Gurux/gxdccpp-go/internal/traffic"
)

// Questions asked through the Prompter.
const (
	QuestionCommit = "Write the configuration to the base station EEPROM?"
	QuestionSave   = "There are unsaved changes. Save them before closing?"
)

// ErrNotOpen is returned by operations that need an open session.
var ErrNotOpen = errors.New("session: not open")

// Prompter asks the operator a yes/no question.
type Prompter interface {
	Confirm(question string) (bool, error)
}

// Options configures a Session.
type Options struct {
	Config   *config.Config
	Logger   *logging.Logger
	Prompter Prompter

	// Driver overrides the serial driver.
	Driver port.Driver
	// Publisher overrides the MQTT connection of the mirror.
	Publisher mirror.Publisher
}

// Session is one base station connection.
type Session struct {
	cfg      *config.Config
	log      *logging.Logger
	prompter Prompter

	port    *port.Session
	traffic *traffic.Controller
	records *records.Set
	engine  *reconcile.Engine

	publisher mirror.Publisher
	mqtt      *mqtt.Client
	mirror    *mirror.Mirror
	journal   *journal.Journal
}

// New returns a closed session.
func New(opts Options) (*Session, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	parity, err := cfg.Connection.SerialParity()
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	stopBits, err := cfg.Connection.SerialStopBits()
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	s := &Session{
		cfg:       cfg,
		log:       log,
		prompter:  opts.Prompter,
		records:   records.NewSet(),
		publisher: opts.Publisher,
	}
	s.port = port.NewSession(port.Settings{
		BaudIndex:      cfg.Connection.BaudIndex,
		DataBits:       cfg.Connection.DataBits,
		Parity:         parity,
		StopBits:       stopBits,
		OpenTimeout:    cfg.Connection.OpenTimeout,
		ReceiveTimeout: cfg.Connection.ReceiveTimeout,
		RTS:            cfg.Connection.RTS,
		DTR:            cfg.Connection.DTR,
		Language:       language.Make(cfg.Connection.Language),
		Driver:         opts.Driver,
		Logger:         log.With("component", "port"),
	})
	return s, nil
}

// Open opens the port, starts the traffic pump and asks the device for its
// definitions.
func (s *Session) Open(ctx context.Context) error {
	if s.traffic != nil {
		return nil
	}
	trace, err := s.cfg.Connection.TraceLevel()
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	if err := s.port.Open(s.cfg.Connection.Port, s.cfg.Connection.AppName); err != nil {
		return err
	}

	tc := traffic.New(s.port, traffic.Options{
		ReplyTimeout: s.cfg.Connection.EffectiveReplyTimeout(),
		TraceLevel:   trace,
		Logger:       s.log.With("component", "traffic"),
	})
	s.engine = reconcile.New(s.records, tc, s.log.With("component", "reconcile"))
	tc.Register(s.engine)

	if err := s.openJournal(tc); err != nil {
		_ = s.port.Close()
		return err
	}
	if err := s.openMirror(tc); err != nil {
		s.closeOptional()
		_ = s.port.Close()
		return err
	}
	if err := tc.Start(); err != nil {
		s.closeOptional()
		_ = s.port.Close()
		return err
	}
	s.traffic = tc

	s.log.Info("session open", "port", s.cfg.Connection.Port, "baud", s.port.CurrentBaudNumber())
	return s.engine.Refresh(ctx)
}

func (s *Session) openJournal(tc *traffic.Controller) error {
	if !s.cfg.Journal.Enabled {
		return nil
	}
	j, err := journal.Open(s.cfg.Journal, s.cfg.Connection.Port, s.log.With("component", "journal"))
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	s.journal = j
	tc.Register(j)
	return nil
}

func (s *Session) openMirror(tc *traffic.Controller) error {
	pub := s.publisher
	if pub == nil {
		if !s.cfg.MQTT.Enabled {
			return nil
		}
		client, err := mqtt.Connect(s.cfg.MQTT)
		if err != nil {
			return fmt.Errorf("session: %w", err)
		}
		s.mqtt = client
		pub = client
	}
	s.mirror = mirror.New(pub, mirror.Options{
		Prefix:    s.cfg.MQTT.TopicPrefix,
		QoS:       byte(s.cfg.MQTT.QoS),
		QueueSize: s.cfg.MQTT.QueueSize,
		Logger:    s.log.With("component", "mirror"),
	})
	tc.Register(s.mirror)
	return nil
}

// Records returns the record stores of the session.
func (s *Session) Records() *records.Set {
	return s.records
}

// Port returns the serial port session.
func (s *Session) Port() *port.Session {
	return s.port
}

// Stats returns the traffic counters, or zero values before Open.
func (s *Session) Stats() traffic.Stats {
	if s.traffic == nil {
		return traffic.Stats{}
	}
	return s.traffic.Stats()
}

// Journal returns the command journal, or nil when it is disabled.
func (s *Session) Journal() *journal.Journal {
	return s.journal
}

// Save sends every pending change to the device, then asks whether the
// device should also write its configuration to EEPROM.
func (s *Session) Save(ctx context.Context) (reconcile.Report, error) {
	if s.traffic == nil {
		return reconcile.Report{}, ErrNotOpen
	}
	rep, err := s.engine.SynchronizeAll(ctx)
	if err != nil {
		return rep, err
	}
	ok, err := s.confirm(QuestionCommit)
	if err != nil {
		return rep, err
	}
	if ok {
		if err := s.engine.Commit(ctx); err != nil {
			return rep, err
		}
	}
	return rep, nil
}

// Refresh asks the device to report every definition again.
func (s *Session) Refresh(ctx context.Context) error {
	if s.traffic == nil {
		return ErrNotOpen
	}
	return s.engine.Refresh(ctx)
}

// Close offers to save unsaved changes, then tears the session down. The
// record stores are cleared.
func (s *Session) Close(ctx context.Context) error {
	var errs []error
	if s.traffic != nil && s.records.IsDirty() {
		ok, err := s.confirm(QuestionSave)
		switch {
		case err != nil:
			errs = append(errs, err)
		case ok:
			if _, err := s.Save(ctx); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if s.traffic != nil {
		errs = append(errs, s.traffic.Close())
		s.traffic = nil
	}
	s.closeOptional()
	errs = append(errs, s.port.Close())
	s.records.Clear()
	return errors.Join(errs...)
}

func (s *Session) closeOptional() {
	if s.mirror != nil {
		_ = s.mirror.Close()
		s.mirror = nil
	}
	if s.mqtt != nil {
		_ = s.mqtt.Close()
		s.mqtt = nil
	}
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			s.log.Warn("closing journal", "error", err)
		}
		s.journal = nil
	}
}

func (s *Session) confirm(question string) (bool, error) {
	if s.prompter == nil {
		return false, nil
	}
	return s.prompter.Confirm(question)
}
