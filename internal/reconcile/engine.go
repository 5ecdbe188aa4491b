package reconcile

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
	"fmt"
	"log/slog"
	"slices"

	"github.com/Gurux/gxdccpp-go/internal/dccpp"
	"github.com/Gurux/gxdccpp-go/internal/records"
	"github.com/Gurux/gxdccpp-go/internal/traffic"
)

// Sender transmits one command. *traffic.Controller implements it.
type Sender interface {
	Send(ctx context.Context, cmd dccpp.Command, sender traffic.Listener) error
}

// Logger is the logging surface an Engine needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Report summarizes one synchronization pass.
type Report struct {
	Added   int
	Updated int
	Deleted int
	Sent    []dccpp.Command
}

func (r *Report) merge(o Report) {
	r.Added += o.Added
	r.Updated += o.Updated
	r.Deleted += o.Deleted
	r.Sent = append(r.Sent, o.Sent...)
}

// Engine reconciles a record set with the device. It is a traffic.Listener.
type Engine struct {
	set    *records.Set
	sender Sender
	log    Logger
}

var _ traffic.Listener = (*Engine)(nil)

// New returns an engine over set that sends through sender.
func New(set *records.Set, sender Sender, log Logger) *Engine {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Engine{set: set, sender: sender, log: log}
}

// Synchronize sends the pending rows of store in PendingSync order.
//
// A row's flags are cleared, or a deleted row removed, once all of its
// commands are written. The first send error stops the pass; that row and
// the rows after it keep their flags.
func (e *Engine) Synchronize(ctx context.Context, store *records.Store) (Report, error) {
	return e.synchronizeRows(ctx, store, store.PendingSync())
}

func (e *Engine) synchronizeRows(ctx context.Context, store *records.Store, rows []records.Row) (Report, error) {
	var rep Report
	for _, row := range rows {
		cmds, err := Plan(row)
		if err != nil {
			return rep, err
		}
		for _, cmd := range cmds {
			if err := e.sender.Send(ctx, cmd, e); err != nil {
				return rep, fmt.Errorf("reconcile: %s %d: %w", store.Kind(), row.Index, err)
			}
			rep.Sent = append(rep.Sent, cmd)
		}

		switch {
		case row.Delete:
			err = store.RemoveRow(row.ID)
			rep.Deleted++
		case row.New:
			err = store.ClearFlags(row.ID)
			rep.Added++
		default:
			err = store.ClearFlags(row.ID)
			rep.Updated++
		}
		if err != nil {
			return rep, err
		}
		e.log.Debug("row synchronized", "kind", store.Kind().String(), "index", row.Index, "commands", len(cmds))
	}
	return rep, nil
}

// SynchronizeAll synchronizes every store of the set. The deletes of all
// stores are sent first, in display order, then the remaining rows. The
// turnout kinds share one device index space and one delete frame, so a
// turnout retyped at the same index is deleted before it is added again.
func (e *Engine) SynchronizeAll(ctx context.Context) (Report, error) {
	var total Report
	stores := e.set.All()
	for _, deletes := range []bool{true, false} {
		for _, store := range stores {
			var rows []records.Row
			for _, row := range store.PendingSync() {
				if row.Delete == deletes {
					rows = append(rows, row)
				}
			}
			rep, err := e.synchronizeRows(ctx, store, rows)
			total.merge(rep)
			if err != nil {
				return total, err
			}
		}
	}
	if len(total.Sent) > 0 {
		e.log.Info("synchronized with device", "added", total.Added, "updated", total.Updated, "deleted", total.Deleted)
	}
	return total, nil
}

// Commit asks the device to write its configuration to EEPROM, then asks
// for every definition again so the stores show what was stored.
func (e *Engine) Commit(ctx context.Context) error {
	if err := e.sender.Send(ctx, dccpp.NewCommit(), e); err != nil {
		return fmt.Errorf("reconcile: commit: %w", err)
	}
	e.log.Info("commit requested")
	return e.Refresh(ctx)
}

// Refresh asks the device to report every definition. The replies arrive
// through OnReply.
func (e *Engine) Refresh(ctx context.Context) error {
	for _, cmd := range []dccpp.Command{dccpp.NewSensorList(), dccpp.NewTurnoutList(), dccpp.NewOutputList()} {
		if err := e.sender.Send(ctx, cmd, e); err != nil {
			return fmt.Errorf("reconcile: refresh: %w", err)
		}
	}
	return nil
}

// OnReply folds a definition reply into its store. A row the operator has
// edited but not yet saved keeps the operator's values.
func (e *Engine) OnReply(r dccpp.Reply) {
	rec, ok := RecordFromReply(r)
	if !ok {
		if ack, isAck := r.(dccpp.Ack); isAck && !ack.OK {
			e.log.Warn("device rejected command", "frame", ack.Frame())
		}
		return
	}
	kind := rec.Fields.Kind()
	store := e.set.Store(kind)
	// The store leaves a Dirty row as the operator left it.
	id, err := store.InsertOrUpdate(rec, false)
	if err != nil {
		e.log.Error("applying definition failed", "frame", r.Frame(), "error", err)
		return
	}
	if row, ok := store.Get(id); ok && row.Dirty {
		e.log.Debug("keeping local edit over device definition", "kind", kind.String(), "index", rec.Index)
		return
	}
	e.dropRetyped(kind, rec.Index)
}

// OnTimeout logs a command the device did not answer.
func (e *Engine) OnTimeout(c dccpp.Command) {
	e.log.Warn("device did not answer", "command", c.String())
}

// dropRetyped removes clean turnout rows of another turnout kind at index.
// Turnouts share one index space on the device, so a definition of one
// kind replaces any other.
func (e *Engine) dropRetyped(kind records.Kind, index int) {
	turnouts := e.set.Turnouts()
	if !slices.ContainsFunc(turnouts, func(s *records.Store) bool { return s.Kind() == kind }) {
		return
	}
	for _, store := range turnouts {
		if store.Kind() == kind {
			continue
		}
		if row, found := store.Lookup(index); found && !row.Pending() {
			_ = store.RemoveRow(row.ID)
		}
	}
}
