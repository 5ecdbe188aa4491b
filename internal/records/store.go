package records

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
	"sync"
)

type row struct {
	id     RowID
	index  int
	fields Fields
	// base holds the fields last synchronized with the device.
	base   Fields
	new    bool
	dirty  bool
	delete bool
}

func (r *row) snapshot() Row {
	return Row{ID: r.id, Index: r.index, Fields: r.fields, New: r.new, Dirty: r.dirty, Delete: r.delete}
}

// Store is the ordered row set of one record kind. It owns its rows;
// callers only ever see Row snapshots.
//
// Stores joined by shareIndexSpace hold one lock and refuse an operator
// row at an index that is live in one of the others.
//
// All methods are safe for concurrent use.
type Store struct {
	kind Kind

	mu     *sync.RWMutex
	rows   []*row
	nextID RowID
	peers  []*Store
}

// NewStore returns an empty store for kind.
func NewStore(kind Kind) *Store {
	return &Store{kind: kind, mu: new(sync.RWMutex)}
}

// shareIndexSpace joins stores whose kinds share one device index space.
// It must be called before the stores are used.
func shareIndexSpace(stores ...*Store) {
	mu := new(sync.RWMutex)
	for _, s := range stores {
		s.mu = mu
		s.peers = nil
		for _, o := range stores {
			if o != s {
				s.peers = append(s.peers, o)
			}
		}
	}
}

// Kind returns the record kind held by the store.
func (s *Store) Kind() Kind {
	return s.kind
}

// InsertOrUpdate applies rec to the live row with the same index, or
// appends a new row.
//
// A device-originated record (fromOperator false) overwrites the fields
// and leaves flags untouched, including on a row pending deletion; a new
// row from the device is clean. A Dirty row keeps the operator's fields
// and ignores the device record. An operator record marks a new row New,
// and marks an existing row Dirty when its fields differ from the last
// synchronized ones. A New row stays New.
func (s *Store) InsertOrUpdate(rec Record, fromOperator bool) (RowID, error) {
	if err := s.check(rec); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if r := s.live(rec.Index); r != nil {
		if !fromOperator {
			if !r.dirty {
				r.fields = rec.Fields
				r.base = rec.Fields
			}
			return r.id, nil
		}
		r.fields = rec.Fields
		if !r.new {
			r.dirty = r.fields != r.base
		}
		return r.id, nil
	}

	if !fromOperator {
		// The device still reports a row the operator is about to delete.
		if r := s.pendingDelete(rec.Index); r != nil {
			r.fields = rec.Fields
			r.base = rec.Fields
			return r.id, nil
		}
	}
	if fromOperator {
		if err := s.peerConflict(rec.Index); err != nil {
			return 0, err
		}
	}
	r := s.appendRow(rec)
	if fromOperator {
		r.new = true
	} else {
		r.base = rec.Fields
	}
	return r.id, nil
}

// Edit changes the row id to rec on behalf of the operator.
//
// Moving a synchronized row to another index marks the old row Delete and
// appends a New row at the new index, whose id is returned.
func (s *Store) Edit(id RowID, rec Record) (RowID, error) {
	if err := s.check(rec); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, _ := s.find(id)
	if r == nil || r.delete {
		return 0, fmt.Errorf("%w: %d", ErrNoSuchRow, id)
	}
	if rec.Index != r.index {
		if other := s.live(rec.Index); other != nil {
			return 0, fmt.Errorf("%w: %s %d", ErrDuplicateIndex, s.kind, rec.Index)
		}
		if err := s.peerConflict(rec.Index); err != nil {
			return 0, err
		}
	}

	switch {
	case r.new:
		r.index = rec.Index
		r.fields = rec.Fields
		return r.id, nil
	case rec.Index == r.index:
		r.fields = rec.Fields
		r.dirty = r.fields != r.base
		return r.id, nil
	default:
		r.fields = r.base
		r.dirty = false
		r.delete = true
		moved := s.appendRow(rec)
		moved.new = true
		return moved.id, nil
	}
}

// MarkDelete flags the row for deletion on the device. A New row was never
// sent and is discarded at once.
func (s *Store) MarkDelete(id RowID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, i := s.find(id)
	if r == nil {
		return fmt.Errorf("%w: %d", ErrNoSuchRow, id)
	}
	if r.new {
		s.removeAt(i)
		return nil
	}
	r.fields = r.base
	r.dirty = false
	r.delete = true
	return nil
}

// RemoveRow drops the row from memory.
func (s *Store) RemoveRow(id RowID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, i := s.find(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrNoSuchRow, id)
	}
	s.removeAt(i)
	return nil
}

// ClearFlags marks the row synchronized with its current fields.
func (s *Store) ClearFlags(id RowID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, _ := s.find(id)
	if r == nil {
		return fmt.Errorf("%w: %d", ErrNoSuchRow, id)
	}
	r.base = r.fields
	r.new = false
	r.dirty = false
	r.delete = false
	return nil
}

// PendingSync returns every flagged row in store order, except that a
// Delete row is moved ahead of any earlier row with the same index so the
// device never holds two definitions for it.
func (s *Store) PendingSync() []Row {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Row
	for _, r := range s.rows {
		if !(r.new || r.dirty || r.delete) {
			continue
		}
		snap := r.snapshot()
		pos := len(out)
		if r.delete {
			for i, o := range out {
				if o.Index == r.index && !o.Delete {
					pos = i
					break
				}
			}
		}
		out = append(out, Row{})
		copy(out[pos+1:], out[pos:])
		out[pos] = snap
	}
	return out
}

// IsDirty reports whether any row needs synchronization.
func (s *Store) IsDirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.rows {
		if r.new || r.dirty || r.delete {
			return true
		}
	}
	return false
}

// Rows returns the rows for display. Rows pending deletion are left out.
func (s *Store) Rows() []Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Row, 0, len(s.rows))
	for _, r := range s.rows {
		if !r.delete {
			out = append(out, r.snapshot())
		}
	}
	return out
}

// Lookup returns the live row with the given index.
func (s *Store) Lookup(index int) (Row, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r := s.live(index); r != nil {
		return r.snapshot(), true
	}
	return Row{}, false
}

// Get returns the row with the given id, including rows pending deletion.
func (s *Store) Get(id RowID) (Row, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, _ := s.find(id); r != nil {
		return r.snapshot(), true
	}
	return Row{}, false
}

// Len returns the number of rows, including rows pending deletion.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// Clear drops every row.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = nil
}

func (s *Store) check(rec Record) error {
	if rec.Fields == nil || rec.Fields.Kind() != s.kind {
		return fmt.Errorf("%w: %T in %s store", ErrKindMismatch, rec.Fields, s.kind)
	}
	return nil
}

// live returns the row with index that is not pending deletion.
func (s *Store) live(index int) *row {
	for _, r := range s.rows {
		if r.index == index && !r.delete {
			return r
		}
	}
	return nil
}

// peerConflict reports an index that is live in a store sharing the index
// space. The caller holds the shared lock.
func (s *Store) peerConflict(index int) error {
	for _, p := range s.peers {
		if p.live(index) != nil {
			return fmt.Errorf("%w: %d is a %s", ErrDuplicateIndex, index, p.kind)
		}
	}
	return nil
}

func (s *Store) pendingDelete(index int) *row {
	for _, r := range s.rows {
		if r.index == index && r.delete {
			return r
		}
	}
	return nil
}

func (s *Store) find(id RowID) (*row, int) {
	for i, r := range s.rows {
		if r.id == id {
			return r, i
		}
	}
	return nil, -1
}

func (s *Store) appendRow(rec Record) *row {
	s.nextID++
	r := &row{id: s.nextID, index: rec.Index, fields: rec.Fields}
	s.rows = append(s.rows, r)
	return r
}

func (s *Store) removeAt(i int) {
	s.rows = append(s.rows[:i], s.rows[i+1:]...)
}
