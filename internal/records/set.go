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

// Set groups one store per record kind.
type Set struct {
	stores map[Kind]*Store
}

// NewSet returns a set of empty stores.
func NewSet() *Set {
	s := &Set{stores: make(map[Kind]*Store, len(Kinds))}
	for _, k := range Kinds {
		s.stores[k] = NewStore(k)
	}
	// Turnouts of every kind share one index space on the device.
	shareIndexSpace(s.Store(KindDCCTurnout), s.Store(KindServoTurnout), s.Store(KindVpinTurnout))
	return s
}

// Store returns the store for kind, or nil for an unknown kind.
func (s *Set) Store(kind Kind) *Store {
	return s.stores[kind]
}

// All returns the stores in display order.
func (s *Set) All() []*Store {
	out := make([]*Store, 0, len(Kinds))
	for _, k := range Kinds {
		out = append(out, s.stores[k])
	}
	return out
}

// IsDirty reports whether any store has rows awaiting synchronization.
func (s *Set) IsDirty() bool {
	for _, st := range s.stores {
		if st.IsDirty() {
			return true
		}
	}
	return false
}

// Turnouts returns the stores whose kinds share the turnout index space.
func (s *Set) Turnouts() []*Store {
	return []*Store{s.Store(KindDCCTurnout), s.Store(KindServoTurnout), s.Store(KindVpinTurnout)}
}

// Clear empties every store.
func (s *Set) Clear() {
	for _, st := range s.stores {
		st.Clear()
	}
}
