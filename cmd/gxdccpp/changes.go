package main

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
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Gurux/gxdccpp-go/internal/records"
)

// Change operations.
const (
	opAdd    = "add"
	opEdit   = "edit"
	opDelete = "delete"
)

var errNoRecord = errors.New("no record at index")

type changeFile struct {
	Changes []change `yaml:"changes"`
}

type change struct {
	Op       string    `yaml:"op"`
	Kind     string    `yaml:"kind"`
	Index    int       `yaml:"index"`
	NewIndex *int      `yaml:"new_index"`
	Fields   yaml.Node `yaml:"fields"`
}

func loadChanges(path string) ([]change, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading change file: %w", err)
	}
	return parseChanges(data)
}

func parseChanges(data []byte) ([]change, error) {
	var f changeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing change file: %w", err)
	}
	for i, c := range f.Changes {
		switch c.Op {
		case opAdd, opEdit, opDelete:
		default:
			return nil, fmt.Errorf("change %d: unknown op %q", i+1, c.Op)
		}
		if _, err := records.ParseKind(c.Kind); err != nil {
			return nil, fmt.Errorf("change %d: %w", i+1, err)
		}
		if c.Op != opDelete && c.Fields.Kind == 0 {
			return nil, fmt.Errorf("change %d: %s needs fields", i+1, c.Op)
		}
	}
	return f.Changes, nil
}

// decodeFields decodes the fields node into the record type of kind.
func decodeFields(kind records.Kind, n *yaml.Node) (records.Fields, error) {
	var (
		f   records.Fields
		err error
	)
	switch kind {
	case records.KindSensor:
		var v records.Sensor
		err = n.Decode(&v)
		f = v
	case records.KindDCCTurnout:
		var v records.DCCTurnout
		err = n.Decode(&v)
		f = v
	case records.KindServoTurnout:
		var v records.ServoTurnout
		err = n.Decode(&v)
		f = v
	case records.KindVpinTurnout:
		var v records.VpinTurnout
		err = n.Decode(&v)
		f = v
	case records.KindOutput:
		var v records.Output
		err = n.Decode(&v)
		f = v
	default:
		return nil, fmt.Errorf("records: unknown kind %d", kind)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// apply runs one change against the operator side of set.
func (c change) apply(set *records.Set) error {
	kind, err := records.ParseKind(c.Kind)
	if err != nil {
		return err
	}
	store := set.Store(kind)

	if c.Op == opAdd {
		fields, err := decodeFields(kind, &c.Fields)
		if err != nil {
			return err
		}
		_, err = store.InsertOrUpdate(records.Record{Index: c.Index, Fields: fields}, true)
		return err
	}

	row, ok := store.Lookup(c.Index)
	if !ok {
		return fmt.Errorf("%w %d", errNoRecord, c.Index)
	}
	if c.Op == opDelete {
		return store.MarkDelete(row.ID)
	}

	fields, err := decodeFields(kind, &c.Fields)
	if err != nil {
		return err
	}
	index := c.Index
	if c.NewIndex != nil {
		index = *c.NewIndex
	}
	_, err = store.Edit(row.ID, records.Record{Index: index, Fields: fields})
	return err
}

func applyChanges(set *records.Set, changes []change) error {
	for i, c := range changes {
		if err := c.apply(set); err != nil {
			return fmt.Errorf("change %d (%s %s %d): %w", i+1, c.Op, c.Kind, c.Index, err)
		}
	}
	return nil
}
