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

	"github.com/Gurux/gxdccpp-go/internal/dccpp"
)

// Kind identifies a device record kind.
type Kind int

// Record kinds.
const (
	KindSensor Kind = iota + 1
	KindDCCTurnout
	KindServoTurnout
	KindVpinTurnout
	KindOutput
)

// Kinds lists every record kind in display order.
var Kinds = []Kind{KindSensor, KindDCCTurnout, KindServoTurnout, KindVpinTurnout, KindOutput}

func (k Kind) String() string {
	switch k {
	case KindSensor:
		return "sensor"
	case KindDCCTurnout:
		return "turnout"
	case KindServoTurnout:
		return "servo"
	case KindVpinTurnout:
		return "vpin"
	case KindOutput:
		return "output"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind returns the kind named by s.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("records: unknown kind %q", s)
}

// Fields is the kind-specific part of a record. Implementations are
// comparable values.
type Fields interface {
	Kind() Kind
}

// Sensor is a sensor input definition.
type Sensor struct {
	Pin    int  `yaml:"pin" json:"pin"`
	Pullup bool `yaml:"pullup" json:"pullup"`
}

// DCCTurnout is a turnout driven through a DCC accessory decoder.
type DCCTurnout struct {
	Address    int `yaml:"address" json:"address"`
	Subaddress int `yaml:"subaddress" json:"subaddress"`
}

// ServoTurnout is a turnout driven by a servo on a PCA9685 pin.
type ServoTurnout struct {
	Pin            int `yaml:"pin" json:"pin"`
	ThrownPosition int `yaml:"thrown_position" json:"thrown_position"`
	ClosedPosition int `yaml:"closed_position" json:"closed_position"`
	Profile        int `yaml:"profile" json:"profile"`
}

// VpinTurnout is a turnout driven by a virtual pin.
type VpinTurnout struct {
	Pin int `yaml:"pin" json:"pin"`
}

// Output is an output pin definition.
type Output struct {
	Pin     int  `yaml:"pin" json:"pin"`
	Invert  bool `yaml:"invert" json:"invert"`
	Restore bool `yaml:"restore" json:"restore"`
	Force   bool `yaml:"force" json:"force"`
}

func (Sensor) Kind() Kind       { return KindSensor }
func (DCCTurnout) Kind() Kind   { return KindDCCTurnout }
func (ServoTurnout) Kind() Kind { return KindServoTurnout }
func (VpinTurnout) Kind() Kind  { return KindVpinTurnout }
func (Output) Kind() Kind       { return KindOutput }

// Flags packs the output options into the wire bit set.
func (o Output) Flags() int {
	f := 0
	if o.Invert {
		f |= dccpp.OutputInvert
	}
	if o.Restore {
		f |= dccpp.OutputRestore
	}
	if o.Force {
		f |= dccpp.OutputForce
	}
	return f
}

// OutputFromFlags unpacks a wire bit set.
func OutputFromFlags(pin, flags int) Output {
	return Output{Pin: pin, Invert: flags&dccpp.OutputInvert != 0, Restore: flags&dccpp.OutputRestore != 0, Force: flags&dccpp.OutputForce != 0}
}

// Record is one device record as seen by callers of a Store.
type Record struct {
	Index  int
	Fields Fields
}

// RowID identifies a row for the lifetime of its store.
type RowID uint64

// Row is a snapshot of one stored row.
type Row struct {
	ID     RowID
	Index  int
	Fields Fields
	New    bool
	Dirty  bool
	Delete bool
}

// Pending reports whether the row needs synchronization.
func (r Row) Pending() bool {
	return r.New || r.Dirty || r.Delete
}
