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
	"fmt"

	"github.com/Gurux/gxdccpp-go/internal/dccpp"
	"github.com/Gurux/gxdccpp-go/internal/records"
)

// Plan returns the commands that synchronize row with the device.
//
//	New    -> add
//	Delete -> delete
//	Dirty  -> delete, add
//
// A row without flags needs no commands.
func Plan(row records.Row) ([]dccpp.Command, error) {
	switch {
	case row.Delete:
		del, err := DeleteCommand(row.Fields.Kind(), row.Index)
		if err != nil {
			return nil, err
		}
		return []dccpp.Command{del}, nil
	case row.New:
		add, err := AddCommand(row.Index, row.Fields)
		if err != nil {
			return nil, err
		}
		return []dccpp.Command{add}, nil
	case row.Dirty:
		del, err := DeleteCommand(row.Fields.Kind(), row.Index)
		if err != nil {
			return nil, err
		}
		add, err := AddCommand(row.Index, row.Fields)
		if err != nil {
			return nil, err
		}
		return []dccpp.Command{del, add}, nil
	}
	return nil, nil
}

// AddCommand returns the command that defines a record on the device.
func AddCommand(index int, f records.Fields) (dccpp.Command, error) {
	switch v := f.(type) {
	case records.Sensor:
		return dccpp.NewSensorAdd(index, v.Pin, v.Pullup), nil
	case records.DCCTurnout:
		return dccpp.NewTurnoutAdd(index, v.Address, v.Subaddress), nil
	case records.ServoTurnout:
		return dccpp.NewTurnoutServoAdd(index, v.Pin, v.ThrownPosition, v.ClosedPosition, v.Profile), nil
	case records.VpinTurnout:
		return dccpp.NewTurnoutVpinAdd(index, v.Pin), nil
	case records.Output:
		return dccpp.NewOutputAdd(index, v.Pin, v.Flags()), nil
	}
	return dccpp.Command{}, fmt.Errorf("%w: no add command for %T", dccpp.ErrUnknownCommand, f)
}

// DeleteCommand returns the command that removes a record from the device.
// All turnout kinds share one delete.
func DeleteCommand(kind records.Kind, index int) (dccpp.Command, error) {
	switch kind {
	case records.KindSensor:
		return dccpp.NewSensorDelete(index), nil
	case records.KindDCCTurnout, records.KindServoTurnout, records.KindVpinTurnout:
		return dccpp.NewTurnoutDelete(index), nil
	case records.KindOutput:
		return dccpp.NewOutputDelete(index), nil
	}
	return dccpp.Command{}, fmt.Errorf("%w: no delete command for %s", dccpp.ErrUnknownCommand, kind)
}

// RecordFromReply converts a definition reply into a store record.
func RecordFromReply(r dccpp.Reply) (records.Record, bool) {
	switch v := r.(type) {
	case dccpp.SensorDef:
		return records.Record{Index: v.Index, Fields: records.Sensor{Pin: v.Pin, Pullup: v.Pullup}}, true
	case dccpp.TurnoutDefDCC:
		return records.Record{Index: v.Index, Fields: records.DCCTurnout{Address: v.Address, Subaddress: v.Subaddress}}, true
	case dccpp.TurnoutDefServo:
		return records.Record{Index: v.Index, Fields: records.ServoTurnout{Pin: v.Pin,
			ThrownPosition: v.ThrownPosition, ClosedPosition: v.ClosedPosition, Profile: v.Profile}}, true
	case dccpp.TurnoutDefVpin:
		return records.Record{Index: v.Index, Fields: records.VpinTurnout{Pin: v.Pin}}, true
	case dccpp.OutputDef:
		return records.Record{Index: v.Index, Fields: records.OutputFromFlags(v.Pin, v.Flags)}, true
	}
	return records.Record{}, false
}
