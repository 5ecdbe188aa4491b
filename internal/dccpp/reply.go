package dccpp

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
	"strconv"
	"strings"
)

// ReplyKind classifies a decoded reply.
type ReplyKind int

// Reply kinds.
const (
	ReplyUnknown ReplyKind = iota
	ReplySensorDef
	ReplyTurnoutDefDCC
	ReplyTurnoutDefServo
	ReplyTurnoutDefVpin
	ReplyOutputDef
	ReplyAck
	ReplyTimeout
)

var replyKindNames = [...]string{
	ReplyUnknown:         "Unknown",
	ReplySensorDef:       "SensorDef",
	ReplyTurnoutDefDCC:   "TurnoutDefDCC",
	ReplyTurnoutDefServo: "TurnoutDefServo",
	ReplyTurnoutDefVpin:  "TurnoutDefVpin",
	ReplyOutputDef:       "OutputDef",
	ReplyAck:             "Ack",
	ReplyTimeout:         "Timeout",
}

func (k ReplyKind) String() string {
	if k >= 0 && int(k) < len(replyKindNames) {
		return replyKindNames[k]
	}
	return fmt.Sprintf("ReplyKind(%d)", int(k))
}

// Reply is one decoded inbound frame.
type Reply interface {
	Kind() ReplyKind
	// Frame returns the raw frame the reply was decoded from.
	Frame() string
}

// DefReply is a reply that describes one device record.
type DefReply interface {
	Reply
	RecordIndex() int
}

type raw string

func (r raw) Frame() string { return string(r) }

// SensorDef is <Q index pin pullup>.
type SensorDef struct {
	raw
	Index  int
	Pin    int
	Pullup bool
}

func (SensorDef) Kind() ReplyKind     { return ReplySensorDef }
func (r SensorDef) RecordIndex() int { return r.Index }

// TurnoutDefDCC is <H index address subaddress thrown> or
// <H index DCC address subaddress thrown>.
type TurnoutDefDCC struct {
	raw
	Index      int
	Address    int
	Subaddress int
	Thrown     bool
}

func (TurnoutDefDCC) Kind() ReplyKind     { return ReplyTurnoutDefDCC }
func (r TurnoutDefDCC) RecordIndex() int { return r.Index }

// TurnoutDefServo is <H index SERVO pin thrown closed profile thrown>.
type TurnoutDefServo struct {
	raw
	Index          int
	Pin            int
	ThrownPosition int
	ClosedPosition int
	Profile        int
	Thrown         bool
}

func (TurnoutDefServo) Kind() ReplyKind     { return ReplyTurnoutDefServo }
func (r TurnoutDefServo) RecordIndex() int { return r.Index }

// TurnoutDefVpin is <H index VPIN pin thrown>.
type TurnoutDefVpin struct {
	raw
	Index  int
	Pin    int
	Thrown bool
}

func (TurnoutDefVpin) Kind() ReplyKind     { return ReplyTurnoutDefVpin }
func (r TurnoutDefVpin) RecordIndex() int { return r.Index }

// OutputDef is <Y index pin iflags [state]>.
type OutputDef struct {
	raw
	Index int
	Pin   int
	Flags int
	State bool
}

func (OutputDef) Kind() ReplyKind     { return ReplyOutputDef }
func (r OutputDef) RecordIndex() int { return r.Index }

// Invert reports the invert flag bit.
func (r OutputDef) Invert() bool { return r.Flags&OutputInvert != 0 }

// Restore reports the restore-state flag bit.
func (r OutputDef) Restore() bool { return r.Flags&OutputRestore != 0 }

// Force reports the force flag bit.
func (r OutputDef) Force() bool { return r.Flags&OutputForce != 0 }

// Ack is <O> (success), <X> (failure) or the <e ...> commit report.
type Ack struct {
	raw
	OK bool
}

func (Ack) Kind() ReplyKind { return ReplyAck }

// Timeout is synthesized when a command that expects a reply sees none.
type Timeout struct {
	Command Command
}

func (Timeout) Kind() ReplyKind  { return ReplyTimeout }
func (t Timeout) Frame() string { return t.Command.String() }

// Unknown is any frame whose leading token is not in the dispatch table, or
// a status frame of a known token that is not a definition.
type Unknown struct {
	raw
}

func (Unknown) Kind() ReplyKind { return ReplyUnknown }

type decodeFunc func(frame string, args []string) (Reply, error)

// replyTable dispatches on the leading token of a frame.
var replyTable = map[byte]decodeFunc{
	'Q': decodeSensor,
	'H': decodeTurnout,
	'Y': decodeOutput,
	'O': func(frame string, _ []string) (Reply, error) { return Ack{raw: raw(frame), OK: true}, nil },
	'e': func(frame string, _ []string) (Reply, error) { return Ack{raw: raw(frame), OK: true}, nil },
	'X': func(frame string, _ []string) (Reply, error) { return Ack{raw: raw(frame), OK: false}, nil },
}

// Decode classifies one delimited frame.
//
// A frame without delimiters, an empty frame, or a definition with fields
// that are not integers returns ErrMalformedFrame. A leading token outside
// the dispatch table returns Unknown and no error.
func Decode(b []byte) (Reply, error) {
	frame := string(b)
	if len(frame) < 2 || frame[0] != FrameStart || frame[len(frame)-1] != FrameEnd {
		return nil, fmt.Errorf("%w: %q", ErrMalformedFrame, frame)
	}
	body := strings.TrimSpace(frame[1 : len(frame)-1])
	if body == "" {
		return nil, fmt.Errorf("%w: empty frame", ErrMalformedFrame)
	}
	decode, ok := replyTable[body[0]]
	if !ok {
		return Unknown{raw: raw(frame)}, nil
	}
	return decode(frame, strings.Fields(body[1:]))
}

func decodeSensor(frame string, args []string) (Reply, error) {
	switch len(args) {
	case 1:
		// <Q index>: sensor active notification.
		return Unknown{raw: raw(frame)}, nil
	case 3:
		v, err := atoiAll(frame, args)
		if err != nil {
			return nil, err
		}
		return SensorDef{raw: raw(frame), Index: v[0], Pin: v[1], Pullup: v[2] != 0}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrMalformedFrame, frame)
	}
}

func decodeTurnout(frame string, args []string) (Reply, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("%w: %q", ErrMalformedFrame, frame)
	}
	switch strings.ToUpper(args[1]) {
	case "DCC":
		if len(args) != 5 {
			return nil, fmt.Errorf("%w: %q", ErrMalformedFrame, frame)
		}
		v, err := atoiAll(frame, []string{args[0], args[2], args[3], args[4]})
		if err != nil {
			return nil, err
		}
		return TurnoutDefDCC{raw: raw(frame), Index: v[0], Address: v[1], Subaddress: v[2], Thrown: v[3] != 0}, nil
	case "SERVO":
		if len(args) != 7 {
			return nil, fmt.Errorf("%w: %q", ErrMalformedFrame, frame)
		}
		v, err := atoiAll(frame, append([]string{args[0]}, args[2:]...))
		if err != nil {
			return nil, err
		}
		return TurnoutDefServo{raw: raw(frame), Index: v[0], Pin: v[1], ThrownPosition: v[2],
			ClosedPosition: v[3], Profile: v[4], Thrown: v[5] != 0}, nil
	case "VPIN":
		if len(args) != 4 {
			return nil, fmt.Errorf("%w: %q", ErrMalformedFrame, frame)
		}
		v, err := atoiAll(frame, []string{args[0], args[2], args[3]})
		if err != nil {
			return nil, err
		}
		return TurnoutDefVpin{raw: raw(frame), Index: v[0], Pin: v[1], Thrown: v[2] != 0}, nil
	case "LCN":
		return Unknown{raw: raw(frame)}, nil
	}
	switch len(args) {
	case 2:
		// <H index thrown>: turnout state notification.
		return Unknown{raw: raw(frame)}, nil
	case 4:
		v, err := atoiAll(frame, args)
		if err != nil {
			return nil, err
		}
		return TurnoutDefDCC{raw: raw(frame), Index: v[0], Address: v[1], Subaddress: v[2], Thrown: v[3] != 0}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrMalformedFrame, frame)
	}
}

func decodeOutput(frame string, args []string) (Reply, error) {
	switch len(args) {
	case 2:
		// <Y index state>: output state notification.
		return Unknown{raw: raw(frame)}, nil
	case 3, 4:
		v, err := atoiAll(frame, args)
		if err != nil {
			return nil, err
		}
		def := OutputDef{raw: raw(frame), Index: v[0], Pin: v[1], Flags: v[2]}
		if len(v) == 4 {
			def.State = v[3] != 0
		}
		return def, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrMalformedFrame, frame)
	}
}

func atoiAll(frame string, args []string) ([]int, error) {
	ret := make([]int, len(args))
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: field %d: %v", ErrMalformedFrame, frame, i, err)
		}
		ret[i] = v
	}
	return ret, nil
}
