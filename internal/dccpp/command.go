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

// Frame delimiters.
const (
	FrameStart = '<'
	FrameEnd   = '>'
)

// CommandKind identifies an entry of the command vocabulary.
type CommandKind int

// Command vocabulary.
const (
	SensorAdd CommandKind = iota + 1
	SensorDelete
	TurnoutAdd
	TurnoutServoAdd
	TurnoutVpinAdd
	TurnoutDelete
	OutputAdd
	OutputDelete
	Commit
	SensorList
	TurnoutList
	OutputList
)

// Output flag bits carried by OutputAdd and OutputDef.
const (
	OutputInvert  = 0x1
	OutputRestore = 0x2
	OutputForce   = 0x4
)

type vocabularyEntry struct {
	name    string
	opcode  byte
	keyword string
	arity   int
	expects []ReplyKind
}

var (
	ackReplies        = []ReplyKind{ReplyAck}
	turnoutDefReplies = []ReplyKind{ReplyTurnoutDefDCC, ReplyTurnoutDefServo, ReplyTurnoutDefVpin, ReplyAck}
)

// vocabulary is the versioned command table. A keyword, when present, is
// written after the first argument.
var vocabulary = map[CommandKind]vocabularyEntry{
	SensorAdd:       {name: "SensorAdd", opcode: 'S', arity: 3, expects: ackReplies},
	SensorDelete:    {name: "SensorDelete", opcode: 'S', arity: 1, expects: ackReplies},
	TurnoutAdd:      {name: "TurnoutAdd", opcode: 'T', arity: 3, expects: ackReplies},
	TurnoutServoAdd: {name: "TurnoutServoAdd", opcode: 'T', keyword: "SERVO", arity: 5, expects: ackReplies},
	TurnoutVpinAdd:  {name: "TurnoutVpinAdd", opcode: 'T', keyword: "VPIN", arity: 2, expects: ackReplies},
	TurnoutDelete:   {name: "TurnoutDelete", opcode: 'T', arity: 1, expects: ackReplies},
	OutputAdd:       {name: "OutputAdd", opcode: 'Z', arity: 3, expects: ackReplies},
	OutputDelete:    {name: "OutputDelete", opcode: 'Z', arity: 1, expects: ackReplies},
	Commit:          {name: "Commit", opcode: 'E', arity: 0, expects: ackReplies},
	SensorList:      {name: "SensorList", opcode: 'S', arity: 0, expects: []ReplyKind{ReplySensorDef, ReplyAck}},
	TurnoutList:     {name: "TurnoutList", opcode: 'T', arity: 0, expects: turnoutDefReplies},
	OutputList:      {name: "OutputList", opcode: 'Z', arity: 0, expects: []ReplyKind{ReplyOutputDef, ReplyAck}},
}

// String returns the vocabulary name of the kind.
func (k CommandKind) String() string {
	if entry, ok := vocabulary[k]; ok {
		return entry.name
	}
	return fmt.Sprintf("CommandKind(%d)", int(k))
}

// Command is one outbound message. Args are in wire order.
type Command struct {
	Kind CommandKind
	Args []int
}

// NewSensorAdd returns <S index pin pullup>.
func NewSensorAdd(index, pin int, pullup bool) Command {
	return Command{Kind: SensorAdd, Args: []int{index, pin, boolToInt(pullup)}}
}

// NewSensorDelete returns <S index>.
func NewSensorDelete(index int) Command {
	return Command{Kind: SensorDelete, Args: []int{index}}
}

// NewTurnoutAdd returns <T index address subaddress>.
func NewTurnoutAdd(index, address, subaddress int) Command {
	return Command{Kind: TurnoutAdd, Args: []int{index, address, subaddress}}
}

// NewTurnoutServoAdd returns <T index SERVO pin thrown closed profile>.
func NewTurnoutServoAdd(index, pin, thrownPosition, closedPosition, profile int) Command {
	return Command{Kind: TurnoutServoAdd, Args: []int{index, pin, thrownPosition, closedPosition, profile}}
}

// NewTurnoutVpinAdd returns <T index VPIN pin>.
func NewTurnoutVpinAdd(index, pin int) Command {
	return Command{Kind: TurnoutVpinAdd, Args: []int{index, pin}}
}

// NewTurnoutDelete returns <T index>. The same frame deletes DCC, servo and
// Vpin turnouts.
func NewTurnoutDelete(index int) Command {
	return Command{Kind: TurnoutDelete, Args: []int{index}}
}

// NewOutputAdd returns <Z index pin flags>.
func NewOutputAdd(index, pin, flags int) Command {
	return Command{Kind: OutputAdd, Args: []int{index, pin, flags}}
}

// NewOutputDelete returns <Z index>.
func NewOutputDelete(index int) Command {
	return Command{Kind: OutputDelete, Args: []int{index}}
}

// NewCommit returns <E>, which writes the device configuration to EEPROM.
func NewCommit() Command {
	return Command{Kind: Commit}
}

// NewSensorList returns <S>, which makes the device report every sensor definition.
func NewSensorList() Command {
	return Command{Kind: SensorList}
}

// NewTurnoutList returns <T>.
func NewTurnoutList() Command {
	return Command{Kind: TurnoutList}
}

// NewOutputList returns <Z>.
func NewOutputList() Command {
	return Command{Kind: OutputList}
}

// Index returns the record index the command addresses, if any.
func (c Command) Index() (int, bool) {
	entry, ok := vocabulary[c.Kind]
	if !ok || entry.arity == 0 || len(c.Args) == 0 {
		return 0, false
	}
	return c.Args[0], true
}

// ExpectsReply reports whether the device answers this command.
func (c Command) ExpectsReply() bool {
	return len(vocabulary[c.Kind].expects) != 0
}

// Correlates reports whether r is a reply this command waits for.
func (c Command) Correlates(r Reply) bool {
	for _, k := range vocabulary[c.Kind].expects {
		if r.Kind() == k {
			return true
		}
	}
	return false
}

// String returns the wire text, or a diagnostic form for invalid commands.
func (c Command) String() string {
	b, err := Encode(c)
	if err != nil {
		return fmt.Sprintf("%s%v", c.Kind, c.Args)
	}
	return string(b)
}

// Encode returns the wire bytes of c.
func Encode(c Command) ([]byte, error) {
	entry, ok := vocabulary[c.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCommand, int(c.Kind))
	}
	if len(c.Args) != entry.arity {
		return nil, fmt.Errorf("%w: %s takes %d, got %d", ErrArity, entry.name, entry.arity, len(c.Args))
	}
	var b strings.Builder
	b.WriteByte(FrameStart)
	b.WriteByte(entry.opcode)
	for i, v := range c.Args {
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(v))
		if i == 0 && entry.keyword != "" {
			b.WriteByte(' ')
			b.WriteString(entry.keyword)
		}
	}
	b.WriteByte(FrameEnd)
	return []byte(b.String()), nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
