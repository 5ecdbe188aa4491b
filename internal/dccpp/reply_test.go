package dccpp

import (
	"errors"
	"fmt"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		want  Reply
	}{
		{
			name:  "sensor def",
			frame: "<Q 3 7 1>",
			want:  SensorDef{raw: "<Q 3 7 1>", Index: 3, Pin: 7, Pullup: true},
		},
		{
			name:  "classic turnout def",
			frame: "<H 3 12 0 1>",
			want:  TurnoutDefDCC{raw: "<H 3 12 0 1>", Index: 3, Address: 12, Subaddress: 0, Thrown: true},
		},
		{
			name:  "dcc turnout def",
			frame: "<H 4 DCC 20 1 0>",
			want:  TurnoutDefDCC{raw: "<H 4 DCC 20 1 0>", Index: 4, Address: 20, Subaddress: 1},
		},
		{
			name:  "servo turnout def",
			frame: "<H 5 SERVO 100 410 205 2 0>",
			want: TurnoutDefServo{raw: "<H 5 SERVO 100 410 205 2 0>", Index: 5, Pin: 100,
				ThrownPosition: 410, ClosedPosition: 205, Profile: 2},
		},
		{
			name:  "vpin turnout def",
			frame: "<H 6 VPIN 164 1>",
			want:  TurnoutDefVpin{raw: "<H 6 VPIN 164 1>", Index: 6, Pin: 164, Thrown: true},
		},
		{
			name:  "output def with state",
			frame: "<Y 2 31 6 1>",
			want:  OutputDef{raw: "<Y 2 31 6 1>", Index: 2, Pin: 31, Flags: 6, State: true},
		},
		{
			name:  "output def without state",
			frame: "<Y 2 31 1>",
			want:  OutputDef{raw: "<Y 2 31 1>", Index: 2, Pin: 31, Flags: 1},
		},
		{name: "ok", frame: "<O>", want: Ack{raw: "<O>", OK: true}},
		{name: "failure", frame: "<X>", want: Ack{raw: "<X>", OK: false}},
		{name: "commit report", frame: "<e 3 2 1>", want: Ack{raw: "<e 3 2 1>", OK: true}},
		{name: "sensor active", frame: "<Q 3>", want: Unknown{raw: "<Q 3>"}},
		{name: "turnout state", frame: "<H 3 1>", want: Unknown{raw: "<H 3 1>"}},
		{name: "output state", frame: "<Y 2 0>", want: Unknown{raw: "<Y 2 0>"}},
		{name: "lcn turnout", frame: "<H 7 LCN 0>", want: Unknown{raw: "<H 7 LCN 0>"}},
		{name: "unknown token", frame: "<iDCC-EX V-5.0.0 / MEGA>", want: Unknown{raw: "<iDCC-EX V-5.0.0 / MEGA>"}},
		{name: "diagnostic", frame: "<* hello *>", want: Unknown{raw: "<* hello *>"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.frame))
			if err != nil {
				t.Fatalf("Decode(%q) error = %v", tt.frame, err)
			}
			if got != tt.want {
				t.Errorf("Decode(%q) = %#v, want %#v", tt.frame, got, tt.want)
			}
			if got.Frame() != tt.frame {
				t.Errorf("Frame() = %q, want %q", got.Frame(), tt.frame)
			}
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	frames := []string{
		"",
		"Q 1 2 3",
		"<Q 1 2 3",
		"<>",
		"< >",
		"<Q 1 two 0>",
		"<Q 1 2>",
		"<H 1 SERVO 2 3>",
		"<H 1 VPIN x 0>",
		"<H 1 DCC 2>",
		"<H 1>",
		"<H 1 2 3>",
		"<Y 1>",
		"<Y 1 2 3 4 5>",
	}
	for _, frame := range frames {
		t.Run(frame, func(t *testing.T) {
			if _, err := Decode([]byte(frame)); !errors.Is(err, ErrMalformedFrame) {
				t.Errorf("Decode(%q) error = %v, want ErrMalformedFrame", frame, err)
			}
		})
	}
}

func TestOutputDef_Flags(t *testing.T) {
	def := OutputDef{Flags: OutputInvert | OutputForce}
	if !def.Invert() || def.Restore() || !def.Force() {
		t.Errorf("flags = invert:%v restore:%v force:%v, want true false true",
			def.Invert(), def.Restore(), def.Force())
	}
}

// deviceEcho answers an add command the way the base station reports the
// resulting definition.
func deviceEcho(c Command) string {
	a := c.Args
	switch c.Kind {
	case SensorAdd:
		return fmt.Sprintf("<Q %d %d %d>", a[0], a[1], a[2])
	case TurnoutAdd:
		return fmt.Sprintf("<H %d DCC %d %d 0>", a[0], a[1], a[2])
	case TurnoutServoAdd:
		return fmt.Sprintf("<H %d SERVO %d %d %d %d 0>", a[0], a[1], a[2], a[3], a[4])
	case TurnoutVpinAdd:
		return fmt.Sprintf("<H %d VPIN %d 0>", a[0], a[1])
	case OutputAdd:
		return fmt.Sprintf("<Y %d %d %d 0>", a[0], a[1], a[2])
	}
	return ""
}

func TestRoundTrip_AddThenDef(t *testing.T) {
	tests := []struct {
		cmd  Command
		want func(Reply) []int
	}{
		{
			cmd: NewSensorAdd(0, 5, true),
			want: func(r Reply) []int {
				d := r.(SensorDef)
				return []int{d.Index, d.Pin, boolToInt(d.Pullup)}
			},
		},
		{
			cmd: NewTurnoutAdd(3, 20, 1),
			want: func(r Reply) []int {
				d := r.(TurnoutDefDCC)
				return []int{d.Index, d.Address, d.Subaddress}
			},
		},
		{
			cmd: NewTurnoutServoAdd(4, 100, 410, 205, 3),
			want: func(r Reply) []int {
				d := r.(TurnoutDefServo)
				return []int{d.Index, d.Pin, d.ThrownPosition, d.ClosedPosition, d.Profile}
			},
		},
		{
			cmd: NewTurnoutVpinAdd(9, 164),
			want: func(r Reply) []int {
				d := r.(TurnoutDefVpin)
				return []int{d.Index, d.Pin}
			},
		},
		{
			cmd: NewOutputAdd(2, 31, OutputRestore|OutputForce),
			want: func(r Reply) []int {
				d := r.(OutputDef)
				return []int{d.Index, d.Pin, d.Flags}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.cmd.Kind.String(), func(t *testing.T) {
			if _, err := Encode(tt.cmd); err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			reply, err := Decode([]byte(deviceEcho(tt.cmd)))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			got := tt.want(reply)
			if fmt.Sprint(got) != fmt.Sprint(tt.cmd.Args) {
				t.Errorf("decoded fields = %v, want %v", got, tt.cmd.Args)
			}
		})
	}
}
