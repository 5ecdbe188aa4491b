package reconcile

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Gurux/gxdccpp-go/internal/dccpp"
	"github.com/Gurux/gxdccpp-go/internal/records"
	"github.com/Gurux/gxdccpp-go/internal/traffic"
)

// captureSender records sent frames. failAt makes the nth send (1-based) fail.
type captureSender struct {
	frames []string
	failAt int
}

var errLinkDown = errors.New("link down")

func (c *captureSender) Send(_ context.Context, cmd dccpp.Command, _ traffic.Listener) error {
	if c.failAt > 0 && len(c.frames)+1 == c.failAt {
		return errLinkDown
	}
	c.frames = append(c.frames, cmd.String())
	return nil
}

func newEngine() (*Engine, *records.Set, *captureSender) {
	set := records.NewSet()
	s := &captureSender{}
	return New(set, s, nil), set, s
}

func equalFrames(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestPlan(t *testing.T) {
	fields := records.DCCTurnout{Address: 20}
	tests := []struct {
		name string
		row  records.Row
		want []string
	}{
		{name: "new", row: records.Row{Index: 3, Fields: fields, New: true}, want: []string{"<T 3 20 0>"}},
		{name: "delete", row: records.Row{Index: 3, Fields: fields, Delete: true}, want: []string{"<T 3>"}},
		{name: "dirty", row: records.Row{Index: 3, Fields: fields, Dirty: true}, want: []string{"<T 3>", "<T 3 20 0>"}},
		{name: "clean", row: records.Row{Index: 3, Fields: fields}, want: nil},
		{
			name: "dirty servo",
			row:  records.Row{Index: 4, Fields: records.ServoTurnout{Pin: 100, ThrownPosition: 410, ClosedPosition: 205, Profile: 1}, Dirty: true},
			want: []string{"<T 4>", "<T 4 SERVO 100 410 205 1>"},
		},
		{
			name: "new output",
			row:  records.Row{Index: 2, Fields: records.Output{Pin: 31, Restore: true}, New: true},
			want: []string{"<Z 2 31 2>"},
		},
		{name: "delete vpin", row: records.Row{Index: 9, Fields: records.VpinTurnout{Pin: 164}, Delete: true}, want: []string{"<T 9>"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds, err := Plan(tt.row)
			if err != nil {
				t.Fatalf("Plan() error = %v", err)
			}
			var got []string
			for _, c := range cmds {
				got = append(got, c.String())
			}
			if !equalFrames(got, tt.want) {
				t.Errorf("Plan() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSynchronize_NewSensor(t *testing.T) {
	e, set, s := newEngine()
	store := set.Store(records.KindSensor)
	id, _ := store.InsertOrUpdate(records.Record{Index: 0, Fields: records.Sensor{Pin: 5}}, true)

	rep, err := e.SynchronizeAll(context.Background())
	if err != nil {
		t.Fatalf("SynchronizeAll() error = %v", err)
	}
	if !equalFrames(s.frames, []string{"<S 0 5 0>"}) {
		t.Errorf("sent = %q, want [<S 0 5 0>]", s.frames)
	}
	if row, _ := store.Get(id); row.New {
		t.Error("New still set after synchronize")
	}
	if rep.Added != 1 || set.IsDirty() {
		t.Errorf("report = %+v, dirty = %v", rep, set.IsDirty())
	}
}

func TestSynchronize_DirtyTurnout(t *testing.T) {
	e, set, s := newEngine()
	store := set.Store(records.KindDCCTurnout)
	id, _ := store.InsertOrUpdate(records.Record{Index: 3, Fields: records.DCCTurnout{Address: 12}}, false)
	if _, err := store.Edit(id, records.Record{Index: 3, Fields: records.DCCTurnout{Address: 20}}); err != nil {
		t.Fatal(err)
	}

	if _, err := e.SynchronizeAll(context.Background()); err != nil {
		t.Fatalf("SynchronizeAll() error = %v", err)
	}
	if !equalFrames(s.frames, []string{"<T 3>", "<T 3 20 0>"}) {
		t.Errorf("sent = %q, want delete then add", s.frames)
	}
	if row, _ := store.Get(id); row.Dirty {
		t.Error("Dirty still set after synchronize")
	}
}

func TestSynchronize_DeleteRemovesRow(t *testing.T) {
	e, set, s := newEngine()
	store := set.Store(records.KindOutput)
	id, _ := store.InsertOrUpdate(records.Record{Index: 2, Fields: records.Output{Pin: 31}}, false)
	store.MarkDelete(id)

	rep, err := e.SynchronizeAll(context.Background())
	if err != nil {
		t.Fatalf("SynchronizeAll() error = %v", err)
	}
	if !equalFrames(s.frames, []string{"<Z 2>"}) || store.Len() != 0 || rep.Deleted != 1 {
		t.Errorf("sent = %q, len = %d, report = %+v", s.frames, store.Len(), rep)
	}
}

func TestSynchronize_StopsOnSendError(t *testing.T) {
	e, set, s := newEngine()
	s.failAt = 2
	store := set.Store(records.KindSensor)
	a, _ := store.InsertOrUpdate(records.Record{Index: 1, Fields: records.Sensor{Pin: 5}}, true)
	b, _ := store.InsertOrUpdate(records.Record{Index: 2, Fields: records.Sensor{Pin: 6}}, true)

	_, err := e.SynchronizeAll(context.Background())
	if !errors.Is(err, errLinkDown) {
		t.Fatalf("SynchronizeAll() error = %v, want errLinkDown", err)
	}
	if row, _ := store.Get(a); row.New {
		t.Error("first row still New after a successful send")
	}
	if row, _ := store.Get(b); !row.New {
		t.Error("failed row lost its New flag")
	}
}

func TestSynchronize_NewNeverDeletes(t *testing.T) {
	e, set, s := newEngine()
	for i := 0; i < 5; i++ {
		set.Store(records.KindVpinTurnout).InsertOrUpdate(records.Record{Index: i, Fields: records.VpinTurnout{Pin: 100 + i}}, true)
	}
	if _, err := e.SynchronizeAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	for _, f := range s.frames {
		if !strings.Contains(f, "VPIN") {
			t.Errorf("sent delete %q for a new row", f)
		}
	}
	if len(s.frames) != 5 {
		t.Errorf("sent %d frames, want 5", len(s.frames))
	}
}

func TestCommit_SweepsDefinitions(t *testing.T) {
	e, _, s := newEngine()
	if err := e.Commit(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !equalFrames(s.frames, []string{"<E>", "<S>", "<T>", "<Z>"}) {
		t.Errorf("sent = %q, want commit then the definition sweep", s.frames)
	}

	s.frames = nil
	if err := e.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !equalFrames(s.frames, []string{"<S>", "<T>", "<Z>"}) {
		t.Errorf("sent = %q", s.frames)
	}
}

func TestCommit_FailedCommitSkipsSweep(t *testing.T) {
	e, _, s := newEngine()
	s.failAt = 1
	if err := e.Commit(context.Background()); !errors.Is(err, errLinkDown) {
		t.Fatalf("Commit() error = %v, want errLinkDown", err)
	}
	if len(s.frames) != 0 {
		t.Errorf("sent = %q after a failed commit", s.frames)
	}
}

func TestSynchronizeAll_RetypedTurnoutDeletesFirst(t *testing.T) {
	e, set, s := newEngine()
	servo := set.Store(records.KindServoTurnout)
	dcc := set.Store(records.KindDCCTurnout)
	id, _ := servo.InsertOrUpdate(records.Record{Index: 3, Fields: records.ServoTurnout{Pin: 100, ThrownPosition: 410, ClosedPosition: 205}}, false)
	if err := servo.MarkDelete(id); err != nil {
		t.Fatal(err)
	}
	if _, err := dcc.InsertOrUpdate(records.Record{Index: 3, Fields: records.DCCTurnout{Address: 12}}, true); err != nil {
		t.Fatal(err)
	}

	rep, err := e.SynchronizeAll(context.Background())
	if err != nil {
		t.Fatalf("SynchronizeAll() error = %v", err)
	}
	if !equalFrames(s.frames, []string{"<T 3>", "<T 3 12 0>"}) {
		t.Errorf("sent = %q, want the servo delete before the DCC add", s.frames)
	}
	if rep.Deleted != 1 || rep.Added != 1 || set.IsDirty() {
		t.Errorf("report = %+v, dirty = %v", rep, set.IsDirty())
	}
	if row, ok := dcc.Lookup(3); !ok || row.Pending() {
		t.Errorf("dcc 3 = %+v, %v, want a clean row", row, ok)
	}
	if servo.Len() != 0 {
		t.Errorf("servo store has %d rows, want 0", servo.Len())
	}
}

func TestSynchronizeAll_DeletesOfEveryStoreFirst(t *testing.T) {
	e, set, s := newEngine()
	sensors := set.Store(records.KindSensor)
	outputs := set.Store(records.KindOutput)
	sensors.InsertOrUpdate(records.Record{Index: 1, Fields: records.Sensor{Pin: 5}}, true)
	id, _ := outputs.InsertOrUpdate(records.Record{Index: 2, Fields: records.Output{Pin: 31}}, false)
	outputs.MarkDelete(id)

	if _, err := e.SynchronizeAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !equalFrames(s.frames, []string{"<Z 2>", "<S 1 5 0>"}) {
		t.Errorf("sent = %q, want deletes first", s.frames)
	}
}

func decode(t *testing.T, frame string) dccpp.Reply {
	t.Helper()
	r, err := dccpp.Decode([]byte(frame))
	if err != nil {
		t.Fatalf("Decode(%q) error = %v", frame, err)
	}
	return r
}

func TestOnReply_Upserts(t *testing.T) {
	e, set, _ := newEngine()
	e.OnReply(decode(t, "<Q 4 22 1>"))
	e.OnReply(decode(t, "<H 5 SERVO 100 410 205 2 0>"))
	e.OnReply(decode(t, "<Y 2 31 6 0>"))
	e.OnReply(decode(t, "<O>"))
	e.OnReply(decode(t, "<Q 4>"))

	if row, ok := set.Store(records.KindSensor).Lookup(4); !ok || row.Fields != (records.Sensor{Pin: 22, Pullup: true}) || row.Pending() {
		t.Errorf("sensor row = %+v, %v", row, ok)
	}
	if row, ok := set.Store(records.KindServoTurnout).Lookup(5); !ok || row.Fields != (records.ServoTurnout{Pin: 100, ThrownPosition: 410, ClosedPosition: 205, Profile: 2}) {
		t.Errorf("servo row = %+v, %v", row, ok)
	}
	if row, ok := set.Store(records.KindOutput).Lookup(2); !ok || row.Fields != (records.Output{Pin: 31, Restore: true, Force: true}) {
		t.Errorf("output row = %+v, %v", row, ok)
	}
	if set.IsDirty() {
		t.Error("device definitions left the set dirty")
	}
}

func TestOnReply_DirtyWins(t *testing.T) {
	e, set, _ := newEngine()
	store := set.Store(records.KindDCCTurnout)
	id, _ := store.InsertOrUpdate(records.Record{Index: 3, Fields: records.DCCTurnout{Address: 12}}, false)
	store.Edit(id, records.Record{Index: 3, Fields: records.DCCTurnout{Address: 20}})

	e.OnReply(decode(t, "<H 3 DCC 12 0 0>"))

	row, _ := store.Get(id)
	if !row.Dirty || row.Fields != (records.DCCTurnout{Address: 20}) {
		t.Errorf("row = %+v, want local edit kept", row)
	}
}

func TestOnReply_DeviceWinsOverCleanRow(t *testing.T) {
	e, set, _ := newEngine()
	store := set.Store(records.KindSensor)
	store.InsertOrUpdate(records.Record{Index: 1, Fields: records.Sensor{Pin: 5}}, false)

	e.OnReply(decode(t, "<Q 1 8 0>"))

	if row, _ := store.Lookup(1); row.Fields != (records.Sensor{Pin: 8}) || row.Pending() {
		t.Errorf("row = %+v, want device values", row)
	}
}

func TestOnReply_RetypedTurnout(t *testing.T) {
	e, set, _ := newEngine()
	e.OnReply(decode(t, "<H 7 12 0 0>"))
	e.OnReply(decode(t, "<H 7 VPIN 164 0>"))

	if _, ok := set.Store(records.KindDCCTurnout).Lookup(7); ok {
		t.Error("stale DCC turnout 7 kept after a Vpin definition")
	}
	if _, ok := set.Store(records.KindVpinTurnout).Lookup(7); !ok {
		t.Error("Vpin turnout 7 missing")
	}
}

// TestRoundTrip saves, then feeds the device echo back and expects a clean set.
func TestRoundTrip(t *testing.T) {
	e, set, s := newEngine()
	set.Store(records.KindSensor).InsertOrUpdate(records.Record{Index: 0, Fields: records.Sensor{Pin: 5}}, true)
	set.Store(records.KindOutput).InsertOrUpdate(records.Record{Index: 1, Fields: records.Output{Pin: 9, Invert: true}}, true)
	if _, err := e.SynchronizeAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(s.frames) != 2 {
		t.Fatalf("sent = %q", s.frames)
	}

	e.OnReply(decode(t, "<Q 0 5 0>"))
	e.OnReply(decode(t, "<Y 1 9 1 0>"))

	if set.IsDirty() {
		t.Error("set dirty after matching echo")
	}
	if n := len(set.Store(records.KindSensor).Rows()) + len(set.Store(records.KindOutput).Rows()); n != 2 {
		t.Errorf("rows = %d, want 2", n)
	}
}
