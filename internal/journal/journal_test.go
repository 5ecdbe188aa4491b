package journal

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Gurux/gxdccpp-go/internal/config"
	"github.com/Gurux/gxdccpp-go/internal/dccpp"
)

func openTemp(t *testing.T) *Journal {
	t.Helper()
	cfg := config.JournalConfig{Enabled: true, Path: filepath.Join(t.TempDir(), "sub", "journal.db"), BusyTimeout: 1}
	j, err := Open(cfg, "/dev/ttyACM0", nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestJournal_RecordsTraffic(t *testing.T) {
	j := openTemp(t)

	j.OnMessage(dccpp.NewTurnoutDelete(3))
	j.OnMessage(dccpp.NewTurnoutAdd(3, 20, 0))
	j.OnTimeout(dccpp.NewCommit())
	j.OnReply(dccpp.Ack{OK: true})
	r, err := dccpp.Decode([]byte("<X>"))
	if err != nil {
		t.Fatal(err)
	}
	j.OnReply(r)

	entries, err := j.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	want := []struct{ event, kind, frame string }{
		{EventRejected, "Ack", "<X>"},
		{EventTimeout, "Commit", "<E>"},
		{EventSent, "TurnoutAdd", "<T 3 20 0>"},
		{EventSent, "TurnoutDelete", "<T 3>"},
	}
	if len(entries) != len(want) {
		t.Fatalf("entries = %+v, want %d rows", entries, len(want))
	}
	for i, w := range want {
		e := entries[i]
		if e.Event != w.event || e.Kind != w.kind || e.Frame != w.frame || e.Port != "/dev/ttyACM0" {
			t.Errorf("entry %d = %+v, want %+v", i, e, w)
		}
		if e.CreatedAt.IsZero() {
			t.Errorf("entry %d has no timestamp", i)
		}
	}
}

func TestJournal_RecentLimit(t *testing.T) {
	j := openTemp(t)
	for i := 0; i < 5; i++ {
		if err := j.Append(context.Background(), EventSent, dccpp.NewSensorDelete(i)); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
	entries, err := j.Recent(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].Frame != "<S 4>" {
		t.Errorf("entries = %+v, want the two newest", entries)
	}
}

func TestJournal_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	cfg := config.JournalConfig{Path: path, BusyTimeout: 1}
	j, err := Open(cfg, "COM3", nil)
	if err != nil {
		t.Fatal(err)
	}
	j.OnMessage(dccpp.NewCommit())
	_ = j.Close()

	j, err = Open(cfg, "COM3", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer j.Close()
	entries, err := j.Recent(context.Background(), 0)
	if err != nil || len(entries) != 1 {
		t.Errorf("Recent() = %+v, %v, want the row from the first session", entries, err)
	}
}

func TestJournal_RecentBadTimestamp(t *testing.T) {
	j := openTemp(t)
	_, err := j.db.ExecContext(context.Background(),
		`INSERT INTO command_journal (created_at, port, event, kind, frame) VALUES (?, ?, ?, ?, ?)`,
		"yesterday", "/dev/ttyACM0", EventSent, "Commit", "<E>")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := j.Recent(context.Background(), 10); err == nil || !strings.Contains(err.Error(), "parsing time") {
		t.Errorf("Recent() error = %v, want a time parse error", err)
	}
}
