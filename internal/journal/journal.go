package journal

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
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/Gurux/gxdccpp-go/internal/config"
	"github.com/Gurux/gxdccpp-go/internal/dccpp"
)

const (
	dirPermissions = 0750
	msPerSecond    = 1000
	writeTimeout   = time.Second
	defaultLimit   = 50
)

// Event names stored in the event column.
const (
	EventSent     = "tx"
	EventTimeout  = "timeout"
	EventRejected = "rejected"
)

const schema = `CREATE TABLE IF NOT EXISTS command_journal (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at TEXT NOT NULL,
	port       TEXT NOT NULL,
	event      TEXT NOT NULL,
	kind       TEXT NOT NULL,
	frame      TEXT NOT NULL
)`

// Logger is the logging surface a Journal needs.
type Logger interface {
	Warn(msg string, args ...any)
}

// Entry is one journal row.
type Entry struct {
	ID        int64
	CreatedAt time.Time
	Port      string
	Event     string
	Kind      string
	Frame     string
}

// Journal is a traffic listener backed by SQLite.
type Journal struct {
	db   *sql.DB
	port string
	log  Logger
}

// Open opens or creates the journal database. port labels the rows written
// through this journal.
func Open(cfg config.JournalConfig, port string, log Logger) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), dirPermissions); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}
	connStr := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL&_synchronous=NORMAL",
		cfg.Path, cfg.BusyTimeout*msPerSecond)
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close() //nolint:errcheck // best effort cleanup on error path
		return nil, fmt.Errorf("creating journal table: %w", err)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Journal{db: db, port: port, log: log}, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	if err := j.db.Close(); err != nil {
		return fmt.Errorf("closing journal: %w", err)
	}
	return nil
}

// Append writes one row for c.
func (j *Journal) Append(ctx context.Context, event string, c dccpp.Command) error {
	return j.insert(ctx, event, c.Kind.String(), c.String())
}

func (j *Journal) insert(ctx context.Context, event, kind, frame string) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO command_journal (created_at, port, event, kind, frame) VALUES (?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339Nano), j.port, event, kind, frame,
	)
	if err != nil {
		return fmt.Errorf("inserting journal entry: %w", err)
	}
	return nil
}

// Recent returns up to limit rows, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, created_at, port, event, kind, frame FROM command_journal ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var at string
		if err := rows.Scan(&e.ID, &at, &e.Port, &e.Event, &e.Kind, &e.Frame); err != nil {
			return nil, fmt.Errorf("scanning journal entry: %w", err)
		}
		created, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("parsing time of journal entry %d: %w", e.ID, err)
		}
		e.CreatedAt = created
		out = append(out, e)
	}
	return out, rows.Err()
}

func (j *Journal) record(event string, c dccpp.Command) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := j.Append(ctx, event, c); err != nil {
		j.log.Warn("journal write failed", "event", event, "frame", c.String(), "error", err)
	}
}

// OnMessage records a transmitted command.
func (j *Journal) OnMessage(c dccpp.Command) {
	j.record(EventSent, c)
}

// OnTimeout records a command the device did not answer.
func (j *Journal) OnTimeout(c dccpp.Command) {
	j.record(EventTimeout, c)
}

// OnReply records device rejections. The frame of a rejection does not
// name the command, so the row carries the raw reply.
func (j *Journal) OnReply(r dccpp.Reply) {
	ack, ok := r.(dccpp.Ack)
	if !ok || ack.OK {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := j.insert(ctx, EventRejected, ack.Kind().String(), ack.Frame()); err != nil {
		j.log.Warn("journal write failed", "event", EventRejected, "error", err)
	}
}
