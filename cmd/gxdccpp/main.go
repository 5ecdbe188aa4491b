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
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/Gurux/gxdccpp-go/internal/config"
	"github.com/Gurux/gxdccpp-go/internal/logging"
	"github.com/Gurux/gxdccpp-go/internal/port"
	"github.com/Gurux/gxdccpp-go/internal/records"
	"github.com/Gurux/gxdccpp-go/internal/session"
)

var version = "dev"

var (
	configPath = flag.String("c", "", "Configuration file.")
	portName   = flag.String("S", "", "Port name. Overrides the configuration.")
	baudRate   = flag.Int("b", 0, "Baud rate (115200, 57600, 38400, 19200, 9600).")
	t          = flag.String("t", "", "Trace level.")
	lang       = flag.String("lang", "", "Used language.")
	listPorts  = flag.Bool("l", false, "List serial ports and exit.")
	apply      = flag.String("apply", "", "YAML change file to apply and save.")
	settle     = flag.Duration("settle", time.Second, "Time to wait for the device definitions after open.")
	journal    = flag.Int("journal", 0, "Print this many recent journal entries.")
	yes        = flag.Bool("y", false, "Answer yes to every question.")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	if *listPorts {
		names, err := port.PortNames()
		if err != nil {
			return fmt.Errorf("failed to get available serial ports: %w", err)
		}
		fmt.Println(strings.Join(names, "\n"))
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Connection.Port == "" {
		flag.PrintDefaults()
		return nil
	}

	var changes []change
	if *apply != "" {
		if changes, err = loadChanges(*apply); err != nil {
			return err
		}
	}

	log := logging.New(cfg.Logging, version)
	s, err := session.New(session.Options{
		Config:   cfg,
		Logger:   log,
		Prompter: newLinePrompter(os.Stdin, os.Stdout, *yes),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Host port: %s %s\n", cfg.Connection.Port, s.Port().CurrentBaudRate())
	if err := s.Open(ctx); err != nil {
		names, lerr := port.PortNames()
		if lerr == nil && len(names) != 0 {
			fmt.Fprintln(os.Stderr, "Available serial ports: "+strings.Join(names, ","))
		}
		return err
	}
	//Close the connection. Unsaved changes are offered for saving.
	defer func() {
		if err := s.Close(context.Background()); err != nil {
			fmt.Fprintln(os.Stderr, "close failed:", err)
		}
	}()

	select {
	case <-time.After(*settle):
	case <-ctx.Done():
		return ctx.Err()
	}
	printRecords(os.Stdout, s.Records())

	if len(changes) != 0 {
		if err := applyChanges(s.Records(), changes); err != nil {
			return err
		}
		rep, err := s.Save(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Added %d, updated %d, deleted %d.\n", rep.Added, rep.Updated, rep.Deleted)
	}

	st := s.Stats()
	fmt.Printf("Frames sent %d, received %d, timeouts %d, decode errors %d.\n",
		st.FramesSent, st.FramesReceived, st.Timeouts, st.DecodeErrors)

	if *journal > 0 && s.Journal() != nil {
		entries, err := s.Journal().Recent(ctx, *journal)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%s %-8s %-14s %s\n", e.CreatedAt.Format(time.RFC3339), e.Event, e.Kind, e.Frame)
		}
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return nil, err
		}
	}
	if *portName != "" {
		cfg.Connection.Port = *portName
	}
	if *baudRate != 0 {
		i := slices.Index(port.ValidBaudNumbers(), *baudRate)
		if i < 0 {
			return nil, fmt.Errorf("unsupported baud rate %d", *baudRate)
		}
		cfg.Connection.BaudIndex = i
	}
	if *t != "" {
		cfg.Connection.Trace = *t
	}
	if *lang != "" {
		cfg.Connection.Language = *lang
	}
	return cfg, cfg.Validate()
}

func printRecords(w io.Writer, set *records.Set) {
	for _, k := range records.Kinds {
		for _, r := range set.Store(k).Rows() {
			fmt.Fprintf(w, "%-8s %3d %+v\n", k, r.Index, r.Fields)
		}
	}
}
