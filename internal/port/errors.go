package port

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
	"io/fs"

	"go.bug.st/serial"
	"golang.org/x/text/message"
)

var (
	// ErrPortBusy is returned when another process holds the port.
	ErrPortBusy = errors.New("port: busy")

	// ErrPortNotFound is returned when the named port does not exist.
	ErrPortNotFound = errors.New("port: not found")

	// ErrUnsupportedParameters is returned when the driver rejects the line settings.
	ErrUnsupportedParameters = errors.New("port: unsupported parameters")

	// ErrIOFailure is returned for any other open or I/O failure.
	ErrIOFailure = errors.New("port: i/o failure")

	// ErrNotOpened is returned by stream accessors before a successful open.
	ErrNotOpened = errors.New("port: not opened")
)

// OpenError is a transport failure of one open attempt.
type OpenError struct {
	Port string
	// Err is one of the transport sentinels.
	Err error
	// Cause is the driver error, if any.
	Cause error

	msg string
}

func (e *OpenError) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return e.Err.Error() + ": " + e.Port
}

func (e *OpenError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func newOpenError(p *message.Printer, name string, kind, cause error) *OpenError {
	e := &OpenError{Port: name, Err: kind, Cause: cause}
	switch kind {
	case ErrPortBusy:
		e.msg = p.Sprintf("msg.port_busy", name)
	case ErrPortNotFound:
		e.msg = p.Sprintf("msg.port_not_found", name)
	case ErrUnsupportedParameters:
		e.msg = p.Sprintf("msg.unsupported_parameters", name, cause)
	case ErrNotOpened:
		e.msg = p.Sprintf("msg.not_opened", name)
	default:
		e.msg = p.Sprintf("msg.io_failure", name, cause)
	}
	return e
}

// classify maps a driver error onto a transport sentinel.
func classify(err error) error {
	for _, kind := range []error{ErrPortBusy, ErrPortNotFound, ErrUnsupportedParameters, ErrIOFailure} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	if code, ok := portErrorCode(err); ok {
		switch code {
		case serial.PortBusy:
			return ErrPortBusy
		case serial.PortNotFound, serial.InvalidSerialPort:
			return ErrPortNotFound
		case serial.InvalidSpeed, serial.InvalidDataBits, serial.InvalidParity,
			serial.InvalidStopBits, serial.InvalidTimeoutValue:
			return ErrUnsupportedParameters
		default:
			return ErrIOFailure
		}
	}
	if errors.Is(err, fs.ErrNotExist) {
		return ErrPortNotFound
	}
	return ErrIOFailure
}

// portErrorCode unwraps a driver error. The driver returns *PortError from
// Open but values from other calls.
func portErrorCode(err error) (serial.PortErrorCode, bool) {
	var ptr *serial.PortError
	if errors.As(err, &ptr) && ptr != nil {
		return ptr.Code(), true
	}
	var val serial.PortError
	if errors.As(err, &val) {
		return val.Code(), true
	}
	return 0, false
}
