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

import "errors"

var (
	// ErrMalformedFrame is returned when a frame is not delimited or a
	// known reply carries fields that cannot be parsed.
	ErrMalformedFrame = errors.New("dccpp: malformed frame")

	// ErrUnknownCommand is returned when a command kind is not in the vocabulary.
	ErrUnknownCommand = errors.New("dccpp: unknown command")

	// ErrArity is returned when a command carries the wrong number of arguments.
	ErrArity = errors.New("dccpp: wrong number of command arguments")
)
