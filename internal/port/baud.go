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
	"fmt"
	"strconv"

	"github.com/Gurux/gxcommon-go"
)

var (
	baudLabels  = []string{"115,200 bps", "57,600 bps", "38,400 bps", "19,200 bps", "9,600 bps"}
	baudNumbers = []int{115200, 57600, 38400, 19200, 9600}
)

// ValidBaudRates returns the display labels of the supported speeds. The
// slice is index-correlated with ValidBaudNumbers.
func ValidBaudRates() []string {
	return append([]string(nil), baudLabels...)
}

// ValidBaudNumbers returns the supported speeds in bits per second.
func ValidBaudNumbers() []int {
	return append([]int(nil), baudNumbers...)
}

// DefaultBaudIndex returns the index of the default speed.
func DefaultBaudIndex() int {
	return 0
}

// BaudRate returns the speed at index i as a gxcommon value.
func BaudRate(i int) (gxcommon.BaudRate, error) {
	if i < 0 || i >= len(baudNumbers) {
		return 0, fmt.Errorf("%w: baud index %d", gxcommon.ErrInvalidArgument, i)
	}
	return gxcommon.BaudRate(baudNumbers[i]), nil
}

func baudIndexOfLabel(label string) (int, bool) {
	for i, l := range baudLabels {
		if l == label {
			return i, true
		}
	}
	return 0, false
}

func baudIndexOfNumber(number string) (int, bool) {
	n, err := strconv.Atoi(number)
	if err != nil {
		return 0, false
	}
	for i, v := range baudNumbers {
		if v == n {
			return i, true
		}
	}
	return 0, false
}
