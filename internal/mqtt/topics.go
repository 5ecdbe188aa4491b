package mqtt

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
	"strconv"
	"strings"
)

// StatusTopic is where the mirror announces itself.
func StatusTopic(prefix string) string {
	return join(prefix, "status")
}

// DefTopic is the retained topic of one device definition, for example
// gxdccpp/def/sensor/3.
func DefTopic(prefix, kind string, index int) string {
	return join(prefix, "def", kind, strconv.Itoa(index))
}

// TxTopic carries every transmitted command.
func TxTopic(prefix string) string {
	return join(prefix, "tx")
}

// RxTopic carries replies that are not definitions.
func RxTopic(prefix string) string {
	return join(prefix, "rx")
}

// TimeoutTopic carries commands the device did not answer.
func TimeoutTopic(prefix string) string {
	return join(prefix, "timeout")
}

func join(prefix string, parts ...string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return strings.Join(parts, "/")
	}
	return prefix + "/" + strings.Join(parts, "/")
}
