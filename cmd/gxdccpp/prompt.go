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
	"bufio"
	"fmt"
	"io"
	"strings"
)

// linePrompter asks yes/no questions on a terminal.
type linePrompter struct {
	in  *bufio.Scanner
	out io.Writer
	yes bool
}

func newLinePrompter(in io.Reader, out io.Writer, yes bool) *linePrompter {
	return &linePrompter{in: bufio.NewScanner(in), out: out, yes: yes}
}

func (p *linePrompter) Confirm(question string) (bool, error) {
	if p.yes {
		fmt.Fprintf(p.out, "%s yes\n", question)
		return true, nil
	}
	fmt.Fprintf(p.out, "%s [y/N] ", question)
	if !p.in.Scan() {
		fmt.Fprintln(p.out)
		return false, p.in.Err()
	}
	switch strings.ToLower(strings.TrimSpace(p.in.Text())) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
