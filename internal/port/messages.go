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
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//nolint:errcheck
func init() {
	// --- English (default) ---
	message.SetString(language.AmericanEnglish, "msg.closing_connection", "Closing connection to %s")
	message.SetString(language.AmericanEnglish, "msg.connection_closed", "Connection closed to %s")
	message.SetString(language.AmericanEnglish, "msg.connected_to", "Connected to %s")
	message.SetString(language.AmericanEnglish, "msg.connect_failed", "connect to %s failed: %v")
	message.SetString(language.AmericanEnglish, "msg.connecting_to", "%s connecting to %s: timeout %d ms")
	message.SetString(language.AmericanEnglish, "msg.port_busy", "Port %s is in use by another application")
	message.SetString(language.AmericanEnglish, "msg.port_not_found", "Port %s not found")
	message.SetString(language.AmericanEnglish, "msg.unsupported_parameters", "Port %s does not support the line settings: %v")
	message.SetString(language.AmericanEnglish, "msg.io_failure", "I/O error on port %s: %v")
	message.SetString(language.AmericanEnglish, "msg.not_opened", "Port %s is not open")

	// --- German (de) ---
	message.SetString(language.German, "msg.closing_connection", "Verbindung zu %s wird geschlossen")
	message.SetString(language.German, "msg.connection_closed", "Verbindung zu %s wurde geschlossen")
	message.SetString(language.German, "msg.connected_to", "Verbunden mit %s")
	message.SetString(language.German, "msg.connect_failed", "Verbindung zu %s fehlgeschlagen: %v")
	message.SetString(language.German, "msg.connecting_to", "%s verbindet sich mit %s: timeout %d ms")
	message.SetString(language.German, "msg.port_busy", "Port %s wird von einer anderen Anwendung verwendet")
	message.SetString(language.German, "msg.port_not_found", "Port %s nicht gefunden")
	message.SetString(language.German, "msg.unsupported_parameters", "Port %s unterstützt die Leitungseinstellungen nicht: %v")
	message.SetString(language.German, "msg.io_failure", "E/A-Fehler an Port %s: %v")
	message.SetString(language.German, "msg.not_opened", "Port %s ist nicht geöffnet")

	// --- Finnish (fi) ---
	message.SetString(language.Finnish, "msg.closing_connection", "Suljetaan yhteys kohteeseen %s")
	message.SetString(language.Finnish, "msg.connection_closed", "Yhteys suljettu kohteeseen %s")
	message.SetString(language.Finnish, "msg.connected_to", "Yhdistetty kohteeseen %s")
	message.SetString(language.Finnish, "msg.connect_failed", "Yhteyden muodostus kohteeseen %s epäonnistui: %v")
	message.SetString(language.Finnish, "msg.connecting_to", "%s yhdistetään kohteeseen %s: timeout %d ms")
	message.SetString(language.Finnish, "msg.port_busy", "Portti %s on toisen sovelluksen käytössä")
	message.SetString(language.Finnish, "msg.port_not_found", "Porttia %s ei löydy")
	message.SetString(language.Finnish, "msg.unsupported_parameters", "Portti %s ei tue linja-asetuksia: %v")
	message.SetString(language.Finnish, "msg.io_failure", "I/O-virhe portissa %s: %v")
	message.SetString(language.Finnish, "msg.not_opened", "Porttia %s ei ole avattu")

	// --- Swedish (sv) ---
	message.SetString(language.Swedish, "msg.closing_connection", "Stänger anslutning till %s")
	message.SetString(language.Swedish, "msg.connection_closed", "Anslutning stängd till %s")
	message.SetString(language.Swedish, "msg.connected_to", "Ansluten till %s")
	message.SetString(language.Swedish, "msg.connect_failed", "Anslutning till %s misslyckades: %v")
	message.SetString(language.Swedish, "msg.connecting_to", "%s ansluter till %s: timeout %d ms")
	message.SetString(language.Swedish, "msg.port_busy", "Port %s används av ett annat program")
	message.SetString(language.Swedish, "msg.port_not_found", "Port %s hittades inte")
	message.SetString(language.Swedish, "msg.unsupported_parameters", "Port %s stöder inte linjeinställningarna: %v")
	message.SetString(language.Swedish, "msg.io_failure", "I/O-fel på port %s: %v")
	message.SetString(language.Swedish, "msg.not_opened", "Port %s är inte öppen")
}
