// Package dccpp is the frame codec for the DCC++ base station text protocol.
//
// Commands and replies are short ASCII strings bracketed by '<' and '>'.
// Commands are built from a fixed vocabulary table (see Encode) and
// replies are classified by their leading token through a fixed dispatch
// table (see Decode). A leading token that is not in the table decodes to
// Unknown with the raw frame preserved, so callers can still observe it.
//
// Framer turns a byte stream into delimited frames. It keeps partial input
// across reads and lets the receive-idle timeout decide when a partial frame
// is stale.
package dccpp
