// Package port owns the physical serial link to a DCC++ base station.
//
// A Session moves through Closed, Opening and Open. Open negotiates the
// configured baud rate and 8-N-1 framing with flow control off, sets the
// receive-idle timeout that delimits reply frames, purges stray input and
// asserts the RTS/DTR leads. Failures are reported as *OpenError values
// whose Err is one of the transport sentinels and whose message is
// localized.
package port
