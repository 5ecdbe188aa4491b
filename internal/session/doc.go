// Package session wires one base station connection together: the serial
// port, the traffic controller, the record stores, the reconciliation
// engine and the optional journal and MQTT mirror.
//
// A Session is created per connection and torn down with Close; nothing
// is registered globally.
package session
