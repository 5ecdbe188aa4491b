// Package traffic pumps commands and replies over one open serial link.
//
// A Controller has a single writer path and a single reader goroutine.
// Commands from any caller are written whole, in submission order. Every
// decoded reply is handed to every registered listener, in registration
// order, on the reader goroutine. Commands that expect a reply and see no
// correlated one within the reply timeout produce an advisory timeout
// notification.
package traffic
