// Package journal appends every transmitted command and every unanswered
// command to a SQLite table.
//
// Synchronization is fire and forget, so a command lost on the wire leaves
// the device and the local records out of step without any error. The
// journal is the trail for finding out afterwards what was sent and when.
package journal
