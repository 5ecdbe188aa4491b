// Package reconcile turns flagged record rows into DCC++ commands and
// folds definition replies from the device back into the stores.
//
// A logical update is sent as a delete followed by an add at the same
// index, because the device has no modify command. Sending is fire and
// forget: flags are cleared once the frames are written, not when the
// device confirms them.
package reconcile
