// Package records holds the operator's editable copy of the device
// configuration.
//
// There is one Store per record kind. Each row carries at most one of the
// New, Dirty and Delete flags, which together describe how the row differs
// from what was last synchronized with the device.
package records
