/*
Command gxdccpp configures a DCC++ base station over a serial port.

It can:
  - list the serial ports of the host
  - open the base station and print the sensor, turnout and output
    definitions it reports
  - apply a YAML change file and save the result to the device
  - show the most recent entries of the command journal

A change file is a list of operations:

	changes:
	  - op: add
	    kind: sensor
	    index: 4
	    fields: {pin: 22, pullup: true}
	  - op: edit
	    kind: turnout
	    index: 3
	    new_index: 7
	    fields: {address: 20, subaddress: 1}
	  - op: delete
	    kind: output
	    index: 1

Kinds are sensor, turnout, servo, vpin and output.
*/
package main
