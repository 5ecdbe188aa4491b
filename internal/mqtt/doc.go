// Package mqtt is a thin wrapper over paho.mqtt.golang used to mirror
// base station traffic to a broker.
//
// The client connects with auto-reconnect, publishes a retained online
// status and registers a last will so that subscribers can tell when the
// mirror goes away.
package mqtt
