// Package mirror republishes base station traffic to MQTT.
//
// A Mirror is a traffic listener. Definitions are published retained under
// <prefix>/def/<kind>/<index>, other replies under <prefix>/rx, transmitted
// commands under <prefix>/tx and unanswered commands under
// <prefix>/timeout. Publishing happens on a worker goroutine behind a
// bounded queue; when the queue is full new messages are dropped so the
// traffic reader never waits on the broker.
package mirror
