package mqtt

import "strings"

// Topic scheme for a Gray Bridge process. All topics live under a single
// configurable prefix:
//
//	{prefix}/{name}/state         outbound, retained device state
//	{prefix}/{name}/set           inbound commands for the device
//	{prefix}/{name}/availability  outbound, retained online/offline
//	{prefix}/{name}/error         outbound, device-scoped error events
//	{prefix}/error                outbound, bridge-wide error events
//	{prefix}/status               outbound, retained process status (also the LWT)
//
// The root device is the single registration without a name; its topics omit
// the name segment, e.g. {prefix}/state and {prefix}/set.

// Topic suffix segments.
const (
	segState        = "state"
	segSet          = "set"
	segAvailability = "availability"
	segError        = "error"
	segStatus       = "status"
)

// Topics builds the topic strings for one bridge prefix.
//
//	topics := mqtt.Topics{Prefix: "graybridge"}
//	topics.State("boiler") // "graybridge/boiler/state"
//	topics.State("")       // "graybridge/state" (root device)
type Topics struct {
	Prefix string
}

// device joins the prefix, an optional device name, and a suffix segment.
func (t Topics) device(name, suffix string) string {
	if name == "" {
		return t.Prefix + "/" + suffix
	}
	return t.Prefix + "/" + name + "/" + suffix
}

// State returns the retained state topic for a device ("" = root device).
func (t Topics) State(name string) string {
	return t.device(name, segState)
}

// Set returns the inbound command topic for a device ("" = root device).
func (t Topics) Set(name string) string {
	return t.device(name, segSet)
}

// Availability returns the retained availability topic for a device.
func (t Topics) Availability(name string) string {
	return t.device(name, segAvailability)
}

// DeviceError returns the error topic for a device. For the root device this
// is the same topic as BridgeError.
func (t Topics) DeviceError(name string) string {
	return t.device(name, segError)
}

// BridgeError returns the bridge-wide error topic.
func (t Topics) BridgeError() string {
	return t.Prefix + "/" + segError
}

// Status returns the retained process status topic, also used as the LWT.
func (t Topics) Status() string {
	return t.Prefix + "/" + segStatus
}

// DeviceFromSet recovers the device name from an inbound command topic.
//
// It uses plain string matching, no pattern language: the topic must be
// exactly "{prefix}/{name}/set" (one name segment) or "{prefix}/set" for the
// root device. Anything else reports ok=false and should be dropped.
//
// Returns:
//   - name: The device name, "" for the root device
//   - ok: Whether the topic had the expected shape
func (t Topics) DeviceFromSet(topic string) (name string, ok bool) {
	rest, found := strings.CutPrefix(topic, t.Prefix+"/")
	if !found {
		return "", false
	}
	if rest == segSet {
		return "", true
	}
	name, found = strings.CutSuffix(rest, "/"+segSet)
	if !found || name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return name, true
}
