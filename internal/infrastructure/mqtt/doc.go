// Package mqtt wraps paho.mqtt.golang for Gray Bridge processes.
//
// The wrapper owns three concerns the runtime should not have to think
// about:
//
//   - Connection lifecycle: initial connect with timeout, auto-reconnect
//     with exponential backoff, subscription restoration, and a retained
//     Last Will of "offline" on the {prefix}/status topic.
//   - Operation safety: publish/subscribe with acknowledgement timeouts,
//     payload size limits, and panic recovery around message handlers.
//   - Topic construction: the Topics type builds every topic in the
//     bridge scheme from one prefix, and parses inbound command topics
//     back to device names.
//
// The runtime consumes this package through the bridge.Transport
// interface, so tests substitute an in-memory fake.
package mqtt
