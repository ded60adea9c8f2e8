// Package strategy implements publish-decision strategies for telemetry
// registrations.
//
// A Strategy is a stateful object consulted once per probe cycle: given
// the freshly produced value and the last published value, it decides
// whether the new value is worth transmitting. Concrete strategies cover
// elapsed time (Every), probe counts (Sample), and change detection with
// optional numeric thresholds (OnChange, OnChangeThreshold,
// OnChangeFields). Any and All compose them with logical OR/AND.
//
// Two rules keep composite state coherent:
//
//   - Composites never short-circuit: every child's ShouldPublish runs on
//     every cycle, so counters and timers keep advancing even when a
//     sibling already decided the outcome.
//   - OnPublished is forwarded to every child whenever the composite
//     publishes, including children that did not trigger it.
//
// The first value a registration ever produces is published by the
// telemetry loop unconditionally; strategies only govern the cycles after
// retained initial state exists.
package strategy
