// Package sim provides the discrete-event simulation core for the battery-swap
// station network.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - event.go: the event types that drive the simulation (movement ticks,
//     station arrivals, charge completions, activity window changes)
//   - engine.go: the event loop, clock advancement, and world construction
//   - swap.go: arrival resolution, the swap transaction, and waiting-scooter
//     wake-ups
//
// # Architecture
//
// The engine is logically single-threaded: events are popped from a
// time-ordered queue and dispatched one at a time, and all entity mutation
// happens inside event handlers. Nothing in the package starts a goroutine
// except the Controller, whose pacing loop is the single writer driving the
// engine; control commands and snapshot reads are serialized against it by a
// mutex, so observers only ever see state between dispatches.
//
// Behavior variation points are closed sets of tagged variants rather than
// open interfaces:
//   - MovementKind: random walk or externally directed destinations
//   - ActivityKind: always active or a scheduled daily activity window
//
// All randomness flows through a PartitionedRNG derived from the configured
// seed, and the world keeps entities in insertion-ordered slices, so two runs
// with the same configuration and seed are identical event for event.
package sim
