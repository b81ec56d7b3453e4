// Package timeouts defines shared timeout constants used across Zenith.
// Centralizing these values prevents drift between the client engine and the
// gateway and makes the durations discoverable.
package timeouts

import "time"

// GatewayRequest caps the time allowed for a single HTTP request from the
// client engine to the gateway.
const GatewayRequest = 10 * time.Second

// ReadHeader limits how long the gateway HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the gateway HTTP server waits for in-flight
// requests during graceful shutdown.
const Shutdown = 5 * time.Second

// ReminderDelay is the fixed wait between enabling a task reminder and the
// desktop notification firing.
const ReminderDelay = 25 * time.Minute
