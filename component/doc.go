// Package component defines the lifecycle interface shared by the parts of
// an application built on sseclient (sessions, telemetry exporters) and a
// registry that starts them in order and stops them in reverse.
package component
