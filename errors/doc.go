// Package errors provides the structured error type used across sseclient.
// Every failure carries a machine-readable code, a retryable flag, and an
// optional cause, and renders to the LoopBack-style error body the login
// endpoints use.
package errors
