// Package util holds small generic helpers shared by the session and the
// commands.
package util
