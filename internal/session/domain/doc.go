// Package domain defines the viewer session value and the state machine
// that governs its lifecycle. The session is a pure value; all mutation
// happens by applying typed events through Apply and storing the result.
package domain
