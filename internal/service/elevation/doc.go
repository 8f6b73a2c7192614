// Package elevation is the one-shot privilege collaborator invoked before
// the sync flow begins. The flow itself knows nothing about privileges: it
// either runs with enough of them or fails at the injection gate.
package elevation
