// Package pipeline holds the stage graph of a distribution: seven canonical
// ordered stage groups plus the last-chance and timeout singleton slots.
// Mutations preserve insertion order within a group and enforce that
// dependencies always point to earlier stages.
package pipeline
