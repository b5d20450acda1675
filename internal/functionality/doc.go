// Package functionality maps each functionality ID to the value variant its
// sensors record and the aggregation used to list those values.
//
// The table is built once at startup from configuration and never mutated,
// so it is safe for concurrent reads without locking.
package functionality
