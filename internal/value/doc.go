// Package value defines sensor readings, the three temporal shapes a reading
// can be recorded under, and the stores that hold each shape.
//
// A Reading is a measurement string plus a unit string. It renders for humans
// as "21.5 °C"; multi-part readings ("10;20" with "km/h;°") render as
// "10 km/h and 20 °".
//
// Every Value belongs to one sensor and carries one Reading. The variant is
// fixed at construction:
//
//   - InstantValue: one timestamp
//   - IntervalValue: a start and end timestamp, start <= end
//   - InstantLocationValue: one timestamp plus a GPS coordinate
//
// Each variant has its own store. Reconciliation only reads from stores;
// Save is an upsert keyed by value ID used by ingestion.
package value
