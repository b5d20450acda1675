// Package reconcile answers questions that span several sensors' value series.
//
// The Service routes each sensor to its value store through the functionality
// table and derives:
//
//   - every reading of a device within a window, grouped by functionality
//   - the latest measurement of a device's functionality
//   - the peak total power draw, bucketed by the grid meter's intervals
//   - the largest indoor/outdoor temperature difference, against either a
//     second sensor or the external weather service
//
// Temperature differentials return NoComparableData (-1) when no pair of
// readings falls within the configured tolerance. That is a result, not an
// error.
//
// Settings are parsed once by ParseSettings; a bad cadence or tolerance stops
// the service from being built rather than failing individual requests.
package reconcile
