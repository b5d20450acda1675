// Package weather looks up outdoor conditions for the house from the
// external weather service.
//
// The Gateway is the transport contract: each call carries the installation's
// group number and the house coordinate, and returns a Reading holding a
// single numeric measurement. HTTPGateway implements it over plain GET
// requests with query parameters.
//
// Service adds validation on top: hours must be 0-23, solar events must be
// "sunrise" or "sunset", and the coordinate comes from the first configured
// house. It satisfies reconcile.OutdoorTemperature.
//
// Usage:
//
//	gw := weather.NewHTTPGateway(cfg.Weather.URL, cfg.GetWeatherTimeout())
//	svc := weather.NewService(gw, houses, cfg.Weather.GroupNumber)
//	temp, err := svc.TemperatureForHour(ctx, 14)
package weather
