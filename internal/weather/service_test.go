package weather

import (
	"context"
	"errors"
	"testing"

	"github.com/nerrad567/smarthome-core/internal/geo"
	"github.com/nerrad567/smarthome-core/internal/house"
)

type fakeHouses struct {
	houses []house.House
	err    error
}

func (f fakeHouses) FindAll(context.Context) ([]house.House, error) {
	return f.houses, f.err
}

// recordingGateway answers every call with reading and records its arguments.
type recordingGateway struct {
	reading Reading
	err     error

	calls int
	group string
	at    geo.Coordinate
	hours []int
	event Event
}

func (g *recordingGateway) record(group string, at geo.Coordinate, hours ...int) (Reading, error) {
	g.calls++
	g.group = group
	g.at = at
	g.hours = hours
	return g.reading, g.err
}

func (g *recordingGateway) InstantaneousTemperature(_ context.Context, group string, at geo.Coordinate, hour int) (Reading, error) {
	return g.record(group, at, hour)
}

func (g *recordingGateway) SunriseSunset(_ context.Context, group string, at geo.Coordinate, event Event) (Reading, error) {
	g.event = event
	return g.record(group, at)
}

func (g *recordingGateway) InstantaneousWind(_ context.Context, group string, at geo.Coordinate, hour int) (Reading, error) {
	return g.record(group, at, hour)
}

func (g *recordingGateway) MaximumWind(_ context.Context, group string, at geo.Coordinate, startHour, endHour int) (Reading, error) {
	return g.record(group, at, startHour, endHour)
}

func locatedHouses() fakeHouses {
	return fakeHouses{houses: []house.House{
		{ID: "h-1", Location: &house.Location{Address: "Grand Place 1", Coordinate: brussels}},
		{ID: "h-2", Location: &house.Location{Coordinate: geo.Coordinate{Latitude: 1, Longitude: 1}}},
	}}
}

func TestService_TemperatureForHour(t *testing.T) {
	gw := &recordingGateway{reading: Reading{Measurement: 11, Unit: "°C"}}
	svc := NewService(gw, locatedHouses(), "7")

	got, err := svc.TemperatureForHour(context.Background(), 10)
	if err != nil {
		t.Fatalf("TemperatureForHour() error = %v", err)
	}
	if got != 11 {
		t.Errorf("TemperatureForHour() = %v, want 11", got)
	}
	if gw.group != "7" {
		t.Errorf("group = %q, want 7", gw.group)
	}
	if gw.at != brussels {
		t.Errorf("coordinate = %+v, want first house %+v", gw.at, brussels)
	}
	if len(gw.hours) != 1 || gw.hours[0] != 10 {
		t.Errorf("hours = %v, want [10]", gw.hours)
	}
}

func TestService_InvalidHour(t *testing.T) {
	gw := &recordingGateway{}
	svc := NewService(gw, locatedHouses(), "7")
	ctx := context.Background()

	for _, hour := range []int{-1, 24, 100} {
		if _, err := svc.TemperatureForHour(ctx, hour); !errors.Is(err, ErrInvalidHour) {
			t.Errorf("TemperatureForHour(%d) error = %v, want ErrInvalidHour", hour, err)
		}
		if _, err := svc.WindForHour(ctx, hour); !errors.Is(err, ErrInvalidHour) {
			t.Errorf("WindForHour(%d) error = %v, want ErrInvalidHour", hour, err)
		}
	}
	if _, err := svc.MaxWindBetween(ctx, 18, 6); !errors.Is(err, ErrInvalidHour) {
		t.Errorf("MaxWindBetween(18, 6) error = %v, want ErrInvalidHour", err)
	}
	if gw.calls != 0 {
		t.Errorf("gateway called %d times, want 0", gw.calls)
	}
}

func TestService_SunriseSunsetHour(t *testing.T) {
	gw := &recordingGateway{reading: Reading{Measurement: 6.75, Unit: "h"}}
	svc := NewService(gw, locatedHouses(), "7")

	got, err := svc.SunriseSunsetHour(context.Background(), "sunrise")
	if err != nil {
		t.Fatalf("SunriseSunsetHour() error = %v", err)
	}
	if got != 6.75 || gw.event != Sunrise {
		t.Errorf("SunriseSunsetHour() = %v (event %q), want 6.75 (sunrise)", got, gw.event)
	}

	if _, err := svc.SunriseSunsetHour(context.Background(), "dusk"); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("SunriseSunsetHour(dusk) error = %v, want ErrInvalidEvent", err)
	}
}

func TestService_Wind(t *testing.T) {
	gw := &recordingGateway{reading: Reading{Measurement: 42, Unit: "km/h", Label: "NW"}}
	svc := NewService(gw, locatedHouses(), "7")

	got, err := svc.MaxWindBetween(context.Background(), 6, 18)
	if err != nil {
		t.Fatalf("MaxWindBetween() error = %v", err)
	}
	if got.Label != "NW" || len(gw.hours) != 2 || gw.hours[0] != 6 || gw.hours[1] != 18 {
		t.Errorf("MaxWindBetween() = %+v with hours %v", got, gw.hours)
	}

	if _, err := svc.WindForHour(context.Background(), 23); err != nil {
		t.Errorf("WindForHour(23) error = %v", err)
	}
}

func TestService_HouseResolution(t *testing.T) {
	tests := []struct {
		name    string
		houses  fakeHouses
		wantErr []error
	}{
		{name: "no house", houses: fakeHouses{}, wantErr: []error{house.ErrNoHouseConfigured}},
		{
			name:    "house without location",
			houses:  fakeHouses{houses: []house.House{{ID: "h-1"}}},
			wantErr: []error{house.ErrNoHouseConfigured, house.ErrNoLocation},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &recordingGateway{}
			svc := NewService(gw, tt.houses, "7")

			_, err := svc.TemperatureForHour(context.Background(), 12)
			for _, want := range tt.wantErr {
				if !errors.Is(err, want) {
					t.Errorf("error = %v, want %v", err, want)
				}
			}
			if gw.calls != 0 {
				t.Errorf("gateway called %d times, want 0", gw.calls)
			}
		})
	}
}

func TestService_GatewayError(t *testing.T) {
	gw := &recordingGateway{err: ErrRequestFailed}
	svc := NewService(gw, locatedHouses(), "7")

	if _, err := svc.TemperatureForHour(context.Background(), 12); !errors.Is(err, ErrRequestFailed) {
		t.Errorf("error = %v, want ErrRequestFailed", err)
	}
}
