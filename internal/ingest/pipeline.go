package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/smarthome-core/internal/functionality"
	"github.com/nerrad567/smarthome-core/internal/geo"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/logging"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/metrics"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/smarthome-core/internal/sensor"
	"github.com/nerrad567/smarthome-core/internal/value"
)

// Outcome labels recorded per message.
const (
	outcomeOK                   = "ok"
	outcomeDecodeError          = "decode_error"
	outcomeInvalid              = "invalid_message"
	outcomeUnknownSensor        = "unknown_sensor"
	outcomeUnknownFunctionality = "unknown_functionality"
	outcomeStoreError           = "store_error"
)

// Subscriber is the MQTT surface the pipeline needs.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// Mirror receives a copy of every stored value.
type Mirror interface {
	WriteSensorValue(p influxdb.SensorPoint)
}

// Writers holds the per-variant value writers.
type Writers struct {
	Instant         value.Writer[*value.InstantValue]
	Interval        value.Writer[*value.IntervalValue]
	InstantLocation value.Writer[*value.InstantLocationValue]
}

// Deps holds the pipeline's collaborators. Registrar, Mirror, Metrics and
// Logger are optional.
type Deps struct {
	Sensors   sensor.Directory
	Registrar sensor.Registrar
	Table     *functionality.Table
	Writers   Writers
	Mirror    Mirror
	Metrics   *metrics.Metrics
	Logger    *logging.Logger
}

// Pipeline stores incoming sensor values.
type Pipeline struct {
	sensors   sensor.Directory
	registrar sensor.Registrar
	table     *functionality.Table
	writers   Writers
	mirror    Mirror
	metrics   *metrics.Metrics
	logger    *logging.Logger

	now   func() time.Time
	newID func() string

	mu    sync.Mutex
	topic string // guarded by mu
}

// New creates a Pipeline.
func New(deps Deps) (*Pipeline, error) {
	switch {
	case deps.Sensors == nil:
		return nil, errors.New("ingest: sensor directory is required")
	case deps.Table == nil:
		return nil, errors.New("ingest: functionality table is required")
	case deps.Writers.Instant == nil || deps.Writers.Interval == nil || deps.Writers.InstantLocation == nil:
		return nil, errors.New("ingest: all three value writers are required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &Pipeline{
		sensors:   deps.Sensors,
		registrar: deps.Registrar,
		table:     deps.Table,
		writers:   deps.Writers,
		mirror:    deps.Mirror,
		metrics:   deps.Metrics,
		logger:    logger.With("component", "ingest"),
		now:       time.Now,
		newID:     uuid.NewString,
	}, nil
}

// Start subscribes the pipeline to topic. Handler errors are already
// counted and logged here, so the MQTT client only sees nil.
func (p *Pipeline) Start(ctx context.Context, sub Subscriber, topic string, qos byte) error {
	err := sub.Subscribe(topic, qos, func(t string, payload []byte) error {
		p.Handle(ctx, t, payload) //nolint:errcheck // outcome is recorded by Handle
		return nil
	})
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	p.mu.Lock()
	p.topic = topic
	p.mu.Unlock()
	p.logger.Info("sensor value ingestion started", "topic", topic)
	return nil
}

// Stop unsubscribes from the topic passed to Start. It is safe to call
// concurrently and more than once; only the first call unsubscribes.
func (p *Pipeline) Stop(sub Subscriber) error {
	p.mu.Lock()
	topic := p.topic
	p.topic = ""
	p.mu.Unlock()

	if topic == "" {
		return nil
	}
	return sub.Unsubscribe(topic)
}

// Handle decodes and stores one message received on topic.
func (p *Pipeline) Handle(ctx context.Context, topic string, payload []byte) error {
	msg, err := decode(payload)
	if err != nil {
		p.record(outcomeDecodeError, topic, err)
		return err
	}

	if id, ok := mqtt.SensorIDFromTopic(topic); ok {
		switch {
		case msg.SensorID == "":
			msg.SensorID = id
		case msg.SensorID != id:
			err := fmt.Errorf("%w: sensor_id %q does not match topic %q", ErrInvalidMessage, msg.SensorID, topic)
			p.record(outcomeInvalid, topic, err)
			return err
		}
	}

	v, err := p.Ingest(ctx, msg)
	if err != nil {
		p.record(outcomeFor(err), topic, err)
		return err
	}

	p.metrics.ObserveIngest(outcomeOK)
	p.logger.Debug("stored sensor value",
		"sensor_id", v.SensorID(),
		"value_id", v.ID(),
		"variant", v.Kind(),
	)
	return nil
}

// Ingest stores msg and returns the stored value.
func (p *Pipeline) Ingest(ctx context.Context, msg Message) (value.Value, error) {
	if msg.SensorID == "" {
		return nil, fmt.Errorf("%w: sensor_id is required", ErrInvalidMessage)
	}

	sn, err := p.resolveSensor(ctx, msg)
	if err != nil {
		return nil, err
	}

	entry, err := p.table.Lookup(sn.FunctionalityID)
	if err != nil {
		return nil, err
	}

	v, err := p.build(msg, sn, entry)
	if err != nil {
		return nil, err
	}

	if err := p.save(ctx, v); err != nil {
		return nil, err
	}

	if p.mirror != nil {
		p.mirror.WriteSensorValue(sensorPoint(v, sn))
	}
	return v, nil
}

// resolveSensor finds the message's sensor, registering it when the message
// names both its device and functionality.
func (p *Pipeline) resolveSensor(ctx context.Context, msg Message) (*sensor.Sensor, error) {
	sn, err := p.sensors.Get(ctx, sensor.ID(msg.SensorID))
	if err == nil {
		return sn, nil
	}
	if !errors.Is(err, sensor.ErrSensorNotFound) {
		return nil, err
	}
	if p.registrar == nil || msg.DeviceID == "" || msg.Functionality == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSensor, msg.SensorID)
	}

	fn := sensor.FunctionalityID(msg.Functionality)
	if _, err := p.table.Lookup(fn); err != nil {
		return nil, err
	}

	devID := sensor.DeviceID(msg.DeviceID)
	if _, err := p.sensors.GetDevice(ctx, devID); err != nil {
		if !errors.Is(err, sensor.ErrDeviceNotFound) {
			return nil, err
		}
		if err := p.registrar.SaveDevice(ctx, &sensor.Device{ID: devID, Name: msg.DeviceID}); err != nil {
			return nil, fmt.Errorf("registering device %s: %w", devID, err)
		}
	}

	sn = &sensor.Sensor{ID: sensor.ID(msg.SensorID), DeviceID: devID, FunctionalityID: fn}
	if err := p.registrar.SaveSensor(ctx, sn); err != nil {
		return nil, fmt.Errorf("registering sensor %s: %w", sn.ID, err)
	}
	p.logger.Info("registered sensor from message", "sensor_id", sn.ID, "device_id", devID, "functionality", fn)
	return sn, nil
}

// build constructs the value variant the functionality is routed to.
func (p *Pipeline) build(msg Message, sn *sensor.Sensor, entry functionality.Entry) (value.Value, error) {
	unit := msg.Unit
	if unit == "" {
		unit = entry.Unit
	}
	reading, err := value.NewReading(string(msg.Measurement), unit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	id := msg.ID
	if id == "" {
		id = p.newID()
	}

	var v value.Value
	switch entry.Kind {
	case value.KindInstant:
		v, err = value.NewInstantValue(id, sn.ID, reading, p.instant(msg))
	case value.KindInterval:
		if msg.Start == nil || msg.End == nil {
			return nil, fmt.Errorf("%w: %s values need start and end", ErrInvalidMessage, entry.ID)
		}
		v, err = value.NewIntervalValue(id, sn.ID, reading, *msg.Start, *msg.End)
	case value.KindInstantLocation:
		if msg.Latitude == nil || msg.Longitude == nil {
			return nil, fmt.Errorf("%w: %s values need latitude and longitude", ErrInvalidMessage, entry.ID)
		}
		var loc geo.Coordinate
		loc, err = geo.NewCoordinate(*msg.Latitude, *msg.Longitude)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
		}
		v, err = value.NewInstantLocationValue(id, sn.ID, reading, p.instant(msg), loc)
	default:
		return nil, fmt.Errorf("%w: %s", value.ErrUnknownKind, entry.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	return v, nil
}

func (p *Pipeline) instant(msg Message) time.Time {
	if msg.Instant != nil {
		return *msg.Instant
	}
	return p.now()
}

func (p *Pipeline) save(ctx context.Context, v value.Value) error {
	var err error
	switch tv := v.(type) {
	case *value.InstantValue:
		err = p.writers.Instant.Save(ctx, tv)
	case *value.IntervalValue:
		err = p.writers.Interval.Save(ctx, tv)
	case *value.InstantLocationValue:
		err = p.writers.InstantLocation.Save(ctx, tv)
	}
	if err != nil {
		return &storeError{err: err}
	}
	return nil
}

func sensorPoint(v value.Value, sn *sensor.Sensor) influxdb.SensorPoint {
	pt := influxdb.SensorPoint{
		SensorID:      string(sn.ID),
		DeviceID:      string(sn.DeviceID),
		Functionality: string(sn.FunctionalityID),
		Variant:       v.Kind().String(),
		Measurement:   v.Reading().Measurement(),
		Unit:          v.Reading().Unit(),
		Time:          v.Timestamp(),
	}
	switch tv := v.(type) {
	case *value.IntervalValue:
		pt.Start = tv.Start()
	case *value.InstantLocationValue:
		pt.HasLocation = true
		pt.Latitude = tv.Location().Latitude
		pt.Longitude = tv.Location().Longitude
	}
	return pt
}

// storeError marks failures of the value stores.
type storeError struct{ err error }

func (e *storeError) Error() string { return "storing value: " + e.err.Error() }
func (e *storeError) Unwrap() error { return e.err }

func (p *Pipeline) record(outcome, topic string, err error) {
	p.metrics.ObserveIngest(outcome)
	p.logger.Warn("dropped sensor value message", "topic", topic, "outcome", outcome, "error", err)
}

func outcomeFor(err error) string {
	var se *storeError
	switch {
	case errors.As(err, &se):
		return outcomeStoreError
	case errors.Is(err, ErrUnknownSensor):
		return outcomeUnknownSensor
	case errors.Is(err, functionality.ErrUnknownFunctionality):
		return outcomeUnknownFunctionality
	case errors.Is(err, ErrInvalidMessage):
		return outcomeInvalid
	default:
		return outcomeStoreError
	}
}
