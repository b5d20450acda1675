package sensor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Directory answers the sensor lookups needed by reconciliation.
//
// Lookups that match nothing return an empty slice and no error; callers
// decide whether an empty result is a failure.
type Directory interface {
	FindByDevice(ctx context.Context, deviceID DeviceID) ([]Sensor, error)
	FindByDeviceAndFunctionality(ctx context.Context, deviceID DeviceID, functionalityID FunctionalityID) ([]Sensor, error)
	FindByFunctionality(ctx context.Context, functionalityID FunctionalityID) ([]Sensor, error)
	Get(ctx context.Context, id ID) (*Sensor, error)
	GetDevice(ctx context.Context, id DeviceID) (*Device, error)

	// ResolveDevice finds a device by ID, falling back to an exact name match.
	ResolveDevice(ctx context.Context, ref string) (*Device, error)
}

// Registrar records devices and sensors. Ingestion uses it to register
// sensors that announce themselves.
type Registrar interface {
	SaveDevice(ctx context.Context, d *Device) error
	SaveSensor(ctx context.Context, s *Sensor) error
}

// SQLiteDirectory implements Directory and Registrar using SQLite.
type SQLiteDirectory struct {
	db *sql.DB
}

// NewSQLiteDirectory creates a SQLite-backed sensor directory.
func NewSQLiteDirectory(db *sql.DB) *SQLiteDirectory {
	return &SQLiteDirectory{db: db}
}

const sensorColumns = `id, device_id, functionality_id, name`

// FindByDevice returns every sensor on a device, ordered by ID.
func (d *SQLiteDirectory) FindByDevice(ctx context.Context, deviceID DeviceID) ([]Sensor, error) {
	const query = `SELECT ` + sensorColumns + ` FROM sensors WHERE device_id = ? ORDER BY id`
	return d.querySensors(ctx, query, string(deviceID))
}

// FindByDeviceAndFunctionality returns the device's sensors for one functionality.
func (d *SQLiteDirectory) FindByDeviceAndFunctionality(ctx context.Context, deviceID DeviceID, functionalityID FunctionalityID) ([]Sensor, error) {
	const query = `SELECT ` + sensorColumns + ` FROM sensors
		WHERE device_id = ? AND functionality_id = ? ORDER BY id`
	return d.querySensors(ctx, query, string(deviceID), string(functionalityID))
}

// FindByFunctionality returns every sensor reporting a functionality, across devices.
func (d *SQLiteDirectory) FindByFunctionality(ctx context.Context, functionalityID FunctionalityID) ([]Sensor, error) {
	const query = `SELECT ` + sensorColumns + ` FROM sensors
		WHERE functionality_id = ? ORDER BY device_id, id`
	return d.querySensors(ctx, query, string(functionalityID))
}

// Get returns a sensor by ID or ErrSensorNotFound.
func (d *SQLiteDirectory) Get(ctx context.Context, id ID) (*Sensor, error) {
	const query = `SELECT ` + sensorColumns + ` FROM sensors WHERE id = ?`
	var s Sensor
	err := d.db.QueryRowContext(ctx, query, string(id)).Scan(&s.ID, &s.DeviceID, &s.FunctionalityID, &s.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSensorNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying sensor %s: %w", id, err)
	}
	return &s, nil
}

// GetDevice returns a device by ID or ErrDeviceNotFound.
func (d *SQLiteDirectory) GetDevice(ctx context.Context, id DeviceID) (*Device, error) {
	const query = `SELECT id, COALESCE(house_id, ''), name FROM devices WHERE id = ?`
	return d.scanDevice(d.db.QueryRowContext(ctx, query, string(id)), string(id))
}

// ResolveDevice looks a device up by ID first, then by name.
func (d *SQLiteDirectory) ResolveDevice(ctx context.Context, ref string) (*Device, error) {
	const query = `SELECT id, COALESCE(house_id, ''), name FROM devices
		WHERE id = ? OR name = ?
		ORDER BY CASE WHEN id = ? THEN 0 ELSE 1 END, id
		LIMIT 1`
	return d.scanDevice(d.db.QueryRowContext(ctx, query, ref, ref, ref), ref)
}

// SaveDevice inserts or updates a device.
func (d *SQLiteDirectory) SaveDevice(ctx context.Context, dev *Device) error {
	if err := dev.Validate(); err != nil {
		return err
	}
	const query = `INSERT INTO devices (id, house_id, name) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET house_id = excluded.house_id, name = excluded.name`
	if _, err := d.db.ExecContext(ctx, query, string(dev.ID), nullString(dev.HouseID), dev.Name); err != nil {
		return fmt.Errorf("saving device %s: %w", dev.ID, err)
	}
	return nil
}

// SaveSensor inserts or updates a sensor. The device must already exist.
func (d *SQLiteDirectory) SaveSensor(ctx context.Context, s *Sensor) error {
	if err := s.Validate(); err != nil {
		return err
	}
	const query = `INSERT INTO sensors (id, device_id, functionality_id, name) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			device_id = excluded.device_id,
			functionality_id = excluded.functionality_id,
			name = excluded.name`
	if _, err := d.db.ExecContext(ctx, query,
		string(s.ID), string(s.DeviceID), string(s.FunctionalityID), s.Name); err != nil {
		return fmt.Errorf("saving sensor %s: %w", s.ID, err)
	}
	return nil
}

func (d *SQLiteDirectory) scanDevice(row *sql.Row, ref string) (*Device, error) {
	var dev Device
	err := row.Scan(&dev.ID, &dev.HouseID, &dev.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("querying device %s: %w", ref, err)
	}
	return &dev, nil
}

func (d *SQLiteDirectory) querySensors(ctx context.Context, query string, args ...any) ([]Sensor, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sensors: %w", err)
	}
	defer rows.Close()

	sensors := []Sensor{}
	for rows.Next() {
		var s Sensor
		if err := rows.Scan(&s.ID, &s.DeviceID, &s.FunctionalityID, &s.Name); err != nil {
			return nil, fmt.Errorf("scanning sensor: %w", err)
		}
		sensors = append(sensors, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sensors: %w", err)
	}
	return sensors, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
