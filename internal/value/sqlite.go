package value

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/smarthome-core/internal/geo"
	"github.com/nerrad567/smarthome-core/internal/sensor"
)

// timeLayout is fixed width so that lexical order in SQLite is time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		// Rows written by hand or by older tooling.
		if t2, err2 := time.Parse(time.RFC3339Nano, s); err2 == nil {
			return t2.UTC(), nil
		}
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// sqliteTable holds the per-variant SQL and row mapping shared by the three
// SQLite stores.
type sqliteTable[V Value] struct {
	db *sql.DB

	selectFrom   string // SELECT ... FROM table
	timeOrder    string // column(s) to order by
	betweenWhere string // filter taking (start, end) as formatted strings
	betweenArgs  func(start, end string) []any
	upsert       string
	upsertArgs   func(V) []any
	scan         func(rowScanner) (V, error)
}

func (t *sqliteTable[V]) findBySensor(ctx context.Context, sensorID sensor.ID) ([]V, error) {
	query := t.selectFrom + ` WHERE sensor_id = ? ORDER BY ` + t.timeOrder + `, id`
	return t.query(ctx, query, string(sensorID))
}

func (t *sqliteTable[V]) findBySensorBetween(ctx context.Context, sensorID sensor.ID, start, end time.Time) ([]V, error) {
	if start.After(end) {
		return []V{}, nil
	}
	query := t.selectFrom + ` WHERE sensor_id = ? AND ` + t.betweenWhere + ` ORDER BY ` + t.timeOrder + `, id`
	args := append([]any{string(sensorID)}, t.betweenArgs(formatTime(start), formatTime(end))...)
	return t.query(ctx, query, args...)
}

func (t *sqliteTable[V]) findMostRecent(ctx context.Context, sensorID sensor.ID) (V, error) {
	var zero V
	query := t.selectFrom + ` WHERE sensor_id = ? ORDER BY ` + t.timeOrder + ` DESC, id DESC LIMIT 1`
	v, err := t.scan(t.db.QueryRowContext(ctx, query, string(sensorID)))
	if errors.Is(err, sql.ErrNoRows) {
		return zero, nil
	}
	if err != nil {
		return zero, fmt.Errorf("querying most recent value for sensor %s: %w", sensorID, err)
	}
	return v, nil
}

func (t *sqliteTable[V]) save(ctx context.Context, v V) error {
	if _, err := t.db.ExecContext(ctx, t.upsert, t.upsertArgs(v)...); err != nil {
		return fmt.Errorf("saving value %s: %w", v.ID(), err)
	}
	return nil
}

func (t *sqliteTable[V]) query(ctx context.Context, query string, args ...any) ([]V, error) {
	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying values: %w", err)
	}
	defer rows.Close()

	values := []V{}
	for rows.Next() {
		v, err := t.scan(rows)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating values: %w", err)
	}
	return values, nil
}

func instantBetween(start, end string) []any { return []any{start, end} }

// SQLiteInstantStore implements InstantStore and Writer[*InstantValue].
type SQLiteInstantStore struct {
	t sqliteTable[*InstantValue]
}

// NewSQLiteInstantStore creates a SQLite-backed instant value store.
func NewSQLiteInstantStore(db *sql.DB) *SQLiteInstantStore {
	return &SQLiteInstantStore{t: sqliteTable[*InstantValue]{
		db:           db,
		selectFrom:   `SELECT id, sensor_id, measurement, unit, instant FROM instant_values`,
		timeOrder:    `instant`,
		betweenWhere: `instant >= ? AND instant <= ?`,
		betweenArgs:  instantBetween,
		upsert: `INSERT INTO instant_values (id, sensor_id, measurement, unit, instant)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				sensor_id = excluded.sensor_id,
				measurement = excluded.measurement,
				unit = excluded.unit,
				instant = excluded.instant`,
		upsertArgs: func(v *InstantValue) []any {
			return []any{v.ID(), string(v.SensorID()), v.Reading().Measurement(), v.Reading().Unit(), formatTime(v.Timestamp())}
		},
		scan: scanInstant,
	}}
}

func (s *SQLiteInstantStore) FindBySensor(ctx context.Context, sensorID sensor.ID) ([]*InstantValue, error) {
	return s.t.findBySensor(ctx, sensorID)
}

func (s *SQLiteInstantStore) FindBySensorBetween(ctx context.Context, sensorID sensor.ID, start, end time.Time) ([]*InstantValue, error) {
	return s.t.findBySensorBetween(ctx, sensorID, start, end)
}

func (s *SQLiteInstantStore) FindMostRecent(ctx context.Context, sensorID sensor.ID) (*InstantValue, error) {
	return s.t.findMostRecent(ctx, sensorID)
}

// Save inserts v or overwrites the value with the same ID.
func (s *SQLiteInstantStore) Save(ctx context.Context, v *InstantValue) error {
	return s.t.save(ctx, v)
}

func scanInstant(row rowScanner) (*InstantValue, error) {
	var id, sensorID, measurement, unit, at string
	if err := row.Scan(&id, &sensorID, &measurement, &unit, &at); err != nil {
		return nil, err
	}
	r, err := NewReading(measurement, unit)
	if err != nil {
		return nil, fmt.Errorf("value %s: %w", id, err)
	}
	ts, err := parseTime(at)
	if err != nil {
		return nil, fmt.Errorf("value %s: %w", id, err)
	}
	return NewInstantValue(id, sensor.ID(sensorID), r, ts)
}

// SQLiteIntervalStore implements IntervalStore and Writer[*IntervalValue].
type SQLiteIntervalStore struct {
	t sqliteTable[*IntervalValue]
}

// NewSQLiteIntervalStore creates a SQLite-backed interval value store.
func NewSQLiteIntervalStore(db *sql.DB) *SQLiteIntervalStore {
	return &SQLiteIntervalStore{t: sqliteTable[*IntervalValue]{
		db:           db,
		selectFrom:   `SELECT id, sensor_id, measurement, unit, start_time, end_time FROM interval_values`,
		timeOrder:    `end_time`,
		betweenWhere: `start_time >= ? AND end_time <= ?`,
		betweenArgs: func(start, end string) []any {
			// containment: the whole interval lies inside the window
			return []any{start, end}
		},
		upsert: `INSERT INTO interval_values (id, sensor_id, measurement, unit, start_time, end_time)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				sensor_id = excluded.sensor_id,
				measurement = excluded.measurement,
				unit = excluded.unit,
				start_time = excluded.start_time,
				end_time = excluded.end_time`,
		upsertArgs: func(v *IntervalValue) []any {
			return []any{v.ID(), string(v.SensorID()), v.Reading().Measurement(), v.Reading().Unit(),
				formatTime(v.Start()), formatTime(v.End())}
		},
		scan: scanInterval,
	}}
}

func (s *SQLiteIntervalStore) FindBySensor(ctx context.Context, sensorID sensor.ID) ([]*IntervalValue, error) {
	return s.t.findBySensor(ctx, sensorID)
}

func (s *SQLiteIntervalStore) FindBySensorBetween(ctx context.Context, sensorID sensor.ID, start, end time.Time) ([]*IntervalValue, error) {
	return s.t.findBySensorBetween(ctx, sensorID, start, end)
}

func (s *SQLiteIntervalStore) FindMostRecent(ctx context.Context, sensorID sensor.ID) (*IntervalValue, error) {
	return s.t.findMostRecent(ctx, sensorID)
}

// Save inserts v or overwrites the value with the same ID.
func (s *SQLiteIntervalStore) Save(ctx context.Context, v *IntervalValue) error {
	return s.t.save(ctx, v)
}

func scanInterval(row rowScanner) (*IntervalValue, error) {
	var id, sensorID, measurement, unit, start, end string
	if err := row.Scan(&id, &sensorID, &measurement, &unit, &start, &end); err != nil {
		return nil, err
	}
	r, err := NewReading(measurement, unit)
	if err != nil {
		return nil, fmt.Errorf("value %s: %w", id, err)
	}
	startTS, err := parseTime(start)
	if err != nil {
		return nil, fmt.Errorf("value %s: %w", id, err)
	}
	endTS, err := parseTime(end)
	if err != nil {
		return nil, fmt.Errorf("value %s: %w", id, err)
	}
	return NewIntervalValue(id, sensor.ID(sensorID), r, startTS, endTS)
}

// SQLiteInstantLocationStore implements InstantLocationStore and
// Writer[*InstantLocationValue].
type SQLiteInstantLocationStore struct {
	t sqliteTable[*InstantLocationValue]
}

// NewSQLiteInstantLocationStore creates a SQLite-backed store for located values.
func NewSQLiteInstantLocationStore(db *sql.DB) *SQLiteInstantLocationStore {
	return &SQLiteInstantLocationStore{t: sqliteTable[*InstantLocationValue]{
		db:           db,
		selectFrom:   `SELECT id, sensor_id, measurement, unit, instant, latitude, longitude FROM instant_location_values`,
		timeOrder:    `instant`,
		betweenWhere: `instant >= ? AND instant <= ?`,
		betweenArgs:  instantBetween,
		upsert: `INSERT INTO instant_location_values (id, sensor_id, measurement, unit, instant, latitude, longitude)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				sensor_id = excluded.sensor_id,
				measurement = excluded.measurement,
				unit = excluded.unit,
				instant = excluded.instant,
				latitude = excluded.latitude,
				longitude = excluded.longitude`,
		upsertArgs: func(v *InstantLocationValue) []any {
			loc := v.Location()
			return []any{v.ID(), string(v.SensorID()), v.Reading().Measurement(), v.Reading().Unit(),
				formatTime(v.Timestamp()), loc.Latitude, loc.Longitude}
		},
		scan: scanInstantLocation,
	}}
}

func (s *SQLiteInstantLocationStore) FindBySensor(ctx context.Context, sensorID sensor.ID) ([]*InstantLocationValue, error) {
	return s.t.findBySensor(ctx, sensorID)
}

func (s *SQLiteInstantLocationStore) FindBySensorBetween(ctx context.Context, sensorID sensor.ID, start, end time.Time) ([]*InstantLocationValue, error) {
	return s.t.findBySensorBetween(ctx, sensorID, start, end)
}

func (s *SQLiteInstantLocationStore) FindMostRecent(ctx context.Context, sensorID sensor.ID) (*InstantLocationValue, error) {
	return s.t.findMostRecent(ctx, sensorID)
}

// Save inserts v or overwrites the value with the same ID.
func (s *SQLiteInstantLocationStore) Save(ctx context.Context, v *InstantLocationValue) error {
	return s.t.save(ctx, v)
}

func scanInstantLocation(row rowScanner) (*InstantLocationValue, error) {
	var id, sensorID, measurement, unit, at string
	var lat, lon float64
	if err := row.Scan(&id, &sensorID, &measurement, &unit, &at, &lat, &lon); err != nil {
		return nil, err
	}
	r, err := NewReading(measurement, unit)
	if err != nil {
		return nil, fmt.Errorf("value %s: %w", id, err)
	}
	ts, err := parseTime(at)
	if err != nil {
		return nil, fmt.Errorf("value %s: %w", id, err)
	}
	return NewInstantLocationValue(id, sensor.ID(sensorID), r, ts, geo.Coordinate{Latitude: lat, Longitude: lon})
}
