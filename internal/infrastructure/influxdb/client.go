package influxdb

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/config"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultPingTimeout    = 5 * time.Second

	defaultBatchSize     = 100
	defaultFlushInterval = 10 // seconds

	// DefaultMeasurement is used when influxdb.measurement is blank.
	DefaultMeasurement = "sensor_values"

	millisecondsPerSecond = 1000
)

// Client mirrors stored sensor values into one InfluxDB bucket.
//
// Every point lands in the configured measurement and carries the
// configured site tags next to its per-value tags. Writes are batched and
// never block the ingest path; failures surface through SetOnError and
// Stats.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Client struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI

	bucket      string
	measurement string
	siteTags    map[string]string

	connected bool
	mu        sync.RWMutex
	onError   func(err error)

	queued atomic.Uint64
	failed atomic.Uint64
}

// MirrorStats summarises the mirror since Connect.
type MirrorStats struct {
	Bucket      string
	Measurement string
	Queued      uint64 // points handed to the batch writer
	Failed      uint64 // batches rejected by the server
}

// Connect opens the sensor value mirror.
//
// It performs the following setup:
//  1. Resolves the measurement name and site tags from cfg
//  2. Pings the server
//  3. Confirms the target bucket exists
//  4. Starts the batched write API and its error drain
//
// Parameters:
//   - ctx: bounds the ping and bucket lookup (capped at 10s)
//   - cfg: influxdb section of config.yaml
//
// Returns:
//   - *Client: ready to accept sensor points
//   - error: ErrDisabled, ErrConnectionFailed or ErrBucketNotFound
func Connect(ctx context.Context, cfg config.InfluxDBConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	measurement, tags, err := mirrorShape(cfg)
	if err != nil {
		return nil, err
	}

	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, writeOptions(cfg))

	ctx, cancel := context.WithTimeout(ctx, defaultConnectTimeout)
	defer cancel()

	healthy, err := client.Ping(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	if _, err := client.BucketsAPI().FindBucketByName(ctx, cfg.Bucket); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %q: %w", ErrBucketNotFound, cfg.Bucket, err)
	}

	writeAPI := client.WriteAPI(cfg.Org, cfg.Bucket)
	c := &Client{
		client:      client,
		writeAPI:    writeAPI,
		bucket:      cfg.Bucket,
		measurement: measurement,
		siteTags:    tags,
		connected:   true,
	}
	go c.drainWriteErrors(writeAPI.Errors())

	return c, nil
}

// mirrorShape returns the measurement and static tags every point carries.
// Tag keys reserved for per-value tags are rejected.
func mirrorShape(cfg config.InfluxDBConfig) (string, map[string]string, error) {
	measurement := strings.TrimSpace(cfg.Measurement)
	if measurement == "" {
		measurement = DefaultMeasurement
	}

	tags := make(map[string]string, len(cfg.Tags))
	for k, v := range cfg.Tags {
		k = strings.TrimSpace(k)
		if k == "" || strings.TrimSpace(v) == "" {
			return "", nil, fmt.Errorf("%w: blank site tag %q=%q", ErrInvalidTag, k, v)
		}
		if _, reserved := pointTagKeys[k]; reserved {
			return "", nil, fmt.Errorf("%w: %q is set per sensor value", ErrInvalidTag, k)
		}
		tags[k] = v
	}
	return measurement, tags, nil
}

func writeOptions(cfg config.InfluxDBConfig) *influxdb2.Options {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	flushInterval := cfg.FlushInterval
	if flushInterval <= 0 {
		flushInterval = defaultFlushInterval
	}
	// #nosec G115 -- both values are positive here
	return influxdb2.DefaultOptions().
		SetBatchSize(uint(batchSize)).
		SetFlushInterval(uint(flushInterval) * millisecondsPerSecond)
}

func (c *Client) drainWriteErrors(errorsCh <-chan error) {
	for err := range errorsCh {
		c.failed.Add(1)

		c.mu.RLock()
		callback := c.onError
		c.mu.RUnlock()
		if callback != nil {
			callback(err)
		}
	}
}

// Close flushes pending points and closes the client.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}

	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()

	c.writeAPI.Flush()
	c.client.Close()
	return nil
}

// HealthCheck pings the server.
//
// Returns:
//   - error: ErrNotConnected after Close, or the ping failure
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	checkCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	healthy, err := c.client.Ping(checkCtx)
	if err != nil {
		return fmt.Errorf("influxdb mirror %s/%s: %w", c.bucket, c.measurement, err)
	}
	if !healthy {
		return fmt.Errorf("influxdb mirror %s/%s: server not healthy", c.bucket, c.measurement)
	}
	return nil
}

// IsConnected returns the last known connection state.
func (c *Client) IsConnected() bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// SetOnError sets the callback for batches the server rejected.
func (c *Client) SetOnError(callback func(err error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = callback
}

// Stats returns the mirror's counters.
func (c *Client) Stats() MirrorStats {
	if c == nil {
		return MirrorStats{}
	}
	return MirrorStats{
		Bucket:      c.bucket,
		Measurement: c.measurement,
		Queued:      c.queued.Load(),
		Failed:      c.failed.Load(),
	}
}

// Flush blocks until buffered points are sent. It is a no-op after Close.
func (c *Client) Flush() {
	if !c.IsConnected() || c.writeAPI == nil {
		return
	}
	c.writeAPI.Flush()
}
