package sensor

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shirou/gopsutil/v3/host"
)

// sensorPriority orders hwmon key prefixes from most to least useful as
// a single representative reading.
var sensorPriority = []string{
	"coretemp",
	"k10temp",
	"zenpower",
	"cpu_thermal",
	"acpitz",
	"nvme",
	"drivetemp",
}

// Hwmon reads one host thermal sensor through gopsutil. The sensor is
// chosen once at connect time and stays fixed for the session.
type Hwmon struct {
	mu        sync.Mutex
	key       string
	connected bool
}

// NewHwmon selects a sensor and returns a connected driver. With an
// empty key the best-known sensor is picked by prefix priority; with a
// key only an exact SensorKey match is accepted.
func NewHwmon(key string) (*Hwmon, error) {
	stats, err := host.SensorsTemperatures()
	if err != nil && len(stats) == 0 {
		return nil, fmt.Errorf("enumerate sensors: %w", err)
	}

	selected, err := selectSensor(stats, key)
	if err != nil {
		return nil, err
	}
	return &Hwmon{key: selected, connected: true}, nil
}

func selectSensor(stats []host.TemperatureStat, key string) (string, error) {
	if key != "" {
		for _, s := range stats {
			if s.SensorKey == key {
				return key, nil
			}
		}
		return "", fmt.Errorf("sensor %q: %w", key, ErrNoSensors)
	}

	for _, prefix := range sensorPriority {
		for _, s := range stats {
			if strings.HasPrefix(strings.ToLower(s.SensorKey), prefix) {
				return s.SensorKey, nil
			}
		}
	}
	if len(stats) > 0 {
		return stats[0].SensorKey, nil
	}
	return "", ErrNoSensors
}

// Key returns the selected hwmon sensor key.
func (h *Hwmon) Key() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.key
}

// Read returns the selected sensor's current temperature.
func (h *Hwmon) Read(ctx context.Context) (float64, error) {
	h.mu.Lock()
	key := h.key
	connected := h.connected
	h.mu.Unlock()

	if !connected {
		return 0, ErrNotConnected
	}

	stats, err := host.SensorsTemperaturesWithContext(ctx)
	if err != nil && len(stats) == 0 {
		return 0, fmt.Errorf("read sensors: %w", err)
	}
	for _, s := range stats {
		if s.SensorKey == key {
			return s.Temperature, nil
		}
	}
	return 0, fmt.Errorf("sensor %q disappeared: %w", key, ErrNoSensors)
}

// Connected reports whether Disconnect has been called.
func (h *Hwmon) Connected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.connected
}

// Disconnect marks the driver unusable. Idempotent.
func (h *Hwmon) Disconnect() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connected = false
	return nil
}
