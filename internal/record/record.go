// Package record persists sampling sessions as CSV run files. Each run
// gets its own file under the runs directory plus a row in runs.csv, the
// index the history browser lists from.
package record

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	indexName   = "runs.csv"
	stampLayout = "2006-01-02_15-04-05"
	timeLayout  = "2006-01-02T15:04:05"
)

// Meta describes a run for the index.
type Meta struct {
	ID        string
	Started   time.Time
	Sensor    string
	Target    float64
	Direction string
	File      string
}

// Sample is one row of a run file.
type Sample struct {
	Elapsed     time.Duration
	Temperature float64
}

// Store creates and lists run files in a single directory.
type Store struct {
	dir string
}

// Run is an open run file. Record appends to it until Close.
type Run struct {
	Meta
	f      *os.File
	writer *csv.Writer
	closed bool
}

// NewStore opens (creating if needed) the runs directory.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot find home dir: %w", err)
		}
		dir = filepath.Join(home, ".thermalarm", "runs")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create runs dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the runs directory path.
func (s *Store) Dir() string { return s.dir }

// CreateRun starts a new run file and registers it in the index.
func (s *Store) CreateRun(sensor string, target float64, direction string, started time.Time) (*Run, error) {
	id := uuid.NewString()
	name := fmt.Sprintf("%s_%s.csv", started.Format(stampLayout), id[:8])
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("create run file: %w", err)
	}

	w := csv.NewWriter(f)
	w.Write([]string{"elapsed_s", "temperature"})
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}

	meta := Meta{ID: id, Started: started, Sensor: sensor, Target: target, Direction: direction, File: name}
	if err := s.appendIndex(meta); err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	return &Run{Meta: meta, f: f, writer: w}, nil
}

func (s *Store) appendIndex(m Meta) error {
	path := filepath.Join(s.dir, indexName)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open run index: %w", err)
	}
	defer f.Close()

	info, _ := f.Stat()
	w := csv.NewWriter(f)
	if info.Size() == 0 {
		w.Write([]string{"id", "started", "sensor", "target", "direction", "file"})
	}
	w.Write([]string{
		m.ID,
		m.Started.Format(timeLayout),
		m.Sensor,
		fmt.Sprintf("%.1f", m.Target),
		m.Direction,
		m.File,
	})
	w.Flush()
	return w.Error()
}

// Record appends one sample. Writes after Close are dropped.
func (r *Run) Record(elapsed time.Duration, temperature float64) error {
	if r.closed {
		return nil
	}
	r.writer.Write([]string{
		fmt.Sprintf("%.1f", elapsed.Seconds()),
		fmt.Sprintf("%.2f", temperature),
	})
	r.writer.Flush()
	return r.writer.Error()
}

// Close flushes and closes the run file. Idempotent.
func (r *Run) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.writer.Flush()
	werr := r.writer.Error()
	cerr := r.f.Close()
	if werr != nil {
		return werr
	}
	return cerr
}

// ListRuns returns the indexed runs, newest first.
func (s *Store) ListRuns() ([]Meta, error) {
	f, err := os.Open(filepath.Join(s.dir, indexName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}

	var runs []Meta
	for i, row := range records {
		if i == 0 && len(row) > 0 && row[0] == "id" {
			continue
		}
		if len(row) < 6 {
			continue
		}
		started, err := time.ParseInLocation(timeLayout, row[1], time.Local)
		if err != nil {
			continue
		}
		target, _ := strconv.ParseFloat(row[3], 64)
		runs = append(runs, Meta{
			ID:        row[0],
			Started:   started,
			Sensor:    row[2],
			Target:    target,
			Direction: row[4],
			File:      row[5],
		})
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Started.After(runs[j].Started) })
	return runs, nil
}

// LoadRun reads every sample of a run file.
func (s *Store) LoadRun(file string) ([]Sample, error) {
	if strings.Contains(file, string(os.PathSeparator)) || strings.Contains(file, "..") {
		return nil, fmt.Errorf("invalid run file name %q", file)
	}

	f, err := os.Open(filepath.Join(s.dir, file))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}

	var samples []Sample
	for i, row := range records {
		if i == 0 && len(row) > 0 && row[0] == "elapsed_s" {
			continue
		}
		if len(row) < 2 {
			continue
		}
		secs, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			continue
		}
		temp, _ := strconv.ParseFloat(row[1], 64)
		samples = append(samples, Sample{
			Elapsed:     time.Duration(secs * float64(time.Second)),
			Temperature: temp,
		})
	}
	return samples, nil
}
