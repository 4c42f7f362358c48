package controller

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/montanaflynn/stats"
)

// Sample is one telemetry observation paired with the angle that was
// commanded at the time.
type Sample struct {
	Seq       int
	Time      time.Time
	Commanded float64
	Feedback  float64
	Error     float64
}

// Stats summarizes the recorded tracking error.
type Stats struct {
	AvgError float64
	MaxError float64
	StdError float64
	Count    int
}

// Recorder keeps a bounded ring of samples and cached error
// statistics.
type Recorder struct {
	mu      sync.Mutex
	max     int
	samples []Sample
	seq     int
	cached  Stats
	dirty   bool
}

func NewRecorder(max int) *Recorder {
	if max <= 0 {
		max = DefaultRecorderSize
	}
	return &Recorder{max: max}
}

// Add appends a sample, evicting the oldest when full.
func (r *Recorder) Add(commanded, feedback float64, ts time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	s := Sample{
		Seq:       r.seq,
		Time:      ts,
		Commanded: commanded,
		Feedback:  feedback,
		Error:     commanded - feedback,
	}
	if len(r.samples) == r.max {
		copy(r.samples, r.samples[1:])
		r.samples[len(r.samples)-1] = s
	} else {
		r.samples = append(r.samples, s)
	}
	r.dirty = true
}

// Stats returns error statistics, recalculating only when samples
// changed since the last call.
func (r *Recorder) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.dirty {
		return r.cached
	}

	errs := make(stats.Float64Data, len(r.samples))
	absErrs := make(stats.Float64Data, len(r.samples))
	for i, s := range r.samples {
		errs[i] = s.Error
		absErrs[i] = math.Abs(s.Error)
	}

	avg, _ := stats.Mean(errs)
	max, _ := stats.Max(absErrs)
	std, _ := stats.StandardDeviation(errs)

	r.cached = Stats{
		AvgError: avg,
		MaxError: max,
		StdError: std,
		Count:    len(r.samples),
	}
	r.dirty = false
	return r.cached
}

// Samples returns a copy of the recorded samples, oldest first.
func (r *Recorder) Samples() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sample, len(r.samples))
	copy(out, r.samples)
	return out
}

// Clear drops all samples and statistics.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = r.samples[:0]
	r.seq = 0
	r.cached = Stats{}
	r.dirty = false
}

// ExportCSV writes all samples in the layout the original desktop
// client produced.
func (r *Recorder) ExportCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Sample", "Timestamp", "Commanded_Angle", "Feedback_Angle", "Error"}); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, s := range r.Samples() {
		row := []string{
			fmt.Sprintf("%d", s.Seq),
			s.Time.Format(time.RFC3339Nano),
			fmt.Sprintf("%g", s.Commanded),
			fmt.Sprintf("%g", s.Feedback),
			fmt.Sprintf("%g", s.Error),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
