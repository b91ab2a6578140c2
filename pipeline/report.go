package pipeline

import (
	"slices"

	"github.com/rcrowley/go-metrics"

	"github.com/revelaction/squadprep/stat"
)

// Metric names, relative to the registry of a split.
const (
	MetricUnparsed   = "unparsed_questions"
	MetricOutOfRange = "span_out_of_range"
	MetricExact      = "exact_spans"
	MetricAnswers    = "answers"

	// MetricF1 is a histogram of alignment F1 in thousandths.
	MetricF1 = "span_f1"
)

type diagnostics struct {
	unparsed   metrics.Counter
	outOfRange metrics.Counter
	exact      metrics.Counter
	answers    metrics.Counter
	f1         metrics.Histogram

	// per call; the registry may be shared and accumulate
	numUnparsed   int64
	numOutOfRange int64
	numExact      int64
	numAnswers    int64
	f1Sum         float64
	f1s           []float64
}

func newDiagnostics(r metrics.Registry) *diagnostics {
	return &diagnostics{
		unparsed:   metrics.GetOrRegisterCounter(MetricUnparsed, r),
		outOfRange: metrics.GetOrRegisterCounter(MetricOutOfRange, r),
		exact:      metrics.GetOrRegisterCounter(MetricExact, r),
		answers:    metrics.GetOrRegisterCounter(MetricAnswers, r),
		f1:         metrics.GetOrRegisterHistogram(MetricF1, r, metrics.NewUniformSample(1028)),
	}
}

func (d *diagnostics) unparsedQuestion() {
	d.unparsed.Inc(1)
	d.numUnparsed++
}

func (d *diagnostics) spanOutOfRange() {
	d.outOfRange.Inc(1)
	d.numOutOfRange++
}

func (d *diagnostics) answer(f1 float64, exact bool) {
	d.answers.Inc(1)
	d.numAnswers++
	if exact {
		d.exact.Inc(1)
		d.numExact++
	}
	d.f1.Update(int64(f1 * 1000))
	d.f1Sum += f1
	d.f1s = append(d.f1s, f1)
}

// Report summarizes one extracted split.
type Report struct {
	Split string `json:"split"`

	Questions  int   `json:"questions"`
	Answers    int64 `json:"answers"`
	Unparsed   int64 `json:"unparsed_questions"`
	OutOfRange int64 `json:"invalid_stop_idx"`
	Exact      int64 `json:"exact_spans"`

	AverageF1 float64 `json:"average_f1"`

	// median alignment F1
	MedianF1 float64 `json:"median_f1"`

	Bounds stat.Bounds `json:"bounds"`
	Stats  stat.Stats  `json:"stats"`
}

func (d *diagnostics) report(split string, h *stat.Handler) Report {
	r := Report{
		Split:      split,
		Questions:  h.Get().NumQuestions,
		Answers:    d.numAnswers,
		Unparsed:   d.numUnparsed,
		OutOfRange: d.numOutOfRange,
		Exact:      d.numExact,
		Bounds:     h.Bounds(),
		Stats:      h.Get(),
	}
	if r.Answers > 0 {
		r.AverageF1 = d.f1Sum / float64(r.Answers)
		r.MedianF1 = median(d.f1s)
	}
	return r
}

func median(xs []float64) float64 {
	s := slices.Clone(xs)
	slices.Sort(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}
