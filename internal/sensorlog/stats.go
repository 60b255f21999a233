package sensorlog

import "math"

// Summary describes the non-missing samples of a series.
type Summary struct {
	Count int
	Min   float64
	Max   float64
	Mean  float64
}

// Summarize computes a Summary over samples, ignoring NaN.
// With no valid samples, Count is zero and Min, Max and Mean are NaN.
func Summarize(samples []float64) Summary {
	s := Summary{Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64

	for _, v := range samples {
		if math.IsNaN(v) {
			continue
		}
		s.Count++
		sum += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}

	if s.Count == 0 {
		nan := math.NaN()
		return Summary{Min: nan, Max: nan, Mean: nan}
	}
	s.Mean = sum / float64(s.Count)
	return s
}

// Summary summarises the series samples.
func (s TimeSeries) Summary() Summary {
	return Summarize(s.Samples)
}
