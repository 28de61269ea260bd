package report

import (
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/flemzord/junction/internal/intersection"
)

// Stats aggregates the light waits of a run, in seconds.
type Stats struct {
	Vehicles   int `json:"vehicles"`
	Passed     int `json:"passed"`
	Congested  int `json:"congested"`
	BrokenDown int `json:"broken_down"`

	MeanWait   float64 `json:"mean_wait"`
	StdDevWait float64 `json:"stddev_wait"`
	MedianWait float64 `json:"median_wait"`
	MaxWait    float64 `json:"max_wait"`

	PerDirection map[intersection.Direction]DirectionStats `json:"per_direction"`
}

// DirectionStats aggregates the vehicles that arrived on one approach.
type DirectionStats struct {
	Vehicles  int     `json:"vehicles"`
	Congested int     `json:"congested"`
	MeanWait  float64 `json:"mean_wait"`
}

// ComputeStats summarizes records. Only vehicles that passed contribute to
// the wait figures.
func ComputeStats(records []intersection.Record) Stats {
	s := Stats{
		Vehicles:     len(records),
		PerDirection: make(map[intersection.Direction]DirectionStats, len(intersection.Directions())),
	}

	waits := make([]float64, 0, len(records))
	byDir := make(map[intersection.Direction][]float64)
	for _, r := range records {
		if r.Congested {
			s.Congested++
		}
		if r.BrokenDown {
			s.BrokenDown++
		}

		ds := s.PerDirection[r.Arrival]
		ds.Vehicles++
		if r.Congested {
			ds.Congested++
		}
		s.PerDirection[r.Arrival] = ds

		if !r.Passed {
			continue
		}
		s.Passed++
		w := r.LightWait.Seconds()
		waits = append(waits, w)
		byDir[r.Arrival] = append(byDir[r.Arrival], w)
	}

	for d, ws := range byDir {
		ds := s.PerDirection[d]
		ds.MeanWait = stat.Mean(ws, nil)
		s.PerDirection[d] = ds
	}

	if len(waits) == 0 {
		return s
	}

	slices.Sort(waits)
	s.MeanWait = stat.Mean(waits, nil)
	if len(waits) > 1 {
		s.StdDevWait = stat.StdDev(waits, nil)
	}
	s.MedianWait = stat.Quantile(0.5, stat.Empirical, waits, nil)
	s.MaxWait = waits[len(waits)-1]
	return s
}
