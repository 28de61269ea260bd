package report

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// StatusLine renders the status of one vehicle the way the run summary
// lists it. lightWait is the time spent waiting for the light only; the
// breakdown penalty is not part of it.
func StatusLine(id int, from, to string, lightWait time.Duration, congested, brokenDown bool) string {
	line := fmt.Sprintf("Car %d came from %s and proceeded to %s after the intersection. Waited at the traffic light for %d seconds",
		id, from, to, int(lightWait.Seconds()))
	if congested {
		line += " - This car encountered traffic"
	}
	if brokenDown {
		line += " - This car broke down"
	}
	return line
}

// WriteText writes the human-readable report: the status of every vehicle
// in arrival order, the performance figures, then aggregate statistics.
func WriteText(w io.Writer, r *Report) error {
	var b strings.Builder

	b.WriteString("\nCars Status:\n")
	for _, v := range r.Vehicles {
		b.WriteString(StatusLine(v.ID, v.Arrival.String(), v.Departure.String(), v.LightWait, v.Congested, v.BrokenDown))
		if !v.Passed {
			b.WriteString(" - This car never got through")
		}
		b.WriteByte('\n')
	}

	b.WriteString("\nPerformance Report:\n")
	fmt.Fprintf(&b, "Execution Time: %.2f seconds\n", r.Duration.Seconds())
	fmt.Fprintf(&b, "CPU Usage: %.1f%%\n", r.CPUPercent)
	fmt.Fprintf(&b, "Memory Usage: %.1f MB\n", r.MemoryMB)

	s := r.Stats
	b.WriteString("\nStatistics:\n")
	fmt.Fprintf(&b, "Run: %s (seed %d, %d rotations)\n", r.RunID, r.Seed, r.Rotations)
	fmt.Fprintf(&b, "Vehicles: %d passed of %d, %d in heavy traffic, %d broke down\n",
		s.Passed, s.Vehicles, s.Congested, s.BrokenDown)
	fmt.Fprintf(&b, "Light wait: mean %.2fs, median %.2fs, stddev %.2fs, max %.2fs\n",
		s.MeanWait, s.MedianWait, s.StdDevWait, s.MaxWait)
	for _, m := range r.Movements {
		fmt.Fprintf(&b, "Movement %s -> %s (%s): %d\n", m.From, m.To, m.Turn, m.Count)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
