package csv

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/flemzord/junction/internal/report"
)

// Header is the column layout of a vehicle row.
var Header = []string{
	"run_id", "seq", "vehicle_id", "arrival", "departure",
	"waited_seconds", "light_wait_ms", "penalty_ms",
	"broken_down", "congested", "passed",
}

// Encode writes one row per vehicle of r to w, preceded by Header when
// header is set.
func Encode(w io.Writer, r *report.Report, header bool) error {
	cw := csv.NewWriter(w)

	if header {
		if err := cw.Write(Header); err != nil {
			return err
		}
	}

	rows := make([][]string, 0, len(r.Vehicles))
	for _, v := range r.Vehicles {
		rows = append(rows, []string{
			r.RunID,
			strconv.Itoa(v.Seq),
			strconv.Itoa(v.ID),
			v.Arrival.String(),
			v.Departure.String(),
			strconv.Itoa(v.WaitedSeconds),
			strconv.FormatInt(v.LightWait.Milliseconds(), 10),
			strconv.FormatInt(v.Penalty.Milliseconds(), 10),
			strconv.FormatBool(v.BrokenDown),
			strconv.FormatBool(v.Congested),
			strconv.FormatBool(v.Passed),
		})
	}
	// WriteAll flushes.
	return cw.WriteAll(rows)
}
