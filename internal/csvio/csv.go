// Package csvio encodes and decodes the workout-history CSV format. The
// header, field order and all-quoted fields are a compatibility contract
// with previously exported files; decoding is quote-aware, so exercise
// names containing commas survive a round trip.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/meltforce/ironlog/internal/models"
)

// Header is the exact export header row.
const Header = `Date,Routine,Exercise,Muscle Group,Set Number,Reps,Weight (kg),Duration (min)`

const fieldCount = 8

// Row is one decoded data line: a single set with its session context.
type Row struct {
	Date            string
	Routine         string
	Exercise        string
	MuscleGroup     string
	SetNumber       int
	Reps            int
	Weight          float64
	DurationMinutes *int
}

// ExportFilename returns the download name for an export taken at the
// given instant: workout_history_<YYYY-MM-DD>.csv.
func ExportFilename(now time.Time) string {
	return "workout_history_" + now.Format("2006-01-02") + ".csv"
}

// Encode renders history records as CSV. Every field is double-quoted
// (embedded quotes doubled), numeric fields as plain decimal text, one line
// per set record, no trailing newline. encoding/csv only quotes on demand,
// so the always-quoted legacy format is written directly.
func Encode(records []models.HistoryRecord) []byte {
	var b strings.Builder
	b.WriteString(Header)

	for _, rec := range records {
		duration := ""
		if rec.DurationMinutes != nil {
			duration = strconv.Itoa(*rec.DurationMinutes)
		}
		fields := []string{
			rec.SessionDate,
			rec.RoutineName,
			rec.ExerciseName,
			rec.MuscleGroup,
			strconv.Itoa(rec.SetNumber),
			strconv.Itoa(rec.Reps),
			formatWeight(rec.Weight),
			duration,
		}
		b.WriteByte('\n')
		for i, f := range fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(f, `"`, `""`))
			b.WriteByte('"')
		}
	}
	return []byte(b.String())
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}

// Decode parses exported CSV. The header line is skipped; each data line
// must carry exactly the expected columns with numeric set/reps/weight
// fields, otherwise a structural error is returned naming the line.
func Decode(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = fieldCount

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if header[0] != "Date" {
		return nil, fmt.Errorf("unexpected header %q", strings.Join(header, ","))
	}

	var rows []Row
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		row, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(record []string) (Row, error) {
	setNumber, err := strconv.Atoi(record[4])
	if err != nil {
		return Row{}, fmt.Errorf("bad set number %q", record[4])
	}
	reps, err := strconv.Atoi(record[5])
	if err != nil {
		return Row{}, fmt.Errorf("bad reps %q", record[5])
	}
	weight, err := strconv.ParseFloat(record[6], 64)
	if err != nil {
		return Row{}, fmt.Errorf("bad weight %q", record[6])
	}

	row := Row{
		Date:        record[0],
		Routine:     record[1],
		Exercise:    record[2],
		MuscleGroup: record[3],
		SetNumber:   setNumber,
		Reps:        reps,
		Weight:      weight,
	}
	if record[7] != "" {
		duration, err := strconv.Atoi(record[7])
		if err != nil {
			return Row{}, fmt.Errorf("bad duration %q", record[7])
		}
		row.DurationMinutes = &duration
	}
	return row, nil
}

// SessionGroup is a synthetic session reconstructed from import rows
// sharing a (date, routine) key. Duration comes from the group's first row.
type SessionGroup struct {
	Date            string
	Routine         string
	DurationMinutes *int
	Rows            []Row
}

// GroupSessions partitions rows by the (date, routine) composite key,
// preserving first-seen group order.
func GroupSessions(rows []Row) []SessionGroup {
	index := make(map[string]int)
	var groups []SessionGroup

	for _, row := range rows {
		key := row.Date + "\x00" + row.Routine
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, SessionGroup{
				Date:            row.Date,
				Routine:         row.Routine,
				DurationMinutes: row.DurationMinutes,
			})
		}
		groups[i].Rows = append(groups[i].Rows, row)
	}
	return groups
}
