package csvio

import (
	"strings"
	"testing"
	"time"

	"github.com/meltforce/ironlog/internal/models"
)

func intPtr(v int) *int { return &v }

func sampleRecords() []models.HistoryRecord {
	return []models.HistoryRecord{
		{SessionDate: "2024-01-08", RoutineName: "Push Day", ExerciseName: "Bench Press",
			MuscleGroup: "Chest", SetNumber: 1, Reps: 10, Weight: 52.5, DurationMinutes: intPtr(45)},
		{SessionDate: "2024-01-08", RoutineName: "Push Day", ExerciseName: "Bench Press",
			MuscleGroup: "Chest", SetNumber: 2, Reps: 8, Weight: 55, DurationMinutes: intPtr(45)},
		{SessionDate: "2024-01-10", RoutineName: "Legs", ExerciseName: "Squat",
			MuscleGroup: "Legs", SetNumber: 1, Reps: 5, Weight: 100, DurationMinutes: nil},
	}
}

// TestEncodeFormat verifies the exact legacy shape: fixed header, one
// force-quoted line per set record, numbers as plain decimal text, empty
// duration as empty quotes.
func TestEncodeFormat(t *testing.T) {
	out := string(Encode(sampleRecords()))
	lines := strings.Split(out, "\n")

	if len(lines) != 4 {
		t.Fatalf("lines = %d, want 4 (header + 3 records)", len(lines))
	}
	if lines[0] != "Date,Routine,Exercise,Muscle Group,Set Number,Reps,Weight (kg),Duration (min)" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != `"2024-01-08","Push Day","Bench Press","Chest","1","10","52.5","45"` {
		t.Errorf("line 1 = %q", lines[1])
	}
	if lines[3] != `"2024-01-10","Legs","Squat","Legs","1","5","100",""` {
		t.Errorf("line 3 = %q", lines[3])
	}
}

// TestRoundTrip verifies decode(encode(x)) preserves every
// (date, routine, exercise, set_number, reps, weight) tuple.
func TestRoundTrip(t *testing.T) {
	records := sampleRecords()
	rows, err := Decode(strings.NewReader(string(Encode(records))))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(rows) != len(records) {
		t.Fatalf("rows = %d, want %d", len(rows), len(records))
	}
	for i, row := range rows {
		rec := records[i]
		if row.Date != rec.SessionDate || row.Routine != rec.RoutineName ||
			row.Exercise != rec.ExerciseName || row.SetNumber != rec.SetNumber ||
			row.Reps != rec.Reps || row.Weight != rec.Weight {
			t.Errorf("row %d = %+v, want %+v", i, row, rec)
		}
	}
	if rows[2].DurationMinutes != nil {
		t.Error("missing duration decoded as non-nil")
	}
	if rows[0].DurationMinutes == nil || *rows[0].DurationMinutes != 45 {
		t.Error("duration not preserved")
	}
}

// TestRoundTripEmbeddedComma verifies that a comma inside an exercise name
// survives the round trip. The legacy naive comma-split broke here; the
// quote-aware reader must not.
func TestRoundTripEmbeddedComma(t *testing.T) {
	records := []models.HistoryRecord{
		{SessionDate: "2024-02-01", RoutineName: "Pull", ExerciseName: "Row, Single-Arm",
			MuscleGroup: "Back", SetNumber: 1, Reps: 12, Weight: 30},
	}
	rows, err := Decode(strings.NewReader(string(Encode(records))))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].Exercise != "Row, Single-Arm" {
		t.Errorf("exercise = %q, want %q", rows[0].Exercise, "Row, Single-Arm")
	}
}

// TestRoundTripEmbeddedQuote verifies doubled-quote escaping.
func TestRoundTripEmbeddedQuote(t *testing.T) {
	records := []models.HistoryRecord{
		{SessionDate: "2024-02-01", RoutineName: "Arms", ExerciseName: `21"s Curl`,
			MuscleGroup: "Biceps", SetNumber: 1, Reps: 21, Weight: 20},
	}
	rows, err := Decode(strings.NewReader(string(Encode(records))))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if rows[0].Exercise != `21"s Curl` {
		t.Errorf("exercise = %q", rows[0].Exercise)
	}
}

// TestDecodeMalformed verifies structural errors are reported with the
// offending line instead of silently dropping data.
func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"empty file", ""},
		{"wrong header", "Foo,Bar\n"},
		{"missing column", Header + "\n" + `"2024-01-01","R","E","M","1","10","50"`},
		{"non-numeric reps", Header + "\n" + `"2024-01-01","R","E","M","1","ten","50",""`},
		{"non-numeric weight", Header + "\n" + `"2024-01-01","R","E","M","1","10","heavy",""`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(tc.csv)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

// TestGroupSessions verifies (date, routine) grouping with first-seen
// order and duration taken from the first row of each group.
func TestGroupSessions(t *testing.T) {
	rows := []Row{
		{Date: "2024-01-08", Routine: "Push", Exercise: "Bench", SetNumber: 1, DurationMinutes: intPtr(45)},
		{Date: "2024-01-10", Routine: "Legs", Exercise: "Squat", SetNumber: 1},
		{Date: "2024-01-08", Routine: "Push", Exercise: "Dips", SetNumber: 1, DurationMinutes: intPtr(45)},
		{Date: "2024-01-08", Routine: "Legs", Exercise: "Squat", SetNumber: 1},
	}

	groups := GroupSessions(rows)
	if len(groups) != 3 {
		t.Fatalf("groups = %d, want 3", len(groups))
	}
	if groups[0].Date != "2024-01-08" || groups[0].Routine != "Push" {
		t.Errorf("group 0 = %s/%s", groups[0].Date, groups[0].Routine)
	}
	if len(groups[0].Rows) != 2 {
		t.Errorf("group 0 rows = %d, want 2", len(groups[0].Rows))
	}
	if groups[0].DurationMinutes == nil || *groups[0].DurationMinutes != 45 {
		t.Error("group 0 duration not taken from first row")
	}
	// Same date, different routine is a distinct session.
	if groups[2].Routine != "Legs" || groups[2].Date != "2024-01-08" {
		t.Errorf("group 2 = %s/%s", groups[2].Date, groups[2].Routine)
	}
}

// TestExportFilename verifies the dated download name.
func TestExportFilename(t *testing.T) {
	now := time.Date(2024, 3, 9, 15, 4, 5, 0, time.UTC)
	if got := ExportFilename(now); got != "workout_history_2024-03-09.csv" {
		t.Errorf("filename = %q", got)
	}
}
