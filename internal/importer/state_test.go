package importer

import (
	"os"
	"path/filepath"
	"testing"
)

// TestStateDBRoundTrip verifies that a marked file is reported as imported
// and that a content change makes it eligible again.
func TestStateDBRoundTrip(t *testing.T) {
	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("open state db: %v", err)
	}
	defer state.Close()

	imported, err := state.IsImported("export.csv", 100, "abc")
	if err != nil {
		t.Fatalf("IsImported: %v", err)
	}
	if imported {
		t.Error("fresh file reported as imported")
	}

	if err := state.MarkImported("export.csv", 100, "abc"); err != nil {
		t.Fatalf("MarkImported: %v", err)
	}

	imported, err = state.IsImported("export.csv", 100, "abc")
	if err != nil {
		t.Fatalf("IsImported: %v", err)
	}
	if !imported {
		t.Error("marked file not reported as imported")
	}

	// Same path, different content: must import again.
	imported, err = state.IsImported("export.csv", 120, "def")
	if err != nil {
		t.Fatalf("IsImported: %v", err)
	}
	if imported {
		t.Error("changed file reported as imported")
	}
}

// TestHashFile verifies hashing is content-based and stable.
func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.csv")
	if err := os.WriteFile(path, []byte("Date,Routine\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	h1, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	h2, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	if h1 != h2 {
		t.Error("hash not stable across reads")
	}

	other := filepath.Join(dir, "b.csv")
	if err := os.WriteFile(other, []byte("different"), 0o644); err != nil {
		t.Fatal(err)
	}
	h3, err := HashFile(other)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	if h1 == h3 {
		t.Error("different content produced the same hash")
	}
}
