package server

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/meltforce/ironlog/internal/csvio"
	"github.com/meltforce/ironlog/internal/importer"
)

// handleExportHistory streams the full workout history as a CSV download
// named after today's date.
func (s *Server) handleExportHistory(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}

	records, err := s.db.AllHistory(r.Context(), uid)
	if err != nil {
		s.writeStorageError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+csvio.ExportFilename(time.Now())+`"`)
	w.Write(csvio.Encode(records))
}

// handleImportHistory restores history from an uploaded CSV export. The
// body is either a raw CSV payload or a multipart form with a "file" field.
// Structural CSV errors are a 400; everything else is best-effort and
// reported in the returned stats.
func (s *Server) handleImportHistory(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}

	var body io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing file field: "+err.Error())
			return
		}
		defer file.Close()
		body = file
	}

	dryRun := r.URL.Query().Get("dry_run") == "true"
	imp := importer.New(s.db, s.log, dryRun)
	stats, err := imp.Import(r.Context(), uid, body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": err.Error(),
			"stats": stats,
		})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
