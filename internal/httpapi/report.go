package httpapi

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"sideseeing-report/internal/utils"
)

// reportHandler reads the file on every request so a re-generated report
// shows up without restarting the preview.
type reportHandler struct {
	path string
}

func (h *reportHandler) handleReport(w http.ResponseWriter, r *http.Request) {
	body, err := os.ReadFile(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		utils.WriteError(w, http.StatusNotFound, "report has not been generated")
		return
	}
	if err != nil {
		slog.Error("failed to read report", "path", h.path, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to read report")
		return
	}
	utils.WriteHTML(w, http.StatusOK, body)
}

func registerReport(mux *http.ServeMux, reportPath string) {
	h := &reportHandler{path: reportPath}
	mux.HandleFunc("GET /{$}", h.handleReport)
	mux.HandleFunc("GET /report.html", h.handleReport)
}
