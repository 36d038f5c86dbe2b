package httpapi

import (
	"log/slog"
	"net/http"
	"os"

	"sideseeing-report/internal/utils"
)

// generatedAtID is the element the report templates put the timestamp in.
const generatedAtID = "generated-at"

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	reportPath string
}

func NewHealthchecker(reportPath string) healthchecker {
	return &healthcheckerImpl{reportPath: reportPath}
}

// handleHealthz reports ok while the report is readable, plus its generation
// timestamp when the document carries one.
func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	f, err := os.Open(h.reportPath)
	if err != nil {
		slog.Error("report not readable", "path", h.reportPath, "error", err)
		utils.WriteError(w, http.StatusServiceUnavailable, "report not readable")
		return
	}
	defer func() { _ = f.Close() }()

	body := map[string]string{"status": "ok"}
	stamp, ok, err := utils.ElementTextByID(f, generatedAtID)
	if err != nil {
		slog.Warn("report not parseable", "path", h.reportPath, "error", err)
	}
	if ok {
		body["generated_at"] = stamp
	}
	utils.WriteJSON(w, http.StatusOK, body)
}

func registerHealthcheck(mux *http.ServeMux, reportPath string) {
	healthchecker := NewHealthchecker(reportPath)
	mux.HandleFunc("GET /healthz", healthchecker.handleHealthz)
}
