package httpapi

import "net/http"

// NewMux serves the report at reportPath and a health probe.
func NewMux(reportPath string) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, reportPath)
	registerReport(mux, reportPath)
	return mux
}
