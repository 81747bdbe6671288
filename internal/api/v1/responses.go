package v1

import "github.com/aevon-lab/cc-reporting/internal/core/storage"

// ReportResponse wraps every report payload.
type ReportResponse struct {
	Success      bool            `json:"success"`
	Report       any             `json:"report"`
	TotalRecords int64           `json:"totalRecords"`
	Page         int             `json:"page"`
	Count        int             `json:"count"`
	Agents       []storage.Agent `json:"agents,omitempty"`
}

// NLReportResponse is the result of a natural-language report.
type NLReportResponse struct {
	Success bool         `json:"success"`
	Data    NLReportData `json:"data"`
}

type NLReportData struct {
	Query string `json:"query"`
	Plan  any    `json:"plan"`
	Data  any    `json:"data"`
}
