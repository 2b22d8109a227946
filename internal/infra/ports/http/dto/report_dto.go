package dto

import (
	"github.com/qrave1/CallRelay/internal/domain/quality"
)

type ReportResponse struct {
	Report  quality.Report `json:"report"`
	Summary string         `json:"summary"`
}

func NewReportResponse(r quality.Report) ReportResponse {
	return ReportResponse{
		Report:  r,
		Summary: r.Summary(),
	}
}

type StatsResponse struct {
	Connections int `json:"connections"`
	Rooms       int `json:"rooms"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
