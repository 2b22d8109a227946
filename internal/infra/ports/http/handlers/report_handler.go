package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/qrave1/CallRelay/internal/application/constant"
	"github.com/qrave1/CallRelay/internal/domain/quality"
	"github.com/qrave1/CallRelay/internal/infra/ports/http/dto"
)

type ReportHandler struct {
	now func() time.Time
}

func NewReportHandler() *ReportHandler {
	return &ReportHandler{now: time.Now}
}

// Report считает отчёт о качестве звонка по счётчикам, собранным клиентом
func (h *ReportHandler) Report(c echo.Context) error {
	var samples quality.Samples

	if err := c.Bind(&samples); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request"})
	}

	report, err := quality.Score(samples, h.now())
	if err != nil {
		if errors.Is(err, quality.ErrNoCallData) {
			return c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: err.Error()})
		}

		slog.Error("score call quality", slog.Any(constant.Error, err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to build report"})
	}

	return c.JSON(http.StatusOK, dto.NewReportResponse(report))
}
