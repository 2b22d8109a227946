package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/qrave1/CallRelay/internal/infra/adapters/memory"
	"github.com/qrave1/CallRelay/internal/infra/ports/http/dto"
)

type StatsHandler struct {
	connRegistry  memory.ConnectionRegistry
	roomDirectory memory.RoomDirectory
}

func NewStatsHandler(connRegistry memory.ConnectionRegistry, roomDirectory memory.RoomDirectory) *StatsHandler {
	return &StatsHandler{connRegistry: connRegistry, roomDirectory: roomDirectory}
}

func (h *StatsHandler) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.StatsResponse{
		Connections: h.connRegistry.Count(),
		Rooms:       h.roomDirectory.RoomCount(),
	})
}
