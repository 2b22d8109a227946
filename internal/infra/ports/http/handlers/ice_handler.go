package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/qrave1/CallRelay/internal/application/config"
)

type IceHandler struct {
	cfg *config.Config
	now func() time.Time
}

func NewIceHandler(cfg *config.Config) *IceHandler {
	return &IceHandler{cfg: cfg, now: time.Now}
}

// IceServers отдаёт STUN и, если настроен coturn, TURN с временными кредами
func (h *IceHandler) IceServers(c echo.Context) error {
	return c.JSON(http.StatusOK, h.cfg.ICEServers(h.now()))
}
