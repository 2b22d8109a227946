package handlers

import (
	"path/filepath"

	"github.com/labstack/echo/v4"
)

type PagesHandler struct {
	staticDir string
}

func NewPagesHandler(staticDir string) *PagesHandler {
	return &PagesHandler{staticDir: staticDir}
}

func (h *PagesHandler) Index(c echo.Context) error {
	return c.File(filepath.Join(h.staticDir, "index.html"))
}

func (h *PagesHandler) Interviewer(c echo.Context) error {
	return c.File(filepath.Join(h.staticDir, "interviewer.html"))
}

func (h *PagesHandler) Candidate(c echo.Context) error {
	return c.File(filepath.Join(h.staticDir, "candidate.html"))
}
