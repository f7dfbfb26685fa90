package output

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// DocumentInfo describes a kept document without its body.
type DocumentInfo struct {
	Name        string `json:"name"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
}

// HistoryHandler exposes the documents a MemorySink has kept.
type HistoryHandler struct {
	store *MemorySink
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(store *MemorySink) *HistoryHandler {
	return &HistoryHandler{store: store}
}

// RegisterRoutes mounts history routes on the supplied Echo group.
func (h *HistoryHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/documents", h.handleList)
	g.GET("/documents/:name", h.handleDownload)
}

func (h *HistoryHandler) handleList(c echo.Context) error {
	docs := h.store.Documents()
	items := make([]DocumentInfo, 0, len(docs))
	for i := len(docs) - 1; i >= 0; i-- {
		d := docs[i]
		items = append(items, DocumentInfo{
			Name:        d.Name,
			FileName:    d.FileName(),
			ContentType: d.ContentType,
			Size:        len(d.Body),
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"items": items, "total": len(items)})
}

func (h *HistoryHandler) handleDownload(c echo.Context) error {
	name := c.Param("name")
	doc, ok := h.store.Get(name)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "document not found: " + name})
	}
	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, doc.FileName()))
	return c.Blob(http.StatusOK, doc.ContentType, doc.Body)
}
