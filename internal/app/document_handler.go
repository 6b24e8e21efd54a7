package app

import (
	"errors"
	"fmt"
	"net/http"

	"safeprofile/internal/document"
	"safeprofile/internal/service"
	"safeprofile/internal/util"

	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	documentService service.DocumentService
}

func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// DownloadProfileDocument streams the one-page profile PDF
// GET /api/v1/profiles/:id/documents/profile
func (h *DocumentHandler) DownloadProfileDocument(c *gin.Context) {
	data, filename, err := h.documentService.GenerateProfileDocument(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	writePDF(c, data, filename)
}

// DownloadPosterDocument streams the missing person poster PDF
// GET /api/v1/profiles/:id/documents/poster
func (h *DocumentHandler) DownloadPosterDocument(c *gin.Context) {
	data, filename, err := h.documentService.GeneratePosterDocument(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	writePDF(c, data, filename)
}

func (h *DocumentHandler) respondError(c *gin.Context, err error) {
	var genErr *document.GenerationError
	switch {
	case errors.Is(err, service.ErrNoMissingEpisode):
		util.BadRequest(c, "Profile has no last-seen details, cannot build a poster")
	case errors.As(err, &genErr):
		util.InternalError(c, "Document generation failed")
	default:
		respondStoreError(c, err)
	}
}

func writePDF(c *gin.Context, data []byte, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}
