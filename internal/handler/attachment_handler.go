package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/complaint-desk-api/internal/service"
	"github.com/noah-isme/complaint-desk-api/pkg/response"
)

type attachmentOpener interface {
	Open(ctx context.Context, token string) (*service.Download, error)
}

// AttachmentHandler streams attachments behind signed tokens.
type AttachmentHandler struct {
	attachments attachmentOpener
}

// NewAttachmentHandler constructs an attachment handler.
func NewAttachmentHandler(attachments attachmentOpener) *AttachmentHandler {
	return &AttachmentHandler{attachments: attachments}
}

// Download godoc
// @Summary Download attachment
// @Tags Attachments
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /attachments/{token} [get]
func (h *AttachmentHandler) Download(c *gin.Context) {
	download, err := h.attachments.Open(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close() //nolint:errcheck

	c.DataFromReader(http.StatusOK, download.Size, download.ContentType, download.File, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", displayName(download.Name)),
		"Cache-Control":       "private, no-store",
	})
}

// displayName drops the uniqueness prefix added when the file was staged.
func displayName(stored string) string {
	if _, rest, ok := strings.Cut(stored, "_"); ok && rest != "" {
		return rest
	}
	return stored
}
