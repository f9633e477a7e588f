package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

type abhaUsecaser interface {
	Lookup(ctx context.Context, abhaID string) (json.RawMessage, error)
}

type ABHAHandler struct {
	abhaUsecase abhaUsecaser
	logger      *slog.Logger
}

func NewABHAHandler(abhaUsecase abhaUsecaser, logger *slog.Logger) *ABHAHandler {
	return &ABHAHandler{
		abhaUsecase: abhaUsecase,
		logger:      logger.With("component", "abha_handler"),
	}
}

// GET /abha/:id
// The upstream document is relayed as-is.
func (h *ABHAHandler) Get(c *gin.Context) {
	doc, err := h.abhaUsecase.Lookup(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "abha lookup", err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", doc)
}
