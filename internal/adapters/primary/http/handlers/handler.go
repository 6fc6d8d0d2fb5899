package handlers

import (
	"automl-orchestrator/internal/core/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	ledgerSvc *services.LedgerService
}

func New(ledgerSvc *services.LedgerService) *Handler {
	return &Handler{ledgerSvc: ledgerSvc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	// Pipeline ledger
	r.GET("/pipelines", h.ListPipelines)
	r.GET("/pipelines/:id", h.GetPipeline)
}
