package handlers

import (
	"net/http"
	"strconv"

	"automl-orchestrator/internal/adapters/primary/http/dto"
	"automl-orchestrator/internal/core/ports/output"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) ListPipelines(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offset"})
		return
	}

	filter := ports.PipelineFilter{
		Status:      c.Query("status"),
		Experiment:  c.Query("experiment"),
		ServiceName: c.Query("service"),
		Limit:       limit,
		Offset:      offset,
	}

	pipelines, total, err := h.ledgerSvc.List(c.Request.Context(), filter)
	if err != nil {
		log.WithError(err).Error("list pipelines failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.PipelineResponse, 0, len(pipelines))
	for _, p := range pipelines {
		items = append(items, dto.ToPipelineResponse(p))
	}

	c.JSON(http.StatusOK, dto.ListPipelinesResponse{
		Items:      items,
		Total:      total,
		PageSize:   len(items),
		NextOffset: offset + len(items),
	})
}

func (h *Handler) GetPipeline(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pipeline id"})
		return
	}

	p, err := h.ledgerSvc.Get(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPipelineResponse(p))
}
