package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"omnicrm/internal/core/apperror"
	"omnicrm/internal/core/id"
	"omnicrm/internal/domain/crm/pipeline"
	"omnicrm/internal/infrastructure/http/v1/dto"
)

// PipelineHandler extends the generic record handler with default
// pipeline management.
type PipelineHandler struct {
	*RecordHandler[*pipeline.Pipeline, dto.CreatePipelineRequest, dto.UpdatePipelineRequest]
	service *pipeline.Service
}

// NewPipelineHandler creates a new pipeline handler.
func NewPipelineHandler(base *BaseHandler, service *pipeline.Service) *PipelineHandler {
	rh := NewRecordHandler(base, RecordHandlerConfig[*pipeline.Pipeline, dto.CreatePipelineRequest, dto.UpdatePipelineRequest]{
		Service:    service.RecordService,
		EntityName: "pipeline",
		MapCreateDTO: func(req dto.CreatePipelineRequest) (*pipeline.Pipeline, error) {
			return req.ToEntity(), nil
		},
		MapUpdateDTO: func(req dto.UpdatePipelineRequest, existing *pipeline.Pipeline) (*pipeline.Pipeline, error) {
			return req.Apply(existing), nil
		},
	})

	return &PipelineHandler{
		RecordHandler: rh,
		service:       service,
	}
}

// GetDefault handles GET /pipelines/default.
func (h *PipelineHandler) GetDefault(c *gin.Context) {
	ctx := c.Request.Context()

	p, err := h.service.GetDefault(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// SetDefault handles POST /pipelines/:id/default.
func (h *PipelineHandler) SetDefault(c *gin.Context) {
	ctx := c.Request.Context()

	pipelineID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.SetDefault(ctx, pipelineID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "default pipeline updated")
}
