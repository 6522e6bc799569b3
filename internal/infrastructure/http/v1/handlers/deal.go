package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"omnicrm/internal/core/apperror"
	"omnicrm/internal/core/id"
	"omnicrm/internal/domain/crm/deal"
	"omnicrm/internal/infrastructure/http/v1/dto"
)

// DealHandler extends the generic record handler with deal specific
// endpoints (stage moves, forecast).
type DealHandler struct {
	*RecordHandler[*deal.Deal, dto.CreateDealRequest, dto.UpdateDealRequest]
	service *deal.Service
}

// NewDealHandler creates a new deal handler.
func NewDealHandler(base *BaseHandler, service *deal.Service) *DealHandler {
	rh := NewRecordHandler(base, RecordHandlerConfig[*deal.Deal, dto.CreateDealRequest, dto.UpdateDealRequest]{
		Service:    service.RecordService,
		EntityName: "deal",
		MapCreateDTO: func(req dto.CreateDealRequest) (*deal.Deal, error) {
			d, err := req.ToEntity()
			if err != nil {
				return nil, apperror.NewValidation("invalid amount format").WithDetail("field", "amount")
			}
			return d, nil
		},
		MapUpdateDTO: func(req dto.UpdateDealRequest, existing *deal.Deal) (*deal.Deal, error) {
			d, err := req.Apply(existing)
			if err != nil {
				return nil, apperror.NewValidation("invalid amount format").WithDetail("field", "amount")
			}
			return d, nil
		},
	})

	return &DealHandler{
		RecordHandler: rh,
		service:       service,
	}
}

// MoveStage handles POST /deals/:id/stage - move the deal to another
// stage of its pipeline.
func (h *DealHandler) MoveStage(c *gin.Context) {
	ctx := c.Request.Context()

	dealID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.MoveStageRequest
	if !h.BindJSON(c, &req) {
		return
	}

	moved, err := h.service.MoveStage(ctx, dealID, req.Stage)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, moved)
}

// Forecast handles GET /deals/forecast?pipelineId= - weighted revenue
// forecast per stage of one pipeline.
func (h *DealHandler) Forecast(c *gin.Context) {
	ctx := c.Request.Context()

	pipelineID, err := id.Parse(c.Query("pipelineId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("pipelineId query parameter is required"))
		return
	}

	stages, err := h.service.Forecast(ctx, pipelineID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewForecastResponse(pipelineID, stages))
}
