package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"omnicrm/internal/core/apperror"
	"omnicrm/internal/core/id"
	"omnicrm/internal/domain/crm/segment"
	"omnicrm/internal/infrastructure/http/v1/dto"
)

// SegmentHandler extends the generic record handler with expression
// validation and member evaluation.
type SegmentHandler struct {
	*RecordHandler[*segment.Segment, dto.CreateSegmentRequest, dto.UpdateSegmentRequest]
	service *segment.Service
}

// NewSegmentHandler creates a new segment handler.
func NewSegmentHandler(base *BaseHandler, service *segment.Service) *SegmentHandler {
	rh := NewRecordHandler(base, RecordHandlerConfig[*segment.Segment, dto.CreateSegmentRequest, dto.UpdateSegmentRequest]{
		Service:    service.RecordService,
		EntityName: "segment",
		MapCreateDTO: func(req dto.CreateSegmentRequest) (*segment.Segment, error) {
			return req.ToEntity(), nil
		},
		MapUpdateDTO: func(req dto.UpdateSegmentRequest, existing *segment.Segment) (*segment.Segment, error) {
			return req.Apply(existing), nil
		},
	})

	return &SegmentHandler{
		RecordHandler: rh,
		service:       service,
	}
}

// Validate handles POST /segments/validate - compile an expression
// without saving anything.
func (h *SegmentHandler) Validate(c *gin.Context) {
	var req dto.ValidateExpressionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.ValidateExpression(req.Expression); err != nil {
		c.JSON(http.StatusOK, dto.ValidateExpressionResponse{
			Valid: false,
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.ValidateExpressionResponse{Valid: true})
}

// Members handles GET /segments/:id/members - evaluate the segment
// expression against all contacts.
func (h *SegmentHandler) Members(c *gin.Context) {
	ctx := c.Request.Context()

	segmentID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	members, err := h.service.Members(ctx, segmentID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":      members,
		"totalCount": len(members),
	})
}
