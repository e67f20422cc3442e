package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	cleaningapp "github.com/seedledger/backend/internal/application/cleaning"
	"github.com/seedledger/backend/internal/domain/cleaning"
	"github.com/seedledger/backend/internal/domain/shared"
	"github.com/seedledger/backend/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
)

// CleaningHandler handles cleaning operation API endpoints
type CleaningHandler struct {
	BaseHandler
	cleaningService *cleaningapp.CleaningService
}

// NewCleaningHandler creates a new CleaningHandler
func NewCleaningHandler(cleaningService *cleaningapp.CleaningService) *CleaningHandler {
	return &CleaningHandler{
		cleaningService: cleaningService,
	}
}

// CreateDraftRequest represents a request to open a draft operation.
// Weights bind as decimals so the figure on the wire is stored exactly;
// clients may send them as numbers or as strings.
type CreateDraftRequest struct {
	LedgerEntryID    string          `json:"ledger_entry_id" binding:"required,uuid"`
	Flow             string          `json:"flow" binding:"required,oneof=CLEANING RECLEANING"`
	WorkDate         string          `json:"work_date" binding:"omitempty,datetime=2006-01-02"`
	WeightIn         decimal.Decimal `json:"weight_in" binding:"required"`
	TargetPurity     float64         `json:"target_purity" binding:"omitempty,gte=0,lte=100"`
	RecleaningReason string          `json:"recleaning_reason" binding:"max=500"`
}

// UpdateDraftRequest represents a request to replace a draft's figures
type UpdateDraftRequest struct {
	WeightIn     decimal.Decimal `json:"weight_in" binding:"required"`
	WeightOut    decimal.Decimal `json:"weight_out"`
	Rejects      decimal.Decimal `json:"rejects"`
	PurityBefore float64         `json:"purity_before" binding:"gte=0,lte=100"`
	PurityAfter  float64         `json:"purity_after" binding:"gte=0,lte=100"`
}

// AddQualityCheckRequest represents one sample from the cleaning line
type AddQualityCheckRequest struct {
	PieceWeight decimal.Decimal `json:"piece_weight" binding:"required"`
	SoundGrams  int64           `json:"sound_grams" binding:"gte=0"`
	RejectGrams int64           `json:"reject_grams" binding:"gte=0"`
}

// PostOperationRequest carries the optional operator posting the result
type PostOperationRequest struct {
	OperatorID string `json:"operator_id" binding:"omitempty,uuid"`
}

// ListOperationsRequest represents the query parameters for listing
// operations
type ListOperationsRequest struct {
	Page          int    `form:"page" binding:"omitempty,min=1"`
	PageSize      int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	LedgerEntryID string `form:"ledger_entry_id" binding:"omitempty,uuid"`
	Status        string `form:"status" binding:"omitempty,oneof=DRAFT POSTED"`
	Flow          string `form:"flow" binding:"omitempty,oneof=CLEANING RECLEANING"`
}

// CreateDraft opens a new draft cleaning operation against a ledger entry
func (h *CleaningHandler) CreateDraft(c *gin.Context) {
	var req CreateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if !req.WeightIn.IsPositive() {
		h.BadRequest(c, "Input weight must be positive")
		return
	}

	cmd := cleaningapp.CreateDraftCommand{
		LedgerEntryID:    uuid.MustParse(req.LedgerEntryID),
		Flow:             cleaning.OperationFlow(req.Flow),
		WeightIn:         req.WeightIn,
		TargetPurity:     toDecimal(req.TargetPurity),
		RecleaningReason: req.RecleaningReason,
	}
	if date, err := parseDate(req.WorkDate); err == nil && date != nil {
		cmd.WorkDate = *date
	}

	op, err := h.cleaningService.CreateDraft(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, op)
}

// UpdateDraft replaces the editable figures of a draft operation
func (h *CleaningHandler) UpdateDraft(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid operation ID")
		return
	}

	var req UpdateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if !req.WeightIn.IsPositive() {
		h.BadRequest(c, "Input weight must be positive")
		return
	}
	if req.WeightOut.IsNegative() || req.Rejects.IsNegative() {
		h.BadRequest(c, "Output weight and rejects cannot be negative")
		return
	}

	op, err := h.cleaningService.UpdateDraft(c.Request.Context(), id, cleaningapp.UpdateDraftCommand{
		WeightIn:     req.WeightIn,
		WeightOut:    req.WeightOut,
		Rejects:      req.Rejects,
		PurityBefore: toDecimal(req.PurityBefore),
		PurityAfter:  toDecimal(req.PurityAfter),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, op)
}

// AddQualityCheck appends a sample to a draft operation
func (h *CleaningHandler) AddQualityCheck(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid operation ID")
		return
	}

	var req AddQualityCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if !req.PieceWeight.IsPositive() {
		h.BadRequest(c, "Piece weight must be positive")
		return
	}

	op, err := h.cleaningService.AddQualityCheck(c.Request.Context(), id, cleaningapp.AddQualityCheckCommand{
		PieceWeight: req.PieceWeight,
		SoundGrams:  req.SoundGrams,
		RejectGrams: req.RejectGrams,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, op)
}

// Post applies a draft operation's result to its ledger entry
func (h *CleaningHandler) Post(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid operation ID")
		return
	}

	operatorID, err := h.bindOperator(c)
	if err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	op, err := h.cleaningService.Post(c.Request.Context(), id, operatorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, op)
}

// Reverse rolls a posted operation back to draft with compensating
// movements
func (h *CleaningHandler) Reverse(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid operation ID")
		return
	}

	operatorID, err := h.bindOperator(c)
	if err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	op, err := h.cleaningService.Reverse(c.Request.Context(), id, operatorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, op)
}

// GetOperation retrieves an operation with its quality checks
func (h *CleaningHandler) GetOperation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid operation ID")
		return
	}

	op, err := h.cleaningService.GetOperation(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, op)
}

// ListOperations returns operations matching the query filters
func (h *CleaningHandler) ListOperations(c *gin.Context) {
	var req ListOperationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	filter := cleaning.OperationFilter{
		Filter: shared.Filter{
			Page:     req.Page,
			PageSize: req.PageSize,
		},
	}
	var err error
	if filter.LedgerEntryID, err = parseUUIDPtr(req.LedgerEntryID); err != nil {
		h.BadRequest(c, "Invalid ledger entry ID")
		return
	}
	if req.Status != "" {
		status := cleaning.OperationStatus(req.Status)
		filter.Status = &status
	}
	if req.Flow != "" {
		flow := cleaning.OperationFlow(req.Flow)
		filter.Flow = &flow
	}

	page, err := h.cleaningService.ListOperations(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// bindOperator reads the optional operator ID from the request body.
// An empty body is fine.
func (h *CleaningHandler) bindOperator(c *gin.Context) (*uuid.UUID, error) {
	if c.Request.ContentLength == 0 {
		return nil, nil
	}
	var req PostOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, err
	}
	return parseUUIDPtr(req.OperatorID)
}
