package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ledgerapp "github.com/seedledger/backend/internal/application/ledger"
	"github.com/seedledger/backend/internal/domain/ledger"
	"github.com/seedledger/backend/internal/domain/shared"
	"github.com/seedledger/backend/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
)

// LedgerHandler handles bin card ledger API endpoints
type LedgerHandler struct {
	BaseHandler
	ledgerService *ledgerapp.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledgerService *ledgerapp.LedgerService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
	}
}

// RecordIntakeRequest represents a request to record a raw seed intake.
// Weights bind as decimals so the figure on the wire is stored exactly;
// clients may send them as numbers or as strings.
type RecordIntakeRequest struct {
	OwnerID     string          `json:"owner_id" binding:"required,uuid"`
	WarehouseID string          `json:"warehouse_id" binding:"required,uuid"`
	SeedTypeID  string          `json:"seed_type_id" binding:"required,uuid"`
	Grade       string          `json:"grade" binding:"required,min=1,max=50"`
	EntryDate   string          `json:"entry_date" binding:"omitempty,datetime=2006-01-02"`
	Weight      decimal.Decimal `json:"weight" binding:"required"`
	Notes       string          `json:"notes" binding:"max=500"`
	OperatorID  string          `json:"operator_id" binding:"omitempty,uuid"`
}

// RequestWithdrawalRequest represents a request to take cleaned seed out
type RequestWithdrawalRequest struct {
	OwnerID     string          `json:"owner_id" binding:"required,uuid"`
	WarehouseID string          `json:"warehouse_id" binding:"required,uuid"`
	SeedTypeID  string          `json:"seed_type_id" binding:"required,uuid"`
	Grade       string          `json:"grade" binding:"required,min=1,max=50"`
	Weight      decimal.Decimal `json:"weight" binding:"required"`
	EntryDate   string          `json:"entry_date" binding:"omitempty,datetime=2006-01-02"`
	Reference   string          `json:"reference" binding:"max=255"`
	OperatorID  string          `json:"operator_id" binding:"omitempty,uuid"`
}

// ChangeEntryDateRequest represents a request to move an entry to a new
// logical date
type ChangeEntryDateRequest struct {
	EntryDate string `json:"entry_date" binding:"required,datetime=2006-01-02"`
}

// ListEntriesRequest represents the query parameters for listing entries
type ListEntriesRequest struct {
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OwnerID     string `form:"owner_id" binding:"omitempty,uuid"`
	WarehouseID string `form:"warehouse_id" binding:"omitempty,uuid"`
	SeedTypeID  string `form:"seed_type_id" binding:"omitempty,uuid"`
	Grade       string `form:"grade"`
	FlowClass   string `form:"flow_class" binding:"omitempty,oneof=IN OUT"`
	DateFrom    string `form:"date_from" binding:"omitempty,datetime=2006-01-02"`
	DateTo      string `form:"date_to" binding:"omitempty,datetime=2006-01-02"`
	StaleOnly   bool   `form:"stale_only"`
}

// AvailabilityRequest represents the query parameters identifying the
// stock to total. Omitting the warehouse totals the owner's seed type
// across every warehouse.
type AvailabilityRequest struct {
	OwnerID     string `form:"owner_id" binding:"required,uuid"`
	WarehouseID string `form:"warehouse_id" binding:"omitempty,uuid"`
	SeedTypeID  string `form:"seed_type_id" binding:"required,uuid"`
}

// RecordIntake records raw seed arriving at the warehouse
func (h *LedgerHandler) RecordIntake(c *gin.Context) {
	var req RecordIntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if !req.Weight.IsPositive() {
		h.BadRequest(c, "Weight must be positive")
		return
	}

	series := ledger.Series{
		OwnerID:     uuid.MustParse(req.OwnerID),
		WarehouseID: uuid.MustParse(req.WarehouseID),
		SeedTypeID:  uuid.MustParse(req.SeedTypeID),
	}
	operatorID, err := parseUUIDPtr(req.OperatorID)
	if err != nil {
		h.BadRequest(c, "Invalid operator ID")
		return
	}

	cmd := ledgerapp.RecordIntakeCommand{
		Series:     series,
		Grade:      req.Grade,
		Weight:     req.Weight,
		Notes:      req.Notes,
		OperatorID: operatorID,
	}
	if date, err := parseDate(req.EntryDate); err == nil && date != nil {
		cmd.EntryDate = *date
	}

	entry, err := h.ledgerService.RecordIntake(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// RequestWithdrawal records cleaned seed leaving the warehouse
func (h *LedgerHandler) RequestWithdrawal(c *gin.Context) {
	var req RequestWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if !req.Weight.IsPositive() {
		h.BadRequest(c, "Weight must be positive")
		return
	}

	series := ledger.Series{
		OwnerID:     uuid.MustParse(req.OwnerID),
		WarehouseID: uuid.MustParse(req.WarehouseID),
		SeedTypeID:  uuid.MustParse(req.SeedTypeID),
	}
	operatorID, err := parseUUIDPtr(req.OperatorID)
	if err != nil {
		h.BadRequest(c, "Invalid operator ID")
		return
	}
	entryDate, err := parseDate(req.EntryDate)
	if err != nil {
		h.BadRequest(c, "Invalid entry date")
		return
	}

	entry, err := h.ledgerService.RequestWithdrawal(c.Request.Context(), ledgerapp.RequestWithdrawalCommand{
		Series:     series,
		Grade:      req.Grade,
		Weight:     req.Weight,
		EntryDate:  entryDate,
		Reference:  req.Reference,
		OperatorID: operatorID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// GetEntry retrieves a ledger entry by ID
func (h *LedgerHandler) GetEntry(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	entry, err := h.ledgerService.GetEntry(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// ListEntries returns ledger entries matching the query filters
func (h *LedgerHandler) ListEntries(c *gin.Context) {
	var req ListEntriesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	filter := ledger.EntryFilter{
		Filter: shared.Filter{
			Page:     req.Page,
			PageSize: req.PageSize,
		},
		StaleOnly: req.StaleOnly,
	}
	var err error
	if filter.OwnerID, err = parseUUIDPtr(req.OwnerID); err != nil {
		h.BadRequest(c, "Invalid owner ID")
		return
	}
	if filter.WarehouseID, err = parseUUIDPtr(req.WarehouseID); err != nil {
		h.BadRequest(c, "Invalid warehouse ID")
		return
	}
	if filter.SeedTypeID, err = parseUUIDPtr(req.SeedTypeID); err != nil {
		h.BadRequest(c, "Invalid seed type ID")
		return
	}
	if req.Grade != "" {
		filter.Grade = &req.Grade
	}
	if req.FlowClass != "" {
		flow := ledger.FlowClass(req.FlowClass)
		filter.FlowClass = &flow
	}
	if filter.DateFrom, err = parseDate(req.DateFrom); err != nil {
		h.BadRequest(c, "Invalid date_from")
		return
	}
	if filter.DateTo, err = parseDate(req.DateTo); err != nil {
		h.BadRequest(c, "Invalid date_to")
		return
	}

	page, err := h.ledgerService.ListEntries(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetBalances reconstructs the six running totals at an entry
func (h *LedgerHandler) GetBalances(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	balances, err := h.ledgerService.BalancesAsOf(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balances)
}

// ListMovements returns the movement audit trail of an entry
func (h *LedgerHandler) ListMovements(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	movements, err := h.ledgerService.ListMovements(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, movements)
}

// GetAvailability returns the available cleaned weight for a series,
// or for an owner's seed type across warehouses when none is named
func (h *LedgerHandler) GetAvailability(c *gin.Context) {
	var req AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	if req.WarehouseID == "" {
		availability, err := h.ledgerService.AvailableCleanedAllWarehouses(c.Request.Context(),
			uuid.MustParse(req.OwnerID), uuid.MustParse(req.SeedTypeID))
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, availability)
		return
	}

	series := ledger.Series{
		OwnerID:     uuid.MustParse(req.OwnerID),
		WarehouseID: uuid.MustParse(req.WarehouseID),
		SeedTypeID:  uuid.MustParse(req.SeedTypeID),
	}

	availability, err := h.ledgerService.AvailableCleaned(c.Request.Context(), series)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, availability)
}

// ChangeEntryDate moves an entry to a new logical date
func (h *LedgerHandler) ChangeEntryDate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	var req ChangeEntryDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	newDate, err := parseDate(req.EntryDate)
	if err != nil {
		h.BadRequest(c, "Invalid entry date")
		return
	}

	entry, err := h.ledgerService.ChangeEntryDate(c.Request.Context(), id, *newDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}
