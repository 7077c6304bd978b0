package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	lendingapp "github.com/mfin/backend/internal/application/lending"
	"github.com/mfin/backend/internal/domain/lending"
	"github.com/mfin/backend/internal/domain/shared"
)

// LoanProductHandler handles loan product API endpoints
type LoanProductHandler struct {
	BaseHandler
	loanService *lendingapp.LoanService
}

// NewLoanProductHandler creates a new LoanProductHandler
func NewLoanProductHandler(loanService *lendingapp.LoanService) *LoanProductHandler {
	return &LoanProductHandler{
		loanService: loanService,
	}
}

// CreateLoanProductRequest represents a request to create a loan product
// @Description Request body for creating a loan product
type CreateLoanProductRequest struct {
	Code              string  `json:"code" binding:"required,min=1,max=50" example:"WC-12M"`
	Name              string  `json:"name" binding:"required,min=1,max=200" example:"Working Capital 12 Months"`
	AnnualRatePercent float64 `json:"annual_rate_percent" binding:"gte=0" example:"24.0"`
	TermCount         int     `json:"term_count" binding:"required,min=1" example:"12"`
	TermUnit          string  `json:"term_unit" binding:"required,oneof=DAYS MONTHS" example:"MONTHS"`
	Frequency         string  `json:"frequency" binding:"required,oneof=WEEKLY BIWEEKLY MONTHLY" example:"MONTHLY"`
	Method            string  `json:"method" binding:"required,oneof=FLAT REDUCING_BALANCE" example:"REDUCING_BALANCE"`
	MinPrincipal      float64 `json:"min_principal" binding:"gte=0" example:"1000.00"`
	MaxPrincipal      float64 `json:"max_principal" binding:"gte=0" example:"50000.00"`
}

// ListLoanProductsQuery represents query parameters for listing loan products
// @Description Query parameters for the loan product list endpoint
type ListLoanProductsQuery struct {
	Active   *bool  `form:"active"`
	Method   string `form:"method" binding:"omitempty,oneof=FLAT REDUCING_BALANCE"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// Create godoc
// @ID           createLoanProduct
// @Summary      Create a loan product
// @Description  Register a new loan product in the catalog
// @Tags         loan-products
// @Accept       json
// @Produce      json
// @Param        request body CreateLoanProductRequest true "Product creation request"
// @Success      201 {object} APIResponse[lendingapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /lending/products [post]
func (h *LoanProductHandler) Create(c *gin.Context) {
	var req CreateLoanProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := lendingapp.CreateProductRequest{
		Code:              req.Code,
		Name:              req.Name,
		AnnualRatePercent: toDecimal(req.AnnualRatePercent),
		TermCount:         req.TermCount,
		TermUnit:          req.TermUnit,
		Frequency:         req.Frequency,
		Method:            req.Method,
		MinPrincipal:      toDecimal(req.MinPrincipal),
		MaxPrincipal:      toDecimal(req.MaxPrincipal),
	}

	product, err := h.loanService.CreateProduct(c.Request.Context(), appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, product)
}

// GetByID godoc
// @ID           getLoanProductById
// @Summary      Get loan product by ID
// @Description  Retrieve a loan product by its ID
// @Tags         loan-products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[lendingapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /lending/products/{id} [get]
func (h *LoanProductHandler) GetByID(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	product, err := h.loanService.GetProduct(c.Request.Context(), productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, product)
}

// List godoc
// @ID           listLoanProducts
// @Summary      List loan products
// @Description  Retrieve a paginated list of loan products with optional filtering
// @Tags         loan-products
// @Produce      json
// @Param        active query bool false "Filter by active flag"
// @Param        method query string false "Interest method" Enums(FLAT, REDUCING_BALANCE)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(code)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(asc)
// @Success      200 {object} APIResponse[[]lendingapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /lending/products [get]
func (h *LoanProductHandler) List(c *gin.Context) {
	var query ListLoanProductsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	// Set defaults
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = 20
	}

	filter := lending.LoanProductFilter{
		Filter: shared.Filter{
			Page:     query.Page,
			PageSize: query.PageSize,
			OrderBy:  query.OrderBy,
			OrderDir: query.OrderDir,
		},
		Active: query.Active,
	}
	if query.Method != "" {
		method := lending.InterestMethod(query.Method)
		filter.Method = &method
	}

	products, total, err := h.loanService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, products, total, query.Page, query.PageSize)
}

// Deactivate godoc
// @ID           deactivateLoanProduct
// @Summary      Deactivate a loan product
// @Description  Retire a product so no new loans can reference it
// @Tags         loan-products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[lendingapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /lending/products/{id}/deactivate [post]
func (h *LoanProductHandler) Deactivate(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	product, err := h.loanService.DeactivateProduct(c.Request.Context(), productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, product)
}
