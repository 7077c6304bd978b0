package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	lendingapp "github.com/mfin/backend/internal/application/lending"
)

// LoanHandler handles loan lifecycle API endpoints
type LoanHandler struct {
	BaseHandler
	loanService *lendingapp.LoanService
}

// NewLoanHandler creates a new LoanHandler
func NewLoanHandler(loanService *lendingapp.LoanService) *LoanHandler {
	return &LoanHandler{
		loanService: loanService,
	}
}

// CreateLoanRequest represents a request to register a loan application
// @Description Request body for creating a loan application
type CreateLoanRequest struct {
	ProductID       string  `json:"product_id" binding:"required,uuid" example:"7b9d2433-68a7-4a1c-a533-14000b0f2f55"`
	MemberID        string  `json:"member_id" binding:"required,uuid" example:"52ac09ab-4f15-4b02-9b64-8b4ec4e087c5"`
	Principal       float64 `json:"principal" binding:"required,gt=0" example:"12000.00"`
	ApplicationDate *string `json:"application_date" example:"2026-08-01"`
}

// ReasonRequest carries a free-form reason for reject, cancel and write-off
// @Description Request body with a reason field
type ReasonRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500" example:"Insufficient repayment capacity"`
}

// RecordRepaymentRequest represents a request to record a repayment
// @Description Request body for recording a repayment against a loan
type RecordRepaymentRequest struct {
	Amount            float64 `json:"amount" binding:"required,gt=0" example:"1050.00"`
	PaymentDate       *string `json:"payment_date" example:"2026-08-28"`
	ExternalReference string  `json:"external_reference" binding:"max=100" example:"MPESA-QX12345"`
	AllowOverpayment  bool    `json:"allow_overpayment" example:"false"`
}

// parseDate accepts dates with or without a time component
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// Create godoc
// @ID           createLoan
// @Summary      Create a loan application
// @Description  Register a new loan application in pending status
// @Tags         loans
// @Accept       json
// @Produce      json
// @Param        request body CreateLoanRequest true "Loan creation request"
// @Success      201 {object} APIResponse[lendingapp.LoanResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /lending/loans [post]
func (h *LoanHandler) Create(c *gin.Context) {
	var req CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}
	memberID, err := uuid.Parse(req.MemberID)
	if err != nil {
		h.BadRequest(c, "Invalid member ID format")
		return
	}

	appReq := lendingapp.CreateLoanRequest{
		ProductID: productID,
		MemberID:  memberID,
		Principal: toDecimal(req.Principal),
	}
	if req.ApplicationDate != nil {
		date, err := parseDate(*req.ApplicationDate)
		if err != nil {
			h.BadRequest(c, "Invalid application date format")
			return
		}
		appReq.ApplicationDate = &date
	}

	loan, err := h.loanService.CreateLoan(c.Request.Context(), appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, loan)
}

// GetByID godoc
// @ID           getLoanById
// @Summary      Get loan by ID
// @Description  Retrieve a loan by its ID
// @Tags         loans
// @Produce      json
// @Param        id path string true "Loan ID" format(uuid)
// @Success      200 {object} APIResponse[lendingapp.LoanResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /lending/loans/{id} [get]
func (h *LoanHandler) GetByID(c *gin.Context) {
	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid loan ID format")
		return
	}

	loan, err := h.loanService.GetLoan(c.Request.Context(), loanID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, loan)
}

// List godoc
// @ID           listLoans
// @Summary      List loans
// @Description  Retrieve a paginated list of loans with optional filtering
// @Tags         loans
// @Produce      json
// @Param        member_id query string false "Member ID" format(uuid)
// @Param        product_id query string false "Product ID" format(uuid)
// @Param        status query string false "Loan status" Enums(PENDING, APPROVED, REJECTED, CANCELLED, DISBURSED, CLOSED, WRITTEN_OFF)
// @Param        from_date query string false "Application date lower bound (inclusive)" format(date)
// @Param        to_date query string false "Application date upper bound (inclusive)" format(date)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]lendingapp.LoanResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /lending/loans [get]
func (h *LoanHandler) List(c *gin.Context) {
	var filter lendingapp.LoanListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	// Set defaults
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	loans, total, err := h.loanService.ListLoans(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, loans, total, filter.Page, filter.PageSize)
}

// Approve godoc
// @ID           approveLoan
// @Summary      Approve a loan
// @Description  Approve a pending loan application
// @Tags         loans
// @Produce      json
// @Param        id path string true "Loan ID" format(uuid)
// @Success      200 {object} APIResponse[lendingapp.LoanResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /lending/loans/{id}/approve [post]
func (h *LoanHandler) Approve(c *gin.Context) {
	h.transition(c, func(loanID uuid.UUID) (*lendingapp.LoanResponse, error) {
		return h.loanService.ApproveLoan(c.Request.Context(), loanID)
	})
}

// Reject godoc
// @ID           rejectLoan
// @Summary      Reject a loan
// @Description  Decline a pending loan application
// @Tags         loans
// @Accept       json
// @Produce      json
// @Param        id path string true "Loan ID" format(uuid)
// @Param        request body ReasonRequest true "Rejection reason"
// @Success      200 {object} APIResponse[lendingapp.LoanResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /lending/loans/{id}/reject [post]
func (h *LoanHandler) Reject(c *gin.Context) {
	var req ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	h.transition(c, func(loanID uuid.UUID) (*lendingapp.LoanResponse, error) {
		return h.loanService.RejectLoan(c.Request.Context(), loanID, req.Reason)
	})
}

// Cancel godoc
// @ID           cancelLoan
// @Summary      Cancel a loan
// @Description  Withdraw an approved loan before disbursement
// @Tags         loans
// @Accept       json
// @Produce      json
// @Param        id path string true "Loan ID" format(uuid)
// @Param        request body ReasonRequest true "Cancellation reason"
// @Success      200 {object} APIResponse[lendingapp.LoanResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /lending/loans/{id}/cancel [post]
func (h *LoanHandler) Cancel(c *gin.Context) {
	var req ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	h.transition(c, func(loanID uuid.UUID) (*lendingapp.LoanResponse, error) {
		return h.loanService.CancelLoan(c.Request.Context(), loanID, req.Reason)
	})
}

// Disburse godoc
// @ID           disburseLoan
// @Summary      Disburse a loan
// @Description  Release funds and generate the repayment schedule
// @Tags         loans
// @Produce      json
// @Param        id path string true "Loan ID" format(uuid)
// @Success      200 {object} APIResponse[lendingapp.LoanResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /lending/loans/{id}/disburse [post]
func (h *LoanHandler) Disburse(c *gin.Context) {
	h.transition(c, func(loanID uuid.UUID) (*lendingapp.LoanResponse, error) {
		return h.loanService.DisburseLoan(c.Request.Context(), loanID)
	})
}

// Close godoc
// @ID           closeLoan
// @Summary      Close a loan
// @Description  Close a fully settled loan
// @Tags         loans
// @Produce      json
// @Param        id path string true "Loan ID" format(uuid)
// @Success      200 {object} APIResponse[lendingapp.LoanResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /lending/loans/{id}/close [post]
func (h *LoanHandler) Close(c *gin.Context) {
	h.transition(c, func(loanID uuid.UUID) (*lendingapp.LoanResponse, error) {
		return h.loanService.CloseLoan(c.Request.Context(), loanID)
	})
}

// WriteOff godoc
// @ID           writeOffLoan
// @Summary      Write off a loan
// @Description  Write off a disbursed loan that will not be recovered
// @Tags         loans
// @Accept       json
// @Produce      json
// @Param        id path string true "Loan ID" format(uuid)
// @Param        request body ReasonRequest true "Write-off reason"
// @Success      200 {object} APIResponse[lendingapp.LoanResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /lending/loans/{id}/write-off [post]
func (h *LoanHandler) WriteOff(c *gin.Context) {
	var req ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	h.transition(c, func(loanID uuid.UUID) (*lendingapp.LoanResponse, error) {
		return h.loanService.WriteOffLoan(c.Request.Context(), loanID, req.Reason)
	})
}

// RecordRepayment godoc
// @ID           recordLoanRepayment
// @Summary      Record a repayment
// @Description  Allocate a payment against the loan's outstanding schedule
// @Tags         loans
// @Accept       json
// @Produce      json
// @Param        id path string true "Loan ID" format(uuid)
// @Param        request body RecordRepaymentRequest true "Repayment request"
// @Success      201 {object} APIResponse[lendingapp.RepaymentResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /lending/loans/{id}/repayments [post]
func (h *LoanHandler) RecordRepayment(c *gin.Context) {
	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid loan ID format")
		return
	}

	var req RecordRepaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := lendingapp.RecordRepaymentRequest{
		Amount:            toDecimal(req.Amount),
		ExternalReference: req.ExternalReference,
		AllowOverpayment:  req.AllowOverpayment,
	}
	if req.PaymentDate != nil {
		date, err := parseDate(*req.PaymentDate)
		if err != nil {
			h.BadRequest(c, "Invalid payment date format")
			return
		}
		appReq.PaymentDate = &date
	}

	result, err := h.loanService.RecordRepayment(c.Request.Context(), loanID, appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// GetSchedule godoc
// @ID           getLoanSchedule
// @Summary      Get the repayment schedule
// @Description  Retrieve the installment schedule for a loan
// @Tags         loans
// @Produce      json
// @Param        id path string true "Loan ID" format(uuid)
// @Success      200 {object} APIResponse[[]lendingapp.InstallmentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /lending/loans/{id}/schedule [get]
func (h *LoanHandler) GetSchedule(c *gin.Context) {
	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid loan ID format")
		return
	}

	schedule, err := h.loanService.GetSchedule(c.Request.Context(), loanID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, schedule)
}

// GetRepayments godoc
// @ID           getLoanRepayments
// @Summary      Get repayment history
// @Description  Retrieve all repayments recorded against a loan
// @Tags         loans
// @Produce      json
// @Param        id path string true "Loan ID" format(uuid)
// @Success      200 {object} APIResponse[[]lendingapp.RepaymentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /lending/loans/{id}/repayments [get]
func (h *LoanHandler) GetRepayments(c *gin.Context) {
	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid loan ID format")
		return
	}

	repayments, err := h.loanService.GetRepayments(c.Request.Context(), loanID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, repayments)
}

// GetOutstanding godoc
// @ID           getLoanOutstanding
// @Summary      Get outstanding balance
// @Description  Retrieve a loan's remaining principal and interest
// @Tags         loans
// @Produce      json
// @Param        id path string true "Loan ID" format(uuid)
// @Success      200 {object} APIResponse[lendingapp.OutstandingResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /lending/loans/{id}/outstanding [get]
func (h *LoanHandler) GetOutstanding(c *gin.Context) {
	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid loan ID format")
		return
	}

	outstanding, err := h.loanService.GetOutstanding(c.Request.Context(), loanID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, outstanding)
}

// ClassifyRisk godoc
// @ID           classifyLoanRisk
// @Summary      Classify loan risk
// @Description  Classify a loan into a portfolio-at-risk bucket as of a date
// @Tags         loans
// @Produce      json
// @Param        id path string true "Loan ID" format(uuid)
// @Param        as_of query string false "Classification date, defaults to today" format(date)
// @Success      200 {object} APIResponse[lendingapp.RiskResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /lending/loans/{id}/risk [get]
func (h *LoanHandler) ClassifyRisk(c *gin.Context) {
	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid loan ID format")
		return
	}

	asOf := time.Now()
	if asOfStr, ok := c.GetQuery("as_of"); ok {
		asOf, err = parseDate(asOfStr)
		if err != nil {
			h.BadRequest(c, "Invalid as_of date format")
			return
		}
	}

	risk, err := h.loanService.ClassifyRisk(c.Request.Context(), loanID, asOf)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, risk)
}

// transition parses the loan ID, runs the state change and renders the result
func (h *LoanHandler) transition(c *gin.Context, fn func(uuid.UUID) (*lendingapp.LoanResponse, error)) {
	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid loan ID format")
		return
	}

	loan, err := fn(loanID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, loan)
}
