package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	lendingapp "github.com/mfin/backend/internal/application/lending"
)

// PortfolioHandler handles portfolio reporting API endpoints
type PortfolioHandler struct {
	BaseHandler
	portfolioService *lendingapp.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolioService *lendingapp.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
	}
}

// Summary godoc
// @ID           getPortfolioSummary
// @Summary      Get portfolio summary
// @Description  Aggregate outstanding exposure and PAR rates across active loans
// @Tags         portfolio
// @Produce      json
// @Param        as_of query string false "Reporting date, defaults to today" format(date)
// @Success      200 {object} APIResponse[lendingapp.PortfolioSummary]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /lending/portfolio/summary [get]
func (h *PortfolioHandler) Summary(c *gin.Context) {
	asOf := time.Now()
	if asOfStr, ok := c.GetQuery("as_of"); ok {
		parsed, err := parseDate(asOfStr)
		if err != nil {
			h.BadRequest(c, "Invalid as_of date format")
			return
		}
		asOf = parsed
	}

	summary, err := h.portfolioService.Summarize(c.Request.Context(), asOf)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, summary)
}
