package handlers

import (
	"net/http"

	portssvc "github.com/foyerhq/foyer-backend/internal/core/ports/services"
	"github.com/foyerhq/foyer-backend/internal/dto"
	"github.com/foyerhq/foyer-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// expenseHandler handles HTTP requests for shop operating expenses.
type expenseHandler struct {
	expenseService portssvc.ExpenseSvcFacade
}

// newExpenseHandler creates a new expenseHandler.
func newExpenseHandler(expenseService portssvc.ExpenseSvcFacade) *expenseHandler {
	return &expenseHandler{expenseService: expenseService}
}

// recordExpense godoc
// @Summary Record a shop operating expense
// @Tags expenses
// @Accept json
// @Produce json
// @Param expense body dto.RecordExpenseRequest true "Expense"
// @Success 201 {object} domain.Expense
// @Failure 400 {object} map[string]string "Invalid request"
// @Router /expenses [post]
func (h *expenseHandler) recordExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RecordExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	issuerID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	expense, err := h.expenseService.RecordExpense(c.Request.Context(), req, issuerID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to record expense")
		return
	}
	c.JSON(http.StatusCreated, expense)
}

// listExpenses godoc
// @Summary List a shop's expenses within a time window
// @Tags expenses
// @Produce json
// @Param shopID path string true "Shop ID"
// @Param from query string true "Window start (RFC3339)"
// @Param to query string true "Window end (RFC3339)"
// @Success 200 {array} domain.Expense
// @Router /shops/{shopID}/expenses [get]
func (h *expenseHandler) listExpenses(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListExpensesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	expenses, err := h.expenseService.ListExpenses(c.Request.Context(), c.Param("shopID"), params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list expenses")
		return
	}
	c.JSON(http.StatusOK, expenses)
}

// registerExpenseRoutes registers expense specific routes
func registerExpenseRoutes(group *gin.RouterGroup, expenseService portssvc.ExpenseSvcFacade) {
	h := newExpenseHandler(expenseService)

	group.POST("/expenses", h.recordExpense)
	group.GET("/shops/:shopID/expenses", h.listExpenses)
}
