package handlers

import (
	"net/http"

	"github.com/foyerhq/foyer-backend/internal/core/domain"
	portssvc "github.com/foyerhq/foyer-backend/internal/core/ports/services"
	"github.com/foyerhq/foyer-backend/internal/dto"
	"github.com/foyerhq/foyer-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler handles HTTP requests for ledger operations.
type ledgerHandler struct {
	ledgerService  portssvc.LedgerSvcFacade
	paymentService portssvc.PaymentSvcFacade
}

// newLedgerHandler creates a new ledgerHandler.
func newLedgerHandler(ledgerService portssvc.LedgerSvcFacade, paymentService portssvc.PaymentSvcFacade) *ledgerHandler {
	return &ledgerHandler{
		ledgerService:  ledgerService,
		paymentService: paymentService,
	}
}

// transfer godoc
// @Summary Transfer money between two personal wallets
// @Tags ledger
// @Accept json
// @Produce json
// @Param transfer body dto.TransferRequest true "Transfer"
// @Success 204
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 422 {object} map[string]string "Insufficient funds"
// @Router /transfers [post]
func (h *ledgerHandler) transfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	issuerID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.ledgerService.Transfer(c.Request.Context(), req.SenderID, req.ReceiverID, req.Amount, req.Note, issuerID); err != nil {
		respondServiceError(c, logger, err, "Failed to transfer")
		return
	}
	c.Status(http.StatusNoContent)
}

// topUp godoc
// @Summary Credit a wallet with an already-settled payment
// @Tags ledger
// @Accept json
// @Produce json
// @Param topup body dto.TopUpRequest true "Top-up"
// @Success 204
// @Failure 400 {object} map[string]string "Invalid request"
// @Router /topups [post]
func (h *ledgerHandler) topUp(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	issuerID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	target := domain.WalletRef{Source: req.WalletSource, ID: req.TargetID}
	if err := h.ledgerService.TopUp(c.Request.Context(), issuerID, target, req.Amount, req.MethodLabel); err != nil {
		respondServiceError(c, logger, err, "Failed to top up")
		return
	}
	c.Status(http.StatusNoContent)
}

// initiateTopUp godoc
// @Summary Start an external provider top-up
// @Tags ledger
// @Accept json
// @Produce json
// @Param topup body dto.InitiateTopUpRequest true "Top-up initiation"
// @Success 200 {object} map[string]string "Returns the external reference"
// @Failure 400 {object} map[string]string "Invalid request"
// @Router /topups/initiate [post]
func (h *ledgerHandler) initiateTopUp(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.InitiateTopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	externalRef, err := h.paymentService.InitiateTopUp(c.Request.Context(), req.UserID, req.Amount, req.Provider)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to initiate top-up")
		return
	}
	c.JSON(http.StatusOK, gin.H{"externalRef": externalRef})
}

// purchase godoc
// @Summary Debit a payer for a cart of products
// @Tags ledger
// @Accept json
// @Produce json
// @Param purchase body dto.PurchaseRequest true "Purchase"
// @Success 204
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 422 {object} map[string]string "Insufficient funds"
// @Router /purchases [post]
func (h *ledgerHandler) purchase(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	issuerID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.ledgerService.Purchase(c.Request.Context(), req, issuerID); err != nil {
		respondServiceError(c, logger, err, "Failed to record purchase")
		return
	}
	c.Status(http.StatusNoContent)
}

// adjust godoc
// @Summary Apply a signed manual correction to a wallet
// @Tags ledger
// @Accept json
// @Produce json
// @Param adjustment body dto.AdjustmentRequest true "Adjustment"
// @Success 204
// @Failure 400 {object} map[string]string "Invalid request"
// @Router /adjustments [post]
func (h *ledgerHandler) adjust(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	issuerID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	target := domain.WalletRef{Source: req.WalletSource, ID: req.TargetID}
	if err := h.ledgerService.AdminAdjustment(c.Request.Context(), issuerID, target, req.Amount, req.Description, req.GroupID); err != nil {
		respondServiceError(c, logger, err, "Failed to apply adjustment")
		return
	}
	c.Status(http.StatusNoContent)
}

// getEntry godoc
// @Summary Get a ledger entry
// @Tags ledger
// @Produce json
// @Param entryID path string true "Entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Router /entries/{entryID} [get]
func (h *ledgerHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	entry, err := h.ledgerService.GetEntry(c.Request.Context(), c.Param("entryID"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// cancelEntry godoc
// @Summary Cancel a ledger entry
// @Description Reverses the entry with a compensating entry. Transfer legs are reversed in pairs.
// @Tags ledger
// @Produce json
// @Param entryID path string true "Entry ID"
// @Success 204
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry not cancellable"
// @Router /entries/{entryID}/cancel [post]
func (h *ledgerHandler) cancelEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	performedByID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.ledgerService.CancelTransaction(c.Request.Context(), c.Param("entryID"), performedByID); err != nil {
		respondServiceError(c, logger, err, "Failed to cancel entry")
		return
	}
	c.Status(http.StatusNoContent)
}

// cancelGroup godoc
// @Summary Cancel every entry of a bulk group
// @Tags ledger
// @Produce json
// @Param groupID path string true "Group ID"
// @Success 200 {object} map[string]int "Number of reversed entries"
// @Failure 409 {object} map[string]string "No cancellable entries"
// @Router /entry-groups/{groupID}/cancel [post]
func (h *ledgerHandler) cancelGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	performedByID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	reversed, err := h.ledgerService.CancelTransactionGroup(c.Request.Context(), c.Param("groupID"), performedByID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to cancel group")
		return
	}
	c.JSON(http.StatusOK, gin.H{"reversedCount": reversed})
}

// updateQuantity godoc
// @Summary Correct the quantity of a purchase line
// @Description Refunds the original line and supersedes it with one for the lower quantity. Zero cancels outright.
// @Tags ledger
// @Accept json
// @Produce json
// @Param entryID path string true "Entry ID"
// @Param correction body dto.UpdateQuantityRequest true "Quantity correction"
// @Success 204
// @Failure 400 {object} map[string]string "Invalid quantity"
// @Router /entries/{entryID}/quantity [patch]
func (h *ledgerHandler) updateQuantity(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	performedByID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.ledgerService.UpdateTransactionQuantity(c.Request.Context(), c.Param("entryID"), req.NewQuantity, performedByID); err != nil {
		respondServiceError(c, logger, err, "Failed to correct quantity")
		return
	}
	c.Status(http.StatusNoContent)
}

// listWalletEntries godoc
// @Summary List a wallet's entries, newest first
// @Tags ledger
// @Produce json
// @Param source path string true "Wallet source (PERSONAL or FAMILY)"
// @Param walletID path string true "Wallet ID"
// @Param limit query int false "Page size"
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListEntriesResponse
// @Router /wallets/{source}/{walletID}/entries [get]
func (h *ledgerHandler) listWalletEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	wallet, ok := walletRefFromPath(c)
	if !ok {
		return
	}
	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	page, err := h.ledgerService.ListWalletEntries(c.Request.Context(), wallet, params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list entries")
		return
	}
	c.JSON(http.StatusOK, page)
}

// getBalance godoc
// @Summary Get a wallet's current balance
// @Tags ledger
// @Produce json
// @Param source path string true "Wallet source (PERSONAL or FAMILY)"
// @Param walletID path string true "Wallet ID"
// @Success 200 {object} map[string]int64
// @Router /wallets/{source}/{walletID}/balance [get]
func (h *ledgerHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	wallet, ok := walletRefFromPath(c)
	if !ok {
		return
	}

	balance, err := h.ledgerService.GetBalance(c.Request.Context(), wallet)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to get balance")
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// registerLedgerRoutes registers ledger specific routes
func registerLedgerRoutes(group *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade, paymentService portssvc.PaymentSvcFacade) {
	h := newLedgerHandler(ledgerService, paymentService)

	group.POST("/transfers", h.transfer)
	group.POST("/topups", h.topUp)
	group.POST("/topups/initiate", h.initiateTopUp)
	group.POST("/purchases", h.purchase)
	group.POST("/adjustments", h.adjust)

	entries := group.Group("/entries")
	{
		entries.GET("/:entryID", h.getEntry)
		entries.POST("/:entryID/cancel", h.cancelEntry)
		entries.PATCH("/:entryID/quantity", h.updateQuantity)
	}
	group.POST("/entry-groups/:groupID/cancel", h.cancelGroup)

	wallets := group.Group("/wallets/:source/:walletID")
	{
		wallets.GET("/entries", h.listWalletEntries)
		wallets.GET("/balance", h.getBalance)
	}
}
