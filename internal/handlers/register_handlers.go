package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/foyerhq/foyer-backend/internal/apperrors"
	"github.com/foyerhq/foyer-backend/internal/core/domain"
	portsrepo "github.com/foyerhq/foyer-backend/internal/core/ports/repositories"
	portssvc "github.com/foyerhq/foyer-backend/internal/core/ports/services"
	"github.com/foyerhq/foyer-backend/internal/middleware"
	"github.com/foyerhq/foyer-backend/pkg/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	apiTokenRepo portsrepo.APITokenRepositoryFacade,
	webhookLimiter *limiter.Limiter,
) {
	// Health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	setupAPIV1Routes(r, cfg, services)
	setupWebhookRoutes(r, services, apiTokenRepo, webhookLimiter)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	registerLedgerRoutes(v1, services.Ledger, services.Payment)
	registerMandateRoutes(v1, services.Mandate)
	registerExpenseRoutes(v1, services.Expense)
}

// setupWebhookRoutes configures the payment-provider webhook surface: API
// token auth plus IP rate limiting instead of user JWTs.
func setupWebhookRoutes(
	r *gin.Engine,
	services *portssvc.ServiceContainer,
	apiTokenRepo portsrepo.APITokenRepositoryFacade,
	webhookLimiter *limiter.Limiter,
) {
	webhooks := r.Group("/webhooks",
		middleware.RateLimit(webhookLimiter),
		middleware.APITokenAuthMiddleware(apiTokenRepo),
	)
	registerWebhookRoutes(webhooks, services.Payment)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// respondServiceError maps service errors onto HTTP statuses. Client mistakes
// become 4xx with the wrapped message; anything else is a 500 with a generic
// body so internals never leak.
func respondServiceError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrInvalidAmount),
		errors.Is(err, apperrors.ErrSelfTransfer),
		errors.Is(err, apperrors.ErrEmptyCart),
		errors.Is(err, apperrors.ErrInvalidProduct),
		errors.Is(err, apperrors.ErrInvalidQuantity):
		logger.Warn("Request rejected", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden),
		errors.Is(err, apperrors.ErrNotFamilyMember):
		logger.Warn("Request forbidden", slog.String("error", err.Error()))
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrAlreadyCancelled),
		errors.Is(err, apperrors.ErrNotCancellable),
		errors.Is(err, apperrors.ErrMandateAlreadyActive),
		errors.Is(err, apperrors.ErrGroupEmpty):
		logger.Warn("Request conflicts with resource state", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInsufficientFunds),
		errors.Is(err, apperrors.ErrWalletDeactivated),
		errors.Is(err, apperrors.ErrWalletDeleted):
		logger.Warn("Request not processable", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// walletRefFromPath builds a wallet ref from the :source/:walletID path params.
func walletRefFromPath(c *gin.Context) (domain.WalletRef, bool) {
	source := domain.WalletSource(c.Param("source"))
	if source != domain.SourcePersonal && source != domain.SourceFamily {
		c.JSON(http.StatusBadRequest, gin.H{"error": "wallet source must be PERSONAL or FAMILY"})
		return domain.WalletRef{}, false
	}
	return domain.WalletRef{Source: source, ID: c.Param("walletID")}, true
}
