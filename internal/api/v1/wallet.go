package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/renderbase/renderbase/internal/api/dto"
	"github.com/renderbase/renderbase/internal/domain/wallet"
	ierr "github.com/renderbase/renderbase/internal/errors"
	"github.com/renderbase/renderbase/internal/logger"
	"github.com/renderbase/renderbase/internal/service"
	"github.com/renderbase/renderbase/internal/types"
)

type WalletHandler struct {
	ledgerService service.LedgerService
	logger        *logger.Logger
}

func NewWalletHandler(ledgerService service.LedgerService, logger *logger.Logger) *WalletHandler {
	return &WalletHandler{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// GetBalance godoc
// @Summary Get wallet balance
// @Description Get the calling account's credit balance, creating the wallet on first access
// @Tags Wallet
// @Produce json
// @Success 200 {object} dto.WalletBalanceResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /wallet/balance [get]
func (h *WalletHandler) GetBalance(c *gin.Context) {
	ctx := c.Request.Context()

	accountID := types.GetAccountID(ctx)
	if accountID == "" {
		c.Error(ierr.NewError("account context missing").
			WithHint("Balance lookups require an authenticated account").
			Mark(ierr.ErrPermissionDenied))
		return
	}

	resp, err := h.ledgerService.GetBalance(ctx, accountID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListTransactions godoc
// @Summary List wallet transactions
// @Description List the calling account's credit transaction history
// @Tags Wallet
// @Produce json
// @Param type query string false "Filter by transaction type"
// @Param reason query string false "Filter by transaction reason"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} dto.ListWalletTransactionsResponse
// @Router /wallet/transactions [get]
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	ctx := c.Request.Context()

	accountID := types.GetAccountID(ctx)
	if accountID == "" {
		c.Error(ierr.NewError("account context missing").
			WithHint("Transaction listings require an authenticated account").
			Mark(ierr.ErrPermissionDenied))
		return
	}

	var filter types.TransactionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid transaction filter").
			Mark(ierr.ErrValidation))
		return
	}
	filter.AccountID = accountID

	resp, err := h.ledgerService.GetTransactions(ctx, &filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// AdjustCredits godoc
// @Summary Adjust account credits
// @Description Apply a manual credit or debit to an account's wallet (admin)
// @Tags Wallet
// @Accept json
// @Produce json
// @Param direction path string true "credit or debit"
// @Param request body dto.AdjustCreditsRequest true "Adjustment request"
// @Success 200 {object} dto.WalletTransactionResponse
// @Router /admin/wallet/{direction} [post]
func (h *WalletHandler) AdjustCredits(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.AdjustCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid adjustment request").
			Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	op := &wallet.Operation{
		AccountID:     req.AccountID,
		Amount:        req.Amount,
		Reason:        req.TransactionReason(),
		ReferenceType: types.WalletTxReferenceTypeManual,
		ReferenceID:   req.ReferenceID,
		Metadata:      req.Metadata,
	}

	var (
		resp *dto.WalletTransactionResponse
		err  error
	)

	switch c.Param("direction") {
	case "credit":
		resp, err = h.ledgerService.Credit(ctx, op)
	case "debit":
		resp, err = h.ledgerService.Debit(ctx, op)
	default:
		c.Error(ierr.NewError("unknown adjustment direction").
			WithHint("Direction must be credit or debit").
			Mark(ierr.ErrValidation))
		return
	}
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
