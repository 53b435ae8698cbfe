package handlers

import (
	"net/http"

	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/pkg"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/services"

	"github.com/gin-gonic/gin"
)

// AccountHandler handles the caller's own account
type AccountHandler struct {
	accountService *services.AccountService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accountService *services.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// ConfirmEmailRequest carries the emailed verification code
type ConfirmEmailRequest struct {
	Code string `json:"code" binding:"required,len=6"`
}

// Profile returns the caller's account record
func (h *AccountHandler) Profile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	user, err := h.accountService.Profile(c.Request.Context(), userID)
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.SuccessResponse(c, http.StatusOK, "Profile retrieved", user)
}

// RequestEmailVerification mails a fresh verification code to the caller
func (h *AccountHandler) RequestEmailVerification(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.accountService.RequestEmailVerification(c.Request.Context(), userID); err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.SuccessResponse(c, http.StatusOK, "Verification code sent", nil)
}

// ConfirmEmail checks the code and marks the caller's address verified
func (h *AccountHandler) ConfirmEmail(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req ConfirmEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		pkg.ErrorResponse(c, pkg.ErrInvalidInput.WithMessage(err.Error()))
		return
	}

	user, err := h.accountService.ConfirmEmail(c.Request.Context(), userID, req.Code)
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.SuccessResponse(c, http.StatusOK, "Email verified", user)
}
