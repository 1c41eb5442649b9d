package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shelfmate/shelfmate/internal/audit"
	"github.com/shelfmate/shelfmate/internal/auth"
)

// ProgressPruner removes an account's progress document on account deletion.
type ProgressPruner interface {
	Delete(accountID uint) error
}

type ProfileController struct {
	authService    *auth.Service
	sessionManager *auth.SessionManager
	pruner         ProgressPruner
	auditor        *audit.Auditor
}

func NewProfileController(authService *auth.Service, sessionManager *auth.SessionManager, pruner ProgressPruner, auditor *audit.Auditor) *ProfileController {
	return &ProfileController{
		authService:    authService,
		sessionManager: sessionManager,
		pruner:         pruner,
		auditor:        auditor,
	}
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePassword updates the account password after verifying the old one.
// POST /api/profile/password
func (pc *ProfileController) ChangePassword(c *gin.Context) {
	userID := GetUserID(c)

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "old_password and new_password are required")
		return
	}

	err := pc.authService.ChangePassword(userID, req.OldPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidPassword):
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error: "old password is incorrect",
				Code:  "invalid_credentials",
			})
		case errors.Is(err, auth.ErrPasswordTooShort):
			respondBadRequest(c, "password must be at least 10 characters")
		case errors.Is(err, auth.ErrPasswordTooLong):
			respondBadRequest(c, "password exceeds maximum length of 72 characters")
		default:
			respondInternalError(c, err, "change password")
		}
		return
	}

	pc.recordAudit(audit.EventPasswordChange, userID, c)

	respondSuccess(c, "password changed")
}

type deleteAccountRequest struct {
	Password string `json:"password" binding:"required"`
}

// DeleteAccount removes the account, its progress document and the session.
// DELETE /api/account
func (pc *ProfileController) DeleteAccount(c *gin.Context) {
	userID := GetUserID(c)

	var req deleteAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "password is required")
		return
	}

	if err := pc.authService.DeleteAccount(userID, req.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error: "password is incorrect",
				Code:  "invalid_credentials",
			})
			return
		}
		respondInternalError(c, err, "delete account")
		return
	}

	// A stale progress document must not outlive its account.
	if pc.pruner != nil {
		if err := pc.pruner.Delete(userID); err != nil {
			log.Printf("Failed to prune progress for account %d: %v", userID, err)
		}
	}

	if pc.sessionManager != nil {
		_ = pc.sessionManager.DestroySession(c.Request)
	}

	pc.recordAudit(audit.EventAccountDelete, userID, c)

	respondSuccess(c, "account deleted")
}

func (pc *ProfileController) recordAudit(eventType string, userID uint, c *gin.Context) {
	if pc.auditor == nil {
		return
	}
	if _, err := pc.auditor.Record(audit.Event{
		Type:      eventType,
		AccountID: userID,
		ClientIP:  c.ClientIP(),
	}); err != nil {
		log.Printf("Failed to record audit event %s: %v", eventType, err)
	}
}
