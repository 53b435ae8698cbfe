package handlers

import (
	"net/http"
	"time"

	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/models"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/pkg"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/services"

	"github.com/gin-gonic/gin"
)

// SharingHandler handles folder shares, direct file shares and token links
type SharingHandler struct {
	sharingService     *services.SharingService
	fileSharingService *services.FileSharingService
}

// NewSharingHandler creates a new sharing handler
func NewSharingHandler(sharingService *services.SharingService, fileSharingService *services.FileSharingService) *SharingHandler {
	return &SharingHandler{
		sharingService:     sharingService,
		fileSharingService: fileSharingService,
	}
}

// ShareFolderRequest represents folder share creation request
type ShareFolderRequest struct {
	FolderID    string     `json:"folderId" binding:"required"`
	TargetEmail string     `json:"targetEmail" binding:"required,email"`
	Permission  string     `json:"permission" binding:"required"`
	Message     string     `json:"message" binding:"max=500"`
	Password    string     `json:"password"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

// RespondRequest represents a share response
type RespondRequest struct {
	Accept bool `json:"accept"`
}

// ShareFileRequest represents a direct file share request
type ShareFileRequest struct {
	FileID      string `json:"fileId" binding:"required"`
	TargetEmail string `json:"targetEmail" binding:"required,email"`
	Message     string `json:"message" binding:"max=500"`
}

// CreatePublicShareRequest represents a token link creation request
type CreatePublicShareRequest struct {
	FileID         string `json:"fileId" binding:"required"`
	Password       string `json:"password"`
	AllowDownload  bool   `json:"allowDownload"`
	ExpirationDays int    `json:"expirationDays" binding:"min=0,max=365"`
}

// ShareFolder creates a pending folder share
func (h *SharingHandler) ShareFolder(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req ShareFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		pkg.ErrorResponse(c, pkg.ErrInvalidInput.WithMessage(err.Error()))
		return
	}

	folderID, ok := parseOptionalID(c, &req.FolderID)
	if !ok || folderID == nil {
		return
	}

	share, err := h.sharingService.ShareFolder(c.Request.Context(), userID, &services.ShareFolderRequest{
		FolderID:    *folderID,
		TargetEmail: req.TargetEmail,
		Permission:  models.PermissionType(req.Permission),
		Message:     req.Message,
		Password:    req.Password,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.SuccessResponse(c, http.StatusCreated, "Folder shared", share)
}

// RespondToFolderShare accepts or rejects a pending folder share
func (h *SharingHandler) RespondToFolderShare(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	shareID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		pkg.ErrorResponse(c, pkg.ErrInvalidInput.WithMessage(err.Error()))
		return
	}

	share, err := h.sharingService.Respond(c.Request.Context(), shareID, userID, req.Accept)
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.SuccessResponse(c, http.StatusOK, "Share response recorded", share)
}

// RevokeFolderShare withdraws a folder share
func (h *SharingHandler) RevokeFolderShare(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	shareID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	share, err := h.sharingService.Revoke(c.Request.Context(), shareID, userID)
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.SuccessResponse(c, http.StatusOK, "Share revoked", share)
}

// RemoveUserFromFolder revokes a folder share looked up by target email
func (h *SharingHandler) RemoveUserFromFolder(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	folderID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	email := c.Query("email")
	if email == "" {
		pkg.ErrorResponse(c, pkg.ErrInvalidInput.WithMessage("Target email is required"))
		return
	}

	share, err := h.sharingService.RemoveUserFromFolder(c.Request.Context(), folderID, userID, email)
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.SuccessResponse(c, http.StatusOK, "User removed from folder", share)
}

// ListFolderSharesByMe lists shares the caller handed out
func (h *SharingHandler) ListFolderSharesByMe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	params := pkg.NewPaginationParams(c)
	shares, total, err := h.sharingService.ListSharedByMe(c.Request.Context(), userID, params)
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.PagedResponse(c, "Shares retrieved", shares, pkg.NewPaginationMeta(params, total))
}

// ListFolderSharesWithMe lists shares addressed to the caller. The optional
// status query narrows to one lifecycle state.
func (h *SharingHandler) ListFolderSharesWithMe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var statuses []models.ShareStatus
	if raw := c.Query("status"); raw != "" {
		statuses = append(statuses, models.ShareStatus(raw))
	}

	params := pkg.NewPaginationParams(c)
	shares, total, err := h.sharingService.ListSharedWithMe(c.Request.Context(), userID, statuses, params)
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.PagedResponse(c, "Shares retrieved", shares, pkg.NewPaginationMeta(params, total))
}

// ResolveFolderAccess reports the caller's permission level over a folder
func (h *SharingHandler) ResolveFolderAccess(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	folderID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	permission, err := h.sharingService.ResolveAccess(c.Request.Context(), folderID, userID)
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.SuccessResponse(c, http.StatusOK, "Access resolved", gin.H{
		"permission": permission,
	})
}

// ShareFile offers a file directly to another user
func (h *SharingHandler) ShareFile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req ShareFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		pkg.ErrorResponse(c, pkg.ErrInvalidInput.WithMessage(err.Error()))
		return
	}

	fileID, ok := parseOptionalID(c, &req.FileID)
	if !ok || fileID == nil {
		return
	}

	share, err := h.fileSharingService.ShareFile(c.Request.Context(), userID, &services.ShareFileRequest{
		FileID:      *fileID,
		TargetEmail: req.TargetEmail,
		Message:     req.Message,
	})
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.SuccessResponse(c, http.StatusCreated, "File shared", share)
}

// RespondToFileShare accepts or rejects a direct file share
func (h *SharingHandler) RespondToFileShare(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	shareID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		pkg.ErrorResponse(c, pkg.ErrInvalidInput.WithMessage(err.Error()))
		return
	}

	share, err := h.fileSharingService.Respond(c.Request.Context(), shareID, userID, req.Accept)
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.SuccessResponse(c, http.StatusOK, "Share response recorded", share)
}

// RevokeFileShare withdraws a direct file share
func (h *SharingHandler) RevokeFileShare(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	shareID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.fileSharingService.Revoke(c.Request.Context(), shareID, userID); err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.SuccessResponse(c, http.StatusOK, "Share revoked", nil)
}

// ListFileSharesByMe lists the direct file shares the caller handed out
func (h *SharingHandler) ListFileSharesByMe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	params := pkg.NewPaginationParams(c)
	shares, total, err := h.fileSharingService.ListSharedByMe(c.Request.Context(), userID, params)
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.PagedResponse(c, "Shares retrieved", shares, pkg.NewPaginationMeta(params, total))
}

// ListFileSharesWithMe lists direct file shares addressed to the caller
func (h *SharingHandler) ListFileSharesWithMe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	params := pkg.NewPaginationParams(c)
	shares, total, err := h.fileSharingService.ListSharedWithMe(c.Request.Context(), userID, params)
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.PagedResponse(c, "Shares retrieved", shares, pkg.NewPaginationMeta(params, total))
}

// CreatePublicShare exposes a file through a token link
func (h *SharingHandler) CreatePublicShare(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req CreatePublicShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		pkg.ErrorResponse(c, pkg.ErrInvalidInput.WithMessage(err.Error()))
		return
	}

	fileID, ok := parseOptionalID(c, &req.FileID)
	if !ok || fileID == nil {
		return
	}

	share, err := h.fileSharingService.CreatePublicShare(c.Request.Context(), userID, &services.CreatePublicShareRequest{
		FileID:         *fileID,
		Password:       req.Password,
		AllowDownload:  req.AllowDownload,
		ExpirationDays: req.ExpirationDays,
	})
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.SuccessResponse(c, http.StatusCreated, "Public share created", share)
}

// ResolvePublicShare grants access through a share token. Unauthenticated:
// the token is the credential.
func (h *SharingHandler) ResolvePublicShare(c *gin.Context) {
	token := c.Param("token")
	password := c.Query("password")

	share, file, err := h.fileSharingService.ResolveToken(c.Request.Context(), token, password)
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.SuccessResponse(c, http.StatusOK, "Share resolved", gin.H{
		"share": share,
		"file":  file,
	})
}

// DownloadPublicShare streams a token-shared file when downloads are allowed
func (h *SharingHandler) DownloadPublicShare(c *gin.Context) {
	token := c.Param("token")
	password := c.Query("password")

	file, reader, err := h.fileSharingService.DownloadByToken(c.Request.Context(), token, password)
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	c.DataFromReader(http.StatusOK, file.Size, file.ContentType, reader, nil)
}

// DeactivatePublicShare turns a token link off
func (h *SharingHandler) DeactivatePublicShare(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	shareID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.fileSharingService.DeactivatePublicShare(c.Request.Context(), shareID, userID); err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.SuccessResponse(c, http.StatusOK, "Public share deactivated", nil)
}

// ListPublicShares lists the caller's token links
func (h *SharingHandler) ListPublicShares(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	params := pkg.NewPaginationParams(c)
	shares, total, err := h.fileSharingService.ListPublicShares(c.Request.Context(), userID, params)
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.PagedResponse(c, "Public shares retrieved", shares, pkg.NewPaginationMeta(params, total))
}
