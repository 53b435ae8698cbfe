package handlers

import (
	"net/http"

	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/middleware"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/pkg"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FolderHandler handles folder management operations
type FolderHandler struct {
	folderService *services.FolderService
	fileService   *services.FileService
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folderService *services.FolderService, fileService *services.FileService) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
		fileService:   fileService,
	}
}

// CreateFolderRequest represents folder creation request
type CreateFolderRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=255"`
	ParentID    *string `json:"parentId,omitempty"`
	Color       string  `json:"color"`
	Description string  `json:"description" binding:"max=500"`
}

// RenameRequest represents folder rename request
type RenameRequest struct {
	Name string `json:"name" binding:"required,min=1,max=255"`
}

// MoveFolderRequest represents folder move request
type MoveFolderRequest struct {
	ParentID *string `json:"parentId"` // null for root
}

// CopyFolderRequest represents folder copy request
type CopyFolderRequest struct {
	ParentID *string `json:"parentId,omitempty"`
	Name     string  `json:"name,omitempty"`
}

// UpdateFolderRequest represents folder metadata update request
type UpdateFolderRequest struct {
	Color       *string `json:"color,omitempty"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=500"`
}

// BulkFolderRequest represents bulk folder operations
type BulkFolderRequest struct {
	FolderIDs []string `json:"folderIds" binding:"required,min=1"`
	ParentID  *string  `json:"parentId,omitempty"`
}

// requireUser reads the authenticated user or writes a 401
func requireUser(c *gin.Context) (primitive.ObjectID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		pkg.ErrorResponse(c, pkg.ErrInvalidToken.WithMessage("Authentication required"))
	}
	return userID, ok
}

// parseObjectID parses a path parameter as an ObjectID or writes a 400
func parseObjectID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		pkg.ErrorResponse(c, pkg.ErrInvalidInput.WithMessage("Invalid id"))
		return primitive.NilObjectID, false
	}
	return id, true
}

// parseOptionalID parses an optional hex id from a request body field
func parseOptionalID(c *gin.Context, raw *string) (*primitive.ObjectID, bool) {
	if raw == nil || *raw == "" {
		return nil, true
	}
	id, err := primitive.ObjectIDFromHex(*raw)
	if err != nil {
		pkg.ErrorResponse(c, pkg.ErrInvalidInput.WithMessage("Invalid folder id"))
		return nil, false
	}
	return &id, true
}

func parseIDList(c *gin.Context, raw []string) ([]primitive.ObjectID, bool) {
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, s := range raw {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			pkg.ErrorResponse(c, pkg.ErrInvalidInput.WithMessage("Invalid folder id"))
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

// Create creates a new folder
func (h *FolderHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		pkg.ErrorResponse(c, pkg.ErrInvalidInput.WithMessage(err.Error()))
		return
	}

	parentID, ok := parseOptionalID(c, req.ParentID)
	if !ok {
		return
	}

	folder, err := h.folderService.Create(c.Request.Context(), userID, &services.CreateFolderRequest{
		Name:        req.Name,
		ParentID:    parentID,
		Color:       req.Color,
		Description: req.Description,
	})
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.SuccessResponse(c, http.StatusCreated, "Folder created", folder)
}

// Rename renames a folder
func (h *FolderHandler) Rename(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	folderID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		pkg.ErrorResponse(c, pkg.ErrInvalidInput.WithMessage(err.Error()))
		return
	}

	folder, err := h.folderService.Rename(c.Request.Context(), folderID, userID, req.Name)
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.SuccessResponse(c, http.StatusOK, "Folder renamed", folder)
}

// Update updates folder metadata
func (h *FolderHandler) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	folderID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	var req UpdateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		pkg.ErrorResponse(c, pkg.ErrInvalidInput.WithMessage(err.Error()))
		return
	}

	folder, err := h.folderService.Update(c.Request.Context(), folderID, userID, &services.UpdateFolderRequest{
		Color:       req.Color,
		Description: req.Description,
	})
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.SuccessResponse(c, http.StatusOK, "Folder updated", folder)
}

// Move moves a folder under a new parent
func (h *FolderHandler) Move(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	folderID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	var req MoveFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		pkg.ErrorResponse(c, pkg.ErrInvalidInput.WithMessage(err.Error()))
		return
	}

	parentID, ok := parseOptionalID(c, req.ParentID)
	if !ok {
		return
	}

	folder, err := h.folderService.Move(c.Request.Context(), folderID, userID, parentID)
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.SuccessResponse(c, http.StatusOK, "Folder moved", folder)
}

// Copy deep-clones a folder subtree
func (h *FolderHandler) Copy(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	folderID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	var req CopyFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		pkg.ErrorResponse(c, pkg.ErrInvalidInput.WithMessage(err.Error()))
		return
	}

	parentID, ok := parseOptionalID(c, req.ParentID)
	if !ok {
		return
	}

	folder, err := h.folderService.Copy(c.Request.Context(), folderID, userID, parentID, req.Name)
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.SuccessResponse(c, http.StatusCreated, "Folder copied", folder)
}

// Delete removes a folder subtree
func (h *FolderHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	folderID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.folderService.Delete(c.Request.Context(), folderID, userID); err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.SuccessResponse(c, http.StatusOK, "Folder deleted", nil)
}

// ToggleFavorite flips the folder's favorite flag
func (h *FolderHandler) ToggleFavorite(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	folderID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	folder, err := h.folderService.ToggleFavorite(c.Request.Context(), folderID, userID)
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.SuccessResponse(c, http.StatusOK, "Folder updated", folder)
}

// BulkMove moves a batch of folders
func (h *FolderHandler) BulkMove(c *gin.Context) {
	h.bulk(c, func(c *gin.Context, userID primitive.ObjectID, ids []primitive.ObjectID, parentID *primitive.ObjectID) (*services.BulkResult, error) {
		return h.folderService.BulkMove(c.Request.Context(), userID, ids, parentID)
	})
}

// BulkCopy copies a batch of folders
func (h *FolderHandler) BulkCopy(c *gin.Context) {
	h.bulk(c, func(c *gin.Context, userID primitive.ObjectID, ids []primitive.ObjectID, parentID *primitive.ObjectID) (*services.BulkResult, error) {
		return h.folderService.BulkCopy(c.Request.Context(), userID, ids, parentID)
	})
}

// BulkDelete deletes a batch of folders
func (h *FolderHandler) BulkDelete(c *gin.Context) {
	h.bulk(c, func(c *gin.Context, userID primitive.ObjectID, ids []primitive.ObjectID, _ *primitive.ObjectID) (*services.BulkResult, error) {
		return h.folderService.BulkDelete(c.Request.Context(), userID, ids)
	})
}

func (h *FolderHandler) bulk(c *gin.Context, run func(*gin.Context, primitive.ObjectID, []primitive.ObjectID, *primitive.ObjectID) (*services.BulkResult, error)) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req BulkFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		pkg.ErrorResponse(c, pkg.ErrInvalidInput.WithMessage(err.Error()))
		return
	}

	ids, ok := parseIDList(c, req.FolderIDs)
	if !ok {
		return
	}
	parentID, ok := parseOptionalID(c, req.ParentID)
	if !ok {
		return
	}

	result, err := run(c, userID, ids, parentID)
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.SuccessResponse(c, http.StatusOK, "Bulk operation finished", result)
}

// ListRoot lists the caller's top-level folders
func (h *FolderHandler) ListRoot(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	folders, err := h.folderService.GetRootFolders(c.Request.Context(), userID)
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.SuccessResponse(c, http.StatusOK, "Folders retrieved", folders)
}

// ListContents lists a folder's direct subfolders and files
func (h *FolderHandler) ListContents(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	folderID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	folders, err := h.folderService.GetSubfolders(c.Request.Context(), folderID, userID)
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	files, err := h.fileService.ListByFolder(c.Request.Context(), userID, &folderID)
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.SuccessResponse(c, http.StatusOK, "Folder contents retrieved", gin.H{
		"folders": folders,
		"files":   files,
	})
}

// Favorites lists the caller's favorite folders
func (h *FolderHandler) Favorites(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	params := pkg.NewPaginationParams(c)
	folders, total, err := h.folderService.GetFavorites(c.Request.Context(), userID, params)
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.PagedResponse(c, "Favorite folders retrieved", folders, pkg.NewPaginationMeta(params, total))
}

// Search finds folders by name or description
func (h *FolderHandler) Search(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	params := pkg.NewPaginationParams(c)
	folders, total, err := h.folderService.Search(c.Request.Context(), userID, params)
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.PagedResponse(c, "Folders retrieved", folders, pkg.NewPaginationMeta(params, total))
}

// Details returns a folder with derived statistics and breadcrumb
func (h *FolderHandler) Details(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	folderID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	details, err := h.folderService.GetDetails(c.Request.Context(), folderID, userID)
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.SuccessResponse(c, http.StatusOK, "Folder details retrieved", details)
}
