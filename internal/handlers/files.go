package handlers

import (
	"net/http"
	"strconv"

	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/pkg"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/services"

	"github.com/gin-gonic/gin"
)

// FileHandler handles file operations
type FileHandler struct {
	fileService *services.FileService
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileService *services.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// MoveFileRequest represents file move request
type MoveFileRequest struct {
	FolderID *string `json:"folderId"` // null for root
}

// Upload stores a multipart file upload
func (h *FileHandler) Upload(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		pkg.ErrorResponse(c, pkg.ErrInvalidInput.WithMessage("Missing file upload"))
		return
	}

	var folderID *string
	if raw := c.PostForm("folderId"); raw != "" {
		folderID = &raw
	}
	parentID, ok := parseOptionalID(c, folderID)
	if !ok {
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		pkg.ErrorResponse(c, pkg.ErrFileUploadFailed.WithCause(err))
		return
	}
	defer src.Close()

	file, err := h.fileService.Upload(c.Request.Context(), userID, &services.UploadRequest{
		Name:        fileHeader.Filename,
		FolderID:    parentID,
		Size:        fileHeader.Size,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Body:        src,
	})
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.SuccessResponse(c, http.StatusCreated, "File uploaded", file)
}

// Download streams a file's bytes to the caller
func (h *FileHandler) Download(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	fileID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	file, reader, err := h.fileService.Download(c.Request.Context(), fileID, userID)
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	c.DataFromReader(http.StatusOK, file.Size, file.ContentType, reader, nil)
}

// Get returns a file record
func (h *FileHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	fileID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	file, err := h.fileService.Get(c.Request.Context(), fileID, userID)
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.SuccessResponse(c, http.StatusOK, "File retrieved", file)
}

// Rename changes a file's display name
func (h *FileHandler) Rename(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	fileID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		pkg.ErrorResponse(c, pkg.ErrInvalidInput.WithMessage(err.Error()))
		return
	}

	file, err := h.fileService.Rename(c.Request.Context(), fileID, userID, req.Name)
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.SuccessResponse(c, http.StatusOK, "File renamed", file)
}

// Move places a file into another folder
func (h *FileHandler) Move(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	fileID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	var req MoveFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		pkg.ErrorResponse(c, pkg.ErrInvalidInput.WithMessage(err.Error()))
		return
	}

	folderID, ok := parseOptionalID(c, req.FolderID)
	if !ok {
		return
	}

	file, err := h.fileService.Move(c.Request.Context(), fileID, userID, folderID)
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.SuccessResponse(c, http.StatusOK, "File moved", file)
}

// ToggleFavorite flips the file's favorite flag
func (h *FileHandler) ToggleFavorite(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	fileID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	file, err := h.fileService.ToggleFavorite(c.Request.Context(), fileID, userID)
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.SuccessResponse(c, http.StatusOK, "File updated", file)
}

// Delete removes a file
func (h *FileHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	fileID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.fileService.Delete(c.Request.Context(), fileID, userID); err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.SuccessResponse(c, http.StatusOK, "File deleted", nil)
}

// ListRoot lists the caller's root-level files
func (h *FileHandler) ListRoot(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	files, err := h.fileService.ListByFolder(c.Request.Context(), userID, nil)
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.SuccessResponse(c, http.StatusOK, "Files retrieved", files)
}

// List lists the caller's files with pagination
func (h *FileHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	params := pkg.NewPaginationParams(c)
	files, total, err := h.fileService.List(c.Request.Context(), userID, params)
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.PagedResponse(c, "Files retrieved", files, pkg.NewPaginationMeta(params, total))
}

// Favorites lists the caller's favorite files
func (h *FileHandler) Favorites(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	params := pkg.NewPaginationParams(c)
	files, total, err := h.fileService.GetFavorites(c.Request.Context(), userID, params)
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.PagedResponse(c, "Favorite files retrieved", files, pkg.NewPaginationMeta(params, total))
}

// Recent lists the caller's most recently touched files
func (h *FileHandler) Recent(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	files, err := h.fileService.Recent(c.Request.Context(), userID, limit)
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.SuccessResponse(c, http.StatusOK, "Recent files retrieved", files)
}

// Search finds files by name
func (h *FileHandler) Search(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	params := pkg.NewPaginationParams(c)
	files, total, err := h.fileService.Search(c.Request.Context(), userID, params)
	if err != nil {
		pkg.ErrorResponse(c, err)
		return
	}

	pkg.PagedResponse(c, "Files retrieved", files, pkg.NewPaginationMeta(params, total))
}
