package handlers

import (
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/middleware"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/pkg"

	"github.com/gin-gonic/gin"
)

// Router wires handlers and middleware into a gin engine
type Router struct {
	folders *FolderHandler
	files   *FileHandler
	sharing *SharingHandler
	account *AccountHandler
	auth    *middleware.AuthMiddleware
	limiter *middleware.RateLimiter
	logger  *pkg.Logger
}

// NewRouter creates a new router
func NewRouter(
	folders *FolderHandler,
	files *FileHandler,
	sharing *SharingHandler,
	account *AccountHandler,
	auth *middleware.AuthMiddleware,
	limiter *middleware.RateLimiter,
	logger *pkg.Logger,
) *Router {
	return &Router{
		folders: folders,
		files:   files,
		sharing: sharing,
		account: account,
		auth:    auth,
		limiter: limiter,
		logger:  logger,
	}
}

// Setup registers all routes on the engine
func (r *Router) Setup(engine *gin.Engine) {
	engine.Use(middleware.Recovery(r.logger))
	engine.Use(middleware.RequestLogger(r.logger))
	if r.limiter != nil {
		engine.Use(r.limiter.Limit())
	}

	api := engine.Group("/api/v1")

	// Token links resolve without authentication
	public := api.Group("/shares/public")
	{
		public.GET("/:token", r.sharing.ResolvePublicShare)
		public.GET("/:token/download", r.sharing.DownloadPublicShare)
	}

	private := api.Group("")
	private.Use(r.auth.RequireAuth())

	folders := private.Group("/folders")
	{
		folders.POST("", r.folders.Create)
		folders.GET("", r.folders.ListRoot)
		folders.GET("/favorites", r.folders.Favorites)
		folders.GET("/search", r.folders.Search)
		folders.POST("/bulk/move", r.folders.BulkMove)
		folders.POST("/bulk/copy", r.folders.BulkCopy)
		folders.POST("/bulk/delete", r.folders.BulkDelete)
		folders.GET("/:id", r.folders.ListContents)
		folders.GET("/:id/details", r.folders.Details)
		folders.GET("/:id/access", r.sharing.ResolveFolderAccess)
		folders.PUT("/:id", r.folders.Update)
		folders.PUT("/:id/rename", r.folders.Rename)
		folders.PUT("/:id/move", r.folders.Move)
		folders.POST("/:id/copy", r.folders.Copy)
		folders.PUT("/:id/favorite", r.folders.ToggleFavorite)
		folders.DELETE("/:id", r.folders.Delete)
	}

	files := private.Group("/files")
	{
		files.POST("", r.files.Upload)
		files.GET("", r.files.List)
		files.GET("/root", r.files.ListRoot)
		files.GET("/recent", r.files.Recent)
		files.GET("/favorites", r.files.Favorites)
		files.GET("/search", r.files.Search)
		files.GET("/:id", r.files.Get)
		files.GET("/:id/download", r.files.Download)
		files.PUT("/:id/rename", r.files.Rename)
		files.PUT("/:id/move", r.files.Move)
		files.PUT("/:id/favorite", r.files.ToggleFavorite)
		files.DELETE("/:id", r.files.Delete)
	}

	account := private.Group("/account")
	{
		account.GET("/profile", r.account.Profile)
		account.POST("/verification", r.account.RequestEmailVerification)
		account.POST("/verification/confirm", r.account.ConfirmEmail)
	}

	shares := private.Group("/shares")
	{
		shares.POST("/folders", r.sharing.ShareFolder)
		shares.GET("/folders/by-me", r.sharing.ListFolderSharesByMe)
		shares.GET("/folders/with-me", r.sharing.ListFolderSharesWithMe)
		shares.PUT("/folders/:id/respond", r.sharing.RespondToFolderShare)
		shares.PUT("/folders/:id/revoke", r.sharing.RevokeFolderShare)
		shares.DELETE("/folders/:id/users", r.sharing.RemoveUserFromFolder)

		shares.POST("/files", r.sharing.ShareFile)
		shares.GET("/files/by-me", r.sharing.ListFileSharesByMe)
		shares.GET("/files/with-me", r.sharing.ListFileSharesWithMe)
		shares.PUT("/files/:id/respond", r.sharing.RespondToFileShare)
		shares.DELETE("/files/:id", r.sharing.RevokeFileShare)

		shares.POST("/links", r.sharing.CreatePublicShare)
		shares.GET("/links", r.sharing.ListPublicShares)
		shares.PUT("/links/:id/deactivate", r.sharing.DeactivatePublicShare)
	}
}
