/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-06-15 11:30:55
 * @LastEditTime: 2025-09-18 18:02:47
 * @LastEditors: 安知鱼
 */
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/anheyu-atelier/internal/app/middleware"
	cms_handler "github.com/anzhiyu-c/anheyu-atelier/pkg/handler/cms"
	contact_handler "github.com/anzhiyu-c/anheyu-atelier/pkg/handler/contact"
	public_handler "github.com/anzhiyu-c/anheyu-atelier/pkg/handler/public"
	version_handler "github.com/anzhiyu-c/anheyu-atelier/pkg/handler/version"
)

// NoCacheMiddleware 全局反缓存中间件，确保所有API响应都不会被CDN缓存
func NoCacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate, private, max-age=0")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Next()
	}
}

// ContactLimit 是公开联系表单的限流参数
type ContactLimit struct {
	RequestsPerMinute int
	Burst             int
}

// Router 封装了应用的所有路由和其依赖的处理器。
type Router struct {
	publicHandler  *public_handler.PublicHandler
	cmsHandler     *cms_handler.Handler
	contactHandler *contact_handler.Handler
	versionHandler *version_handler.Handler
	mw             *middleware.Middleware
	contactLimit   ContactLimit
}

// NewRouter 是 Router 的构造函数，通过依赖注入接收所有处理器。
func NewRouter(
	publicHandler *public_handler.PublicHandler,
	cmsHandler *cms_handler.Handler,
	contactHandler *contact_handler.Handler,
	versionHandler *version_handler.Handler,
	mw *middleware.Middleware,
	contactLimit ContactLimit,
) *Router {
	return &Router{
		publicHandler:  publicHandler,
		cmsHandler:     cmsHandler,
		contactHandler: contactHandler,
		versionHandler: versionHandler,
		mw:             mw,
		contactLimit:   contactLimit,
	}
}

// Setup 将所有路由注册到 Gin 引擎。
func (r *Router) Setup(engine *gin.Engine) {
	apiGroup := engine.Group("/api")
	apiGroup.Use(NoCacheMiddleware())

	r.registerVersionRoutes(apiGroup)
	r.registerPublicRoutes(apiGroup)
	r.registerCmsRoutes(apiGroup)
	r.registerContactRoutes(apiGroup)
}

func (r *Router) registerVersionRoutes(api *gin.RouterGroup) {
	api.GET("/version", r.versionHandler.GetVersion)
	api.GET("/version/string", r.versionHandler.GetVersionString)
}

func (r *Router) registerPublicRoutes(api *gin.RouterGroup) {
	public := api.Group("/public")
	{
		public.GET("/site", r.publicHandler.GetSite)
		public.GET("/home", r.publicHandler.GetHome)
		public.GET("/about", r.publicHandler.GetAbout)
		public.GET("/artworks", r.publicHandler.ListArtworks)
		public.GET("/artworks/:slug", r.publicHandler.GetArtwork)
		public.GET("/expositions", r.publicHandler.ListExpositions)
	}
}

func (r *Router) registerCmsRoutes(api *gin.RouterGroup) {
	cmsAdmin := api.Group("/admin/cms").Use(r.mw.JWTAuth(), r.mw.AdminAuth())
	{
		cmsAdmin.GET("", r.cmsHandler.GetState)
		cmsAdmin.PUT("", r.cmsHandler.Replace)
		cmsAdmin.POST("/reset", r.cmsHandler.Reset)

		cmsAdmin.GET("/artworks", r.cmsHandler.ListArtworks)
		cmsAdmin.POST("/artworks", r.cmsHandler.CreateArtwork)
		cmsAdmin.PATCH("/artworks/:id", r.cmsHandler.PatchArtwork)
		cmsAdmin.DELETE("/artworks/:id", r.cmsHandler.DeleteArtwork)

		cmsAdmin.POST("/navigation/:id/children", r.cmsHandler.AddNavigationChild)

		// site-identity | homepage | art-library | expositions
		cmsAdmin.PUT("/:section", r.cmsHandler.UpdateSection)
	}
}

func (r *Router) registerContactRoutes(api *gin.RouterGroup) {
	api.POST("/public/contact",
		middleware.CustomRateLimit(r.contactLimit.RequestsPerMinute, r.contactLimit.Burst),
		r.contactHandler.Submit,
	)

	contactAdmin := api.Group("/admin/contact-submissions").Use(r.mw.JWTAuth(), r.mw.AdminAuth())
	{
		contactAdmin.GET("", r.contactHandler.List)
		contactAdmin.GET("/:id", r.contactHandler.Get)
		contactAdmin.PATCH("/:id", r.contactHandler.Update)
	}
}
