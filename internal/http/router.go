package httpx

import (
	"github.com/gin-gonic/gin"

	"github.com/you/cyberportal/internal/http/handlers"
	"github.com/you/cyberportal/internal/http/middleware"
)

// BuildRouter assembles the portal route table: public routes render
// unconditionally, user routes require a signed-in session, admin
// routes require an admin session. The session middleware runs first on
// every route so guards never evaluate an uninitialized session.
func BuildRouter(ah *handlers.AuthHandlers, ph *handlers.PortalHandlers, adh *handlers.AdminHandlers, pages *handlers.Pages, sess *middleware.SessionMW, guard *middleware.Guard) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	r.Use(sess.Bind())

	// Public routes
	r.GET("/", pages.Home)
	r.GET("/blogs", pages.Blogs)
	r.GET("/blogs/:id", pages.BlogPost)
	r.GET("/support", pages.Support)
	r.GET("/login", ah.LoginPage)
	r.POST("/login", ah.Login)
	r.GET("/register", ah.RegisterPage)
	r.POST("/register", ah.Register)
	r.GET("/forgot-password", ah.ForgotPasswordPage)
	r.POST("/forgot-password", ah.ForgotPassword)

	// Admin sign-in wizard (public: it produces the admin session)
	r.GET("/admin/login", adh.WizardState)
	r.POST("/admin/login/id", adh.WizardBegin)
	r.POST("/admin/login/otp", adh.WizardVerifyOTP)
	r.POST("/admin/login/password", adh.WizardComplete)

	// User routes
	user := r.Group("/").Use(guard.RequireUser())
	user.GET("/dashboard", ph.Dashboard)
	user.GET("/profile", ph.Profile)
	user.POST("/profile", ph.UpdateProfile)
	user.GET("/report-crime", ph.ReportCrimePage)
	user.POST("/report-crime", ph.ReportCrime)
	user.GET("/case-status", ph.CaseStatus)
	user.GET("/fact-checker", ph.FactCheckerPage)
	user.POST("/fact-checker", ph.FactCheck)
	user.POST("/logout", ah.Logout)

	// Admin routes
	adm := r.Group("/admin").Use(guard.RequireAdmin())
	adm.GET("", adh.Dashboard)
	adm.GET("/analytics", adh.Dashboard)
	adm.GET("/cases", adh.Cases)
	adm.POST("/cases/update", adh.UpdateCase)

	return r
}
