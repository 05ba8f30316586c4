package app

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/cyberportal/internal/config"
	httpx "github.com/you/cyberportal/internal/http"
	"github.com/you/cyberportal/internal/http/handlers"
	"github.com/you/cyberportal/internal/http/middleware"
)

// Run wires the portal gateway and serves it.
func Run(cfg *config.Config) error {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	container, err := NewContainer(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	authH := handlers.NewAuthHandlers()
	portalH := handlers.NewPortalHandlers(container.API)
	adminH := handlers.NewAdminHandlers(container.API)
	pages := handlers.NewPages()

	sessionMW := middleware.NewSessionMW(container.Storage, container.API, cfg.PortalAPITimeout)
	guard := middleware.NewGuard(container.RoutePolicy)

	r := httpx.BuildRouter(authH, portalH, adminH, pages, sessionMW, guard)

	addr := ":" + cfg.Port
	log.Printf("listening on %s", addr)
	return http.ListenAndServe(addr, r)
}
