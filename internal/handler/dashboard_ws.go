package handler

import (
	"context"
	"encoding/json"
	"log"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/huggnote/api/internal/middleware"
	"github.com/huggnote/api/internal/model"
	"github.com/huggnote/api/internal/service"
	ws "github.com/huggnote/api/internal/websocket"
)

// DashboardSocket streams dashboard re-renders to the owner's browser
type DashboardSocket struct {
	hub      *ws.Hub
	accounts *service.AccountService
}

func NewDashboardSocket(hub *ws.Hub, accounts *service.AccountService) *DashboardSocket {
	return &DashboardSocket{hub: hub, accounts: accounts}
}

// Upgrade rejects plain HTTP requests and keeps the owner for the socket.
func (h *DashboardSocket) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	c.Locals("owner", middleware.GetUserID(c))
	return c.Next()
}

// Serve handles GET /ws/dashboard
func (h *DashboardSocket) Serve() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		owner, _ := c.Locals("owner").(string)

		var initial []byte
		view, err := h.accounts.Dashboard(context.Background(), owner)
		if err != nil {
			log.Printf("Failed to load dashboard for %s: %v", owner, err)
		} else {
			initial, _ = json.Marshal(model.WSDashboardMessage{
				Type: model.WSMessageTypeDashboard,
				View: view,
			})
		}

		h.hub.HandleConnection(c, owner, initial)
	})
}
