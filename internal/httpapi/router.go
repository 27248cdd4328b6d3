package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tonmaster/internal/httpapi/middleware"
)

func NewRouter(h *GameHandler, l *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Metrics(), middleware.Logging(l))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		v1.GET("/player", h.GetPlayer)
		v1.PATCH("/player", h.RenamePlayer)
		v1.POST("/tutorial/complete", h.CompleteTutorial)

		v1.POST("/rounds", h.StartRound)
		v1.GET("/rounds/current", h.GetRound)
		v1.POST("/rounds/current/items/:id/toggle", h.ToggleItem)
		v1.POST("/rounds/current/charge", h.Charge)
		v1.DELETE("/rounds/current", h.ExitRound)

		v1.GET("/store/upgrades", h.ListUpgrades)
		v1.POST("/store/upgrades/:id/purchase", h.Purchase)

		v1.GET("/transactions", h.ListTransactions)
	}

	return r
}
