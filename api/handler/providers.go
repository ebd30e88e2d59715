package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/forage/models"
	"github.com/use-agent/forage/provider"
)

// Providers returns a handler for GET /api/v1/providers.
//
// The optional ?locale= query narrows the list to providers serving that
// language; without it every registered provider is returned.
func Providers(registry *provider.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		locale := c.Query("locale")

		available := registry.GetAvailableProviders(locale)
		infos := make([]models.ProviderInfo, 0, len(available))
		for _, p := range available {
			infos = append(infos, models.ProviderInfo{
				ID:                 p.ID(),
				Name:               p.Name(),
				LogoURL:            p.LogoURL(),
				SupportedLanguages: p.SupportedLanguages(),
			})
		}

		c.JSON(http.StatusOK, gin.H{"providers": infos})
	}
}
