package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/forage/authbridge"
	"github.com/use-agent/forage/cache"
	"github.com/use-agent/forage/convert"
	"github.com/use-agent/forage/fetch"
	"github.com/use-agent/forage/models"
	"github.com/use-agent/forage/runtime"
)

// Scrape returns a handler for POST /api/v1/scrape.
//
// Orchestration flow:
//  1. Parse & validate request.
//  2. Cache lookup (when the request opts in).
//  3. Fetch the page; detect login walls.
//  4. On a login wall with credentials, retry through the auth bridge.
//  5. Hybrid runtime extraction → conversion pipeline.
//  6. Cache store, return 200.
func Scrape(fetcher *fetch.Fetcher, rt *runtime.Facade, bridge *authbridge.Bridge, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.RecipeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.RecipeResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Kind:    models.KindException,
					Key:     models.MessageKey(models.KindException),
					Message: err.Error(),
				},
			})
			return
		}

		cacheKey := cache.Key(req.URL, req.Language)
		if cc != nil && req.CacheMaxAgeMs > 0 {
			if cached, hit := cc.Get(cacheKey, req.CacheMaxAgeMs); hit {
				hitCopy := *cached
				hitCopy.CacheStatus = "hit"
				c.JSON(http.StatusOK, &hitCopy)
				return
			}
		}

		pageHTML, err := fetchPage(c, fetcher, bridge, &req)
		if err != nil {
			respondError(c, err)
			return
		}

		recipe, backend, err := rt.Scrape(c.Request.Context(), pageHTML, req.URL)
		if err != nil {
			respondError(c, err)
			return
		}

		resp := &models.RecipeResponse{
			Success:     true,
			Recipe:      convert.Convert(recipe),
			Raw:         recipe,
			BackendUsed: backend,
		}

		if cc != nil && req.CacheMaxAgeMs > 0 {
			cc.Set(cacheKey, resp)
			resp.CacheStatus = "miss"
		}

		c.JSON(http.StatusOK, resp)
	}
}

// fetchPage fetches the recipe page, routing through the auth bridge when
// the plain fetch hits a login wall and the request carries credentials.
func fetchPage(c *gin.Context, fetcher *fetch.Fetcher, bridge *authbridge.Bridge, req *models.RecipeRequest) (string, error) {
	page, err := fetcher.Get(c.Request.Context(), req.URL)
	if err != nil {
		return "", err
	}

	wallErr := fetch.DetectAuthWall(page.HTML, page.FinalURL, req.URL)
	if wallErr == nil {
		return page.HTML, nil
	}
	if bridge == nil || req.Username == "" || !bridge.IsHostSupported(req.URL) {
		return "", wallErr
	}

	return bridge.FetchAuthenticatedHTML(c.Request.Context(), req.URL, req.Username, req.Password)
}

// respondError maps a scraper error to the correct HTTP status code and
// writes a structured JSON error response.
func respondError(c *gin.Context, err error) {
	if errors.Is(err, models.ErrAuthFlowInFlight) {
		c.JSON(http.StatusConflict, models.RecipeResponse{
			Success: false,
			Error: &models.ErrorDetail{
				Kind:    models.KindAuthFailed,
				Key:     models.MessageKey(models.KindAuthFailed),
				Message: err.Error(),
			},
		})
		return
	}

	se := models.AsScraperError(err)
	c.JSON(mapKindToStatus(se.Kind), models.RecipeResponse{
		Success: false,
		Error:   models.DetailFor(se),
	})
}

// mapKindToStatus translates error kinds to HTTP status codes.
func mapKindToStatus(kind models.ErrorKind) int {
	switch kind {
	case models.KindTimeout:
		return http.StatusGatewayTimeout // 504
	case models.KindConnectionError, models.KindHTTPError:
		return http.StatusBadGateway // 502
	case models.KindAuthRequired, models.KindAuthFailed:
		return http.StatusUnauthorized // 401
	case models.KindUnsupportedAuthSite, models.KindSiteNotImplemented, models.KindUnsupportedPlatform:
		return http.StatusBadRequest // 400
	case models.KindNoRecipeFound, models.KindNoSchemaFound:
		return http.StatusUnprocessableEntity // 422
	default:
		return http.StatusInternalServerError // 500
	}
}
