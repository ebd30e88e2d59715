package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/forage/catalog"
	"github.com/use-agent/forage/config"
	"github.com/use-agent/forage/discovery"
	"github.com/use-agent/forage/models"
	"github.com/use-agent/forage/provider"
)

// discoveryStore holds all in-flight and completed discovery jobs.
var discoveryStore sync.Map

func init() {
	// Background goroutine to expire discovery jobs older than 1 hour.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-1 * time.Hour).Unix()
			discoveryStore.Range(func(key, value any) bool {
				job := value.(*discoveryJob)
				if job.createdAt < cutoff {
					job.workflow.Abort()
					discoveryStore.Delete(key)
				}
				return true
			})
		}
	}()
}

// discoveryJob couples a workflow with the latest streamed progress.
type discoveryJob struct {
	id        string
	workflow  *discovery.Workflow
	createdAt int64

	mu        sync.Mutex
	discovery *models.DiscoveryProgress
	parsing   *models.ParsingProgress
}

func (j *discoveryJob) setDiscovery(p models.DiscoveryProgress) {
	j.mu.Lock()
	j.discovery = &p
	j.mu.Unlock()
}

func (j *discoveryJob) setParsing(p models.ParsingProgress) {
	j.mu.Lock()
	j.parsing = &p
	j.mu.Unlock()
}

func (j *discoveryJob) response() models.DiscoveryJobResponse {
	snap := j.workflow.Snapshot()

	j.mu.Lock()
	resp := models.DiscoveryJobResponse{
		ID:        j.id,
		Phase:     string(snap.Phase),
		Discovery: j.discovery,
		Parsing:   j.parsing,
	}
	j.mu.Unlock()

	for _, r := range snap.Converted {
		resp.Recipes = append(resp.Recipes, *r)
	}
	if snap.Error != "" {
		resp.Error = &models.ErrorDetail{
			Kind:    models.KindException,
			Key:     models.MessageKey(models.KindException),
			Message: snap.Error,
		}
	}
	return resp
}

// PostDiscovery returns a handler for POST /api/v1/discovery. The scan runs
// in the background; clients poll GET /discovery/:id for progress. A
// site_url request bypasses the registry and scans that site with the
// generic adapter.
func PostDiscovery(registry *provider.Registry, fetcher provider.PageFetcher,
	scraper provider.Scraper, cfg config.DiscoveryConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.DiscoveryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.DiscoveryJobResponse{
				Error: &models.ErrorDetail{
					Kind:    models.KindException,
					Key:     models.MessageKey(models.KindException),
					Message: err.Error(),
				},
			})
			return
		}

		var p provider.Provider
		switch {
		case req.SiteURL != "" && req.ProviderID == "":
			p = provider.NewGeneric(req.SiteURL, fetcher, scraper)
		case req.ProviderID != "" && req.SiteURL == "":
			var ok bool
			p, ok = registry.GetProvider(req.ProviderID)
			if !ok {
				c.JSON(http.StatusNotFound, models.DiscoveryJobResponse{
					Error: &models.ErrorDetail{
						Kind:    models.KindSiteNotImplemented,
						Key:     models.MessageKey(models.KindSiteNotImplemented),
						Message: "unknown provider: " + req.ProviderID,
					},
				})
				return
			}
		default:
			c.JSON(http.StatusBadRequest, models.DiscoveryJobResponse{
				Error: &models.ErrorDetail{
					Kind:    models.KindException,
					Key:     models.MessageKey(models.KindException),
					Message: "exactly one of provider_id and site_url is required",
				},
			})
			return
		}

		job := &discoveryJob{
			id:        "disc-" + randomID(),
			workflow:  discovery.NewWorkflow(p, cfg),
			createdAt: time.Now().Unix(),
		}
		discoveryStore.Store(job.id, job)

		// Detached from the request context: discovery outlives the
		// creating request by design.
		go func() {
			_ = job.workflow.Discover(context.Background(), job.setDiscovery)
		}()

		c.JSON(http.StatusOK, job.response())
	}
}

// GetDiscovery returns a handler for GET /api/v1/discovery/:id.
func GetDiscovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		job, ok := loadJob(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, job.response())
	}
}

// PostSelection returns a handler for POST /api/v1/discovery/:id/select.
func PostSelection() gin.HandlerFunc {
	return func(c *gin.Context) {
		job, ok := loadJob(c)
		if !ok {
			return
		}

		var req models.SelectionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		switch req.Op {
		case "select":
			if !job.workflow.SelectRecipe(req.URL) {
				c.JSON(http.StatusNotFound, gin.H{"error": "recipe not discovered: " + req.URL})
				return
			}
		case "unselect":
			if !job.workflow.UnselectRecipe(req.URL) {
				c.JSON(http.StatusNotFound, gin.H{"error": "recipe not discovered: " + req.URL})
				return
			}
		case "toggle_all":
			job.workflow.ToggleSelectAll()
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown op: " + req.Op})
			return
		}

		c.JSON(http.StatusOK, job.response())
	}
}

// PostParse returns a handler for POST /api/v1/discovery/:id/parse. The
// optional body carries the client's catalog for dedup resolution. A
// finished job replays its result; a job in any other non-selecting phase
// is a conflict — parsing never runs twice.
func PostParse() gin.HandlerFunc {
	return func(c *gin.Context) {
		job, ok := loadJob(c)
		if !ok {
			return
		}

		var req models.ParseRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}

		switch job.workflow.Snapshot().Phase {
		case discovery.PhaseSelecting:
			if len(req.KnownIngredients) > 0 || len(req.KnownTags) > 0 {
				job.workflow.UseCatalog(catalog.New(req.KnownIngredients, req.KnownTags))
			}
			go func() {
				_, _ = job.workflow.Parse(context.Background(), job.setParsing)
			}()
		case discovery.PhaseDone:
			// Already parsed; the response below carries the result.
		default:
			c.JSON(http.StatusConflict, gin.H{
				"error": "parse not available in phase " + string(job.workflow.Snapshot().Phase),
			})
			return
		}

		c.JSON(http.StatusOK, job.response())
	}
}

// DeleteDiscovery returns a handler for DELETE /api/v1/discovery/:id.
// Aborts whatever the job is doing and removes it from the store.
func DeleteDiscovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		job, ok := loadJob(c)
		if !ok {
			return
		}
		job.workflow.Abort()
		discoveryStore.Delete(job.id)
		c.JSON(http.StatusOK, gin.H{"status": "aborted"})
	}
}

func loadJob(c *gin.Context) (*discoveryJob, bool) {
	val, ok := discoveryStore.Load(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "discovery job not found"})
		return nil, false
	}
	return val.(*discoveryJob), true
}

func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
