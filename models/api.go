package models

// ErrorDetail is the structured error in API responses. Key is the i18n
// message key the client translates; Kind and Message are for logs.
type ErrorDetail struct {
	Kind    ErrorKind `json:"kind"`
	Key     string    `json:"key"`
	Message string    `json:"message"`
	Host    string    `json:"host,omitempty"`
}

// DetailFor converts a ScraperError into its API-facing form.
func DetailFor(err *ScraperError) *ErrorDetail {
	return &ErrorDetail{
		Kind:    err.Kind,
		Key:     MessageKey(err.Kind),
		Message: err.Message,
		Host:    err.Host,
	}
}

// RecipeRequest is the request for POST /api/v1/scrape.
type RecipeRequest struct {
	URL      string `json:"url" binding:"required"`
	Language string `json:"language,omitempty"`

	// Credentials for auth-gated providers. Only consulted after a fetch
	// is rejected with AuthenticationRequired.
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`

	// CacheMaxAgeMs enables cache lookup when > 0.
	CacheMaxAgeMs int `json:"cache_max_age_ms,omitempty"`
}

// RecipeResponse is the response for POST /api/v1/scrape.
type RecipeResponse struct {
	Success bool `json:"success"`

	// Recipe is the converted, app-facing shape; Raw is the unconverted
	// extraction output for clients that post-process themselves.
	Recipe *ConvertedRecipe `json:"recipe,omitempty"`
	Raw    *ScrapedRecipe   `json:"raw,omitempty"`

	// BackendUsed records which extraction backend produced the result.
	BackendUsed string `json:"backend_used,omitempty"`

	// CacheStatus is "hit", "miss", or empty when caching was not requested.
	CacheStatus string `json:"cache_status,omitempty"`

	Error *ErrorDetail `json:"error,omitempty"`
}

// DiscoveryRequest starts a discovery job. Either a registered provider by
// ID, or an arbitrary site via SiteURL — the latter runs the generic
// adapter against that site. Exactly one must be set.
type DiscoveryRequest struct {
	ProviderID string `json:"provider_id,omitempty"`
	SiteURL    string `json:"site_url,omitempty"`
}

// ParseRequest starts the parse phase of a discovery job. The known lists
// are the client's catalog snapshot; when present, converted recipes are
// resolved against it (canonical names, pending-validation queue).
type ParseRequest struct {
	KnownIngredients []string `json:"known_ingredients,omitempty"`
	KnownTags        []string `json:"known_tags,omitempty"`
}

// DiscoveryJobResponse is returned when a job is created or polled.
type DiscoveryJobResponse struct {
	ID        string             `json:"id"`
	Phase     string             `json:"phase"`
	Discovery *DiscoveryProgress `json:"discovery,omitempty"`
	Parsing   *ParsingProgress   `json:"parsing,omitempty"`
	Recipes   []ConvertedRecipe  `json:"recipes,omitempty"`
	Error     *ErrorDetail       `json:"error,omitempty"`
}

// SelectionRequest mutates a discovery job's selection set.
// Op is "select", "unselect", or "toggle_all"; URL is required for the
// first two.
type SelectionRequest struct {
	Op  string `json:"op" binding:"required"`
	URL string `json:"url,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status       string `json:"status"` // "healthy" or "degraded"
	Uptime       string `json:"uptime"`
	BackendReady bool   `json:"backend_ready"`
	Version      string `json:"version"`
}
