package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// scrapeRequest mirrors the Forage API request model.
type scrapeRequest struct {
	URL      string `json:"url"`
	Language string `json:"language,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// recipeResponse mirrors the Forage API response model.
type recipeResponse struct {
	Success bool `json:"success"`
	Recipe  *struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Ingredients []struct {
			Name     string `json:"name"`
			Quantity string `json:"quantity"`
			Unit     string `json:"unit"`
		} `json:"ingredients"`
		Steps []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"steps"`
		Tags      []string `json:"tags"`
		Servings  int      `json:"servings"`
		SourceURL string   `json:"source_url"`
	} `json:"recipe"`
	BackendUsed string `json:"backend_used"`
	Error       *struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

// providersResponse mirrors GET /api/v1/providers.
type providersResponse struct {
	Providers []struct {
		ID                 string   `json:"id"`
		Name               string   `json:"name"`
		SupportedLanguages []string `json:"supported_languages"`
	} `json:"providers"`
}

// discoveryResponse mirrors the discovery job model.
type discoveryResponse struct {
	ID        string `json:"id"`
	Phase     string `json:"phase"`
	Discovery *struct {
		RecipesFound int  `json:"recipes_found"`
		IsComplete   bool `json:"is_complete"`
		Recipes      []struct {
			URL   string `json:"url"`
			Title string `json:"title"`
		} `json:"recipes"`
	} `json:"discovery"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	apiURL := os.Getenv("FORAGE_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("FORAGE_API_KEY")

	s := server.NewMCPServer(
		"forage",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	scrapeTool := mcp.NewTool("scrape_recipe",
		mcp.WithDescription("Extract a structured recipe (ingredients, steps, nutrition, tags) from a recipe page URL."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the recipe page"),
		),
		mcp.WithString("language",
			mcp.Description("Preferred content language as a BCP 47 tag, e.g. 'fr'"),
		),
	)
	s.AddTool(scrapeTool, handleScrapeRecipe(apiURL, apiKey))

	providersTool := mcp.NewTool("list_providers",
		mcp.WithDescription("List the recipe sites available for bulk discovery, optionally filtered by locale."),
		mcp.WithString("locale",
			mcp.Description("BCP 47 language tag to filter providers by, e.g. 'fr-FR'"),
		),
	)
	s.AddTool(providersTool, handleListProviders(apiURL, apiKey))

	discoverTool := mcp.NewTool("discover_recipes",
		mcp.WithDescription("Scan a provider's category pages and return the recipe URLs and titles it offers. Does not parse the recipes."),
		mcp.WithString("provider_id",
			mcp.Required(),
			mcp.Description("Provider ID from list_providers, e.g. 'hellofresh'"),
		),
	)
	s.AddTool(discoverTool, handleDiscoverRecipes(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends a POST request to the Forage API and returns the response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// apiGet sends a GET request to the Forage API and returns the response body.
func apiGet(ctx context.Context, client *http.Client, apiURL, apiKey, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func handleScrapeRecipe(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/scrape", scrapeRequest{
			URL:      url,
			Language: request.GetString("language", ""),
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("scrape request failed: %v", err)), nil
		}

		var resp recipeResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if !resp.Success || resp.Recipe == nil {
			errMsg := "scrape failed"
			if resp.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", resp.Error.Kind, resp.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		r := resp.Recipe
		var sb strings.Builder
		fmt.Fprintf(&sb, "# %s\n", r.Title)
		fmt.Fprintf(&sb, "Source: %s (backend: %s)\n", r.SourceURL, resp.BackendUsed)
		if r.Servings > 0 {
			fmt.Fprintf(&sb, "Servings: %d\n", r.Servings)
		}
		if r.Description != "" {
			fmt.Fprintf(&sb, "\n%s\n", r.Description)
		}

		sb.WriteString("\n## Ingredients\n")
		for _, ing := range r.Ingredients {
			line := strings.TrimSpace(strings.Join([]string{ing.Quantity, ing.Unit, ing.Name}, " "))
			fmt.Fprintf(&sb, "- %s\n", line)
		}

		sb.WriteString("\n## Steps\n")
		for i, step := range r.Steps {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, step.Description)
		}

		if len(r.Tags) > 0 {
			fmt.Fprintf(&sb, "\nTags: %s\n", strings.Join(r.Tags, ", "))
		}

		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleListProviders(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 30 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path := "/api/v1/providers"
		if locale := request.GetString("locale", ""); locale != "" {
			path += "?locale=" + locale
		}

		respBody, err := apiGet(ctx, client, apiURL, apiKey, path)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("providers request failed: %v", err)), nil
		}

		var resp providersResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "%d providers:\n\n", len(resp.Providers))
		for _, p := range resp.Providers {
			fmt.Fprintf(&sb, "- %s (%s): %s\n", p.Name, p.ID, strings.Join(p.SupportedLanguages, ", "))
		}

		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleDiscoverRecipes(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 600 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		providerID, err := request.RequireString("provider_id")
		if err != nil {
			return mcp.NewToolResultError("provider_id is required"), nil
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/discovery",
			map[string]string{"provider_id": providerID})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("discovery request failed: %v", err)), nil
		}

		var job discoveryResponse
		if err := json.Unmarshal(respBody, &job); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if job.ID == "" {
			msg := "discovery job creation failed"
			if job.Error != nil {
				msg = job.Error.Message
			}
			return mcp.NewToolResultError(msg), nil
		}

		// Poll until the scan leaves the discovering phase.
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for job.Phase == "discovering" {
			select {
			case <-ctx.Done():
				return mcp.NewToolResultError("discovery canceled"), nil
			case <-ticker.C:
			}

			respBody, err = apiGet(ctx, client, apiURL, apiKey, "/api/v1/discovery/"+job.ID)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("polling discovery failed: %v", err)), nil
			}
			if err := json.Unmarshal(respBody, &job); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("failed to parse poll response: %v", err)), nil
			}
		}

		if job.Error != nil {
			return mcp.NewToolResultError(job.Error.Message), nil
		}

		var sb strings.Builder
		if job.Discovery != nil {
			fmt.Fprintf(&sb, "Found %d recipes:\n\n", job.Discovery.RecipesFound)
			for _, r := range job.Discovery.Recipes {
				fmt.Fprintf(&sb, "- %s\n  %s\n", r.Title, r.URL)
			}
		} else {
			sb.WriteString("No recipes found.\n")
		}

		return mcp.NewToolResultText(sb.String()), nil
	}
}
