package models

// messageKeys maps error kinds to the i18n keys the client translates.
// Unmapped kinds fall back to the generic scraping-failed key.
var messageKeys = map[ErrorKind]string{
	KindConnectionError:     "recipeImport.error.connection",
	KindHTTPError:           "recipeImport.error.http",
	KindTimeout:             "recipeImport.error.timeout",
	KindNoRecipeFound:       "recipeImport.error.noRecipeFound",
	KindNoSchemaFound:       "recipeImport.error.noRecipeFound",
	KindSiteNotImplemented:  "recipeImport.error.websiteNotSupported",
	KindAuthRequired:        "recipeImport.error.authenticationRequired",
	KindAuthFailed:          "recipeImport.error.authenticationFailed",
	KindUnsupportedAuthSite: "recipeImport.error.unsupportedAuthSite",
	KindUnsupportedPlatform: "recipeImport.error.unsupportedPlatform",
}

const genericMessageKey = "recipeImport.error.scrapingFailed"

// MessageKey returns the user-facing translation key for an error kind.
func MessageKey(kind ErrorKind) string {
	if key, ok := messageKeys[kind]; ok {
		return key
	}
	return genericMessageKey
}
