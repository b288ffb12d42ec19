package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopmetrics/storecast/store"
)

// SuggestionEngine produces optimization guidance from a prompt. Production
// deployments back this with an LLM API; the interface keeps that dependency
// out of the request path.
type SuggestionEngine interface {
	Suggest(ctx context.Context, prompt string) (string, error)
}

// OptimizationPrompt renders the prompt forwarded to the suggestion engine
// for a business and optimization type.
func OptimizationPrompt(b *store.Business, optimizationType string, params map[string]string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Suggest %s improvements for %q, a %s storefront at %s.",
		optimizationType, b.Name, b.PlatformType, b.PlatformURL)
	for k, v := range params {
		fmt.Fprintf(&sb, " %s: %s.", k, v)
	}
	return sb.String()
}

// StaticSuggestions is a development stand-in for the LLM-backed engine
// returning canned guidance per optimization type.
type StaticSuggestions struct{}

func (StaticSuggestions) Suggest(_ context.Context, prompt string) (string, error) {
	switch {
	case strings.Contains(prompt, "Suggest pricing"):
		return "Review price points on your slowest weekday; bundle low-velocity items.", nil
	case strings.Contains(prompt, "Suggest seo"):
		return "Add descriptive keywords to product titles and fill in meta descriptions.", nil
	case strings.Contains(prompt, "Suggest categories"):
		return "Group products into fewer, broader collections to simplify navigation.", nil
	}
	return "Keep product data complete and monitor the weekly sales forecast for dips.", nil
}
