package httptelemetry

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// ChiRoute is a RouteFunc for servers routed with chi. It reassembles the
// route patterns each nested router contributed while matching the
// request, e.g. "/apps/{app_id}/dynos/{dyno_id}".
func ChiRoute(r *http.Request) (string, bool) {
	ctx := r.Context()
	if ctx.Value(chi.RouteCtxKey) == nil {
		return "", false
	}

	rtCtx := chi.RouteContext(ctx)
	if len(rtCtx.RoutePatterns) == 0 {
		return "", false
	}
	return joinRoutePatterns(rtCtx.RoutePatterns), true
}

func joinRoutePatterns(patterns []string) string {
	var result string
	for _, pattern := range patterns {
		result += pattern
	}
	return strings.ReplaceAll(result, "/*/", "/")
}
