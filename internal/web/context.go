package web

import (
	"context"
	"net/http"

	"github.com/Macora01/pdftoexcl/internal/core"
	"github.com/Macora01/pdftoexcl/internal/web/middleware"
)

// withClient tags ctx with the caller's address and User-Agent for service
// logs. The address is already resolved by TrustedRealIP.
func withClient(ctx context.Context, r *http.Request) context.Context {
	return core.ContextWithClient(ctx, middleware.ClientIP(r), r.UserAgent())
}
