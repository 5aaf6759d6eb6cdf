package evalboard

import (
	"context"

	"github.com/mwiater/evalboard/internal/appconfig"
	"github.com/mwiater/evalboard/internal/backend"
	"github.com/mwiater/evalboard/internal/dashboard"
	"github.com/mwiater/evalboard/internal/web"
)

func runServe(ctx context.Context, cfg *appconfig.Config) error {
	orch := dashboard.New(backend.New(cfg))
	return web.New(ctx, orch, cfg).ListenAndServe(ctx)
}
