package pricing

import (
	"go.uber.org/fx"

	"github.com/polkiloo/webpot/internal/config"
)

// Module provides the tier catalog.
var Module = fx.Provide(newCatalog)

func newCatalog(cfg *config.Config) (*Catalog, error) {
	return LoadCatalog(cfg.CatalogFile)
}
