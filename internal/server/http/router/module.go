package router

import "go.uber.org/fx"

// Module provides the gin engine serving /exec and /healthz.
var Module = fx.Provide(Setup)
