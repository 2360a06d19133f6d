package config

import "go.uber.org/fx"

// Module provides the webpot server Config parsed from flags, env and .env.
var Module = fx.Provide(Load)
