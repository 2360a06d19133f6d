package logger

import "go.uber.org/fx"

// Module wires slog logger built from configuration.
var Module = fx.Provide(New)
