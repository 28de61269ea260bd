package app

// Compiled-in modules. Each registers itself with the core registry and is
// loaded when its ID appears under `modules:` in the configuration.
import (
	_ "github.com/flemzord/junction/internal/cron"
	_ "github.com/flemzord/junction/internal/gateway"
	_ "github.com/flemzord/junction/internal/metrics"
	_ "github.com/flemzord/junction/internal/tracing"
	_ "github.com/flemzord/junction/modules/report/csv"
	_ "github.com/flemzord/junction/modules/report/sqlite"
	_ "github.com/flemzord/junction/modules/report/webhook"
)
