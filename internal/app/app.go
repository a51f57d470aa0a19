package app

import (
	"go.uber.org/fx"

	"github.com/atelier-hq/atelier/internal/cache"
	"github.com/atelier-hq/atelier/internal/config"
	"github.com/atelier-hq/atelier/internal/database"
	"github.com/atelier-hq/atelier/internal/logger"
	"github.com/atelier-hq/atelier/internal/messaging"
	"github.com/atelier-hq/atelier/internal/observability"
	"github.com/atelier-hq/atelier/internal/realtime"
	repositorycatalog "github.com/atelier-hq/atelier/internal/repository/catalog"
	repositoryorder "github.com/atelier-hq/atelier/internal/repository/order"
	repositoryprofile "github.com/atelier-hq/atelier/internal/repository/profile"
	httpserver "github.com/atelier-hq/atelier/internal/server/http"
	servicecatalog "github.com/atelier-hq/atelier/internal/service/catalog"
	serviceorder "github.com/atelier-hq/atelier/internal/service/order"
	servicepayment "github.com/atelier-hq/atelier/internal/service/payment"
	serviceprofile "github.com/atelier-hq/atelier/internal/service/profile"
	transporthttp "github.com/atelier-hq/atelier/internal/transport/http"
	transportws "github.com/atelier-hq/atelier/internal/transport/ws"
	"github.com/atelier-hq/atelier/internal/worker"
	workerorder "github.com/atelier-hq/atelier/internal/worker/order"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	cache.Module,
	database.Module,
	logger.Module,
	fx.WithLogger(logger.FxEvents),
	messaging.Module,
	observability.Module,
	realtime.Module,
	repositoryorder.Module,
	repositorycatalog.Module,
	repositoryprofile.Module,
	serviceorder.Module,
	servicecatalog.Module,
	serviceprofile.Module,
	servicepayment.Module,
)

// HTTP wires the HTTP transport on top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	transporthttp.Module,
	transportws.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerorder.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP
