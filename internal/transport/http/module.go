package http

import (
	"go.uber.org/fx"

	catalogtransport "github.com/atelier-hq/atelier/internal/transport/http/catalog"
	dashboardtransport "github.com/atelier-hq/atelier/internal/transport/http/dashboard"
	ordertransport "github.com/atelier-hq/atelier/internal/transport/http/order"
	paymenttransport "github.com/atelier-hq/atelier/internal/transport/http/payment"
	profiletransport "github.com/atelier-hq/atelier/internal/transport/http/profile"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	ordertransport.Module,
	catalogtransport.Module,
	profiletransport.Module,
	paymenttransport.Module,
	dashboardtransport.Module,
)
