package main

import (
	"go.uber.org/fx"

	"github.com/atelier-hq/atelier/internal/app"
)

func main() {
	fx.New(app.Module).Run()
}
