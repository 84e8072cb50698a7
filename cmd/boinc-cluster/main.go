package main

import (
	"net/http"

	"go.uber.org/fx"

	"github.com/drakej/boinc-cluster/internal/api"
	"github.com/drakej/boinc-cluster/internal/config"
	"github.com/drakej/boinc-cluster/internal/fleet"
	"github.com/drakej/boinc-cluster/internal/logging"
)

func main() {
	fx.New(
		fx.Provide(
			config.NewClusterConfig,
			logging.NewLogger,
			fx.Annotate(
				fleet.NewCoordinator,
				fx.As(new(fleet.Controller)),
			),
			api.AsRoute(api.NewStatusRoute),
			api.AsRoute(api.NewTasksRoute),
			api.AsRoute(api.NewTasksLiveRoute),
			api.AsRoute(api.NewProjectsRoute),
			api.AsRoute(api.NewComputersRoute),
			api.AsRoute(api.NewTransfersRoute),
			api.AsRoute(api.NewDiskRoute),
			api.AsRoute(api.NewStatisticsRoute),
			api.AsRoute(api.NewSetModesRoute),
			api.AsRoute(api.NewBenchmarksRoute),
			api.AsRoute(api.NewVersionRoute),
			fx.Annotate(
				api.NewRouter,
				fx.ParamTags(`group:"routes"`),
			),
			api.NewAPIServer,
		),
		fx.Invoke(func(cfg *config.ClusterConfig) {
			logging.SetLevel(cfg.LogLevel)
		}),
		fx.Invoke(func(*http.Server) {}),
	).Run()
}
