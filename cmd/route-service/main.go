package main

import (
	"flag"
	"net/http"
	"os"

	"github.com/RouteFleet/RouteFleet/internal/assignment"
	"github.com/RouteFleet/RouteFleet/internal/common/config"
	"github.com/RouteFleet/RouteFleet/internal/common/db"
	"github.com/RouteFleet/RouteFleet/internal/common/logger"
	"github.com/RouteFleet/RouteFleet/internal/common/server"
	"github.com/RouteFleet/RouteFleet/internal/common/tracing"
	"github.com/RouteFleet/RouteFleet/internal/driver"
	"github.com/RouteFleet/RouteFleet/internal/route"
	"github.com/RouteFleet/RouteFleet/internal/vehicle"
	"github.com/joho/godotenv"
	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
)

func main() {
	// .env 缺失不报错，环境变量仅用于覆盖本地开发配置
	_ = godotenv.Load()

	configPath := flag.String("config", "configs/route-service.json", "config file path")
	flag.Parse()
	if env := os.Getenv("ROUTEFLEET_CONFIG"); env != "" {
		*configPath = env
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		logrus.Fatalf("failed to init logger: %v", err)
	}

	tracer, closer, err := tracing.InitTracer(cfg.Server.Name, cfg.Jaeger.Endpoint, cfg.Jaeger.Sampler)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		opentracing.SetGlobalTracer(tracer)
		defer closer.Close()
	}

	gormDB, err := db.NewMySQL(
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Database,
		cfg.Database.MaxIdle,
		cfg.Database.MaxOpen,
	)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&route.Route{},
		&route.RouteSchedule{},
		&route.CombinedRoute{},
		&route.CombinedRouteItem{},
		&vehicle.Vehicle{},
		&driver.Driver{},
		&assignment.Assignment{},
		&assignment.ExecutionLog{},
	); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	vehicleRepo := vehicle.NewRepo(gormDB)
	driverRepo := driver.NewRepo(gormDB)
	assignmentRepo := assignment.NewRepo(gormDB)

	routeSvc := route.NewService(route.NewRepo(gormDB), assignmentRepo)
	assignmentSvc := assignment.NewService(assignmentRepo, routeSvc, vehicleRepo, driverRepo)

	routeHandler := route.NewHTTPHandler(routeSvc)
	vehicleHandler := vehicle.NewHTTPHandler(vehicleRepo)
	driverHandler := driver.NewHTTPHandler(driverRepo)
	assignmentHandler := assignment.NewHTTPHandler(assignmentSvc)

	err = server.RunHTTPServer(cfg, log, func(mux *http.ServeMux) error {
		routeHandler.RegisterRoutes(mux)
		vehicleHandler.RegisterRoutes(mux)
		driverHandler.RegisterRoutes(mux)
		assignmentHandler.RegisterRoutes(mux)
		return nil
	})
	if err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}
