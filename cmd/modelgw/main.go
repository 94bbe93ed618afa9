package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/labstack/echo/v4"

	conf "github.com/twinsights/modelgw/pkg/configs/gateway"
	"github.com/twinsights/modelgw/pkg/domain/modelgw"
	"github.com/twinsights/modelgw/pkg/utils/echoutil"
	"github.com/twinsights/modelgw/pkg/utils/filewatch"

	"github.com/twinsights/modelgw/cmd/modelgw/handlers"
)

func main() {

	configPath := flag.String("config-path", "", "gateway config path")
	loglevel := flag.String("loglevel", "info", "log level. debug|info|warn|error|off")
	flag.Parse()

	e := echo.New()

	// set log
	echoutil.SetLevel(e, *loglevel)
	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		e.Logger.Error(err)
	}
	e.Use(echoutil.LogHandlerFunc)

	// read configfile
	config, err := conf.LoadGatewayConfig(*configPath)
	if err != nil {
		log.Fatalf("can not read configration: %s", err)
	}

	{
		ctx, cancel, err := filewatch.UntilModifyContext(context.Background(), *configPath)
		if err != nil {
			log.Fatalf("can not watch configration: %s", err)
		}
		defer cancel()
		context.AfterFunc(ctx, func() {
			log.Println("config file is updated. quit to restart server.")
			graceful, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := e.Shutdown(graceful); err != nil {
				log.Printf("error on shutdown by config update: %s", err)
			}
		})
	}

	ctx := context.Background()
	gw, err := modelgw.Default(ctx, config)
	if err != nil {
		log.Fatalf("can not start gateway: %s", err)
	}
	defer gw.Close()

	// handlers
	{
		image := "image"
		e.POST("/api/models", handlers.RegisterModelHandler(gw.Registration()))
		e.GET("/api/models", handlers.ListModelsHandler(gw.Models()))
		e.GET("/api/models/:image", handlers.GetModelHandler(gw.Models(), image))

		e.POST("/api/predict", handlers.PredictHandler(gw.Prediction()))

		e.GET("/api/health", handlers.HealthHandler(gw.Models(), gw.Report()))
	}
	log.Println("registred routes:")
	for _, r := range e.Routes() {
		log.Println(r.Method, r.Path)
	}

	if boot := gw.Bootstrap(); boot != nil {
		policy := config.Builtins().OnFailure()
		go func() {
			if err := boot.Bootstrap(ctx); err != nil {
				if policy == conf.Fail {
					log.Fatalf("bootstrap failed: %s", err)
				}
				log.Printf("bootstrap finished with failures, serving degraded: %s", err)
				return
			}
			log.Println("bootstrap completed")
		}()
	}

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", config.Port())))
}
