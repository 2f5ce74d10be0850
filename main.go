package main

import (
	"embed"
	"flag"
	"fmt"
	"os"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"go.uber.org/zap"

	"github.com/chazu/helix/pkg/config"
	"github.com/chazu/helix/pkg/logger"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	configFile := flag.String("config", "", "Path to helix.yaml")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting", zap.String("config", *configFile), zap.String("log_level", cfg.Logging.Level))
	app := NewAppWithConfig(cfg)

	err = wails.Run(&options.App{
		Title:  "Helix",
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup: app.startup,
		Bind: []interface{}{
			app,
		},
	})
	if err != nil {
		logger.Error("wails exited", zap.Error(err))
		os.Exit(1)
	}
}
