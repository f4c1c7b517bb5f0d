package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/talkincode/toughstore/config"
	"github.com/talkincode/toughstore/internal/adminapi"
	"github.com/talkincode/toughstore/internal/app"
	"github.com/talkincode/toughstore/internal/webserver"
)

var (
	confFile = flag.String("conf", "/etc/toughstore.yml", "config file")
	initDb   = flag.Bool("initdb", false, "drop and recreate the database schema, then exit")
	migrate  = flag.Bool("migrate", false, "run schema migration, then exit")
	showVer  = flag.Bool("v", false, "print version and exit")
)

var buildVersion = "dev"

func main() {
	flag.Parse()
	if *showVer {
		fmt.Println("toughstore", buildVersion)
		return
	}

	cfg := config.LoadConfig(*confFile)
	if err := cfg.InitDirs(); err != nil {
		fmt.Fprintln(os.Stderr, "init dirs:", err)
		os.Exit(1)
	}
	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initDb {
		application.InitDb()
		zap.S().Info("database initialized")
		return
	}
	if *migrate {
		if err := application.MigrateDB(true); err != nil {
			zap.S().Errorf("migrate failed: %s", err)
			os.Exit(1)
		}
		zap.S().Info("database migrated")
		return
	}

	webserver.Init(application)
	adminapi.InitRouter()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		cancel()
	}()

	if err := webserver.Start(ctx); err != nil {
		zap.S().Errorf("webserver stopped: %s", err)
		os.Exit(1)
	}
}
