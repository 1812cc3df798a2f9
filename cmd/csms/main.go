package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/moovolt/csms/central"
	"github.com/moovolt/csms/ocpp16/core"
)

const appVersion = "1.2.0"

var (
	configPath  string
	listenAddr  string
	dbPath      string
	showVersion bool

	ll        = log.StandardLogger()
	appLogger = ll.WithContext(context.Background())
)

func init() {
	time.Local = time.UTC
}

func main() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT)
	defer signal.Stop(signals)

	flag.StringVar(&configPath, "config", "", "path to config.toml")
	flag.StringVar(&listenAddr, "listen", "", "station endpoint address (overrides config)")
	flag.StringVar(&dbPath, "db", "", "db path (overrides config)")
	flag.BoolVar(&showVersion, "version", false, "show version")
	flag.Parse()

	if showVersion {
		fmt.Println("Current App Version:", appVersion)
		os.Exit(0)
	}

	cfg := defaultServiceConfig()
	if configPath != "" {
		loaded, err := loadServiceConfig(configPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
	}
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	ll.SetLevel(level)

	startedAt := time.Now()

	store, err := openStore(cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	if err := store.seed(cfg, startedAt); err != nil {
		log.Fatal(err)
	}

	handler := &centralHandler{store: store, logger: appLogger}
	authorizer := &storeAuthorizer{store: store}
	server := central.NewServer(cfg.serverConfig(startedAt), core.NewRegistry(), handler, authorizer, appLogger)

	controlPort, err := startControlServer(server, store, cfg.ControlAddr)
	if err != nil {
		appLogger.WithError(err).Fatalln("Error starting control server")
	}
	appLogger.Infoln("Control Server started on port", controlPort)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe(cfg.ListenAddr)
	}()

	select {
	case err := <-serveErr:
		appLogger.WithError(err).Fatalln("central system stopped")
	case <-signals:
	}

	go func() {
		<-signals
		fmt.Println("Forcefully shutting down...")
		store.Close()
		os.Exit(2)
	}()

	fmt.Println("Gracefully shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		appLogger.WithError(err).Error("shutdown")
	}
}
