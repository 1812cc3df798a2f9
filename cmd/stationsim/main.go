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

	"github.com/moovolt/csms/station"
)

const appVersion = "1.2.0"

var (
	chargePointID string
	csURL         string
	showVersion   bool
)

func init() {
	time.Local = time.UTC
}

func main() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT)
	defer signal.Stop(signals)

	flag.StringVar(&chargePointID, "cp", "", "charge point id")
	flag.StringVar(&csURL, "cs", "", "central system url (e.g. ws://localhost:8887/ocpp)")
	flag.BoolVar(&showVersion, "version", false, "show version")
	flag.Parse()

	if showVersion {
		fmt.Println("Current App Version:", appVersion)
		os.Exit(0)
	}
	if chargePointID == "" {
		println("missing charge point id")
		flag.Usage()
		os.Exit(1)
	}
	if csURL == "" {
		println("missing central system url")
		flag.Usage()
		os.Exit(1)
	}

	appLogger := log.StandardLogger().WithField("cp", chargePointID)

	client, err := station.Connect(csURL, chargePointID, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatalln("connecting to central system")
	}

	ctx, cancel := context.WithTimeout(context.Background(), station.CallTimeout)
	boot, err := client.Boot(ctx)
	cancel()
	if err != nil {
		appLogger.WithError(err).Fatalln("boot notification")
	}
	appLogger.Infoln("Booted:", boot.Status, "heartbeat interval", boot.Interval)

	go client.HeartbeatLoop()

	select {
	case <-signals:
		fmt.Println("Gracefully shutting down...")
		client.Stop()
	case <-client.Done():
		appLogger.Warnln("connection lost")
		os.Exit(1)
	}
}
