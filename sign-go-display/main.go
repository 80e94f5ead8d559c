package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"sign-tools/sign-go-display/config"
	"sign-tools/sign-go-display/display"
	"sign-tools/sign-go-display/eventlog"
	"sign-tools/sign-go-display/feed"
	"sign-tools/sign-go-display/store"
	"sign-tools/sign-go-display/telemetry"
	"sign-tools/sign-go-display/tui"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// .env is optional; flags still win over it.
	godotenv.Load()

	// --- Argument Parsing ---
	mode := flag.String("mode", envOr("SIGN_FEED_MODE", "tcp"), "Feed mode: 'tcp' (listen for PLC push), 'serial', or 'modbus' (poll)")
	listenTCP := flag.String("listen", envOr("SIGN_LISTEN", fmt.Sprintf(":%d", config.DefaultTCPListenPort)), "TCP listen address for the PLC push feed")
	targetSerial := flag.String("target-serial", envOr("SIGN_SERIAL_PORT", config.DefaultSerialPort), "Serial port (e.g., COM3 or /dev/ttyUSB0)")
	targetModbus := flag.String("target-modbus", envOr("SIGN_MODBUS_TARGET", config.DefaultModbusTarget), "Modbus TCP target for poll mode")
	dbFile := flag.String("db", envOr("SIGN_DB", "sign.db"), "Path to the sign configuration SQLite database")
	mqttBroker := flag.String("mqtt", os.Getenv("SIGN_MQTT_BROKER"), "MQTT broker URL for telemetry (e.g., tcp://127.0.0.1:1883); empty disables")
	flag.Parse()

	var target string
	switch *mode {
	case "tcp":
		target = *listenTCP
	case "serial":
		target = *targetSerial
	case "modbus":
		target = *targetModbus
	default:
		fmt.Println("Invalid mode. Use 'tcp', 'serial' or 'modbus'.")
		os.Exit(1)
	}

	// --- Logging Setup ---
	soeLogFile, err := os.OpenFile("display_events.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Fatalf("Failed to open SOE log file: %v", err)
	}
	defer soeLogFile.Close()
	soeLogger := log.New(soeLogFile, "", log.LstdFlags|log.Lmicroseconds)

	dbLogFile, err := os.OpenFile("display_database.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Fatalf("Failed to open database log file: %v", err)
	}
	defer dbLogFile.Close()
	dbLogger := log.New(dbLogFile, "DB: ", log.LstdFlags|log.Lmicroseconds)

	// --- Database and Config Loading ---
	dbConn, err := sql.Open("sqlite", *dbFile)
	if err != nil {
		log.Fatalf("FATAL: Could not open database %s: %v", *dbFile, err)
	}
	defer dbConn.Close()

	appConfig, err := store.Load(dbConn)
	if err != nil {
		log.Fatalf("FATAL: Could not load configuration from database: %v.\nHINT: Please ensure '%s' exists and is a valid sign database. You can create it using the 'sign-db-init' tool.", err, *dbFile)
	}
	log.Printf("Successfully loaded %d bit configs and %d videos from database.", len(appConfig.Bits), len(appConfig.Videos))

	// --- Optional Telemetry ---
	var pub display.Publisher
	if *mqttBroker != "" {
		client, err := telemetry.NewClient(*mqttBroker, "sign-go-display", soeLogger)
		if err != nil {
			log.Fatalf("FATAL: Could not connect to MQTT broker %s: %v", *mqttBroker, err)
		}
		defer client.Close()
		pub = client
	}

	// --- Coordinated Shutdown Setup ---
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	// --- Channel and State Initialization ---
	eventChan := make(chan eventlog.Event, 100)
	state := display.NewSignState(eventChan, appConfig)

	// --- Start Goroutines ---
	wg.Add(4)
	if *mode == "modbus" {
		go feed.RunModbusFeed(ctx, &wg, state, soeLogger, target)
	} else {
		go feed.RunFeed(ctx, &wg, state, soeLogger, *mode, target)
	}
	go display.RunEvaluator(ctx, &wg, state, soeLogger, pub)
	go display.RunConfigReloader(ctx, &wg, state, dbConn, soeLogger)
	go eventlog.Writer(ctx, &wg, eventChan, dbLogger)

	// --- Start TUI ---
	tuiModel := tui.NewModel(state, soeLogger)
	p := tea.NewProgram(tuiModel, tea.WithAltScreen())

	go func() {
		if err := p.Start(); err != nil {
			log.Fatalf("Alas, there's been an error: %v", err)
		}
		// When TUI exits for any reason, trigger the shutdown.
		cancel()
	}()

	// --- Graceful Shutdown Handling ---
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-shutdownChan:
		log.Println("Shutdown signal received. Cleaning up.")
		p.Quit()
	case <-ctx.Done():
		log.Println("TUI exited. Shutting down other processes.")
	}

	log.Println("Waiting for goroutines to finish...")
	wg.Wait()
	log.Println("All goroutines finished. Exiting.")
	close(eventChan)
}
