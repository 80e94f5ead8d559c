package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"sign-tools/plc-go-sim/config"
	"sign-tools/plc-go-sim/sim"
	"sign-tools/plc-go-sim/tui"
)

func main() {
	logFile, err := os.OpenFile("sim_transaction.log", os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer logFile.Close()
	logger := log.New(logFile, "", log.LstdFlags|log.Lmicroseconds)

	mode := flag.String("mode", "push", "Feed mode: 'push' (connect to the controller) or 'modbus' (serve polls)")
	target := flag.String("target", config.DefaultControllerTarget, "Controller address to push packets to")
	listen := flag.String("listen", config.DefaultModbusListen, "Listen address for Modbus mode")
	scenarioPath := flag.String("scenario", "", "Path to a scenario script file to run.")
	flag.Parse()

	simulator := sim.NewSimulator(logger)

	go simulator.RunCommandProcessor()

	if *scenarioPath != "" {
		go simulator.RunScenario(*scenarioPath)
	}

	if *mode == "push" {
		go simulator.RunPush(*target)
	} else if *mode == "modbus" {
		go simulator.RunModbusServer(*listen)
	} else {
		log.Fatalf("Invalid mode: %s. Choose 'push' or 'modbus'", *mode)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		logger.Println("Ctrl+C detected, stopping simulator...")
		simulator.Stop()
	}()

	p := tea.NewProgram(tui.NewModel(simulator, logger), tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running TUI: %v", err)
		os.Exit(1)
	}

	logger.Println("Application exiting.")
}
