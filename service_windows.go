//go:build windows

// Windows service support via github.com/kardianos/service, letting the
// converter run as a background service with proper Start/Stop handling.
package main

import (
	"fmt"
	"os"
	"time"

	"docuvert/logging"

	"github.com/kardianos/service"
)

// Program implements service.Interface around runApp.
type Program struct {
	exit chan struct{}
	code int
}

// Start launches the application in a goroutine; the service control
// manager expects Start to return promptly.
func (p *Program) Start(s service.Service) error {
	p.exit = make(chan struct{})
	go p.run()
	return nil
}

// Stop waits for the application to wind down.
func (p *Program) Stop(s service.Service) error {
	select {
	case <-p.exit:
	case <-time.After(60 * time.Second):
		return fmt.Errorf("timeout waiting for service to stop")
	}
	return nil
}

func (p *Program) run() {
	defer close(p.exit)

	logger, err := logging.NewLogger(false, "docuvert.log")
	if err != nil {
		p.code = 1
		return
	}
	defer logger.Sync()
	p.code = runApp(logger)
}

// serviceConfig describes the Windows service registration.
func serviceConfig() *service.Config {
	return &service.Config{
		Name:        "Docuvert",
		DisplayName: "Docuvert PDF Extraction Service",
		Description: "Converts uploaded PDFs into structured text with a multimodal model.",
		Option: service.KeyValue{
			"StartType": "automatic",
		},
	}
}

// RunAsService runs under the service control manager when not started
// interactively. Returns true when the service path was taken.
func RunAsService() (bool, error) {
	prg := &Program{}
	s, err := service.New(prg, serviceConfig())
	if err != nil {
		return false, fmt.Errorf("failed to create service: %w", err)
	}
	if service.Interactive() {
		return false, nil
	}
	if err := s.Run(); err != nil {
		return true, fmt.Errorf("service run failed: %w", err)
	}
	return true, nil
}

// HandleServiceCommand processes install/uninstall/start/stop commands.
// Returns true when a command was handled and the process should exit.
func HandleServiceCommand(args []string) bool {
	if len(args) == 0 {
		return false
	}
	switch args[0] {
	case "install", "uninstall", "start", "stop":
	default:
		return false
	}

	prg := &Program{}
	s, err := service.New(prg, serviceConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create service: %v\n", err)
		return true
	}
	if err := service.Control(s, args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "service %s failed: %v\n", args[0], err)
		return true
	}
	fmt.Printf("service %s succeeded\n", args[0])
	return true
}
