package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/roomchat/roomchat-go/internal/logging"
	"github.com/roomchat/roomchat-go/roomchat"
)

type envConfig struct {
	URL      string `env:"ROOMCHAT_URL"`
	LogLevel string `env:"ROOMCHAT_LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"ROOMCHAT_LOG_FILE" envDefault:"roomchat-tui.log"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	urlFlag := flag.String("url", "", "chat server URL (overrides ROOMCHAT_URL)")
	logLevel := flag.String("log-level", ec.LogLevel, "log level")
	flag.Parse()

	// Log to file only; stdout belongs to the renderer.
	logCfg := logging.DefaultConfig()
	logCfg.Level = *logLevel
	logCfg.FilePath = ec.LogFile
	logging.Init(logCfg)

	cfg := roomchat.DefaultConfig()
	if ec.URL != "" {
		cfg.URL = ec.URL
	}
	if *urlFlag != "" {
		cfg.URL = *urlFlag
	}

	client := roomchat.NewClient(cfg)
	client.SetLogger(logging.New("client"))

	p := tea.NewProgram(newApp(client, cfg.URL), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	_ = client.Close()
	return nil
}
