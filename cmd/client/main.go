package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ivanwe2/battleships/internal/config"
	"github.com/ivanwe2/battleships/internal/game/session"
	"github.com/ivanwe2/battleships/internal/logger"
	"github.com/ivanwe2/battleships/internal/network/client"
	"github.com/ivanwe2/battleships/internal/sound"
	"github.com/ivanwe2/battleships/internal/ui"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "config file path")
	envPath := flag.String("env", ".env", "env file path")
	relayURL := flag.String("relay", "", "relay websocket URL, overrides the config")
	name := flag.String("name", "", "player name, overrides the config")
	mute := flag.Bool("mute", false, "disable sound effects")
	flag.Parse()

	if err := config.LoadEnvFile(*envPath); err != nil {
		log.Fatalf("failed to load env file: %v", err)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("failed to load config, using defaults: %v", err)
		cfg = config.Default()
	}
	if *relayURL != "" {
		cfg.Client.RelayURL = *relayURL
	}
	if *name != "" {
		cfg.Client.Player = *name
	}
	if *mute {
		cfg.Client.Sound = false
	}

	// the terminal belongs to the UI, so logs go to a file
	if err := logger.Init(cfg.Client.LogDir); err != nil {
		fmt.Fprintf(os.Stderr, "debug log disabled: %v\n", err)
	}
	defer logger.Close()

	opts, err := session.OptionsFromConfig(cfg)
	if err != nil {
		log.Fatalf("invalid game config: %v", err)
	}

	c := client.New(client.OptionsFromConfig(cfg), nil)
	defer c.Close()
	s := session.New(opts, c)
	c.Bind(s)

	m := ui.NewOnlineModel(s, c)
	if cfg.Client.Sound {
		sounds := sound.NewManager(cfg.Client.SoundDir)
		if err := sounds.Init(); err != nil {
			logger.LogWarn("sound disabled: %v", err)
		} else {
			defer sounds.Close()
			m.SetSoundPlayer(sounds)
		}
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.LogError("client exited: %v", err)
		log.Fatalf("failed to run client: %v", err)
	}
}
