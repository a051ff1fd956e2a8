package main

import (
	"fmt"
	"os"

	"charm-transfer-tui/config"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"
)

// -------------------- MAIN --------------------

func main() {
	configPath := flag.StringP("config", "c", config.DefaultPath(), "path to the config file")
	provider := flag.StringP("provider", "p", "", "wallet provider URL (overrides "+config.ProviderEnv+" and the config file)")
	showLog := flag.BoolP("log", "l", false, "open the log panel on start")
	flag.Parse()

	cfg, err := config.LoadOrCreate(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
	}
	if *showLog {
		cfg.Logger = true
	}

	m := newModel(cfg, *configPath, *provider)
	p := tea.NewProgram(&m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}
