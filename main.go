package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"slices"

	"github.com/toolstream/agentdeck/internal/domain/entities"
	"github.com/toolstream/agentdeck/internal/domain/interfaces"
	"github.com/toolstream/agentdeck/internal/domain/services"
	"github.com/toolstream/agentdeck/internal/impl/agentos"
	"github.com/toolstream/agentdeck/internal/impl/config"
	repositoriesJson "github.com/toolstream/agentdeck/internal/impl/repositories/json"
	"github.com/toolstream/agentdeck/internal/store"
	"github.com/toolstream/agentdeck/internal/tui"
	"github.com/toolstream/agentdeck/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

var (
	version = "unknown" // This should be set during build with -ldflags="-X main.version=1.0.0"
)

func main() {
	// Check version flag first
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Println(version)
		os.Exit(0)
	}

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: agentdeck [serve] [--transport=type]\n")
		flag.PrintDefaults()
	}

	transport := flag.String("transport", "sse", "Run transport: sse or ws")

	// Preserve the flags by not calling flag.Parse() yet
	flag.CommandLine.Parse([]string{})

	// Default mode is "tui"
	modeStr := "tui"

	// Check the first non-flag argument for the mode
	if len(os.Args) > 1 && os.Args[1] == "serve" {
		modeStr = "serve"
		os.Args = slices.Delete(os.Args, 0, 1)
	}

	if len(os.Args) > 1 && os.Args[1] == "tui" {
		modeStr = "tui"
		os.Args = slices.Delete(os.Args, 0, 1)
	}

	// Parse the remaining arguments which are flags
	flag.Parse()

	if *transport != "sse" && *transport != "ws" {
		fmt.Fprintf(os.Stderr, "Invalid transport type: %s\n", *transport)
		flag.Usage()
		os.Exit(1)
	}

	logConfig := zap.NewDevelopmentConfig()
	logConfig.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	logger, err := logConfig.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.InitConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	settingsRepo, err := repositoriesJson.NewJSONSettingsRepository(cfg.DataDir)
	if err != nil {
		logger.Fatal("Failed to initialize settings repository", zap.Error(err))
	}

	st := store.NewStore(settingsRepo, logger)
	st.Hydrate(context.Background())
	if st.SelectedEndpoint() == "" {
		st.SetSelectedEndpoint(cfg.DefaultEndpoint().URL)
	}

	var client interfaces.AgentClient
	if *transport == "ws" {
		client = agentos.NewWSClient(logger)
	} else {
		client = agentos.NewClient(logger)
	}

	chatService := services.NewChatService(client, st, logger)

	endpoints := make([]*entities.Endpoint, len(cfg.Endpoints))
	for i := range cfg.Endpoints {
		endpoints[i] = &cfg.Endpoints[i]
	}

	if modeStr == "serve" {
		uiApp := ui.NewUI(chatService, st, endpoints, logger)
		if err := uiApp.Run(cfg.HTTPPort); err != nil {
			logger.Fatal("UI failed", zap.Error(err))
		}
	} else {
		p := tea.NewProgram(tui.NewTUI(chatService, st, endpoints), tea.WithAltScreen())

		unsubscribe := tui.Subscribe(p)
		defer unsubscribe()

		if _, err := p.Run(); err != nil {
			log.Fatal(err)
		}
	}
}
