package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"edubot/agent"
	"edubot/audit"
	"edubot/capabilities/resources"
	"edubot/chat"
	"edubot/config"
	"edubot/generation"
	"edubot/llm"
	"edubot/mcpserver"
	"edubot/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	mcpMode := flag.Bool("mcp", false, "serve document tools over MCP on stdio")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Warning: failed to load config, using defaults: %v\n", err)
		cfg = config.Default()
	}

	setupLogging(cfg.Log.Level)

	st, err := store.NewStore(cfg.Store.Path)
	if err != nil {
		fmt.Printf("Startup failed: %v\n", err)
		return
	}
	defer st.Close()

	// Register one LLM per purpose; missing purposes fall back to chat
	manager := llm.NewManager()
	for purpose, llmCfg := range cfg.LLMs {
		if err := manager.RegisterLLM(llm.Purpose(purpose), llmCfg); err != nil {
			fmt.Printf("Startup failed: %v\n", err)
			return
		}
	}

	var auditLog *audit.Logger
	if cfg.Audit.Enabled {
		auditLog, err = audit.NewLogger(cfg.Audit.LogPath)
		if err != nil {
			log.Warn().Err(err).Msg("audit log disabled")
		}
	}

	pipeline := generation.NewPipeline(manager, st, auditLog)

	if *mcpMode {
		res := resources.NewClient(cfg.Resources.ExternalURL, cfg.Resources.MaxResults)
		if err := mcpserver.New(st, pipeline, res).ServeStdio(); err != nil {
			fmt.Printf("MCP server failed: %v\n", err)
		}
		return
	}

	orch := agent.NewOrchestrator(manager, st, pipeline, auditLog)
	svc := chat.NewService(st, orch)

	// Clean startup banner
	fmt.Println("\n=== EduBot ===")

	if len(cfg.LLMs) > 0 {
		fmt.Println("Active models:")
		for purpose, llmCfg := range cfg.LLMs {
			fmt.Printf("  %s: %s\n", purpose, llmCfg.Model)
		}
	}

	fmt.Println("\nAsk me to chat, create lectures, build slide decks or search your documents.")
	fmt.Println("What can I help you with?")

	reader := bufio.NewReader(os.Stdin)
	var sessionID string

	// Chat loop
	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nGraceful shutdown.")
			return
		default:
		}

		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println("\nGoodbye!")
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			fmt.Println("Goodbye!")
			return
		}

		resp, err := svc.ProcessMessage(ctx, chat.MessageRequest{
			Message:   input,
			SessionID: sessionID,
			UserID:    "local",
		})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}

		sessionID = resp.SessionID
		fmt.Println(resp.Reply)
		fmt.Println(strings.Repeat("-", 40))
	}
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}
