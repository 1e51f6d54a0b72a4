package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"social_post_studio/config"
	"social_post_studio/exporter"
	"social_post_studio/generator"
	"social_post_studio/logger"
	"social_post_studio/server"
)

var verbose bool

func main() {
	configPath := flag.String("config", "config/config.json", "path to config.json")
	idea := flag.String("idea", "", "content idea to generate posts for")
	toneName := flag.String("tone", string(generator.ToneProfessional), "tone: Professional, Witty or Urgent")
	out := flag.String("out", "", "directory to export the generated drafts to")
	serve := flag.Bool("serve", false, "start web server")
	addr := flag.String("addr", "", "http listen address when --serve (overrides config.server_addr)")
	flag.BoolVar(&verbose, "v", false, "enable info logs")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if !*serve && !verbose {
		cfg.Log.Level = "warn"
		cfg.Log.Encoding = "console"
	}
	appLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	text, images, err := buildClients(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	agent, err := generator.NewAgent(text, appLogger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	visual, err := generator.NewVisualizer(images, appLogger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Web server mode
	if *serve {
		listen := cfg.ServerAddr
		if *addr != "" {
			listen = *addr
		}
		if err := runServer(agent, visual, appLogger, cfg, listen); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if *idea == "" {
		fmt.Fprintln(os.Stderr, "--idea is required unless --serve is set")
		os.Exit(1)
	}
	tone, err := generator.ParseTone(*toneName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := runOnce(agent, visual, appLogger, *idea, tone, *out); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildClients(cfg config.Config) (generator.TextClient, generator.ImageClient, error) {
	settings := cfg.LLMSettings()
	switch cfg.Provider {
	case config.ProviderGemini:
		text, err := generator.NewGeminiLLMFromConfig(settings)
		if err != nil {
			return nil, nil, err
		}
		images, err := generator.NewImagenImagesFromConfig(settings)
		if err != nil {
			return nil, nil, err
		}
		return text, images, nil
	case config.ProviderOpenAI:
		text, err := generator.NewOpenAILLMFromConfig(settings)
		if err != nil {
			return nil, nil, err
		}
		images, err := generator.NewOpenAIImagesFromConfig(settings)
		if err != nil {
			return nil, nil, err
		}
		return text, images, nil
	case config.ProviderMock:
		return generator.MockLLM{}, generator.MockImages{}, nil
	default:
		return nil, nil, fmt.Errorf("llm provider %s not supported", cfg.Provider)
	}
}

func runServer(agent *generator.Agent, visual *generator.Visualizer, appLogger *zap.Logger, cfg config.Config, listen string) error {
	srv, err := server.New(agent, visual, appLogger, cfg.CORSOrigins)
	if err != nil {
		return err
	}
	httpServer := &http.Server{
		Addr:              listen,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Starting web server", zap.String("addr", listen), zap.String("provider", cfg.Provider))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("web server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down web server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(ctx)
}

func runOnce(agent *generator.Agent, visual *generator.Visualizer, appLogger *zap.Logger, idea string, tone generator.Tone, outDir string) error {
	sess := generator.NewSession("cli", agent, visual, appLogger)
	sess.OnChange(func(s generator.Snapshot) {
		switch s.Status {
		case generator.StatusLoading:
			fmt.Fprintln(os.Stderr, "Generating posts...")
		case generator.StatusPartialResults:
			fmt.Fprintf(os.Stderr, "Posts ready, generating %d images...\n", len(s.Results))
		}
	})

	ctx := context.Background()
	if err := sess.Submit(ctx, idea, tone); err != nil {
		return err
	}

	snap := sess.Snapshot()
	for _, r := range snap.Results {
		fmt.Printf("=== %s (%s) ===\n%s\n\n", r.Platform, r.AspectRatio(), r.Text)
	}

	if outDir == "" {
		return nil
	}
	exp, err := exporter.New(outDir, appLogger)
	if err != nil {
		return err
	}
	index, err := exp.Export(ctx, idea, snap.Results)
	if err != nil {
		return err
	}
	fmt.Println(index)
	return nil
}
