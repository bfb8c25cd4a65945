package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	storybot "github.com/opd-ai/storybot/src"
	"github.com/opd-ai/storybot/srv/generator"
	"github.com/opd-ai/storybot/srv/util"
)

var (
	prompt     = flag.String("prompt", "", "the story prompt")
	suggestion = flag.Int("suggestion", -1, "use one of the built-in suggestion prompts (see -list)")
	storyType  = flag.String("type", "", "story type id (configured prompt mode)")
	character  = flag.String("character", "", "main character id (configured prompt mode)")
	setting    = flag.String("setting", "", "setting id (configured prompt mode)")
	apiKey     = flag.String("key", "", "API key, required in caller key mode")
	out        = flag.String("out", "", "file or directory to save the story to (default $STORYBOT_OUTPUT_DIR, else print)")
	list       = flag.Bool("list", false, "list the catalog ids and suggestions and exit")
	envFile    = flag.String("env", ".env", "optional dotenv file loaded before the environment")
)

func main() {
	flag.Parse()

	if *list {
		printCatalog()
		return
	}

	cfg, err := storybot.LoadConfig(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	if *storyType != "" || *character != "" || *setting != "" {
		cfg.PromptMode = storybot.PromptConfigured
	}

	logger, err := util.NewLogger(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("Story generation failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *storybot.Config, logger *zap.Logger) error {
	gen, err := storybot.NewGenerator(cfg, logger)
	if err != nil {
		return err
	}

	session := generator.NewSession("cli", generator.Options{
		Generator:   gen,
		PromptMode:  cfg.PromptMode,
		KeyMode:     cfg.KeyMode,
		OperatorKey: cfg.APIKey,
		Provider:    cfg.Provider,
		Logger:      logger,
	})
	defer session.Dispose()

	session.SetEmitter(func(ev generator.Event) {
		if ev.Type != generator.EventNotification || ev.Notification == nil {
			return
		}
		n := ev.Notification
		if n.Variant == generator.VariantDestructive {
			logger.Warn(n.Title, zap.String("detail", n.Description))
		} else {
			logger.Info(n.Title, zap.String("detail", n.Description))
		}
	})

	if *suggestion >= 0 {
		if err := session.UseSuggestion(*suggestion); err != nil {
			return err
		}
	} else {
		session.SetDraftPrompt(*prompt)
	}
	session.SetAPIKey(*apiKey)
	for kind, id := range map[storybot.Kind]string{
		storybot.KindStoryType: *storyType,
		storybot.KindCharacter: *character,
		storybot.KindSetting:   *setting,
	} {
		if id == "" {
			continue
		}
		if err := session.Select(kind, id); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := session.Submit(ctx); err != nil {
		return err
	}

	story := session.Story()
	dest, err := outputPath(*out, cfg)
	if err != nil {
		return err
	}
	if dest == "" {
		fmt.Println(story)
		return nil
	}
	path, err := storybot.SaveStory(story, session.Draft().TrimmedPrompt(), dest)
	if err != nil {
		return err
	}
	logger.Info("Story saved", zap.String("path", path))
	return nil
}

// outputPath picks the save destination: the -out flag, then the configured
// output directory, which is created if missing. Empty means print to stdout.
func outputPath(flagOut string, cfg *storybot.Config) (string, error) {
	if flagOut != "" || cfg.OutputDir == "" {
		return flagOut, nil
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	return cfg.OutputDir, nil
}

func printCatalog() {
	sections := []struct {
		title   string
		options []storybot.Option
	}{
		{"Story types (-type)", storybot.StoryTypes},
		{"Characters (-character)", storybot.Characters},
		{"Settings (-setting)", storybot.Settings},
	}
	for _, s := range sections {
		fmt.Println(s.title)
		for _, o := range s.options {
			fmt.Printf("  %-20s %s - %s\n", o.ID, o.Name, o.Description)
		}
		fmt.Println()
	}
	fmt.Println("Suggestions (-suggestion)")
	for i, p := range storybot.Suggestions {
		fmt.Printf("  %d  %s\n", i, p)
	}
}
