package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"adminstyler/api"
	"adminstyler/config"
	"adminstyler/dom"
	"adminstyler/engine"
	"adminstyler/history"
	"adminstyler/model"
	"adminstyler/perf"
	"adminstyler/persist"
	"adminstyler/storage"
	"adminstyler/tabsync"
	"adminstyler/theme"
)

var (
	dataDir    string
	listen     string
	syncHub    string
	appVersion = "0.3.1"
)

// adminSelectors are the document elements the visibility options target.
var adminSelectors = []string{
	"#wp-admin-bar-wp-logo",
	"#wp-admin-bar-wp-logo .ab-icon",
	"#contextual-help-link-wrap",
	"#screen-options-link-wrap",
	".update-nag",
}

var rootCmd = &cobra.Command{
	Use:   "adminstyler",
	Short: "adminstyler – live admin panel theming engine",
	Long:  "Adminstyler applies admin UI theme options to a live document model and serves them over a local preview API with cross-session sync.",
	Run:   run,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long:  "Manage adminstyler configuration files.",
}

var configGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a default configuration file",
	Long:  "Generate a default adminstyler.config file in the specified data directory (or current directory if not specified).",
	Run:   runConfigGenerate,
}

var baseStyleCmd = &cobra.Command{
	Use:   "basestyle",
	Short: "Print the generated base stylesheet",
	Long:  "Print the :root stylesheet defining every themable variable at its default value.",
	RunE:  runBaseStyle,
}

func init() {
	wd, _ := os.Getwd()
	rootCmd.Version = appVersion
	rootCmd.Flags().StringVar(&dataDir, "data-dir", wd, "Data directory (default: current directory)")
	rootCmd.Flags().StringVar(&listen, "listen", ":8080", "Address to listen on")
	rootCmd.Flags().StringVar(&syncHub, "sync-hub", "", "ws:// URL of another instance's /api/sync endpoint")

	configGenerateCmd.Flags().StringVar(&dataDir, "data-dir", wd, "Data directory where config file will be created (default: current directory)")
	configCmd.AddCommand(configGenerateCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(baseStyleCmd)
}

func run(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(dataDir)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Override config with CLI flags only if they were explicitly provided.
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = dataDir
	} else if cfg.DataDir != "" && cfg.DataDir != "." {
		dataDir = cfg.DataDir
	}
	if cmd.Flags().Changed("listen") {
		cfg.ListenAddr = listen
	}
	if cmd.Flags().Changed("sync-hub") {
		cfg.SyncHubURL = syncHub
	}

	dataDirAbs, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		log.Fatalf("resolve data dir: %v", err)
	}
	cfg.DataDir = dataDirAbs

	store, err := storage.Open(cfg.DataDir)
	if err != nil {
		log.Fatalf("open storage: %v", err)
	}
	defer store.Close()

	registry, err := theme.NewRegistry()
	if err != nil {
		log.Fatalf("build registry: %v", err)
	}
	mapper, err := theme.NewMapper(registry)
	if err != nil {
		log.Fatalf("build mapper: %v", err)
	}

	doc := dom.NewMemoryDocument()
	for _, sel := range adminSelectors {
		doc.AddElement(sel)
	}

	hist := history.New(cfg.HistoryLimit)
	monitor := perf.NewMonitor(time.Duration(cfg.BudgetMs) * time.Millisecond)
	eng := engine.New(registry, mapper, doc, hist, monitor, time.Duration(cfg.BudgetMs)*time.Millisecond)

	eng.RegisterHandler(theme.HandlerColorScheme, func(d dom.Document, value string) error {
		d.SetAttribute("data-theme", value)
		return store.SaveScheme(value)
	})
	eng.RegisterHandler(theme.HandlerBarLogo, func(d dom.Document, value string) error {
		desc := theme.VariableDescriptor{Type: theme.TypeColor}
		sanitized, err := theme.Validate(value, &desc)
		if err != nil {
			return err
		}
		d.SetInlineStyle("#wp-admin-bar-wp-logo .ab-icon", "color", sanitized)
		return nil
	})

	// Seed defaults, replay what the last session applied, then pin the
	// reset point to the restored state.
	eng.Bootstrap()
	snap, err := store.Snapshot()
	if err != nil {
		log.Printf("load snapshot: %v", err)
	} else if len(snap.Options) > 0 {
		res := eng.RestoreSnapshot(snap.Options)
		log.Printf("[main] restored %d/%d stored options", res.Applied, len(snap.Options))
	}
	eng.MarkInitial()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var syncer *tabsync.Synchronizer
	if cfg.SyncEnabled && cfg.SyncHubURL != "" {
		transport, err := tabsync.DialHub(cfg.SyncHubURL)
		if err != nil {
			log.Printf("[main] sync hub unreachable, continuing without sync: %v", err)
		} else {
			syncer = tabsync.New(transport, func(msg model.BroadcastMessage) {
				eng.ApplyRemote(msg)
			})
			syncer.Start()
			defer syncer.Close()
			log.Printf("[main] cross-session sync connected to %s", cfg.SyncHubURL)
		}
	}

	var saver *persist.Client
	var debouncer *persist.Debouncer
	if cfg.SaveEndpoint != "" {
		policy := persist.RetryPolicy{
			MaxAttempts:     cfg.RetryMaxAttempts,
			InitialInterval: time.Duration(cfg.RetryInitialMs) * time.Millisecond,
			MaxInterval:     2 * time.Second,
		}
		saver = persist.NewClient(cfg.SaveEndpoint, cfg.SaveAction, "", policy, nil)
		debouncer = persist.NewDebouncer(time.Duration(cfg.DebounceMs)*time.Millisecond, func(optionID, value string) {
			if _, err := saver.Save(ctx, optionID, value); err != nil {
				log.Printf("[persist] %s: %v", optionID, err)
			}
		})
		defer debouncer.Close()
	}

	eng.SetOnApplied(func(rec model.ChangeRecord) {
		if syncer != nil {
			_ = syncer.Broadcast(rec.OptionID, rec.Value)
		}
		if debouncer != nil {
			debouncer.Trigger(rec.OptionID, rec.Value)
		}
	})

	hub := api.NewHub()
	server := api.NewServer(eng, registry, doc, store, monitor, hub)

	mux := http.NewServeMux()
	server.Register(mux)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: mux,
	}

	log.Printf("[main] listening on http://%s", cfg.ListenAddr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}

func runConfigGenerate(cmd *cobra.Command, args []string) {
	dataDirAbs, err := filepath.Abs(dataDir)
	if err != nil {
		log.Fatalf("resolve data dir: %v", err)
	}

	cfg := config.Default()
	cfg.DataDir = dataDirAbs

	cfgPath := filepath.Join(dataDirAbs, "adminstyler.config")
	if _, err := os.Stat(cfgPath); err == nil {
		log.Fatalf("config file already exists: %s", cfgPath)
	}

	if err := config.Save(cfg); err != nil {
		log.Fatalf("failed to save config: %v", err)
	}

	fmt.Printf("Generated default config file: %s\n", cfgPath)
}

func runBaseStyle(cmd *cobra.Command, args []string) error {
	registry, err := theme.NewRegistry()
	if err != nil {
		return err
	}
	fmt.Print(registry.GenerateBaseStyle())
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
