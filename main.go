package main

import (
	"embed"
	"fmt"
	"os"
	"runtime"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/linux"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"github.com/wailsapp/wails/v2/pkg/options/windows"

	"popomomo/app"
	"popomomo/config"
	"popomomo/logging"
)

//go:embed all:frontend/dist
var assets embed.FS

//go:embed build/appicon.png
var icon []byte

// Version is set at build time.
var Version = "0.1.0"

var (
	flagConfig      string
	flagDebug       bool
	flagStartHidden bool
	flagMetricsAddr string
)

var rootCmd = &cobra.Command{
	Use:           "popomomo",
	Short:         "Pomodoro timer living in the system tray",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return run(cfg)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("popomomo %s (%s/%s)\n", Version, runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "path to config.json")
	rootCmd.Flags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.Flags().BoolVar(&flagStartHidden, "start-hidden", false, "start with the window hidden")
	rootCmd.Flags().StringVar(&flagMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this loopback address")
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flagConfig != "" {
		cfg, err = config.LoadFrom(flagConfig)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("debug") || os.Getenv("POPOMOMO_DEBUG") != "" {
		cfg.DebugLogging = flagDebug || os.Getenv("POPOMOMO_DEBUG") != ""
	}
	if flags.Changed("start-hidden") {
		cfg.StartHidden = flagStartHidden
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = flagMetricsAddr
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(cfg *config.Config) error {
	opts := logging.Options{Debug: cfg.GetDebugLogging()}
	if logDir, err := config.GetLogDir(); err == nil {
		opts = logging.DefaultOptions(logDir)
		opts.Debug = cfg.GetDebugLogging()
	}
	logger, closer := logging.Setup(opts)
	defer closer.Close()

	application := app.New(cfg, icon, logger)

	return wails.Run(&options.App{
		Title:             "Popomomo",
		Width:             cfg.WindowWidth,
		Height:            cfg.WindowHeight,
		MinWidth:          320,
		MinHeight:         480,
		StartHidden:       cfg.StartHidden,
		HideWindowOnClose: false,
		BackgroundColour:  &options.RGBA{R: 255, G: 255, B: 255, A: 255},
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup:        application.Startup,
		OnDomReady:       application.DomReady,
		OnBeforeClose:    application.BeforeClose,
		OnShutdown:       application.Shutdown,
		WindowStartState: options.Normal,
		Bind: []interface{}{
			application,
		},
		Windows: &windows.Options{
			WebviewIsTransparent: false,
			WindowIsTranslucent:  false,
			DisableWindowIcon:    false,
			ZoomFactor:           1.0,
		},
		Mac: &mac.Options{
			TitleBar:             mac.TitleBarDefault(),
			Appearance:           mac.NSAppearanceNameAqua,
			WebviewIsTransparent: false,
			WindowIsTranslucent:  false,
			About: &mac.AboutInfo{
				Title:   "Popomomo",
				Message: "Pomodoro timer\n\nVersion " + Version,
				Icon:    icon,
			},
		},
		Linux: &linux.Options{
			Icon:                icon,
			WindowIsTranslucent: false,
		},
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}
}
