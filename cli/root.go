package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/mobile-next/qrscan/commands"
	"github.com/mobile-next/qrscan/config"
	"github.com/mobile-next/qrscan/scanner"
	"github.com/mobile-next/qrscan/screen"
	"github.com/mobile-next/qrscan/utils"
	"github.com/mobile-next/qrscan/worker"
	"github.com/spf13/cobra"
)

const version = "dev"

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "qrscan",
	Short: "Capture screen regions and decode the QR codes in them",
	Long:  `Captures the desktop, a logical region of it, or an image file and decodes every QR code found, across multi-monitor and HiDPI setups.`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func initConfig() {
	utils.SetVerbose(verbose)
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default is $XDG_CONFIG_HOME/qrscan/config.ini)")
	rootCmd.PersistentFlags().StringSliceVar(&framePaths, "frames", nil, "image files to use as displays instead of the live desktop, laid out left to right")
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	// enable microseconds in logs
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	return rootCmd.ExecuteContext(ctx)
}

func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		defaultPath, err := config.DefaultPath()
		if err != nil {
			utils.Verbose("No default config location: %v", err)
			return config.Default(), nil
		}
		path = defaultPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	utils.Verbose("Loaded config from %s", path)
	return cfg, nil
}

func newSource() (screen.ScreenSource, error) {
	if len(framePaths) > 0 {
		return screen.LoadImageSource(framePaths)
	}
	return screen.NewScreenshotSource(), nil
}

// newService wires the command service from config. notifier may be nil.
func newService(cfg config.Config, notifier commands.Notifier) (*commands.Service, error) {
	source, err := newSource()
	if err != nil {
		return nil, err
	}

	return commands.NewService(source, scanner.NewZXingDetector(), worker.NewPool(cfg.Scanner.Workers), notifier, commands.Options{
		HideDelay: cfg.Capture.HideDelay,
		Display:   cfg.Capture.Display,
		CacheSize: cfg.Scanner.CacheSize,
	})
}

// setupService loads config and builds a service for one-shot commands.
func setupService() (*commands.Service, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return newService(cfg, nil)
}

// printJson is a helper function to print JSON responses
func printJson(data interface{}) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(jsonData))
}

// report prints a command response and turns a failed one into an error.
func report(response *commands.CommandResponse) error {
	printJson(response)
	if response.Status == "error" {
		return fmt.Errorf("%s", response.Error)
	}
	return nil
}
