package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/quietroot/droid-mcp/droid"
	"github.com/quietroot/droid-mcp/droid/adb"
	"github.com/quietroot/droid-mcp/droid/uiauto"
	"github.com/quietroot/droid-mcp/tools"
)

// Config holds all the configuration values from command line arguments
type Config struct {
	Transport string `json:"transport"`
	Port      int    `json:"port"`
	ADBPath   string `json:"adb_path"`
	Debug     bool   `json:"debug"`
}

var config = &Config{}

var rootCmd = &cobra.Command{
	Use:   "droid-mcp",
	Short: "Android Device Operator - MCP server for Android automation",
	Long: `Android Device Operator exposes Android device automation primitives
(device discovery, app management, screen control, gestures, UI inspection)
as MCP tools over ADB. Serve over stdio for subprocess clients, or over
streamable HTTP for networked ones.`,
	Example: `  # Serve over stdio (default)
  droid-mcp

  # Serve over streamable HTTP on port 8080
  droid-mcp --transport http

  # Use a specific adb binary
  droid-mcp --adb /opt/platform-tools/adb

  # Enable debug logging
  droid-mcp --debug`,
	RunE: run,
}

// Helper function to get environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Helper function to get environment variable as int with default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&config.Transport, "transport", "t",
		getEnv("DROID_MCP_TRANSPORT", "stdio"),
		"Transport binding: stdio or http")

	rootCmd.PersistentFlags().IntVarP(&config.Port, "port", "p",
		getEnvInt("DROID_MCP_PORT", 8080),
		"Port for the HTTP transport")

	rootCmd.PersistentFlags().StringVar(&config.ADBPath, "adb",
		getEnv("DROID_MCP_ADB", "adb"),
		"Path to the adb binary")

	rootCmd.PersistentFlags().BoolVar(&config.Debug, "debug", false,
		"Enable debug logging")

	rootCmd.PersistentPreRunE = validateArgs
}

func validateArgs(cmd *cobra.Command, args []string) error {
	if config.Transport != "stdio" && config.Transport != "http" {
		return fmt.Errorf("invalid transport: %s. Must be 'stdio' or 'http'", config.Transport)
	}
	return nil
}

func main() {
	cobra.CheckErr(rootCmd.Execute())
}

func run(cmd *cobra.Command, args []string) error {
	// Stdout belongs to the stdio transport; log to stderr only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if config.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	ctx := context.Background()

	bridge := adb.New(config.ADBPath)
	preflight(ctx, bridge)

	connect := func(ctx context.Context, serial string) (droid.Session, error) {
		return uiauto.Connect(ctx, bridge, serial)
	}

	server := tools.NewServer(bridge, connect)

	switch config.Transport {
	case "http":
		addr := fmt.Sprintf(":%d", config.Port)
		log.Info().Str("addr", addr).Msg("serving streamable HTTP transport")
		return server.ServeHTTP(addr)
	default:
		log.Info().Msg("serving stdio transport")
		return server.ServeStdio()
	}
}

// preflight reports the bridge state at startup. Failures are informational:
// devices can be plugged in after the server is up, and every tool revalidates
// on its own call.
func preflight(ctx context.Context, bridge *adb.Bridge) {
	log.Info().Msg(strings.Repeat("=", 50))
	log.Info().Msgf("%s v%s", tools.ServerName, tools.ServerVersion)
	log.Info().Msg(strings.Repeat("=", 50))

	if err := bridge.Available(); err != nil {
		log.Warn().Err(err).Msg("adb is not installed or not in PATH")
		log.Info().Msg("  - macOS: brew install android-platform-tools")
		log.Info().Msg("  - Linux: sudo apt install android-tools-adb")
		return
	}

	if version, err := bridge.Version(ctx); err == nil {
		log.Info().Str("version", version).Msg("adb available")
	}

	serials, err := bridge.ReadyDevices(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to enumerate devices")
		return
	}
	if len(serials) == 0 {
		log.Warn().Msg("no devices connected; enable USB debugging and authorize this host")
		return
	}
	log.Info().Int("count", len(serials)).Strs("devices", serials).Msg("devices ready")
}
