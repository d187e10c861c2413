// Command gotlb reads a type library and prints the interface model that
// binding generators consume.
package main

import (
	"errors"
	"fmt"
	"gotlb/internal/config"
	"gotlb/internal/metadata"
	"gotlb/internal/report"
	"gotlb/internal/typelib"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCommand() *cobra.Command {
	options := &rootOptions{}
	root := &cobra.Command{
		Use:           "gotlb",
		Short:         "Inspect COM type libraries for binding generation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&options.configPath, "config", "", "Path to the config file. Default: ./"+config.DefaultFileName+" if present")
	root.PersistentFlags().BoolVarP(&options.verbose, "verbose", "v", false, "Log debug messages")

	root.AddCommand(newDumpCommand(options), newDownloadCommand(options))
	return root
}

// Reads the config file and applies the flags that were set explicitly.
func loadConfig(cmd *cobra.Command, options *rootOptions) (config.Config, zerolog.Logger, error) {
	path, optional := options.configPath, false
	if path == "" {
		path, optional = config.DefaultFileName, true
	}

	cfg, err := config.Load(path, optional)
	if err != nil {
		return cfg, newLogger(cmd, "info"), err
	}

	flags := cmd.Flags()
	if flags.Changed("metadataPath") {
		cfg.MetadataPath, _ = flags.GetString("metadataPath")
	}
	if flags.Changed("format") {
		cfg.Format, _ = flags.GetString("format")
	}
	if flags.Changed("interface") {
		cfg.Interfaces, _ = flags.GetStringSlice("interface")
	}
	if flags.Changed("skip-link") {
		cfg.SkipLink, _ = flags.GetBool("skip-link")
	}
	if flags.Changed("download") {
		cfg.Download, _ = flags.GetBool("download")
	}
	if options.verbose {
		cfg.LogLevel = "debug"
	}

	return cfg, newLogger(cmd, cfg.LogLevel), cfg.Validate()
}

func newLogger(cmd *cobra.Command, level string) zerolog.Logger {
	parsedLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		parsedLevel = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: true}).
		Level(parsedLevel).
		With().
		Timestamp().
		Logger()
}

func newDumpCommand(options *rootOptions) *cobra.Command {
	command := &cobra.Command{
		Use:   "dump",
		Short: "Print the interfaces of a type library",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd, options)
			if err != nil {
				logger.Error().Err(err).Msg("invalid configuration")
				return err
			}
			return runDump(cmd, cfg, logger)
		},
	}

	defaults := config.Default()
	command.Flags().String("metadataPath", defaults.MetadataPath, "The path to the type library: a .winmd file or a .yaml description.")
	command.Flags().StringP("format", "f", defaults.Format, "Output format: "+strings.Join(config.Formats, ", "))
	command.Flags().StringSlice("interface", nil, "Only print interfaces with given names.")
	command.Flags().Bool("skip-link", false, "Do not compute the source and implementation roles of interfaces.")
	command.Flags().Bool("download", false, "Download the Windows metadata when the .winmd file does not exist.")
	return command
}

func runDump(cmd *cobra.Command, cfg config.Config, logger zerolog.Logger) error {
	library, err := openLibrary(cmd, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Str("path", cfg.MetadataPath).Msg("could not open type library")
		return err
	}
	logger.Debug().Str("library", library.Name()).Int("entries", library.EntryCount()).Msg("type library opened")

	interfaces, err := library.Interfaces()
	if err != nil {
		logBridgeError(logger, err)
		return err
	}
	logger.Debug().Int("interfaces", len(interfaces)).Msg("interfaces read")

	if !cfg.SkipLink {
		if err := library.Link(interfaces); err != nil {
			logBridgeError(logger, err)
			return err
		}
	}

	selected := make([]*typelib.Interface, 0, len(interfaces))
	for _, tlbInterface := range interfaces {
		if cfg.Selects(tlbInterface.Name()) {
			selected = append(selected, tlbInterface)
		}
	}

	return report.Write(cmd.OutOrStdout(), cfg.Format, report.Build(library, selected))
}

func openLibrary(cmd *cobra.Command, cfg config.Config, logger zerolog.Logger) (*typelib.Library, error) {
	switch strings.ToLower(filepath.Ext(cfg.MetadataPath)) {
	case ".yaml", ".yml":
		return metadata.LoadYAML(cfg.MetadataPath)
	}

	if _, err := os.Stat(cfg.MetadataPath); errors.Is(err, os.ErrNotExist) && cfg.Download {
		logger.Info().Str("path", cfg.MetadataPath).Msg("metadata file not found, downloading")
		newest, err := metadata.NewDownloader().Download(cmd.Context(), cfg.MetadataPath)
		if err != nil {
			return nil, fmt.Errorf("could not download metadata: %w", err)
		}
		logger.Info().Str("version", newest).Msg("metadata downloaded")
	}

	reader, err := metadata.OpenWinMD(cfg.MetadataPath)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(cfg.MetadataPath), filepath.Ext(cfg.MetadataPath))
	return typelib.NewLibrary(name, reader), nil
}

func logBridgeError(logger zerolog.Logger, err error) {
	var bridgeErr *typelib.BridgeError
	if !errors.As(err, &bridgeErr) {
		logger.Error().Err(err).Msg("could not read type library")
		return
	}

	event := logger.Error().
		Str("library", bridgeErr.Library).
		Int("index", bridgeErr.Index).
		Str("op", bridgeErr.Op)
	if bridgeErr.Position >= 0 {
		event = event.Int("position", bridgeErr.Position)
	}
	event.Err(bridgeErr.Err).Msg("introspection failed")
}

func newDownloadCommand(options *rootOptions) *cobra.Command {
	var output string
	command := &cobra.Command{
		Use:   "download",
		Short: "Download the newest Windows metadata file",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd, "info")
			if options.verbose {
				logger = logger.Level(zerolog.DebugLevel)
			}

			newest, err := metadata.NewDownloader().Download(cmd.Context(), output)
			if err != nil {
				logger.Error().Err(err).Msg("download failed")
				return err
			}
			logger.Info().Str("version", newest).Str("path", output).Msg("metadata downloaded")
			return nil
		},
	}
	command.Flags().StringVarP(&output, "output", "o", "Windows.Win32.winmd", "Where to write the metadata file.")
	return command
}
