package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"thoreinstein.com/gitman/pkg/config"
)

var (
	lastLoadedConfig  string
	lastLoadedRoot    string
	lastLoadedVerbose bool
	loadedConfig      *config.Config
)

// PreParseGlobalFlags manually scans os.Args for --config, --dir and --verbose
// flags before the main Cobra execution. It stops scanning at the first
// non-flag argument or the "--" marker.
func PreParseGlobalFlags(args []string) (cfgFile, dir string, verbose bool) {
	for i := 1; i < len(args); i++ {
		arg := args[i]

		if arg == "--" {
			break
		}
		if !strings.HasPrefix(arg, "-") {
			break
		}

		switch {
		case arg == "--config" || arg == "-C":
			if i+1 < len(args) {
				cfgFile = args[i+1]
				i++
			}
		case strings.HasPrefix(arg, "--config="):
			cfgFile = strings.TrimPrefix(arg, "--config=")
		case strings.HasPrefix(arg, "-C="):
			cfgFile = strings.TrimPrefix(arg, "-C=")
		case strings.HasPrefix(arg, "-C") && len(arg) > 2:
			cfgFile = arg[2:]
		case arg == "--dir" || arg == "-d":
			if i+1 < len(args) {
				dir = args[i+1]
				i++
			}
		case strings.HasPrefix(arg, "--dir="):
			dir = strings.TrimPrefix(arg, "--dir=")
		case arg == "--verbose" || arg == "-v":
			verbose = true
		}
	}

	return cfgFile, dir, verbose
}

// InitConfig reads the global config file, the folder store of root and
// GITMAN_ environment variables, in increasing order of precedence for the
// file layers. It returns the loaded config.
func InitConfig(cfgFile, root string, verbose bool) (*config.Config, error) {
	// Skip if already loaded with same parameters (unless in test)
	if os.Getenv("GO_TEST") != "true" && loadedConfig != nil &&
		cfgFile == lastLoadedConfig && root == lastLoadedRoot && verbose == lastLoadedVerbose {
		return loadedConfig, nil
	}

	// Reset Viper state to avoid carrying over stale settings from previous loads.
	viper.Reset()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get home directory")
		}
		viper.AddConfigPath(filepath.Join(home, ".config", "gitman"))
		viper.SetConfigType("toml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("GITMAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrapf(err, "failed to read config file %s", viper.ConfigFileUsed())
		}
	} else if verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	LoadDirectoryConfig(root, verbose)

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	for _, w := range config.CheckSecurityWarnings(cfg) {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w.Message)
	}

	lastLoadedConfig = cfgFile
	lastLoadedRoot = root
	lastLoadedVerbose = verbose
	loadedConfig = cfg

	return cfg, nil
}

// LoadDirectoryConfig merges the folder store (.gitman.toml) of root into the
// global viper instance, so a folder's org scope overrides the global one.
func LoadDirectoryConfig(root string, verbose bool) {
	if root == "" {
		root = "."
	}
	configPath := config.DirectoryStorePath(root)

	if _, err := os.Stat(configPath); err != nil {
		return
	}

	localViper := viper.New()
	localViper.SetConfigFile(configPath)
	localViper.SetConfigType("toml")

	if err := localViper.ReadInConfig(); err != nil {
		if verbose {
			fmt.Fprintf(os.Stderr, "Warning: could not read folder config %s: %v\n", configPath, err)
		}
		return
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Using folder config: %s\n", configPath)
	}

	if err := viper.MergeConfigMap(localViper.AllSettings()); err != nil {
		if verbose {
			fmt.Fprintf(os.Stderr, "Warning: could not merge folder config: %v\n", err)
		}
	}
}

// Reset clears the cached configuration state.
func Reset() {
	lastLoadedConfig = ""
	lastLoadedRoot = ""
	lastLoadedVerbose = false
	loadedConfig = nil
}
