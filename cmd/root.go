package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"thoreinstein.com/gitman/pkg/bootstrap"
	"thoreinstein.com/gitman/pkg/config"
	gitmanerrors "thoreinstein.com/gitman/pkg/errors"
	"thoreinstein.com/gitman/pkg/ui"
)

var (
	cfgFile   string
	verbose   bool
	rootDir   string
	noColor   bool
	outputFmt = ui.FormatText
	appConfig *config.Config

	setToken   string
	clearToken bool
)

// errBatchFailed signals that the report was printed and at least one item
// failed. Execute exits 1 without printing it again.
var errBatchFailed = errors.New("one or more repositories failed")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gitman",
	Short: "Keep a folder of git clones in sync with your GitHub repositories",
	Long: `Gitman manages a folder of git clones.

Run without arguments in a folder to list its git repositories together with
the GitHub repositories you have not cloned yet, pick any of them, and gitman
pulls the local ones and clones the remote ones into the folder.

On first run gitman asks whether it should manage your GitHub repositories and
for a personal access token. Each folder remembers whether it tracks your own
repositories or those of an organization.

Examples:
  gitman                      # pick repositories to pull or clone
  gitman select               # save the repositories 'gitman update' pulls
  gitman update               # pull the saved selection
  gitman update --all --yes   # pull every repository in the folder
  gitman --set-token <token>  # save a GitHub personal access token`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor {
			ui.SetColorEnabled(false)
		}
		return initConfig()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		return runRootCommand(cmd.Context(), s)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Logging is configured before cobra parses flags so config loading is traced too.
	_, _, preVerbose := bootstrap.PreParseGlobalFlags(os.Args)
	setupLogging(preVerbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		if !errors.Is(err, errBatchFailed) {
			fmt.Fprintln(os.Stderr, gitmanerrors.FormatUserError(err))
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "C", "", "config file (default is $HOME/.config/gitman/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "folder holding the repositories (default is the current directory)")
	rootCmd.PersistentFlags().VarP(&outputFmt, "output", "o", "report format: text, json or yaml")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.Flags().StringVar(&setToken, "set-token", "", "save a GitHub personal access token and exit")
	rootCmd.Flags().BoolVar(&clearToken, "clear-token", false, "remove the saved GitHub token and exit")
	rootCmd.MarkFlagsMutuallyExclusive("set-token", "clear-token")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	root, err := workingRoot(rootDir)
	if err != nil {
		return err
	}
	setupLogging(verbose)

	appConfig, err = bootstrap.InitConfig(cfgFile, root, verbose)
	return err
}

// loadConfig returns the already loaded configuration or loads it if it hasn't been yet.
func loadConfig() (*config.Config, error) {
	if appConfig != nil {
		return appConfig, nil
	}
	return config.Load()
}

// resetConfig clears the cached configuration.
// This is primarily used in tests to ensure each test starts with a fresh config.
func resetConfig() {
	appConfig = nil
	bootstrap.Reset()
	viper.Reset()
}

// workingRoot resolves the --dir flag, defaulting to the current directory.
func workingRoot(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(err, "failed to get current directory")
		}
		return wd, nil
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrapf(err, "invalid folder: %s", dir)
	}
	return abs, nil
}

// setupLogging sends debug logs to stderr when verbose is set.
func setupLogging(verbose bool) {
	if !verbose {
		return
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))
}
