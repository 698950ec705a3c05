// Package cli provides the command-line interface for prism.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmylchreest/prism/internal/cache"
	"github.com/jmylchreest/prism/internal/colour"
	"github.com/jmylchreest/prism/internal/config"
	"github.com/jmylchreest/prism/internal/engine"
	"github.com/jmylchreest/prism/internal/version"
)

// memoryEntries sizes the in-process palette cache of a single invocation.
const memoryEntries = 64

// app holds the global flags and the state built from them.
type app struct {
	configDir string
	cacheDir  string
	moodsFile string
	workers   int
	verbose   bool
	quiet     bool
	noColour  bool

	logger hclog.Logger
}

// NewRootCmd builds the prism command tree.
func NewRootCmd() *cobra.Command {
	a := &app{logger: hclog.NewNullLogger()}

	rootCmd := &cobra.Command{
		Use:   "prism",
		Short: "Mood-driven palette generator",
		Long: `Prism derives a complete UI colour palette from a single image.

It extracts one representative anchor colour from the image, then builds a
harmonised set of named colour roles (background, text tiers, accents,
semantic and syntax colours) from that anchor under a named mood. Palettes
are cached by image content, so repeated runs are instant.`,
		Version:           version.Short(),
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "suppress non-error output")
	flags.BoolVar(&a.noColour, "no-colour", false, "disable colour swatches")
	flags.StringVar(&a.configDir, "config-dir", "", "config directory (default: $XDG_CONFIG_HOME/prism)")
	flags.StringVar(&a.cacheDir, "cache-dir", "", "cache directory (default: $XDG_CACHE_HOME/prism)")
	flags.StringVar(&a.moodsFile, "moods", "", "moods file (default: moods.{json,yaml,toml} in the config directory)")
	flags.IntVarP(&a.workers, "workers", "w", 0, "precache workers (default: from moods file, or 4)")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(
		newVersionCmd(),
		newSetCmd(a),
		newExtractCmd(a),
		newGenerateCmd(a),
		newCompareCmd(a),
		newPrecacheCmd(a),
		newLabCmd(a),
		newWatchCmd(a),
		newMoodsCmd(a),
		newCacheCmd(a),
	)
	return rootCmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.verbose && a.quiet {
		return fmt.Errorf("--verbose and --quiet are mutually exclusive")
	}

	level := hclog.Info
	switch {
	case a.verbose:
		level = hclog.Debug
	case a.quiet:
		level = hclog.Error
	}
	a.logger = hclog.New(&hclog.LoggerOptions{
		Name:   "prism",
		Output: cmd.ErrOrStderr(),
		Level:  level,
	})

	colour.DisableColourOutput = a.noColour || !isTerminal(cmd.OutOrStdout())
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// paths resolves the config and cache directories, honouring the flags.
func (a *app) paths() (config.Paths, error) {
	p, err := config.DefaultPaths()
	if err != nil && (a.configDir == "" || a.cacheDir == "") {
		return config.Paths{}, err
	}
	if a.configDir != "" {
		p.ConfigDir = a.configDir
	}
	if a.cacheDir != "" {
		p.CacheDir = a.cacheDir
	}
	return p, nil
}

func (a *app) loadMoods(p config.Paths) (*config.Moods, error) {
	var (
		moods *config.Moods
		err   error
	)
	if a.moodsFile != "" {
		moods, err = config.LoadMoodsFile(a.moodsFile)
	} else {
		moods, err = config.LoadMoods(p.ConfigDir)
	}
	if err != nil {
		return nil, err
	}
	if moods.File != "" {
		a.logger.Debug("loaded moods", "file", moods.File, "moods", moods.Names())
	}
	return moods, nil
}

func (a *app) openCache(p config.Paths) (*cache.Cache, error) {
	return cache.New(p.PaletteDir(), cache.WithMemory(memoryEntries), cache.WithLogger(a.logger))
}

// newEngine wires paths, moods and cache into an engine.
func (a *app) newEngine() (*engine.Engine, config.Paths, error) {
	p, err := a.paths()
	if err != nil {
		return nil, config.Paths{}, err
	}
	moods, err := a.loadMoods(p)
	if err != nil {
		return nil, config.Paths{}, err
	}
	c, err := a.openCache(p)
	if err != nil {
		return nil, config.Paths{}, err
	}
	return engine.New(c, moods, engine.WithWorkers(a.workers), engine.WithLogger(a.logger)), p, nil
}

// status prints progress to stderr unless --quiet is set.
func (a *app) status(cmd *cobra.Command, format string, args ...any) {
	if a.quiet {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), format, args...)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
