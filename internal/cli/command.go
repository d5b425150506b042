package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/treewalk/internal/report"
	"github.com/idelchi/treewalk/internal/treewalk"
)

// EnvPrefix prefixes environment variables that override flags.
const EnvPrefix = "TREEWALK"

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// Options holds the resolved command-line and configuration settings.
type Options struct {
	// Path is the directory to walk.
	Path string
	// Output is the output format (text, table or json).
	Output string
	// Locale selects the thousands grouping of the byte total.
	Locale string
	// Parallel walks with fastwalk workers instead of the sequential cursor.
	Parallel bool
	// Workers is the number of parallel workers (0 = default).
	Workers int
	// DotFilter selects which names are never reported.
	DotFilter treewalk.DotFilter
	// Excludes contains regex patterns to exclude.
	Excludes []string
	// Depth is the maximum traversal depth (0=unlimited).
	Depth int
	// TopN is the number of largest files shown in table output.
	TopN int
	// MinSize is the minimum file size in bytes.
	MinSize int64
	// Debug indicates whether debug output is enabled.
	Debug bool
	// Progress enables the progress line on interactive terminals.
	Progress bool
}

//nolint:gochecknoglobals // Config constant
var allowedOutputs = []string{"text", "table", "json"}

// Execute runs the CLI with the process arguments.
func (c CLI) Execute(ctx context.Context) error {
	return c.Command().ExecuteContext(ctx)
}

// Command builds the root command.
func (c CLI) Command() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "treewalk [flags] [path]",
		Short: "Walk a directory tree and report entry sizes in a stable order",
		Long: heredoc.Doc(`
			treewalk walks a directory tree depth-first and prints one line per entry,
			sorted by value so the output does not depend on filesystem order:

			  <path> => <size>
			  Total: <files> files, <bytes> bytes

			Positional Arguments:
			  path                   Directory to walk. Defaults to current directory if not specified.

			Symbolic links are never followed; they are reported with their own size.
			Entries that disappear or become unreadable during the walk are skipped.

			Every flag can also be set in a config file (--config, or .treewalk.yaml in
			the current or home directory) or through TREEWALK_<FLAG> environment variables.
		`),
		Version:       c.version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(v, cmd); err != nil {
				return err
			}

			options, err := resolve(v, args)
			if err != nil {
				return err
			}

			return logic(cmd.Context(), options, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.SortFlags = false
	flags.String("config", "", "Config file (default .treewalk.yaml in the current or home directory)")
	flags.StringP("output", "o", "text", "Output format: text, table or json")
	flags.String("locale", report.DefaultLocale, "Locale used to group the byte total (e.g. en, de)")
	flags.BoolP("parallel", "p", false, "Walk with parallel workers")
	flags.Int("workers", 0, "Number of parallel workers (0=default)")
	flags.String("dot-filter", "exact", "Names to skip: exact ('.' and '..') or suffix (any name ending in '.')")
	flags.StringSliceP("exclude", "e", []string{}, "Regex patterns to exclude, matched against relative paths")
	flags.IntP("depth", "d", 0, "Maximum traversal depth (0=unlimited)")
	flags.IntP("top", "t", 10, "Number of largest files shown in table output")
	flags.String("min-size", "0B", "Minimum file size (e.g., 1KB)")
	flags.Bool("debug", false, "Enable debug output")
	flags.Bool("progress", true, "Show progress on interactive terminals")

	return cmd
}

// loadConfig binds flags, environment and the optional config file into v.
func loadConfig(v *viper.Viper, cmd *cobra.Command) error {
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile := v.GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".treewalk")
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
			v.AddConfigPath(filepath.Join(home, ".config", "treewalk"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	return nil
}

// resolve turns the merged configuration into Options.
func resolve(v *viper.Viper, args []string) (Options, error) {
	options := Options{
		Output:   strings.ToLower(v.GetString("output")),
		Locale:   v.GetString("locale"),
		Parallel: v.GetBool("parallel"),
		Workers:  v.GetInt("workers"),
		Excludes: v.GetStringSlice("exclude"),
		Depth:    v.GetInt("depth"),
		TopN:     v.GetInt("top"),
		Debug:    v.GetBool("debug"),
		Progress: v.GetBool("progress"),
	}

	if !slices.Contains(allowedOutputs, options.Output) {
		return options, fmt.Errorf("invalid output format %q: must be one of %v", options.Output, allowedOutputs)
	}

	if options.Depth < 0 {
		return options, errors.New("depth cannot be negative")
	}

	if options.Workers < 0 {
		return options, errors.New("workers cannot be negative")
	}

	dotFilter, err := treewalk.ParseDotFilter(v.GetString("dot-filter"))
	if err != nil {
		return options, err
	}

	options.DotFilter = dotFilter

	// Parse minSize string to bytes
	if minSizeStr := v.GetString("min-size"); minSizeStr != "" {
		size, err := humanize.ParseBytes(minSizeStr)
		if err != nil {
			return options, fmt.Errorf("invalid min-size: %w", err)
		}

		options.MinSize = int64(size) //nolint:gosec // Size conversion from humanize is safe
	}

	if options.TopN <= 0 {
		options.TopN = 10
	}

	if len(args) == 0 {
		options.Path = "."
	} else {
		options.Path = args[0]
	}

	return options, nil
}
