package main

import (
	"fmt"
	"os"

	"github.com/odvcencio/wyag/pkg/repo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const version = "wyag 0.1.0-dev"

// settings holds CLI configuration from flags and WYAG_* environment
// variables.
var settings = newSettings()

// logger is replaced in the root command's pre-run hook.
var logger = zap.NewNop()

func newSettings() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("WYAG")
	v.AutomaticEnv()
	v.SetDefault("abbrev", repo.DefaultMinShortHash)
	v.SetDefault("verbose", false)
	v.SetDefault("author", "wyag <wyag@localhost>")
	return v
}

func main() {
	root := newRootCmd()
	err := root.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "wyag",
		Short:         "A minimal git-compatible object store and reference resolver",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(settings.GetBool("verbose"))
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			logger = l
			return nil
		},
	}

	root.PersistentFlags().Int("abbrev", repo.DefaultMinShortHash, "minimum hex digits accepted as a short object id")
	root.PersistentFlags().BoolP("verbose", "v", false, "log debug output to stderr")
	root.PersistentFlags().String("author", "", "identity for new commits and tags (default $WYAG_AUTHOR)")
	for _, key := range []string{"abbrev", "verbose", "author"} {
		if err := settings.BindPFlag(key, root.PersistentFlags().Lookup(key)); err != nil {
			panic(err)
		}
	}

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(),
		newCatFileCmd(),
		newHashObjectCmd(),
		newLsTreeCmd(),
		newCheckoutCmd(),
		newLogCmd(),
		newShowRefCmd(),
		newTagCmd(),
		newRevParseCmd(),
		newUpdateRefCmd(),
		newSymbolicRefCmd(),
		newBranchCmd(),
		newCommitTreeCmd(),
		newWriteTreeCmd(),
		newVerifyCmd(),
	)
	return root
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// openRepo opens the repository containing the working directory with the
// current CLI settings applied.
func openRepo() (*repo.Repo, error) {
	return repo.Open(".", repoOptions()...)
}

func repoOptions() []repo.Option {
	return []repo.Option{
		repo.WithLogger(logger),
		repo.WithMinShortHash(settings.GetInt("abbrev")),
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
