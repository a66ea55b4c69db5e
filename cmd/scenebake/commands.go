package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/scenebake/internal/batch"
	"github.com/Faultbox/scenebake/internal/config"
	"github.com/Faultbox/scenebake/internal/convert"
	"github.com/Faultbox/scenebake/internal/logger"
	"github.com/Faultbox/scenebake/internal/sceneio"
)

func newConvertCmd(a *app) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a scene file and, with -r, the paged files it references",
		Example: `  scenebake convert world.yaml -o out
  scenebake convert world.yaml -r -j 8 --geometry-target commands`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := batch.NewFromConfig(logger.Named("convert"), a.cfg)
			if err != nil {
				return err
			}
			if !quiet {
				runner.Progress = os.Stderr
			}

			res, runErr := runner.Run(cmd.Context(), args[0])
			if res != nil && !quiet {
				out := cmd.OutOrStdout()
				writeFiles(out, res.Files)
				fmt.Fprintln(out)
				writeStats(out, res.Stats)
			}
			return runErr
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress and the summary tables")
	return cmd
}

func newMasksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "masks <file>",
		Short: "Print the shader mask pair of every drawable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := sceneio.ReadFile(args[0])
			if err != nil {
				return err
			}
			opts, err := a.cfg.ConverterOptions()
			if err != nil {
				return err
			}
			opts.Logger = logger.Named("masks")
			writeMasks(cmd.OutOrStdout(), convert.New(opts).Inspect(root))
			return nil
		},
	}
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <file>",
		Short: "Convert a scene file in memory and print the run counters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := sceneio.ReadFile(args[0])
			if err != nil {
				return err
			}
			factory, err := batch.NewConverterFactory(a.cfg)
			if err != nil {
				return err
			}
			conv := factory(logger.Named("stats"))
			conv.Convert(root)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run:         %s\n", conv.RunID())
			fmt.Fprintf(out, "Pipelines:   %d\n", conv.Pipelines().Len())
			fmt.Fprintf(out, "Descriptors: %d\n", conv.DescriptorSets().Len())
			fmt.Fprintln(out)
			writeStats(out, conv.Stats())
			return nil
		},
	}
}

func newConfigCmd(a *app) *cobra.Command {
	var (
		asTOML bool
		save   bool
		saveTo string
	)
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print or save the effective configuration",
		Example: `  scenebake config --toml
  scenebake -j 8 -r config --save
  scenebake config --save-to ./scenebake.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if save || saveTo != "" {
				path := saveTo
				var err error
				if path == "" {
					path = config.DefaultPath()
					err = a.cfg.Save()
				} else {
					err = a.cfg.SaveTo(path)
				}
				if err != nil {
					return fmt.Errorf("save config: %w", err)
				}
				logger.Log.Info("config saved", zap.String("path", path))
				fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", path)
				return nil
			}

			data, err := a.cfg.Marshal(asTOML)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().BoolVar(&asTOML, "toml", false, "Print as TOML instead of YAML")
	cmd.Flags().BoolVar(&save, "save", false, "Write to the user config file instead of printing")
	cmd.Flags().StringVar(&saveTo, "save-to", "", "Write to `path` instead of printing; .toml selects TOML")
	cmd.MarkFlagsMutuallyExclusive("save", "save-to")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// version needs no config
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "scenebake %s\n", version)
		},
	}
}
