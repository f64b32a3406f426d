// SPDX-License-Identifier: MIT
package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"accelerometer/internal/config"
	"accelerometer/pkg/build"
)

// Action is what main should do after parsing.
type Action int

const (
	ActionNone Action = iota // help or version was printed
	ActionRun                // run acquisition cycles
	ActionList               // list audio devices
)

// Options are the command line settings. Cycles is negative unless given.
type Options struct {
	Action     Action
	ConfigPath string
	Note       string
	Verbose    bool
	Cycles     int
}

// ParseArgs parses args (without the program name). Help and version text
// go to out.
func ParseArgs(args []string, out io.Writer) (*Options, error) {
	buildInfo := build.GetBuildFlags()
	options := &Options{Cycles: -1}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         "Capture, analyse and log accelerometer blocks from an audio device",
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			options.Action = ActionRun
			return nil
		},
	}
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			options.Action = ActionList
		},
	}
	rootCmd.AddCommand(listCmd)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&options.ConfigPath, "config", "f", config.DefaultConfigFile,
		"YAML configuration file; written with the defaults when missing")
	flags.StringVarP(&options.Note, "note", "n", "",
		"Note stored in the header of every log file (overrides session.note)")
	flags.BoolVarP(&options.Verbose, "verbose", "v", false,
		"Show debug output")
	rootCmd.Flags().IntVar(&options.Cycles, "cycles", -1,
		"Number of cycles to run, 0 runs until interrupted (overrides session.cycles)")

	if args == nil {
		args = []string{} // cobra falls back to os.Args on nil
	}
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}
	return options, nil
}

// Apply writes the command line overrides into cfg.
func (o *Options) Apply(cfg *config.Config) {
	if o.Note != "" {
		cfg.Session.Note = o.Note
	}
	if o.Cycles >= 0 {
		cfg.Session.Cycles = o.Cycles
	}
	if o.Verbose && cfg.Debug == 0 {
		cfg.Debug = 1
	}
}
