package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/df07/go-spectral-bsdf/pkg/cloth"
	"github.com/df07/go-spectral-bsdf/pkg/core"
	"github.com/df07/go-spectral-bsdf/pkg/loaders"
	"github.com/df07/go-spectral-bsdf/pkg/material"
	"github.com/df07/go-spectral-bsdf/pkg/probe"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

// options shared by every command
type options struct {
	verbose bool
	logOut  io.Writer
}

// logger returns a slog-backed logger; library progress is logged at debug
// level and only shows with --verbose
func (o *options) logger() core.Logger {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(o.logOut, &slog.HandlerOptions{Level: level})
	return core.NewSlogLogger(slog.New(h), slog.LevelDebug)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{logOut: stderr}
	root := &cobra.Command{
		Use:          "bsdfprobe",
		Short:        "Inspect and measure spectral BSDF materials",
		SilenceUsage: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newListCmd(opts),
		newProbeCmd(opts),
		newGLTFCmd(opts),
		newPresetsCmd(),
	)
	return root
}

func newListCmd(opts *options) *cobra.Command {
	var library string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the materials of a TOML, YAML or PBRT library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := loaders.LoadLibrary(library, opts.logger())
			if err != nil {
				return err
			}
			for _, name := range lib.Names() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s\n", name, materialKind(lib.Materials[name]))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&library, "library", "l", "", "Material library file (.toml, .yaml, .pbrt)")
	_ = cmd.MarkFlagRequired("library")
	return cmd
}

// probeFlags are the flags shared by the commands that run probes
type probeFlags struct {
	cfg       probe.Config
	format    string
	materials []string
}

func (f *probeFlags) register(cmd *cobra.Command) {
	f.cfg = probe.DefaultConfig()
	cmd.Flags().IntVarP(&f.cfg.Samples, "samples", "n", f.cfg.Samples, "Samples per estimate")
	cmd.Flags().Int64Var(&f.cfg.Seed, "seed", f.cfg.Seed, "Random seed")
	cmd.Flags().IntVarP(&f.cfg.Workers, "workers", "j", 0, "Materials probed at once (0 = one per CPU)")
	cmd.Flags().Float64SliceVar(&f.cfg.Angles, "angles", f.cfg.Angles, "Outgoing zenith angles in degrees")
	cmd.Flags().StringVarP(&f.format, "format", "f", "text", "Report format: text or yaml")
	cmd.Flags().StringSliceVarP(&f.materials, "material", "m", nil, "Only probe these materials")
}

// run probes the selected materials and writes the report
func (f *probeFlags) run(cmd *cobra.Command, opts *options, all map[string]material.Material) error {
	if f.format != "text" && f.format != "yaml" {
		return fmt.Errorf("unknown format %q", f.format)
	}
	selected := all
	if len(f.materials) > 0 {
		selected = make(map[string]material.Material, len(f.materials))
		for _, name := range f.materials {
			m, ok := all[name]
			if !ok {
				return fmt.Errorf("%w: %q", loaders.ErrUnknownMaterial, name)
			}
			selected[name] = m
		}
	}
	reports, err := probe.Run(cmd.Context(), selected, f.cfg, opts.logger())
	if err != nil {
		return err
	}
	if f.format == "yaml" {
		return probe.WriteYAML(cmd.OutOrStdout(), reports)
	}
	return probe.WriteText(cmd.OutOrStdout(), reports)
}

func newProbeCmd(opts *options) *cobra.Command {
	var library string
	var flags probeFlags
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Measure energy, sampling consistency and reciprocity of library materials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := loaders.LoadLibrary(library, opts.logger())
			if err != nil {
				return err
			}
			return flags.run(cmd, opts, lib.Materials)
		},
	}
	cmd.Flags().StringVarP(&library, "library", "l", "", "Material library file (.toml, .yaml, .pbrt)")
	_ = cmd.MarkFlagRequired("library")
	flags.register(cmd)
	return cmd
}

func newGLTFCmd(opts *options) *cobra.Command {
	var flags probeFlags
	cmd := &cobra.Command{
		Use:   "gltf FILE",
		Short: "Import the materials of a glTF file and probe them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := loaders.LoadGLTF(args[0], opts.logger())
			if err != nil {
				return err
			}
			return flags.run(cmd, opts, lib.Materials)
		},
	}
	flags.register(cmd)
	return cmd
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the built-in cloth weave presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range cloth.PresetNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}

// materialKind names the Go type of a material without its package
func materialKind(m material.Material) string {
	kind := fmt.Sprintf("%T", m)
	kind = strings.TrimPrefix(kind, "*")
	return strings.TrimPrefix(kind, "material.")
}
