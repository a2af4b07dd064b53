package main

import (
	"fmt"
	"strings"

	"github.com/piwi3910/maskroute/internal/drc"
	"github.com/piwi3910/maskroute/internal/importer"
	"github.com/piwi3910/maskroute/internal/model"
	"github.com/piwi3910/maskroute/internal/project"
	"github.com/spf13/cobra"
)

type drcOptions struct {
	layers     []string
	profile    string
	minFeature float64
	minSpacing float64
}

func newDRCCmd(a *app) *cobra.Command {
	opts := &drcOptions{}
	cmd := &cobra.Command{
		Use:   "drc <layout.dxf>",
		Short: "Check a DXF layout against minimum feature size and spacing rules",
		Long: `drc reads the closed outlines of each layer from a DXF drawing, merges
touching shapes into clusters and reports every cluster pair closer than the
layer's minimum spacing and every shape smaller than its minimum feature size.
It exits non-zero when a violation is found.`,
		Example: `  maskroute drc escape.dxf
  maskroute drc mask.dxf --layer Metal --profile "Laser Writer"
  maskroute drc mask.dxf --min-spacing 2 --min-feature 1.5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDRC(cmd, args[0], opts)
		},
	}
	f := cmd.Flags()
	f.StringSliceVar(&opts.layers, "layer", nil, "DXF layers to check (default: configured layers)")
	f.StringVar(&opts.profile, "profile", "", "rule profile name (built-in or custom)")
	f.Float64Var(&opts.minFeature, "min-feature", 0, "minimum feature size for every layer (µm)")
	f.Float64Var(&opts.minSpacing, "min-spacing", 0, "minimum spacing for every layer (µm)")
	return cmd
}

// rules resolves the DRC rules for layers from the config and rule profiles.
func (a *app) rules(layers []string) ([]model.LayerRule, error) {
	return project.ResolveRules(a.cfg.DRC, a.profiles, layers...)
}

func (a *app) runDRC(cmd *cobra.Command, path string, opts *drcOptions) error {
	layers := opts.layers
	if len(layers) == 0 {
		for _, l := range a.cfg.Layers {
			layers = append(layers, l.Name)
		}
	}

	if opts.profile != "" {
		a.cfg.DRC.Profile = opts.profile
		a.cfg.DRC.Rules = nil
	}
	if cmd.Flags().Changed("min-feature") || cmd.Flags().Changed("min-spacing") {
		a.cfg.DRC.Rules = nil
		for _, name := range layers {
			a.cfg.DRC.Rules = append(a.cfg.DRC.Rules, model.LayerRule{
				Layer:          name,
				MinFeatureSize: opts.minFeature,
				MinSpacing:     opts.minSpacing,
			})
		}
	}
	if err := a.cfg.DRC.Validate(); err != nil {
		return err
	}
	rules, err := a.rules(layers)
	if err != nil {
		return err
	}

	var regions []model.Region
	var skipped []string
	for _, layer := range layers {
		res := importer.ImportDXF(path, layer)
		for _, w := range res.Warnings {
			a.log.Warn("dxf import", "layer", layer, "warning", w)
		}
		// Configured layers may be absent from the drawing.
		if len(res.Outlines) == 0 && len(opts.layers) == 0 {
			a.log.Debug("layer skipped", "layer", layer, "reason", strings.Join(res.Errors, "; "))
			skipped = append(skipped, res.Errors...)
			continue
		}
		if !res.OK() {
			return fmt.Errorf("failed to read %s: %s", path, strings.Join(res.Errors, "; "))
		}
		for _, o := range res.Outlines {
			regions = append(regions, model.NewRegion(layer, o))
		}
		a.log.Debug("layer loaded", "layer", layer, "outlines", len(res.Outlines))
	}
	if len(regions) == 0 {
		return fmt.Errorf("no closed outlines found on layers %s: %s", strings.Join(layers, ", "), strings.Join(skipped, "; "))
	}

	printTitle(a.out, fmt.Sprintf("Design rule check: %s", path))
	report := drc.RunChecks(regions, rules, a.log)
	a.printReport(report)
	if !report.OK() {
		return fmt.Errorf("%d violation(s): %w", len(report.Spacing)+len(report.FeatureSize), report.Err())
	}
	return nil
}
