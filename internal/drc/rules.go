package drc

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/piwi3910/maskroute/internal/model"
)

// Report collects every finding of a rule run.
type Report struct {
	Spacing     []SpacingViolation
	FeatureSize []FeatureSizeViolation
	Clusters    map[string]int // clusters checked per layer
}

// OK reports whether the run found nothing.
func (r Report) OK() bool {
	return len(r.Spacing) == 0 && len(r.FeatureSize) == 0
}

// Err returns the first violation, or nil when the run is clean.
func (r Report) Err() error {
	if len(r.FeatureSize) > 0 {
		return &r.FeatureSize[0]
	}
	if len(r.Spacing) > 0 {
		return &r.Spacing[0]
	}
	return nil
}

// RunChecks groups regions by layer and applies each layer's rule. Spacing is
// measured between clusters so touching shapes never flag each other; feature
// size is checked on the original regions. Layers without a rule are skipped.
func RunChecks(regions []model.Region, rules []model.LayerRule, logger *slog.Logger) Report {
	if logger == nil {
		logger = slog.Default()
	}
	byLayer := make(map[string][]model.Region)
	for _, r := range regions {
		byLayer[r.Layer] = append(byLayer[r.Layer], r)
	}

	rep := Report{Clusters: make(map[string]int)}
	for _, rule := range rules {
		layer := byLayer[rule.Layer]
		if len(layer) == 0 {
			logger.Debug("drc: layer empty", "layer", rule.Layer)
			continue
		}
		if rule.MinFeatureSize > 0 {
			rep.FeatureSize = append(rep.FeatureSize, FindFeatureSizeViolations(layer, rule.MinFeatureSize)...)
		}
		if rule.MinSpacing > 0 {
			clusters := ClusterStable(layer)
			rep.Clusters[rule.Layer] = len(clusters)
			logger.Debug("drc: clustered", "layer", rule.Layer, "regions", len(layer), "clusters", len(clusters))
			rep.Spacing = append(rep.Spacing, FindSpacingViolations(clusters, rule.MinSpacing)...)
		}
	}

	logger.Info("drc complete",
		"rules", len(rules),
		"spacing_violations", len(rep.Spacing),
		"feature_violations", len(rep.FeatureSize))
	return rep
}

// FormatViolations produces human-readable report lines, feature size first,
// sorted by layer.
func FormatViolations(r Report) []string {
	fs := append([]FeatureSizeViolation(nil), r.FeatureSize...)
	sort.SliceStable(fs, func(a, b int) bool { return fs[a].Layer < fs[b].Layer })
	sp := append([]SpacingViolation(nil), r.Spacing...)
	sort.SliceStable(sp, func(a, b int) bool { return sp[a].Layer < sp[b].Layer })

	var lines []string
	for _, v := range fs {
		lines = append(lines, fmt.Sprintf(
			"Layer %s: feature %s is %.3f x %.3f µm, minimum feature size %.3f µm",
			v.Layer, v.Region, v.Width, v.Height, v.MinSize))
	}
	for _, v := range sp {
		lines = append(lines, fmt.Sprintf(
			"Layer %s: %s and %s are %.3f µm apart, minimum spacing %.3f µm",
			v.Layer, v.A, v.B, v.Distance, v.MinSpacing))
	}
	return lines
}
