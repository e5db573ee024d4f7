package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	annotate "github.com/goliatone/go-annotate"
)

// reportAnnotator reports what each annotation entry point would do with
// the resolved options. Projects plug a real generator in through
// annotate.Annotator.
type reportAnnotator struct {
	out    io.Writer
	logger annotate.Logger
}

func newReportAnnotator(out io.Writer, logger annotate.Logger) *reportAnnotator {
	return &reportAnnotator{out: out, logger: logger}
}

func (a *reportAnnotator) AnnotateModels(_ context.Context, opts annotate.ResolvedOptions) error {
	a.logger.Info("annotating models", "dirs", strings.Join(opts.ModelDirs(), ","), "position", opts.Position(annotate.PositionInClass))
	return a.report("annotate models", opts, annotate.PositionInClass, annotate.ShowIndexes, annotate.Force)
}

func (a *reportAnnotator) RemoveModelAnnotations(_ context.Context, opts annotate.ResolvedOptions) error {
	a.logger.Info("removing model annotations", "dirs", strings.Join(opts.ModelDirs(), ","))
	return a.report("remove model annotations", opts, annotate.PositionInClass)
}

func (a *reportAnnotator) AnnotateRoutes(_ context.Context, opts annotate.ResolvedOptions) error {
	a.logger.Info("annotating routes", "position", opts.Position(annotate.PositionInRoutes))
	return a.report("annotate routes", opts, annotate.PositionInRoutes, annotate.IgnoreRoutes)
}

func (a *reportAnnotator) RemoveRouteAnnotations(_ context.Context, opts annotate.ResolvedOptions) error {
	a.logger.Info("removing route annotations")
	return a.report("remove route annotations", opts, annotate.PositionInRoutes)
}

func (a *reportAnnotator) report(action string, opts annotate.ResolvedOptions, keys ...annotate.Key) error {
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", key, opts.Value(key)))
	}
	_, err := fmt.Fprintf(a.out, "%s %s\n", successStyle.Render(action), strings.Join(parts, " "))
	return err
}
