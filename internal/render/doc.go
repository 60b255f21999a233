// Package render draws grouped sensor series.
//
// Every renderer produces one chart per unit group, all sharing the
// relative time axis of the log:
//
//   - PNG: gonum/plot, groups stacked as panels of a single image
//   - HTML: go-echarts, one interactive line chart per group on one page
//   - SVG: go-chart, one file per group
//
// Series colours come from a Palette owned by the renderer and reset at the
// start of every group, so the first series of each chart is always red.
package render
