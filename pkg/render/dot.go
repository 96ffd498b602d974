// Package render converts flows into Graphviz DOT and raster/vector
// artifacts for debugging and documentation. It is a diagnostic surface,
// not the editor's canvas: positions computed by the layout engine are
// intentionally ignored and Graphviz lays out the DOT on its own.
package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/flowkit/pkg/errors"
	"github.com/matzehuels/flowkit/pkg/flow"
)

// Supported output formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
)

// Options configures DOT generation.
type Options struct {
	// Direction is the flow direction ("LR", "RL", "TB", "BT").
	// Empty defaults to left-to-right.
	Direction string

	// ShowHalos fills expanded-group clusters with a light background so
	// the nesting depth is visible in the rendered artifact.
	ShowHalos bool

	// Detailed includes the node kind and collapsed state in labels.
	// When false, only the node label (or ID) is shown.
	Detailed bool
}

// ToDOT converts a flow to Graphviz DOT format. Expanded groups become
// nested cluster subgraphs, collapsed groups become single boxes, and
// synthetic boundary edges are drawn dashed. Hidden nodes and edges are
// omitted; run the visibility pass before rendering.
//
// The resulting DOT string can be rendered with [RenderSVG] or [RenderPNG].
func ToDOT(f flow.Flow, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", dotRankdir(opts.Direction))
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	children := childrenByParent(f.Nodes)
	for _, n := range sortedByID(children[""]) {
		writeNode(&buf, n, children, opts, 1)
	}

	buf.WriteString("\n")
	for _, e := range f.Edges {
		if e.Hidden {
			continue
		}
		if e.IsSynthetic {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed];\n", e.Source, e.Target)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// childrenByParent indexes nodes by their parent group. Root nodes are
// keyed under the empty string.
func childrenByParent(nodes []flow.Node) map[string][]flow.Node {
	children := make(map[string][]flow.Node)
	for _, n := range nodes {
		children[n.ParentGroupID] = append(children[n.ParentGroupID], n)
	}
	return children
}

func sortedByID(nodes []flow.Node) []flow.Node {
	out := slices.Clone(nodes)
	slices.SortFunc(out, func(a, b flow.Node) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// writeNode emits one node and, for expanded groups, recurses into a
// cluster subgraph containing its children.
func writeNode(buf *bytes.Buffer, n flow.Node, children map[string][]flow.Node, opts Options, depth int) {
	indent := strings.Repeat("  ", depth)

	if n.Kind == flow.KindGroup && n.GroupHidden {
		return // inside a collapsed ancestor
	}

	if n.Kind == flow.KindGroup && !n.IsCollapsed {
		// Expanded group: render the membership boundary as a cluster.
		fmt.Fprintf(buf, "%ssubgraph %s {\n", indent, clusterName(n.ID))
		fmt.Fprintf(buf, "%s  label=%q;\n", indent, fmtLabel(n, opts.Detailed))
		if opts.ShowHalos {
			fmt.Fprintf(buf, "%s  style=\"rounded,filled\";\n", indent)
			fmt.Fprintf(buf, "%s  fillcolor=\"#f0f0f8\";\n", indent)
		} else {
			fmt.Fprintf(buf, "%s  style=rounded;\n", indent)
		}
		for _, c := range sortedByID(children[n.ID]) {
			writeNode(buf, c, children, opts, depth+1)
		}
		fmt.Fprintf(buf, "%s}\n", indent)
		return
	}

	if n.Hidden {
		return
	}

	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}
	if n.Kind == flow.KindGroup {
		// Collapsed group box.
		attrs = append(attrs, "style=\"rounded,filled,bold\"", "fillcolor=lightgrey")
	}
	fmt.Fprintf(buf, "%s%q [%s];\n", indent, n.ID, strings.Join(attrs, ", "))
}

var clusterUnsafe = regexp.MustCompile(`[^A-Za-z0-9_]`)

// clusterName derives a DOT-safe subgraph identifier. Graphviz only treats
// subgraphs whose name starts with "cluster" as drawn boundaries.
func clusterName(id string) string {
	return "cluster_" + clusterUnsafe.ReplaceAllString(id, "_")
}

func fmtLabel(n flow.Node, detailed bool) string {
	label := n.DisplayLabel()
	if !detailed {
		return label
	}

	parts := []string{"kind: " + n.Kind}
	if n.IsGroup() {
		parts = append(parts, "state: "+n.Display().String())
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func dotRankdir(direction string) string {
	switch direction {
	case flow.DirectionRL:
		return "RL"
	case flow.DirectionTB:
		return "TB"
	case flow.DirectionBT:
		return "BT"
	default:
		return "LR"
	}
}

// =============================================================================
// Graphviz Rendering
// =============================================================================

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.PNG)
}

func renderFormat(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render graph")
	}

	out := buf.Bytes()
	if format == graphviz.SVG {
		out = normalizeViewBox(out)
	}
	return out, nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the SVG root element so the viewBox origin is
// zero and the pixel dimensions match it, which keeps downstream viewers
// from clipping the drawing.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
