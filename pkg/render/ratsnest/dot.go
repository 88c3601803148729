package ratsnest

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
)

// Options configures DOT output.
type Options struct {
	// All includes fully routed nets. By default only nets with airwires
	// are drawn.
	All bool
}

// ToDOT converts net statuses to Graphviz DOT.
func ToDOT(nets []Net, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph ratsnest {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12];\n")
	buf.WriteString("  edge [fontsize=10];\n")

	n := 0
	for _, net := range nets {
		if net.Complete() && !opts.All {
			continue
		}
		fmt.Fprintf(&buf, "\n  subgraph \"cluster_%d\" {\n", n)
		fmt.Fprintf(&buf, "    label=%q;\n", string(net.Name))
		for _, group := range net.Islands {
			for _, it := range group {
				fmt.Fprintf(&buf, "    %q [%s];\n", it.Key, nodeAttrs(it.Key))
			}
			for i := 1; i < len(group); i++ {
				fmt.Fprintf(&buf, "    %q -- %q [penwidth=2];\n", group[i-1].Key, group[i].Key)
			}
		}
		for _, w := range net.Airwires {
			fmt.Fprintf(&buf, "    %q -- %q [style=dashed, color=red, label=%q];\n", w.From.Key, w.To.Key, w.Length.String())
		}
		buf.WriteString("  }\n")
		n++
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(key string) string {
	kind, name, _ := strings.Cut(key, ":")
	if kind == "pad" {
		return fmt.Sprintf("label=%q", name)
	}
	return fmt.Sprintf("label=%q, shape=point, width=0.1", "")
}

// RenderSVG renders DOT to SVG.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing scales with
// its container.
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

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
