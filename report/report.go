// Package report turns engine results into a human-readable Markdown
// summary, the nearest thing this library-shaped engine has to a
// driver output (§2 item 8 of the expanded spec). It never participates
// in the analysis itself.
package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/o2lab/reach/pss"
	"github.com/o2lab/reach/rd"
)

// Markdown renders result's points-to sets and, if graph is non-nil,
// graph's def-site table, as a Markdown document. Nodes with an empty
// points-to set (or, for RD nodes, no def-sites) are omitted.
func Markdown(result *pss.Result, graph *rd.Graph) string {
	var b strings.Builder

	b.WriteString("# Points-to summary\n\n")
	b.WriteString("| Node | Kind | Points-to |\n|---|---|---|\n")
	for _, n := range result.Subgraph().AllNodes() {
		pts := result.PointsTo(n)
		if len(pts) == 0 {
			continue
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", nodeLabel(n), n.Kind, pointsToLabel(pts))
	}

	if graph != nil {
		b.WriteString("\n# Reaching definitions\n\n")
		b.WriteString("| Node | Def-sites |\n|---|---|\n")
		graph.Walk(func(rn *rd.RDNode) {
			if len(rn.DefSites) == 0 {
				return
			}
			fmt.Fprintf(&b, "| %s | %s |\n", rdLabel(rn), defSitesLabel(rn.DefSites))
		})
	}

	return b.String()
}

// HTML renders markdown (normally the output of Markdown) to HTML using
// goldmark, for callers that want an inline-viewable report rather than
// raw Markdown text.
func HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("report: rendering markdown: %w", err)
	}
	return buf.String(), nil
}

func nodeLabel(n *pss.PSNode) string {
	if n.Name != "" {
		return n.Name
	}
	return fmt.Sprintf("%s@%p", n.Kind, n)
}

func rdLabel(n *rd.RDNode) string {
	if n.Name != "" {
		return n.Name
	}
	return fmt.Sprintf("rd@%p", n)
}

func offsetLabel(o pss.Offset) string {
	if o == pss.UnknownOffset {
		return "?"
	}
	return strconv.FormatInt(int64(o), 10)
}

func pointsToLabel(pts []pss.Pointer) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = fmt.Sprintf("%s+%s", nodeLabel(p.Target), offsetLabel(p.Offset))
	}
	return strings.Join(parts, ", ")
}

func defSitesLabel(defs []pss.DefSite) string {
	parts := make([]string, len(defs))
	for i, d := range defs {
		target := "?"
		if rn, ok := d.Def.(*rd.RDNode); ok {
			target = rdLabel(rn)
		}
		strength := "weak"
		if d.Strong {
			strength = "strong"
		}
		parts[i] = fmt.Sprintf("%s[%s,+%s) %s", target, offsetLabel(d.Lo), offsetLabel(d.Size), strength)
	}
	return strings.Join(parts, ", ")
}
