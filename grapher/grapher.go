// Package grapher renders an injector's binding graph as Graphviz DOT, the
// standard way to eyeball what a container actually wired together.
//
//	fmt.Println(grapher.DOT(injector))
//
// Nodes are keys, shaped by how their binding produces instances; solid
// edges are constructor/provider parameters and linked targets, dashed edges
// are field and setter injections. Output is deterministic: nodes and edges
// are emitted in sorted key order, so renders diff cleanly.
package grapher

import (
	"fmt"
	"strings"

	"github.com/km-arc/go-guice/inject"
)

// DOT renders the binding graph of in and all its ancestors. Child bindings
// shadow parent bindings for the same key, so the walk takes the first entry
// it sees, child side first.
func DOT(in *inject.Injector) string {
	var infos []inject.BindingInfo
	seen := make(map[inject.Key]bool)
	for cur := in; cur != nil; cur = cur.Parent() {
		for _, info := range cur.Bindings() {
			if seen[info.Key] {
				continue
			}
			seen[info.Key] = true
			infos = append(infos, info)
		}
	}

	var b strings.Builder
	b.WriteString("digraph injector {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [fontname=\"Helvetica\"];\n")

	for _, info := range infos {
		fmt.Fprintf(&b, "  %s [label=%s, shape=%s%s];\n",
			quote(info.Key.String()),
			quote(label(info)),
			shape(info.Kind),
			styleSuffix(info),
		)
	}
	for _, info := range infos {
		if info.Kind == inject.TargetLinked {
			fmt.Fprintf(&b, "  %s -> %s [style=bold];\n",
				quote(info.Key.String()), quote(info.Target.String()))
			continue
		}
		for _, dep := range info.Deps {
			fmt.Fprintf(&b, "  %s -> %s%s;\n",
				quote(info.Key.String()), quote(dep.Key.String()), edgeAttrs(dep))
		}
	}
	b.WriteString("}\n")
	return b.String()
}

func label(info inject.BindingInfo) string {
	l := info.Key.String()
	if info.Scope != inject.Unscoped {
		l += "\n[" + info.Scope + "]"
	}
	if info.JustInTime {
		l += "\n(jit)"
	}
	return l
}

func shape(kind inject.TargetKind) string {
	switch kind {
	case inject.TargetInstance:
		return "note"
	case inject.TargetLinked:
		return "ellipse"
	case inject.TargetProvider:
		return "invhouse"
	case inject.TargetConstructor:
		return "box"
	}
	return "plaintext"
}

func styleSuffix(info inject.BindingInfo) string {
	if info.JustInTime {
		return ", style=dotted"
	}
	return ""
}

func edgeAttrs(dep inject.DependencyEdge) string {
	var attrs []string
	if dep.Kind != inject.EdgeParameter {
		attrs = append(attrs, "style=dashed")
	}
	if dep.Optional {
		attrs = append(attrs, `label="optional"`)
	}
	if len(attrs) == 0 {
		return ""
	}
	return " [" + strings.Join(attrs, ", ") + "]"
}

// quote escapes a DOT double-quoted string.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return `"` + s + `"`
}
