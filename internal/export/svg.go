// Package export renders runs as standalone SVG documents.
package export

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/molopt/internal/molecule"
	"github.com/san-kum/molopt/internal/topology"
	"github.com/san-kum/molopt/internal/viz"
)

const background = "#0a0a0a"

var speciesColors = map[molecule.Species]string{
	molecule.Carbon:   "#9a9a9a",
	molecule.Hydrogen: "#f0f0f0",
	molecule.Oxygen:   "#ff4040",
}

// speciesRadius is in pixels at the default scale.
var speciesRadius = map[molecule.Species]float64{
	molecule.Carbon:   7,
	molecule.Hydrogen: 4,
	molecule.Oxygen:   7,
}

func header(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

// MoleculeToSVG projects the structure through cam and draws bonds as
// lines and atoms as circles colored by species, farthest first.
func MoleculeToSVG(cam *viz.Camera, species []molecule.Species, positions []molecule.Vec3, bonds []topology.Bond, width, height int) (string, error) {
	if len(species) != len(positions) {
		return "", fmt.Errorf("export: %d species for %d positions", len(species), len(positions))
	}

	type point struct {
		x, y, depth float64
	}
	proj := make([]point, len(positions))
	for i, p := range positions {
		x, y, d, _ := cam.Project(p, width, height)
		proj[i] = point{float64(x), float64(y), d}
	}

	var sb strings.Builder
	header(&sb, width, height)

	sb.WriteString(`<g stroke="#5a8fd0" stroke-width="2">` + "\n")
	for _, b := range bonds {
		if b.I >= len(proj) || b.J >= len(proj) {
			continue
		}
		a, e := proj[b.I], proj[b.J]
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", a.x, a.y, e.x, e.y)
	}
	sb.WriteString("</g>\n")

	order := make([]int, len(proj))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return proj[order[i]].depth < proj[order[j]].depth })

	sb.WriteString("<g>\n")
	for _, i := range order {
		color, ok := speciesColors[species[i]]
		if !ok {
			color = "#ff00ff"
		}
		r, ok := speciesRadius[species[i]]
		if !ok {
			r = 5
		}
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"><title>%d %s</title></circle>`+"\n",
			proj[i].x, proj[i].y, r, color, i, species[i])
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String(), nil
}

// EnergyToSVG draws an energy trace as a polyline, iteration on the x axis.
func EnergyToSVG(values []float64, width, height int, strokeColor string) string {
	points := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			points = append(points, v)
		}
	}
	if len(points) < 2 {
		return ""
	}

	lo, hi := points[0], points[0]
	for _, v := range points {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	span := hi - lo
	if span == 0 {
		span = 1
	}
	lo -= span * 0.1
	hi += span * 0.1
	span = hi - lo
	last := float64(len(points) - 1)

	var sb strings.Builder
	header(&sb, width, height)
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor)

	for i, v := range points {
		x := float64(i) / last * float64(width)
		y := float64(height) - (v-lo)/span*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
