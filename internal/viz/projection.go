package viz

import (
	"math"
	"sort"

	"github.com/san-kum/molopt/internal/molecule"
	"github.com/san-kum/molopt/internal/topology"
)

// Camera rotates positions about Center and projects them with a weak
// perspective.
type Camera struct {
	Center           molecule.Vec3
	Distance         float64
	RotX, RotY, RotZ float64
	Zoom             float64
}

func NewCamera() *Camera {
	return &Camera{Distance: 50, Zoom: 1.0}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(100, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.01, c.Zoom/1.2) }

// Fit centers the camera on the centroid of positions and zooms so the
// farthest atom lands near the edge of the view.
func (c *Camera) Fit(positions []molecule.Vec3) {
	if len(positions) == 0 {
		return
	}
	var sum molecule.Vec3
	for _, p := range positions {
		sum = sum.Add(p)
	}
	c.Center = sum.Scale(1 / float64(len(positions)))

	radius := 0.0
	for _, p := range positions {
		radius = math.Max(radius, p.DistanceTo(c.Center))
	}
	if radius > 0 {
		c.Zoom = 1.4 / radius
	}
}

// RotatePoint rotates p about the camera center.
func (c *Camera) RotatePoint(p molecule.Vec3) molecule.Vec3 {
	p = p.Sub(c.Center)
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	p.X, p.Y = p.X*cz-p.Y*sz, p.X*sz+p.Y*cz
	return p
}

// Project maps p to pixel coordinates on a sw x sh surface.
// Returns x, y, depth, and visibility.
func (c *Camera) Project(p molecule.Vec3, sw, sh int) (int, int, float64, bool) {
	rot := c.RotatePoint(p).Scale(c.Zoom)
	if rot.Z >= c.Distance {
		return 0, 0, 0, false
	}
	scale := c.Distance / (c.Distance - rot.Z)
	minDim := float64(sh)
	if float64(sw) < minDim {
		minDim = float64(sw)
	}
	pScale := minDim / 3.0
	sx := int(rot.X*scale*pScale) + sw/2
	sy := int(-rot.Y*scale*pScale) + sh/2
	return sx, sy, rot.Z, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

type projectedAtom struct {
	x, y    int
	depth   float64
	visible bool
}

// RenderMolecule draws bonds as lines and atoms as discs, farthest first.
func RenderMolecule(c *Canvas, cam *Camera, positions []molecule.Vec3, bonds []topology.Bond) {
	if c == nil || cam == nil {
		return
	}
	sw, sh := c.PixelSize()

	proj := make([]projectedAtom, len(positions))
	for i, p := range positions {
		x, y, d, v := cam.Project(p, sw, sh)
		proj[i] = projectedAtom{x, y, d, v}
	}

	for _, b := range bonds {
		if b.I >= len(proj) || b.J >= len(proj) {
			continue
		}
		a, e := proj[b.I], proj[b.J]
		if a.visible || e.visible {
			c.DrawLine(a.x, a.y, e.x, e.y)
		}
	}

	order := make([]int, len(proj))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return proj[order[i]].depth < proj[order[j]].depth })

	for _, i := range order {
		if proj[i].visible {
			c.DrawDisc(proj[i].x, proj[i].y, 1)
		}
	}
}
