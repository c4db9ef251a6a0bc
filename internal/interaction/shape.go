package interaction

import "math"

// Ray is a half line; Dir is unit length.
type Ray struct {
	Origin Vec3
	Dir    Vec3
}

func (r Ray) At(t float64) Vec3 { return r.Origin.Add(r.Dir.Scale(t)) }

// Shape is anything a ray can hit.
type Shape interface {
	Intersect(r Ray) (dist float64, ok bool)
}

// Box is an axis-aligned box given by its centre and full size, the way
// building footprints are authored.
type Box struct {
	Center Vec3
	Size   Vec3
}

func (b Box) Min() Vec3 { return b.Center.Sub(b.Size.Scale(0.5)) }
func (b Box) Max() Vec3 { return b.Center.Add(b.Size.Scale(0.5)) }

// Expand grows the box by r on the horizontal axes.
func (b Box) Expand(r float64) Box {
	return Box{Center: b.Center, Size: Vec3{b.Size.X + 2*r, b.Size.Y, b.Size.Z + 2*r}}
}

// ContainsXZ reports whether p lies strictly inside the box footprint.
func (b Box) ContainsXZ(p Vec3) bool {
	hx, hz := b.Size.X/2, b.Size.Z/2
	return p.X > b.Center.X-hx && p.X < b.Center.X+hx &&
		p.Z > b.Center.Z-hz && p.Z < b.Center.Z+hz
}

// Intersect is the slab test. Rays starting inside report distance zero.
func (b Box) Intersect(r Ray) (float64, bool) {
	lo, hi := b.Min(), b.Max()
	tmin, tmax := math.Inf(-1), math.Inf(1)
	for _, ax := range [3][4]float64{
		{r.Origin.X, r.Dir.X, lo.X, hi.X},
		{r.Origin.Y, r.Dir.Y, lo.Y, hi.Y},
		{r.Origin.Z, r.Dir.Z, lo.Z, hi.Z},
	} {
		o, d, l, h := ax[0], ax[1], ax[2], ax[3]
		if d == 0 {
			if o < l || o > h {
				return 0, false
			}
			continue
		}
		t1, t2 := (l-o)/d, (h-o)/d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	return math.Max(tmin, 0), true
}

type Sphere struct {
	Center Vec3
	Radius float64
}

func (s Sphere) Intersect(r Ray) (float64, bool) {
	oc := r.Origin.Sub(s.Center)
	b := oc.Dot(r.Dir)
	c := oc.Dot(oc) - s.Radius*s.Radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	if c < 0 {
		return 0, true
	}
	return t, true
}
