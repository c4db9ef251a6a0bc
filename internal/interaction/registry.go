package interaction

import "math"

type Kind int

const (
	KindMemory Kind = iota
	KindPalace
	KindHeart
)

// Landmark is an interactive object in the scene.
type Landmark struct {
	ID    string
	Kind  Kind
	Label string
	Shape Shape
}

// Registry maps interactive shapes to landmark ids. Hit testing queries it
// directly; nothing is inferred from the render tree.
type Registry struct {
	items  []Landmark
	index  map[string]int
	hidden map[string]bool
}

func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int), hidden: make(map[string]bool)}
}

// Register adds or replaces a landmark.
func (r *Registry) Register(l Landmark) {
	if i, ok := r.index[l.ID]; ok {
		r.items[i] = l
		return
	}
	r.index[l.ID] = len(r.items)
	r.items = append(r.items, l)
}

func (r *Registry) Get(id string) (Landmark, bool) {
	i, ok := r.index[id]
	if !ok {
		return Landmark{}, false
	}
	return r.items[i], true
}

// SetHidden excludes a landmark from hit testing without forgetting it.
func (r *Registry) SetHidden(id string, hidden bool) {
	if hidden {
		r.hidden[id] = true
	} else {
		delete(r.hidden, id)
	}
}

func (r *Registry) Hidden(id string) bool { return r.hidden[id] }

func (r *Registry) Len() int { return len(r.items) }

// All returns the landmarks in registration order.
func (r *Registry) All() []Landmark {
	out := make([]Landmark, len(r.items))
	copy(out, r.items)
	return out
}

// Hit is a raycast result.
type Hit struct {
	Landmark Landmark
	Distance float64
}

// Raycast returns the nearest visible landmark hit within maxDist. A hit
// behind any occluder is discarded. maxDist <= 0 means unlimited.
func (r *Registry) Raycast(ray Ray, maxDist float64, occluders []Box) (Hit, bool) {
	if maxDist <= 0 {
		maxDist = math.Inf(1)
	}
	best := Hit{Distance: math.Inf(1)}
	found := false
	for _, l := range r.items {
		if r.hidden[l.ID] || l.Shape == nil {
			continue
		}
		d, ok := l.Shape.Intersect(ray)
		if !ok || d > maxDist || d >= best.Distance {
			continue
		}
		best = Hit{Landmark: l, Distance: d}
		found = true
	}
	if !found {
		return Hit{}, false
	}
	for _, o := range occluders {
		if d, ok := o.Intersect(ray); ok && d < best.Distance {
			return Hit{}, false
		}
	}
	return best, true
}
