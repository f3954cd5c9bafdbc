package compositor

import (
	"sync"

	"github.com/inkline-team/inkline/internal/domain/entities"
)

// Layer names one of the two composited visual layers
type Layer string

const (
	LayerAIDrawings Layer = "aiDrawings"
	LayerMyNotes    Layer = "myNotes"
)

// HiddenOpacity is the opacity a hidden layer renders at. Hiding is
// non-destructive: structure stays faintly visible for orientation.
const HiddenOpacity = 0.10

// Compositor tracks the independent visibility flags of the generated-content
// and annotation layers
type Compositor struct {
	mu      sync.Mutex
	visible map[Layer]bool
}

// New creates a compositor with both layers visible
func New() *Compositor {
	return &Compositor{
		visible: map[Layer]bool{
			LayerAIDrawings: true,
			LayerMyNotes:    true,
		},
	}
}

// SetVisible sets a layer's visibility flag
func (c *Compositor) SetVisible(layer Layer, visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visible[layer] = visible
}

// Toggle flips a layer's visibility and returns the new value
func (c *Compositor) Toggle(layer Layer) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visible[layer] = !c.visible[layer]
	return c.visible[layer]
}

// Visible reports a layer's visibility flag
func (c *Compositor) Visible(layer Layer) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible[layer]
}

// Opacity returns the render opacity for a layer: 1.0 when visible,
// HiddenOpacity when hidden
func (c *Compositor) Opacity(layer Layer) float64 {
	if c.Visible(layer) {
		return 1.0
	}
	return HiddenOpacity
}

// Snapshot returns the current visibility as a persistable value
func (c *Compositor) Snapshot() entities.LayerVisibility {
	c.mu.Lock()
	defer c.mu.Unlock()
	return entities.LayerVisibility{
		AIDrawings: c.visible[LayerAIDrawings],
		MyNotes:    c.visible[LayerMyNotes],
	}
}

// Restore applies hydrated visibility flags
func (c *Compositor) Restore(v entities.LayerVisibility) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visible[LayerAIDrawings] = v.AIDrawings
	c.visible[LayerMyNotes] = v.MyNotes
}
