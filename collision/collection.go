package collision

import (
	"slices"

	"github.com/samber/lo"
)

// Collection is an immutable id to Box mapping for one category. Boxes are kept sorted by id,
// which is also the order queries scan them in.
type Collection struct {
	category Category
	boxes    []Box
	index    map[string]int
}

func newCollection(c Category, boxes map[string]Box) *Collection {
	ids := lo.Keys(boxes)
	slices.Sort(ids)
	col := &Collection{
		category: c,
		boxes:    make([]Box, 0, len(ids)),
		index:    make(map[string]int, len(ids)),
	}
	for _, id := range ids {
		col.index[id] = len(col.boxes)
		col.boxes = append(col.boxes, boxes[id])
	}
	return col
}

// Category returns the category this collection belongs to.
func (c *Collection) Category() Category {
	return c.category
}

// Len returns the number of boxes. A nil collection is empty.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.boxes)
}

// Get returns a copy of the box registered under id.
func (c *Collection) Get(id string) (Box, bool) {
	if c == nil {
		return Box{}, false
	}
	i, ok := c.index[id]
	if !ok {
		return Box{}, false
	}
	return c.boxes[i], true
}

// Has reports whether id is registered.
func (c *Collection) Has(id string) bool {
	if c == nil {
		return false
	}
	_, ok := c.index[id]
	return ok
}

// IDs returns the registered ids in ascending order.
func (c *Collection) IDs() []string {
	if c == nil {
		return nil
	}
	return lo.Map(c.boxes, func(b Box, _ int) string { return b.ID })
}

// Boxes returns a copy of the collection as a map.
func (c *Collection) Boxes() map[string]Box {
	out := make(map[string]Box, c.Len())
	if c == nil {
		return out
	}
	for _, b := range c.boxes {
		out[b.ID] = b
	}
	return out
}

// Each calls fn on every box in id order until fn returns false.
func (c *Collection) Each(fn func(Box) bool) {
	if c == nil {
		return
	}
	for _, b := range c.boxes {
		if !fn(b) {
			return
		}
	}
}

func (c *Collection) sameIDs(boxes map[string]Box) bool {
	if c.Len() != len(boxes) {
		return false
	}
	return lo.EveryBy(lo.Keys(boxes), c.Has)
}

func (c *Collection) sameContents(boxes map[string]Box) bool {
	if c == nil {
		return len(boxes) == 0
	}
	for i := range c.boxes {
		other, ok := boxes[c.boxes[i].ID]
		if !ok || !c.boxes[i].sameGeometry(&other) {
			return false
		}
	}
	return true
}
