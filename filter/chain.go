package filter

// Chain applies a list of filters one after another. Every stage receives the
// previous stage's output together with the original mask.
type Chain struct {
	filters []Filter
}

// NewChain creates a chain applying 'filters' in order.
func NewChain(filters ...Filter) *Chain {
	return &Chain{filters: append([]Filter(nil), filters...)}
}

// Add appends 'f' to the end of the chain.
func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// Filters returns the stages of the chain in application order.
func (c *Chain) Filters() []Filter {
	return append([]Filter(nil), c.filters...)
}

// Len returns the number of stages.
func (c *Chain) Len() int {
	return len(c.filters)
}

// Process runs every stage in order and returns the last output.
// An empty chain returns a blank image of the input's size, not the input itself.
func (c *Chain) Process(img, mask *Image) *Image {
	if img == nil {
		return nil
	}
	out := NewImage(img.Width, img.Height)
	for i, f := range c.filters {
		if i == 0 {
			out = f.Process(img, mask)
		} else {
			out = f.Process(out, mask)
		}
	}
	return out
}
