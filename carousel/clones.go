package carousel

// createClones copies depth items from each end to the opposite end of the
// container: the first items are appended and the last items prepended.
// Clones carry data-ss-clone so Destroy can remove them.
func (c *Carousel) createClones(depth int) {
	items := c.container.QuerySelectorAll("[data-ss-component=item]")
	if depth > len(items) || depth < 1 {
		return
	}
	head := items[:depth]
	tail := items[len(items)-depth:]

	for _, item := range head {
		clone := item.Clone(true)
		clone.SetAttribute("data-ss-clone", "")
		c.container.AppendElement(clone)
		c.clones = append(c.clones, clone)
	}
	first := c.container.FirstElementChild()
	for _, item := range tail {
		clone := item.Clone(true)
		clone.SetAttribute("data-ss-clone", "")
		if first != nil {
			first.Before(clone.AsNode())
		} else {
			c.container.AppendElement(clone)
		}
		c.clones = append(c.clones, clone)
	}
}
