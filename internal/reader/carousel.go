package reader

// carousel reproduit la primitive de slides du lecteur paginé:
// slides centrées, une seule active, orientation LTR ou RTL.
type carousel struct {
	count  int
	active int
	rtl    bool

	onActiveChange func(index int)
	onReachEnd     func()
}

func newCarousel(count int, rtl bool) *carousel {
	return &carousel{count: count, rtl: rtl}
}

func (c *carousel) isEnd() bool {
	return c.count > 0 && c.active == c.count-1
}

// slideTo place la slide index au centre, sans transition.
func (c *carousel) slideTo(index int) bool {
	if index < 0 || index >= c.count || index == c.active {
		return false
	}
	wasEnd := c.isEnd()
	c.active = index
	if c.onActiveChange != nil {
		c.onActiveChange(index)
	}
	if !wasEnd && c.isEnd() && c.onReachEnd != nil {
		c.onReachEnd()
	}
	return true
}

func (c *carousel) slideNext() bool { return c.slideTo(c.active + 1) }

func (c *carousel) slidePrev() bool { return c.slideTo(c.active - 1) }

// visualPosition renvoie la position à l'écran (0 = bord gauche) d'une slide.
func visualPosition(count, index int, rtl bool) int {
	if rtl {
		return count - 1 - index
	}
	return index
}
