package link

import (
	cmap "github.com/orcaman/concurrent-map/v2"
)

// owners maps segment names to the exclusive Link writing them. Zeroing the
// segment on Close is only correct with a single owner per process.
var owners = cmap.New[*Link]()

func claim(name string, l *Link) bool {
	return owners.SetIfAbsent(name, l)
}

func unclaim(name string, l *Link) {
	owners.RemoveCb(name, func(_ string, v *Link, exists bool) bool {
		return exists && v == l
	})
}
