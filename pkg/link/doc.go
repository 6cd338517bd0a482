// Package link publishes a player's and camera's position to Mumble through
// the Mumble link shared memory segment.
//
// Open returns a Link that owns the segment for its whole lifetime and fails
// if Mumble is not running. OpenShared returns a SharedLink that always
// succeeds: it only writes while it believes nobody else is using the
// segment, and retries on its own every RecheckEvery calls to Update.
//
// Call Update once per frame. Neither link type is safe for concurrent use;
// guard a shared instance with a mutex.
//
//	l, err := link.Open("MyGame", "MyGame 1.2")
//	if err != nil {
//	  // tell the player Mumble is not running
//	}
//	defer l.Close()
//	l.SetContext([]byte("server-1/map-3"))
//	l.SetIdentity("player-42")
//	for range frames {
//	  l.Update(avatar, camera)
//	}
package link
