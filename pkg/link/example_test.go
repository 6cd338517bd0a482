package link_test

import (
	"context"
	"fmt"

	"github.com/srediag/mumble-link/pkg/link"
	"github.com/srediag/mumble-link/pkg/linktest"
)

func ExampleOpenShared() {
	region := linktest.NewRegion()
	opener := func(_ context.Context, _ string, _ int) (link.Mapping, error) {
		return region.Map(), nil
	}

	l := link.OpenShared("MyGame", "MyGame 1.2", link.WithOpener(opener))
	defer l.Close()

	l.SetContext([]byte("server-1"))
	l.SetIdentity("player-42")
	for i := 0; i < 3; i++ {
		l.Update(link.DefaultPosition(), link.DefaultPosition())
	}

	rec := region.Record()
	fmt.Println(l.Status(), rec.Tick, rec.NameText(), rec.IdentityText())
	// Output: active 3 MyGame player-42
}

func ExampleOpen() {
	l, err := link.Open("MyGame", "MyGame 1.2", link.WithSegmentName("MumbleLink.example-missing"))
	if err != nil {
		fmt.Println("Mumble link failed to connect. Is Mumble open?", link.CodeOf(err).Kind())
		return
	}
	defer l.Close()
	l.Update(link.DefaultPosition(), link.DefaultPosition())
}
