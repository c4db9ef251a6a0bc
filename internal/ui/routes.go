package ui

import "github.com/maxence-charriere/go-app/v10/pkg/app"

// Routes registers the pages. The server and the wasm binary both call it
// so prerendering and client routing agree.
func Routes() {
	app.Route("/", func() app.Composer { return &Entry{} })
	app.RouteWithRegexp(`^/(odyssey|city)/[^/]+$`, func() app.Composer { return &Player{} })
	app.Route("/create", func() app.Composer { return &Creator{} })
	app.Route("/mine", func() app.Composer { return &Mine{} })
}
