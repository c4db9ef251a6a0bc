package ui

import (
	"context"
	"errors"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/kidandcat/heartquest/internal/client"
	"github.com/kidandcat/heartquest/internal/proposal"
)

// Entry is the token screen. A token that resolves navigates into the
// chosen world; anything else shows an inline error and stays put.
type Entry struct {
	app.Compo

	token   string
	world   string
	err     string
	loading bool
}

func (e *Entry) OnInit() {
	e.world = WorldOdyssey
}

func (e *Entry) submit(ctx app.Context, ev app.Event) {
	ev.PreventDefault()
	if e.loading {
		return
	}
	token := proposal.NormalizeToken(e.token)
	if !proposal.ValidToken(token) {
		e.err = "Tokens look like HEART-1234."
		return
	}
	e.err = ""
	e.loading = true
	world := e.world

	ctx.Async(func() {
		rctx, cancel := context.WithTimeout(context.Background(), client.Timeout)
		defer cancel()
		p, err := env.Client.Resolve(rctx, token)
		ctx.Dispatch(func(ctx app.Context) {
			e.loading = false
			switch {
			case errors.Is(err, proposal.ErrNotFound):
				e.err = "No proposal found for that token."
			case err != nil:
				app.Log("resolve failed:", err)
				e.err = "Could not reach the stars. Try again."
			default:
				resolved.put(p)
				ctx.Navigate("/" + world + "/" + p.Token)
			}
		})
	})
}

func (e *Entry) Render() app.UI {
	choice := func(world, label string) app.UI {
		cls := "world-choice"
		if e.world == world {
			cls += " active"
		}
		return app.Button().
			Type("button").
			Class(cls).
			Text(label).
			OnClick(func(ctx app.Context, ev app.Event) { e.world = world })
	}

	label := "Begin"
	if e.loading {
		label = "Searching the stars..."
	}

	return app.Div().Class("entry").Body(
		app.H1().Class("entry-title").Text("HeartQuest"),
		app.P().Class("entry-subtitle").Text("Someone left you a journey. Enter your token."),
		app.Form().Class("entry-form").OnSubmit(e.submit).Body(
			app.Input().
				Type("text").
				Class("entry-token").
				Placeholder("HEART-0000").
				Value(e.token).
				AutoFocus(true).
				OnInput(func(ctx app.Context, ev app.Event) {
					e.token = ctx.JSSrc().Get("value").String()
				}),
			app.Div().Class("world-choices").Body(
				choice(WorldOdyssey, "Galactic Odyssey"),
				choice(WorldCity, "City of Love"),
			),
			app.Button().
				Type("submit").
				Class("entry-submit").
				Disabled(e.loading).
				Text(label),
		),
		app.If(e.err != "", func() app.UI {
			return app.P().Class("entry-error").Text(e.err)
		}),
		app.A().Class("entry-creator").Href("/create").Text("Create a proposal"),
	)
}
