package ui

import (
	"context"
	"fmt"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/kidandcat/heartquest/internal/client"
	"github.com/kidandcat/heartquest/internal/proposal"
)

// Mine lists the creator's proposals at /mine.
type Mine struct {
	app.Compo

	token    string
	list     []client.Listed
	loaded   bool
	err      string
	open     string
	memories []proposal.Memory
	drafts   map[string]string
}

func (m *Mine) OnMount(ctx app.Context) {
	m.token = creatorToken(ctx)
	if m.token == "" {
		ctx.Navigate("/create")
		return
	}
	m.load(ctx)
}

// call runs fn off the UI goroutine and reports failures inline.
func (m *Mine) call(ctx app.Context, fn func(context.Context) error, then func(ctx app.Context)) {
	ctx.Async(func() {
		rctx, cancel := context.WithTimeout(context.Background(), client.Timeout)
		defer cancel()
		err := fn(rctx)
		ctx.Dispatch(func(ctx app.Context) {
			if err != nil {
				m.err = describe(err)
				return
			}
			m.err = ""
			if then != nil {
				then(ctx)
			}
		})
	})
}

func (m *Mine) load(ctx app.Context) {
	var list []client.Listed
	m.call(ctx, func(rctx context.Context) error {
		var err error
		list, err = env.Client.ListProposals(rctx)
		return err
	}, func(ctx app.Context) {
		m.list = list
		m.loaded = true
	})
}

func (m *Mine) toggle(ctx app.Context, p client.Listed) {
	if m.open == p.ID {
		m.open = ""
		m.memories = nil
		return
	}
	var full *proposal.Proposal
	m.call(ctx, func(rctx context.Context) error {
		var err error
		full, err = env.Client.Resolve(rctx, p.Token)
		return err
	}, func(ctx app.Context) {
		m.open = p.ID
		m.memories = full.Memories
		m.drafts = make(map[string]string, len(full.Memories))
		for _, mem := range full.Memories {
			m.drafts[mem.ID] = mem.CaptionText
		}
	})
}

func (m *Mine) deleteProposal(ctx app.Context, p client.Listed) {
	if !app.Window().Call("confirm", fmt.Sprintf("Delete the proposal for %s? This cannot be undone.", p.PartnerName)).Bool() {
		return
	}
	m.call(ctx, func(rctx context.Context) error {
		return env.Client.DeleteProposal(rctx, p.ID)
	}, func(ctx app.Context) {
		if m.open == p.ID {
			m.open = ""
		}
		m.load(ctx)
	})
}

func (m *Mine) deleteMemory(ctx app.Context, id string) {
	m.call(ctx, func(rctx context.Context) error {
		return env.Client.DeleteMemory(rctx, id)
	}, func(ctx app.Context) {
		for i, mem := range m.memories {
			if mem.ID == id {
				m.memories = append(m.memories[:i], m.memories[i+1:]...)
				break
			}
		}
		m.load(ctx)
	})
}

func (m *Mine) saveCaption(ctx app.Context, id string) {
	caption := m.drafts[id]
	var updated *proposal.Memory
	m.call(ctx, func(rctx context.Context) error {
		var err error
		updated, err = env.Client.UpdateCaption(rctx, id, caption)
		return err
	}, func(ctx app.Context) {
		for i := range m.memories {
			if m.memories[i].ID == id {
				m.memories[i].CaptionText = updated.CaptionText
			}
		}
	})
}

func (m *Mine) Render() app.UI {
	if !m.loaded && m.err == "" {
		return app.Div().Class("loading-overlay").Body(app.Div().Class("loading-spinner"))
	}
	return app.Div().Class("mine").Body(
		app.H1().Text("My proposals"),
		app.A().Href("/create").Text("Create a new one"),
		app.If(m.err != "", func() app.UI {
			return app.P().Class("entry-error").Text(m.err)
		}),
		app.If(m.loaded && len(m.list) == 0, func() app.UI {
			return app.P().Text("Nothing here yet.")
		}),
		app.Range(m.list).Slice(func(i int) app.UI {
			return m.renderProposal(m.list[i])
		}),
	)
}

func (m *Mine) renderProposal(p client.Listed) app.UI {
	return app.Div().Class("mine-item").Body(
		app.Div().Class("mine-head").Body(
			app.Strong().Text(p.PartnerName),
			app.Span().Class("token-display").Text(p.Token),
			app.Span().Class("hint").Text(fmt.Sprintf("%d memories, created %s", p.MemoryCount, p.CreatedAgo)),
		),
		app.Div().Class("mine-actions").Body(
			app.Button().Text("Copy token").
				OnClick(func(ctx app.Context, e app.Event) { copyToClipboard(p.Token) }),
			app.Button().Text("Memories").
				OnClick(func(ctx app.Context, e app.Event) { m.toggle(ctx, p) }),
			app.Button().Class("danger").Text("Delete").
				OnClick(func(ctx app.Context, e app.Event) { m.deleteProposal(ctx, p) }),
		),
		app.If(m.open == p.ID, func() app.UI {
			return app.Div().Class("mine-memories").Body(
				app.Range(m.memories).Slice(func(i int) app.UI {
					return m.renderMemory(m.memories[i])
				}),
			)
		}),
	)
}

func (m *Mine) renderMemory(mem proposal.Memory) app.UI {
	id := mem.ID
	return app.Div().Class("memory-row").Body(
		app.If(mem.ImageURL != "", func() app.UI {
			return app.Img().Class("memory-thumb").Src(mem.ImageURL).Alt(mem.CaptionText)
		}),
		app.Input().Type("text").Value(m.drafts[id]).
			OnInput(func(ctx app.Context, e app.Event) {
				m.drafts[id] = ctx.JSSrc().Get("value").String()
			}),
		app.If(mem.Collected, func() app.UI {
			return app.Span().Class("hint").Text("collected")
		}),
		app.Button().Text("Save").
			Disabled(m.drafts[id] == mem.CaptionText).
			OnClick(func(ctx app.Context, e app.Event) { m.saveCaption(ctx, id) }),
		app.Button().Class("danger").Text("Delete").
			OnClick(func(ctx app.Context, e app.Event) { m.deleteMemory(ctx, id) }),
	)
}
