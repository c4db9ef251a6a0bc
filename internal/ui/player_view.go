package ui

import (
	"fmt"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/kidandcat/heartquest/internal/scene"
	"github.com/kidandcat/heartquest/internal/session"
)

func (p *Player) Render() app.UI {
	if p.crash {
		return reloadNotice()
	}
	if p.err != "" {
		return app.Div().Class("entry").Body(
			app.P().Class("entry-error").Text(p.err),
			app.A().Class("entry-submit").Href("/").Text("Try another token"),
		)
	}

	v := p.view
	return app.Div().Class("scene " + p.world).Body(
		app.Canvas().
			ID(canvasID).
			Class("scene-canvas").
			OnMouseMove(p.onPointerMove).
			OnClick(p.onClick).
			OnTouchStart(p.onTouchStart).
			OnTouchMove(p.onTouchMove).
			OnTouchEnd(p.onTouchEnd),

		app.If(v.Waiting, func() app.UI {
			return app.Div().Class("loading-overlay").Body(
				app.Div().Class("loading-spinner"),
				app.P().Text("Loading your journey..."),
			)
		}).Else(func() app.UI {
			return p.renderHUD(v)
		}),

		app.If(v.Active != nil, func() app.UI {
			return p.renderMemory(v)
		}),
		app.If(v.Castle != nil, func() app.UI {
			return p.renderCastle(*v.Castle)
		}),
		app.If(v.Phase == session.PhaseProposal, func() app.UI {
			return p.renderProposal(v)
		}),
		app.If(v.Phase == session.PhaseFinale, func() app.UI {
			return app.Div().Class("finale-banner").Body(
				app.H2().Text("Forever starts now"),
				app.A().Href("/").Text("Back to the beginning"),
			)
		}),
	)
}

func (p *Player) renderHUD(v hud) app.UI {
	return app.Div().Class("hud").Body(
		app.Div().Class("hud-count").Text(fmt.Sprintf("Memories: %d / %d", v.Collected, v.Total)),
		app.If(v.Narrative != "", func() app.UI {
			return app.Div().Class("hud-narrative").Text(v.Narrative)
		}),
		app.If(v.FirstPerson && v.Phase == session.PhasePlaying && v.Castle == nil, func() app.UI {
			return app.Div().Class("hud-hint").Text("W A S D to walk, click to look and collect")
		}),
	)
}

func (p *Player) renderMemory(v hud) app.UI {
	m := v.Active
	return app.Div().Class("memory-frame").Body(
		app.If(m.ImageURL != "", func() app.UI {
			return app.Img().Class("memory-image").Src(m.ImageURL).Alt(m.CaptionText)
		}),
		app.P().Class("memory-caption").Text(m.CaptionText),
		app.Button().
			Class("memory-close").
			Text("Continue").
			OnClick(func(ctx app.Context, e app.Event) {
				e.Call("stopPropagation")
				p.stage.CloseMemory()
			}),
	)
}

func (p *Player) renderProposal(v hud) app.UI {
	return app.Div().
		Class("proposal").
		OnMouseMove(func(ctx app.Context, e app.Event) {
			p.dodge(ctx, e.Get("clientX").Float(), e.Get("clientY").Float())
		}).
		Body(
			app.H1().Class("proposal-question").Text(v.Question),
			app.Div().Class("proposal-buttons").Body(
				app.Button().
					Class("proposal-yes").
					Text("Yes").
					OnClick(func(ctx app.Context, e app.Event) {
						e.Call("stopPropagation")
						p.stage.Accept()
					}),
				app.Button().
					ID(noButtonID).
					Class("proposal-no").
					Text("No").
					Style("transform", fmt.Sprintf("translate(%.0fpx, %.0fpx) scale(%.2f)", p.noOffset.X, p.noOffset.Y, p.noScale)).
					OnTouchStart(func(ctx app.Context, e app.Event) {
						e.PreventDefault()
						if x, y, ok := firstTouch(e); ok {
							p.dodge(ctx, x, y)
						}
					}).
					OnClick(func(ctx app.Context, e app.Event) {
						e.Call("stopPropagation")
						p.dodge(ctx, e.Get("clientX").Float(), e.Get("clientY").Float())
					}),
			),
		)
}

func (p *Player) renderCastle(c scene.CastleView) app.UI {
	city, _ := p.stage.(*cityStage)
	toggle := "Play music"
	if c.VideoMuted {
		toggle = "Play video sound"
	}
	return app.Div().Class("castle").Body(
		app.If(c.ShowVideo, func() app.UI {
			return app.Div().Class("castle-video").Body(
				app.If(c.VideoYouTubeID != "", func() app.UI {
					mute := 0
					if c.VideoMuted {
						mute = 1
					}
					return app.IFrame().
						Src(fmt.Sprintf("https://www.youtube.com/embed/%s?autoplay=1&mute=%d&loop=1", c.VideoYouTubeID, mute)).
						Allow("autoplay; encrypted-media")
				}).ElseIf(c.VideoURL != "", func() app.UI {
					return app.Video().Src(c.VideoURL).AutoPlay(true).Loop(true).Muted(c.VideoMuted)
				}),
				app.Button().Class("castle-btn").
					Text(toggle).
					OnClick(func(ctx app.Context, e app.Event) {
						e.Call("stopPropagation")
						if city != nil && city.Castle() != nil {
							city.Castle().ToggleVideoAudio()
						}
					}),
				app.Button().Class("castle-btn").
					Text("Close video").
					OnClick(func(ctx app.Context, e app.Event) {
						e.Call("stopPropagation")
						if city != nil && city.Castle() != nil {
							city.Castle().CloseVideo()
						}
					}),
			)
		}),
		app.If(c.MusicYouTubeID != "" && c.VideoMuted, func() app.UI {
			return app.IFrame().
				Class("castle-music").
				Src(fmt.Sprintf("https://www.youtube.com/embed/%s?autoplay=1", c.MusicYouTubeID)).
				Allow("autoplay")
		}),
		app.If(c.ShowText, func() app.UI {
			return app.Div().
				Class("castle-text").
				Style("transform", fmt.Sprintf("translateY(%.0fpx)", -c.TextRise*20)).
				Text(c.ProposalText)
		}),
		app.Button().Class("castle-exit").
			Text("Leave the palace").
			OnClick(func(ctx app.Context, e app.Event) {
				e.Call("stopPropagation")
				if city != nil {
					city.ExitCastle()
				}
			}),
	)
}

// reloadNotice replaces a scene that failed beyond recovery.
func reloadNotice() app.UI {
	return app.Div().Class("entry").Body(
		app.H2().Text("Something went wrong in the cosmos."),
		app.P().Text("Reload the page to start your journey again."),
		app.Button().
			Class("entry-submit").
			Text("Reload").
			OnClick(func(ctx app.Context, e app.Event) {
				ctx.Reload()
			}),
	)
}
