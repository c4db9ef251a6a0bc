package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/kidandcat/heartquest/internal/client"
	"github.com/kidandcat/heartquest/internal/proposal"
)

type memoryRow struct {
	caption string
	image   *client.File
}

// Creator is the proposal builder at /create.
type Creator struct {
	app.Compo

	token      string
	tokenDraft string

	partnerName  string
	nebulaColor  string
	starColor    string
	proposalText string
	musicURL     string
	musicStart   string
	videoURL     string
	rows         []memoryRow
	gallery      []client.File
	music        *client.File
	video        *client.File

	submitting bool
	err        string
	created    *proposal.Proposal
}

func (c *Creator) OnInit() {
	c.nebulaColor = proposal.DefaultNebulaColor
	c.starColor = proposal.DefaultStarColor
	c.rows = make([]memoryRow, proposal.MinMemories)
}

func (c *Creator) OnMount(ctx app.Context) {
	c.token = creatorToken(ctx)
}

func bind(target *string) app.EventHandler {
	return func(ctx app.Context, e app.Event) {
		*target = ctx.JSSrc().Get("value").String()
	}
}

func (c *Creator) login(ctx app.Context, e app.Event) {
	token := strings.TrimSpace(c.tokenDraft)
	if token == "" {
		return
	}
	saveCreatorToken(ctx, token)
	c.token = token
}

func (c *Creator) devLogin(ctx app.Context, e app.Event) {
	ctx.Async(func() {
		rctx, cancel := context.WithTimeout(context.Background(), client.Timeout)
		defer cancel()
		_, err := env.Client.DevLogin(rctx, "")
		ctx.Dispatch(func(ctx app.Context) {
			if err != nil {
				c.err = "Dev login is not available on this server."
				return
			}
			saveCreatorToken(ctx, env.Client.Token())
			c.token = env.Client.Token()
		})
	})
}

// submission builds the upload, or returns a message naming what is
// missing.
func (c *Creator) submission() (client.Submission, string) {
	s := client.Submission{
		PartnerName:  c.partnerName,
		NebulaColor:  c.nebulaColor,
		StarColor:    c.starColor,
		ProposalText: c.proposalText,
		MusicURL:     c.musicURL,
		VideoURL:     c.videoURL,
		Gallery:      c.gallery,
		Music:        c.music,
		Video:        c.video,
	}
	if raw := strings.TrimSpace(c.musicStart); raw != "" {
		start, err := strconv.ParseFloat(raw, 64)
		if err != nil || start < 0 {
			return s, "Music start must be a number of seconds."
		}
		s.MusicStartTime = start
	}
	for i, r := range c.rows {
		if strings.TrimSpace(r.caption) == "" {
			return s, fmt.Sprintf("Memory %d needs a caption.", i+1)
		}
		if r.image == nil {
			return s, fmt.Sprintf("Memory %d needs a photo.", i+1)
		}
		s.Captions = append(s.Captions, r.caption)
		s.Images = append(s.Images, *r.image)
	}
	if len(s.Captions) < proposal.MinMemories {
		return s, fmt.Sprintf("Add at least %d memories.", proposal.MinMemories)
	}
	return s, ""
}

func (c *Creator) submit(ctx app.Context, e app.Event) {
	e.PreventDefault()
	if c.submitting {
		return
	}
	s, problem := c.submission()
	if problem != "" {
		c.err = problem
		return
	}
	c.err = ""
	c.submitting = true

	ctx.Async(func() {
		rctx, cancel := context.WithTimeout(context.Background(), 5*client.Timeout)
		defer cancel()
		p, err := env.Client.CreateProposal(rctx, s)
		ctx.Dispatch(func(ctx app.Context) {
			c.submitting = false
			if err != nil {
				c.err = describe(err)
				return
			}
			c.created = p
		})
	})
}

// describe turns an API failure into a sentence for the creator.
func describe(err error) string {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		app.Log("request failed:", err)
		return "Could not reach the server."
	}
	switch {
	case apiErr.Status == 401:
		return "Your creator session expired. Log in again."
	case len(apiErr.Fields) > 0:
		return "Please check: " + strings.Join(apiErr.Fields, ", ")
	}
	return apiErr.Message
}

func (c *Creator) Render() app.UI {
	if c.token == "" {
		return c.renderLogin()
	}
	if c.created != nil {
		return c.renderCreated()
	}

	text := func(label, placeholder string, value string, target *string) app.UI {
		return app.Label().Class("field").Body(
			app.Span().Text(label),
			app.Input().Type("text").Placeholder(placeholder).Value(value).OnInput(bind(target)),
		)
	}
	color := func(label, value string, target *string) app.UI {
		return app.Label().Class("field").Body(
			app.Span().Text(label),
			app.Input().Type("color").Value(value).OnInput(bind(target)),
		)
	}
	file := func(label, accept string, multiple bool, onLoad func([]client.File)) app.UI {
		return app.Label().Class("field").Body(
			app.Span().Text(label),
			app.Input().Type("file").Accept(accept).Multiple(multiple).
				OnChange(func(ctx app.Context, e app.Event) {
					readFiles(ctx, ctx.JSSrc().Get("files"), onLoad)
				}),
		)
	}

	label := "Create proposal"
	if c.submitting {
		label = "Uploading..."
	}

	return app.Div().Class("creator").Body(
		app.H1().Text("Create a proposal"),
		app.A().Href("/mine").Text("My proposals"),
		app.Form().OnSubmit(c.submit).Body(
			text("Partner name", "Ana", c.partnerName, &c.partnerName),
			color("Nebula color", c.nebulaColor, &c.nebulaColor),
			color("Star color", c.starColor, &c.starColor),
			app.Label().Class("field").Body(
				app.Span().Text("Your question"),
				app.Textarea().Placeholder(proposal.DefaultProposalText).Text(c.proposalText).OnInput(bind(&c.proposalText)),
			),
			text("Music URL", "https://...", c.musicURL, &c.musicURL),
			file("or upload music", "audio/*", false, func(fs []client.File) {
				if len(fs) > 0 {
					c.music = &fs[0]
				}
			}),
			text("Music start (seconds)", "0", c.musicStart, &c.musicStart),
			text("Video URL", "https://youtu.be/...", c.videoURL, &c.videoURL),
			file("or upload video", "video/*", false, func(fs []client.File) {
				if len(fs) > 0 {
					c.video = &fs[0]
				}
			}),

			app.H2().Text("Memories"),
			app.Range(c.rows).Slice(func(i int) app.UI {
				return c.renderRow(i)
			}),
			app.Button().Type("button").Class("add-row").Text("Add memory").
				OnClick(func(ctx app.Context, e app.Event) {
					c.rows = append(c.rows, memoryRow{})
				}),

			file("Gallery photos", "image/*", true, func(fs []client.File) {
				c.gallery = fs
			}),
			app.If(len(c.gallery) > 0, func() app.UI {
				return app.P().Class("hint").Text(fmt.Sprintf("%d gallery photos selected", len(c.gallery)))
			}),

			app.If(c.err != "", func() app.UI {
				return app.P().Class("entry-error").Text(c.err)
			}),
			app.Button().Type("submit").Class("entry-submit").Disabled(c.submitting).Text(label),
		),
	)
}

func (c *Creator) renderRow(i int) app.UI {
	row := c.rows[i]
	status := "No photo yet"
	if row.image != nil {
		status = row.image.Name
	}
	return app.Div().Class("memory-row").Body(
		app.Span().Class("memory-index").Text(strconv.Itoa(i+1)),
		app.Input().Type("text").Placeholder("What happened here?").Value(row.caption).
			OnInput(func(ctx app.Context, e app.Event) {
				c.rows[i].caption = ctx.JSSrc().Get("value").String()
			}),
		app.Input().Type("file").Accept("image/*").
			OnChange(func(ctx app.Context, e app.Event) {
				readFiles(ctx, ctx.JSSrc().Get("files"), func(fs []client.File) {
					if len(fs) > 0 && i < len(c.rows) {
						c.rows[i].image = &fs[0]
					}
				})
			}),
		app.Span().Class("hint").Text(status),
		app.If(len(c.rows) > proposal.MinMemories, func() app.UI {
			return app.Button().Type("button").Class("remove-row").Text("Remove").
				OnClick(func(ctx app.Context, e app.Event) {
					c.rows = append(c.rows[:i], c.rows[i+1:]...)
				})
		}),
	)
}

func (c *Creator) renderLogin() app.UI {
	return app.Div().Class("creator").Body(
		app.H1().Text("Creator login"),
		app.P().Text("Paste the token from your account to start creating."),
		app.Input().Type("password").Placeholder("Bearer token").Value(c.tokenDraft).OnInput(bind(&c.tokenDraft)),
		app.Button().Class("entry-submit").Text("Continue").OnClick(c.login),
		app.Button().Class("dev-login").Text("Developer login").OnClick(c.devLogin),
		app.If(c.err != "", func() app.UI {
			return app.P().Class("entry-error").Text(c.err)
		}),
	)
}

func (c *Creator) renderCreated() app.UI {
	p := c.created
	return app.Div().Class("creator created").Body(
		app.H1().Text("Your proposal is ready"),
		app.P().Text("Share this token with " + p.PartnerName + ":"),
		app.Div().Class("token-display").Text(p.Token),
		app.Button().Class("entry-submit").Text("Copy token").
			OnClick(func(ctx app.Context, e app.Event) { copyToClipboard(p.Token) }),
		app.A().Href("/mine").Text("See all my proposals"),
		app.Button().Class("dev-login").Text("Create another").
			OnClick(func(ctx app.Context, e app.Event) {
				c.created = nil
				c.rows = make([]memoryRow, proposal.MinMemories)
				c.gallery, c.music, c.video = nil, nil, nil
			}),
	)
}
