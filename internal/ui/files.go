package ui

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/kidandcat/heartquest/internal/client"
)

// readFiles loads every file of a FileList and hands them to done on the
// UI goroutine, in list order.
func readFiles(ctx app.Context, list app.Value, done func([]client.File)) {
	n := 0
	if list.Truthy() {
		n = list.Length()
	}
	if n == 0 {
		done(nil)
		return
	}

	out := make([]client.File, n)
	remaining := n
	for i := 0; i < n; i++ {
		f := list.Index(i)
		name := f.Get("name").String()
		var then app.Func
		then = app.FuncOf(func(this app.Value, args []app.Value) any {
			defer then.Release()
			arr := app.Window().Get("Uint8Array").New(args[0])
			data := make([]byte, arr.Length())
			app.CopyBytesToGo(data, arr)
			ctx.Dispatch(func(ctx app.Context) {
				out[i] = client.File{Name: name, Data: data}
				if remaining--; remaining == 0 {
					done(out)
				}
			})
			return nil
		})
		f.Call("arrayBuffer").Call("then", then)
	}
}

func copyToClipboard(text string) {
	clip := app.Window().Get("navigator").Get("clipboard")
	if clip.Truthy() {
		clip.Call("writeText", text)
	}
}

// creatorToken restores the saved creator token into the client.
func creatorToken(ctx app.Context) string {
	var token string
	if err := ctx.LocalStorage().Get(creatorTokenKey, &token); err != nil {
		app.Log("read creator token:", err)
	}
	if token != "" {
		env.Client.SetToken(token)
	}
	return token
}

func saveCreatorToken(ctx app.Context, token string) {
	env.Client.SetToken(token)
	if err := ctx.LocalStorage().Set(creatorTokenKey, token); err != nil {
		app.Log("save creator token:", err)
	}
}
