//go:build js && wasm

// Command web is the browser chat shell, compiled with GOOS=js GOARCH=wasm.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"syscall/js"

	"github.com/anubhav-ai/assistant/internal/format"
	"github.com/anubhav-ai/assistant/internal/host/browser"
	"github.com/anubhav-ai/assistant/internal/model/chat"
	"github.com/anubhav-ai/assistant/internal/model/persona"
	chatsvc "github.com/anubhav-ai/assistant/internal/service/chat"
	"github.com/anubhav-ai/assistant/internal/service/proxy"
	"github.com/anubhav-ai/assistant/internal/service/speech"
)

var document = js.Global().Get("document")

type app struct {
	persona  persona.Persona
	session  *chatsvc.Session
	draft    *chatsvc.Draft
	speaker  *speech.Speaker
	selector *speech.Selector
	listener *speech.Listener
	profile  int

	log     js.Value
	input   js.Value
	send    js.Value
	mic     js.Value
	voices  js.Value
	funcs   []js.Func
	bubbles []js.Func
	current chat.State
}

func main() {
	location := js.Global().Get("location")
	p := selectPersona(location.Get("search").String())

	client := proxy.NewClient(location.Get("origin").String(), proxy.WithPersona(p))
	a := &app{
		persona:  p,
		session:  chatsvc.New(client, chatsvc.WithGreeting(p.Greeting)),
		draft:    &chatsvc.Draft{},
		selector: speech.NewSelector(),
	}

	var synth speech.Synthesizer
	if s, ok := browser.NewSynthesizer(); ok {
		synth = s
		a.selector.LoadVoices(s.Voices())
		s.OnVoicesChanged(func() {
			a.selector.LoadVoices(s.Voices())
			a.renderVoices()
		})
	}
	a.speaker = speech.NewSpeaker(synth, a.selector, slog.Default())

	var recognizer speech.Recognizer
	if r, ok := browser.NewRecognizer(); ok {
		recognizer = r
	}
	a.listener = speech.NewListener(recognizer, browser.Alert{}, a.draft, a.session, speech.Replace, slog.Default())

	a.mount()
	a.session.OnChange(func(s chat.State) {
		a.current = s
		a.render()
	})
	a.speaker.OnChange(func(speech.PlaybackState) { a.render() })
	a.current = a.session.Snapshot()
	a.render()

	select {}
}

// selectPersona honours ?persona=<id>, defaulting to the first seeded persona.
func selectPersona(search string) persona.Persona {
	store := persona.NewMemoryStore(persona.Seed())
	if q, err := url.ParseQuery(trimQuery(search)); err == nil {
		if p, ok := store.FindByID(q.Get("persona")); ok {
			return p
		}
	}
	return persona.Seed()[0]
}

func trimQuery(search string) string {
	if len(search) > 0 && search[0] == '?' {
		return search[1:]
	}
	return search
}

func (a *app) mount() {
	root := el("div", "chat chat--"+string(a.persona.Density))
	header := el("header", "chat__header")
	header.Call("appendChild", text("h1", "", a.persona.Name))
	header.Call("appendChild", text("p", "chat__tagline", a.persona.Tagline))
	a.voices = el("select", "chat__voices")
	header.Call("appendChild", a.voices)
	root.Call("appendChild", header)

	a.log = el("main", "chat__log")
	root.Call("appendChild", a.log)

	form := el("form", "chat__input")
	a.input = el("input", "")
	a.input.Set("placeholder", "Type your message...")
	a.mic = text("button", "chat__mic", "🎤")
	a.mic.Set("type", "button")
	a.send = text("button", "chat__send", "Send")
	a.send.Set("type", "submit")
	form.Call("appendChild", a.input)
	form.Call("appendChild", a.mic)
	form.Call("appendChild", a.send)
	root.Call("appendChild", form)
	document.Get("body").Call("appendChild", root)

	a.on(&a.funcs, a.input, "input", func(js.Value) { a.draft.Set(a.input.Get("value").String()) })
	a.on(&a.funcs, form, "submit", func(ev js.Value) {
		ev.Call("preventDefault")
		if a.session.Snapshot().IsLoading {
			return
		}
		msg := a.draft.Take()
		a.input.Set("value", "")
		go a.session.Send(context.Background(), msg)
	})
	a.on(&a.funcs, a.mic, "click", func(js.Value) {
		if err := a.listener.StartListening(); err != nil {
			slog.Warn("listening unavailable", "error", err)
		}
	})
	a.on(&a.funcs, a.voices, "change", func(js.Value) {
		if i, err := strconv.Atoi(a.voices.Get("value").String()); err == nil {
			a.profile = i
		}
	})
	a.renderVoices()
}

func (a *app) render() {
	for _, f := range a.bubbles {
		f.Release()
	}
	a.bubbles = a.bubbles[:0]
	a.log.Set("innerHTML", "")
	playing := a.speaker.State().MessageID
	for _, m := range a.current.Messages {
		a.log.Call("appendChild", a.bubble(m, playing == m.ID))
	}
	if a.current.IsLoading {
		a.log.Call("appendChild", text("div", "chat__typing", "…"))
	}
	a.log.Set("scrollTop", a.log.Get("scrollHeight"))

	a.send.Set("disabled", a.current.IsLoading)
	a.mic.Set("disabled", a.current.IsListening || !a.listener.Available())
	if v := a.draft.Text(); v != a.input.Get("value").String() {
		a.input.Set("value", v)
	}
}

func (a *app) bubble(m chat.Message, playing bool) js.Value {
	class := "bubble bubble--assistant"
	if m.IsUser() {
		class = "bubble bubble--user"
	}
	b := el("div", class)
	for _, p := range format.Format(m.Text) {
		para := el("div", "bubble__paragraph")
		if p.Spaced {
			para.Get("classList").Call("add", "bubble__paragraph--spaced")
		}
		for _, line := range p.Lines {
			ln := el("div", "bubble__line")
			if line.Bullet {
				ln.Call("appendChild", text("span", "bubble__bullet", "•"))
			}
			for _, seg := range line.Segments {
				tag := "span"
				if seg.Kind == format.Bold {
					tag = "strong"
				}
				ln.Call("appendChild", text(tag, "", seg.Text))
			}
			para.Call("appendChild", ln)
		}
		b.Call("appendChild", para)
	}

	footer := el("div", "bubble__meta")
	footer.Call("appendChild", text("span", "", format.Clock(m.Timestamp)))
	if !m.IsUser() && a.speaker.Available() {
		label := "🔊"
		if playing {
			label = "⏹"
		}
		btn := text("button", "bubble__speak", label)
		id, body := m.ID, m.Text
		a.on(&a.bubbles, btn, "click", func(js.Value) {
			if err := a.speaker.Speak(id, body, a.profile); err != nil {
				slog.Warn("speak failed", "error", err)
			}
		})
		footer.Call("appendChild", btn)
	}
	b.Call("appendChild", footer)
	return b
}

func (a *app) renderVoices() {
	a.voices.Set("innerHTML", "")
	for i, p := range a.selector.Profiles() {
		opt := text("option", "", p.Label)
		opt.Set("value", strconv.Itoa(i))
		opt.Set("selected", i == a.profile)
		a.voices.Call("appendChild", opt)
	}
	a.voices.Set("disabled", !a.speaker.Available())
}

// on binds a handler and records it in funcs for later release.
func (a *app) on(funcs *[]js.Func, target js.Value, event string, fn func(ev js.Value)) {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) > 0 {
			fn(args[0])
		} else {
			fn(js.Undefined())
		}
		return nil
	})
	*funcs = append(*funcs, f)
	target.Call("addEventListener", event, f)
}

func el(tag, class string) js.Value {
	e := document.Call("createElement", tag)
	if class != "" {
		e.Set("className", class)
	}
	return e
}

func text(tag, class, content string) js.Value {
	e := el(tag, class)
	e.Set("textContent", content)
	return e
}
