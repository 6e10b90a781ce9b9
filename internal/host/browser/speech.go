//go:build js && wasm

// Package browser adapts the Web Speech APIs to the speech package.
package browser

import (
	"errors"
	"fmt"
	"syscall/js"

	"github.com/anubhav-ai/assistant/internal/service/speech"
)

// Synthesizer wraps window.speechSynthesis.
type Synthesizer struct {
	engine  js.Value
	changed js.Func
}

// NewSynthesizer returns nil, false when the page has no speech synthesis.
func NewSynthesizer() (*Synthesizer, bool) {
	engine := js.Global().Get("speechSynthesis")
	if engine.IsUndefined() || engine.IsNull() {
		return nil, false
	}
	return &Synthesizer{engine: engine}, true
}

// Voices reads the current catalogue.
func (s *Synthesizer) Voices() []speech.Voice {
	list := s.engine.Call("getVoices")
	voices := make([]speech.Voice, 0, list.Length())
	for i := 0; i < list.Length(); i++ {
		v := list.Index(i)
		voices = append(voices, speech.Voice{
			Name:    v.Get("name").String(),
			Lang:    v.Get("lang").String(),
			Default: v.Get("default").Truthy(),
			Ref:     v,
		})
	}
	return voices
}

// OnVoicesChanged installs fn as the voiceschanged handler.
func (s *Synthesizer) OnVoicesChanged(fn func()) {
	if s.changed.Truthy() {
		s.changed.Release()
	}
	s.changed = js.FuncOf(func(js.Value, []js.Value) any {
		fn()
		return nil
	})
	s.engine.Set("onvoiceschanged", s.changed)
}

// Speak queues u on the engine.
func (s *Synthesizer) Speak(u speech.Utterance) (err error) {
	defer recoverJS(&err)

	utt := js.Global().Get("SpeechSynthesisUtterance").New(u.Text)
	utt.Set("rate", u.Rate)
	utt.Set("pitch", u.Pitch)
	utt.Set("volume", u.Volume)
	utt.Set("lang", u.Lang)
	if u.Voice != nil {
		if ref, ok := u.Voice.Ref.(js.Value); ok {
			utt.Set("voice", ref)
		}
	}

	var onStart, onEnd, onError js.Func
	release := func() {
		onStart.Release()
		onEnd.Release()
		onError.Release()
	}
	onStart = js.FuncOf(func(js.Value, []js.Value) any {
		if u.OnStart != nil {
			u.OnStart()
		}
		return nil
	})
	onEnd = js.FuncOf(func(js.Value, []js.Value) any {
		if u.OnEnd != nil {
			u.OnEnd()
		}
		release()
		return nil
	})
	onError = js.FuncOf(func(_ js.Value, args []js.Value) any {
		if u.OnError != nil {
			u.OnError(eventError(args))
		}
		release()
		return nil
	})
	utt.Set("onstart", onStart)
	utt.Set("onend", onEnd)
	utt.Set("onerror", onError)

	s.engine.Call("speak", utt)
	return nil
}

// Cancel stops and drops every queued utterance.
func (s *Synthesizer) Cancel() {
	s.engine.Call("cancel")
}

// Recognizer wraps SpeechRecognition, falling back to the webkit prefix.
type Recognizer struct {
	ctor js.Value
}

// NewRecognizer returns nil, false when the page has no speech recognition.
func NewRecognizer() (*Recognizer, bool) {
	for _, name := range []string{"webkitSpeechRecognition", "SpeechRecognition"} {
		ctor := js.Global().Get(name)
		if ctor.Truthy() {
			return &Recognizer{ctor: ctor}, true
		}
	}
	return nil, false
}

// Start opens one recognition session.
func (r *Recognizer) Start(cfg speech.RecognitionConfig, events speech.RecognitionEvents) (err error) {
	defer recoverJS(&err)

	rec := r.ctor.New()
	rec.Set("continuous", cfg.Continuous)
	rec.Set("interimResults", cfg.Interim)
	rec.Set("lang", cfg.Lang)

	var funcs []js.Func
	bind := func(event string, fn func(args []js.Value)) {
		f := js.FuncOf(func(_ js.Value, args []js.Value) any {
			fn(args)
			return nil
		})
		funcs = append(funcs, f)
		rec.Set(event, f)
	}

	bind("onstart", func([]js.Value) {
		if events.OnStart != nil {
			events.OnStart()
		}
	})
	bind("onresult", func(args []js.Value) {
		if events.OnResult == nil || len(args) == 0 {
			return
		}
		results := args[0].Get("results")
		if results.Length() == 0 || results.Index(0).Length() == 0 {
			return
		}
		events.OnResult(results.Index(0).Index(0).Get("transcript").String())
	})
	bind("onerror", func(args []js.Value) {
		if events.OnError != nil {
			events.OnError(eventError(args))
		}
	})
	bind("onend", func([]js.Value) {
		if events.OnEnd != nil {
			events.OnEnd()
		}
		for _, f := range funcs {
			f.Release()
		}
	})

	rec.Call("start")
	return nil
}

// Alert shows notices with window.alert.
type Alert struct{}

func (Alert) Notify(message string) {
	js.Global().Call("alert", message)
}

func eventError(args []js.Value) error {
	if len(args) > 0 {
		if code := args[0].Get("error"); code.Type() == js.TypeString {
			return errors.New(code.String())
		}
	}
	return errors.New("speech event error")
}

func recoverJS(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("browser speech: %v", r)
	}
}
