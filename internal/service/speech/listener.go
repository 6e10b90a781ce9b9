package speech

import (
	"errors"
	"log/slog"
)

// User-facing notices.
const (
	NoticeRecognitionUnsupported = "Speech recognition not supported in this browser"
	NoticeRecognitionFailed      = "Speech recognition error. Please try again."
)

// ErrRecognitionUnavailable is returned when the host has no speech input.
var ErrRecognitionUnavailable = errors.New("speech recognition not supported")

// DraftMode decides how a transcript lands in the draft.
type DraftMode int

const (
	// Replace overwrites the draft with the transcript.
	Replace DraftMode = iota
	// Append adds the transcript after what is already typed.
	Append
)

// Draft receives recognised text.
type Draft interface {
	Set(text string)
	Append(text string)
}

// ListeningSink tracks whether capture is active.
type ListeningSink interface {
	SetListening(on bool)
}

// Listener runs single-utterance dictation into a draft.
type Listener struct {
	recognizer Recognizer
	notifier   Notifier
	draft      Draft
	sink       ListeningSink
	mode       DraftMode
	logger     *slog.Logger
}

// NewListener returns a listener. recognizer may be nil when the host has no
// recognition engine.
func NewListener(recognizer Recognizer, notifier Notifier, draft Draft, sink ListeningSink, mode DraftMode, logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{
		recognizer: recognizer,
		notifier:   notifier,
		draft:      draft,
		sink:       sink,
		mode:       mode,
		logger:     logger,
	}
}

// Available reports whether speech input can be used.
func (l *Listener) Available() bool { return l.recognizer != nil }

// StartListening begins one recognition session. Callers keep the trigger
// disabled while listening.
func (l *Listener) StartListening() error {
	if l.recognizer == nil {
		l.notify(NoticeRecognitionUnsupported)
		return ErrRecognitionUnavailable
	}

	cfg := RecognitionConfig{Lang: Lang, Continuous: false, Interim: false}
	events := RecognitionEvents{
		OnStart: func() { l.sink.SetListening(true) },
		OnEnd:   func() { l.sink.SetListening(false) },
		OnResult: func(transcript string) {
			if l.mode == Append {
				l.draft.Append(transcript)
				return
			}
			l.draft.Set(transcript)
		},
		OnError: func(err error) {
			l.logger.Warn("speech recognition error", "error", err)
			l.sink.SetListening(false)
			l.notify(NoticeRecognitionFailed)
		},
	}

	if err := l.recognizer.Start(cfg, events); err != nil {
		l.logger.Warn("speech recognition failed to start", "error", err)
		l.notify(NoticeRecognitionFailed)
		return err
	}
	return nil
}

func (l *Listener) notify(message string) {
	if l.notifier != nil {
		l.notifier.Notify(message)
	}
}
