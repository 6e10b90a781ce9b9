package speech

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/anubhav-ai/assistant/internal/format"
)

const (
	// Volume is applied to every utterance.
	Volume = 0.8
	// Lang is the synthesis and recognition language.
	Lang = "en-US"
)

// ErrSynthesisUnavailable is returned when the host has no speech output.
var ErrSynthesisUnavailable = errors.New("speech synthesis not supported")

// PlaybackState is idle when MessageID is empty, otherwise speaking(MessageID).
type PlaybackState struct {
	MessageID string
}

// Speaking reports whether an utterance is active.
func (p PlaybackState) Speaking() bool { return p.MessageID != "" }

// Speaker plays at most one utterance at a time.
type Speaker struct {
	synth    Synthesizer
	selector *Selector
	logger   *slog.Logger

	mu         sync.Mutex
	state      PlaybackState
	generation uint64
	observers  []func(PlaybackState)
}

// NewSpeaker returns a speaker. synth may be nil when the host has no
// synthesis engine.
func NewSpeaker(synth Synthesizer, selector *Selector, logger *slog.Logger) *Speaker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Speaker{synth: synth, selector: selector, logger: logger}
}

// Available reports whether speech output can be used.
func (s *Speaker) Available() bool { return s.synth != nil }

// OnChange registers fn to observe playback transitions.
func (s *Speaker) OnChange(fn func(PlaybackState)) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// State returns the current playback state.
func (s *Speaker) State() PlaybackState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Speak reads text aloud with the given profile. Calling it again with the
// id that is currently playing stops playback instead.
func (s *Speaker) Speak(messageID, text string, profile int) error {
	if s.synth == nil {
		return ErrSynthesisUnavailable
	}

	s.mu.Lock()
	if s.state.MessageID == messageID {
		s.generation++
		s.mu.Unlock()
		s.synth.Cancel()
		s.transition(PlaybackState{})
		return nil
	}
	s.mu.Unlock()

	p, ok := s.selector.Profile(profile)
	if !ok {
		return fmt.Errorf("voice profile %d out of range", profile)
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	s.synth.Cancel()
	voice := p.Voice
	if voice == nil {
		voice = s.selector.FallbackVoice()
	}

	u := Utterance{
		Text:   format.PlainText(format.Format(text)),
		Voice:  voice,
		Lang:   Lang,
		Rate:   p.Rate,
		Pitch:  p.Pitch,
		Volume: Volume,
		OnStart: func() {
			s.settle(gen, PlaybackState{MessageID: messageID})
		},
		OnEnd: func() {
			s.settle(gen, PlaybackState{})
		},
		OnError: func(err error) {
			s.logger.Warn("speech synthesis error", "message_id", messageID, "error", err)
			s.settle(gen, PlaybackState{})
		},
	}

	s.transition(PlaybackState{MessageID: messageID})
	if err := s.synth.Speak(u); err != nil {
		s.settle(gen, PlaybackState{})
		return fmt.Errorf("speak: %w", err)
	}
	return nil
}

// Stop cancels any active utterance.
func (s *Speaker) Stop() {
	if s.synth == nil {
		return
	}
	s.mu.Lock()
	s.generation++
	s.mu.Unlock()
	s.synth.Cancel()
	s.transition(PlaybackState{})
}

// settle applies next only if gen is still the latest utterance.
func (s *Speaker) settle(gen uint64, next PlaybackState) {
	s.mu.Lock()
	current := s.generation == gen
	s.mu.Unlock()
	if current {
		s.transition(next)
	}
}

func (s *Speaker) transition(next PlaybackState) {
	s.mu.Lock()
	if s.state == next {
		s.mu.Unlock()
		return
	}
	s.state = next
	observers := append([]func(PlaybackState){}, s.observers...)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(next)
	}
}
