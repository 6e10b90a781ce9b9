// Package speech drives the host's speech synthesis and recognition engines:
// voice profile selection, single-utterance playback and dictation.
package speech

// Voice is a host-provided synthesis voice. Ref is the opaque host handle
// passed back on Speak.
type Voice struct {
	Name    string
	Lang    string
	Default bool
	Ref     any
}

// Utterance is one request to the synthesis engine.
type Utterance struct {
	Text   string
	Voice  *Voice
	Lang   string
	Rate   float64
	Pitch  float64
	Volume float64

	OnStart func()
	OnEnd   func()
	OnError func(error)
}

// Synthesizer is the process-wide speech output engine.
type Synthesizer interface {
	// Voices returns the current catalogue. It may be empty until the host
	// signals that voices changed.
	Voices() []Voice
	Speak(u Utterance) error
	Cancel()
}

// RecognitionConfig configures one recognition session.
type RecognitionConfig struct {
	Lang       string
	Continuous bool
	Interim    bool
}

// RecognitionEvents are invoked by the host, possibly from its event loop.
type RecognitionEvents struct {
	OnStart  func()
	OnResult func(transcript string)
	OnError  func(error)
	OnEnd    func()
}

// Recognizer is the host speech recognition engine.
type Recognizer interface {
	Start(cfg RecognitionConfig, events RecognitionEvents) error
}

// Notifier shows a short message to the user.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }
