package persona

import "strings"

// Density controls how tightly a shell lays out the conversation.
type Density string

const (
	DensityCompact     Density = "compact"
	DensityComfortable Density = "comfortable"
)

// Persona captures the assistant identity a chat shell runs with.
type Persona struct {
	ID          string  `json:"id" toml:"id"`
	Name        string  `json:"name" toml:"name"`
	Tagline     string  `json:"tagline,omitempty" toml:"tagline"`
	Greeting    string  `json:"greeting" toml:"greeting"`
	Preamble    string  `json:"preamble,omitempty" toml:"preamble"`       // 身份与语气说明
	Attribution string  `json:"attribution,omitempty" toml:"attribution"` // 关于作者的回答口径
	Density     Density `json:"density" toml:"density"`
}

// Wrap prefixes the user's text with the persona context. The visible message
// is never changed, only the text sent upstream.
func (p Persona) Wrap(text string) string {
	preamble := strings.TrimSpace(p.Preamble)
	if preamble == "" {
		return text
	}

	var b strings.Builder
	b.WriteString("Context: ")
	b.WriteString(preamble)
	if attribution := strings.TrimSpace(p.Attribution); attribution != "" {
		b.WriteString("\n\n")
		b.WriteString(attribution)
	}
	b.WriteString("\n\nUser message: ")
	b.WriteString(text)
	return b.String()
}

// Seed provides the built-in personas.
func Seed() []Persona {
	return []Persona{
		{
			ID:       "anubhav",
			Name:     "Anubhav AI",
			Tagline:  "Modern AI with Voice Features",
			Greeting: "Hello! I'm Anubhav AI, How can I help you today?",
			Preamble: "You are Anubhav AI, a helpful and knowledgeable AI assistant created by Anubhav, a talented Software Developer from IIT Mandi who loves to create beautiful and amazing websites.\n\n" +
				"You should be helpful, informative, and engaging. Answer all questions to the best of your ability - whether they're about technology, philosophy, science, creativity, or any other topic. " +
				"Don't be overly restrictive or avoid topics unless they're clearly harmful. Be conversational and provide thoughtful, comprehensive responses.",
			Attribution: "When asked about your creator, mention that Anubhav is from IIT Mandi and specializes in creating beautiful web applications.",
			Density:     DensityComfortable,
		},
		{
			ID:       "gemini",
			Name:     "Anubhav AI",
			Tagline:  "Powered by Google Gemini",
			Greeting: "Hello! I'm Anubhav AI, powered by Google's Gemini. How can I help you today?",
			Density:  DensityCompact,
		},
	}
}
