package speech

import (
	"strings"
	"sync"
)

// Gender is the heuristic classification of a voice name.
type Gender string

const (
	Female  Gender = "female"
	Male    Gender = "male"
	Unknown Gender = "unknown"
)

// genderRule matches a lower-cased voice name by substring.
type genderRule struct {
	gender  Gender
	markers []string
}

// genderTable is evaluated top to bottom; the first rule with a matching
// marker wins. Names matching nothing fall back to Female.
var genderTable = []genderRule{
	{Female, []string{
		"female", "woman", "samantha", "victoria", "karen", "susan", "zira", "hazel",
		"kate", "anna", "emma", "sarah", "lisa", "mary", "helen", "fiona", "moira",
		"tessa", "veena", "aria", "nora", "ava", "allison",
	}},
	{Male, []string{"male", "man", "daniel", "alex", "david", "mark"}},
	{Unknown, []string{"tom", "james", "fred", "jorge"}},
}

// Classify returns the gender bucket of a voice name.
func Classify(name string) Gender {
	lower := strings.ToLower(name)
	for _, rule := range genderTable {
		for _, marker := range rule.markers {
			if strings.Contains(lower, marker) {
				return rule.gender
			}
		}
	}
	return Female
}

// Profile is one of the selectable output voices.
type Profile struct {
	Label  string
	Gender Gender
	Voice  *Voice // nil until a host voice is bound
	Pitch  float64
	Rate   float64
}

type slot struct {
	label  string
	gender Gender
	pitch  float64
	rate   float64
}

var slots = [...]slot{
	{"Voice Female 1", Female, 1.0, 0.9},
	{"Voice Female 2", Female, 1.1, 0.85},
	{"Voice Male 1", Male, 0.9, 0.9},
}

// Selector binds the fixed profile slots to host voices.
type Selector struct {
	mu       sync.RWMutex
	english  []Voice
	profiles []Profile
}

// NewSelector returns a selector with unbound profiles.
func NewSelector() *Selector {
	s := &Selector{}
	s.LoadVoices(nil)
	return s
}

// LoadVoices rebinds every profile from voices. Call it again whenever the
// host reports a changed catalogue.
func (s *Selector) LoadVoices(voices []Voice) {
	var english, females, males []Voice
	for _, v := range voices {
		if !strings.HasPrefix(v.Lang, "en") {
			continue
		}
		english = append(english, v)
		switch Classify(v.Name) {
		case Female:
			females = append(females, v)
		case Male:
			males = append(males, v)
		}
	}

	f1, f1Named := pick(females, 0, english, 0)
	f2, f2Named := pick(females, 1, english, 1)
	if f2Named == nil && len(females) > 0 {
		f2, f2Named = &females[0], &females[0]
	}
	m1, m1Named := pick(males, 0, english, 2)

	bound := [...]struct{ voice, named *Voice }{{f1, f1Named}, {f2, f2Named}, {m1, m1Named}}
	profiles := make([]Profile, len(slots))
	for i, sl := range slots {
		label := sl.label
		if named := bound[i].named; named != nil {
			label += " (" + firstWord(named.Name) + ")"
		}
		profiles[i] = Profile{
			Label:  label,
			Gender: sl.gender,
			Voice:  bound[i].voice,
			Pitch:  sl.pitch,
			Rate:   sl.rate,
		}
	}

	s.mu.Lock()
	s.english = english
	s.profiles = profiles
	s.mu.Unlock()
}

// pick prefers matches[i] and falls back to english[j]. named is set only
// when the voice came from the gendered list, which is what labels show.
func pick(matches []Voice, i int, english []Voice, j int) (voice, named *Voice) {
	if i < len(matches) {
		return &matches[i], &matches[i]
	}
	if j < len(english) {
		return &english[j], nil
	}
	return nil, nil
}

func firstWord(name string) string {
	if i := strings.IndexByte(name, ' '); i >= 0 {
		return name[:i]
	}
	return name
}

// Profiles returns a copy of the current bindings.
func (s *Selector) Profiles() []Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Profile, len(s.profiles))
	copy(out, s.profiles)
	return out
}

// Profile returns profile i.
func (s *Selector) Profile(i int) (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.profiles) {
		return Profile{}, false
	}
	return s.profiles[i], true
}

// FallbackVoice is the first English voice, or nil when there is none.
func (s *Selector) FallbackVoice() *Voice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.english) == 0 {
		return nil
	}
	v := s.english[0]
	return &v
}
