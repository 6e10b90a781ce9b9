package chat

import (
	"strings"
	"sync"
)

// Draft is the text the user is composing, fed by typing and by dictation.
type Draft struct {
	mu   sync.Mutex
	text string
}

// Set replaces the draft.
func (d *Draft) Set(text string) {
	d.mu.Lock()
	d.text = text
	d.mu.Unlock()
}

// Append adds a dictated fragment, separated from existing text by one space.
func (d *Draft) Append(fragment string) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if strings.TrimSpace(d.text) == "" {
		d.text = fragment
		return
	}
	d.text = strings.TrimRight(d.text, " ") + " " + fragment
}

// Text returns the draft without clearing it.
func (d *Draft) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text
}

// Take returns the draft and clears it.
func (d *Draft) Take() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	text := d.text
	d.text = ""
	return text
}
