// Package locale holds the client's selected language and the static UI
// strings for each language.
package locale

import (
	"sync"

	"github.com/wichananm65/fakturera/internal/language"
)

type Language struct {
	Code language.Code
	Name string
	Flag string
}

var languages = []Language{
	{Code: language.SV, Name: "Svenska", Flag: "https://storage.123fakturere.no/public/flags/SE.png"},
	{Code: language.EN, Name: "English", Flag: "https://storage.123fakturere.no/public/flags/GB.png"},
}

// Languages lists the selectable languages in menu order.
func Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// Lookup finds a language by code.
func Lookup(code language.Code) (Language, bool) {
	for _, l := range languages {
		if l.Code == code {
			return l, true
		}
	}
	return Language{}, false
}

// State is the current language selection.
type State struct {
	mu      sync.RWMutex
	current language.Code
}

func NewState() *State {
	return &State{current: language.Default}
}

func (s *State) Current() Language {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, _ := Lookup(s.current)
	return l
}

func (s *State) Code() language.Code {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Select switches to the language with the given code. Unknown codes are
// rejected and the selection is kept.
func (s *State) Select(raw string) error {
	code, err := language.Parse(raw)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.current = code
	s.mu.Unlock()
	return nil
}

// T returns the UI string for key in the current language, falling back to
// English and then to the key itself.
func (s *State) T(key string) string {
	return Translate(s.Code(), key)
}

func Translate(code language.Code, key string) string {
	if v, ok := catalog[code][key]; ok {
		return v
	}
	if v, ok := catalog[language.EN][key]; ok {
		return v
	}
	return key
}
