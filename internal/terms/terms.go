package terms

import (
	"errors"
	"time"

	"github.com/wichananm65/fakturera/internal/language"
)

var ErrNotFound = errors.New("terms not found")

// Terms is the terms-of-service text for one language. Rows are seeded by
// migrations and never written through the API.
type Terms struct {
	LanguageCode language.Code `json:"language_code"`
	Content      string        `json:"content"`
	UpdatedAt    time.Time     `json:"updated_at"`
}
