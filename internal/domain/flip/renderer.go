package flip

import (
	"strings"

	"github.com/rivo/uniseg"

	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/entity"
)

// DefaultMaxTextLength caps command text, in user-perceived characters.
const DefaultMaxTextLength = 4000

// Renderer turns a validated command into a table flip.
// It holds no mutable state and is safe for concurrent use.
type Renderer struct {
	maxTextLength int
}

// NewRenderer creates a renderer. A non-positive limit falls back to DefaultMaxTextLength.
func NewRenderer(maxTextLength int) *Renderer {
	if maxTextLength <= 0 {
		maxTextLength = DefaultMaxTextLength
	}
	return &Renderer{maxTextLength: maxTextLength}
}

// MaxTextLength returns the configured text limit.
func (r *Renderer) MaxTextLength() int {
	return r.maxTextLength
}

// Render selects style art or flips the command text.
//
//   - a leading word naming a style (any case) renders that style, ignoring the rest
//   - empty text renders the classic style
//   - anything else is flipped upside down behind the ornament
func (r *Renderer) Render(cmd entity.ValidCommand) (*entity.RenderedResponse, error) {
	text := cmd.Text()

	if n := uniseg.GraphemeClusterCount(text); n > r.maxTextLength {
		return nil, &entity.PayloadTooLargeError{Length: n, Limit: r.maxTextLength}
	}

	if art, ok := LookupStyle(cmd.Command().FirstWord()); ok {
		return inChannel(art), nil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		art, _ := LookupStyle(DefaultStyle)
		return inChannel(art), nil
	}

	return inChannel(FlipText(text)), nil
}

// FlipText flips text upside down and frames it with the ornament.
func FlipText(text string) string {
	flipped := UpsideDown(text)
	if flipped == "" {
		return Ornament
	}
	return Ornament + " " + flipped
}

// UpsideDown substitutes every grapheme cluster through the flip table and
// reverses the result, so the text reads correctly when rotated.
func UpsideDown(text string) string {
	units := make([]string, 0, len(text))

	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		units = append(units, FlipChar(gr.Str()))
	}

	var b strings.Builder
	b.Grow(len(text))
	for i := len(units) - 1; i >= 0; i-- {
		b.WriteString(units[i])
	}
	return b.String()
}

func inChannel(text string) *entity.RenderedResponse {
	return &entity.RenderedResponse{
		Text:       text,
		Visibility: entity.VisibilityInChannel,
	}
}
