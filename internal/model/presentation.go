package model

import (
	"encoding/json"
	"time"
)

// Presentation is the root aggregate persisted by the storage layer.
// This is a pure domain model with no database-specific dependencies or tags.
// Slides are ordered; the order is the presentation order.
type Presentation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slides    []Slide   `json:"slides"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
	UpdatedBy string    `json:"updated_by,omitempty"`

	// RestoredFrom holds the version id the current state was restored from,
	// empty when the live state was produced by ordinary writes.
	RestoredFrom string `json:"restored_from,omitempty"`

	// Metadata carries derived bookkeeping (e.g. slide_count) alongside
	// caller-provided values. Opaque to the storage layer.
	Metadata           map[string]any `json:"metadata,omitempty"`
	DerivativeElements map[string]any `json:"derivative_elements,omitempty"`
	ThemeConfig        map[string]any `json:"theme_config,omitempty"`
}

// Slide is one ordered entry of a presentation. SlideID is a stable
// identifier distinct from the positional index; overlay elements reference
// it via ParentSlideID. Layout and Content are opaque to the storage layer.
type Slide struct {
	SlideID string         `json:"slide_id"`
	Layout  string         `json:"layout"`
	Content map[string]any `json:"content,omitempty"`

	TextBoxes     []Element `json:"text_boxes,omitempty"`
	Images        []Element `json:"images,omitempty"`
	Charts        []Element `json:"charts,omitempty"`
	Diagrams      []Element `json:"diagrams,omitempty"`
	Infographics  []Element `json:"infographics,omitempty"`
	ContentBlocks []Element `json:"content_blocks,omitempty"`
}

// ElementCollections returns pointers to every overlay collection of the
// slide so callers can process them uniformly.
func (s *Slide) ElementCollections() []*[]Element {
	return []*[]Element{
		&s.TextBoxes,
		&s.Images,
		&s.Charts,
		&s.Diagrams,
		&s.Infographics,
		&s.ContentBlocks,
	}
}

// Element is a positioned overlay object on a slide. ParentSlideID is an
// ownership reference to the owning slide's SlideID; legacy elements instead
// encode a 1-based slide position in their ID (`slide-<n>-...`).
type Element struct {
	ID            string         `json:"id"`
	ParentSlideID string         `json:"parent_slide_id,omitempty"`
	Position      Position       `json:"position"`
	ZIndex        int            `json:"z_index"`
	Style         map[string]any `json:"style,omitempty"`
	Content       map[string]any `json:"content,omitempty"`
}

// Position is the placement box of an element, in slide coordinates.
type Position struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PresentationPatch is a typed partial update. A nil field leaves the
// corresponding presentation field untouched; a set field wholly replaces it
// (top-level overwrite, never a deep merge — a provided Slides array replaces
// the previous one).
type PresentationPatch struct {
	Title              *string         `json:"title,omitempty"`
	Slides             *[]Slide        `json:"slides,omitempty"`
	Metadata           *map[string]any `json:"metadata,omitempty"`
	DerivativeElements *map[string]any `json:"derivative_elements,omitempty"`
	ThemeConfig        *map[string]any `json:"theme_config,omitempty"`
}

// Clone returns a deep copy via a JSON round trip. Used to isolate cached
// documents from caller mutation.
func (p *Presentation) Clone() (*Presentation, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var out Presentation
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
