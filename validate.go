package pptx

import (
	"fmt"
	"strings"
)

func validateDeck(deck *Deck, limits Limits) error {
	if deck == nil {
		return fmt.Errorf("%w: deck is nil", ErrValidation)
	}
	if len(deck.Slides) == 0 {
		return fmt.Errorf("%w: deck has no slides", ErrValidation)
	}
	if len(deck.Slides) > limits.MaxSlides {
		return fmt.Errorf("%w: too many slides", ErrLimitExceeded)
	}
	if len(deck.Title) > limits.MaxDeckTitleLen {
		return fmt.Errorf("%w: deck title too long", ErrLimitExceeded)
	}
	for i := range deck.Slides {
		s := &deck.Slides[i]
		if s.Number != i+1 {
			return fmt.Errorf("%w: slide %d has number %d, numbers must be contiguous from 1", ErrValidation, i+1, s.Number)
		}
		if len(s.Title) > limits.MaxTitleLen {
			return fmt.Errorf("%w: slide %d title too long", ErrLimitExceeded, s.Number)
		}
		if len(s.Body) > limits.MaxBodyLen {
			return fmt.Errorf("%w: slide %d body too long", ErrLimitExceeded, s.Number)
		}
		if s.Image != nil && s.Image.Source == nil {
			return fmt.Errorf("%w: slide %d image has no source", ErrValidation, s.Number)
		}
		if err := validateDesign(s.Design); err != nil {
			return fmt.Errorf("slide %d: %w", s.Number, err)
		}
	}
	return nil
}

func validateDesign(d DesignSpec) error {
	if _, err := normalizeHexColor(d.BackgroundColor); err != nil {
		return fmt.Errorf("%w: background color: %v", ErrValidation, err)
	}
	if _, err := normalizeHexColor(d.TextColor); err != nil {
		return fmt.Errorf("%w: text color: %v", ErrValidation, err)
	}
	if _, ok := tierSizes[d.FontSize]; !ok {
		return fmt.Errorf("%w: unknown font size tier %d", ErrValidation, d.FontSize)
	}
	if d.Bullet != BulletNone {
		if _, ok := bulletGlyphs[d.Bullet]; !ok {
			return fmt.Errorf("%w: unknown bullet style %d", ErrValidation, d.Bullet)
		}
	}
	switch d.ImagePos {
	case ImageRight, ImageLeft, ImageTop, ImageBottom, ImageCenter:
	default:
		return fmt.Errorf("%w: unknown image position %d", ErrValidation, d.ImagePos)
	}
	return nil
}

// normalizeHexColor validates a 6-hex-digit color, with or without a leading
// '#', and returns it uppercased without the prefix.
func normalizeHexColor(s string) (string, error) {
	c := strings.TrimPrefix(s, "#")
	if len(c) != 6 {
		return "", fmt.Errorf("%q is not a 6-digit hex color", s)
	}
	for _, r := range c {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return "", fmt.Errorf("%q is not a 6-digit hex color", s)
		}
	}
	return strings.ToUpper(c), nil
}
