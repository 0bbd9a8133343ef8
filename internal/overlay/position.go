package overlay

import (
	"context"
	"fmt"
	"strconv"

	"github.com/at-ishikawa/definer/internal/settings"
)

const (
	cornerOffsetPx = 30
	tileGapPx      = 8
)

// Rect is the viewport bounding box of an element plus the page scroll offsets
// at the time it was measured.
type Rect struct {
	Top     float64 `json:"top"`
	Left    float64 `json:"left"`
	Bottom  float64 `json:"bottom"`
	Right   float64 `json:"right"`
	ScrollX float64 `json:"scrollX"`
	ScrollY float64 `json:"scrollY"`
}

// Locator finds the first selected tile on the page.
type Locator interface {
	FirstSelectedRect(ctx context.Context) (Rect, bool, error)
}

// Anchor is where the overlay is placed, in page coordinates.
type Anchor struct {
	Corner bool
	Top    float64
	Left   float64
}

func CornerAnchor() Anchor {
	return Anchor{Corner: true}
}

// BelowRect anchors the overlay under the left edge of rect.
func BelowRect(rect Rect) Anchor {
	return Anchor{
		Top:  rect.ScrollY + rect.Bottom + tileGapPx,
		Left: rect.ScrollX + rect.Left,
	}
}

// Style returns the CSS declarations that place the overlay.
func (anchor Anchor) Style() map[string]string {
	if anchor.Corner {
		return map[string]string{
			"top":   px(cornerOffsetPx),
			"right": px(cornerOffsetPx),
			"left":  "",
		}
	}
	return map[string]string{
		"top":   px(anchor.Top),
		"left":  px(anchor.Left),
		"right": "",
	}
}

func (anchor Anchor) String() string {
	if anchor.Corner {
		return "corner"
	}
	return fmt.Sprintf("(%s, %s)", px(anchor.Top), px(anchor.Left))
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

func (presenter *Presenter) computeAnchor(ctx context.Context) Anchor {
	if presenter.position == settings.PositionTopRight || presenter.locator == nil {
		return CornerAnchor()
	}
	rect, ok, err := presenter.locator.FirstSelectedRect(ctx)
	if err != nil {
		presenter.logger.DebugContext(ctx, "failed to locate the first selected tile", "error", err)
		return CornerAnchor()
	}
	if !ok {
		return CornerAnchor()
	}
	return BelowRect(rect)
}
