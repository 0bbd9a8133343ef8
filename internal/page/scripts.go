package page

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/at-ishikawa/definer/internal/overlay"
	"github.com/at-ishikawa/definer/internal/pipeline"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// bindingName is the function the page calls to report events back to us.
const bindingName = "definerEvent"

const styleElementID = "definer-style"

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	quoted, _ := json.Marshal(s)
	return string(quoted)
}

func jsValue(v any) (string, error) {
	encoded, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("json.Marshal > %w", err)
	}
	return string(encoded), nil
}

func stylesheetScript(css string) string {
	return fmt.Sprintf(`(() => {
  if (document.getElementById(%[1]s)) return;
  const style = document.createElement("style");
  style.id = %[1]s;
  style.textContent = %[2]s;
  (document.head || document.documentElement).appendChild(style);
})()`, jsString(styleElementID), jsString(css))
}

// observerScript watches the game container, or the whole body when the container
// cannot be found, and forwards mutations, clicks and overlay controls to the binding.
// It only attaches once per document.
func observerScript(containerClassPattern string) string {
	return fmt.Sprintf(`(() => {
  if (window.__definerAttached) return;
  window.__definerAttached = true;
  const send = (kind, index) => {
    try {
      window[%[1]s](JSON.stringify({kind: kind, index: Number.isInteger(index) ? index : -1}));
    } catch (e) {}
  };
  const attach = () => {
    const root = document.querySelector(%[2]s) || document.body;
    new MutationObserver(() => send(%[4]s)).observe(root, {subtree: true, childList: true, attributes: true});
    document.addEventListener("click", (event) => {
      const control = event.target instanceof Element ? event.target.closest("[data-definer-action]") : null;
      if (control && control.closest("#" + %[3]s)) {
        event.preventDefault();
        event.stopPropagation();
        send(control.dataset.definerAction, Number.parseInt(control.dataset.definerCard, 10));
        return;
      }
      send(%[5]s);
    }, true);
  };
  if (document.readyState === "loading") {
    document.addEventListener("DOMContentLoaded", attach);
  } else {
    attach();
  }
})()`,
		jsString(bindingName),
		jsString(fmt.Sprintf("[class*=%q]", containerClassPattern)),
		jsString(overlay.ElementID),
		jsString(string(pipeline.EventMutation)),
		jsString(string(pipeline.EventClick)),
	)
}

func mountScript(id string, markup string, anchor overlay.Anchor) (string, error) {
	style, err := jsValue(anchor.Style())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`(() => {
  const existing = document.getElementById(%[1]s);
  if (existing) existing.remove();
  const element = document.createElement("div");
  element.id = %[1]s;
  element.innerHTML = %[2]s;
  for (const [name, value] of Object.entries(%[3]s)) {
    element.style.setProperty(name, value);
  }
  document.body.appendChild(element);
})()`, jsString(id), jsString(markup), style), nil
}

func unmountScript(id string) string {
	return fmt.Sprintf(`(() => {
  const element = document.getElementById(%s);
  if (element) element.remove();
})()`, jsString(id))
}

func replaceCardScript(id string, index int, markup string) string {
	return fmt.Sprintf(`(() => {
  const root = document.getElementById(%s);
  if (!root) return;
  const card = root.querySelector(%s);
  if (card) card.outerHTML = %s;
})()`, jsString(id), jsString(fmt.Sprintf(`.definer-card[data-definer-card="%d"]`, index)), jsString(markup))
}

// rectResult is what firstSelectedRectScript evaluates to.
type rectResult struct {
	Found bool `json:"found"`
	overlay.Rect
}

// firstSelectedRectScript evaluates to the bounding box of the first selected tile.
func firstSelectedRectScript(selectedClass string) string {
	return fmt.Sprintf(`(() => {
  const tile = document.getElementsByClassName(%s)[0];
  if (!tile) return {found: false};
  const rect = tile.getBoundingClientRect();
  return {found: true, top: rect.top, left: rect.left, bottom: rect.bottom, right: rect.right, scrollX: window.scrollX, scrollY: window.scrollY};
})()`, jsString(selectedClass))
}

func playScript(url string) string {
	return fmt.Sprintf(`void new Audio(%s).play().catch(() => {})`, jsString(url))
}

const (
	snapshotScript      = `document.documentElement.outerHTML`
	textSelectionScript = `(window.getSelection() || "").toString()`
)

// decodeEvent parses a binding payload into a page event.
func decodeEvent(payload string) (pipeline.Event, error) {
	var event pipeline.Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return pipeline.Event{}, fmt.Errorf("json.Unmarshal > %w", err)
	}
	if !event.Kind.Valid() {
		return pipeline.Event{}, fmt.Errorf("unknown event kind: %q", event.Kind)
	}
	return event, nil
}
