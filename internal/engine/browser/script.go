package browser

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Element is a RunScript argument resolved in the page to the first element
// matching the CSS selector, or null.
type Element string

// OuterHTMLScript returns the outer HTML of the first element matching any of
// the given selectors, or "" when none match.
const OuterHTMLScript = `function(selectors) {
	for (var i = 0; i < selectors.length; i++) {
		var el = document.querySelector(selectors[i]);
		if (el) {
			return el.outerHTML;
		}
	}
	return "";
}`

// SetSelectValueScript assigns a value to a <select> and dispatches the change
// event the page listens for. Plain option selection does not trigger it.
const SetSelectValueScript = `function(el, value) {
	if (!el) {
		return false;
	}
	el.value = value;
	el.dispatchEvent(new Event('change'));
	return el.value === value;
}`

// CallExpression renders fn applied to args as a single JavaScript expression.
// Element arguments become document.querySelector lookups, everything else is
// JSON encoded.
func CallExpression(fn string, args ...interface{}) (string, error) {
	parts := make([]string, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case Element:
			sel, err := json.Marshal(string(v))
			if err != nil {
				return "", fmt.Errorf("script argument %d: %w", i, err)
			}
			parts[i] = "document.querySelector(" + string(sel) + ")"
		default:
			b, err := json.Marshal(v)
			if err != nil {
				return "", fmt.Errorf("script argument %d: %w", i, err)
			}
			parts[i] = string(b)
		}
	}
	return "(" + strings.TrimSpace(fn) + ")(" + strings.Join(parts, ", ") + ")", nil
}
