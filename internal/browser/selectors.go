package browser

import (
	"fmt"
	"strings"
)

// hideWebdriverScript runs before any page script on every document.
const hideWebdriverScript = `Object.defineProperty(navigator, 'webdriver', {
	get: () => undefined
});`

// startControlQueries returns XPath queries for the optional start control in
// the order they are tried: an element whose own text is exactly label, then a
// button (native or role="button") whose text or aria-label is label.
func startControlQueries(label string) []string {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil
	}
	lit := xpathLiteral(label)
	textMatch := fmt.Sprintf(`//*[normalize-space(text())=%s]`, lit)
	buttonMatch := fmt.Sprintf(
		`//button[normalize-space(.)=%[1]s or @aria-label=%[1]s] | //*[@role="button"][normalize-space(.)=%[1]s or @aria-label=%[1]s]`,
		lit,
	)
	return []string{textMatch, buttonMatch}
}

// xpathLiteral quotes s for use inside an XPath 1.0 expression.
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	parts := strings.Split(s, `"`)
	quoted := make([]string, 0, len(parts)*2)
	for i, part := range parts {
		if i > 0 {
			quoted = append(quoted, `'"'`)
		}
		if part != "" {
			quoted = append(quoted, `"`+part+`"`)
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}
