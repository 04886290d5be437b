package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// itemReferencePattern matches "#" followed by digits with a non-word
// boundary before the "#" and a word boundary after the digits: "see #123."
// matches, "foo#123" and "#123bar" do not.
var itemReferencePattern = regexp.MustCompile(`\B#(\d+)\b`)

// RewriteReferences replaces every #id cross-reference token in text with a
// markdown link [#id](resolve(id)) in a single left-to-right pass. It must
// run before markdown rendering so the generated link syntax is parsed into a
// real link node. The id is never validated against existing items; a
// reference to a nonexistent item becomes a dead link.
func RewriteReferences(text string, resolve func(id int64) string) string {
	if resolve == nil {
		return text
	}

	return itemReferencePattern.ReplaceAllStringFunc(text, func(token string) string {
		id, err := strconv.ParseInt(token[1:], 10, 64)
		if err != nil {
			return token
		}
		return fmt.Sprintf("[%s](%s)", token, resolve(id))
	})
}

// ItemURLResolver builds item URLs from the configured application root and
// base route, e.g. ("https://example.org", "topics") resolves id 7 to
// "https://example.org/topics/7".
func ItemURLResolver(publicRoot, baseRoute string) func(id int64) string {
	root := strings.TrimRight(publicRoot, "/")
	route := strings.Trim(baseRoute, "/")
	return func(id int64) string {
		return fmt.Sprintf("%s/%s/%d", root, route, id)
	}
}
