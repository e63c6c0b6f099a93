// Package render produces human-readable previews of activity events for
// operator logs and dashboards.
package render

import (
	"fmt"
	"strings"

	"github.com/russross/blackfriday/v2"

	"github.com/spacesedan/redditwatch/internal/models"
)

// Event renders one activity event as a multi-line summary.
func Event(evt models.Event) string {
	lines := []string{
		fmt.Sprintf("%s_%s.transition: %s", evt.Scope, evt.Kind, evt.Transition),
		fmt.Sprintf("%s_%s.id: %s", evt.Scope, evt.Kind, evt.ItemID),
		fmt.Sprintf("%s_%s.entity: %s", evt.Scope, evt.Kind, evt.Entity),
		fmt.Sprintf("%s_%s.author: %s", evt.Scope, evt.Kind, evt.Author),
	}

	if evt.Kind == models.KindSubmission {
		lines = append(lines,
			fmt.Sprintf("%s_%s.title: %s", evt.Scope, evt.Kind, evt.Title),
			fmt.Sprintf("%s_%s.url: %s", evt.Scope, evt.Kind, evt.URL))
	}
	if evt.Kind == models.KindComment {
		lines = append(lines,
			fmt.Sprintf("%s_%s.parent_id: %s", evt.Scope, evt.Kind, evt.ParentID),
			fmt.Sprintf("%s_%s.top_level: %t", evt.Scope, evt.Kind, evt.TopLevel))
	}

	lines = append(lines, fmt.Sprintf("%s_%s.body: %s", evt.Scope, evt.Kind, evt.Body))

	if evt.HasPreEdit {
		lines = append(lines, fmt.Sprintf("%s_%s.pre_edit_body: %s", evt.Scope, evt.Kind, evt.PreEditBody))
	}

	return strings.Join(lines, "\n")
}

// BodyHTML renders an item's markdown body to HTML. Reddit bodies are
// markdown on the wire.
func BodyHTML(body string) string {
	return string(blackfriday.Run([]byte(body)))
}
