// Package format post-processes streamed assistant text: it reflows inconsistently
// numbered lists, strips server-embedded citation headings, and builds the canonical
// citation block appended to search-augmented replies.
package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/vegasseoguru/guru-web-ui/internal/models"
)

// SourcesHeading marks the start of the citation section in assistant markdown.
const SourcesHeading = "## Sources"

// Models emit list markers inconsistently (1:, 2., 3), 4*); everything matching this is
// treated as a numbered list item.
var listItemPattern = regexp.MustCompile(`^(\s*)(\d+)[:.)*]\s*(.*)$`)

// RenumberLists rewrites numbered list items with uniform "N. " markers. Consecutive
// matching lines form a run, renumbered sequentially from the number on the run's first
// line, so an author starting at 3 continues 3, 4, 5. A blank or non-matching line closes
// the run; the next run restarts from whatever number its first line carries.
func RenumberLists(text string) string {
	lines := strings.Split(text, "\n")
	inRun := false
	counter := 0
	for i, line := range lines {
		m := listItemPattern.FindStringSubmatch(line)
		if m == nil {
			inRun = false
			continue
		}
		if !inRun {
			counter, _ = strconv.Atoi(m[2])
			inRun = true
		}
		lines[i] = fmt.Sprintf("%s%d. %s", m[1], counter, m[3])
		counter++
	}
	return strings.Join(lines, "\n")
}

// SourcesBlock renders an ordered source list as a markdown section: the sources heading
// followed by one-based numbered links. An empty list yields an empty string.
func SourcesBlock(sources []models.Source) string {
	if len(sources) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(SourcesHeading)
	sb.WriteByte('\n')
	for i, s := range sources {
		sb.WriteString(fmt.Sprintf("\n%d. [%s](%s)", i+1, s.Title, s.URL))
	}
	return sb.String()
}

// SplitSources returns the main content of accumulated text: everything before the first
// occurrence of the sources heading, with trailing blank lines removed. The server should
// not normally embed the heading inline, but it is tolerated and stripped so the
// canonical block built from the structured sources chunk wins.
func SplitSources(text string) string {
	idx := strings.Index(text, SourcesHeading)
	if idx < 0 {
		return text
	}
	return strings.TrimRight(text[:idx], " \t\n")
}

// FinalizeResponse assembles the final assistant message from accumulated stream text and
// the captured sources, applying the list reflow and appending the canonical citation
// block.
func FinalizeResponse(text string, sources []models.Source) string {
	main := RenumberLists(strings.TrimSpace(SplitSources(text)))
	block := SourcesBlock(sources)
	if block == "" {
		return main
	}
	if main == "" {
		return block
	}
	return main + "\n\n" + block
}

// LiveView is the formatting applied to the accumulated prefix after each content chunk:
// any half-streamed citation heading is hidden and lists are reflowed, so the visitor
// never sees raw marker soup while the reply is still arriving.
func LiveView(text string) string {
	return RenumberLists(SplitSources(text))
}
