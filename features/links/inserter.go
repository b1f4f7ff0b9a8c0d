package links

import (
	"strings"
)

// Insert rewrites the first eligible occurrence of each link's anchor into
// a markdown link. Only lines after the first "## " heading are candidates;
// heading lines are never touched, a line already containing "[anchor]("
// is skipped (which makes a second pass with the same link set a no-op),
// and occurrences sitting inside another existing link are passed over so
// links never nest. At most one link lands per line. Links whose anchor
// could not be placed come back as unused entries, not errors.
func Insert(body string, linkSet []AllocatedLink) (string, []UnusedLink) {
	if len(linkSet) == 0 {
		return body, nil
	}

	pending := make([]AllocatedLink, len(linkSet))
	copy(pending, linkSet)

	lines := strings.Split(body, "\n")
	inBody := false

	for i, line := range lines {
		if !inBody {
			if strings.HasPrefix(line, "## ") {
				inBody = true
			}
			continue
		}
		if len(pending) == 0 {
			break
		}
		if strings.HasPrefix(line, "#") {
			continue
		}

		for j, link := range pending {
			if strings.Contains(line, "["+link.Anchor+"](") {
				continue // already linked on this line
			}
			idx := linkFreeIndex(line, link.Anchor)
			if idx < 0 {
				continue
			}

			lines[i] = line[:idx] + "[" + link.Anchor + "](" + link.URL + ")" + line[idx+len(link.Anchor):]
			pending = append(pending[:j], pending[j+1:]...)
			break // one link per line
		}
	}

	var unused []UnusedLink
	for _, link := range pending {
		unused = append(unused, UnusedLink{
			Link:   link,
			Reason: "anchor not found in any eligible line",
		})
	}
	return strings.Join(lines, "\n"), unused
}

// linkFreeIndex returns the byte offset of the first occurrence of anchor
// in line that does not overlap an existing markdown link, or -1. Without
// the overlap check an anchor occurring inside another link's text would be
// wrapped again, nesting links.
func linkFreeIndex(line, anchor string) int {
	from := 0
	for {
		rel := strings.Index(line[from:], anchor)
		if rel < 0 {
			return -1
		}
		idx := from + rel
		if !overlapsLink(line, idx, idx+len(anchor)) {
			return idx
		}
		from = idx + len(anchor)
	}
}

// overlapsLink reports whether [start, end) intersects any "[text](url)"
// span in line.
func overlapsLink(line string, start, end int) bool {
	for i := 0; i < len(line); {
		open := strings.Index(line[i:], "[")
		if open < 0 {
			return false
		}
		open += i
		mid := strings.Index(line[open:], "](")
		if mid < 0 {
			return false
		}
		closing := strings.Index(line[open+mid:], ")")
		if closing < 0 {
			return false
		}
		spanEnd := open + mid + closing + 1
		if start < spanEnd && end > open {
			return true
		}
		i = spanEnd
	}
	return false
}
