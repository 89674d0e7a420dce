package reader

import (
	"fmt"
)

// Location tokens are opaque to hosts: they are stored and replayed
// verbatim, never parsed or compared outside this package. The encoding is a
// chapter index, a paragraph offset into the linearized content, and a page
// offset within that paragraph for paragraphs split across pages. Chapter
// and paragraph keep positions stable across terminal geometry changes; the
// page offset pins the exact page when the geometry is unchanged.

const locationScheme = "ws1"

func encodeLocation(chapter, paragraph, offset int) string {
	return fmt.Sprintf("%s:%d:%d:%d", locationScheme, chapter, paragraph, offset)
}

// decodeLocation parses a token. ok is false for anything malformed; callers
// fall back to the content start rather than erroring. Tokens without the
// page offset resolve to the paragraph start.
func decodeLocation(token string) (chapter, paragraph, offset int, ok bool) {
	var scheme string
	n, err := fmt.Sscanf(token, "%3s:%d:%d:%d", &scheme, &chapter, &paragraph, &offset)
	if err != nil || n != 4 {
		offset = 0
		n, err = fmt.Sscanf(token, "%3s:%d:%d", &scheme, &chapter, &paragraph)
		if err != nil || n != 3 {
			return 0, 0, 0, false
		}
	}
	if scheme != locationScheme || chapter < 0 || paragraph < 0 || offset < 0 {
		return 0, 0, 0, false
	}
	return chapter, paragraph, offset, true
}
