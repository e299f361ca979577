package phantom

// NameTagWidth is the width of one name tag segment: the longest team
// prefix, player name or team suffix a client accepts.
const NameTagWidth = 16

const maxSegments = 3

// SplitNameTag cuts text into consecutive segments of width runes. At most
// three segments are returned and the first is always present, possibly
// empty. Text beyond three segments is dropped.
func SplitNameTag(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	var segments []string
	start, n := 0, 0
	for i := range text {
		if n == width {
			segments = append(segments, text[start:i])
			if len(segments) == maxSegments {
				return segments
			}
			start, n = i, 0
		}
		n++
	}
	if n > 0 || len(segments) == 0 {
		segments = append(segments, text[start:])
	}
	return segments
}

// parts maps segments to the team prefix, the entity name and the team
// suffix. The name is the second segment if present, else the first.
func parts(segments []string) (prefix, name, suffix string) {
	prefix = segments[0]
	name = prefix
	if len(segments) > 1 {
		name = segments[1]
	}
	if len(segments) > 2 {
		suffix = segments[2]
	}
	return prefix, name, suffix
}
