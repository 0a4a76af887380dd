package ingestion

const (
	// defaultChunkSize is the fragment length in runes.
	defaultChunkSize = 500

	// defaultChunkOverlap is how many runes consecutive fragments share.
	defaultChunkOverlap = 50

	// minFragmentLength drops trailing fragments too short to embed
	// meaningfully.
	minFragmentLength = 70

	// minDocumentLength drops documents whose whole content is shorter
	// than a useful fragment.
	minDocumentLength = 20
)

// splitContent cuts content into overlapping fragments of at most size
// runes, each starting size-overlap runes after the previous one. Fragments
// of minFragmentLength runes or fewer are dropped, except when the whole
// content fits in a single fragment.
func splitContent(content string, size, overlap int) []string {
	runes := []rune(content)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= size {
		return []string{content}
	}

	step := size - overlap
	if step < 1 {
		step = 1
	}

	var fragments []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		if end-start > minFragmentLength {
			fragments = append(fragments, string(runes[start:end]))
		}
		if end == len(runes) {
			break
		}
	}
	return fragments
}
