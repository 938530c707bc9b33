package chunker

// splitFixed advances a window of chunkSize runes across the text, each
// window starting stride = chunkSize - overlap runes after the previous
// one. The final window may be shorter than chunkSize and is kept even when
// it holds only the overlap remainder. Windows are not trimmed, so the
// source text can be reconstructed by dropping each chunk's leading overlap.
func splitFixed(text string, chunkSize, overlap int) []string {
	runes := []rune(text)
	stride := chunkSize - overlap

	var chunks []string
	for start := 0; start < len(runes); start += stride {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
