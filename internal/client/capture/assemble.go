package capture

// Assemble concatenates fragments in emission order into one payload.
//
// When previous is non-nil it is prepended, making assembly append-only
// across repeated stop events within one session: a second recording
// segment extends the prior payload instead of replacing it. No fragment
// is dropped, reordered, or duplicated; the result's length is the sum of
// the inputs. An empty input yields a valid zero-length payload.
func Assemble(chunks [][]byte, previous []byte) []byte {
	total := len(previous)
	for _, c := range chunks {
		total += len(c)
	}

	out := make([]byte, 0, total)
	out = append(out, previous...)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}
