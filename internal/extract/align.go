package extract

// Align maps values onto n slots. Equal lengths map one to one. Otherwise values are
// tiled cyclically and cut to n: [A B C] over 5 slots gives [A B C A B]. No values gives
// no slots.
//
// Tiling does not check whether len(values) relates sensibly to n, so a short list can
// be spread over variants it never described.
func Align[T any](values []T, n int) []T {
	if len(values) == 0 || n <= 0 {
		return nil
	}
	if len(values) == n {
		out := make([]T, n)
		copy(out, values)
		return out
	}

	repeat := n/len(values) + 1
	tiled := make([]T, 0, repeat*len(values))
	for range repeat {
		tiled = append(tiled, values...)
	}
	return tiled[:n]
}
