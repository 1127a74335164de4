package utils

// Truncate caps s at max characters, ending with an ellipsis when it was
// cut. Discord counts select-menu labels and descriptions in characters,
// not bytes, so the cut is rune-based.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
