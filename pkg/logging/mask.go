package logging

// MaskSecret returns a display-safe form of a secret, keeping at most the
// first four characters.
func MaskSecret(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return "****"
	default:
		return s[:4] + "..."
	}
}
