package sub

import "strings"

// MakeLabel renders the "(cc: …)" availability suffix shown next to video
// listings. Languages beyond max are collapsed into an ellipsis; an empty
// list renders as "(cc: ×)".
func MakeLabel(langs []string, max int) string {
	var b strings.Builder
	b.WriteString("(cc: ")

	switch {
	case len(langs) == 0:
		b.WriteString("×")
	case len(langs) > max:
		b.WriteString(strings.Join(langs[:max], ", "))
		b.WriteString(", …")
	default:
		b.WriteString(strings.Join(langs, ", "))
	}

	b.WriteString(")")
	return b.String()
}
