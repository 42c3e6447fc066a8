package sub

import "strings"

// SelectTrack picks the best subtitle track for the preferred language.
//
// Human-made tracks always win over machine-generated ones at equal
// specificity. An exact language-code match in either bucket beats a prefix
// match ("en" against "en-US") in any bucket. When several tracks in a bucket
// share a language code the last one in manifest order wins.
func SelectTrack(preferred string, tracks []Track) (Track, bool) {
	human := make(map[string]Track)
	machine := make(map[string]Track)

	for _, t := range tracks {
		switch {
		case t.IsHuman():
			human[t.LangCode] = t
		case t.IsMachine():
			machine[t.LangCode] = t
		}
	}

	if t, ok := human[preferred]; ok {
		return t, true
	}
	if t, ok := machine[preferred]; ok {
		return t, true
	}

	for _, t := range human {
		if strings.HasPrefix(t.LangCode, preferred) {
			return t, true
		}
	}
	for _, t := range machine {
		if strings.HasPrefix(t.LangCode, preferred) {
			return t, true
		}
	}

	return Track{}, false
}
