// Copyright © 2024 The ELPS authors

package breeds

import "strings"

// PluralName derives a plural breed name by appending "s". Irregular nouns
// are treated like any other word: PluralName("mouse") is "mouses".
func PluralName(singular string) string {
	return singular + "s"
}

// SingularName derives a singular breed name. A trailing "s" is dropped;
// names without one get the "a-" prefix, so "sheep" becomes "a-sheep".
func SingularName(plural string) string {
	if len(plural) > 1 && strings.HasSuffix(plural, "s") {
		return plural[:len(plural)-1]
	}
	return "a-" + plural
}
