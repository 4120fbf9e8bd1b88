package statement

import "strings"

var nameSanitizer = strings.NewReplacer("/", "_", "\\", "_", " ", "_")

// SanitizeName makes a customer display name safe to use as a file name.
// Two customers sanitizing to the same name collide: the later artifact
// overwrites the earlier one (documented limitation).
func SanitizeName(name string) string {
	return nameSanitizer.Replace(strings.TrimSpace(name))
}
