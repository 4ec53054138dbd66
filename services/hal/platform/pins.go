package platform

import "strconv"

// pinNumber parses a numeric GPIO name such as "15" or "GP15". Other
// names yield -1.
func pinNumber(name string) int {
	if len(name) > 2 && (name[:2] == "GP" || name[:2] == "gp") {
		name = name[2:]
	}
	n, err := strconv.Atoi(name)
	if err != nil || n < 0 {
		return -1
	}
	return n
}
