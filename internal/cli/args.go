package cli

import "strings"

// expandMulti rewrites "--dependencies a b c" into repeated
// "--dependencies=a" flags so that one flag may take several space separated
// values. Only the part before "--" is touched. A value starting with "-"
// ends the list, so such paths need the "--dependencies=-x" form; the flag
// help says so.
func expandMulti(args []string, multi ...string) []string {
	isMulti := make(map[string]bool, len(multi))
	for _, m := range multi {
		isMulti["--"+m] = true
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			return append(out, args[i:]...)
		}
		if !isMulti[a] {
			out = append(out, a)
			continue
		}
		for i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			i++
			out = append(out, a+"="+args[i])
		}
	}
	return out
}
