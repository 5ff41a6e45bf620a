package shell

import (
	"os"
	"regexp"
	"strings"
)

var reEnv = regexp.MustCompile(`\${([^}{]+)}`)

// ReplaceEnvVars support ${NAME} and ${NAME:default}, unknown names without default are kept
func ReplaceEnvVars(text string) string {
	return ReplaceVars(text, os.LookupEnv)
}

func ReplaceVars(text string, lookup func(key string) (string, bool)) string {
	return reEnv.ReplaceAllStringFunc(text, func(match string) string {
		key := match[2 : len(match)-1]

		def, dok := "", false
		if i := strings.IndexByte(key, ':'); i > 0 {
			key, def = key[:i], key[i+1:]
			dok = true
		}

		if value, vok := lookup(key); vok {
			return value
		}

		if dok {
			return def
		}

		return match
	})
}
