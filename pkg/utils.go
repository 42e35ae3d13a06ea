package pkg

import (
	"os"
	"strconv"
	"strings"
)

// ProjectName is used for tagging and for the default stack name.
const ProjectName = "docker-lambda-aws"

func Getenv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetenvBool is false for unset or unparsable values.
func GetenvBool(key string) bool {
	val, _ := strconv.ParseBool(os.Getenv(key))
	return val
}

// ParseKeyValues parses "k1=v1, k2=v2" into a map, skipping blank entries and
// entries without a key. A missing "=" gives an empty value; nil for no entries.
func ParseKeyValues(s string) map[string]string {
	var kv map[string]string
	for _, pair := range strings.Split(s, ",") {
		key, value, _ := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if kv == nil {
			kv = make(map[string]string)
		}
		kv[key] = strings.TrimSpace(value)
	}
	return kv
}
