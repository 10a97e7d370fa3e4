package config

import (
	"fmt"
	"os"
	"strings"
)

// APIKeys collects API keys from SEARCHCOND_API_KEY (single) and
// SEARCHCOND_API_KEY_1, SEARCHCOND_API_KEY_2, ... (rotation). Numbering stops
// at the first unset index. An empty result disables authentication.
func APIKeys() ([]string, error) {
	var keys []string
	seen := make(map[string]string)

	add := func(name, val string) error {
		val = strings.TrimSpace(val)
		if prev, exists := seen[val]; exists {
			return fmt.Errorf("duplicate API key in %s and %s", prev, name)
		}
		seen[val] = name
		keys = append(keys, val)
		return nil
	}

	if val := os.Getenv("SEARCHCOND_API_KEY"); val != "" {
		if err := add("SEARCHCOND_API_KEY", val); err != nil {
			return nil, err
		}
	}

	// Old and new keys stay valid together during rotation
	for i := 1; ; i++ {
		name := fmt.Sprintf("SEARCHCOND_API_KEY_%d", i)
		val := os.Getenv(name)
		if val == "" {
			break
		}
		if err := add(name, val); err != nil {
			return nil, err
		}
	}

	return keys, nil
}
