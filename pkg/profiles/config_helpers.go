package profiles

import (
	"os"
	"strings"
)

// expandEnv substitutes ${VAR} references in credentials, headers, params
// and URL parameters so secrets can stay out of the profiles file.
func expandEnv(p Profile) Profile {
	p.Auth.Username = expandValue(p.Auth.Username)
	p.Auth.Password = expandValue(p.Auth.Password)
	p.Auth.Token = expandValue(p.Auth.Token)
	p.Headers = expandMap(p.Headers)
	p.Params = expandMap(p.Params)
	p.URLParameters = expandMap(p.URLParameters)
	return p
}

func expandValue(v string) string {
	return strings.TrimSpace(os.ExpandEnv(v))
}

// expandMap trims keys, expands values and removes empty keys.
func expandMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}
		out[key] = expandValue(v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
