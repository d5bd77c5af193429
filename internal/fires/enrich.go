package fires

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// httpGetter is the narrow dependency the fire finder needs from the
// cached HTTP client (component I). Declared here, satisfied by
// internal/httpcache.Client, so fires doesn't import that package's
// concrete implementation.
type httpGetter interface {
	Get(url string) ([]byte, error)
}

// fieldAllowlist restricts row values substituted into an enrichment URL
// template to printable, URL-safe characters, per §9's Open Questions:
// "restrict substituted row field values to a printable allowlist and
// reject URL-breaking characters."
var fieldAllowlist = regexp.MustCompile(`^[A-Za-z0-9._\- ]*$`)

// expandAuxURL substitutes "{fieldName}" placeholders in template with the
// corresponding value from fields. A value failing the allowlist check (or
// a placeholder with no corresponding field) aborts the substitution.
func expandAuxURL(template string, fields map[string]string) (string, bool) {
	out := template
	for name, value := range fields {
		placeholder := "{" + name + "}"
		if !strings.Contains(out, placeholder) {
			continue
		}
		if !fieldAllowlist.MatchString(value) {
			return "", false
		}
		out = strings.ReplaceAll(out, placeholder, value)
	}
	if strings.Contains(out, "{") {
		// Unresolved placeholder remains; refuse rather than send a
		// half-templated request.
		return "", false
	}
	return out, true
}

// enrich fetches an AuxAPI response and returns its fields merged by name.
// Failures are logged and degrade to "no additional fields", per §4.C:
// "failure is logged and the base record is returned."
func enrich(logger *slog.Logger, client httpGetter, aux *AuxAPI, rowFields map[string]string) map[string]string {
	url, ok := expandAuxURL(aux.URLTemplate, rowFields)
	if !ok {
		logger.Warn("aux enrichment URL rejected by allowlist", "template", aux.URLTemplate)
		return nil
	}
	body, err := client.Get(url)
	if err != nil {
		logger.Warn("aux enrichment request failed", "url", url, "error", err)
		return nil
	}
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		logger.Warn("aux enrichment response not JSON", "url", url, "error", err)
		return nil
	}
	out := map[string]string{}
	for normalized, mapping := range aux.Fields {
		v, ok := raw[mapping.RawField]
		if !ok {
			continue
		}
		out[normalized] = fmt.Sprintf("%v", v)
	}
	return out
}
