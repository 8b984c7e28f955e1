package config

import (
	"net/url"
	"strings"
)

const redacted = "***"

// RedactDSN hides the password in a connection string meant for display.
// URL style DSNs get their userinfo password replaced; PDO style DSNs
// ("mysql:host=h;password=p") get their password key replaced. Anything
// else is returned unchanged.
func RedactDSN(raw string) string {
	if raw == "" {
		return ""
	}

	if strings.Contains(raw, "://") {
		return redactURL(raw)
	}

	return redactPDO(raw)
}

// redactURL replaces the password in a connection URL with "***".
// If the URL cannot be parsed or has no password, it is returned unchanged.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}

	if _, hasPassword := u.User.Password(); !hasPassword {
		return raw
	}

	// Work on the raw string so the rest of the DSN keeps its original
	// escaping.
	afterScheme := strings.Index(raw, "://") + len("://")

	atIdx := strings.Index(raw[afterScheme:], "@")
	if atIdx < 0 {
		return raw
	}

	userinfo := raw[afterScheme : afterScheme+atIdx]

	colonIdx := strings.Index(userinfo, ":")
	if colonIdx < 0 {
		return raw
	}

	return raw[:afterScheme] + userinfo[:colonIdx+1] + redacted + raw[afterScheme+atIdx:]
}

func redactPDO(raw string) string {
	scheme, rest, ok := strings.Cut(raw, ":")
	if !ok {
		return raw
	}

	pairs := strings.Split(rest, ";")
	changed := false

	for i, pair := range pairs {
		key, _, found := strings.Cut(pair, "=")
		if found && strings.EqualFold(strings.TrimSpace(key), "password") {
			pairs[i] = key + "=" + redacted
			changed = true
		}
	}

	if !changed {
		return raw
	}

	return scheme + ":" + strings.Join(pairs, ";")
}
