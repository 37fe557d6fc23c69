// Package redact scans free text for likely secrets before it is
// persisted: API-key-style assignments, SSH/PEM key material, and
// high-entropy token runs. Detected spans are merged and replaced with a
// sentinel so the masked text can be safely stored or logged.
package redact

import (
	"math"
	"regexp"
	"sort"
)

// Sentinel is substituted for every redacted span.
const Sentinel = "[REDACTED]"

// Result is the outcome of scanning one candidate string.
type Result struct {
	Masked  string
	Issues  []string
	Blocked bool
}

var (
	apiKeyRe  = regexp.MustCompile(`(?i)(api[_-]?key|token|secret|password)[\s:=]+([A-Za-z0-9_\-]{16,})`)
	sshRe     = regexp.MustCompile(`ssh-(rsa|ed25519) [A-Za-z0-9+/=]{20,}`)
	pemRe     = regexp.MustCompile(`(?s)-----BEGIN [A-Z ]*PRIVATE KEY-----.+?-----END [A-Z ]*PRIVATE KEY-----`)
	entropyRe = regexp.MustCompile(`[A-Za-z0-9+/=_-]{20,}`)
)

type span struct {
	start, end int
}

// Scan looks for secrets in s and returns the masked text, the list of
// human-readable issues found (in detection order), and whether the
// input should be blocked from further processing.
func Scan(s string) Result {
	var spans []span
	var issues []string

	pushSpan := func(sp span, issue string) {
		for _, existing := range spans {
			if sp.start >= existing.start && sp.end <= existing.end {
				return
			}
		}
		spans = append(spans, sp)
		issues = append(issues, issue)
	}

	for _, m := range apiKeyRe.FindAllStringSubmatchIndex(s, -1) {
		// m[4], m[5] are the start/end of capture group 2 (the value).
		if m[4] < 0 {
			continue
		}
		pushSpan(span{m[4], m[5]}, "possible API key")
	}

	for _, m := range sshRe.FindAllStringIndex(s, -1) {
		pushSpan(span{m[0], m[1]}, "possible SSH key")
	}

	for _, m := range pemRe.FindAllStringIndex(s, -1) {
		pushSpan(span{m[0], m[1]}, "possible private key")
	}

	for _, m := range entropyRe.FindAllStringIndex(s, -1) {
		start, end := m[0], m[1]
		overlaps := false
		for _, existing := range spans {
			if start < existing.end && end > existing.start {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}
		if shannonEntropy(s[start:end]) >= 4.5 {
			pushSpan(span{start, end}, "high-entropy string")
		}
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	var merged []span
	for _, sp := range spans {
		if len(merged) > 0 && sp.start <= merged[len(merged)-1].end {
			last := &merged[len(merged)-1]
			if sp.end > last.end {
				last.end = sp.end
			}
			continue
		}
		merged = append(merged, sp)
	}

	var masked []byte
	last := 0
	for _, sp := range merged {
		if sp.start > last {
			masked = append(masked, s[last:sp.start]...)
		}
		masked = append(masked, Sentinel...)
		last = sp.end
	}
	if last < len(s) {
		masked = append(masked, s[last:]...)
	}

	return Result{
		Masked:  string(masked),
		Issues:  issues,
		Blocked: len(issues) > 0,
	}
}

// shannonEntropy computes the Shannon entropy of s in bits per symbol,
// treating s as a stream of bytes.
func shannonEntropy(s string) float64 {
	var freq [256]int
	for i := 0; i < len(s); i++ {
		freq[s[i]]++
	}
	n := float64(len(s))
	ent := 0.0
	for _, count := range freq {
		if count == 0 {
			continue
		}
		p := float64(count) / n
		ent -= p * math.Log2(p)
	}
	return ent
}
