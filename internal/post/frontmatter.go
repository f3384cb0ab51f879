package post

import (
	"regexp"
	"strings"
)

var frontRe = regexp.MustCompile(`(?s)^---\s*\n(.*?)\n---\s*\n?(.*)$`)

// SplitFrontMatter divides a post file into its raw front-matter block
// (without the --- delimiters) and the body. Files with no front matter
// return ("", text).
func SplitFrontMatter(text string) (string, string) {
	m := frontRe.FindStringSubmatch(text)
	if m == nil {
		return "", text
	}
	return m[1], strings.TrimLeft(m[2], "\n")
}

// ParseFrontMatter reads the flat key: value lines of a front-matter block.
// It handles only the scalar subset this pipeline emits; quoted values are
// unquoted.
func ParseFrontMatter(fm string) map[string]string {
	meta := make(map[string]string)
	for _, line := range strings.Split(fm, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "---" {
			continue
		}
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		if len(v) >= 2 && strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`) {
			v = strings.ReplaceAll(v[1:len(v)-1], `\"`, `"`)
		}
		meta[k] = v
	}
	return meta
}

// RenderWithFront reassembles a post file from a raw front-matter block and
// a body.
func RenderWithFront(fm, body string) string {
	fm = strings.TrimSpace(fm)
	body = strings.TrimSpace(body)
	if fm == "" {
		return body + "\n"
	}
	return "---\n" + fm + "\n---\n\n" + body + "\n"
}
