package extract

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

var frontMatterDelim = []byte("---")

// FrontMatter parses a leading YAML front-matter block into a flat string
// map. Files without a block, or with one that fails to parse, yield nil.
func FrontMatter(content []byte) map[string]string {
	body := bytes.TrimLeft(content, "\uFEFF")
	if !bytes.HasPrefix(body, frontMatterDelim) {
		return nil
	}

	rest := body[len(frontMatterDelim):]
	if len(rest) == 0 || (rest[0] != '\n' && !bytes.HasPrefix(rest, []byte("\r\n"))) {
		return nil
	}
	end := bytes.Index(rest, append([]byte("\n"), frontMatterDelim...))
	if end < 0 {
		return nil
	}
	block := rest[:end]

	var raw map[string]interface{}
	if err := yaml.Unmarshal(block, &raw); err != nil {
		return nil
	}

	fields := make(map[string]string, len(raw))
	for key, value := range raw {
		fields[key] = fmt.Sprintf("%v", value)
	}
	return fields
}
