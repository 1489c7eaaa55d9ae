// Package frontmatter separates the YAML metadata block at the top of a
// Markdown file from the Markdown body.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Document is a Markdown file split into metadata and body.
type Document struct {
	Metadata Metadata
	// Raw is the frontmatter text without delimiters; empty when absent.
	Raw  []byte
	Body []byte
}

// Parse splits content and decodes its frontmatter. A document without a
// frontmatter block yields empty Metadata and the full text as Body.
func Parse(content []byte) (Document, error) {
	raw, body, had, err := Split(content)
	if err != nil {
		return Document{}, err
	}
	if !had {
		return Document{Metadata: Metadata{}, Body: body}, nil
	}
	fields, err := ParseYAML(raw)
	if err != nil {
		return Document{}, fmt.Errorf("parse frontmatter: %w", err)
	}
	return Document{Metadata: fields, Raw: raw, Body: body}, nil
}

// Split separates YAML frontmatter (`---` delimited) from the Markdown body.
//
// If the document does not start with a delimiter line, had is false and body
// is the full input. Both LF and CRLF line endings are accepted.
func Split(content []byte) (frontmatter []byte, body []byte, had bool, err error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	nl := detectNewline(content)

	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	rest := content[len(open):]

	// Empty block: "---\n---\n".
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], true, nil
	}
	if bytes.Equal(rest, []byte("---")) {
		return []byte{}, []byte{}, true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	if idx := bytes.Index(rest, closeSeq); idx >= 0 {
		return rest[:idx+len(nl)], rest[idx+len(closeSeq):], true, nil
	}

	// Closing delimiter as the very last line without a trailing newline.
	if bytes.HasSuffix(rest, []byte(nl+"---")) {
		return rest[:len(rest)-len("---")], []byte{}, true, nil
	}

	return nil, nil, false, ErrMissingClosingDelimiter
}

// ParseYAML parses raw YAML frontmatter (without --- delimiters) into Metadata.
func ParseYAML(frontmatter []byte) (Metadata, error) {
	if len(bytes.TrimSpace(frontmatter)) == 0 {
		return Metadata{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(frontmatter, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
