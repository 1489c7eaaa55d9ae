package watch

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/docpages/internal/content"
	"git.home.luguber.info/inful/docpages/internal/frontmatter"
)

// Fingerprint summarises the whole content tree. Every page contributes its
// mdfp fingerprint and every asset its size and modification time, so any
// visible change produces a different value. Unreadable entries contribute a
// marker instead of failing the scan.
func Fingerprint(scanner *content.Scanner) string {
	var b strings.Builder
	for _, project := range scanner.Projects() {
		dir := filepath.Join(scanner.Root(), project)
		b.WriteString(project + "/\n")
		for _, name := range scanner.Pages(project) {
			b.WriteString(project + "/" + name + " " + pageFingerprint(filepath.Join(dir, name)) + "\n")
		}
		for _, name := range scanner.Assets(project) {
			b.WriteString(project + "/" + name + " " + assetStamp(filepath.Join(dir, name)) + "\n")
		}
	}
	return mdfp.CalculateFingerprintFromParts("", b.String())
}

func pageFingerprint(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return "unreadable"
	}
	fm, body, _, err := frontmatter.Split(data)
	if err != nil {
		return mdfp.CalculateFingerprintFromParts("", string(data))
	}
	return mdfp.CalculateFingerprintFromParts(string(fm), string(body))
}

func assetStamp(path string) string {
	st, err := os.Stat(path)
	if err != nil {
		return "unreadable"
	}
	return strconv.FormatInt(st.Size(), 10) + ":" + strconv.FormatInt(st.ModTime().UnixNano(), 10)
}
