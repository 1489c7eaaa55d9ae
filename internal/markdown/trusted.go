package markdown

// TrustedHTML is an HTML fragment produced by the rendering pipeline. Its
// zero value is empty; other values can only be constructed in this package,
// so templates that embed it unescaped never see arbitrary external input.
type TrustedHTML struct {
	html string
}

// String returns the HTML text.
func (h TrustedHTML) String() string { return h.html }

// IsEmpty reports whether the fragment has no content.
func (h TrustedHTML) IsEmpty() bool { return h.html == "" }
