package convert

import "testing"

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		filename string
		want     Format
	}{
		{"report.html", FormatHTML},
		{"report.htm", FormatHTML},
		{"REPORT.HTML", FormatHTML},
		{"page.HTM", FormatHTML},
		{"report.docx", FormatOffice},
		{"report.odt", FormatOffice},
		{"report.xyz", FormatOffice},
		{"noextension", FormatOffice},
		{"", FormatOffice},
		{"archive.html.gz", FormatOffice},
	}

	for _, tc := range cases {
		if got := DetectFormat(tc.filename); got != tc.want {
			t.Errorf("DetectFormat(%q) = %v, want %v", tc.filename, got, tc.want)
		}
	}
}

func TestBackendsFor(t *testing.T) {
	html := &HTMLConverter{}
	office := &OfficeConverter{}
	b := Backends{HTML: html, Office: office}

	if b.For(FormatHTML) != Converter(html) {
		t.Error("expected HTML backend for FormatHTML")
	}
	if b.For(FormatOffice) != Converter(office) {
		t.Error("expected office backend for FormatOffice")
	}
}

func TestFormatString(t *testing.T) {
	if FormatHTML.String() != "html" {
		t.Errorf("unexpected string: %s", FormatHTML.String())
	}
	if FormatOffice.String() != "office" {
		t.Errorf("unexpected string: %s", FormatOffice.String())
	}
}
