package tags

import (
	"strings"
	"testing"
)

func TestParseWellFormed(t *testing.T) {
	cases := []struct {
		line string
		want Record
	}{
		{"foo\tA.php\t10;\"\tf", Record{Symbol: "foo", FilePath: "A.php", Line: 9, Kind: "f"}},
		{"sum\tmath.php\t5;\"\tfunction", Record{Symbol: "sum", FilePath: "math.php", Line: 4, Kind: "function"}},
		{"Top\tsrc/Top.php\t1;\"\tc", Record{Symbol: "Top", FilePath: "src/Top.php", Line: 0, Kind: "c"}},
	}
	for _, tc := range cases {
		got, ok := Parse(tc.line)
		if !ok {
			t.Errorf("Parse(%q) rejected a well-formed line", tc.line)
			continue
		}
		if got.Symbol != tc.want.Symbol || got.FilePath != tc.want.FilePath ||
			got.Line != tc.want.Line || got.Kind != tc.want.Kind {
			t.Errorf("Parse(%q) = %+v, want %+v", tc.line, got, tc.want)
		}
	}
}

func TestParseKeepsExtraFields(t *testing.T) {
	rec, ok := Parse("run\tJob.php\t42;\"\tm\tclass:Job\tfile:")
	if !ok {
		t.Fatal("Parse rejected a line with extra fields")
	}
	if rec.Line != 41 {
		t.Errorf("Line = %d, want 41", rec.Line)
	}
	if strings.Join(rec.Extra, ",") != "class:Job,file:" {
		t.Errorf("Extra = %v", rec.Extra)
	}
}

func TestParseRejectsShortLines(t *testing.T) {
	for _, line := range []string{
		"",
		"foo",
		"foo\tA.php",
		"foo\tA.php\t10;\"",
		"\t\t",
	} {
		if rec, ok := Parse(line); ok {
			t.Errorf("Parse(%q) = %+v, want invalid", line, rec)
		}
	}
}

func TestParseRejectsBadLineDirective(t *testing.T) {
	for _, line := range []string{
		"foo\tA.php\t/^function foo/;\"\tf",
		"foo\tA.php\t;\"\tf",
		"foo\tA.php\tabc\tf",
	} {
		if _, ok := Parse(line); ok {
			t.Errorf("Parse(%q) accepted a non-numeric line directive", line)
		}
	}
}

func TestParseLineWithoutDirectiveMarker(t *testing.T) {
	rec, ok := Parse("foo\tA.php\t7\tf")
	if !ok {
		t.Fatal("Parse rejected a bare line number")
	}
	if rec.Line != 6 {
		t.Errorf("Line = %d, want 6", rec.Line)
	}
}

func TestParseKind(t *testing.T) {
	if got := ParseKind("f"); got != KindFunction {
		t.Errorf("ParseKind(f) = %v", got)
	}
	if got := ParseKind("interface"); got != KindInterface {
		t.Errorf("ParseKind(interface) = %v", got)
	}
	if got := ParseKind("zzz"); got != KindUnknown {
		t.Errorf("ParseKind(zzz) = %v", got)
	}
	if KindClass.String() != "class" {
		t.Errorf("KindClass.String() = %q", KindClass.String())
	}
}
