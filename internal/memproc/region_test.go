package memproc

import "testing"

func TestParseMapsLine(t *testing.T) {
	cases := []struct {
		line string
		want Region
	}{
		{
			line: "7f1234a00000-7f1234a21000 rw-p 00000000 00:00 0          [heap]",
			want: Region{Base: 0x7f1234a00000, Ceiling: 0x7f1234a21000, Readable: true, Writable: true, Pathname: Special{Kind: "[heap]"}},
		},
		{
			line: "7f1234c00000-7f1234c02000 r--p 00000000 08:01 131        /usr/lib/libc.so.6",
			want: Region{Base: 0x7f1234c00000, Ceiling: 0x7f1234c02000, Readable: true, Pathname: Named{Path: "/usr/lib/libc.so.6"}},
		},
		{
			line: "7f1234e00000-7f1234e10000 rwxp 00000000 00:00 0",
			want: Region{Base: 0x7f1234e00000, Ceiling: 0x7f1234e10000, Readable: true, Writable: true, Executable: true, Pathname: Anonymous{}},
		},
	}

	for _, c := range cases {
		got, ok, err := parseMapsLine(c.line)
		if err != nil {
			t.Fatalf("parseMapsLine(%q): %v", c.line, err)
		}
		if !ok {
			t.Fatalf("parseMapsLine(%q): not ok", c.line)
		}
		if got != c.want {
			t.Errorf("parseMapsLine(%q) = %+v, want %+v", c.line, got, c.want)
		}
	}
}

func TestParseMapsLineBad(t *testing.T) {
	_, _, err := parseMapsLine("not a maps line")
	if err == nil {
		t.Fatal("expected error for malformed line")
	}
}

func TestRegionContains(t *testing.T) {
	r := Region{Base: 0x1000, Ceiling: 0x2000}
	if !r.Contains(0x1000) {
		t.Error("base should be contained (half-open)")
	}
	if r.Contains(0x2000) {
		t.Error("ceiling should not be contained (half-open)")
	}
	if !r.Contains(0x1fff) {
		t.Error("last byte should be contained")
	}
}
