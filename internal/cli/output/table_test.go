package output

import (
	"bytes"
	"strings"
	"testing"
)

// component mirrors the shape the CLI lists.
type component struct {
	Name       string `json:"name"`
	Override   string `json:"override"`
	Properties bool   `json:"properties"`
	Path       string `json:"path" table:"wide"`
	internal   string
}

type location struct {
	Root string `json:"root"`
}

type report struct {
	*location
	Keys       int      `json:"keys"`
	Unresolved []string `json:"unresolved"`
	Secret     string   `json:"secret" table:"-"`
	BootID     string   `json:"boot_id" table:"wide"`
}

type id [2]byte

func (i id) String() string { return "id-" + string('a'+rune(i[0])) }

func lines(t *testing.T, s string) []string {
	t.Helper()
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func fields(line string) []string {
	return strings.Fields(line)
}

func format(t *testing.T, f *TableFormatter, data any) string {
	t.Helper()
	var buf bytes.Buffer
	if err := f.Format(&buf, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	return buf.String()
}

func TestTableFormatter_Rows(t *testing.T) {
	rows := []component{
		{Name: "api", Override: "", Properties: false, Path: "/opt/modi/components/api", internal: "x"},
		{Name: "web", Override: "/opt/modi/override/web.xml", Properties: true, Path: "/opt/modi/components/web"},
	}

	got := lines(t, format(t, &TableFormatter{}, rows))
	if len(got) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(got), strings.Join(got, "\n"))
	}
	if h := fields(got[0]); strings.Join(h, " ") != "NAME OVERRIDE PROPERTIES" {
		t.Errorf("headers = %v", h)
	}
	if r := fields(got[1]); strings.Join(r, " ") != "api - false" {
		t.Errorf("row 1 = %v", r)
	}
	if r := fields(got[2]); strings.Join(r, " ") != "web /opt/modi/override/web.xml true" {
		t.Errorf("row 2 = %v", r)
	}
}

func TestTableFormatter_RowsWide(t *testing.T) {
	rows := []*component{{Name: "web", Path: "/opt/modi/components/web"}, nil}

	got := lines(t, format(t, &TableFormatter{Wide: true}, rows))
	if h := fields(got[0]); strings.Join(h, " ") != "NAME OVERRIDE PROPERTIES PATH" {
		t.Errorf("headers = %v", h)
	}
	if !strings.HasSuffix(got[1], "/opt/modi/components/web") {
		t.Errorf("wide column missing: %q", got[1])
	}
	if r := fields(got[2]); strings.Join(r, " ") != "- - - -" {
		t.Errorf("nil row = %v", r)
	}
}

func TestTableFormatter_EmptyRows(t *testing.T) {
	got := lines(t, format(t, &TableFormatter{}, []component{}))
	if len(got) != 1 || !strings.HasPrefix(got[0], "NAME") {
		t.Errorf("empty list should print headers only, got %q", got)
	}
}

func TestTableFormatter_Properties(t *testing.T) {
	props := map[string]string{
		"web.greeting": "hello\nworld",
		"db.url":       "jdbc:hsqldb:mem:modi",
		"empty":        "",
	}

	got := lines(t, format(t, &TableFormatter{}, props))
	want := [][]string{
		{"KEY", "VALUE"},
		{"db.url", "jdbc:hsqldb:mem:modi"},
		{"empty", "-"},
		{"web.greeting", `hello\nworld`},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(got), len(want), strings.Join(got, "\n"))
	}
	for i, w := range want {
		if f := fields(got[i]); strings.Join(f, " ") != strings.Join(w, " ") {
			t.Errorf("line %d = %v, want %v", i, f, w)
		}
	}
}

func TestTableFormatter_GenericMap(t *testing.T) {
	got := lines(t, format(t, &TableFormatter{}, map[string]int{"b": 2, "a": 1}))
	if len(got) != 3 || fields(got[1])[0] != "a" || fields(got[2])[0] != "b" {
		t.Errorf("map rows not sorted: %q", got)
	}
}

func TestTableFormatter_Struct(t *testing.T) {
	r := report{
		location:   &location{Root: "/opt/modi"},
		Keys:       12,
		Unresolved: []string{"a.b", "c"},
		Secret:     "hunter2",
		BootID:     "01J",
	}

	out := format(t, &TableFormatter{}, r)
	got := lines(t, out)
	want := [][]string{
		{"FIELD", "VALUE"},
		{"root", "/opt/modi"},
		{"keys", "12"},
		{"unresolved", "a.b,c"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(got), len(want), out)
	}
	for i, w := range want {
		if f := fields(got[i]); strings.Join(f, " ") != strings.Join(w, " ") {
			t.Errorf("line %d = %v, want %v", i, f, w)
		}
	}
	if strings.Contains(out, "hunter2") {
		t.Error("table:\"-\" field was printed")
	}

	wide := format(t, &TableFormatter{Wide: true}, &r)
	if !strings.Contains(wide, "boot_id") {
		t.Errorf("wide struct should include boot_id:\n%s", wide)
	}
}

func TestTableFormatter_NilEmbeddedPointer(t *testing.T) {
	got := lines(t, format(t, &TableFormatter{}, report{Keys: 1}))
	if f := fields(got[1]); strings.Join(f, " ") != "root -" {
		t.Errorf("nil embedded field = %v", f)
	}
}

func TestTableFormatter_Scalars(t *testing.T) {
	got := lines(t, format(t, &TableFormatter{}, []string{"kernel", "install"}))
	if strings.Join(got, "|") != "VALUE|kernel|install" {
		t.Errorf("got %q", got)
	}
}

func TestTableFormatter_Stringer(t *testing.T) {
	type row struct {
		ID id `json:"id"`
	}
	got := lines(t, format(t, &TableFormatter{}, []row{{ID: id{1}}}))
	if fields(got[1])[0] != "id-b" {
		t.Errorf("Stringer not used: %q", got)
	}
}

func TestTableFormatter_FallbackToJSON(t *testing.T) {
	out := format(t, &TableFormatter{}, [][]string{{"a"}})
	if !strings.HasPrefix(out, "[\n") {
		t.Errorf("expected JSON fallback, got %q", out)
	}

	out = format(t, &TableFormatter{}, 42)
	if out != "42\n" {
		t.Errorf("expected JSON fallback for scalar, got %q", out)
	}
}

func TestTableFormatter_NilData(t *testing.T) {
	if out := format(t, &TableFormatter{}, nil); out != "" {
		t.Errorf("nil data printed %q", out)
	}
}

func TestTable_Render(t *testing.T) {
	tbl := &Table{}
	tbl.SetHeaders("NAME", "RANK")
	tbl.AddRow("kernel", "0")
	tbl.AddRow("install", "20")

	var buf bytes.Buffer
	if err := tbl.Render(&buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := "NAME     RANK\nkernel   0\ninstall  20\n"
	if buf.String() != want {
		t.Errorf("Render() =\n%q\nwant\n%q", buf.String(), want)
	}

	buf.Reset()
	if err := (&TableFormatter{NoHeaders: true}).Format(&buf, *tbl); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if strings.Contains(buf.String(), "NAME") {
		t.Errorf("NoHeaders printed headers: %q", buf.String())
	}
}
