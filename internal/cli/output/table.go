package output

import (
	"fmt"
	"io"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
)

// TableFormatter renders data as aligned columns.
//
// A slice of structs gives one row per element and one column per exported
// field. Fields tagged `table:"wide"` show only in wide mode, `table:"-"`
// never. A map gives KEY/VALUE rows sorted by key, which is how property
// sets are listed. A single struct gives FIELD/VALUE rows. Embedded structs
// are flattened into their parent in both struct forms. Anything else falls
// back to JSON.
type TableFormatter struct {
	Wide      bool
	NoHeaders bool
}

// Format renders data.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	if data == nil {
		return nil
	}

	var t *Table
	switch d := data.(type) {
	case *Table:
		t = d
	case Table:
		t = &d
	case map[string]string:
		t = propertyTable(d)
	default:
		var err error
		if t, err = toTable(reflect.ValueOf(data), f.Wide); err != nil {
			return (&JSONFormatter{}).Format(w, data)
		}
	}
	return t.RenderWithOptions(w, f.NoHeaders)
}

func propertyTable(props map[string]string) *Table {
	t := &Table{Headers: []string{"KEY", "VALUE"}}
	for _, k := range slices.Sorted(maps.Keys(props)) {
		t.AddRow(k, cellString(props[k]))
	}
	return t
}

func toTable(v reflect.Value, wide bool) (*Table, error) {
	v = indirect(v)
	if !v.IsValid() {
		return &Table{}, nil
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return rowsTable(v, wide)
	case reflect.Map:
		return mapTable(v), nil
	case reflect.Struct:
		return fieldTable(v, wide), nil
	default:
		return nil, fmt.Errorf("output: cannot tabulate %s", v.Kind())
	}
}

// rowsTable renders a list, one element per row.
func rowsTable(v reflect.Value, wide bool) (*Table, error) {
	elem := v.Type().Elem()
	for elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}

	t := &Table{}
	switch elem.Kind() {
	case reflect.Struct:
		cols := columns(elem, wide)
		for _, c := range cols {
			t.Headers = append(t.Headers, strings.ToUpper(c.name))
		}
		for i := range v.Len() {
			row := indirect(v.Index(i))
			cells := make([]string, len(cols))
			for j, c := range cols {
				cells[j] = "-"
				if row.IsValid() {
					cells[j] = formatValue(fieldByIndex(row, c.index))
				}
			}
			t.AddRow(cells...)
		}
	case reflect.Map, reflect.Slice, reflect.Array:
		return nil, fmt.Errorf("output: cannot tabulate a list of %s", elem.Kind())
	default:
		t.Headers = []string{"VALUE"}
		for i := range v.Len() {
			t.AddRow(formatValue(v.Index(i)))
		}
	}
	return t, nil
}

// mapTable renders any map as KEY/VALUE rows sorted by key.
func mapTable(v reflect.Value) *Table {
	t := &Table{Headers: []string{"KEY", "VALUE"}}
	iter := v.MapRange()
	for iter.Next() {
		t.AddRow(formatValue(iter.Key()), formatValue(iter.Value()))
	}
	slices.SortFunc(t.Rows, func(a, b []string) int {
		return strings.Compare(a[0], b[0])
	})
	return t
}

// fieldTable renders one struct as FIELD/VALUE rows.
func fieldTable(v reflect.Value, wide bool) *Table {
	t := &Table{Headers: []string{"FIELD", "VALUE"}}
	for _, c := range columns(v.Type(), wide) {
		t.AddRow(c.name, formatValue(fieldByIndex(v, c.index)))
	}
	return t
}

// column is a displayable struct field.
type column struct {
	name  string
	index []int
}

func columns(t reflect.Type, wide bool) []column {
	var cols []column
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() {
			continue
		}
		if f.Anonymous && indirectType(f.Type).Kind() == reflect.Struct {
			continue
		}
		switch f.Tag.Get("table") {
		case "-":
			continue
		case "wide":
			if !wide {
				continue
			}
		}
		cols = append(cols, column{name: fieldName(f), index: f.Index})
	}
	return cols
}

// fieldName is the json name of f, or its Go name in snake case.
func fieldName(f reflect.StructField) string {
	if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name != "" && name != "-" {
		return name
	}
	return toSnakeCase(f.Name)
}

// fieldByIndex is FieldByIndex that yields an invalid Value instead of
// panicking on a nil embedded pointer.
func fieldByIndex(v reflect.Value, index []int) reflect.Value {
	f, err := v.FieldByIndexErr(index)
	if err != nil {
		return reflect.Value{}
	}
	return f
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func indirectType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

var stringerType = reflect.TypeFor[fmt.Stringer]()

// formatValue renders one cell. Empty values show as "-".
func formatValue(v reflect.Value) string {
	if v.IsValid() && v.Type().Implements(stringerType) && v.CanInterface() {
		if v.Kind() == reflect.Pointer && v.IsNil() {
			return "-"
		}
		return cellString(v.Interface().(fmt.Stringer).String())
	}

	v = indirect(v)
	if !v.IsValid() {
		return "-"
	}

	switch v.Kind() {
	case reflect.String:
		return cellString(v.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return "-"
		}
		if v.Type().Elem().Kind() == reflect.String {
			items := make([]string, v.Len())
			for i := range items {
				items[i] = v.Index(i).String()
			}
			return cellString(strings.Join(items, ","))
		}
		return fmt.Sprintf("[%d items]", v.Len())
	case reflect.Map:
		if v.Len() == 0 {
			return "-"
		}
		return fmt.Sprintf("{%d keys}", v.Len())
	default:
		if !v.CanInterface() {
			return "-"
		}
		return cellString(fmt.Sprint(v.Interface()))
	}
}

// cellString keeps a value on one line. Multi-line property values would
// otherwise break the column layout.
func cellString(s string) string {
	if s == "" {
		return "-"
	}
	return cellEscaper.Replace(s)
}

var cellEscaper = strings.NewReplacer("\r", `\r`, "\n", `\n`, "\t", `\t`)

// toSnakeCase converts CamelCase to snake_case.
func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Table is pre-built tabular data.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Render writes the table with headers.
func (t *Table) Render(w io.Writer) error {
	return t.RenderWithOptions(w, false)
}

// RenderWithOptions writes the table, optionally without the header line.
func (t *Table) RenderWithOptions(w io.Writer, noHeaders bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if !noHeaders && len(t.Headers) > 0 {
		if _, err := fmt.Fprintln(tw, strings.Join(t.Headers, "\t")); err != nil {
			return err
		}
	}
	for _, row := range t.Rows {
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// AddRow appends a row.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// SetHeaders replaces the headers.
func (t *Table) SetHeaders(headers ...string) {
	t.Headers = headers
}
