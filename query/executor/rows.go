package executor

import (
	"database/sql"
	"reflect"
	"strings"
	"time"

	"github.com/satishbabariya/querykit/query/qerr"
)

// dateLayouts are the backend date-string shapes recognized by
// normalizeValue, most specific first.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// scanRows reads every row, normalizes its values and converts each to
// T. The returned slice is non-nil even when empty.
func scanRows[T any](rows *sql.Rows) ([]T, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := make([]T, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			values[i] = normalizeValue(v)
		}
		item, err := convertRow[T](columns, values)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// normalizeValue maps raw driver values into caller-friendly ones: byte
// slices become strings, and strings shaped like dates become time.Time.
// Everything else passes through unchanged.
func normalizeValue(v any) any {
	switch n := v.(type) {
	case []byte:
		return normalizeValue(string(n))
	case string:
		if !looksLikeDate(n) {
			return n
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, n); err == nil {
				return t
			}
		}
		return n
	default:
		return v
	}
}

// looksLikeDate gates date parsing on the YYYY-MM-DD prefix every
// recognized layout shares.
func looksLikeDate(s string) bool {
	if len(s) < 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for _, i := range []int{0, 1, 2, 3, 5, 6, 8, 9} {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// convertRow turns one normalized row into a T. Maps are filled by
// column name; structs are mapped through db tags.
func convertRow[T any](columns []string, values []any) (T, error) {
	var zero T

	if _, ok := any(zero).(map[string]any); ok {
		m := make(map[string]any, len(columns))
		for i, col := range columns {
			m[col] = values[i]
		}
		return any(m).(T), nil
	}

	rt := reflect.TypeOf(zero)
	if rt == nil {
		return zero, qerr.New(qerr.KindInvalidValue, "cannot map rows into an interface type")
	}

	if rt.Kind() == reflect.Ptr && rt.Elem().Kind() == reflect.Struct {
		target := reflect.New(rt.Elem())
		if err := assignRow(columns, values, target.Elem()); err != nil {
			return zero, err
		}
		return target.Interface().(T), nil
	}
	if rt.Kind() == reflect.Struct {
		target := reflect.New(rt)
		if err := assignRow(columns, values, target.Elem()); err != nil {
			return zero, err
		}
		return target.Elem().Interface().(T), nil
	}

	return zero, qerr.New(qerr.KindInvalidValue, "cannot map rows into %s", rt)
}

// assignRow copies row values into struct fields matched by column name.
// Columns with no matching field are ignored, as are fields with no
// matching column.
func assignRow(columns []string, values []any, target reflect.Value) error {
	byColumn := make(map[string]int, len(columns))
	for i, col := range columns {
		byColumn[strings.ToLower(col)] = i
	}

	t := target.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldValue := target.Field(i)
		if !fieldValue.CanSet() {
			continue
		}

		idx, ok := byColumn[strings.ToLower(fieldColumn(field))]
		if !ok {
			continue
		}

		value := values[idx]
		if value == nil {
			fieldValue.Set(reflect.Zero(fieldValue.Type()))
			continue
		}
		if err := setFieldValue(fieldValue, value); err != nil {
			return qerr.Wrap(qerr.KindAdapterError, err, "cannot assign column %q to field %s", columns[idx], field.Name)
		}
	}
	return nil
}

// fieldColumn resolves a struct field's column name from its db tag,
// falling back to the snake_case field name.
func fieldColumn(field reflect.StructField) string {
	tag := field.Tag.Get("db")
	if tag != "" && tag != "-" {
		if comma := strings.IndexByte(tag, ','); comma >= 0 {
			tag = tag[:comma]
		}
		return tag
	}
	return toSnakeCase(field.Name)
}

func setFieldValue(fieldValue reflect.Value, value any) error {
	fieldType := fieldValue.Type()

	if fieldType.Kind() == reflect.Ptr {
		elem := reflect.New(fieldType.Elem()).Elem()
		if err := setFieldValue(elem, value); err != nil {
			return err
		}
		fieldValue.Set(elem.Addr())
		return nil
	}

	valueValue := reflect.ValueOf(value)
	valueType := valueValue.Type()

	if valueType.AssignableTo(fieldType) {
		fieldValue.Set(valueValue)
		return nil
	}
	// A date-normalized value going into a plain string field keeps its
	// original text form.
	if t, ok := value.(time.Time); ok && fieldType.Kind() == reflect.String {
		fieldValue.SetString(t.Format(time.RFC3339))
		return nil
	}
	if valueType.ConvertibleTo(fieldType) {
		fieldValue.Set(valueValue.Convert(fieldType))
		return nil
	}
	return qerr.New(qerr.KindAdapterError, "cannot convert %s to %s", valueType, fieldType)
}

// toSnakeCase converts PascalCase to snake_case.
func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteRune('_')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}
