package models

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/apiobject/apiobject.go/pkg/constants"
)

// dateTimeLayouts are tried in order when reading a date field back.
var dateTimeLayouts = []string{
	constants.DateTimeLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FormatValue returns the wire text of v.
//
// Times are written in the sortable round-trip form 2006-01-02T15:04:05 no
// matter the local formatting conventions. nil, nil pointers and the zero
// time are written as the empty string. Values with a String or Error
// method use it, other pointers are written as what they point to, and
// everything else uses the default fmt conversion.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format(constants.DateTimeLayout)
	case *time.Time:
		if x == nil {
			return ""
		}
		return FormatValue(*x)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return ""
	}

	switch x := v.(type) {
	case fmt.Stringer:
		return x.String()
	case error:
		return x.Error()
	}

	if rv.Kind() == reflect.Pointer {
		return FormatValue(rv.Elem().Interface())
	}

	return fmt.Sprint(v)
}

// ParseDateTime reads a date field written by the service or by FormatValue.
// An empty string yields the zero time.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}

	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q is not a date", constants.ErrInvalidResponse, s)
}
