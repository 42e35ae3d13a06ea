package term

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"text/tabwriter"
)

func Table(slice any, attributes ...string) error {
	return DefaultTerm.Table(slice, attributes...)
}

// Table prints the named fields of each struct in slice as aligned columns.
func (t *Term) Table(slice any, attributes ...string) error {
	val := reflect.ValueOf(slice)
	if val.Kind() != reflect.Slice {
		return errors.New("Table: input is not a slice")
	}

	w := tabwriter.NewWriter(t.out, 0, 0, 2, ' ', 0)

	var resetBold string
	if t.StdoutCanColor() {
		fmt.Fprintln(w, boldColorStr) // separate line, or it counts as part of the first header
		resetBold = resetColorStr
	}

	for i, attr := range attributes {
		var prefix string
		if i > 0 {
			prefix = "\t"
		}
		if _, err := fmt.Fprint(w, prefix, strings.ToUpper(attr)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, resetBold); err != nil {
		return err
	}

	for i := range val.Len() {
		item := val.Index(i)
		if item.Kind() == reflect.Ptr {
			item = item.Elem()
		}
		for _, attr := range attributes {
			field := item.FieldByName(attr)
			if !field.IsValid() {
				if _, err := fmt.Fprint(w, "N/A\t"); err != nil {
					return err
				}
				continue
			}
			if _, err := fmt.Fprintf(w, "%v\t", field.Interface()); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	return w.Flush()
}
