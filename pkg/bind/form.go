package bind

import (
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/shashiranjanraj/kashvi-shop/pkg/validate"
)

// FormTimeLayouts are accepted for time.Time form fields, in order.
// The second is what an <input type="datetime-local"> submits.
var FormTimeLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04:05", "2006-01-02"}

var timeType = reflect.TypeOf(time.Time{})

// Form populates dest from an urlencoded or multipart body using `form`
// struct tags, then validates it. Conversion failures and rule violations
// are both reported in the returned field map. Supported field kinds:
// string, int, uint, []string, []uint, time.Time and pointers to those
// scalars (left nil when the field is absent or empty).
func Form(r *http.Request, dest any) (map[string]string, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes())
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}

	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("bind: Form needs a pointer to a struct, got %T", dest)
	}
	rv = rv.Elem()
	rt := rv.Type()

	fields := map[string]string{}
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		name := sf.Tag.Get("form")
		if name == "" || name == "-" || !sf.IsExported() {
			continue
		}
		values, ok := r.PostForm[name]
		if !ok {
			// products[] is how browsers post repeated checkboxes.
			values, ok = r.PostForm[name+"[]"]
		}
		if !ok || len(values) == 0 {
			continue
		}
		if err := setField(rv.Field(i), values); err != nil {
			fields[name] = fmt.Sprintf("%s %s", name, err.Error())
		}
	}

	for k, v := range validate.Struct(dest) {
		if _, seen := fields[k]; !seen {
			fields[k] = v
		}
	}
	if len(fields) > 0 {
		return fields, nil
	}
	return nil, nil
}

func setField(fv reflect.Value, values []string) error {
	if fv.Kind() == reflect.Ptr {
		raw := strings.TrimSpace(values[0])
		if raw == "" {
			return nil
		}
		p := reflect.New(fv.Type().Elem())
		if err := setScalar(p.Elem(), raw); err != nil {
			return err
		}
		fv.Set(p)
		return nil
	}

	if fv.Kind() == reflect.Slice {
		out := reflect.MakeSlice(fv.Type(), 0, len(values))
		for _, raw := range values {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			el := reflect.New(fv.Type().Elem()).Elem()
			if err := setScalar(el, raw); err != nil {
				return err
			}
			out = reflect.Append(out, el)
		}
		fv.Set(out)
		return nil
	}

	return setScalar(fv, strings.TrimSpace(values[0]))
}

func setScalar(fv reflect.Value, raw string) error {
	if fv.Type() == timeType {
		if raw == "" {
			return nil
		}
		for _, layout := range FormTimeLayouts {
			if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
				fv.Set(reflect.ValueOf(t))
				return nil
			}
		}
		return fmt.Errorf("is not a valid date")
	}

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Int, reflect.Int32, reflect.Int64:
		if raw == "" {
			return nil
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("must be an integer")
		}
		fv.SetInt(n)
	case reflect.Uint, reflect.Uint32, reflect.Uint64:
		if raw == "" {
			return nil
		}
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("must be a positive integer")
		}
		fv.SetUint(n)
	case reflect.Bool:
		fv.SetBool(raw == "1" || strings.EqualFold(raw, "true") || raw == "on")
	default:
		return fmt.Errorf("has unsupported type %s", fv.Type())
	}
	return nil
}
