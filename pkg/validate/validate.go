// Package validate checks struct fields against rules declared in a
// `validate` tag and reports one message per failing field.
//
// Rules, comma separated:
//
//	required        not zero, not blank, not nil
//	nullable        skip the remaining rules when the field is empty
//	email           syntactically valid address
//	min=N / max=N   strings: rune length; numbers: value
//	gte=N / lte=N   numeric bounds (ints, floats, decimal.Decimal)
//	in=a,b,c        one of the listed values; must be the last rule
//	date            parseable as RFC3339 or 2006-01-02
//
// Field names in the result come from the json tag, then the form tag,
// then the lower-cased Go name.
//
//	type ProductInput struct {
//	    Name  string          `json:"name"  validate:"required,max=255"`
//	    Price decimal.Decimal `json:"price" validate:"gte=0"`
//	}
package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Struct validates v (a struct or pointer to one). An empty map means valid.
func Struct(v any) map[string]string {
	errs := make(map[string]string)
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return errs
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		tag := sf.Tag.Get("validate")
		if tag == "" || !sf.IsExported() {
			continue
		}

		name := FieldName(sf)
		value := rv.Field(i)
		rules := splitRules(tag)

		if hasRule(rules, "nullable") && isEmpty(value) {
			continue
		}
		for _, rule := range rules {
			if rule == "nullable" {
				continue
			}
			if msg := apply(rule, name, value); msg != "" {
				errs[name] = msg
				break
			}
		}
	}
	return errs
}

func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

// FieldName is the name a struct field is reported under.
func FieldName(f reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(key), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return strings.ToLower(f.Name)
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

func apply(rule, field string, v reflect.Value) string {
	key, param, _ := strings.Cut(rule, "=")

	if key == "required" {
		if missing(v) {
			return fmt.Sprintf("The %s field is required.", field)
		}
		return ""
	}

	// Remaining rules look through pointers; a nil pointer has nothing to check.
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	raw := asString(v)

	switch key {
	case "email":
		if !emailRE.MatchString(raw) {
			return fmt.Sprintf("The %s must be a valid email address.", field)
		}
	case "date":
		if _, err := parseDate(raw); err != nil {
			return fmt.Sprintf("The %s is not a valid date.", field)
		}
	case "min":
		n := mustDecimal(param)
		if isNumeric(v) {
			if toDecimal(v).LessThan(n) {
				return fmt.Sprintf("The %s must be at least %s.", field, param)
			}
		} else if decimal.NewFromInt(int64(len([]rune(raw)))).LessThan(n) {
			return fmt.Sprintf("The %s must be at least %s characters.", field, param)
		}
	case "max":
		n := mustDecimal(param)
		if isNumeric(v) {
			if toDecimal(v).GreaterThan(n) {
				return fmt.Sprintf("The %s must not be greater than %s.", field, param)
			}
		} else if decimal.NewFromInt(int64(len([]rune(raw)))).GreaterThan(n) {
			return fmt.Sprintf("The %s must not exceed %s characters.", field, param)
		}
	case "gte":
		if toDecimal(v).LessThan(mustDecimal(param)) {
			return fmt.Sprintf("The %s must be greater than or equal to %s.", field, param)
		}
	case "lte":
		if toDecimal(v).GreaterThan(mustDecimal(param)) {
			return fmt.Sprintf("The %s must be less than or equal to %s.", field, param)
		}
	case "in":
		for _, allowed := range strings.Split(param, ",") {
			if raw == strings.TrimSpace(allowed) {
				return ""
			}
		}
		return fmt.Sprintf("The selected %s is invalid.", field)
	}
	return ""
}

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as date", s)
}

// missing is isEmpty for required. A set pointer still counts as missing
// when it points at blank text or an empty collection; a pointed-at zero
// number was given on purpose.
func missing(v reflect.Value) bool {
	if v.Kind() != reflect.Ptr {
		return isEmpty(v)
	}
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return true
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.String, reflect.Slice, reflect.Map:
		return isEmpty(v)
	}
	return false
}

func isEmpty(v reflect.Value) bool {
	if v.Type() == decimalType {
		return false
	}
	if t, ok := v.Interface().(time.Time); ok {
		return t.IsZero()
	}
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	}
	return false
}

func isNumeric(v reflect.Value) bool {
	if v.Type() == decimalType {
		return true
	}
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func toDecimal(v reflect.Value) decimal.Decimal {
	if v.Type() == decimalType {
		return v.Interface().(decimal.Decimal)
	}
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return decimal.NewFromInt(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return decimal.NewFromInt(int64(v.Uint()))
	case reflect.Float32, reflect.Float64:
		return decimal.NewFromFloat(v.Float())
	}
	return mustDecimal(asString(v))
}

func asString(v reflect.Value) string {
	if v.Kind() == reflect.String {
		return v.String()
	}
	if v.Kind() == reflect.Int || v.Kind() == reflect.Int64 {
		return strconv.FormatInt(v.Int(), 10)
	}
	return fmt.Sprintf("%v", v.Interface())
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// splitRules splits on commas, except that everything after "in=" belongs to
// that rule.
func splitRules(tag string) []string {
	var rules []string
	for tag != "" {
		if strings.HasPrefix(tag, "in=") {
			rules = append(rules, tag)
			break
		}
		rule, rest, _ := strings.Cut(tag, ",")
		if rule = strings.TrimSpace(rule); rule != "" {
			rules = append(rules, rule)
		}
		tag = rest
	}
	return rules
}

func hasRule(rules []string, target string) bool {
	for _, r := range rules {
		if r == target {
			return true
		}
	}
	return false
}
