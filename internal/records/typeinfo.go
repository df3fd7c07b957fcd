package records

import (
	"reflect"
	"strings"
)

// FieldInfo describes one field of a record type.
type FieldInfo struct {
	Name     string      `json:"name"`
	Type     string      `json:"type"` // "string", "number", "integer", "date", "object"
	Required bool        `json:"required"`
	Rules    []string    `json:"rules,omitempty"`
	Fields   []FieldInfo `json:"fields,omitempty"`
}

// TypeInfo describes a record kind and the fields it accepts.
// Returned by GET /api/v1/types and GET /api/v1/types/:kind.
type TypeInfo struct {
	Kind        string      `json:"kind"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	UniqueField string      `json:"uniqueField,omitempty"`
	DateField   string      `json:"dateField"`
	HasSummary  bool        `json:"hasSummary"`
	Fields      []FieldInfo `json:"fields"`
}

// Describe derives field information from the json and validate tags of a
// record struct. Embedded structs (the storage metadata) are skipped.
func Describe(sample any) []FieldInfo {
	t := reflect.TypeOf(sample)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return describeStruct(t)
}

func describeStruct(t reflect.Type) []FieldInfo {
	var out []FieldInfo
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous || !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		info := FieldInfo{Name: name}
		for _, rule := range strings.Split(f.Tag.Get("validate"), ",") {
			switch rule {
			case "", "omitempty":
			case "required":
				info.Required = true
			default:
				info.Rules = append(info.Rules, rule)
			}
		}

		ft := f.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		switch {
		case ft.Name() == "Date":
			info.Type = "date"
		case ft.Kind() == reflect.String:
			info.Type = "string"
		case ft.Kind() == reflect.Int:
			info.Type = "integer"
		case ft.Kind() == reflect.Float64:
			info.Type = "number"
		case ft.Kind() == reflect.Struct:
			info.Type = "object"
			info.Fields = describeStruct(ft)
		default:
			info.Type = ft.Kind().String()
		}
		out = append(out, info)
	}
	return out
}
