package config

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// detectUnknownFields compares the settings read from a config file with
// the known sections and fields and returns one warning per unknown key.
func detectUnknownFields(settings map[string]any) []string {
	var warnings []string

	sections := getFieldTypes(reflect.TypeOf(Config{}))
	for _, key := range sortedKeys(settings) {
		if key == "$schema" {
			continue // $schema is explicitly allowed and ignored
		}
		sectionType, ok := sections[key]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown field %q at root level (ignored)", key))
			continue
		}

		nested, ok := settings[key].(map[string]any)
		if !ok {
			continue
		}
		known := getFieldTypes(sectionType)
		for _, field := range sortedKeys(nested) {
			if _, ok := known[field]; !ok {
				warnings = append(warnings, fmt.Sprintf("unknown field %q in section %q (ignored)", field, key))
			}
		}
	}

	return warnings
}

// getFieldTypes returns the mapstructure field names of a struct type with
// their types.
func getFieldTypes(t reflect.Type) map[string]reflect.Type {
	fields := make(map[string]reflect.Type)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}
		name := strings.Split(tag, ",")[0]
		if name != "" {
			fields[name] = field.Type
		}
	}
	return fields
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
