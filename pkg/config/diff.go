package config

import (
	"reflect"
	"strings"
)

// ChangedSections returns the yaml names of the top-level sections whose
// values differ between old and new.
func ChangedSections(old, new *Config) []string {
	if old == nil || new == nil {
		return nil
	}

	ov := reflect.ValueOf(old).Elem()
	nv := reflect.ValueOf(new).Elem()
	t := ov.Type()

	var changed []string

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)

		if f.PkgPath != "" { // unexported
			continue
		}

		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" {
			continue
		}

		if !reflect.DeepEqual(ov.Field(i).Interface(), nv.Field(i).Interface()) {
			changed = append(changed, name)
		}
	}

	return changed
}
