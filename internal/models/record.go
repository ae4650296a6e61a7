package models

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

// Row is a single source row addressed by column name.
type Row map[string]string

var recordValidator = validator.New()

// decodeRow maps the named cells of row onto the mapstructure-tagged fields of out.
// Cells that no field binds to are reported as an error.
func decodeRow(row Row, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		TagName:     "mapstructure",
		ErrorUnused: true,
	})
	if err != nil {
		return fmt.Errorf("failed to build row decoder: %w", err)
	}

	return decoder.Decode(map[string]string(row))
}

// isValid reports whether every validate-tagged field of record is satisfied.
func isValid(record interface{}) bool {
	return recordValidator.Struct(record) == nil
}

// columnsOf returns the column names a record type binds, in field order,
// and the subset of them tagged as required.
func columnsOf(record interface{}) (columns []string, keyColumns []string) {
	t := reflect.TypeOf(record)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := strings.Split(field.Tag.Get("mapstructure"), ",")[0]
		if name == "" || name == "-" {
			continue
		}
		columns = append(columns, name)
		if strings.Contains(field.Tag.Get("validate"), "required") {
			keyColumns = append(keyColumns, name)
		}
	}

	return columns, keyColumns
}
