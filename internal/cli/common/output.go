package common

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/crmarques/cloudstore/resource"
	"github.com/crmarques/cloudstore/yamlutil"
)

const (
	OutputAuto = "auto"
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

func ValidateOutputFormat(format string) error {
	switch format {
	case OutputAuto, OutputText, OutputJSON, OutputYAML:
		return nil
	default:
		return ValidationError("invalid output format: use auto, text, json, or yaml", nil)
	}
}

// WriteOutput renders value in the selected format. A --jq expression is
// applied first; its result is then printed as JSON in text mode.
func WriteOutput[T any](command *cobra.Command, globalFlags *GlobalFlags, value T, renderText func(io.Writer, T) error) error {
	if isNilOutputValue(value) {
		return nil
	}

	format := OutputAuto
	expression := ""
	if globalFlags != nil {
		format = globalFlags.Output
		expression = strings.TrimSpace(globalFlags.JQ)
	}

	if expression != "" {
		filtered, err := resource.ApplyJQ(command.Context(), value, expression)
		if err != nil {
			return err
		}
		if format == OutputAuto || format == OutputText {
			return writeJQText(command.OutOrStdout(), filtered)
		}
		return writeStructured(command.OutOrStdout(), format, filtered)
	}

	switch format {
	case OutputAuto, OutputText:
		if renderText != nil {
			return renderText(command.OutOrStdout(), value)
		}
		_, err := fmt.Fprintln(command.OutOrStdout(), value)
		return err
	default:
		return writeStructured(command.OutOrStdout(), format, value)
	}
}

func WriteText(command *cobra.Command, globalFlags *GlobalFlags, text string) error {
	return WriteOutput(command, globalFlags, text, func(w io.Writer, value string) error {
		_, err := fmt.Fprintln(w, value)
		return err
	})
}

func writeStructured(w io.Writer, format string, value any) error {
	switch format {
	case OutputJSON:
		encoded, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(encoded))
		return err
	case OutputYAML:
		plain, err := toPlain(value)
		if err != nil {
			return err
		}
		encoded, err := yamlutil.Marshal(plain)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(w, string(encoded))
		return err
	default:
		return ValidationError("invalid output format: use auto, text, json, or yaml", nil)
	}
}

// toPlain round-trips value through JSON so resources marshal through their
// MarshalJSON in yaml output too.
func toPlain(value any) (any, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var plain any
	if err := json.Unmarshal(encoded, &plain); err != nil {
		return nil, err
	}
	return plain, nil
}

func writeJQText(w io.Writer, value any) error {
	items, isList := value.([]any)
	if !isList {
		items = []any{value}
	}
	for _, item := range items {
		if text, ok := item.(string); ok {
			if _, err := fmt.Fprintln(w, text); err != nil {
				return err
			}
			continue
		}
		encoded, err := json.Marshal(item)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, string(encoded)); err != nil {
			return err
		}
	}
	return nil
}

type fieldSource interface {
	Fields() []string
	Serialize() map[string]any
}

// RenderResourceText prints one "field: value" line per field, in field order.
func RenderResourceText(w io.Writer, object resource.Object) error {
	source, ok := object.(fieldSource)
	if !ok {
		_, err := fmt.Fprintln(w, object)
		return err
	}

	serialized := source.Serialize()
	for _, name := range source.Fields() {
		if _, err := fmt.Fprintf(w, "%s: %s\n", name, formatScalar(serialized[name])); err != nil {
			return err
		}
	}
	return nil
}

var collectionColumns = []string{"id", "type", "name"}

// RenderCollectionText prints the items as an aligned table followed by the
// listing metadata.
func RenderCollectionText(w io.Writer, collection *resource.Collection, noColor bool) error {
	rows := make([][]string, 0, collection.Len())
	for _, item := range collection.Items() {
		source, ok := item.(fieldSource)
		if !ok {
			rows = append(rows, []string{formatScalar(item), "", ""})
			continue
		}
		serialized := source.Serialize()
		row := make([]string, len(collectionColumns))
		for idx, column := range collectionColumns {
			row[idx] = formatScalar(serialized[column])
		}
		rows = append(rows, row)
	}

	widths := make([]int, len(collectionColumns))
	for idx, header := range collectionColumns {
		widths[idx] = len(header)
	}
	for _, row := range rows {
		for idx, cell := range row {
			widths[idx] = max(widths[idx], len(cell))
		}
	}

	header := color.New(color.Bold, color.FgCyan)
	if noColor {
		header.DisableColor()
	}
	headerCells := make([]string, len(collectionColumns))
	for idx, column := range collectionColumns {
		headerCells[idx] = header.Sprint(padRight(strings.ToUpper(column), widths[idx]))
	}
	if _, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(headerCells, "  "), " ")); err != nil {
		return err
	}
	for _, row := range rows {
		cells := make([]string, len(row))
		for idx, cell := range row {
			cells[idx] = padRight(cell, widths[idx])
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " ")); err != nil {
			return err
		}
	}

	metaKeys := collection.MetaKeys()
	sort.Strings(metaKeys)
	for _, key := range metaKeys {
		value, _ := collection.Meta(key)
		if _, err := fmt.Fprintf(w, "%s: %s\n", key, formatScalar(value)); err != nil {
			return err
		}
	}
	return nil
}

func padRight(value string, width int) string {
	if len(value) >= width {
		return value
	}
	return value + strings.Repeat(" ", width-len(value))
}

func formatScalar(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case map[string]any, []any:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprint(typed)
		}
		return string(encoded)
	default:
		return fmt.Sprint(typed)
	}
}

func isNilOutputValue[T any](value T) bool {
	anyValue := any(value)
	if anyValue == nil {
		return true
	}

	reflected := reflect.ValueOf(anyValue)
	switch reflected.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return reflected.IsNil()
	default:
		return false
	}
}
