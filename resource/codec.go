package resource

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// FieldCodec converts one field between its wire form and its in-memory form.
// Encode must accept any value Decode may produce and pass unknown values
// through unchanged.
type FieldCodec struct {
	Encode func(value any) any
	Decode func(value any) (any, error)
}

var fieldCodecs = map[string]FieldCodec{
	"created":    TimestampCodec,
	"modified":   TimestampCodec,
	"expiration": TimestampCodec,
}

// TimestampCodec maps ISO-8601 strings to time.Time.
var TimestampCodec = FieldCodec{
	Encode: encodeTimestamp,
	Decode: decodeTimestamp,
}

// LookupFieldCodec returns the codec registered for a field name. The table is
// shared by every kind.
func LookupFieldCodec(name string) (FieldCodec, bool) {
	codec, ok := fieldCodecs[name]
	return codec, ok
}

// CodecFields lists the field names that carry a codec, sorted.
func CodecFields() []string {
	names := make([]string, 0, len(fieldCodecs))
	for name := range fieldCodecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02",
}

func decodeTimestamp(value any) (any, error) {
	raw, ok := value.(string)
	if !ok {
		return value, nil
	}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return value, nil
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, nil
		}
	}
	return nil, fmt.Errorf("%q is not an ISO-8601 timestamp", raw)
}

func encodeTimestamp(value any) any {
	switch typed := value.(type) {
	case time.Time:
		return typed.Format(time.RFC3339Nano)
	case *time.Time:
		if typed == nil {
			return nil
		}
		return typed.Format(time.RFC3339Nano)
	default:
		return value
	}
}

func decodeField(name string, value any) (any, error) {
	codec, ok := LookupFieldCodec(name)
	if !ok || codec.Decode == nil {
		return value, nil
	}

	decoded, err := codec.Decode(value)
	if err != nil {
		return nil, constructionError(fmt.Sprintf("field %q could not be decoded", name), err)
	}
	return decoded, nil
}

func encodeField(name string, value any) any {
	codec, ok := LookupFieldCodec(name)
	if !ok || codec.Encode == nil {
		return value
	}
	return codec.Encode(value)
}
