package resource

import "encoding/json"

// CreateFromData converts a decoded JSON value into resources. Lists convert
// element-wise; objects are dispatched on their "type" discriminator, falling
// back to kind; resources are returned unchanged; numbers are normalized and
// every other value passes through.
func CreateFromData(kind *Kind, raw any, opts ...Option) (any, error) {
	return createFromData(kind, raw, buildOptions(opts).binding())
}

func createFromData(kind *Kind, raw any, b binding) (any, error) {
	switch typed := raw.(type) {
	case Object:
		return typed, nil
	case []any:
		items := make([]any, len(typed))
		for idx, item := range typed {
			converted, err := createFromData(kind, item, b)
			if err != nil {
				return nil, err
			}
			items[idx] = converted
		}
		return items, nil
	case map[string]any:
		data := make(map[string]any, len(typed))
		for key, value := range typed {
			decoded, err := decodeField(key, value)
			if err != nil {
				return nil, err
			}
			data[key] = decoded
		}

		target := b.registry.Lookup(data["type"], kind)
		r, err := newResource(target, data["id"], b)
		if err != nil {
			return nil, err
		}
		if err := r.Populate(data); err != nil {
			return nil, err
		}
		return target.newObject(r), nil
	case json.Number:
		return normalizeNumber(typed)
	default:
		return raw, nil
	}
}
