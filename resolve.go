package appconf

import "reflect"

// resolveBind computes the value for b against the ordered providers, highest
// priority first. The set-cache is checked by the caller; this function only
// runs when no cached value exists.
//
// Providers are visited in strict priority order. A Defaulted answer does not
// count as resolved: its wrapped value is remembered and used only if nothing
// else, including lower-priority providers, bind defaults, and the static
// default, produces a value. In ModeAppend every provider contributes;
// list answers are concatenated in priority order and scalars are appended as
// singletons. Otherwise the first real answer wins.
func resolveBind(b *Bind, providers []Provider, bindDefaults map[string]any) (any, error) {
	var result any
	var deferredDefault any

	for _, p := range providers {
		key := p.BindKey(b)
		if key == "" {
			continue
		}
		value := p.Get(key)
		if value == nil {
			continue
		}
		if d, ok := value.(Defaulted); ok {
			if deferredDefault == nil {
				deferredDefault = d.Value
			}
			continue
		}

		if result == nil {
			result = value
			continue
		}
		if b.mode == ModeAppend {
			if list, ok := asList(result); ok {
				// Copy before appending so provider-owned slices stay intact.
				merged := append(make([]any, 0, len(list)+1), list...)
				if more, ok := asList(value); ok {
					result = append(merged, more...)
				} else {
					result = append(merged, value)
				}
			}
		}
		// Resolved and not appending: lower-priority answers are ignored.
	}

	if result == nil {
		result = bindDefaults[b.name]
	}
	if result == nil && b.hasDefault {
		result = b.defaultValue
	}
	if result == nil {
		result = deferredDefault
	}

	return applyConverter(result, b.converter)
}

// applyConverter maps fn element-wise over list results and once over
// scalars. A nil result never reaches the converter.
func applyConverter(result any, fn Converter) (any, error) {
	if fn == nil || result == nil {
		return result, nil
	}

	list, ok := asList(result)
	if !ok {
		return fn(result)
	}

	converted := make([]any, len(list))
	for i, elem := range list {
		v, err := fn(elem)
		if err != nil {
			return nil, err
		}
		converted[i] = v
	}
	return converted, nil
}

// asList normalizes any slice or array value (except []byte) to []any.
func asList(value any) ([]any, bool) {
	if list, ok := value.([]any); ok {
		return list, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if _, isBytes := value.([]byte); isBytes {
		return nil, false
	}
	list := make([]any, rv.Len())
	for i := range list {
		list[i] = rv.Index(i).Interface()
	}
	return list, true
}
