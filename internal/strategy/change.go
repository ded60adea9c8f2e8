package strategy

import (
	"reflect"
)

// onChange publishes when the current value differs from the last
// published value. Three comparison modes share one implementation:
//
//   - no threshold: exact equality on every leaf
//   - global threshold: numeric leaves use |cur-prev| > t, others exact
//   - per-field thresholds: dot-path keyed fields use their own
//     threshold, unlisted fields use exact equality
//
// Nested maps are traversed to their leaf values; intermediate containers
// are never compared directly. A key added or removed at any depth is a
// structural change and always publishes.
type onChange struct {
	global *float64
	fields map[string]float64
}

// OnChange returns a change-detection strategy using full-value equality.
func OnChange() Strategy {
	return &onChange{}
}

// OnChangeThreshold returns a change-detection strategy where numeric
// leaves publish only when they moved by strictly more than threshold.
// The comparison is strict (>, not >=) so floating-point noise sitting
// exactly at the boundary never publishes.
func OnChangeThreshold(threshold float64) Strategy {
	return &onChange{global: &threshold}
}

// OnChangeFields returns a change-detection strategy with per-field
// numeric thresholds keyed by dot-path (e.g. "sensors.temperature").
// Fields without an entry fall back to exact equality.
func OnChangeFields(thresholds map[string]float64) Strategy {
	return &onChange{fields: thresholds}
}

func (o *onChange) Bind(Clock) {}

func (o *onChange) ShouldPublish(current, previous any) bool {
	if previous == nil {
		return true
	}
	return changed("", current, previous, o.thresholdFor)
}

func (o *onChange) OnPublished() {}

// thresholdFor returns the numeric threshold for a leaf path, if any.
func (o *onChange) thresholdFor(path string) (float64, bool) {
	if o.fields != nil {
		t, ok := o.fields[path]
		return t, ok
	}
	if o.global != nil {
		return *o.global, true
	}
	return 0, false
}

// changed walks current and previous in lockstep and reports whether any
// leaf triggers a publish under the given threshold lookup.
func changed(path string, current, previous any, thresholdFor func(string) (float64, bool)) bool {
	curMap, curIsMap := asStringMap(current)
	prevMap, prevIsMap := asStringMap(previous)

	// One side a container, the other a leaf: structural change.
	if curIsMap != prevIsMap {
		return true
	}

	if curIsMap {
		for key, curVal := range curMap {
			prevVal, ok := prevMap[key]
			if !ok {
				return true // key added
			}
			if changed(childPath(path, key), curVal, prevVal, thresholdFor) {
				return true
			}
		}
		for key := range prevMap {
			if _, ok := curMap[key]; !ok {
				return true // key removed
			}
		}
		return false
	}

	return leafChanged(path, current, previous, thresholdFor)
}

// leafChanged compares two leaf values under the threshold rule for path.
func leafChanged(path string, current, previous any, thresholdFor func(string) (float64, bool)) bool {
	cur, curNum := asFloat(current)
	prev, prevNum := asFloat(previous)

	if curNum && prevNum {
		if t, ok := thresholdFor(path); ok {
			delta := cur - prev
			if delta < 0 {
				delta = -delta
			}
			return delta > t
		}
		return cur != prev
	}

	return !reflect.DeepEqual(current, previous)
}

// childPath extends a dot-path with a key.
func childPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// asStringMap converts any string-keyed map to map[string]any.
func asStringMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}

	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}

	m := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return m, true
}

// asFloat converts any integer or float value to float64.
func asFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return 0, false
	}

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
