package engine

import "sort"

// Extra carries document fields the editor does not model (maker, install
// date, a floor's plan image, ...) so a load followed by a save keeps them.
// It is immutable once built; items copied by value share it.
type Extra struct {
	fields map[string]any
}

// NewExtra copies fields. Empty input gives nil.
func NewExtra(fields map[string]any) *Extra {
	if len(fields) == 0 {
		return nil
	}
	cp := make(map[string]any, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return &Extra{fields: cp}
}

func (e *Extra) Len() int {
	if e == nil {
		return 0
	}
	return len(e.fields)
}

func (e *Extra) Get(key string) (any, bool) {
	if e == nil {
		return nil, false
	}
	v, ok := e.fields[key]
	return v, ok
}

// Keys returns the field names sorted.
func (e *Extra) Keys() []string {
	if e == nil {
		return nil
	}
	keys := make([]string, 0, len(e.fields))
	for k := range e.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Fields returns a copy of the held fields.
func (e *Extra) Fields() map[string]any {
	if e == nil {
		return nil
	}
	cp := make(map[string]any, len(e.fields))
	for k, v := range e.fields {
		cp[k] = v
	}
	return cp
}
