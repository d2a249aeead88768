package slo

// MapForm serves form state from flattened dotted-path maps, as posted by the
// SLO editor.
type MapForm struct {
	Values map[string]any    `json:"values"`
	Errors map[string]string `json:"errors"`
}

func (f MapForm) GetFieldState(name string) FieldState {
	msg, ok := f.Errors[name]
	if !ok {
		return FieldState{}
	}
	if msg == "" {
		msg = "invalid"
	}
	return FieldState{Invalid: true, Error: msg}
}

func (f MapForm) GetValues(name string) any {
	return f.Values[name]
}

func (f MapForm) Watch(name string) any {
	return f.Values[name]
}
