package types

// Trigger references an operator the client may invoke, with the parameters
// to invoke it with. Existence of the operator is not checked here.
type Trigger struct {
	operator string
	params   map[string]any
}

// NewTrigger returns a Trigger for operator. params is copied.
func NewTrigger(operator string, params map[string]any) *Trigger {
	t := &Trigger{operator: operator}
	if params != nil {
		t.params = make(map[string]any, len(params))
		for key, value := range params {
			t.params[key] = value
		}
	}
	return t
}

// Operator returns the referenced operator identifier.
func (t *Trigger) Operator() string { return t.operator }

// Params returns a copy of the parameters, or nil.
func (t *Trigger) Params() map[string]any {
	if t.params == nil {
		return nil
	}
	out := make(map[string]any, len(t.params))
	for key, value := range t.params {
		out[key] = value
	}
	return out
}

func (t *Trigger) Descriptor() Descriptor {
	var params any
	if p := t.Params(); p != nil {
		params = p
	}
	return Descriptor{
		"name":     "Trigger",
		"operator": t.operator,
		"params":   params,
	}
}
