package mcp

// ToolRecord holds the registered metadata, schema, and invoke adapter
// for one tool. Records are created once at registration and never
// mutated afterwards.
type ToolRecord struct {
	Name        string
	Title       string
	Description string
	Parameters  []ParameterSpec
	Required    []string

	invoke invoker
}

// Registry maps tool names to records while preserving registration
// order. Registration is expected to complete before any request is
// served; mutating the registry concurrently with request handling is
// the caller's responsibility to avoid.
type Registry struct {
	order   []string
	records map[string]*ToolRecord
}

// NewRegistry creates an empty tool registry.
func NewRegistry() (result *Registry) {
	result = &Registry{
		records: make(map[string]*ToolRecord),
	}

	return result
}

// Register inserts a record, replacing any record already held under
// the same name. Last registration wins; a replaced tool keeps its
// original position in listing order.
func (r *Registry) Register(rec *ToolRecord) {
	if _, exists := r.records[rec.Name]; !exists {
		r.order = append(r.order, rec.Name)
	}

	r.records[rec.Name] = rec
}

// Lookup returns the record registered under name, if any.
func (r *Registry) Lookup(name string) (result *ToolRecord, ok bool) {
	result, ok = r.records[name]
	return result, ok
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() (result []string) {
	result = make([]string, len(r.order))
	copy(result, r.order)

	return result
}

// Len returns the number of registered tools.
func (r *Registry) Len() (result int) {
	result = len(r.order)
	return result
}
