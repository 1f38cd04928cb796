package domain

// DefaultFieldType is applied to fields absent from a Mappings set.
const DefaultFieldType = "keyword"

// FieldMapping is the engine type and scoring-norm usage of one field.
type FieldMapping struct {
	Type     string `json:"type" yaml:"type"`
	UseNorms bool   `json:"norms" yaml:"norms"`
}

// Mappings maps field names to their configured FieldMapping.
type Mappings map[string]FieldMapping

// For returns the mapping for field, or the exact-match keyword default
// (norms disabled) when the field is not configured.
func (m Mappings) For(field string) FieldMapping {
	if fm, ok := m[field]; ok && fm.Type != "" {
		return fm
	}
	return FieldMapping{Type: DefaultFieldType}
}

// SupportsNorms reports whether the engine accepts a norms setting for the type.
func (f FieldMapping) SupportsNorms() bool {
	return f.Type == "text" || f.Type == "keyword"
}
