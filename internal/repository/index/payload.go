package index

// Payload is the PUT /{index} body.
type Payload struct {
	Mappings MappingsBody        `json:"mappings"`
	Aliases  map[string]struct{} `json:"aliases,omitempty"`
}

// MappingsBody carries the doc type in _meta and one property per field.
type MappingsBody struct {
	Meta       map[string]string   `json:"_meta"`
	Properties map[string]Property `json:"properties"`
}

// Property is a single field mapping. Norms is only set for types that
// accept it.
type Property struct {
	Type  string `json:"type"`
	Norms *bool  `json:"norms,omitempty"`
}

// BuildPayload renders the creation body for spec. Fields missing from
// spec.Mappings fall back to an exact-match keyword without norms.
func BuildPayload(spec Spec) Payload {
	props := make(map[string]Property, len(spec.Fields))
	for _, f := range spec.Fields {
		fm := spec.Mappings.For(f)
		p := Property{Type: fm.Type}
		if fm.SupportsNorms() {
			norms := fm.UseNorms
			p.Norms = &norms
		}
		props[f] = p
	}

	out := Payload{
		Mappings: MappingsBody{
			Meta:       map[string]string{"doc_type": spec.DocType},
			Properties: props,
		},
	}
	if spec.LinkAlias != "" {
		out.Aliases = map[string]struct{}{spec.LinkAlias: {}}
	}
	return out
}
