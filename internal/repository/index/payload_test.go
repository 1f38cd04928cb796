package index

import (
	"encoding/json"
	"testing"

	"github.com/kailas-cloud/swapdex/internal/domain"
)

func TestBuildPayload_FieldTypes(t *testing.T) {
	p := BuildPayload(Spec{
		DocType:  "user",
		Fields:   []string{"age", "email", "bio"},
		Mappings: domain.Mappings{"age": {Type: "integer", UseNorms: true}, "bio": {Type: "text", UseNorms: true}},
	})

	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got struct {
		Mappings struct {
			Meta       map[string]string         `json:"_meta"`
			Properties map[string]map[string]any `json:"properties"`
		} `json:"mappings"`
	}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.Mappings.Meta["doc_type"] != "user" {
		t.Errorf("_meta = %v", got.Mappings.Meta)
	}

	age := got.Mappings.Properties["age"]
	if age["type"] != "integer" {
		t.Errorf("age = %v, want type integer", age)
	}
	if _, ok := age["norms"]; ok {
		t.Errorf("age = %v, norms must be omitted for numeric types", age)
	}

	email := got.Mappings.Properties["email"]
	if email["type"] != "keyword" || email["norms"] != false {
		t.Errorf("email = %v, want keyword without norms", email)
	}

	bio := got.Mappings.Properties["bio"]
	if bio["type"] != "text" || bio["norms"] != true {
		t.Errorf("bio = %v, want text with norms", bio)
	}

	if len(got.Mappings.Properties) != 3 {
		t.Errorf("properties = %v, want exactly the requested fields", got.Mappings.Properties)
	}
}

func TestBuildPayload_LinkAlias(t *testing.T) {
	raw, _ := json.Marshal(BuildPayload(Spec{LinkAlias: "users"}))
	var got map[string]map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := got["aliases"]["users"]; !ok {
		t.Errorf("aliases = %v, want users", got["aliases"])
	}

	raw, _ = json.Marshal(BuildPayload(Spec{}))
	got = nil
	_ = json.Unmarshal(raw, &got)
	if _, ok := got["aliases"]; ok {
		t.Error("aliases must be omitted when not linking")
	}
}
