package hit

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/kailas-cloud/swapdex/internal/domain"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Hit
		wantErr bool
	}{
		{"ok", `{"_id":"x","_score":1.5}`, Hit{ID: "x", Score: 1.5}, false},
		{"extra fields", `{"_id":"u1","_score":0.2,"_index":"users_1","_source":{"a":1}}`, Hit{ID: "u1", Score: 0.2}, false},
		{"zero score", `{"_id":"x","_score":0}`, Hit{ID: "x"}, false},
		{"missing id", `{"_score":1.5}`, Hit{}, true},
		{"missing score", `{"_id":"x"}`, Hit{}, true},
		{"null score", `{"_id":"x","_score":null}`, Hit{}, true},
		{"not an object", `[1,2]`, Hit{}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode(json.RawMessage(tc.in))
			if tc.wantErr {
				if !errors.Is(err, domain.ErrDecodeFailure) {
					t.Fatalf("err = %v, want ErrDecodeFailure", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("Decode = %+v, want %+v", got, tc.want)
			}
		})
	}
}
