package alias

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/kailas-cloud/swapdex/internal/domain"
	"github.com/kailas-cloud/swapdex/internal/engine"
)

// --- Resolve ---

func TestResolve_Unbound(t *testing.T) {
	r, ms := newTestResolver(t)
	ms.getAliasFn = func(context.Context, string) (*engine.Response, error) {
		t.Fatal("GetAlias must not be called for an unbound alias")
		return nil, nil
	}

	got, err := r.Resolve(context.Background(), "users")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Resolve = %#v, want empty non-nil slice", got)
	}
}

func TestResolve_Bound(t *testing.T) {
	r, ms := newTestResolver(t)
	ms.aliasStatusFn = func(context.Context, string) (int, error) { return http.StatusOK, nil }
	ms.getAliasFn = func(_ context.Context, alias string) (*engine.Response, error) {
		if alias != "users" {
			t.Errorf("alias = %s", alias)
		}
		return &engine.Response{
			StatusCode: http.StatusOK,
			Body:       []byte(`{"users_2":{"aliases":{"users":{}}},"users_1":{"aliases":{"users":{}}}}`),
		}, nil
	}

	got, err := r.Resolve(context.Background(), "users")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "users_1" || got[1] != "users_2" {
		t.Errorf("Resolve = %v, want [users_1 users_2]", got)
	}
}

func TestResolve_UnexpectedExistsStatus(t *testing.T) {
	r, ms := newTestResolver(t)
	ms.aliasStatusFn = func(context.Context, string) (int, error) { return http.StatusInternalServerError, nil }

	if _, err := r.Resolve(context.Background(), "users"); !errors.Is(err, domain.ErrUnexpectedEngineState) {
		t.Fatalf("err = %v, want ErrUnexpectedEngineState", err)
	}
}

func TestResolve_BadBody(t *testing.T) {
	r, ms := newTestResolver(t)
	ms.aliasStatusFn = func(context.Context, string) (int, error) { return http.StatusOK, nil }
	ms.getAliasFn = func(context.Context, string) (*engine.Response, error) {
		return &engine.Response{StatusCode: http.StatusOK, Body: []byte(`[`)}, nil
	}

	if _, err := r.Resolve(context.Background(), "users"); !errors.Is(err, domain.ErrDecodeFailure) {
		t.Fatalf("err = %v, want ErrDecodeFailure", err)
	}
}

func TestResolve_VanishedBetweenCheckAndFetch(t *testing.T) {
	r, ms := newTestResolver(t)
	ms.aliasStatusFn = func(context.Context, string) (int, error) { return http.StatusOK, nil }

	got, err := r.Resolve(context.Background(), "users")
	if err != nil || len(got) != 0 {
		t.Fatalf("Resolve = (%v, %v), want empty", got, err)
	}
}

// --- Swap ---

func TestSwap_SingleRequest(t *testing.T) {
	r, ms := newTestResolver(t)

	calls := 0
	var got struct {
		Actions []map[string]map[string]string `json:"actions"`
	}
	ms.updateAliasesFn = func(_ context.Context, body []byte) (*engine.Response, error) {
		calls++
		if err := json.Unmarshal(body, &got); err != nil {
			t.Fatalf("body not JSON: %v", err)
		}
		return &engine.Response{StatusCode: http.StatusOK}, nil
	}

	if err := r.Swap(context.Background(), "users", "users_3", []string{"users_1", "users_2"}); err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if calls != 1 {
		t.Fatalf("UpdateAliases calls = %d, want 1", calls)
	}
	if len(got.Actions) != 3 {
		t.Fatalf("actions = %v", got.Actions)
	}
	add := got.Actions[0]["add"]
	if add["index"] != "users_3" || add["alias"] != "users" {
		t.Errorf("add = %v", add)
	}
	if got.Actions[1]["remove_index"]["index"] != "users_1" || got.Actions[2]["remove_index"]["index"] != "users_2" {
		t.Errorf("remove actions = %v", got.Actions[1:])
	}
}

func TestSwap_NoOldIndexOmitsRemove(t *testing.T) {
	raw, err := json.Marshal(SwapActions("users", "users_1", nil))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"actions":[{"add":{"index":"users_1","alias":"users"}}]}`
	if string(raw) != want {
		t.Errorf("body = %s, want %s", raw, want)
	}
}

func TestSwap_Rejected(t *testing.T) {
	r, ms := newTestResolver(t)
	ms.updateAliasesFn = func(context.Context, []byte) (*engine.Response, error) {
		return &engine.Response{StatusCode: http.StatusNotFound, Body: []byte(`{}`)}, nil
	}

	if err := r.Swap(context.Background(), "users", "users_3", nil); !errors.Is(err, domain.ErrAliasSwapFailed) {
		t.Fatalf("err = %v, want ErrAliasSwapFailed", err)
	}
}

func TestSwap_TransportError(t *testing.T) {
	r, ms := newTestResolver(t)
	boom := errors.New("reset")
	ms.updateAliasesFn = func(context.Context, []byte) (*engine.Response, error) { return nil, boom }

	err := r.Swap(context.Background(), "users", "users_3", nil)
	if !errors.Is(err, domain.ErrAliasSwapFailed) || !errors.Is(err, boom) {
		t.Fatalf("err = %v, want ErrAliasSwapFailed wrapping transport error", err)
	}
}
