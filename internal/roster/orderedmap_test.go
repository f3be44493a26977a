package roster

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestOrderedMapKeepsInsertionOrder(t *testing.T) {
	m := NewOrderedMap[int]()
	m.Set("zeta", 1)
	m.Set("alpha", 2)
	m.Set("mid", 3)
	m.Set("zeta", 4)

	if diff := cmp.Diff([]string{"zeta", "alpha", "mid"}, m.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
	if v, _ := m.Get("zeta"); v != 4 {
		t.Errorf("Get(zeta) = %d, want 4", v)
	}

	m.Delete("alpha")
	if m.Has("alpha") || m.Len() != 2 {
		t.Errorf("Delete(alpha) left Len() = %d", m.Len())
	}
}

func TestOrderedMapNilSafe(t *testing.T) {
	var m *OrderedMap[string]
	if m.Len() != 0 || m.Has("x") || m.Keys() != nil {
		t.Error("nil map should read as empty")
	}
	m.Each(func(string, string) { t.Error("Each visited an entry of a nil map") })
	if got := m.Clone(); got.Len() != 0 {
		t.Errorf("Clone() of nil has %d entries", got.Len())
	}
}

func TestOrderedMapJSON(t *testing.T) {
	m := NewOrderedMap[string]()
	m.Set("M", "6\"")
	m.Set("A", "<3>")
	m.Set("BS", "3+")

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	want := `{"M":"6\"","A":"<3>","BS":"3+"}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}

	var back OrderedMap[string]
	if err := json.Unmarshal([]byte(`{"z":"1","a":"2"}`), &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if diff := cmp.Diff([]string{"z", "a"}, back.Keys()); diff != "" {
		t.Errorf("Unmarshal() order mismatch (-want +got):\n%s", diff)
	}
}

func TestOrderedMapUnmarshalRejectsArray(t *testing.T) {
	var m OrderedMap[string]
	if err := json.Unmarshal([]byte(`["a"]`), &m); err == nil {
		t.Error("expected error decoding an array")
	}
}
