package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lawnchairsociety/rosterforge/server/internal/describe"
	"github.com/lawnchairsociety/rosterforge/server/internal/registry"
	"github.com/lawnchairsociety/rosterforge/server/internal/roster"
	"github.com/lawnchairsociety/rosterforge/server/internal/rosz"
	"github.com/lawnchairsociety/rosterforge/server/internal/source"
	"github.com/lawnchairsociety/rosterforge/server/internal/text"
)

const registryDoc = `{
  "name": "Patrol",
  "info": {"game": "Warhammer 40,000", "name": "Space Marines", "rulebookVersion": "10.1", "appVersion": "1.5.3", "hash": "abc"},
  "meta": {"points": 500},
  "errors": [{"name": "Patrol", "message": "Too few units"}],
  "assets": {"included": [
    {"designation": "Captain", "aspects": {"Type": "game piece"}, "meta": {"ttsDamageStat": "W"},
     "stats": {"W": {"value": 5, "processed": {"format": {"current": "5"}}}}},
    {"designation": "Intercessor Squad", "classification": "Battleline", "assets": {"included": [
      {"designation": "Intercessor", "aspects": {"Type": "game piece"}, "quantity": 5, "meta": {"ttsPartOfGroup": true}}
    ]}}
  ]}
}`

func zipOf(t *testing.T, name, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := w.Write([]byte(body)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return buf.Bytes()
}

func testOptions() Options {
	return Options{Describer: describe.New(text.DefaultPalette())}
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
		wantErr  bool
	}{
		{"army.regiztry", FormatRegistry, false},
		{"Army.ROSZ", FormatRosz, false},
		{"dir/army.ros", FormatRos, false},
		{"army.json", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := FormatFor(tt.filename)
		if (err != nil) != tt.wantErr {
			t.Errorf("FormatFor(%q) error = %v, wantErr %v", tt.filename, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("FormatFor(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

func TestParseRegistry(t *testing.T) {
	r, err := Parse("patrol.regiztry", zipOf(t, "patrol.json", registryDoc), testOptions())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if r.Name != "Patrol" || r.Edition != "10" || r.App != registry.AppName {
		t.Errorf("roster header = %q/%q/%q", r.Name, r.Edition, r.App)
	}
	if diff := cmp.Diff([]string{"Patrol: Too few units"}, r.Errors); diff != "" {
		t.Errorf("Errors mismatch (-want +got):\n%s", diff)
	}
	if v, _ := r.Meta.Get("points"); v != float64(500) {
		t.Errorf("meta points = %v, want 500", v)
	}

	var got []string
	for _, id := range r.Order {
		g, _ := r.Groups.Get(id)
		got = append(got, g.Name+"/"+g.Type)
	}
	want := []string{"Intercessor Squad/group", "Captain/game piece"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSerializeRoundTrip(t *testing.T) {
	r, err := Parse("patrol.regiztry", zipOf(t, "patrol.json", registryDoc), testOptions())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	out, err := roster.Serialize(r, 2)
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	if !json.Valid(out) {
		t.Fatal("Serialize() produced invalid JSON")
	}
	back, err := roster.Decode(out)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if diff := cmp.Diff(r.Order, back.Order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(r.Groups.Keys(), back.Groups.Keys()); diff != "" {
		t.Errorf("group keys mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRoszOptions(t *testing.T) {
	r, err := Parse("army.ros", []byte(rosXML), Options{
		AllocationMode:  rosz.SeparateModels,
		DecorativeNames: "Brother",
		Describer:       describe.New(text.DefaultPalette()),
	})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if r.DecorativeNames != "Brother" {
		t.Errorf("DecorativeNames = %q, want Brother", r.DecorativeNames)
	}
	g, _ := r.Groups.Get(r.Order[0])
	if g.GamePieces.Len() != 2 {
		t.Fatalf("squad has %d game pieces, want the stack and one split model", g.GamePieces.Len())
	}
	var names []string
	g.GamePieces.Each(func(_ string, a *roster.Asset) { names = append(names, a.Name) })
	if !strings.Contains(strings.Join(names, "|"), "Marine w/ Plasma gun") {
		t.Errorf("game pieces = %v, want a model carrying the plasma gun", names)
	}
}

const rosXML = `<roster name="Army" gameSystemId="sys-352e-adc2-7639-d6a9" gameSystemName="40k" gameSystemRevision="3" battleScribeVersion="2.03">
  <forces><force name="Force"><selections>
    <selection name="Tactical Squad" type="unit" number="1">
      <selections>
        <selection name="Marine" type="model" number="5"/>
        <selection name="Plasma gun" type="upgrade" number="1">
          <profiles><profile name="Plasma gun" typeName="Ranged Weapons"><characteristics>
            <characteristic name="Range">24"</characteristic>
            <characteristic name="Keywords">Hazardous</characteristic>
          </characteristics></profile></profiles>
        </selection>
      </selections>
    </selection>
  </selections></force></forces>
</roster>`

func TestParseErrors(t *testing.T) {
	deep := `{"name": "Root", "assets": {"included": [{"name": "A", "assets": {"included": [{"name": "B"}]}}]}}`
	tests := []struct {
		name     string
		filename string
		data     []byte
		opts     Options
		check    func(error) bool
	}{
		{"unknown extension", "army.txt", []byte("x"), Options{}, func(err error) bool { return errors.Is(err, ErrUnknownFormat) }},
		{"not a zip", "army.regiztry", []byte("x"), Options{}, func(err error) bool { return errors.Is(err, registry.ErrCorruptArchive) }},
		{"wrong system", "army.ros", []byte(strings.Replace(rosXML, rosz.GameSystemID, "sys-x", 1)), Options{}, func(err error) bool {
			return errors.Is(err, rosz.ErrUnsupportedGameSystem)
		}},
		{"too deep", "army.regiztry", zipOf(t, "a.json", deep), Options{MaxDepth: 1}, func(err error) bool {
			var de *source.DepthError
			return errors.As(err, &de)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.filename, tt.data, tt.opts)
			if err == nil || !tt.check(err) {
				t.Fatalf("Parse() error = %v", err)
			}
			if !IsInputCorruption(err) {
				t.Errorf("IsInputCorruption(%v) = false, want true", err)
			}
		})
	}
}

func TestIsInputCorruptionOtherErrors(t *testing.T) {
	if IsInputCorruption(errors.New("disk full")) {
		t.Error("IsInputCorruption(plain error) = true, want false")
	}
}
