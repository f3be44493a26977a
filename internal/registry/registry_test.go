package registry

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lawnchairsociety/rosterforge/server/internal/source"
)

const sampleRegistry = `{
  "name": "Strike Force",
  "info": {"game": "Warhammer 40,000", "name": "Space Marines", "rulebookVersion": "10.2.0", "appVersion": "1.5.3", "hash": "abc123"},
  "meta": {"points": 1000, "detachment": "Gladius"},
  "errors": [{"name": "Roster", "message": "Too many HQ choices"}, {"name": "", "message": "Unsorted"}],
  "assets": {
    "traits": [],
    "included": [
      {
        "designation": "Intercessor Squad",
        "classification": "Battleline",
        "aspects": {"Type": "conceptual", "Group Traits": true, "Order Includes A–Z": true},
        "meta": {"ttsDamageStat": "W"},
        "keywords": {"Faction": ["Imperium", "Adeptus Astartes"], "Tags": ["internal"]},
        "allowed": {"classifications": ["Model"], "items": ["Wargear§Auspex"]},
        "assets": {
          "traits": [
            {"designation": "Oath of Moment", "classification": "Abilities", "text": "Re-roll\r\nhits."}
          ],
          "included": [
            {
              "designation": "Intercessor",
              "aspects": {"Type": "game piece"},
              "quantity": 4,
              "meta": {"ttsPartOfGroup": true},
              "stats": {
                "M": {"value": 6, "statOrder": 1, "processed": {"format": {"current": "6\""}}},
                "Pts": {"value": null, "statType": "numeric", "processed": {"numeric": {"current": 20}}},
                "Secret": {"value": 1, "visibility": "hidden", "processed": {"format": {"current": "1"}}}
              },
              "assets": {"traits": [], "included": []}
            }
          ]
        }
      },
      {
        "name": "Brother Kell",
        "designation": "Captain",
        "aspects": {"Type": "game piece", "Label": "Captain"},
        "errors": [{"name": "Captain", "message": "Missing warlord"}, "loose error"]
      }
    ]
  }
}`

func zipOf(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("Create(%s) error = %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("Write(%s) error = %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return buf.Bytes()
}

func TestExtractErrors(t *testing.T) {
	if _, err := Extract([]byte("not a zip")); !errors.Is(err, ErrCorruptArchive) {
		t.Errorf("Extract(garbage) error = %v, want ErrCorruptArchive", err)
	}

	two := zipOf(t, map[string]string{"a.json": "{}", "b.json": "{}"})
	if _, err := Extract(two); !errors.Is(err, ErrArchiveMemberCount) {
		t.Errorf("Extract(two members) error = %v, want ErrArchiveMemberCount", err)
	}

	empty := zipOf(t, map[string]string{})
	if _, err := Extract(empty); !errors.Is(err, ErrArchiveMemberCount) {
		t.Errorf("Extract(empty) error = %v, want ErrArchiveMemberCount", err)
	}
}

func TestLoad(t *testing.T) {
	doc, err := Loader{}.Load(zipOf(t, map[string]string{"roster.json": sampleRegistry}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	wantInfo := source.Info{
		Name:       "Strike Force",
		Game:       "Warhammer 40,000",
		DataSet:    "Space Marines",
		Edition:    "10",
		Version:    "10.2.0",
		App:        AppName,
		AppVersion: "1.5.3",
		Hash:       "abc123",
	}
	if diff := cmp.Diff(wantInfo, doc.Info); diff != "" {
		t.Errorf("Info mismatch (-want +got):\n%s", diff)
	}

	wantErrors := []string{"Roster: Too many HQ choices", "Unsorted"}
	if diff := cmp.Diff(wantErrors, doc.Errors); diff != "" {
		t.Errorf("Errors mismatch (-want +got):\n%s", diff)
	}
	if doc.Root.Errors != nil {
		t.Errorf("root errors should move to the document, got %v", doc.Root.Errors)
	}
	if v, _ := doc.Meta.Get("points"); v != float64(1000) {
		t.Errorf("meta points = %v, want 1000", v)
	}

	squad := doc.Root.Included[0]
	if !squad.Aspects.GroupTraits || !squad.Aspects.OrderIncludesAZ || squad.Aspects.Type != "conceptual" {
		t.Errorf("squad aspects = %+v", squad.Aspects)
	}
	if diff := cmp.Diff([]string{"Wargear§Auspex"}, squad.Allowed.Items); diff != "" {
		t.Errorf("allowed items mismatch (-want +got):\n%s", diff)
	}
	if got := squad.Traits[0].Text; got != "Re-roll\nhits." {
		t.Errorf("ability text = %q, want normalized newlines", got)
	}

	model := squad.Included[0]
	if !model.IsGamePiece() || !model.PartOfGroup() || model.Quantity != "4" {
		t.Errorf("model = type %q flagged %v quantity %q", model.Aspects.Type, model.PartOfGroup(), model.Quantity)
	}
	if len(model.Stats) != 3 {
		t.Fatalf("model has %d stats, want 3", len(model.Stats))
	}
	pts := model.Stats[1]
	if pts.HasValue || pts.Numeric == nil || *pts.Numeric != 20 {
		t.Errorf("Pts stat = %+v", pts)
	}

	captain := doc.Root.Included[1]
	if captain.Aspects.Label != "Captain" {
		t.Errorf("Label = %q, want Captain", captain.Aspects.Label)
	}
	if diff := cmp.Diff([]string{"Captain: Missing warlord", "loose error"}, captain.Errors); diff != "" {
		t.Errorf("captain errors mismatch (-want +got):\n%s", diff)
	}
	if captain.Traits != nil || captain.Included != nil {
		t.Error("missing assets should decode as no children")
	}
}

func TestDecodeInvalidJSON(t *testing.T) {
	if _, err := Decode([]byte("{not json"), 0); !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("Decode() error = %v, want ErrInvalidDocument", err)
	}
	if _, err := Decode([]byte(`[1, 2]`), 0); !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("Decode(array) error = %v, want ErrInvalidDocument", err)
	}
}

func TestDecodeDepthLimit(t *testing.T) {
	doc := `{"designation": "root"}`
	for i := 0; i < 8; i++ {
		doc = `{"designation": "n", "assets": {"included": [` + doc + `]}}`
	}

	if _, err := Decode([]byte(doc), 8); err != nil {
		t.Errorf("Decode(depth 8, limit 8) error = %v", err)
	}

	_, err := Decode([]byte(doc), 7)
	var depthErr *source.DepthError
	if !errors.As(err, &depthErr) {
		t.Fatalf("Decode(depth 8, limit 7) error = %v, want DepthError", err)
	}
	if !strings.Contains(depthErr.Error(), "maximum depth 7") {
		t.Errorf("Error() = %q", depthErr.Error())
	}
}

func TestEdition(t *testing.T) {
	tests := map[string]string{"10.2.0": "10", "9": "9", "": ""}
	for in, want := range tests {
		if got := edition(in); got != want {
			t.Errorf("edition(%q) = %q, want %q", in, got, want)
		}
	}
}
