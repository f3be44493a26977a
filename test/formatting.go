package test

import (
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/lawnchairsociety/rosterforge/server/internal/testclient"
)

// =============================================================================
// Group 1: Formatting
// =============================================================================

// TestFormattedArmy checks that a sample formats into a consistent roster.
func TestFormattedArmy(baseURL string, s Sample) TestResult {
	testName := "Format " + s.Filename

	client := testclient.New(clientName("format"), baseURL)
	logAction(testName, fmt.Sprintf("Uploading %d bytes", len(s.Data)))
	resp, err := client.FormattedArmy(s.Filename, s.Data, "")
	if err != nil {
		return fail(testName, "Upload failed: %v", err)
	}
	if resp.Status != http.StatusOK {
		return fail(testName, "Status %d: %s", resp.Status, resp.Err())
	}

	order := resp.Get("order").Array()
	groups := resp.Get("groups")
	logResult(testName, len(order) > 0, fmt.Sprintf("%d groups ordered", len(order)))
	if len(order) == 0 {
		return fail(testName, "Roster has no groups")
	}
	for _, id := range order {
		if !groups.Get(id.String()).Exists() {
			return fail(testName, "Ordered group %s is missing", id.String())
		}
	}
	if n := len(groups.Map()); n != len(order) {
		return fail(testName, "Order lists %d groups, roster holds %d", len(order), n)
	}

	return pass(testName, "%d groups, %d pieces, %d roster errors",
		len(order), countPieces(groups), len(resp.Get("errors").Array()))
}

// TestAllocationModes checks that wargear allocation splits the squad.
func TestAllocationModes(baseURL string) TestResult {
	const testName = "Allocation Modes"

	s := BuiltinSample()
	client := testclient.New(clientName("alloc"), baseURL)
	want := map[string]int{"allModels": 1, "oneModel": 2, "separateModels": 2}

	for _, mode := range []string{"allModels", "oneModel", "separateModels"} {
		logAction(testName, "Uploading with "+mode)
		resp, err := client.FormattedArmy(s.Filename, s.Data, mode)
		if err != nil {
			return fail(testName, "%s upload failed: %v", mode, err)
		}
		if resp.Status != http.StatusOK {
			return fail(testName, "%s: status %d: %s", mode, resp.Status, resp.Err())
		}
		got := countPieces(resp.Get("groups"))
		logResult(testName, got == want[mode], fmt.Sprintf("%s gave %d pieces", mode, got))
		if got != want[mode] {
			return fail(testName, "%s gave %d game pieces, want %d", mode, got, want[mode])
		}
	}
	return pass(testName, "All modes allocate wargear as expected")
}

// TestInvalidFormat checks that unreadable uploads are refused with 415.
func TestInvalidFormat(baseURL string) TestResult {
	const testName = "Invalid Format"

	client := testclient.New(clientName("invalid"), baseURL)
	cases := []Sample{
		{Filename: "notes.txt", Data: []byte("hello")},
		{Filename: "army.rosz", Data: []byte("not a roster")},
		{Filename: "army.regiztry", Data: []byte("not a zip")},
	}
	for _, c := range cases {
		resp, err := client.FormattedArmy(c.Filename, c.Data, "")
		if err != nil {
			return fail(testName, "Upload failed: %v", err)
		}
		logResult(testName, resp.Status == http.StatusUnsupportedMediaType, fmt.Sprintf("%s: %d", c.Filename, resp.Status))
		if resp.Status != http.StatusUnsupportedMediaType || resp.Err() == "" {
			return fail(testName, "%s: status %d, want 415 with an error", c.Filename, resp.Status)
		}
	}
	return pass(testName, "Rejected %d unreadable uploads", len(cases))
}

func countPieces(groups gjson.Result) int {
	n := 0
	groups.ForEach(func(_, g gjson.Result) bool {
		n += len(g.Get("gamePieces").Map())
		return true
	})
	return n
}
