package test

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"

	"github.com/lawnchairsociety/rosterforge/server/internal/testclient"
)

// =============================================================================
// Group 2: Codes
// =============================================================================

// TestArmyCodeRoundTrip formats a sample, stores it and fetches it back.
func TestArmyCodeRoundTrip(baseURL string, s Sample) TestResult {
	testName := "Code Round Trip " + s.Filename

	client := testclient.New(clientName("code"), baseURL)
	formatted, err := client.FormattedArmy(s.Filename, s.Data, "")
	if err != nil || formatted.Status != http.StatusOK {
		return fail(testName, "Format failed: %v %s", err, errText(formatted))
	}

	logAction(testName, "Requesting a code")
	params := url.Values{"uiHeight": {"720"}, "uiWidth": {"1280"}, "modules": {"MatchedPlay"}}
	resp, err := client.ArmyCode(formatted.Body, params)
	if err != nil || resp.Status != http.StatusOK {
		return fail(testName, "getArmyCode failed: %v %s", err, errText(resp))
	}
	code := resp.Get("code").String()
	logResult(testName, len(code) == 8, "code "+code)
	if len(code) != 8 {
		return fail(testName, "Code %q is not 8 characters", code)
	}

	stored, err := client.GetArmy(code)
	if err != nil || stored.Status != http.StatusOK {
		return fail(testName, "get_army_by_id failed: %v %s", err, errText(stored))
	}
	if got := stored.Get("uiHeight").String(); got != "720" {
		return fail(testName, "uiHeight = %q, want 720", got)
	}
	if stored.Get("order").Raw != formatted.Get("order").Raw {
		return fail(testName, "Stored order differs from the formatted roster")
	}
	if bytes.ContainsAny([]byte(stored.Get("armyData").Raw), "<>") {
		return fail(testName, "Stored armyData is not sanitised")
	}
	return pass(testName, "Stored under %s", code)
}

// TestMakeArmyAndReturnCode uses the one-step endpoint.
func TestMakeArmyAndReturnCode(baseURL string) TestResult {
	const testName = "Make Army And Return Code"

	s := BuiltinSample()
	client := testclient.New(clientName("make"), baseURL)
	resp, err := client.MakeArmy(s.Filename, s.Data)
	if err != nil || resp.Status != http.StatusOK {
		return fail(testName, "makeArmyAndReturnCode failed: %v %s", err, errText(resp))
	}
	code := resp.Get("code").String()

	stored, err := client.GetArmy(code)
	if err != nil || stored.Status != http.StatusOK {
		return fail(testName, "get_army_by_id failed: %v %s", err, errText(stored))
	}
	if stored.Get("baseScript").String() == "" {
		return fail(testName, "Stored roster has no base script")
	}
	return pass(testName, "Stored under %s", code)
}

// TestUnknownCode checks the expiry message for a code never issued.
func TestUnknownCode(baseURL string) TestResult {
	const testName = "Unknown Code"

	client := testclient.New(clientName("unknown"), baseURL)
	resp, err := client.GetArmy("zzzzzzzz")
	if err != nil {
		return fail(testName, "Request failed: %v", err)
	}
	if resp.Status != http.StatusNotFound || resp.Err() == "" {
		return fail(testName, "Status %d, want 404 with an error", resp.Status)
	}
	return pass(testName, "Got 404: %s", resp.Err())
}

func errText(r *testclient.Response) string {
	if r == nil {
		return ""
	}
	return fmt.Sprintf("(status %d: %s)", r.Status, r.Err())
}
