package test

import (
	"github.com/tidwall/gjson"

	"github.com/lawnchairsociety/rosterforge/server/internal/testclient"
)

// =============================================================================
// Group 3: WebSocket
// =============================================================================

// TestWebSocketUpload formats the builtin sample over /ws.
func TestWebSocketUpload(baseURL string) TestResult {
	const testName = "WebSocket Upload"

	s := BuiltinSample()
	client := testclient.New(clientName("ws"), baseURL)

	logAction(testName, "Sending upload frame")
	reply, err := client.UploadWS(s.Filename, s.Data, "oneModel")
	if err != nil {
		return fail(testName, "Upload failed: %v", err)
	}
	if msg := gjson.GetBytes(reply, "err").String(); msg != "" {
		return fail(testName, "Server answered with error: %s", msg)
	}
	name := gjson.GetBytes(reply, "name").String()
	logResult(testName, name == "Smoke Test", "roster "+name)
	if name != "Smoke Test" {
		return fail(testName, "Roster name = %q, want Smoke Test", name)
	}

	reply, err = client.UploadWS("notes.txt", []byte("hello"), "")
	if err != nil {
		return fail(testName, "Second upload failed: %v", err)
	}
	if !gjson.GetBytes(reply, "err").Exists() {
		return fail(testName, "Unreadable upload was not rejected")
	}
	return pass(testName, "Formatted and rejected over WebSocket")
}
