package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/lawnchairsociety/rosterforge/server/internal/database"
	"github.com/lawnchairsociety/rosterforge/server/internal/roster"
)

const (
	codeLength      = 8
	maxCodeAttempts = 16
)

// sanitizer rewrites characters that break the in-game scripting. The
// escaped forms cover clients that encode HTML characters in JSON.
var sanitizer = strings.NewReplacer(
	" & ", " and ",
	` \u0026 `, " and ",
	">", "＞",
	`\u003e`, "＞",
	"<", "＜",
	`\u003c`, "＜",
)

// sanitize applies sanitizer to a raw JSON value. The replaced
// characters never appear in JSON syntax, so the result stays valid.
func sanitize(raw string) string {
	return sanitizer.Replace(raw)
}

// buildDocument assembles the stored roster document:
// {edition, order, armyData, uiHeight, uiWidth, decorativeNames, baseScript}.
func buildDocument(formatted gjson.Result, p uploadParams, baseScript string) (string, error) {
	order := formatted.Get("order")
	if !order.IsArray() {
		return "", errors.New("roster has no order")
	}
	groups := formatted.Get("groups")
	if !groups.IsObject() {
		return "", errors.New("roster has no groups")
	}

	doc := "{}"
	var err error
	set := func(path string, value any) {
		if err == nil {
			doc, err = sjson.Set(doc, path, value)
		}
	}
	setRaw := func(path, raw string) {
		if err == nil {
			doc, err = sjson.SetRaw(doc, path, raw)
		}
	}

	set("edition", formatted.Get("edition").String())
	setRaw("order", order.Raw)
	setRaw("armyData", sanitize(groups.Raw))
	set("uiHeight", p.uiHeight)
	set("uiWidth", p.uiWidth)
	set("decorativeNames", p.decorativeNames)
	set("baseScript", baseScript)
	if err != nil {
		return "", fmt.Errorf("failed to build roster document: %w", err)
	}

	return gjson.Get(doc, "@pretty").Raw, nil
}

// saveWithNewCode stores doc under an unused code and returns the code.
// Codes of expired but not yet deleted rosters count as used.
func (s *Server) saveWithNewCode(edition, doc string) (string, error) {
	expires := s.now().Add(s.cfg.Storage.Expiry())
	for range maxCodeAttempts {
		code := roster.HexID(codeLength)
		taken, err := s.store.CodeExists(code)
		if err != nil {
			return "", err
		}
		if taken {
			continue
		}
		err = s.store.SaveRoster(code, edition, doc, expires)
		if errors.Is(err, database.ErrCodeTaken) {
			continue
		}
		if err != nil {
			return "", err
		}
		return code, nil
	}
	return "", fmt.Errorf("failed to find a free roster code after %d attempts", maxCodeAttempts)
}
