package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/lawnchairsociety/rosterforge/server/internal/database"
	"github.com/lawnchairsociety/rosterforge/server/internal/ingest"
	"github.com/lawnchairsociety/rosterforge/server/internal/logger"
	"github.com/lawnchairsociety/rosterforge/server/internal/roster"
	"github.com/lawnchairsociety/rosterforge/server/internal/rosz"
)

// Messages shown to the uploader by the site.
const (
	msgInvalidFormat = "<h2 class='error'>I can only accept .regiztry, .rosz and .ros files.</h2>\n" +
		"<p>Please make sure you are attempting to upload your roster and not another file by accident!</p>"
	msgUnknown = "<h2 class='error'>Something went wrong.</h2>\n" +
		"<p>Please report the problem and attach your .regiztry/.rosz file. Thank you for your patience!</p>"
	msgStore = "<h2 class='error'>Something went wrong while creating your roster.</h2>\n" +
		"<p>Please try again in a few minutes.</p>"
	msgRosterNotFound = "Your roster code appears to have expired, please upload it again and get a new code."
	msgLockedOut      = "Too many unreadable uploads. Please try again later."
)

// uploadParams are the query parameters shared by the upload endpoints.
type uploadParams struct {
	filename        string
	allocationMode  string
	uiHeight        string
	uiWidth         string
	decorativeNames string
	modules         []string
}

// params reads the query, filling unset values from the config.
func (s *Server) params(r *http.Request) uploadParams {
	q := r.URL.Query()
	p := uploadParams{
		filename:        q.Get("filename"),
		allocationMode:  q.Get("allocationMode"),
		uiHeight:        q.Get("uiHeight"),
		uiWidth:         q.Get("uiWidth"),
		decorativeNames: q.Get("decorativeNames"),
		modules:         s.cfg.Display.Modules,
	}
	if p.allocationMode == "" {
		p.allocationMode = s.cfg.Parsing.AllocationMode
	}
	if p.uiHeight == "" {
		p.uiHeight = s.cfg.Display.UIHeight
	}
	if p.uiWidth == "" {
		p.uiWidth = s.cfg.Display.UIWidth
	}
	if p.decorativeNames == "" {
		p.decorativeNames = s.cfg.Parsing.DecorativeNames
	}
	if m := q.Get("modules"); m != "" {
		p.modules = strings.Split(m, ",")
	}
	return p
}

// handleFormattedArmy parses an uploaded file and returns the roster.
func (s *Server) handleFormattedArmy(w http.ResponseWriter, r *http.Request) {
	p := s.params(r)
	log := logger.With("path", r.URL.Path, "client_ip", clientIP(r), "filename", p.filename)

	data, ok := s.readUpload(w, r, log)
	if !ok {
		return
	}
	formatted, status, msg := s.format(clientIP(r), p, data)
	if status != http.StatusOK {
		writeError(w, status, msg)
		return
	}

	log.Info("Formatted roster", "bytes", len(data))
	writeJSON(w, http.StatusOK, formatted)
}

// handleArmyCode stores a roster previously returned by
// handleFormattedArmy and answers with its code.
func (s *Server) handleArmyCode(w http.ResponseWriter, r *http.Request) {
	p := s.params(r)
	log := logger.With("path", r.URL.Path, "client_ip", clientIP(r))

	data, ok := s.readUpload(w, r, log)
	if !ok {
		return
	}
	if !gjson.ValidBytes(data) {
		log.Warn("Rejected roster body", "error", "invalid JSON")
		writeError(w, http.StatusBadRequest, msgUnknown)
		return
	}

	code, status, msg := s.saveDocument(p, data)
	if status != http.StatusOK {
		writeError(w, status, msg)
		return
	}
	log.Info("Stored roster", "code", code)
	writeCode(w, code)
}

// handleMakeArmy formats an upload and stores it in one step.
func (s *Server) handleMakeArmy(w http.ResponseWriter, r *http.Request) {
	p := s.params(r)
	log := logger.With("path", r.URL.Path, "client_ip", clientIP(r), "filename", p.filename)

	data, ok := s.readUpload(w, r, log)
	if !ok {
		return
	}
	formatted, status, msg := s.format(clientIP(r), p, data)
	if status != http.StatusOK {
		writeError(w, status, msg)
		return
	}

	code, status, msg := s.saveDocument(p, formatted)
	if status != http.StatusOK {
		writeError(w, status, msg)
		return
	}
	log.Info("Formatted and stored roster", "code", code)
	writeCode(w, code)
}

// handleGetArmy returns a stored document by code.
func (s *Server) handleGetArmy(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.URL.Query().Get("id"))
	if code == "" {
		writeError(w, http.StatusNotFound, msgRosterNotFound)
		return
	}

	stored, err := s.store.GetRoster(code)
	if err != nil {
		if errors.Is(err, database.ErrRosterNotFound) {
			writeError(w, http.StatusNotFound, msgRosterNotFound)
			return
		}
		logger.Error("Failed to load roster", "code", code, "error", err)
		writeError(w, http.StatusInternalServerError, msgUnknown)
		return
	}
	writeJSON(w, http.StatusOK, []byte(stored.Document))
}

// readUpload reads the body within the configured size limit.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, log *slog.Logger) ([]byte, bool) {
	if locked, wait := s.rejects.IsLocked(clientIP(r)); locked {
		log.Warn("Upload refused - client locked out", "retry_after", wait.Round(time.Second).String())
		writeError(w, http.StatusTooManyRequests, msgLockedOut)
		return nil, false
	}

	body := r.Body
	if limit := s.cfg.HTTP.MaxUploadBytes; limit > 0 {
		body = http.MaxBytesReader(w, r.Body, limit)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warn("Upload too large", "limit", tooLarge.Limit)
			writeError(w, http.StatusRequestEntityTooLarge, msgInvalidFormat)
			return nil, false
		}
		log.Warn("Failed to read upload", "error", err)
		writeError(w, http.StatusBadRequest, msgUnknown)
		return nil, false
	}
	return data, true
}

// format parses one upload into the serialized roster. A non-200 status
// comes with the message to send.
func (s *Server) format(ip string, p uploadParams, data []byte) ([]byte, int, string) {
	mode, err := rosz.ParseAllocationMode(p.allocationMode)
	if err != nil {
		return nil, http.StatusBadRequest, err.Error()
	}

	r, err := ingest.Parse(p.filename, data, ingest.Options{
		AllocationMode:  mode,
		MaxDepth:        s.cfg.Parsing.MaxTreeDepth,
		DecorativeNames: p.decorativeNames,
		Describer:       s.describer,
	})
	if err != nil {
		if ingest.IsInputCorruption(err) {
			if locked, _ := s.rejects.RecordReject(ip); locked {
				logger.Warning("Client locked out after rejected uploads", "client_ip", ip)
			}
			logger.Warning("Rejected upload", "filename", p.filename, "error", err)
			return nil, http.StatusUnsupportedMediaType, msgInvalidFormat
		}
		logger.Error("Failed to format roster", "filename", p.filename, "error", err)
		return nil, http.StatusInternalServerError, msgUnknown
	}
	s.rejects.RecordAccept(ip)

	out, err := roster.Serialize(r, 2)
	if err != nil {
		logger.Error("Failed to serialize roster", "filename", p.filename, "error", err)
		return nil, http.StatusInternalServerError, msgUnknown
	}
	return out, http.StatusOK, ""
}

// saveDocument builds the stored document from a serialized roster and
// saves it under a fresh code.
func (s *Server) saveDocument(p uploadParams, formatted []byte) (string, int, string) {
	baseScript, err := s.scripts.Build(p.modules)
	if err != nil {
		return "", http.StatusBadRequest, err.Error()
	}

	parsed := gjson.ParseBytes(formatted)
	doc, err := buildDocument(parsed, p, baseScript)
	if err != nil {
		logger.Error("Failed to build roster document", "error", err)
		return "", http.StatusInternalServerError, msgStore
	}

	code, err := s.saveWithNewCode(parsed.Get("edition").String(), doc)
	if err != nil {
		logger.Error("Failed to store roster", "error", err)
		return "", http.StatusInternalServerError, msgStore
	}
	return code, http.StatusOK, ""
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

func writeCode(w http.ResponseWriter, code string) {
	body, _ := sjson.Set("{}", "code", code)
	writeJSON(w, http.StatusOK, []byte(body))
}

// writeError answers with {"err": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody(msg))
}

func errorBody(msg string) []byte {
	body, err := sjson.Set("{}", "err", msg)
	if err != nil {
		return []byte(`{"err":"internal error"}`)
	}
	return []byte(body)
}
