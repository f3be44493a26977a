package rosz

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// ErrArchiveMemberCount is returned when a .rosz archive does not hold
// exactly one file.
var ErrArchiveMemberCount = errors.New("invalid rosz file: archive should hold exactly one file")

// Roster is the root of a BattleScribe roster document.
type Roster struct {
	XMLName             xml.Name `xml:"roster"`
	ID                  string   `xml:"id,attr"`
	Name                string   `xml:"name,attr"`
	GameSystemID        string   `xml:"gameSystemId,attr"`
	GameSystemName      string   `xml:"gameSystemName,attr"`
	GameSystemRevision  string   `xml:"gameSystemRevision,attr"`
	BattleScribeVersion string   `xml:"battleScribeVersion,attr"`
	Forces              []Force  `xml:"forces>force"`
}

type Force struct {
	ID         string      `xml:"id,attr"`
	Name       string      `xml:"name,attr"`
	Selections []Selection `xml:"selections>selection"`
}

type Selection struct {
	ID         string      `xml:"id,attr"`
	Name       string      `xml:"name,attr"`
	Type       string      `xml:"type,attr"`
	Number     string      `xml:"number,attr"`
	From       string      `xml:"from,attr"`
	Profiles   []Profile   `xml:"profiles>profile"`
	Rules      []Rule      `xml:"rules>rule"`
	Categories []Category  `xml:"categories>category"`
	Selections []Selection `xml:"selections>selection"`
}

type Profile struct {
	ID              string           `xml:"id,attr"`
	Name            string           `xml:"name,attr"`
	TypeName        string           `xml:"typeName,attr"`
	Characteristics []Characteristic `xml:"characteristics>characteristic"`
}

type Characteristic struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type Rule struct {
	ID          string `xml:"id,attr"`
	Name        string `xml:"name,attr"`
	Description string `xml:"description"`
}

type Category struct {
	ID      string `xml:"id,attr"`
	Name    string `xml:"name,attr"`
	Primary string `xml:"primary,attr"`
}

// extractXML returns the XML inside a .rosz archive, or data itself when
// it is not a zip archive (a plain .ros file).
func extractXML(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return data, nil
	}
	if len(zr.File) != 1 {
		return nil, ErrArchiveMemberCount
	}
	f, err := zr.File[0].Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open rosz member: %w", err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

// decode parses roster XML.
func decode(data []byte) (*Roster, error) {
	var r Roster
	if err := xml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidXML, err)
	}
	return &r, nil
}

// ErrInvalidXML is returned when the roster document cannot be parsed.
var ErrInvalidXML = errors.New("invalid rosz file: roster XML could not be parsed")

// characteristic returns the value of the named characteristic.
func (p Profile) characteristic(name string) (string, bool) {
	for _, c := range p.Characteristics {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}
