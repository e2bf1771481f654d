// Package dat decodes Logiqx-style DAT catalogs.
//
// A DAT document is XML:
//
//	<datafile>
//	  <header><name>Nintendo - NES</name>...</header>
//	  <game name="...">
//	    <rom name="Game (USA).nes" size="40976" crc="..." md5="..." sha1="..."/>
//	  </game>
//	</datafile>
//
// Newer catalogs use <machine> in place of <game>; both are read.
package dat

import (
	"encoding/xml"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
)

// Datafile is the root element of a DAT document.
type Datafile struct {
	XMLName  xml.Name `xml:"datafile"`
	Header   *Header  `xml:"header"`
	Games    []Game   `xml:"game"`
	Machines []Game   `xml:"machine"`
}

type Header struct {
	Name        string `xml:"name"`
	Description string `xml:"description"`
	Category    string `xml:"category"`
	Version     string `xml:"version"`
	Date        string `xml:"date"`
	Author      string `xml:"author"`
	Email       string `xml:"email"`
	Homepage    string `xml:"homepage"`
	URL         string `xml:"url"`
	Comment     string `xml:"comment"`
}

type Game struct {
	Name        string `xml:"name,attr"`
	SourceFile  string `xml:"sourcefile,attr"`
	IsBIOS      string `xml:"isbios,attr"`
	CloneOf     string `xml:"cloneof,attr"`
	RomOf       string `xml:"romof,attr"`
	SampleOf    string `xml:"sampleof,attr"`
	Board       string `xml:"board,attr"`
	RebuildTo   string `xml:"rebuildto,attr"`
	Description string `xml:"description"`
	Roms        []Rom  `xml:"rom"`
}

type Rom struct {
	Name string `xml:"name,attr"`
	Size string `xml:"size,attr"`
	CRC  string `xml:"crc,attr"`
	MD5  string `xml:"md5,attr"`
	SHA1 string `xml:"sha1,attr"`
}

// Entry is one rom of a catalog, flattened with its catalog name.
type Entry struct {
	Catalog string
	Game    string
	Name    string
	Size    int64
	HasSize bool
	CRC     string
	MD5     string
	SHA1    string
}

// Decode reads a DAT document. Encodings other than UTF-8 are converted
// according to the XML declaration.
func Decode(r io.Reader) (*Datafile, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	dec.CharsetReader = charset.NewReaderLabel

	var df Datafile
	if err := dec.Decode(&df); err != nil {
		return nil, fmt.Errorf("decode datafile: %w", err)
	}
	return &df, nil
}

// Name returns the catalog name from the header, or fallback when the
// header carries none.
func (d *Datafile) Name(fallback string) string {
	if d.Header != nil {
		if name := strings.TrimSpace(d.Header.Name); name != "" {
			return name
		}
	}
	return fallback
}

// Entries iterates over every rom of every game and machine in document
// order. Games without roms are skipped.
func (d *Datafile) Entries(catalog string) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, games := range [][]Game{d.Games, d.Machines} {
			for _, g := range games {
				for _, rom := range g.Roms {
					e := Entry{
						Catalog: catalog,
						Game:    g.Name,
						Name:    rom.Name,
						CRC:     rom.CRC,
						MD5:     rom.MD5,
						SHA1:    rom.SHA1,
					}
					if size, err := strconv.ParseInt(strings.TrimSpace(rom.Size), 10, 64); err == nil {
						e.Size, e.HasSize = size, true
					}
					if !yield(e) {
						return
					}
				}
			}
		}
	}
}
