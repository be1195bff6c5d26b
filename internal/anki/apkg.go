package anki

import (
	"archive/zip"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/EMFRobotics/WaniKani-Sentence-Extractor/internal/media"
)

type exportCard struct {
	fields Fields
	tags   []string
	assets []media.Asset
}

// APKGWriter collects the cards of a run into an Anki package (.apkg)
// that can be imported when AnkiConnect is not available. The package is
// rewritten in full on every Add.
type APKGWriter struct {
	mu        sync.Mutex
	path      string
	deckName  string
	modelName string
	deckID    int64
	modelID   int64
	created   time.Time
	cards     []exportCard
}

// NewAPKGWriter creates a writer for the package at path
func NewAPKGWriter(path, deckName, modelName string) *APKGWriter {
	// IDs are timestamps so repeated exports don't collide on import
	now := time.Now()
	return &APKGWriter{
		path:      path,
		deckName:  deckName,
		modelName: modelName,
		deckID:    now.UnixMilli(),
		modelID:   now.UnixMilli() + 1,
		created:   now,
	}
}

// Path returns the package location
func (w *APKGWriter) Path() string {
	return w.path
}

// Len returns the number of cards exported so far
func (w *APKGWriter) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.cards)
}

// Add appends a card and rewrites the package. Assets that no longer
// exist locally are left out of the media map.
func (w *APKGWriter) Add(fields Fields, tags []string, assets ...media.Asset) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.cards = append(w.cards, exportCard{fields: fields, tags: tags, assets: assets})
	if err := w.write(); err != nil {
		w.cards = w.cards[:len(w.cards)-1]
		return err
	}
	return nil
}

func (w *APKGWriter) write() error {
	tempDir, err := os.MkdirTemp("", "wksentence_apkg_*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	mediaMap, err := w.copyMediaFiles(tempDir)
	if err != nil {
		return fmt.Errorf("failed to copy media files: %w", err)
	}

	data, err := json.Marshal(mediaMap)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(tempDir, "media"), data, 0644); err != nil {
		return fmt.Errorf("failed to create media mapping: %w", err)
	}

	if err := w.createDatabase(filepath.Join(tempDir, "collection.anki2")); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	if dir := filepath.Dir(w.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Write next to the target and rename so a crash never leaves a
	// truncated package behind
	tmpPath := w.path + ".tmp"
	if err := createZipPackage(tempDir, tmpPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to create zip package: %w", err)
	}
	return os.Rename(tmpPath, w.path)
}

// copyMediaFiles copies every referenced asset under a numeric name and
// returns the number -> filename mapping Anki expects
func (w *APKGWriter) copyMediaFiles(tempDir string) (map[string]string, error) {
	mapping := make(map[string]string)
	seen := make(map[string]bool)
	n := 0

	for _, card := range w.cards {
		for _, asset := range card.assets {
			if asset.IsZero() || seen[asset.Filename] || !asset.Exists() {
				continue
			}
			target := filepath.Join(tempDir, strconv.Itoa(n))
			if err := copyFile(asset.Path, target); err != nil {
				return nil, fmt.Errorf("%s: %w", asset.Path, err)
			}
			mapping[strconv.Itoa(n)] = asset.Filename
			seen[asset.Filename] = true
			n++
		}
	}

	return mapping, nil
}

func (w *APKGWriter) createDatabase(dbPath string) error {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, query := range schema {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to create tables: %w", err)
		}
	}

	if err := w.insertCollection(db); err != nil {
		return fmt.Errorf("failed to insert collection: %w", err)
	}

	if err := w.insertNotes(db); err != nil {
		return fmt.Errorf("failed to insert notes: %w", err)
	}

	return nil
}

var schema = []string{
	`CREATE TABLE col (
		id integer PRIMARY KEY, crt integer NOT NULL, mod integer NOT NULL,
		scm integer NOT NULL, ver integer NOT NULL, dty integer NOT NULL,
		usn integer NOT NULL, ls integer NOT NULL, conf text NOT NULL,
		models text NOT NULL, decks text NOT NULL, dconf text NOT NULL,
		tags text NOT NULL
	)`,
	`CREATE TABLE notes (
		id integer PRIMARY KEY, guid text NOT NULL, mid integer NOT NULL,
		mod integer NOT NULL, usn integer NOT NULL, tags text NOT NULL,
		flds text NOT NULL, sfld text NOT NULL, csum integer NOT NULL,
		flags integer NOT NULL, data text NOT NULL
	)`,
	`CREATE TABLE cards (
		id integer PRIMARY KEY, nid integer NOT NULL, did integer NOT NULL,
		ord integer NOT NULL, mod integer NOT NULL, usn integer NOT NULL,
		type integer NOT NULL, queue integer NOT NULL, due integer NOT NULL,
		ivl integer NOT NULL, factor integer NOT NULL, reps integer NOT NULL,
		lapses integer NOT NULL, left integer NOT NULL, odue integer NOT NULL,
		odid integer NOT NULL, flags integer NOT NULL, data text NOT NULL
	)`,
	`CREATE TABLE revlog (
		id integer PRIMARY KEY, cid integer NOT NULL, usn integer NOT NULL,
		ease integer NOT NULL, ivl integer NOT NULL, lastIvl integer NOT NULL,
		factor integer NOT NULL, time integer NOT NULL, type integer NOT NULL
	)`,
	`CREATE TABLE graves (usn integer NOT NULL, oid integer NOT NULL, type integer NOT NULL)`,
	`CREATE INDEX ix_notes_csum ON notes (csum)`,
	`CREATE INDEX ix_notes_usn ON notes (usn)`,
	`CREATE INDEX ix_cards_usn ON cards (usn)`,
	`CREATE INDEX ix_cards_nid ON cards (nid)`,
	`CREATE INDEX ix_cards_sched ON cards (did, queue, due)`,
	`CREATE INDEX ix_revlog_usn ON revlog (usn)`,
	`CREATE INDEX ix_revlog_cid ON revlog (cid)`,
}

func (w *APKGWriter) insertCollection(db *sql.DB) error {
	now := w.created.Unix()

	deck := func(id int64, name string) map[string]any {
		return map[string]any{
			"id":               id,
			"name":             name,
			"mod":              now,
			"desc":             "",
			"collapsed":        false,
			"dyn":              0,
			"conf":             1,
			"usn":              0,
			"newToday":         []int{0, 0},
			"revToday":         []int{0, 0},
			"lrnToday":         []int{0, 0},
			"timeToday":        []int{0, 0},
			"browserCollapsed": false,
			"extendNew":        10,
			"extendRev":        50,
		}
	}
	deckMap := map[string]any{"1": deck(1, "Default")}
	deckMap[strconv.FormatInt(w.deckID, 10)] = deck(w.deckID, w.deckName)
	decks, _ := json.Marshal(deckMap)

	models, _ := json.Marshal(map[string]any{
		strconv.FormatInt(w.modelID, 10): w.noteType(),
	})

	conf, _ := json.Marshal(map[string]any{
		"nextPos":       1,
		"estTimes":      true,
		"activeDecks":   []int64{1},
		"sortType":      "noteFld",
		"sortBackwards": false,
		"addToCur":      true,
		"curDeck":       1,
		"newSpread":     0,
		"dueCounts":     true,
		"collapseTime":  1200,
		"timeLim":       0,
		"schedVer":      1,
		"curModel":      strconv.FormatInt(w.modelID, 10),
		"dayLearnFirst": false,
	})

	dconf, _ := json.Marshal(map[string]any{
		"1": map[string]any{
			"id":   1,
			"name": "Default",
			"dyn":  0,
			"new": map[string]any{
				"delays":        []int{1, 10},
				"ints":          []int{1, 4, 7},
				"initialFactor": 2500,
				"perDay":        20,
				"order":         1,
				"bury":          true,
				"separate":      true,
			},
			"lapse": map[string]any{
				"delays":      []int{10},
				"mult":        0,
				"minInt":      1,
				"leechFails":  8,
				"leechAction": 0,
			},
			"rev": map[string]any{
				"perDay":   100,
				"ease4":    1.3,
				"fuzz":     0.05,
				"maxIvl":   36500,
				"ivlFct":   1,
				"bury":     true,
				"minSpace": 1,
			},
			"timer":    0,
			"maxTaken": 60,
			"usn":      0,
			"mod":      now,
			"autoplay": true,
			"replayq":  true,
		},
	})

	_, err := db.Exec(`INSERT INTO col VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		1,        // id
		now,      // crt
		now*1000, // mod
		now*1000, // scm
		11,       // ver
		0,        // dty
		0,        // usn
		0,        // ls
		string(conf),
		string(models),
		string(decks),
		string(dconf),
		"{}",
	)
	return err
}

// noteType describes the eight-field note type with a single template
func (w *APKGWriter) noteType() map[string]any {
	flds := make([]map[string]any, len(FieldNames))
	for i, name := range FieldNames {
		flds[i] = map[string]any{
			"name":   name,
			"ord":    i,
			"sticky": false,
			"rtl":    false,
			"font":   "Arial",
			"size":   20,
			"media":  []string{},
		}
	}

	return map[string]any{
		"id":        w.modelID,
		"name":      w.modelName,
		"type":      0,
		"mod":       w.created.Unix(),
		"usn":       -1,
		"sortf":     0,
		"did":       w.deckID,
		"req":       [][]any{{0, "all", []int{0}}},
		"vers":      []int{},
		"tags":      []string{},
		"latexPre":  "\\documentclass[12pt]{article}\n\\special{papersize=3in,5in}\n\\usepackage[utf8]{inputenc}\n\\usepackage{amssymb,amsmath}\n\\pagestyle{empty}\n\\setlength{\\parindent}{0in}\n\\begin{document}",
		"latexPost": "\\end{document}",
		"flds":      flds,
		"tmpls": []map[string]any{
			{
				"name":  "Card 1",
				"ord":   0,
				"qfmt":  frontTemplate,
				"afmt":  backTemplate,
				"did":   nil,
				"bqfmt": "",
				"bafmt": "",
			},
		},
		"css": cardCSS,
	}
}

const frontTemplate = `{{Front[ENG]}}
{{#Image}}<div class="image">{{Image}}</div>{{/Image}}`

const backTemplate = `{{FrontSide}}

<hr id="answer">

{{Back[SWE]}}
{{Examples}}
{{Example English}}
{{Audio}}
{{Audio Example}}
{{#Grammar}}<div class="grammar">{{Grammar}}</div>{{/Grammar}}`

const cardCSS = `.card {
  font-family: "Hiragino Sans", "Noto Sans JP", Arial, sans-serif;
  font-size: 22px;
  text-align: center;
  color: orange;
  background-color: black;
}

.image img {
  max-width: 100%;
  height: auto;
}

.grammar {
  font-size: 16px;
  font-style: italic;
}`

func (w *APKGWriter) insertNotes(db *sql.DB) error {
	now := w.created

	for i, card := range w.cards {
		// Two IDs per note: the note and its only card
		noteID := now.UnixMilli() + int64(i*2)
		cardID := noteID + 1

		sortField := stripHTML(card.fields.Front)
		flds := strings.Join(card.fields.Values(), "\x1f")
		guid := "wk_" + checksumHex(flds)[:10]
		tags := ""
		if len(card.tags) > 0 {
			tags = " " + strings.Join(card.tags, " ") + " "
		}

		_, err := db.Exec(`INSERT INTO notes VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			noteID,              // id
			guid,                // guid
			w.modelID,           // mid
			now.Unix(),          // mod
			-1,                  // usn
			tags,                // tags
			flds,                // flds
			sortField,           // sfld
			checksum(sortField), // csum
			0,                   // flags
			"",                  // data
		)
		if err != nil {
			return fmt.Errorf("failed to insert note: %w", err)
		}

		_, err = db.Exec(`INSERT INTO cards VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			cardID,     // id
			noteID,     // nid
			w.deckID,   // did
			0,          // ord
			now.Unix(), // mod
			-1,         // usn
			0,          // type (new)
			0,          // queue (new)
			i+1,        // due (position)
			0,          // ivl
			0,          // factor
			0,          // reps
			0,          // lapses
			0,          // left
			0,          // odue
			0,          // odid
			0,          // flags
			"",         // data
		)
		if err != nil {
			return fmt.Errorf("failed to insert card: %w", err)
		}
	}

	return nil
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

func stripHTML(s string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
}

func checksumHex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// checksum is the first 8 hex digits of the SHA-1 as Anki stores it
func checksum(s string) int64 {
	v, _ := strconv.ParseInt(checksumHex(s)[:8], 16, 64)
	return v
}

func createZipPackage(srcDir, outputPath string) error {
	zipFile, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer zipFile.Close()

	archive := zip.NewWriter(zipFile)

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := addZipEntry(archive, srcDir, entry.Name()); err != nil {
			archive.Close()
			return err
		}
	}

	return archive.Close()
}

func addZipEntry(archive *zip.Writer, dir, name string) error {
	writer, err := archive.Create(name)
	if err != nil {
		return err
	}

	file, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(writer, file)
	return err
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer dstFile.Close()

	_, err = io.Copy(dstFile, srcFile)
	return err
}
