package ucd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"

	"github.com/glyphspace/unigeo/internal/glyph"
)

// File names the loader looks for inside the snapshot directory. Each may
// also be present zstd-compressed with a .zst suffix.
const (
	fileUnicodeData   = "UnicodeData.txt"
	fileScripts       = "Scripts.txt"
	fileBlocks        = "Blocks.txt"
	fileDerivedAge    = "DerivedAge.txt"
	fileAllkeys       = "allkeys.txt"
	fileRadicalStroke = "Unihan_RadicalStroke.txt"
)

// Table is an in-memory UCD snapshot keyed by codepoint.
type Table struct {
	props map[uint32]Properties
	order []uint32 // ascending codepoints present in props
}

// Load reads a UCD snapshot directory into a Table. Every file is
// optional: a missing UnicodeData.txt yields an empty table (the whole
// codespace keeps placeholder defaults downstream), missing property
// files only leave fields zero, and malformed lines are skipped, never
// fatal. I/O failures other than absence are errors.
func Load(dir string, log zerolog.Logger) (*Table, error) {
	t := &Table{props: make(map[uint32]Properties, 160000)}

	if err := readLines(dir, fileUnicodeData, log, t.applyUnicodeData()); err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("file", fileUnicodeData).Str("dir", dir).
				Msg("metadata source missing, codespace keeps placeholder defaults")
			return t, nil
		}
		return nil, fmt.Errorf("load %s: %w", fileUnicodeData, err)
	}

	optional := []struct {
		name  string
		apply func(string) bool
	}{
		{fileScripts, t.applyRangeFile(func(p *Properties, v string) { p.Script = v })},
		{fileBlocks, t.applyRangeFile(func(p *Properties, v string) { p.Block = v })},
		{fileDerivedAge, t.applyRangeFile(func(p *Properties, v string) { p.Age = v })},
		{fileAllkeys, t.applyAllkeys()},
		{fileRadicalStroke, t.applyRadicalStroke()},
	}
	for _, f := range optional {
		if err := readLines(dir, f.name, log, f.apply); err != nil {
			if os.IsNotExist(err) {
				log.Warn().Str("file", f.name).Msg("optional UCD file missing, fields stay empty")
				continue
			}
			return nil, fmt.Errorf("load %s: %w", f.name, err)
		}
	}

	t.order = make([]uint32, 0, len(t.props))
	for cp := range t.props {
		t.order = append(t.order, cp)
	}
	sort.Slice(t.order, func(i, j int) bool { return t.order[i] < t.order[j] })

	log.Info().Int("codepoints", len(t.order)).Str("dir", dir).Msg("UCD snapshot loaded")
	return t, nil
}

// Lookup returns the properties for a codepoint, if assigned.
func (t *Table) Lookup(cp uint32) (Properties, bool) {
	p, ok := t.props[cp]
	return p, ok
}

// Each visits every assigned codepoint in ascending order.
func (t *Table) Each(fn func(cp uint32, p Properties)) {
	for _, cp := range t.order {
		fn(cp, t.props[cp])
	}
}

// Count returns the number of assigned codepoints.
func (t *Table) Count() int { return len(t.order) }

// readLines opens a snapshot file (plain or .zst) and feeds each line to
// apply. apply reports whether it consumed the line; rejected lines are
// counted and logged once.
func readLines(dir, name string, log zerolog.Logger, apply func(string) bool) error {
	r, closer, err := openMaybeZstd(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	defer closer()

	skipped := 0
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "@") {
			continue
		}
		if !apply(line) {
			skipped++
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	if skipped > 0 {
		log.Debug().Str("file", name).Int("lines", skipped).Msg("skipped unparseable lines")
	}
	return nil
}

// openMaybeZstd opens path directly, or path.zst through a zstd reader.
// Only a missing plain file falls through to the compressed form; any
// other open failure surfaces against the plain name.
func openMaybeZstd(path string) (io.Reader, func(), error) {
	f, err := os.Open(path)
	if err == nil {
		return f, func() { f.Close() }, nil
	}
	if !os.IsNotExist(err) {
		return nil, nil, err
	}
	f, err = os.Open(path + ".zst")
	if err != nil {
		return nil, nil, err
	}
	zr, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return zr, func() { zr.Close(); f.Close() }, nil
}

// applyUnicodeData parses semicolon-delimited UnicodeData.txt rows:
// cp;name;gc;ccc;bidi;decomp;...;upper;lower;title. "First>"/"Last>" name
// sentinels expand to the whole range.
func (t *Table) applyUnicodeData() func(string) bool {
	var pendingFirst uint32
	var pendingProps Properties
	havePending := false

	return func(line string) bool {
		fields := strings.Split(line, ";")
		if len(fields) < 15 {
			return false
		}
		cp, err := parseHex32(fields[0])
		if err != nil || cp > glyph.MaxCodepoint {
			return false
		}
		p := Properties{
			Name:            fields[1],
			GeneralCategory: fields[2],
			Decomposition:   fields[5],
			Uppercase:       parseHexOrZero(fields[12]),
			Lowercase:       parseHexOrZero(fields[13]),
			Titlecase:       parseHexOrZero(fields[14]),
		}
		if ccc, err := strconv.ParseUint(fields[3], 10, 8); err == nil {
			p.CombiningClass = uint8(ccc)
		}

		switch {
		case strings.HasSuffix(fields[1], "First>"):
			pendingFirst, pendingProps, havePending = cp, p, true
			return true
		case strings.HasSuffix(fields[1], "Last>") && havePending:
			for c := pendingFirst; c <= cp; c++ {
				rp := pendingProps
				rp.Name = strings.TrimSuffix(strings.TrimPrefix(pendingProps.Name, "<"), ", First>")
				t.props[c] = rp
			}
			havePending = false
			return true
		default:
			t.props[cp] = p
			return true
		}
	}
}

// applyRangeFile parses "XXXX..YYYY ; Value # comment" rows common to
// Scripts.txt, Blocks.txt, and DerivedAge.txt, assigning Value to every
// already-assigned codepoint in the range.
func (t *Table) applyRangeFile(set func(*Properties, string)) func(string) bool {
	return func(line string) bool {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		lhs, value, ok := strings.Cut(line, ";")
		if !ok {
			return false
		}
		value = strings.TrimSpace(value)
		lo, hi, err := parseRange(strings.TrimSpace(lhs))
		if err != nil {
			return false
		}
		for cp := lo; cp <= hi && cp <= glyph.MaxCodepoint; cp++ {
			if p, assigned := t.props[cp]; assigned {
				set(&p, value)
				t.props[cp] = p
			}
		}
		return true
	}
}

// applyAllkeys parses DUCET rows like "0041 ; [.2E05.0020.0008] # ..." and
// keeps the first collation element for single-codepoint entries.
// Contractions (multi-codepoint keys) are outside this pipeline's keying
// and are skipped.
func (t *Table) applyAllkeys() func(string) bool {
	return func(line string) bool {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		lhs, rhs, ok := strings.Cut(line, ";")
		if !ok {
			return false
		}
		keyFields := strings.Fields(lhs)
		if len(keyFields) != 1 {
			return len(keyFields) > 1 // contraction: consumed, just not kept
		}
		cp, err := parseHex32(keyFields[0])
		if err != nil {
			return false
		}
		w, ok := parseCollationElement(rhs)
		if !ok {
			return false
		}
		if p, assigned := t.props[cp]; assigned {
			p.Weights = w
			t.props[cp] = p
		}
		return true
	}
}

// parseCollationElement extracts the first [.XXXX.YYYY.ZZZZ] or
// [*XXXX.YYYY.ZZZZ] element.
func parseCollationElement(s string) (glyph.Weights, bool) {
	lb := strings.IndexByte(s, '[')
	rb := strings.IndexByte(s, ']')
	if lb < 0 || rb < lb+2 {
		return glyph.Weights{}, false
	}
	body := s[lb+1 : rb]
	body = strings.TrimPrefix(strings.TrimPrefix(body, "."), "*")
	parts := strings.Split(body, ".")
	if len(parts) < 3 {
		return glyph.Weights{}, false
	}
	var w glyph.Weights
	for i, dst := range []*uint16{&w.Primary, &w.Secondary, &w.Tertiary} {
		v, err := strconv.ParseUint(parts[i], 16, 16)
		if err != nil {
			return glyph.Weights{}, false
		}
		*dst = uint16(v)
	}
	return w, true
}

// applyRadicalStroke parses Unihan rows "U+4E00<tab>kRSUnicode<tab>1.0".
// The value may list several radical.stroke pairs; the first wins.
func (t *Table) applyRadicalStroke() func(string) bool {
	return func(line string) bool {
		fields := strings.Split(line, "\t")
		if len(fields) < 3 || fields[1] != "kRSUnicode" {
			return false
		}
		cp, err := parseHex32(strings.TrimPrefix(fields[0], "U+"))
		if err != nil {
			return false
		}
		first := strings.Fields(fields[2])
		if len(first) == 0 {
			return false
		}
		radStr, strokeStr, ok := strings.Cut(first[0], ".")
		if !ok {
			return false
		}
		radStr = strings.TrimSuffix(radStr, "'") // simplified-radical marker
		rad, err := strconv.ParseUint(radStr, 10, 16)
		if err != nil {
			return false
		}
		strokes, err := strconv.ParseUint(strokeStr, 10, 16)
		if err != nil {
			return false
		}
		if p, assigned := t.props[cp]; assigned {
			p.Radical = uint16(rad)
			p.Strokes = uint16(strokes)
			t.props[cp] = p
		}
		return true
	}
}

func parseRange(s string) (lo, hi uint32, err error) {
	first, last, isRange := strings.Cut(s, "..")
	lo, err = parseHex32(first)
	if err != nil {
		return 0, 0, err
	}
	if !isRange {
		return lo, lo, nil
	}
	hi, err = parseHex32(last)
	if err != nil {
		return 0, 0, err
	}
	return lo, hi, nil
}

func parseHex32(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 16, 32)
	return uint32(v), err
}

func parseHexOrZero(s string) uint32 {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 16, 32)
	if err != nil {
		return 0
	}
	return uint32(v)
}
