package ucd_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"

	"github.com/glyphspace/unigeo/internal/ucd"
)

const sampleUnicodeData = `0041;LATIN CAPITAL LETTER A;Lu;0;L;;;;;N;;;;0061;
0061;LATIN SMALL LETTER A;Ll;0;L;;;;;N;;;0041;;0041
00C0;LATIN CAPITAL LETTER A WITH GRAVE;Lu;0;L;0041 0300;;;;N;LATIN CAPITAL LETTER A GRAVE;;;00E0;
3400;<CJK Ideograph Extension A, First>;Lo;0;L;;;;;N;;;;;
3402;<CJK Ideograph Extension A, Last>;Lo;0;L;;;;;N;;;;;
garbage line without enough fields
`

const sampleScripts = `0041..005A    ; Latin # L&  [26] LATIN CAPITAL LETTER A..Z
0061          ; Latin # single codepoint form
3400..3402    ; Han
not a range   ; Nope
`

const sampleAllkeys = `@version 16.0.0
0041  ; [.2075.0020.0008] # LATIN CAPITAL LETTER A
0061  ; [.2075.0020.0002] # LATIN SMALL LETTER A
0041 0301 ; [.2075.0020.0008][.0000.0024.0002] # contraction, skipped
`

const sampleRadicalStroke = "U+3400\tkRSUnicode\t9.5\nU+3401\tkRSUnicode\t9.7\n"

func writeSnapshot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"UnicodeData.txt": sampleUnicodeData,
		"Scripts.txt":     sampleScripts,
		"allkeys.txt":     sampleAllkeys,
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
	// The Unihan file goes in compressed to cover the .zst path.
	f, err := os.Create(filepath.Join(dir, "Unihan_RadicalStroke.txt.zst"))
	if err != nil {
		t.Fatal(err)
	}
	zw, err := zstd.NewWriter(f)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := zw.Write([]byte(sampleRadicalStroke)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoadSnapshot(t *testing.T) {
	table, err := ucd.Load(writeSnapshot(t), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	// 0041, 0061, 00C0 plus the expanded 3400..3402 range.
	if table.Count() != 6 {
		t.Fatalf("Count = %d, want 6", table.Count())
	}

	a, ok := table.Lookup(0x0041)
	if !ok {
		t.Fatal("U+0041 missing")
	}
	if a.GeneralCategory != "Lu" || a.Script != "Latin" || a.Lowercase != 0x0061 {
		t.Errorf("U+0041 props = %+v", a)
	}
	if a.Weights.Primary != 0x2075 || a.Weights.Secondary != 0x0020 {
		t.Errorf("U+0041 weights = %+v", a.Weights)
	}

	grave, ok := table.Lookup(0x00C0)
	if !ok || grave.Decomposition != "0041 0300" {
		t.Errorf("U+00C0 decomposition = %q", grave.Decomposition)
	}

	han, ok := table.Lookup(0x3401)
	if !ok {
		t.Fatal("range expansion missed U+3401")
	}
	if han.GeneralCategory != "Lo" || han.Script != "Han" {
		t.Errorf("U+3401 props = %+v", han)
	}
	if han.Radical != 9 || han.Strokes != 7 {
		t.Errorf("U+3401 radical/strokes = %d/%d, want 9/7", han.Radical, han.Strokes)
	}
	if _, ok := table.Lookup(0x3403); ok {
		t.Error("U+3403 should not be assigned")
	}
}

func TestEachAscending(t *testing.T) {
	table, err := ucd.Load(writeSnapshot(t), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	var prev int64 = -1
	table.Each(func(cp uint32, _ ucd.Properties) {
		if int64(cp) <= prev {
			t.Fatalf("Each out of order: %#x after %#x", cp, prev)
		}
		prev = int64(cp)
	})
}

func TestLoadMissingUnicodeData(t *testing.T) {
	// A missing metadata source degrades to an empty table; the
	// pipeline then loads the whole codespace as placeholder defaults.
	table, err := ucd.Load(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("missing snapshot must not be fatal: %v", err)
	}
	if table.Count() != 0 {
		t.Errorf("Count = %d, want 0", table.Count())
	}
	if _, ok := table.Lookup(0x41); ok {
		t.Error("empty table claims U+0041 assigned")
	}
}

func TestLoadErrorNamesPlainFile(t *testing.T) {
	// A snapshot path that fails to open for any reason other than
	// absence must not fall through to the .zst form: the surfaced
	// error names the file the operator pointed at. A regular file in
	// the directory position produces such a failure (ENOTDIR).
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("not a directory"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := ucd.Load(blocker, zerolog.Nop())
	if err == nil {
		t.Fatal("expected error for unreadable snapshot dir")
	}
	if !strings.Contains(err.Error(), "UnicodeData.txt") || strings.Contains(err.Error(), ".zst") {
		t.Errorf("error %q does not name the plain file", err)
	}
}

func TestOptionalFileMissing(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "UnicodeData.txt"), []byte(sampleUnicodeData), 0644); err != nil {
		t.Fatal(err)
	}
	table, err := ucd.Load(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("missing optional files must not be fatal: %v", err)
	}
	a, _ := table.Lookup(0x0041)
	if a.Script != "" || a.Weights.Primary != 0 {
		t.Errorf("fields should stay zero without property files: %+v", a)
	}
}
