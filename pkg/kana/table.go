// Package kana holds the static reference data of the app:
// the romanized syllabary and its hiragana/katakana glyphs.
//
// The table is built once at process start and read-only afterwards.
// Per script, syllable -> glyph is a total bijection; build panics
// when the row table breaks that, so a broken table never serves requests.
package kana

import (
	"fmt"
	"math/rand"
)

// Script selects which kana variant is active.
type Script string

const (
	Hiragana Script = "hiragana"
	Katakana Script = "katakana"
)

var ErrUnknownScript = fmt.Errorf("unknown script")

// Syllable is a romanized reading, like "ka" or "shi".
type Syllable string

// Glyph is a single kana character, like "か" or "シ".
type Glyph string

// rows is the single source of truth.
// ぢ/づ are romanized wapuro-style ("di"/"du") so that the mapping
// stays injective next to じ="ji" and ず="zu".
var rows = []struct {
	romaji   Syllable
	hiragana Glyph
	katakana Glyph
}{
	// ア行
	{"a", "あ", "ア"},
	{"i", "い", "イ"},
	{"u", "う", "ウ"},
	{"e", "え", "エ"},
	{"o", "お", "オ"},
	// カ行
	{"ka", "か", "カ"},
	{"ki", "き", "キ"},
	{"ku", "く", "ク"},
	{"ke", "け", "ケ"},
	{"ko", "こ", "コ"},
	// サ行
	{"sa", "さ", "サ"},
	{"shi", "し", "シ"},
	{"su", "す", "ス"},
	{"se", "せ", "セ"},
	{"so", "そ", "ソ"},
	// タ行
	{"ta", "た", "タ"},
	{"chi", "ち", "チ"},
	{"tsu", "つ", "ツ"},
	{"te", "て", "テ"},
	{"to", "と", "ト"},
	// ナ行
	{"na", "な", "ナ"},
	{"ni", "に", "ニ"},
	{"nu", "ぬ", "ヌ"},
	{"ne", "ね", "ネ"},
	{"no", "の", "ノ"},
	// ハ行
	{"ha", "は", "ハ"},
	{"hi", "ひ", "ヒ"},
	{"fu", "ふ", "フ"},
	{"he", "へ", "ヘ"},
	{"ho", "ほ", "ホ"},
	// マ行
	{"ma", "ま", "マ"},
	{"mi", "み", "ミ"},
	{"mu", "む", "ム"},
	{"me", "め", "メ"},
	{"mo", "も", "モ"},
	// ヤ行
	{"ya", "や", "ヤ"},
	{"yu", "ゆ", "ユ"},
	{"yo", "よ", "ヨ"},
	// ラ行
	{"ra", "ら", "ラ"},
	{"ri", "り", "リ"},
	{"ru", "る", "ル"},
	{"re", "れ", "レ"},
	{"ro", "ろ", "ロ"},
	// ワ行
	{"wa", "わ", "ワ"},
	{"wo", "を", "ヲ"},
	{"n", "ん", "ン"},
	// ガ行
	{"ga", "が", "ガ"},
	{"gi", "ぎ", "ギ"},
	{"gu", "ぐ", "グ"},
	{"ge", "げ", "ゲ"},
	{"go", "ご", "ゴ"},
	// ザ行
	{"za", "ざ", "ザ"},
	{"ji", "じ", "ジ"},
	{"zu", "ず", "ズ"},
	{"ze", "ぜ", "ゼ"},
	{"zo", "ぞ", "ゾ"},
	// ダ行
	{"da", "だ", "ダ"},
	{"di", "ぢ", "ヂ"},
	{"du", "づ", "ヅ"},
	{"de", "で", "デ"},
	{"do", "ど", "ド"},
	// バ行
	{"ba", "ば", "バ"},
	{"bi", "び", "ビ"},
	{"bu", "ぶ", "ブ"},
	{"be", "べ", "ベ"},
	{"bo", "ぼ", "ボ"},
	// パ行
	{"pa", "ぱ", "パ"},
	{"pi", "ぴ", "ピ"},
	{"pu", "ぷ", "プ"},
	{"pe", "ぺ", "ペ"},
	{"po", "ぽ", "ポ"},
}

type table struct {
	forward   map[Syllable]Glyph
	reverse   map[Glyph]Syllable
	syllables []Syllable
	glyphs    []Glyph
}

var tables = map[Script]*table{}

func init() {
	for _, script := range []Script{Hiragana, Katakana} {
		tables[script] = build(script)
	}
}

func build(script Script) *table {
	t := &table{
		forward:   make(map[Syllable]Glyph, len(rows)),
		reverse:   make(map[Glyph]Syllable, len(rows)),
		syllables: make([]Syllable, 0, len(rows)),
		glyphs:    make([]Glyph, 0, len(rows)),
	}
	for _, row := range rows {
		glyph := row.hiragana
		if script == Katakana {
			glyph = row.katakana
		}
		if _, ok := t.forward[row.romaji]; ok {
			panic(fmt.Sprintf("kana: duplicated syllable %q in %s table", row.romaji, script))
		}
		if _, ok := t.reverse[glyph]; ok {
			panic(fmt.Sprintf("kana: duplicated glyph %q in %s table", glyph, script))
		}
		t.forward[row.romaji] = glyph
		t.reverse[glyph] = row.romaji
		t.syllables = append(t.syllables, row.romaji)
		t.glyphs = append(t.glyphs, glyph)
	}
	return t
}

func tableFor(script Script) (*table, error) {
	t, ok := tables[script]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScript, script)
	}
	return t, nil
}

// Check returns the glyph for the syllable in the given script.
//
// An unknown script is a configuration error, not a user mistake.
func Check(script Script, syllable Syllable) (Glyph, error) {
	t, err := tableFor(script)
	if err != nil {
		return "", err
	}
	glyph, ok := t.forward[syllable]
	if !ok {
		return "", fmt.Errorf("no glyph for syllable %q in %s", syllable, script)
	}
	return glyph, nil
}

// Romanize returns the one correct reading of the glyph in the given script.
func Romanize(script Script, glyph Glyph) (Syllable, error) {
	t, err := tableFor(script)
	if err != nil {
		return "", err
	}
	syllable, ok := t.reverse[glyph]
	if !ok {
		return "", fmt.Errorf("no reading for glyph %q in %s", glyph, script)
	}
	return syllable, nil
}

// Syllables returns the full vocabulary of the script. Order is the
// table order; callers must not rely on it.
func Syllables(script Script) ([]Syllable, error) {
	t, err := tableFor(script)
	if err != nil {
		return nil, err
	}
	out := make([]Syllable, len(t.syllables))
	copy(out, t.syllables)
	return out, nil
}

// Glyphs returns every glyph of the script.
func Glyphs(script Script) ([]Glyph, error) {
	t, err := tableFor(script)
	if err != nil {
		return nil, err
	}
	out := make([]Glyph, len(t.glyphs))
	copy(out, t.glyphs)
	return out, nil
}

// RandomSyllable draws a syllable uniformly from the script's vocabulary.
func RandomSyllable(script Script, r *rand.Rand) (Syllable, error) {
	t, err := tableFor(script)
	if err != nil {
		return "", err
	}
	return t.syllables[r.Intn(len(t.syllables))], nil
}

// RandomGlyph draws a glyph uniformly from the script's glyph set.
func RandomGlyph(script Script, r *rand.Rand) (Glyph, error) {
	t, err := tableFor(script)
	if err != nil {
		return "", err
	}
	return t.glyphs[r.Intn(len(t.glyphs))], nil
}
