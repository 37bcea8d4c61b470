package curriculum

// Reference limits for each measurable unit. Read-only at runtime.
const (
	QaidahMax     = 13 // level 13 denotes a completed Qaidah
	QuranJuzCount = 30
	HifzJuzCount  = 30

	// Tajweed entry forms accept 1..7; some displays use 12 as a denominator
	// but the validator never accepts more than 7.
	TajweedEntryMax   = 7
	TajweedDisplayMax = 12

	JuzAmmaFirstSurah = 78
	JuzAmmaLastSurah  = 114
	JuzAmmaCount      = 37
)

// Duas book names and their level counts. The level count per book is data,
// not logic; an operator edits this table when the syllabus changes.
const (
	DuasBook1 = "Book 1"
	DuasBook2 = "Book 2"
)

var duasBookLevels = map[string]int{
	DuasBook1: 20,
	DuasBook2: 15,
}

// DuasBooks returns the known book names in syllabus order.
func DuasBooks() []string {
	return []string{DuasBook1, DuasBook2}
}

// DuasLevelsFor returns the number of levels in a book, or 0 for an unknown
// book. Callers reset any level selection when the book changes.
func DuasLevelsFor(book string) int {
	return duasBookLevels[book]
}

// ValidDuasLevel reports whether level is within the book's range.
func ValidDuasLevel(book string, level int) bool {
	max := duasBookLevels[book]
	return max > 0 && level >= 1 && level <= max
}

// Surah is one entry in the Juz Amma memorisation sequence.
type Surah struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

// juzAmmaSequence is the ordered 37-surah short-surah syllabus, numbered in
// standard Quranic order from An-Naba to An-Nas.
var juzAmmaSequence = []Surah{
	{78, "An-Naba"},
	{79, "An-Nazi'at"},
	{80, "Abasa"},
	{81, "At-Takwir"},
	{82, "Al-Infitar"},
	{83, "Al-Mutaffifin"},
	{84, "Al-Inshiqaq"},
	{85, "Al-Buruj"},
	{86, "At-Tariq"},
	{87, "Al-A'la"},
	{88, "Al-Ghashiyah"},
	{89, "Al-Fajr"},
	{90, "Al-Balad"},
	{91, "Ash-Shams"},
	{92, "Al-Layl"},
	{93, "Ad-Duha"},
	{94, "Ash-Sharh"},
	{95, "At-Tin"},
	{96, "Al-Alaq"},
	{97, "Al-Qadr"},
	{98, "Al-Bayyinah"},
	{99, "Az-Zalzalah"},
	{100, "Al-Adiyat"},
	{101, "Al-Qari'ah"},
	{102, "At-Takathur"},
	{103, "Al-Asr"},
	{104, "Al-Humazah"},
	{105, "Al-Fil"},
	{106, "Quraysh"},
	{107, "Al-Ma'un"},
	{108, "Al-Kawthar"},
	{109, "Al-Kafirun"},
	{110, "An-Nasr"},
	{111, "Al-Masad"},
	{112, "Al-Ikhlas"},
	{113, "Al-Falaq"},
	{114, "An-Nas"},
}

// JuzAmmaSequence returns the ordered syllabus. The returned slice is shared;
// callers must not modify it.
func JuzAmmaSequence() []Surah {
	return juzAmmaSequence
}

// JuzAmmaIndex returns the zero-based position of a surah in the sequence, or
// -1 when the surah is not part of it.
func JuzAmmaIndex(surah int) int {
	for i, s := range juzAmmaSequence {
		if s.Number == surah {
			return i
		}
	}
	return -1
}

// ValidJuzAmmaSurah reports whether the surah belongs to the sequence.
func ValidJuzAmmaSurah(surah int) bool {
	return JuzAmmaIndex(surah) >= 0
}

// JuzAmmaPercent converts a position in the sequence into a rounded progress
// percentage. Reaching An-Nas with the completion flag set is 100%.
func JuzAmmaPercent(surah int, completed bool) int {
	if completed && surah == JuzAmmaLastSurah {
		return 100
	}
	idx := JuzAmmaIndex(surah)
	if idx < 0 {
		return 0
	}
	return int(float64(idx)/float64(JuzAmmaCount)*100 + 0.5)
}

// ValidQaidahLevel reports whether the level is an accepted Qaidah value.
func ValidQaidahLevel(level int) bool {
	return level >= 1 && level <= QaidahMax
}

// ValidQuranJuz reports whether the juz is an accepted Quran value.
func ValidQuranJuz(juz int) bool {
	return juz >= 1 && juz <= QuranJuzCount
}

// ValidTajweedLevel reports whether the level is accepted by entry forms.
func ValidTajweedLevel(level int) bool {
	return level >= 1 && level <= TajweedEntryMax
}

// ValidHifzJuz reports whether the juz is an accepted Hifz value.
func ValidHifzJuz(juz int) bool {
	return juz >= 1 && juz <= HifzJuzCount
}
