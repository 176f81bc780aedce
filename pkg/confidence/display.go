package confidence

import "golang.org/x/text/language"

// Palette maps every category to a display color.
type Palette map[Category]string

var (
	// FullPalette gives each category its own tone.
	FullPalette = Palette{
		Exact:  "green",
		High:   "lime",
		Medium: "gold",
		Low:    "orange",
		Weak:   "red",
	}

	// CompactPalette renders exact and high alike, as the duplicate-review modal does.
	// The categories themselves stay distinct.
	CompactPalette = Palette{
		Exact:  "green",
		High:   "green",
		Medium: "orange",
		Low:    "red",
		Weak:   "default",
	}
)

// Color returns the palette color for a category, falling back to FullPalette.
func Color(c Category, p Palette) string {
	if color, ok := p[c]; ok {
		return color
	}
	return FullPalette[c]
}

var (
	russian = language.Russian
	english = language.English

	supportedLocales = language.NewMatcher([]language.Tag{russian, english})

	labels = map[language.Tag]map[Category]string{
		russian: {
			Exact:  "Точное совпадение",
			High:   "Высокое сходство",
			Medium: "Среднее сходство",
			Low:    "Низкое сходство",
			Weak:   "Слабое сходство",
		},
		english: {
			Exact:  "Exact match",
			High:   "High similarity",
			Medium: "Medium similarity",
			Low:    "Low similarity",
			Weak:   "Weak similarity",
		},
	}
)

// Locale picks the best supported label language for an Accept-Language value.
// Russian is the default.
func Locale(acceptLanguage string) language.Tag {
	if acceptLanguage == "" {
		return russian
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return russian
	}
	_, index, confidence := supportedLocales.Match(tags...)
	if confidence == language.No {
		return russian
	}
	return []language.Tag{russian, english}[index]
}

// Label returns the localized caption of a category.
func Label(c Category, locale language.Tag) string {
	table, ok := labels[locale]
	if !ok {
		table = labels[russian]
	}
	return table[c]
}

// Badge is the display form of one classified confidence.
type Badge struct {
	Confidence float64  `json:"confidence"`
	Category   Category `json:"category"`
	Color      string   `json:"color"`
	Label      string   `json:"label"`
}

// NewBadge classifies c and resolves its color and label.
func NewBadge(c float64, palette Palette, locale language.Tag) Badge {
	category := Classify(c)
	return Badge{
		Confidence: c,
		Category:   category,
		Color:      Color(category, palette),
		Label:      Label(category, locale),
	}
}
