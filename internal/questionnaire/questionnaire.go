// Package questionnaire holds the static question catalog for the fatigue
// self-check. The catalog is fixed: three ordered sections with 6, 6 and 4
// prompts answered on a four-point scale (1 = does not apply at all,
// 4 = strongly applies).
package questionnaire

// Section is a named, ordered group of prompts sharing one theme.
type Section struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Prompts     []string `json:"prompts"`
}

var sections = []Section{
	{
		Title:       "疲労源E",
		Description: "過去2週間の疲労要因評価",
		Prompts: []string{
			"仕事や家事を長時間する必要があった",
			"常に時間に追われている感じだった",
			"締め切りに追われた作業が多かった",
			"難しい問題を解決する必要があった",
			"複数の仕事を同時にこなす必要があった",
			"予定外の仕事が入ることが多かった",
		},
	},
	{
		Title:       "疲労マネジメント行動B",
		Description: "疲労への対処行動評価",
		Prompts: []string{
			"十分な睡眠時間を確保するようにした",
			"バランスの良い食事を心がけた",
			"適度な運動を行うようにした",
			"息抜きの時間を確保するようにした",
			"人と話をして気分転換をした",
			"仕事とプライベートの切り替えを意識した",
		},
	},
	{
		Title:       "疲労感Fs",
		Description: "主観的疲労感の評価",
		Prompts: []string{
			"体が疲れやすい",
			"気力が出ない",
			"イライラする",
			"集中力が続かない",
		},
	},
}

// Sections returns the ordered section catalog. Callers must not mutate the
// returned slices.
func Sections() []Section {
	return sections
}

// SectionCount returns the number of sections.
func SectionCount() int {
	return len(sections)
}

// PromptCount returns the number of prompts in section i, or 0 when i is out
// of range.
func PromptCount(i int) int {
	if i < 0 || i >= len(sections) {
		return 0
	}
	return len(sections[i].Prompts)
}

// TotalPrompts returns the total prompt count across all sections.
func TotalPrompts() int {
	total := 0
	for _, s := range sections {
		total += len(s.Prompts)
	}
	return total
}
