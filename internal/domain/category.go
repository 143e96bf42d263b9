package domain

// CategoryCode is a top-level classification code (TCLCOD) of the legacy item master.
type CategoryCode string

func (c CategoryCode) String() string {
	return string(c)
}

const (
	CategoryBON CategoryCode = "BON"
	CategoryGSS CategoryCode = "GSS"
	CategoryCHA CategoryCode = "CHA"
	CategoryGAS CategoryCode = "GAS"
	CategoryPAK CategoryCode = "PAK"
)

// CategoryCodes is the baseline set of categories sold through the tablet catalog.
var CategoryCodes = []CategoryCode{
	CategoryBON,
	CategoryGSS,
	CategoryCHA,
	CategoryGAS,
	CategoryPAK,
}

// DefaultCategories returns CategoryCodes as plain strings, for configuration defaults.
func DefaultCategories() []string {
	out := make([]string, 0, len(CategoryCodes))
	for _, c := range CategoryCodes {
		out = append(out, c.String())
	}
	return out
}
