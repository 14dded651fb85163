package internal

// KeywordCategory names one of the configurable keyword lists. The values are
// also the storage keys the lists are persisted under.
type KeywordCategory string

func (c KeywordCategory) String() string {
	return string(c)
}

var (
	KeywordsDnd      KeywordCategory = "keywords_dnd"
	KeywordsAway     KeywordCategory = "keywords_away"
	KeywordsPersonal KeywordCategory = "keywords_personal"
)

// KeywordConfig holds the three keyword lists the classifier matches against.
// Lists loaded from storage replace the defaults wholesale.
type KeywordConfig struct {
	Dnd      []string
	Away     []string
	Personal []string
}

// DefaultKeywords returns the compiled-in keyword lists, used whenever
// storage has no override for a category.
func DefaultKeywords() KeywordConfig {
	return KeywordConfig{
		Dnd: []string{"D&D", "DND", "Dungeons", "Campaign", "Session"},
		Away: []string{
			"Away", "Unavailable", "Holiday", "Vacation", "Busy",
			"PTO", "Time Off", "Out of Office", "OOO", "Trip", "Travel",
		},
		Personal: []string{
			"birthday", "doctor", "dentist", "appointment",
			"interview", "therapy", "medical",
		},
	}
}

// List returns the list for the given category, or nil if the category is
// unknown.
func (c KeywordConfig) List(cat KeywordCategory) []string {
	switch cat {
	case KeywordsDnd:
		return c.Dnd
	case KeywordsAway:
		return c.Away
	case KeywordsPersonal:
		return c.Personal
	}
	return nil
}

// SetList replaces the list for the given category. Unknown categories are
// ignored.
func (c *KeywordConfig) SetList(cat KeywordCategory, list []string) {
	switch cat {
	case KeywordsDnd:
		c.Dnd = list
	case KeywordsAway:
		c.Away = list
	case KeywordsPersonal:
		c.Personal = list
	}
}
