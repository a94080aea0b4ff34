package models

import (
	"sort"
	"strings"
)

type LanguageProficiency string

const (
	ProficiencyNative       LanguageProficiency = "Native"
	ProficiencyFluent       LanguageProficiency = "Fluent"
	ProficiencyAdvanced     LanguageProficiency = "Advanced"
	ProficiencyIntermediate LanguageProficiency = "Intermediate"
	ProficiencyBasic        LanguageProficiency = "Basic"
)

type SkillCategory struct {
	Category    string   `json:"category"`
	Skills      []string `json:"skills"`
	Description string   `json:"description"`
}

type LanguageSkill struct {
	Language    string              `json:"language"`
	Proficiency LanguageProficiency `json:"proficiency"`
}

// CategorizedSkills groups a flat skill list. Slices are never nil.
type CategorizedSkills struct {
	TechnicalSkills []SkillCategory `json:"technicalSkills"`
	SoftSkills      []SkillCategory `json:"softSkills"`
	Languages       []LanguageSkill `json:"languages"`
}

// SkillNames returns the skills named by a scoring result: matching skills
// first, then scored skills not already listed, without duplicates.
func (r ScoringResult) SkillNames() []string {
	seen := make(map[string]bool)
	names := []string{}
	add := func(name string) {
		key := normalizeSkill(name)
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		names = append(names, name)
	}

	for _, s := range r.MatchingSkills {
		add(s)
	}
	scored := make([]string, 0, len(r.Skills))
	for s := range r.Skills {
		scored = append(scored, s)
	}
	sort.Strings(scored)
	for _, s := range scored {
		add(s)
	}
	return names
}

func normalizeSkill(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
