package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	"github.com/deepanshu089/suprathon/internal/models"
	"github.com/deepanshu089/suprathon/internal/repositories"
)

const otherTechnicalCategory = "Other Technical Skills"

type keywordCategory struct {
	name        string
	description string
	keywords    []string
}

// Checked in order; earlier entries win.
var technicalCategories = []keywordCategory{
	{"Mobile Development", "Mobile application development across various platforms and frameworks",
		[]string{"android", "ios", "swift", "kotlin", "flutter", "react native", "xamarin", "mobile"}},
	{"Frontend Development", "Web interface development, UI/UX implementation, and client-side technologies",
		[]string{"react", "angular", "vue", "javascript", "typescript", "html", "css", "sass", "frontend", "ui", "ux", "webpack", "next js", "tailwind", "bootstrap", "redux", "jquery", "responsive design"}},
	{"Backend Development", "Server-side programming, API development, and business logic implementation",
		[]string{"node", "express", "django", "flask", "spring", "backend", "api", "rest", "restful", "graphql", "microservices", "fastapi", "laravel", "rails", "net", "php", "golang", "go", "rust", "c#", "java", "python", "grpc", "serverless", "oauth"}},
	{"Database & Data Management", "Database design, data modeling, ETL processes, and data governance",
		[]string{"sql", "mysql", "postgres", "postgresql", "mongodb", "redis", "database", "nosql", "oracle", "dynamodb", "cassandra", "elasticsearch", "etl", "data warehouse", "bigquery", "snowflake", "data pipeline", "data modeling"}},
	{"AI & Machine Learning", "Artificial intelligence, machine learning models, and data science applications",
		[]string{"ai", "machine learning", "ml", "deep learning", "tensorflow", "pytorch", "scikit learn", "nlp", "computer vision", "data science", "llm", "neural network", "neural networks"}},
	{"DevOps & Cloud", "Cloud infrastructure, deployment automation, and infrastructure as code",
		[]string{"docker", "kubernetes", "aws", "azure", "gcp", "cloud", "terraform", "ansible", "jenkins", "ci cd", "devops", "linux", "helm", "prometheus", "grafana"}},
	{"Security", "Cybersecurity, application security, and security operations",
		[]string{"security", "cybersecurity", "penetration testing", "owasp", "encryption", "siem", "firewall", "iam", "vulnerability"}},
	{"Testing & Quality Assurance", "Software testing, quality control, and test automation",
		[]string{"testing", "qa", "selenium", "cypress", "jest", "junit", "pytest", "test automation", "quality assurance"}},
	{"Blockchain & Web3", "Blockchain development, smart contracts, and decentralized applications",
		[]string{"blockchain", "solidity", "ethereum", "web3", "smart contract", "smart contracts", "nft"}},
	{"Game Development", "Game design, development, and interactive entertainment systems",
		[]string{"unity", "unreal", "game development", "godot", "opengl"}},
}

var softCategories = []keywordCategory{
	{"Communication & Interpersonal", "Verbal and written communication, relationship building, and interpersonal skills",
		[]string{"communication", "interpersonal", "presentation", "public speaking", "negotiation", "active listening", "relationship building", "networking", "collaboration", "teamwork"}},
	{"Leadership & Management", "Team leadership, decision-making, and organizational management capabilities",
		[]string{"leadership", "team management", "people management", "mentoring", "coaching", "decision making", "delegation"}},
	{"Problem Solving & Critical Thinking", "Analytical thinking, problem-solving, and strategic decision-making",
		[]string{"problem solving", "critical thinking", "analytical thinking", "troubleshooting", "attention to detail"}},
	{"Professional Development", "Continuous learning, career growth, and professional skill enhancement",
		[]string{"continuous learning", "self motivation", "adaptability", "time management", "work ethic", "initiative"}},
	{"Business & Strategy", "Business acumen, strategic planning, and market analysis",
		[]string{"business acumen", "strategic planning", "strategy", "business development", "sales", "marketing", "stakeholder management"}},
	{"Project Management", "Project planning, execution, and team coordination",
		[]string{"project management", "agile", "scrum", "kanban", "planning", "prioritization", "jira"}},
	{"Customer Service & Support", "Client relationship management and customer support expertise",
		[]string{"customer service", "client management", "customer support"}},
	{"Research & Analysis", "Data analysis, research methodologies, and analytical reporting",
		[]string{"research", "analysis", "reporting", "analytics"}},
	{"Creative & Design", "Creative thinking, design principles, and artistic capabilities",
		[]string{"creativity", "creative", "design thinking", "graphic design"}},
	{"Language & Writing", "Written communication, documentation, and language proficiency",
		[]string{"writing", "copywriting", "editing", "proofreading", "documentation", "technical writing", "translation"}},
}

var spokenLanguages = []string{
	"english", "spanish", "french", "german", "italian", "portuguese", "russian",
	"chinese", "mandarin", "japanese", "korean", "arabic", "hindi", "bengali", "urdu", "dutch",
}

const skillCategoriesSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["technicalSkills", "softSkills", "languages"],
  "definitions": {
    "category": {
      "type": "object",
      "required": ["category", "skills"],
      "properties": {
        "category": {"type": "string", "minLength": 1},
        "skills": {"type": "array", "items": {"type": "string"}},
        "description": {"type": "string"}
      }
    }
  },
  "properties": {
    "technicalSkills": {"type": "array", "items": {"$ref": "#/definitions/category"}},
    "softSkills": {"type": "array", "items": {"$ref": "#/definitions/category"}},
    "languages": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["language", "proficiency"],
        "properties": {
          "language": {"type": "string", "minLength": 1},
          "proficiency": {"enum": ["Native", "Fluent", "Advanced", "Intermediate", "Basic"]}
        }
      }
    }
  }
}`

var skillCategoriesSchemaLoader = gojsonschema.NewStringLoader(skillCategoriesSchema)

// SkillCategorizer groups resume skills into technical, soft and language
// categories.
type SkillCategorizer interface {
	Categorize(ctx context.Context, skills []string) (*models.CategorizedSkills, error)
	CategorizeAnalysis(ctx context.Context, analysisID uuid.UUID) (*models.CategorizedSkills, error)
}

type skillCategorizer struct {
	llm           LLMClient
	analysisRepo  repositories.AnalysisRepository
	promptBuilder *PromptBuilder
}

// NewSkillCategorizer builds a categorizer. With a nil llm only the keyword
// rules are used.
func NewSkillCategorizer(llm LLMClient, analysisRepo repositories.AnalysisRepository) SkillCategorizer {
	return &skillCategorizer{
		llm:           llm,
		analysisRepo:  analysisRepo,
		promptBuilder: NewPromptBuilder(),
	}
}

// CategorizeAnalysis implements SkillCategorizer.
func (c *skillCategorizer) CategorizeAnalysis(ctx context.Context, analysisID uuid.UUID) (*models.CategorizedSkills, error) {
	analysis, err := c.analysisRepo.FindByID(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	return c.Categorize(ctx, analysis.AnalysisResults.SkillNames())
}

// Categorize implements SkillCategorizer. The model's grouping is used when
// it is valid; anything it leaves out, or a failed call, falls back to the
// keyword rules.
func (c *skillCategorizer) Categorize(ctx context.Context, skills []string) (*models.CategorizedSkills, error) {
	skills = uniqueSkills(skills)
	b := newCategoryBuilder()
	if len(skills) == 0 {
		return b.result(), nil
	}

	placed := map[string]bool{}
	if c.llm != nil {
		prompt := c.promptBuilder.BuildSkillCategoryPrompt(skills, categoryNames(technicalCategories), categoryNames(softCategories))
		body, err := c.llm.GenerateJSON(ctx, "You categorize resume skills. Respond with valid JSON only.", prompt)
		if err == nil {
			var parsed *models.CategorizedSkills
			if parsed, err = parseSkillCategories(body); err == nil {
				placed = b.mergeModel(parsed, skills)
			}
		}
		if err != nil {
			log.Printf("⚠️  Skill categorization fell back to keyword rules: %v\n", err)
		}
	}

	for _, skill := range skills {
		if !placed[normalizeKeywordText(skill)] {
			b.addByKeywords(skill)
		}
	}
	return b.result(), nil
}

// parseSkillCategories validates body against the category schema.
func parseSkillCategories(body string) (*models.CategorizedSkills, error) {
	cleaned := CleanJSONBlock(body)
	result, err := gojsonschema.Validate(skillCategoriesSchemaLoader, gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		return nil, &ScoringError{Kind: KindMalformedResponse, Cause: fmt.Errorf("response is not valid JSON: %w", err)}
	}
	if !result.Valid() {
		var problems []string
		for _, e := range result.Errors() {
			problems = append(problems, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
		}
		return nil, &ScoringError{Kind: KindMalformedResponse, Cause: fmt.Errorf("response violates schema: %s", strings.Join(problems, "; "))}
	}

	var parsed models.CategorizedSkills
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, &ScoringError{Kind: KindMalformedResponse, Cause: fmt.Errorf("failed to decode response: %w", err)}
	}
	return &parsed, nil
}

// categoryBuilder collects skills per category in first-seen order.
type categoryBuilder struct {
	technical []*models.SkillCategory
	soft      []*models.SkillCategory
	languages []models.LanguageSkill
	index     map[string]*models.SkillCategory
}

func newCategoryBuilder() *categoryBuilder {
	return &categoryBuilder{index: map[string]*models.SkillCategory{}}
}

func (b *categoryBuilder) add(soft bool, name, description, skill string) {
	key := "tech:" + strings.ToLower(name)
	if soft {
		key = "soft:" + strings.ToLower(name)
	}
	cat, ok := b.index[key]
	if !ok {
		cat = &models.SkillCategory{Category: name, Skills: []string{}, Description: description}
		b.index[key] = cat
		if soft {
			b.soft = append(b.soft, cat)
		} else {
			b.technical = append(b.technical, cat)
		}
	}
	cat.Skills = append(cat.Skills, skill)
}

func (b *categoryBuilder) addByKeywords(skill string) {
	text := normalizeKeywordText(skill)

	if lang, ok := spokenLanguage(text); ok {
		b.languages = append(b.languages, models.LanguageSkill{Language: lang, Proficiency: languageProficiency(text)})
		return
	}
	if cat, ok := matchCategory(text, technicalCategories); ok {
		b.add(false, cat.name, cat.description, skill)
		return
	}
	if cat, ok := matchCategory(text, softCategories); ok {
		b.add(true, cat.name, cat.description, skill)
		return
	}
	b.add(false, otherTechnicalCategory, "Technical skills and expertise", skill)
}

// mergeModel copies the model's grouping, keeping only skills from the input
// and placing each at most once. It returns the normalized skills placed.
func (b *categoryBuilder) mergeModel(parsed *models.CategorizedSkills, skills []string) map[string]bool {
	inputs := map[string]string{}
	for _, s := range skills {
		inputs[normalizeKeywordText(s)] = s
	}
	placed := map[string]bool{}

	mergeGroup := func(soft bool, groups []models.SkillCategory, known []keywordCategory) {
		for _, group := range groups {
			name := strings.TrimSpace(group.Category)
			if name == "" {
				continue
			}
			description := strings.TrimSpace(group.Description)
			if description == "" {
				description = categoryDescription(name, known)
			}
			for _, s := range group.Skills {
				key := normalizeKeywordText(s)
				original, ok := inputs[key]
				if !ok || placed[key] {
					continue
				}
				placed[key] = true
				b.add(soft, name, description, original)
			}
		}
	}
	mergeGroup(false, parsed.TechnicalSkills, technicalCategories)
	mergeGroup(true, parsed.SoftSkills, softCategories)

	for _, lang := range parsed.Languages {
		langKey := normalizeKeywordText(lang.Language)
		for _, skill := range skills {
			key := normalizeKeywordText(skill)
			if placed[key] || !containsPhrase(key, langKey) {
				continue
			}
			placed[key] = true
			b.languages = append(b.languages, models.LanguageSkill{
				Language:    strings.TrimSpace(lang.Language),
				Proficiency: lang.Proficiency,
			})
			break
		}
	}
	return placed
}

func (b *categoryBuilder) result() *models.CategorizedSkills {
	out := &models.CategorizedSkills{
		TechnicalSkills: make([]models.SkillCategory, 0, len(b.technical)),
		SoftSkills:      make([]models.SkillCategory, 0, len(b.soft)),
		Languages:       []models.LanguageSkill{},
	}
	for _, c := range b.technical {
		out.TechnicalSkills = append(out.TechnicalSkills, *c)
	}
	for _, c := range b.soft {
		out.SoftSkills = append(out.SoftSkills, *c)
	}
	out.Languages = append(out.Languages, b.languages...)
	return out
}

func matchCategory(text string, categories []keywordCategory) (keywordCategory, bool) {
	for _, cat := range categories {
		for _, kw := range cat.keywords {
			if containsPhrase(text, kw) {
				return cat, true
			}
		}
	}
	return keywordCategory{}, false
}

func spokenLanguage(text string) (string, bool) {
	for _, lang := range spokenLanguages {
		if containsPhrase(text, lang) {
			return strings.ToUpper(lang[:1]) + lang[1:], true
		}
	}
	return "", false
}

func languageProficiency(text string) models.LanguageProficiency {
	switch {
	case containsPhrase(text, "native"), containsPhrase(text, "bilingual"):
		return models.ProficiencyNative
	case containsPhrase(text, "fluent"):
		return models.ProficiencyFluent
	case containsPhrase(text, "advanced"):
		return models.ProficiencyAdvanced
	case containsPhrase(text, "intermediate"):
		return models.ProficiencyIntermediate
	default:
		return models.ProficiencyBasic
	}
}

func categoryDescription(name string, known []keywordCategory) string {
	for _, cat := range known {
		if strings.EqualFold(cat.name, name) {
			return cat.description
		}
	}
	return ""
}

func categoryNames(categories []keywordCategory) []string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.name
	}
	return names
}

// normalizeKeywordText lowercases s and turns every separator into a single
// space. '#' and '+' stay so C# and C++ survive.
func normalizeKeywordText(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '#' && r != '+'
	})
	return strings.Join(fields, " ")
}

// containsPhrase reports whether phrase occurs in text on word boundaries.
// Both must already be normalized.
func containsPhrase(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	return strings.Contains(" "+text+" ", " "+phrase+" ")
}

func uniqueSkills(skills []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		key := normalizeKeywordText(s)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
