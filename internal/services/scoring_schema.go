package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// scoringResponseSchema is the contract the scoring collaborator must meet.
// Fields may be omitted, but present fields must have the declared types.
const scoringResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["overall_match"],
  "properties": {
    "overall_match": {
      "type": "object",
      "properties": {
        "score": {"type": "number"},
        "summary": {"type": "string"},
        "strengths": {"type": "array", "items": {"type": "string"}},
        "gaps": {"type": "array", "items": {"type": "string"}}
      }
    },
    "skills_analysis": {
      "type": "object",
      "properties": {
        "matching_skills": {"type": "array", "items": {"type": "string"}},
        "missing_skills": {"type": "array", "items": {"type": "string"}},
        "skill_scores": {"type": "object", "additionalProperties": {"type": "number"}}
      }
    },
    "experience_analysis": {
      "type": "object",
      "properties": {
        "relevant_experience": {"type": "array", "items": {"type": "string"}},
        "years_of_experience": {"type": "number"},
        "experience_scores": {"type": "object", "additionalProperties": {"type": "number"}}
      }
    },
    "interview_questions": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "question": {"type": "string"},
          "purpose": {"type": "string"}
        }
      }
    }
  }
}`

var scoringSchemaLoader = gojsonschema.NewStringLoader(scoringResponseSchema)

type scoringResponse struct {
	OverallMatch struct {
		Score     *float64 `json:"score"`
		Summary   string   `json:"summary"`
		Strengths []string `json:"strengths"`
		Gaps      []string `json:"gaps"`
	} `json:"overall_match"`
	SkillsAnalysis struct {
		MatchingSkills []string           `json:"matching_skills"`
		MissingSkills  []string           `json:"missing_skills"`
		SkillScores    map[string]float64 `json:"skill_scores"`
	} `json:"skills_analysis"`
	ExperienceAnalysis struct {
		RelevantExperience []string           `json:"relevant_experience"`
		YearsOfExperience  *float64           `json:"years_of_experience"`
		ExperienceScores   map[string]float64 `json:"experience_scores"`
	} `json:"experience_analysis"`
	InterviewQuestions []struct {
		Question string `json:"question"`
		Purpose  string `json:"purpose"`
	} `json:"interview_questions"`
}

// parseScoringResponse validates body against the schema and decodes it.
// Any deviation is a MalformedResponse.
func parseScoringResponse(body string) (*scoringResponse, error) {
	cleaned := CleanJSONBlock(body)
	if cleaned == "" {
		return nil, &ScoringError{Kind: KindMalformedResponse, Cause: fmt.Errorf("empty response body")}
	}

	result, err := gojsonschema.Validate(scoringSchemaLoader, gojsonschema.NewStringLoader(cleaned))
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

	var parsed scoringResponse
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, &ScoringError{Kind: KindMalformedResponse, Cause: fmt.Errorf("failed to decode response: %w", err)}
	}
	return &parsed, nil
}

// CleanJSONBlock removes markdown code fences models add around JSON.
func CleanJSONBlock(text string) string {
	clean := strings.TrimSpace(text)

	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")

	return strings.TrimSpace(clean)
}
