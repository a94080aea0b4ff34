package services

import (
	"context"
	"errors"
	"log"
	"math"
	"strings"

	"github.com/deepanshu089/suprathon/internal/models"
)

// ScoringClient scores extracted resume text against a job description.
type ScoringClient interface {
	Score(ctx context.Context, candidateText, jobDescription string) (*models.ScoringResult, error)
}

type scoringClient struct {
	llm           LLMClient
	promptBuilder *PromptBuilder
}

func NewScoringClient(llm LLMClient) ScoringClient {
	return &scoringClient{
		llm:           llm,
		promptBuilder: NewPromptBuilder(),
	}
}

// Score implements ScoringClient.
func (s *scoringClient) Score(ctx context.Context, candidateText, jobDescription string) (*models.ScoringResult, error) {
	if strings.TrimSpace(candidateText) == "" || strings.TrimSpace(jobDescription) == "" {
		return nil, &ScoringError{Kind: KindInvalidInput, Cause: errors.New("candidate text and job description are required")}
	}

	prompt := s.promptBuilder.BuildScoringPrompt(candidateText, jobDescription)
	log.Printf("📝 Scoring prompt length: %d characters", len(prompt))

	body, err := s.llm.GenerateJSON(ctx, s.promptBuilder.ScoringSystemPrompt(), prompt)
	if err != nil {
		return nil, err
	}

	parsed, err := parseScoringResponse(body)
	if err != nil {
		return nil, err
	}

	result := shapeScoringResult(parsed)
	return &result, nil
}

// shapeScoringResult clamps numbers into range and fills every collection so
// the result renders without nil checks.
func shapeScoringResult(p *scoringResponse) models.ScoringResult {
	result := models.ScoringResult{
		Summary:            strings.TrimSpace(p.OverallMatch.Summary),
		Skills:             map[string]float64{},
		Experience:         map[string]float64{},
		Strengths:          nonNil(p.OverallMatch.Strengths),
		Gaps:               nonNil(p.OverallMatch.Gaps),
		MatchingSkills:     nonNil(p.SkillsAnalysis.MatchingSkills),
		MissingSkills:      nonNil(p.SkillsAnalysis.MissingSkills),
		InterviewQuestions: []models.InterviewQuestion{},
	}

	if p.OverallMatch.Score != nil {
		result.MatchScore = clampScore(*p.OverallMatch.Score)
	}
	if y := p.ExperienceAnalysis.YearsOfExperience; y != nil && *y > 0 && !math.IsNaN(*y) {
		result.YearsOfExperience = *y
	}

	if len(p.SkillsAnalysis.SkillScores) > 0 {
		for skill, score := range p.SkillsAnalysis.SkillScores {
			result.Skills[skill] = clampScore(score)
		}
	} else {
		for _, skill := range result.MatchingSkills {
			result.Skills[skill] = 100
		}
		for _, skill := range result.MissingSkills {
			if _, ok := result.Skills[skill]; !ok {
				result.Skills[skill] = 0
			}
		}
	}

	if len(p.ExperienceAnalysis.ExperienceScores) > 0 {
		for area, score := range p.ExperienceAnalysis.ExperienceScores {
			result.Experience[area] = clampScore(score)
		}
	} else {
		for _, area := range p.ExperienceAnalysis.RelevantExperience {
			result.Experience[area] = 100
		}
	}

	for _, q := range p.InterviewQuestions {
		if strings.TrimSpace(q.Question) == "" {
			continue
		}
		result.InterviewQuestions = append(result.InterviewQuestions, models.InterviewQuestion{
			Question: q.Question,
			Purpose:  q.Purpose,
		})
	}

	return result
}

func clampScore(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
