package services

import (
	"fmt"
	"strings"

	"github.com/deepanshu089/suprathon/internal/models"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// ScoringSystemPrompt pins the model to JSON-only output.
func (pb *PromptBuilder) ScoringSystemPrompt() string {
	return "You are an expert HR professional and technical recruiter. Respond with valid JSON only."
}

// BuildScoringPrompt creates the prompt for scoring one resume against a job description
func (pb *PromptBuilder) BuildScoringPrompt(resumeText, jobDescription string) string {
	return fmt.Sprintf(`Your task is to analyze a candidate's resume against a specific job role and description.

JOB ROLE AND DESCRIPTION:
%s

RESUME:
%s

Return your analysis in the following JSON format:
{
  "overall_match": {
    "score": <number 0-100>,
    "summary": "<brief summary of overall fit>",
    "strengths": ["<key strengths that match the role>"],
    "gaps": ["<potential gaps or missing requirements>"]
  },
  "skills_analysis": {
    "matching_skills": ["<skills from the resume that match job requirements>"],
    "missing_skills": ["<required skills not found in the resume>"],
    "skill_scores": {"<skill name>": <number 0-100 match strength>}
  },
  "experience_analysis": {
    "relevant_experience": ["<key relevant experience areas>"],
    "years_of_experience": <number>,
    "experience_scores": {"<experience area>": <number 0-100 match strength>}
  },
  "interview_questions": [
    {"question": "<technical question to assess skills>", "purpose": "<what it evaluates>"},
    {"question": "<behavioral question to assess experience>", "purpose": "<what it evaluates>"},
    {"question": "<problem-solving question>", "purpose": "<what it evaluates>"}
  ]
}

Focus on:
1. Technical skills and technologies required for the role
2. Relevant experience and projects
3. Years of experience in key areas
4. Potential gaps that need to be addressed in the interview

Base all reasoning only on the provided text. Do not include explanations, markdown, or text before or after the JSON.`,
		strings.TrimSpace(jobDescription), strings.TrimSpace(resumeText))
}

// BuildJobDescription flattens a job position into the text sent to the scorer.
func (pb *PromptBuilder) BuildJobDescription(title, description string, requirements []string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(title)
		sb.WriteString("\n\n")
	}
	sb.WriteString(strings.TrimSpace(description))
	if len(requirements) > 0 {
		sb.WriteString("\n\nRequirements: ")
		sb.WriteString(strings.Join(requirements, ", "))
	}
	return sb.String()
}

// BuildChatSystemPrompt frames the recruiter assistant around the selected job
// position and candidate. Either may be nil.
func (pb *PromptBuilder) BuildChatSystemPrompt(job *models.JobPosition, candidate *models.Candidate) string {
	var sb strings.Builder
	sb.WriteString("You are an AI recruitment assistant helping a recruiter review candidate data and select the best person for a role.\n")

	if job != nil {
		fmt.Fprintf(&sb, "Job: %s\n", job.Title)
		if len(job.Requirements) > 0 {
			fmt.Fprintf(&sb, "Requirements: %s\n", strings.Join(job.Requirements, ", "))
		}
	} else {
		sb.WriteString("No specific job selected.\n")
	}

	if candidate != nil {
		fmt.Fprintf(&sb, "Candidate: %s (status: %s)\n", candidate.Name, candidate.Status)
		if len(candidate.Analyses) > 0 {
			latest := candidate.Analyses[0].AnalysisResults
			fmt.Fprintf(&sb, "Latest match score: %.0f/100\n", latest.MatchScore)
			if latest.Summary != "" {
				fmt.Fprintf(&sb, "Summary: %s\n", latest.Summary)
			}
			if len(latest.MatchingSkills) > 0 {
				fmt.Fprintf(&sb, "Matching skills: %s\n", strings.Join(latest.MatchingSkills, ", "))
			}
			if len(latest.MissingSkills) > 0 {
				fmt.Fprintf(&sb, "Missing skills: %s\n", strings.Join(latest.MissingSkills, ", "))
			}
		}
	}

	sb.WriteString("Assess the candidate's potential for the role and answer the recruiter's questions about the resume professionally. Only use the details above and the conversation; say so when something is not known.")
	return sb.String()
}

// BuildSkillCategoryPrompt asks for a flat skill list to be grouped into the
// given technical and soft categories.
func (pb *PromptBuilder) BuildSkillCategoryPrompt(skills, technical, soft []string) string {
	return fmt.Sprintf(`Group the following skills from a candidate's resume.

SKILLS:
%s

Technical categories: %s
Soft skill categories: %s

Return JSON in exactly this format:
{
  "technicalSkills": [{"category": "<technical category>", "skills": ["<skill>"], "description": "<one sentence>"}],
  "softSkills": [{"category": "<soft skill category>", "skills": ["<skill>"], "description": "<one sentence>"}],
  "languages": [{"language": "<spoken language>", "proficiency": "Native|Fluent|Advanced|Intermediate|Basic"}]
}

Use only skills from the list. Every skill appears at most once. Spoken languages go in "languages", not in a category.`,
		"- "+strings.Join(skills, "\n- "),
		strings.Join(technical, ", "),
		strings.Join(soft, ", "))
}

// Helper to format search hits for display
func FormatSearchSnippet(text string, maxRunes int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if maxRunes <= 0 || len(runes) <= maxRunes {
		return text
	}
	return string(runes[:maxRunes]) + "..."
}
