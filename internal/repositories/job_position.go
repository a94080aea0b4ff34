package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/deepanshu089/suprathon/internal/models"
)

// ErrNotFound is returned when a lookup by ID matches no row.
var ErrNotFound = errors.New("record not found")

type JobPositionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.JobPosition, error)
	List(ctx context.Context) ([]models.JobPosition, error)
	EnsureDefaults(ctx context.Context) (int, error)
}

type jobPositionRepository struct {
	db *gorm.DB
}

func NewJobPositionRepository(db *gorm.DB) JobPositionRepository {
	return &jobPositionRepository{db: db}
}

// FindByID implements JobPositionRepository.
func (r *jobPositionRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.JobPosition, error) {
	var position models.JobPosition
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&position).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job position %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find job position: %w", err)
	}
	return &position, nil
}

// List implements JobPositionRepository.
func (r *jobPositionRepository) List(ctx context.Context) ([]models.JobPosition, error) {
	var positions []models.JobPosition
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&positions).Error; err != nil {
		return nil, fmt.Errorf("failed to list job positions: %w", err)
	}
	return positions, nil
}

// EnsureDefaults inserts every default position whose title is missing and
// returns how many rows were added.
func (r *jobPositionRepository) EnsureDefaults(ctx context.Context) (int, error) {
	var existing []string
	if err := r.db.WithContext(ctx).Model(&models.JobPosition{}).Pluck("title", &existing).Error; err != nil {
		return 0, fmt.Errorf("failed to load job position titles: %w", err)
	}

	missing := MissingDefaultPositions(existing)
	if len(missing) == 0 {
		return 0, nil
	}

	if err := r.db.WithContext(ctx).Create(&missing).Error; err != nil {
		return 0, fmt.Errorf("failed to create default job positions: %w", err)
	}
	return len(missing), nil
}

// MissingDefaultPositions returns the default positions whose titles are not
// in existingTitles.
func MissingDefaultPositions(existingTitles []string) []models.JobPosition {
	seen := make(map[string]struct{}, len(existingTitles))
	for _, title := range existingTitles {
		seen[title] = struct{}{}
	}

	var missing []models.JobPosition
	for _, p := range DefaultJobPositions() {
		if _, ok := seen[p.Title]; !ok {
			missing = append(missing, p)
		}
	}
	return missing
}

func DefaultJobPositions() []models.JobPosition {
	return []models.JobPosition{
		{
			Title:        "Frontend Developer",
			Description:  "We are looking for a Frontend Developer to join our team and help build beautiful and responsive web applications. The ideal candidate should have strong experience with modern JavaScript frameworks, particularly React, and a keen eye for design and user experience.",
			Requirements: []string{"React", "JavaScript", "CSS", "HTML", "TypeScript", "3+ years experience", "Responsive Design", "UI/UX principles"},
			Status:       models.JobPositionActive,
		},
		{
			Title:        "Backend Developer",
			Description:  "Seeking a skilled Backend Developer to design and implement scalable APIs and services. The role involves working with modern technologies to build robust server-side applications and microservices.",
			Requirements: []string{"Node.js", "Express", "SQL", "NoSQL", "RESTful API design", "3+ years experience", "Microservices", "Docker", "AWS"},
			Status:       models.JobPositionActive,
		},
		{
			Title:        "Full Stack Developer",
			Description:  "We need a Full Stack Developer who can work on both frontend and backend aspects of our applications. The ideal candidate should be comfortable working across the entire stack and have experience with modern web technologies.",
			Requirements: []string{"React", "Node.js", "Express", "SQL", "JavaScript", "4+ years experience", "TypeScript", "Docker", "AWS"},
			Status:       models.JobPositionActive,
		},
		{
			Title:        "DevOps Engineer",
			Description:  "Looking for a DevOps Engineer to help streamline our development and deployment processes. The role involves setting up and maintaining CI/CD pipelines, managing cloud infrastructure, and ensuring system reliability.",
			Requirements: []string{"Docker", "Kubernetes", "AWS/Azure", "CI/CD", "Terraform", "3+ years experience", "Linux", "Shell scripting"},
			Status:       models.JobPositionActive,
		},
		{
			Title:        "Data Scientist",
			Description:  "We are seeking a Data Scientist to help us extract insights from our data and build predictive models. The ideal candidate should have strong analytical skills and experience with machine learning.",
			Requirements: []string{"Python", "R", "Machine Learning", "SQL", "Data Analysis", "3+ years experience", "TensorFlow/PyTorch", "Statistics"},
			Status:       models.JobPositionActive,
		},
		{
			Title:        "Mobile Developer",
			Description:  "Looking for a Mobile Developer to build and maintain our iOS and Android applications. The ideal candidate should have experience with native mobile development and cross-platform frameworks.",
			Requirements: []string{"React Native", "Swift", "Kotlin", "Mobile UI/UX", "3+ years experience", "REST APIs", "Mobile testing"},
			Status:       models.JobPositionActive,
		},
		{
			Title:        "QA Engineer",
			Description:  "We need a QA Engineer to ensure the quality of our software products. The role involves designing and implementing test plans, automating tests, and working closely with development teams.",
			Requirements: []string{"Test Automation", "Selenium", "Jest", "Cypress", "3+ years experience", "API Testing", "Performance Testing"},
			Status:       models.JobPositionActive,
		},
		{
			Title:        "UI/UX Designer",
			Description:  "Seeking a UI/UX Designer to create beautiful and intuitive user interfaces. The ideal candidate should have a strong portfolio and experience with modern design tools and methodologies.",
			Requirements: []string{"Figma", "Adobe XD", "User Research", "Wireframing", "3+ years experience", "Design Systems", "Prototyping"},
			Status:       models.JobPositionActive,
		},
		{
			Title:        "Product Manager",
			Description:  "Looking for a Product Manager to drive the development of our products. The role involves gathering requirements, prioritizing features, and working with cross-functional teams.",
			Requirements: []string{"Product Strategy", "Agile/Scrum", "User Stories", "3+ years experience", "Data Analysis", "Stakeholder Management"},
			Status:       models.JobPositionActive,
		},
		{
			Title:        "Security Engineer",
			Description:  "We are seeking a Security Engineer to help protect our systems and data. The ideal candidate should have experience with security tools, vulnerability assessment, and incident response.",
			Requirements: []string{"Security Tools", "Penetration Testing", "Network Security", "3+ years experience", "Security Compliance", "Incident Response"},
			Status:       models.JobPositionActive,
		},
	}
}
