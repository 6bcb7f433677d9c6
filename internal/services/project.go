package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/notebook-buddy/backend/internal/clients/openai"
	"github.com/notebook-buddy/backend/internal/data/repos/project"
	types "github.com/notebook-buddy/backend/internal/domain"
	"github.com/notebook-buddy/backend/internal/platform/apierr"
	"github.com/notebook-buddy/backend/internal/platform/logger"
)

// CanvasData is the client-side canvas snapshot submitted on project save.
type CanvasData struct {
	ID       string           `json:"id" binding:"required"`
	Title    string           `json:"title" binding:"required"`
	EditedAt string           `json:"editedAt"`
	Blocks   []map[string]any `json:"blocks"`
}

type ProjectService interface {
	// CreateProject provisions an assistant for the canvas and persists the
	// full project record. Assistant provisioning failure fails the request.
	CreateProject(ctx context.Context, userID uuid.UUID, canvas CanvasData) (*types.Project, map[string]any, error)
	GetProject(ctx context.Context, projectID string) (*types.Project, error)
	// GetUserProjects returns the user's projects; degraded reports that the
	// indexed query failed and a full-scan fallback served the request.
	GetUserProjects(ctx context.Context, userID uuid.UUID) (projects []*types.Project, degraded bool, err error)
	// UpdateProject overwrites the stored record with the submitted canvas.
	// There is no partial update; concurrent writers last-write-win.
	UpdateProject(ctx context.Context, userID uuid.UUID, canvas CanvasData) (*types.Project, error)
	SaveProject(ctx context.Context, p *types.Project) error
}

type projectService struct {
	log         *logger.Logger
	projectRepo project.ProjectRepo
	openai      openai.Client // nil when assistants are not configured
}

func NewProjectService(log *logger.Logger, projectRepo project.ProjectRepo, openaiClient openai.Client) (ProjectService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if projectRepo == nil {
		return nil, fmt.Errorf("project repo required")
	}
	return &projectService{
		log:         log.With("service", "ProjectService"),
		projectRepo: projectRepo,
		openai:      openaiClient,
	}, nil
}

func (s *projectService) CreateProject(ctx context.Context, userID uuid.UUID, canvas CanvasData) (*types.Project, map[string]any, error) {
	if strings.TrimSpace(canvas.ID) == "" || strings.TrimSpace(canvas.Title) == "" {
		return nil, nil, apierr.Validation("canvas id and title required")
	}

	var (
		assistant     map[string]any
		assistantID   string
		assistantName = "Untitled Assistant"
	)
	if s.openai != nil {
		created, err := s.openai.CreateAssistant(ctx, openai.AssistantOptions{
			Name:         "Project Assistant - " + canvas.Title,
			Description:  "AI assistant for notebook project",
			Instructions: "You are a helpful assistant for managing and analyzing notebook content.",
		})
		if err != nil {
			s.log.Error("Assistant provisioning failed", "project_id", canvas.ID, "error", err)
			return nil, nil, apierr.Upstream(fmt.Errorf("failed to create assistant: %w", err))
		}
		id, _ := created["id"].(string)
		if id == "" {
			return nil, nil, apierr.Upstream(fmt.Errorf("invalid assistant response"))
		}
		assistant = created
		assistantID = id
		if name, _ := created["name"].(string); name != "" {
			assistantName = name
		}
	}

	now := time.Now().UTC()
	blocksJSON, err := json.Marshal(canvas.Blocks)
	if err != nil {
		return nil, nil, apierr.Validation("canvas blocks not serializable")
	}
	metaJSON, _ := json.Marshal(map[string]any{
		"assistantName": assistantName,
		"lastModified":  now.Format(time.RFC3339),
	})

	p := &types.Project{
		ID:          canvas.ID,
		UserID:      userID,
		Title:       canvas.Title,
		EditedAt:    canvas.EditedAt,
		Blocks:      datatypes.JSON(blocksJSON),
		AssistantID: assistantID,
		Metadata:    datatypes.JSON(metaJSON),
		DateCreated: now,
		UpdatedAt:   now,
	}
	if err := s.projectRepo.Save(ctx, nil, p); err != nil {
		return nil, nil, apierr.Storage("failed to save project %s", canvas.ID)
	}

	s.log.Info("Project created", "project_id", p.ID, "user_id", userID.String(), "assistant_id", assistantID)
	return p, assistant, nil
}

func (s *projectService) GetProject(ctx context.Context, projectID string) (*types.Project, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, apierr.Validation("project id required")
	}
	p, err := s.projectRepo.GetByID(ctx, nil, projectID)
	if err != nil {
		return nil, apierr.Storage("failed to load project %s", projectID)
	}
	if p == nil {
		return nil, apierr.NotFound("project %s not found", projectID)
	}
	return p, nil
}

func (s *projectService) GetUserProjects(ctx context.Context, userID uuid.UUID) ([]*types.Project, bool, error) {
	projects, err := s.projectRepo.GetByUserID(ctx, nil, userID)
	if err == nil {
		return projects, false, nil
	}

	s.log.Warn("Indexed project query failed; falling back to full scan",
		"degraded_mode", "scan",
		"user_id", userID.String(),
		"error", err,
	)

	all, scanErr := s.projectRepo.ScanAll(ctx, nil)
	if scanErr != nil {
		return nil, false, apierr.Storage("failed to load projects for user %s", userID.String())
	}
	filtered := make([]*types.Project, 0, len(all))
	for _, p := range all {
		if p.UserID == userID {
			filtered = append(filtered, p)
		}
	}
	return filtered, true, nil
}

func (s *projectService) UpdateProject(ctx context.Context, userID uuid.UUID, canvas CanvasData) (*types.Project, error) {
	if strings.TrimSpace(canvas.ID) == "" || strings.TrimSpace(canvas.Title) == "" {
		return nil, apierr.Validation("canvas id and title required")
	}

	existing, err := s.projectRepo.GetByID(ctx, nil, canvas.ID)
	if err != nil {
		return nil, apierr.Storage("failed to load project %s", canvas.ID)
	}
	if existing == nil {
		return nil, apierr.NotFound("project %s not found", canvas.ID)
	}

	blocksJSON, err := json.Marshal(canvas.Blocks)
	if err != nil {
		return nil, apierr.Validation("canvas blocks not serializable")
	}

	now := time.Now().UTC()
	metaJSON, _ := json.Marshal(map[string]any{
		"assistantName": assistantNameFromMetadata(existing.Metadata),
		"lastModified":  now.Format(time.RFC3339),
	})

	// Assistant linkage and creation time survive the overwrite; everything
	// the canvas carries is replaced wholesale.
	p := &types.Project{
		ID:          canvas.ID,
		UserID:      userID,
		Title:       canvas.Title,
		EditedAt:    canvas.EditedAt,
		Blocks:      datatypes.JSON(blocksJSON),
		AssistantID: existing.AssistantID,
		Metadata:    datatypes.JSON(metaJSON),
		DateCreated: existing.DateCreated,
		UpdatedAt:   now,
	}
	if err := s.projectRepo.Save(ctx, nil, p); err != nil {
		return nil, apierr.Storage("failed to save project %s", canvas.ID)
	}
	return p, nil
}

func assistantNameFromMetadata(raw datatypes.JSON) string {
	var meta map[string]any
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &meta)
	}
	if name, _ := meta["assistantName"].(string); name != "" {
		return name
	}
	return "Untitled Assistant"
}

// SaveProject is the full-record upsert behind PUT-style saves.
func (s *projectService) SaveProject(ctx context.Context, p *types.Project) error {
	if p == nil || strings.TrimSpace(p.ID) == "" {
		return apierr.Validation("project id required")
	}
	p.UpdatedAt = time.Now().UTC()
	if p.DateCreated.IsZero() {
		p.DateCreated = p.UpdatedAt
	}
	if err := s.projectRepo.Save(ctx, nil, p); err != nil {
		return apierr.Storage("failed to save project %s", p.ID)
	}
	return nil
}
