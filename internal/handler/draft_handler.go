package handler

import (
	"quizdraft/internal/domain"
	"quizdraft/internal/dto"
	"quizdraft/internal/logger"
	"quizdraft/internal/middleware"
	"quizdraft/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DraftHandler handles draft authoring HTTP requests
type DraftHandler struct {
	service service.DraftService
}

// NewDraftHandler creates a new DraftHandler instance
func NewDraftHandler(service service.DraftService) *DraftHandler {
	return &DraftHandler{
		service: service,
	}
}

// RegisterRoutes mounts the draft authoring routes under the given router.
func (h *DraftHandler) RegisterRoutes(router fiber.Router, vm *middleware.ValidationMiddleware) {
	drafts := router.Group("/drafts/:lessonID", vm.ValidateLessonID())

	drafts.Get("/", h.GetDraft)
	drafts.Post("/sections", h.AddSection)
	drafts.Patch("/sections/:localID", vm.ValidateLocalID(), h.UpdateSection)
	drafts.Delete("/sections/:localID", vm.ValidateLocalID(), h.RemoveSection)
	drafts.Post("/sections/:localID/questions", vm.ValidateLocalID(), h.AddQuestion)
	drafts.Patch("/questions/:localID", vm.ValidateLocalID(), h.UpdateQuestion)
	drafts.Delete("/questions/:localID", vm.ValidateLocalID(), h.RemoveQuestion)
	drafts.Post("/questions/:localID/options", vm.ValidateLocalID(), h.AddOption)
	drafts.Patch("/options/:localID", vm.ValidateLocalID(), h.UpdateOption)
	drafts.Delete("/options/:localID", vm.ValidateLocalID(), h.RemoveOption)
	drafts.Post("/reorder", h.Reorder)
	drafts.Post("/save", h.Save)
	drafts.Get("/progress", h.GetProgress)
}

// GetDraft loads (or returns the already-loaded) draft for a lesson.
// GET /api/drafts/:lessonID
func (h *DraftHandler) GetDraft(c *fiber.Ctx) error {
	lessonID := c.Params("lessonID")
	draft, err := h.service.LoadDraft(c.Context(), lessonID)
	if err != nil {
		logger.Get().Error("Failed to load draft",
			zap.Error(err),
			zap.String("lesson_id", lessonID),
		)
		return err
	}
	return c.JSON(draft)
}

// AddSection appends an empty section to the draft.
// POST /api/drafts/:lessonID/sections
func (h *DraftHandler) AddSection(c *fiber.Ctx) error {
	draft, err := h.service.AddSection(c.Context(), c.Params("lessonID"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(draft)
}

// UpdateSection sets a section's name and description.
// PATCH /api/drafts/:lessonID/sections/:localID
func (h *DraftHandler) UpdateSection(c *fiber.Ctx) error {
	var req dto.UpdateSectionRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	draft, err := h.service.UpdateSection(c.Context(), c.Params("lessonID"), c.Params("localID"), req)
	if err != nil {
		return err
	}
	return c.JSON(draft)
}

// RemoveSection drops a section from the draft.
// DELETE /api/drafts/:lessonID/sections/:localID
func (h *DraftHandler) RemoveSection(c *fiber.Ctx) error {
	draft, err := h.service.RemoveSection(c.Context(), c.Params("lessonID"), c.Params("localID"))
	if err != nil {
		return err
	}
	return c.JSON(draft)
}

// AddQuestion appends a question of the requested kind to a section.
// POST /api/drafts/:lessonID/sections/:localID/questions
func (h *DraftHandler) AddQuestion(c *fiber.Ctx) error {
	var req dto.AddQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	draft, err := h.service.AddQuestion(c.Context(), c.Params("lessonID"), c.Params("localID"), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(draft)
}

// UpdateQuestion applies a partial update to a question.
// PATCH /api/drafts/:lessonID/questions/:localID
func (h *DraftHandler) UpdateQuestion(c *fiber.Ctx) error {
	var req dto.UpdateQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	draft, err := h.service.UpdateQuestion(c.Context(), c.Params("lessonID"), c.Params("localID"), req)
	if err != nil {
		return err
	}
	return c.JSON(draft)
}

// RemoveQuestion drops a question from the draft.
// DELETE /api/drafts/:lessonID/questions/:localID
func (h *DraftHandler) RemoveQuestion(c *fiber.Ctx) error {
	draft, err := h.service.RemoveQuestion(c.Context(), c.Params("lessonID"), c.Params("localID"))
	if err != nil {
		return err
	}
	return c.JSON(draft)
}

// AddOption appends a blank option to a question.
// POST /api/drafts/:lessonID/questions/:localID/options
func (h *DraftHandler) AddOption(c *fiber.Ctx) error {
	draft, err := h.service.AddOption(c.Context(), c.Params("lessonID"), c.Params("localID"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(draft)
}

// UpdateOption applies a partial update to an answer option.
// PATCH /api/drafts/:lessonID/options/:localID
func (h *DraftHandler) UpdateOption(c *fiber.Ctx) error {
	var req dto.UpdateOptionRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	draft, err := h.service.UpdateOption(c.Context(), c.Params("lessonID"), c.Params("localID"), req)
	if err != nil {
		return err
	}
	return c.JSON(draft)
}

// RemoveOption drops an option from a question.
// DELETE /api/drafts/:lessonID/options/:localID
func (h *DraftHandler) RemoveOption(c *fiber.Ctx) error {
	draft, err := h.service.RemoveOption(c.Context(), c.Params("lessonID"), c.Params("localID"))
	if err != nil {
		return err
	}
	return c.JSON(draft)
}

// Reorder relocates a sibling within its parent by index.
// POST /api/drafts/:lessonID/reorder
func (h *DraftHandler) Reorder(c *fiber.Ctx) error {
	var req dto.ReorderRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	resp, err := h.service.Reorder(c.Context(), c.Params("lessonID"), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Save triggers the reconciliation run for a lesson's draft. While a run is
// active further triggers are answered with 409.
// POST /api/drafts/:lessonID/save
func (h *DraftHandler) Save(c *fiber.Ctx) error {
	lessonID := c.Params("lessonID")
	resp, err := h.service.Save(c.Context(), lessonID)
	if err != nil {
		if resp != nil {
			// Partial failure: some nodes persisted, some did not. The
			// caller gets the detailed outcome instead of a bare error.
			logger.Get().Warn("Save completed with failures",
				zap.String("lesson_id", lessonID),
				zap.Int("failed_nodes", len(resp.Failures)),
			)
			return c.Status(fiber.StatusBadGateway).JSON(resp)
		}
		return err
	}
	return c.JSON(resp)
}

// GetProgress returns the live per-node status list of the current or most
// recent save run.
// GET /api/drafts/:lessonID/progress
func (h *DraftHandler) GetProgress(c *fiber.Ctx) error {
	entries, err := h.service.Progress(c.Context(), c.Params("lessonID"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"entries": entries})
}
