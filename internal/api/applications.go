// internal/api/applications.go
package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"vacancy-workers/internal/applications"
	"vacancy-workers/internal/common/validation"
)

func (s *Server) submitApplication(c *fiber.Ctx) error {
	result, err := validation.ValidateJSON(s.submission, c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_json",
			"message": err.Error(),
		})
	}
	if !result.Valid {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_payload",
			"message": result.Summary(),
			"details": result.Errors,
		})
	}

	var sub applications.Submission
	if err := c.BodyParser(&sub); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_json",
			"message": err.Error(),
		})
	}

	record, err := s.service.Submit(c.UserContext(), sub)
	if err != nil {
		return s.serviceError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(record.StatusView())
}

func (s *Server) evaluateApplication(c *fiber.Ctx) error {
	id := applications.ApplicationID(c.Params("id"))

	outcome, err := s.service.Evaluate(c.UserContext(), id)
	if err != nil && outcome.ApplicationID == "" {
		return s.serviceError(c, err)
	}

	score := outcome.TotalScore
	view := applications.StatusView{
		ApplicationID:     outcome.ApplicationID,
		Status:            outcome.Decision.Status(),
		DecisionRationale: outcome.Decision.Summary(),
		TotalScore:        &score,
	}

	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":       "alert_failed",
			"message":     err.Error(),
			"application": view,
		})
	}
	return c.JSON(fiber.Map{
		"application_id":     view.ApplicationID,
		"status":             view.Status,
		"decision_rationale": view.DecisionRationale,
		"total_score":        view.TotalScore,
		"components":         outcome.Components,
	})
}

func (s *Server) getApplication(c *fiber.Ctx) error {
	view, err := s.service.Status(c.UserContext(), applications.ApplicationID(c.Params("id")))
	if err != nil {
		return s.serviceError(c, err)
	}
	return c.JSON(view)
}

// listPending returns the manual review queue.
func (s *Server) listPending(c *fiber.Ctx) error {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "invalid_limit",
				"message": "limit must be a non-negative integer",
			})
		}
		limit = n
	}

	records, err := s.service.Pending(c.UserContext(), limit)
	if err != nil {
		return s.serviceError(c, err)
	}

	views := make([]applications.StatusView, 0, len(records))
	for _, record := range records {
		views = append(views, record.StatusView())
	}
	return c.JSON(fiber.Map{"applications": views, "count": len(views)})
}

func (s *Server) serviceError(c *fiber.Ctx, err error) error {
	var svcErr *applications.ServiceError
	kind := applications.ErrorKind("")
	if errors.As(err, &svcErr) {
		kind = svcErr.Kind
	}

	switch {
	case kind == applications.KindCompliance:
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":   "compliance_violation",
			"message": err.Error(),
		})
	case errors.Is(err, applications.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "application already exists",
		})
	case errors.Is(err, applications.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "application not found",
			"message": err.Error(),
		})
	case kind == applications.KindAlert:
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "alert_failed",
			"message": err.Error(),
		})
	default:
		s.log.Error("unexpected service error", map[string]interface{}{"error": err.Error()})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal error",
		})
	}
}
