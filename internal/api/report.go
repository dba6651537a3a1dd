// internal/api/report.go
package api

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"vacancy-workers/internal/common/metrics"
	"vacancy-workers/internal/models"
	"vacancy-workers/internal/vacancy"
	"vacancy-workers/internal/vacancy/apollo"
)

const (
	DataSourceApollo   = "apollo"
	DataSourceStandard = "standard"
)

type ReportRequest struct {
	VacancyStart string               `json:"vacancy_start" validate:"required,datetime=2006-01-02"`
	TargetMoveIn string               `json:"target_move_in" validate:"required,datetime=2006-01-02"`
	Today        string               `json:"today" validate:"omitempty,datetime=2006-01-02"`
	IncludeTasks bool                 `json:"include_tasks"`
	ApolloCSV    string               `json:"apollo_csv"`
	TaskUpdates  []vacancy.TaskUpdate `json:"task_updates"`
}

type ReportResponse struct {
	vacancy.Snapshot
	DataSource string `json:"data_source"`
}

func (s *Server) buildReport(c *fiber.Ctx) error {
	var req ReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_json",
			"message": err.Error(),
		})
	}
	if err := s.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_payload",
			"message": describeValidation(err),
		})
	}

	start := models.MustParseDate(req.VacancyStart)
	moveIn := models.MustParseDate(req.TargetMoveIn)
	if err := vacancy.ValidateWindow(start, moveIn); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_window",
			"message": err.Error(),
		})
	}

	today := models.DateOf(s.now())
	if req.Today != "" {
		today = models.MustParseDate(req.Today)
	}

	instance := vacancy.NewInstance(s.catalog, start, moveIn)
	source := DataSourceStandard
	if strings.TrimSpace(req.ApolloCSV) != "" {
		imported, err := apollo.ImportCSV(strings.NewReader(req.ApolloCSV), start, moveIn)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "invalid_apollo_csv",
				"message": err.Error(),
			})
		}
		instance = imported
		source = DataSourceApollo
	}

	if err := instance.ApplyUpdates(req.TaskUpdates); err != nil {
		status := fiber.StatusBadRequest
		if errors.Is(err, vacancy.ErrTaskNotFound) {
			status = fiber.StatusNotFound
		}
		return c.Status(status).JSON(fiber.Map{
			"error":   "invalid_task_update",
			"message": err.Error(),
		})
	}

	snap := vacancy.BuildSnapshot(instance, today, req.IncludeTasks)
	metrics.ReadinessScore.Set(float64(snap.Insights.ReadinessScore))

	return c.JSON(ReportResponse{Snapshot: snap, DataSource: source})
}

func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fe.Field()+" failed "+fe.Tag())
	}
	return strings.Join(parts, "; ")
}
