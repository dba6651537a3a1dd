// pkg/registry/activities.go
package registry

const (
	TaskSubmitApplication    = "submit-application"
	TaskEvaluateApplication  = "evaluate-application"
	TaskSendApplicationAlert = "send-application-alert"
	TaskBuildVacancyReport   = "build-vacancy-report"
)

const datePattern = `^\d{4}-\d{2}-\d{2}$`

type schema = map[string]interface{}

func object(required []string, props schema) schema {
	s := schema{"type": "object", "properties": props}
	if len(required) > 0 {
		s["required"] = toInterfaces(required)
	}
	return s
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func str() schema               { return schema{"type": "string"} }
func date() schema              { return schema{"type": "string", "pattern": datePattern} }
func boolean() schema           { return schema{"type": "boolean"} }
func array(items schema) schema { return schema{"type": "array", "items": items} }

func nonNegative() schema {
	return schema{"type": "integer", "minimum": 0}
}

func enum(values ...string) schema {
	return schema{"type": "string", "enum": toInterfaces(values)}
}

// SubmissionSchema describes a raw applicant submission as accepted by the
// HTTP API and the submit-application worker.
func SubmissionSchema() map[string]interface{} {
	return object(
		[]string{"listing", "household", "screening_answers", "income"},
		schema{
			"listing": object([]string{"unit_id", "listed_rent", "deposit_required"}, schema{
				"unit_id":          schema{"type": "string", "minLength": 1},
				"property_code":    str(),
				"listed_rent":      nonNegative(),
				"available_on":     date(),
				"deposit_required": nonNegative(),
			}),
			"household": object([]string{"adults", "children"}, schema{
				"adults":            nonNegative(),
				"children":          nonNegative(),
				"bedrooms_required": nonNegative(),
			}),
			"screening_answers": object(nil, schema{
				"pets":                                   boolean(),
				"service_animals":                        boolean(),
				"smoker":                                 boolean(),
				"requested_accessibility_accommodations": array(str()),
				"requested_move_in":                      date(),
				"disclosed_vouchers":                     array(object([]string{"program"}, schema{"program": str(), "monthly_amount": nonNegative()})),
				"prohibited_preferences":                 schema{"type": "array"},
			}),
			"income": object([]string{"gross_monthly_income"}, schema{
				"gross_monthly_income":    nonNegative(),
				"verified_income_sources": array(str()),
				"housing_voucher_amount":  nonNegative(),
			}),
			"rental_history":       schema{"type": "array"},
			"credit_score":         schema{"type": "integer", "minimum": 300, "maximum": 850},
			"criminal_history":     array(object([]string{"classification", "years_since"}, schema{"classification": enum("ViolentFelony", "NonViolentFelony", "Misdemeanor"), "years_since": nonNegative()})),
			"supporting_documents": schema{"type": "array"},
		},
	)
}

// Default is the registry of the workers this module ships.
func Default() *ActivityRegistry {
	return &ActivityRegistry{
		Version:     "1.0.0",
		LastUpdated: "2025-10-01",
		Activities: []Activity{
			{
				ID:                   "application.intake.submit",
				DisplayName:          "Submit Rental Application",
				Description:          "Screens a raw submission through the compliance guard and stores it as submitted",
				Category:             "applications",
				Version:              "1.0.0",
				TaskType:             TaskSubmitApplication,
				ImplementationStatus: "implemented",
				InputSchema:          object([]string{"submission"}, schema{"submission": SubmissionSchema()}),
				OutputSchema: object([]string{"applicationId", "status"}, schema{
					"applicationId": str(),
					"status":        str(),
				}),
				ErrorCodes: []string{"COMPLIANCE_VIOLATION", "DUPLICATE_APPLICATION", "REPOSITORY_UNAVAILABLE", "INVALID_PAYLOAD"},
				Timeout:    "10s",
				Retries:    3,
				Workflows:  []string{"rental-application"},
				Tags:       []string{"compliance", "intake"},
			},
			{
				ID:                   "application.screening.evaluate",
				DisplayName:          "Evaluate Rental Application",
				Description:          "Scores a stored application against the lawful rubric and records the decision",
				Category:             "applications",
				Version:              "1.0.0",
				TaskType:             TaskEvaluateApplication,
				ImplementationStatus: "implemented",
				InputSchema: object([]string{"applicationId"}, schema{
					"applicationId": schema{"type": "string", "pattern": "^app-[0-9]+$"},
				}),
				OutputSchema: object([]string{"applicationId", "status", "decision", "totalScore"}, schema{
					"applicationId": str(),
					"status":        str(),
					"decision":      enum("Approved", "ConditionalApproval", "Denied", "ManualReview"),
					"totalScore":    schema{"type": "integer"},
					"rationale":     str(),
					"alertSent":     boolean(),
				}),
				ErrorCodes: []string{"APPLICATION_NOT_FOUND", "REPOSITORY_UNAVAILABLE", "ALERT_FAILED", "INVALID_PAYLOAD"},
				Timeout:    "10s",
				Retries:    3,
				Workflows:  []string{"rental-application"},
				Tags:       []string{"scoring", "fair-housing"},
			},
			{
				ID:                   "application.notification.alert",
				DisplayName:          "Send Application Alert",
				Description:          "Renders an application alert template and hands it to the configured transports",
				Category:             "communication",
				Version:              "1.0.0",
				TaskType:             TaskSendApplicationAlert,
				ImplementationStatus: "implemented",
				InputSchema: object([]string{"template", "applicationId"}, schema{
					"template":      enum("applicant_approved", "manual_review_pending"),
					"applicationId": str(),
					"details":       schema{"type": "object"},
				}),
				OutputSchema: object([]string{"notificationId", "status"}, schema{
					"notificationId": str(),
					"status":         enum("sent", "failed"),
					"subject":        str(),
				}),
				ErrorCodes: []string{"ALERT_FAILED", "INVALID_PAYLOAD"},
				Timeout:    "15s",
				Retries:    2,
				Workflows:  []string{"rental-application", "manual-review"},
				Tags:       []string{"notification", "sns", "ses"},
			},
			{
				ID:                   "vacancy.workflow.report",
				DisplayName:          "Build Vacancy Report",
				Description:          "Builds the turnover report and readiness insights for one vacancy",
				Category:             "vacancy",
				Version:              "1.0.0",
				TaskType:             TaskBuildVacancyReport,
				ImplementationStatus: "implemented",
				InputSchema: object([]string{"vacancyStart", "targetMoveIn"}, schema{
					"vacancyStart": date(),
					"targetMoveIn": date(),
					"today":        date(),
					"includeTasks": boolean(),
					"taskUpdates": array(object([]string{"key", "status"}, schema{
						"key":         str(),
						"status":      enum("not_started", "in_progress", "blocked", "completed"),
						"completedOn": date(),
					})),
				}),
				OutputSchema: object([]string{"readinessScore", "readinessLevel"}, schema{
					"readinessScore": schema{"type": "integer", "minimum": 0, "maximum": 100},
					"readinessLevel": enum("on_track", "monitor", "at_risk"),
					"overdueCount":   nonNegative(),
					"criticalAlerts": nonNegative(),
					"snapshot":       schema{"type": "object"},
				}),
				ErrorCodes: []string{"TASK_NOT_FOUND", "INVALID_PAYLOAD"},
				Timeout:    "5s",
				Retries:    1,
				Workflows:  []string{"vacancy-turnover"},
				Tags:       []string{"vacancy", "reporting"},
			},
		},
	}
}
