// internal/vacancy/marketing/publisher.go
package marketing

import (
	"context"
	"fmt"
	"html"
	"strings"

	"vacancy-workers/internal/applications"
	"vacancy-workers/internal/common/logger"
	"vacancy-workers/internal/models"
)

const availableLayout = "January 02, 2006"

// ListingContext describes the unit being marketed.
type ListingContext struct {
	UnitID                 string      `json:"unit_id"`
	PropertyCode           string      `json:"property_code"`
	PropertyName           string      `json:"property_name"`
	Address                string      `json:"address"`
	Bedrooms               uint8       `json:"bedrooms"`
	Bathrooms              float32     `json:"bathrooms"`
	SquareFeet             uint16      `json:"square_feet"`
	Rent                   uint32      `json:"rent"`
	Deposit                uint32      `json:"deposit"`
	Amenities              []string    `json:"amenities"`
	NeighborhoodHighlights []string    `json:"neighborhood_highlights"`
	NearbySchools          []string    `json:"nearby_schools"`
	DriveFolderID          string      `json:"drive_folder_id"`
	AvailableOn            models.Date `json:"available_on"`
}

// Snapshot is the listing as screening sees it.
func (l ListingContext) Snapshot() applications.ListingSnapshot {
	return applications.ListingSnapshot{
		UnitID:          l.UnitID,
		PropertyCode:    l.PropertyCode,
		ListedRent:      l.Rent,
		AvailableOn:     l.AvailableOn,
		DepositRequired: l.Deposit,
	}
}

type ProspectCandidate struct {
	Name       string                  `json:"name"`
	Submission applications.Submission `json:"submission"`
}

type ProspectOutcome struct {
	Name      string `json:"name"`
	Decision  string `json:"decision"`
	Rationale string `json:"rationale"`
}

type Input struct {
	Listing          ListingContext      `json:"listing"`
	SampleApplicants []ProspectCandidate `json:"sample_applicants"`
}

// Plan is the prepared marketing package for one listing.
type Plan struct {
	Description       string            `json:"description"`
	GoogleDocID       string            `json:"google_doc_id"`
	SelectedPhotos    []DriveMedia      `json:"selected_photos"`
	MissingPhotos     bool              `json:"missing_photos"`
	ComplianceSummary string            `json:"compliance_summary"`
	ProspectOutcomes  []ProspectOutcome `json:"prospect_outcomes"`
}

// EvaluationError reports a sample applicant the compliance guard rejected.
type EvaluationError struct {
	Candidate string
	Err       error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("unable to evaluate applicant: %s: %v", e.Candidate, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// Publisher drafts listing copy into Drive and previews how sample
// prospects would be screened under the same rubric.
type Publisher struct {
	drive  DriveGateway
	config applications.EvaluationConfig
	guard  *applications.ComplianceGuard
	engine *applications.EvaluationEngine
	log    logger.Logger
}

func NewPublisher(drive DriveGateway, cfg applications.EvaluationConfig, log logger.Logger) *Publisher {
	return &Publisher{
		drive:  drive,
		config: cfg,
		guard:  applications.ComplianceGuardFromConfig(cfg),
		engine: applications.NewEvaluationEngine(cfg),
		log:    logger.Component(log, "listing-publisher"),
	}
}

// PrepareListing picks the folder's images, writes the description and
// compliance summary into a new Google Doc, then scores every sample
// applicant. Any failure aborts the whole plan.
func (p *Publisher) PrepareListing(ctx context.Context, input Input) (*Plan, error) {
	listing := input.Listing

	media, err := p.drive.ListUnitMedia(ctx, listing.DriveFolderID)
	if err != nil {
		return nil, err
	}
	photos := make([]DriveMedia, 0, len(media))
	for _, item := range media {
		if item.IsImage() {
			photos = append(photos, item)
		}
	}

	plan := &Plan{
		SelectedPhotos:    photos,
		MissingPhotos:     len(photos) == 0,
		ComplianceSummary: complianceSummary(p.config),
	}
	plan.Description = listingDescription(listing, !plan.MissingPhotos, p.config)

	title := fmt.Sprintf("%s %s Listing Marketing Draft", listing.PropertyName, listing.UnitID)
	body := listingHTML(listing, plan.Description, photos, plan.ComplianceSummary)
	plan.GoogleDocID, err = p.drive.CreateListingDocument(ctx, title, body, listing.DriveFolderID)
	if err != nil {
		return nil, err
	}

	plan.ProspectOutcomes, err = p.evaluateSamples(input.SampleApplicants)
	if err != nil {
		return nil, err
	}

	p.log.Info("listing marketing draft created", map[string]interface{}{
		"unitId":        listing.UnitID,
		"googleDocId":   plan.GoogleDocID,
		"photos":        len(photos),
		"missingPhotos": plan.MissingPhotos,
		"prospects":     len(plan.ProspectOutcomes),
	})
	return plan, nil
}

func (p *Publisher) evaluateSamples(candidates []ProspectCandidate) ([]ProspectOutcome, error) {
	outcomes := make([]ProspectOutcome, 0, len(candidates))
	for _, candidate := range candidates {
		profile, err := p.guard.ProfileFromSubmission(candidate.Submission)
		if err != nil {
			return nil, &EvaluationError{Candidate: candidate.Name, Err: err}
		}
		profile.ApplicationID = applications.ApplicationID(demoID(candidate.Name))

		outcome := p.engine.Score(profile)
		outcomes = append(outcomes, ProspectOutcome{
			Name:      candidate.Name,
			Decision:  outcome.Decision.Summary(),
			Rationale: outcomeRationale(outcome, profile),
		})
	}
	return outcomes, nil
}

// IncomeMultiplier converts the rent-to-income ceiling into the "N x rent"
// figure quoted in listings. Zero means no published multiplier.
func IncomeMultiplier(cfg applications.EvaluationConfig) float64 {
	if cfg.MinimumRentToIncomeRatio <= 0 {
		return 0
	}
	return 1 / float64(cfg.MinimumRentToIncomeRatio)
}

func listingDescription(listing ListingContext, hasMedia bool, cfg applications.EvaluationConfig) string {
	income := "steady verifiable income meeting published criteria"
	if m := IncomeMultiplier(cfg); m > 0 {
		income = fmt.Sprintf("steady verifiable income of at least %.1fx rent", m)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s - Available %s\n", listing.PropertyName, listing.UnitID, availableOn(listing))
	fmt.Fprintf(&b, "Address: %s\n", listing.Address)
	fmt.Fprintf(&b, "%d bedroom / %.1f bath | %d sq ft | $%d per month\n\n",
		listing.Bedrooms, listing.Bathrooms, listing.SquareFeet, listing.Rent)

	if len(listing.Amenities) > 0 {
		fmt.Fprintf(&b, "Amenities: %s\n", strings.Join(listing.Amenities, ", "))
	}
	if len(listing.NeighborhoodHighlights) > 0 {
		fmt.Fprintf(&b, "Neighborhood highlights: %s\n", strings.Join(listing.NeighborhoodHighlights, ", "))
	}
	if len(listing.NearbySchools) > 0 {
		fmt.Fprintf(&b, "Nearby schools: %s\n", strings.Join(listing.NearbySchools, ", "))
	}

	if hasMedia {
		b.WriteString("Marketing assets: Refreshed photo set pulled from Google Drive listing archive.\n")
	} else {
		b.WriteString("Marketing assets: Requesting refreshed photography to keep the listing current.\n")
	}

	fmt.Fprintf(&b, "\nPrequalifiers: No smoking, no pets (Service animals always welcome), %s, "+
		"no violent criminal history within the past seven years, and applicants must not be on any sex offender registry.\n", income)
	b.WriteString("We proudly comply with the Fair Housing Act and the Iowa Civil Rights Act. " +
		"Marketing language focuses on unit features and availability without steering or excluding protected classes.\n")
	return b.String()
}

func complianceSummary(cfg applications.EvaluationConfig) string {
	return fmt.Sprintf("Compliance guard rails: Fair Housing Act & Iowa Civil Rights Act honored; "+
		"deposit capped at %.1fx rent; violent felonies screened within %d years; "+
		"smoking and pet policies applied uniformly with service animals accommodated.",
		cfg.DepositCapMultiplier, cfg.ViolentFelonyLookbackYears)
}

func listingHTML(listing ListingContext, description string, photos []DriveMedia, summary string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(
		fmt.Sprintf("%s %s - Available %s", listing.PropertyName, listing.UnitID, availableOn(listing))))
	fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(listing.Address))

	for _, line := range strings.Split(description, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(line))
		}
	}

	if len(photos) > 0 {
		b.WriteString("<h2>Selected Media</h2><ul>")
		for _, photo := range photos {
			label := html.EscapeString(photo.Name)
			if photo.WebViewLink != "" {
				fmt.Fprintf(&b, "<li><a href=\"%s\">%s</a></li>\n", html.EscapeString(photo.WebViewLink), label)
			} else {
				fmt.Fprintf(&b, "<li>%s</li>\n", label)
			}
		}
		b.WriteString("</ul>")
	}

	fmt.Fprintf(&b, "<p><em>%s</em></p>\n", html.EscapeString(summary))
	return b.String()
}

func outcomeRationale(outcome applications.EvaluationOutcome, profile *applications.ApplicantProfile) string {
	var core string
	d := outcome.Decision
	switch d.Kind {
	case applications.DecisionApproved:
		core = fmt.Sprintf("Approved with composite score %d; applicant meets published lawful factors.", outcome.TotalScore)
	case applications.DecisionConditionalApproval:
		if len(d.RequiredActions) == 0 {
			core = fmt.Sprintf("Conditional approval with composite score %d; lawful follow-up required.", outcome.TotalScore)
		} else {
			core = fmt.Sprintf("Conditional approval (score %d): %s.", outcome.TotalScore, strings.Join(d.RequiredActions, ", "))
		}
	case applications.DecisionDenied:
		core = fmt.Sprintf("Denied (score %d): %s.", outcome.TotalScore, d.Summary())
	default:
		if len(d.Reasons) == 0 {
			core = fmt.Sprintf("Manual review required (score %d).", outcome.TotalScore)
		} else {
			core = fmt.Sprintf("Manual review required (score %d): %s.", outcome.TotalScore, strings.Join(d.Reasons, "; "))
		}
	}

	rationale := core + " Decision is communicated with Fair Housing-compliant adverse action language when necessary."
	if len(profile.CriminalHistory) > 0 {
		rationale += " Criminal background reviewed in accordance with HUD disparate impact guidance."
	}
	return rationale
}

func availableOn(listing ListingContext) string {
	return listing.AvailableOn.Time().Format(availableLayout)
}

// demoID turns a prospect name into a stable id such as demo-high-risk-applicant.
func demoID(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "demo-applicant"
	}
	return "demo-" + slug
}
