// internal/vacancy/catalog.go
package vacancy

// Catalog is the ordered, read-only set of task templates for a vacancy.
type Catalog struct {
	templates []TaskTemplate
}

func NewCatalog(templates []TaskTemplate) *Catalog {
	owned := make([]TaskTemplate, len(templates))
	for i, t := range templates {
		owned[i] = t.clone()
	}
	return &Catalog{templates: owned}
}

// StandardCatalog returns the Iowa LIHTC vacancy-to-move-in checklist.
func StandardCatalog() *Catalog {
	return NewCatalog(standardTemplates())
}

// Templates returns copies; mutating them does not affect the catalog.
func (c *Catalog) Templates() []TaskTemplate {
	out := make([]TaskTemplate, len(c.templates))
	for i, t := range c.templates {
		out[i] = t.clone()
	}
	return out
}

func (c *Catalog) ForStage(stage Stage) []TaskTemplate {
	var out []TaskTemplate
	for _, t := range c.templates {
		if t.Stage == stage {
			out = append(out, t.clone())
		}
	}
	return out
}

func (c *Catalog) Lookup(key string) (TaskTemplate, bool) {
	for _, t := range c.templates {
		if t.Key == key {
			return t.clone(), true
		}
	}
	return TaskTemplate{}, false
}

func (c *Catalog) Len() int { return len(c.templates) }

func standardTemplates() []TaskTemplate {
	return []TaskTemplate{
		{
			Key:   "marketing_publish_listing",
			Name:  "Create and Publish Listing",
			Stage: StageMarketing,
			Role:  RoleLeasingAgent,
			Due:   DaysFromVacancy(0),
			Deliverables: []string{
				"Draft a fresh listing that highlights unit features, affordability programs, and rent ready date.",
				"Upload current listing photos or virtual tour links before publishing.",
				"Syndicate to Zillow, Apartments.com, social media, and capture marketing URLs for reporting.",
			},
			Compliance: []ComplianceNote{{
				Topic:  "Iowa Code § 562A.29 reasonable re-rental efforts",
				Detail: "Document every marketing channel touch to evidence reasonable efforts to re-rent (Iowa Code § 562A.29).",
			}},
		},
		{
			Key:   "marketing_update_appfolio",
			Name:  "Update Vacancy Status in AppFolio",
			Stage: StageMarketing,
			Role:  RoleLeasingAgent,
			Due:   DaysFromVacancy(0),
			Deliverables: []string{
				`Switch the unit status from "Turnover" to "Vacant" in AppFolio immediately after make-ready sign-off.`,
				"Confirm listing syndication triggers fired for all partner channels.",
			},
			Compliance: []ComplianceNote{{
				Topic:  "System of record accuracy",
				Detail: "Accurate AppFolio statuses keep vacancy analytics, owner reporting, and marketing automation in sync.",
			}},
		},
		{
			Key:   "screening_manage_inquiries",
			Name:  "Manage Inquiries and Schedule Showings",
			Stage: StageScreening,
			Role:  RoleLeasingAgent,
			Due:   DaysFromVacancy(0),
			Deliverables: []string{
				"Respond to every inquiry within one business day using standardized messaging to preserve Fair Housing parity.",
				"Capture pre-screen answers covering move timeline, household composition, pets, and program eligibility.",
				"Offer pre-defined showing blocks via scheduling links to minimize back-and-forth.",
			},
			Compliance: []ComplianceNote{{
				Topic:  "Fair Housing and Iowa Civil Rights Act parity",
				Detail: "Consistent response cadences prevent disparate treatment across protected classes and leave an audit trail.",
			}},
		},
		{
			Key:   "screening_process_applications",
			Name:  "Process Rental Applications",
			Stage: StageScreening,
			Role:  RoleLeasingAgent,
			Due:   DaysFromVacancy(2),
			Deliverables: []string{
				"Review each application within 48 hours and request missing fields immediately.",
				"Collect income, asset, and household documentation aligned with LIHTC and program requirements.",
				"Complete credit, background, and landlord verifications before rendering a decision.",
			},
			Compliance: []ComplianceNote{
				{
					Topic:  "Documented screening criteria",
					Detail: "Apply published screening criteria uniformly and retain documentation for adverse action defense.",
				},
				{
					Topic:  "LIHTC source-of-income verification",
					Detail: "Secure third-party income documentation to support Tenant Income Certification (TIC) files.",
				},
			},
		},
		{
			Key:   "screening_notify_applicants",
			Name:  "Notify Applicants of Status",
			Stage: StageScreening,
			Role:  RoleLeasingAgent,
			Due:   DaysFromVacancy(2),
			Deliverables: []string{
				"Send approvals with next-step instructions and payment expectations.",
				"Issue denials with compliant adverse action language and timestamp outcomes in the CRM.",
			},
			Compliance: []ComplianceNote{{
				Topic:  "Adverse action documentation",
				Detail: "Retain copies of denial notices and credit disclosures to satisfy Fair Credit Reporting Act obligations.",
			}},
		},
		{
			Key:   "leasing_prepare_agreement",
			Name:  "Prepare Lease Agreement",
			Stage: StageLeasing,
			Role:  RoleLeasingAgent,
			Due:   DaysFromVacancy(5),
			Deliverables: []string{
				"Merge approved terms into the LIHTC-compliant lease packet and distribute for e-signature.",
				"Confirm all addenda (e.g., VAWA, house rules) are attached before sending.",
			},
			Compliance: []ComplianceNote{{
				Topic:  "Lease artifact completeness",
				Detail: "Incomplete lease packets jeopardize move-in readiness and downstream LIHTC audits.",
			}},
		},
		{
			Key:   "leasing_collect_funds",
			Name:  "Collect Move-In Funds",
			Stage: StageLeasing,
			Role:  RolePropertyManagerAccounting,
			Due:   DaysBeforeMoveIn(5),
			Deliverables: []string{
				"Collect prorated rent, deposits, and fees; post receipts to the resident ledger.",
				"Confirm deposit amounts stay within Iowa caps (≤ two months rent).",
			},
			Compliance: []ComplianceNote{{
				Topic:  "Security deposit limits",
				Detail: "Deposits exceeding state limits expose the portfolio to statutory penalties.",
			}},
		},
		{
			Key:   "leasing_conduct_move_in_inspection",
			Name:  "Conduct Move-In Inspection",
			Stage: StageLeasing,
			Role:  RolePropertyManager,
			Due:   OnMoveIn(),
			Deliverables: []string{
				"Complete digital inspection checklist with tenant present and capture photos of every room.",
				"Upload signed inspection and media to AppFolio for permanent recordkeeping.",
			},
			Compliance: []ComplianceNote{{
				Topic:  "Move-in condition documentation",
				Detail: "Thorough inspections limit security deposit disputes and support future turn charges.",
			}},
		},
		{
			Key:   "leasing_lihtc_certification",
			Name:  "Complete LIHTC Initial Certification",
			Stage: StageLeasing,
			Role:  RoleComplianceCoordinator,
			Due:   DaysBeforeMoveIn(3),
			Deliverables: []string{
				"Collect signed Tenant Income Certification (TIC) and applicable student status affidavits.",
				"Verify income against current IFA limits and retain third-party documentation.",
				"Issue VAWA notices and ensure household files are audit ready.",
			},
			Compliance: []ComplianceNote{{
				Topic:  "LIHTC eligibility lock-in",
				Detail: "Certification must be finalized at least three days before move-in to maintain LIHTC compliance.",
			}},
		},
		{
			Key:   "handoff_start_new_resident_workflow",
			Name:  "Handoff to New Resident Workflow",
			Stage: StageHandoff,
			Role:  RolePropertyManager,
			Due:   OnMoveIn(),
			Deliverables: []string{
				`Update the unit status from "Vacant" to "Occupied" in AppFolio once keys are released.`,
				"Trigger the New Resident onboarding workflow with welcome communications and follow-up tasks.",
			},
			Compliance: []ComplianceNote{{
				Topic:  "Operational handoff completeness",
				Detail: "Transitioning to onboarding ensures services, compliance tracking, and resident engagement continue seamlessly.",
			}},
		},
	}
}
