// internal/vacancy/apollo/mapping.go
package apollo

// Apollo exports use several generations of checklist wording for the same
// task. Each entry is normalized before lookup.
var nameAliases = []struct {
	name string
	key  string
}{
	// Marketing & Advertising
	{"Create and Publish Listing - Leasing Agent", "marketing_publish_listing"},
	{"Create and Publish Listing – Leasing Agent", "marketing_publish_listing"},
	{"Create and Publish Listing", "marketing_publish_listing"},
	{"Update Vacancy in AppFolio - Leasing Agent", "marketing_update_appfolio"},
	{"Update Vacancy in AppFolio – Leasing Agent", "marketing_update_appfolio"},
	{"Update Vacancy in AppFolio", "marketing_update_appfolio"},

	// Screening & Application
	{"Manage Inquiries and Schedule Showings - Leasing Agent", "screening_manage_inquiries"},
	{"Manage Inquiries and Schedule Showings – Leasing Agent", "screening_manage_inquiries"},
	{"Manage Inquiries & Schedule Showings - Leasing Agent", "screening_manage_inquiries"},
	{"Manage Inquiries and Schedule Showings", "screening_manage_inquiries"},
	{"Process Rental Applications - Leasing Agent", "screening_process_applications"},
	{"Process Rental Applications – Leasing Agent", "screening_process_applications"},
	{"Process Rental Applications", "screening_process_applications"},
	{"Notify Applicants of Status - Leasing Agent", "screening_notify_applicants"},
	{"Notify Applicants of Status – Leasing Agent", "screening_notify_applicants"},
	{"Notify Applicants of Status", "screening_notify_applicants"},

	// Lease Signing & Move-In
	{"Prepare Lease Agreement - Leasing Agent", "leasing_prepare_agreement"},
	{"Prepare Lease Agreement – Leasing Agent", "leasing_prepare_agreement"},
	{"Prepare Lease Agreement", "leasing_prepare_agreement"},
	{"Complete Lease Agreement and Collect Financials - Leasing Agent", "leasing_prepare_agreement"},
	{"Complete Lease Agreement and Collect Financials – Leasing Agent", "leasing_prepare_agreement"},
	{"Complete Lease Agreement and Collect Financials", "leasing_prepare_agreement"},
	{"Send the lease to the new tenant for e-signature via AppFolio.", "leasing_prepare_agreement"},
	{"Send the new lease agreement to the tenant for signature. Iowa law (Iowa Code § 562A.13) requires written notice of any rent increase at least 30 days before the effective date.", "leasing_prepare_agreement"},
	{"Sign new leases", "leasing_prepare_agreement"},
	{"Collect Funds - Property Manager/Accounting", "leasing_collect_funds"},
	{"Collect Funds – Property Manager/Accounting", "leasing_collect_funds"},
	{"Collect Funds - Property Manager / Accounting", "leasing_collect_funds"},
	{"Collect Funds - Property Manager & Accounting", "leasing_collect_funds"},
	{"Collect Funds - PM/Accounting", "leasing_collect_funds"},
	{"Collect Funds", "leasing_collect_funds"},
	{"Collect Move-In Funds - Property Manager/Accounting", "leasing_collect_funds"},
	{"Collect Move-In Funds", "leasing_collect_funds"},
	{"Collect first month's rent and the security deposit.", "leasing_collect_funds"},
	{"Conduct Move-In Inspection - Property Manager", "leasing_conduct_move_in_inspection"},
	{"Conduct Move-In Inspection – Property Manager", "leasing_conduct_move_in_inspection"},
	{"Conduct Move-In Inspection", "leasing_conduct_move_in_inspection"},
	{"Conduct Move-In Walk-Through & Orientation - Property Manager", "leasing_conduct_move_in_inspection"},
	{"Conduct Move-In Walk-Through & Orientation – Property Manager", "leasing_conduct_move_in_inspection"},
	{"Conduct Move-In Walk-Through and Orientation - Property Manager", "leasing_conduct_move_in_inspection"},
	{"Complete LIHTC Initial Certification - Compliance Coordinator", "leasing_lihtc_certification"},
	{"Complete LIHTC Initial Certification – Compliance Coordinator", "leasing_lihtc_certification"},
	{"Complete LIHTC Initial Certification", "leasing_lihtc_certification"},
	{"Finalize TIC", "leasing_lihtc_certification"},

	// Handoff
	{"Start New Resident Workflow", "handoff_start_new_resident_workflow"},
	{"Start the New Resident Workflow", "handoff_start_new_resident_workflow"},
	{"Hand Over Keys & Welcome Tenant - Leasing Agent", "handoff_start_new_resident_workflow"},
	{"Hand Over Keys & Welcome Tenant – Leasing Agent", "handoff_start_new_resident_workflow"},
	{"Hand Over Keys and Welcome Tenant - Leasing Agent", "handoff_start_new_resident_workflow"},
	{"Update the unit's status in AppFolio from \"Vacant\" to \"Occupied.\"", "handoff_start_new_resident_workflow"},
}

var nameIndex = buildNameIndex()

func buildNameIndex() map[string]string {
	index := make(map[string]string, len(nameAliases))
	for _, alias := range nameAliases {
		index[normalizeName(alias.name)] = alias.key
	}
	return index
}

// TaskKeyFor resolves an Apollo task name to a catalog key.
func TaskKeyFor(name string) (string, bool) {
	key, ok := nameIndex[normalizeName(name)]
	return key, ok
}
