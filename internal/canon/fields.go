package canon

import "github.com/ginjaninja78/distiviz/internal/types"

// Apps fields, in output order.
const (
	AppsRegion      types.CanonicalField = "Region"
	AppsDistributor types.CanonicalField = "Distributor"
	AppsID          types.CanonicalField = "ID"
	AppsLevel3      types.CanonicalField = "System/Application Level III"
	AppsLevel2      types.CanonicalField = "System/Application Level II"
	AppsApplication types.CanonicalField = "Application List Light Application"
	AppsLeadDIV     types.CanonicalField = "Lead DIV"
	AppsConfidence  types.CanonicalField = "Confidence"
)

// DREG fields, in output order.
const (
	DregRegistrationID  types.CanonicalField = "Registration ID"
	DregDistributor     types.CanonicalField = "Distributor"
	DregRegion          types.CanonicalField = "Region"
	DregSubregion       types.CanonicalField = "Subregion Resp"
	DregResaleCustomer  types.CanonicalField = "Resale Customer"
	DregCustomerRegion  types.CanonicalField = "Region Resale Customer"
	DregCustomerCountry types.CanonicalField = "Country Resale Customer"
	DregMarketSegment   types.CanonicalField = "Market Segment"
	DregMarketApp       types.CanonicalField = "Market Application"
	DregDIV             types.CanonicalField = "DIV"
	DregPL              types.CanonicalField = "PL"
	DregSegment         types.CanonicalField = "Segment"
	DregProjectStatus   types.CanonicalField = "Project Status"
	DregRegStatus       types.CanonicalField = "Reg Status"
	DregRegDate         types.CanonicalField = "Registration Date"
	DregApprovalDate    types.CanonicalField = "Approval Date"
	DregRevenue         types.CanonicalField = "3-Year Revenue"
)

// Campaign master and leads fields, in output order.
const (
	MasterRegistrationID types.CanonicalField = "Registration ID"
	MasterDistributor    types.CanonicalField = "Distributor"
	MasterRegDate        types.CanonicalField = "Registration Date"
	MasterResale         types.CanonicalField = "Resale Customer"
	MasterCountry        types.CanonicalField = "Country"

	LeadFirstName types.CanonicalField = "First Name"
	LeadLastName  types.CanonicalField = "Last Name"
	LeadEmail     types.CanonicalField = "Email"
	LeadCompany   types.CanonicalField = "Company"
)

var (
	AppsFields = []types.CanonicalField{
		AppsRegion, AppsDistributor, AppsID, AppsLevel3,
		AppsLevel2, AppsApplication, AppsLeadDIV, AppsConfidence,
	}

	// AppsBaseFields are the per-application columns copied onto every
	// unpivoted record. A data row is skipped when all of them are blank.
	AppsBaseFields = []types.CanonicalField{
		AppsID, AppsLevel3, AppsLevel2, AppsApplication, AppsLeadDIV,
	}

	DregFields = []types.CanonicalField{
		DregRegistrationID, DregDistributor, DregRegion, DregSubregion,
		DregResaleCustomer, DregCustomerRegion, DregCustomerCountry,
		DregMarketSegment, DregMarketApp, DregDIV, DregPL, DregSegment,
		DregProjectStatus, DregRegStatus, DregRegDate, DregApprovalDate,
		DregRevenue,
	}

	DregDateFields = []types.CanonicalField{DregRegDate, DregApprovalDate}

	MasterFields = []types.CanonicalField{
		MasterRegistrationID, MasterDistributor, MasterRegDate, MasterResale, MasterCountry,
	}

	LeadFields = []types.CanonicalField{LeadFirstName, LeadLastName, LeadEmail, LeadCompany}
)

// FieldsFor returns the output field order of a dataset.
func FieldsFor(ds types.Dataset) []types.CanonicalField {
	switch ds {
	case types.DatasetApps:
		return AppsFields
	case types.DatasetDregs:
		return DregFields
	case types.DatasetCampaignMaster:
		return MasterFields
	case types.DatasetCampaignLeads:
		return LeadFields
	}
	return nil
}
