// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package crm

// Standard CRM property names.
const (
	PropEmail          = "email"
	PropFirstName      = "firstname"
	PropLastName       = "lastname"
	PropJobTitle       = "jobtitle"
	PropCompany        = "company"
	PropPhone          = "phone"
	PropCountry        = "country"
	PropLifecycleStage = "lifecyclestage"

	PropName    = "name"
	PropDomain  = "domain"
	PropWebsite = "website"

	PropSubject       = "subject"
	PropContent       = "content"
	PropPipeline      = "hs_pipeline"
	PropPipelineStage = "hs_pipeline_stage"
)

// Program properties, created by ProvisionProperties.
const (
	PropRole             = "wsa_role"
	PropYear             = "wsa_year"
	PropSource           = "wsa_source"
	PropEmailPlaceholder = "wsa_email_placeholder"
	PropLiveURL          = "wsa_live_url"
	PropNominatorStatus  = "wsa_nominator_status"
	PropSubmittedAt      = "wsa_submitted_at"
	PropApprovedAt       = "wsa_approved_at"
	PropLastVoteAt       = "wsa_last_vote_at"
	PropLastVoteCategory = "wsa_last_vote_subcategory"
	PropLastVoteNominee  = "wsa_last_vote_nominee"
	PropHeadshotURL      = "wsa_headshot_url"
	PropLogoURL          = "wsa_logo_url"

	PropNominationID   = "wsa_nomination_id"
	PropNominatorEmail = "wsa_nominator_email"
	PropSubcategoryID  = "wsa_subcategory_id"
	PropCategoryID     = "wsa_category_id"
	PropNomineeName    = "wsa_nominee_name"
	PropNomineeKind    = "wsa_nominee_kind"
)

// PropertyDefinition describes one custom property to provision.
type PropertyDefinition struct {
	Object    string `json:"-"`
	Name      string `json:"name"`
	Label     string `json:"label"`
	Type      string `json:"type"`
	FieldType string `json:"fieldType"`
	GroupName string `json:"groupName"`
}

func stringProp(object, name, label string) PropertyDefinition {
	return PropertyDefinition{Object: object, Name: name, Label: label, Type: "string", FieldType: "text", GroupName: groupFor(object)}
}

func dateTimeProp(object, name, label string) PropertyDefinition {
	return PropertyDefinition{Object: object, Name: name, Label: label, Type: "datetime", FieldType: "date", GroupName: groupFor(object)}
}

func groupFor(object string) string {
	switch object {
	case Companies:
		return "companyinformation"
	case Tickets:
		return "ticketinformation"
	default:
		return "contactinformation"
	}
}

// PropertyDefinitions lists every custom property the integration writes,
// including the configured LinkedIn properties.
func (c *Client) PropertyDefinitions() []PropertyDefinition {
	defs := []PropertyDefinition{
		stringProp(Contacts, PropRole, "WSA Roles"),
		stringProp(Contacts, PropYear, "WSA Program Year"),
		stringProp(Contacts, PropSource, "WSA Source"),
		stringProp(Contacts, PropEmailPlaceholder, "WSA Placeholder Email"),
		stringProp(Contacts, PropLiveURL, "WSA Live URL"),
		stringProp(Contacts, PropNominatorStatus, "WSA Nominator Status"),
		dateTimeProp(Contacts, PropSubmittedAt, "WSA Submitted At"),
		dateTimeProp(Contacts, PropApprovedAt, "WSA Approved At"),
		dateTimeProp(Contacts, PropLastVoteAt, "WSA Last Vote At"),
		stringProp(Contacts, PropLastVoteCategory, "WSA Last Vote Subcategory"),
		stringProp(Contacts, PropLastVoteNominee, "WSA Last Vote Nominee"),
		stringProp(Contacts, PropHeadshotURL, "WSA Headshot URL"),
		stringProp(Contacts, PropSubcategoryID, "WSA Subcategory"),

		stringProp(Companies, PropRole, "WSA Roles"),
		stringProp(Companies, PropYear, "WSA Program Year"),
		stringProp(Companies, PropSource, "WSA Source"),
		stringProp(Companies, PropLiveURL, "WSA Live URL"),
		stringProp(Companies, PropLogoURL, "WSA Logo URL"),
		stringProp(Companies, PropSubcategoryID, "WSA Subcategory"),
		dateTimeProp(Companies, PropApprovedAt, "WSA Approved At"),

		stringProp(Tickets, PropNominationID, "WSA Nomination ID"),
		stringProp(Tickets, PropNominatorEmail, "WSA Nominator Email"),
		stringProp(Tickets, PropSubcategoryID, "WSA Subcategory"),
		stringProp(Tickets, PropCategoryID, "WSA Category"),
		stringProp(Tickets, PropNomineeName, "WSA Nominee Name"),
		stringProp(Tickets, PropNomineeKind, "WSA Nominee Type"),
		stringProp(Tickets, PropLiveURL, "WSA Live URL"),
		stringProp(Tickets, PropYear, "WSA Program Year"),
		stringProp(Tickets, PropSource, "WSA Source"),
	}
	if p := c.settings.ContactLinkedInProperty; p != "" {
		defs = append(defs, stringProp(Contacts, p, "LinkedIn URL"))
	}
	if p := c.settings.CompanyLinkedInProperty; p != "" {
		defs = append(defs, stringProp(Companies, p, "LinkedIn Company Page"))
	}
	return defs
}
