// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package models

// Category groups subcategories on the ballot.
type Category struct {
	ID            string        `json:"id"`
	Label         string        `json:"label"`
	Subcategories []Subcategory `json:"subcategories"`
}

// Subcategory is the unit nominations and votes are filed under.
type Subcategory struct {
	ID    string      `json:"id"`
	Label string      `json:"label"`
	Kind  NomineeKind `json:"kind"`
}

var catalog = []Category{
	{
		ID:    "role-specific-excellence",
		Label: "Role-Specific Excellence",
		Subcategories: []Subcategory{
			{ID: "top-recruiter", Label: "Top Recruiter", Kind: NomineePerson},
			{ID: "top-executive-leader", Label: "Top Executive Leader", Kind: NomineePerson},
			{ID: "top-staffing-influencer", Label: "Top Staffing Influencer", Kind: NomineePerson},
			{ID: "best-sourcer", Label: "Best Sourcer", Kind: NomineePerson},
		},
	},
	{
		ID:    "innovation-technology",
		Label: "Innovation & Technology",
		Subcategories: []Subcategory{
			{ID: "top-ai-driven-staffing-platform", Label: "Top AI-Driven Staffing Platform", Kind: NomineeCompany},
			{ID: "top-digital-experience-for-clients", Label: "Top Digital Experience for Clients", Kind: NomineeCompany},
		},
	},
	{
		ID:    "culture-impact",
		Label: "Culture & Impact",
		Subcategories: []Subcategory{
			{ID: "top-women-led-staffing-firm", Label: "Top Women-Led Staffing Firm", Kind: NomineeCompany},
			{ID: "fastest-growing-staffing-firm", Label: "Fastest-Growing Staffing Firm", Kind: NomineeCompany},
			{ID: "best-diversity-inclusion-initiative", Label: "Best Diversity & Inclusion Initiative", Kind: NomineeCompany},
		},
	},
	{
		ID:    "growth-performance",
		Label: "Growth & Performance",
		Subcategories: []Subcategory{
			{ID: "best-staffing-process-at-scale", Label: "Best Staffing Process at Scale", Kind: NomineeCompany},
			{ID: "rising-star", Label: "Rising Star (Under 30)", Kind: NomineePerson},
		},
	},
	{
		ID:    "geographic-excellence",
		Label: "Geographic Excellence",
		Subcategories: []Subcategory{
			{ID: "top-staffing-company-usa", Label: "Top Staffing Company - USA", Kind: NomineeCompany},
			{ID: "top-staffing-company-europe", Label: "Top Staffing Company - Europe", Kind: NomineeCompany},
			{ID: "top-recruiting-leader-usa", Label: "Top Recruiting Leader - USA", Kind: NomineePerson},
			{ID: "top-recruiting-leader-europe", Label: "Top Recruiting Leader - Europe", Kind: NomineePerson},
		},
	},
}

// Categories returns the ballot. The returned slice must not be modified.
func Categories() []Category {
	return catalog
}

// LookupSubcategory finds a subcategory and its parent by id.
func LookupSubcategory(id string) (Category, Subcategory, bool) {
	for _, cat := range catalog {
		for _, sub := range cat.Subcategories {
			if sub.ID == id {
				return cat, sub, true
			}
		}
	}
	return Category{}, Subcategory{}, false
}
