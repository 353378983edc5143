// Awardsync - Awards Nomination and CRM Synchronization Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/awardsync

package crm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tomtom215/awardsync/internal/models"
)

func testMapper() Mapper {
	return NewMapper(Settings{
		PipelineID:              "pipe",
		ContactLinkedInProperty: "linkedin_url",
		CompanyLinkedInProperty: "linkedin_company_page",
		Year:                    2026,
		Source:                  "World Staffing Awards 2026",
		PlaceholderEmailDomain:  "nominees.worldstaffingawards.invalid",
	})
}

func TestMapper_ProvenanceAndOmission(t *testing.T) {
	m := testMapper()
	at := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)

	bags := map[string]Properties{
		"nominator": m.NominatorProps(models.Nominator{Email: " A@Biz.com ", FirstName: "Alex", LastName: "  "}, at),
		"voter":     m.VoterProps(models.Voter{Email: "v@biz.com"}, VoteContext{SubcategoryID: "top-recruiter"}),
		"person": m.PersonNomineeProps(&models.Nomination{
			Kind: models.NomineePerson, SubcategoryID: "top-recruiter",
			Person: &models.PersonNominee{Email: "jane@doe.com", FirstName: "Jane", LastName: "Doe"},
		}),
		"company": m.CompanyNomineeProps(&models.Nomination{
			Kind: models.NomineeCompany, SubcategoryID: "top-staffing-company-usa",
			Company: &models.CompanyNominee{Name: "Acme", Website: "https://www.Acme.com/about"},
		}),
	}

	for name, bag := range bags {
		assert.Equal(t, "World Staffing Awards 2026", bag[PropSource], name)
		assert.Equal(t, "2026", bag[PropYear], name)
		for k, v := range bag {
			s, ok := v.(string)
			if ok {
				assert.NotEmpty(t, s, "%s bag carries blank %s", name, k)
			}
		}
	}

	nominator := bags["nominator"]
	assert.Equal(t, "a@biz.com", nominator[PropEmail])
	assert.NotContains(t, nominator, PropLastName)
	assert.NotContains(t, nominator, "linkedin_url")
	assert.Equal(t, "2026-02-03T10:00:00Z", nominator[PropSubmittedAt])

	voter := bags["voter"]
	assert.NotContains(t, voter, PropLastVoteAt, "zero time is omitted")
	assert.Equal(t, "top-recruiter", voter[PropLastVoteCategory])

	assert.Equal(t, "acme.com", bags["company"][PropDomain])
	assert.NotContains(t, bags["person"], PropEmailPlaceholder)
}

func TestMapper_PersonPlaceholderEmail(t *testing.T) {
	m := testMapper()
	bag := m.PersonNomineeProps(&models.Nomination{
		Kind:   models.NomineePerson,
		Person: &models.PersonNominee{FirstName: "Mary Ann", LastName: "O'Neil"},
	})
	assert.Equal(t, "mary.ann.o.neil@nominees.worldstaffingawards.invalid", bag[PropEmail])
	assert.Equal(t, "true", bag[PropEmailPlaceholder])
}

func TestPlaceholderEmail(t *testing.T) {
	tests := []struct {
		first, last, domain string
		want                string
	}{
		{"Jane", "Doe", "nominees.example.invalid", "jane.doe@nominees.example.invalid"},
		{"  JANE ", "doe", "Nominees.Example.Invalid", "jane.doe@nominees.example.invalid"},
		{"Jane", "", "x.invalid", "jane@x.invalid"},
		{"", "", "x.invalid", ""},
		{"Jane", "Doe", "", ""},
		{"José", "Núñez", "x.invalid", "jos.n.ez@x.invalid"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PlaceholderEmail(tt.first, tt.last, tt.domain), "%q %q %q", tt.first, tt.last, tt.domain)
	}
	assert.Equal(t, PlaceholderEmail("Jane", "Doe", "d.invalid"), PlaceholderEmail("Jane", "Doe", "d.invalid"))
}

func TestTicketPropsMatchKey(t *testing.T) {
	m := testMapper()
	n := &models.Nomination{
		ID:            "id-1",
		Kind:          models.NomineePerson,
		SubcategoryID: "top-recruiter",
		Nominator:     models.Nominator{Email: "A@Biz.com"},
		Person:        &models.PersonNominee{FirstName: "Jane", LastName: "Doe", Why: "Placed 400 nurses"},
	}
	props := m.TicketProps(n, "stage-1")
	key := TicketKeyFor(n)

	assert.Equal(t, key.NominatorEmail, props[PropNominatorEmail])
	assert.Equal(t, key.SubcategoryID, props[PropSubcategoryID])
	assert.Equal(t, key.DisplayName, props[PropNomineeName])
	assert.Equal(t, "Nomination: Jane Doe (Top Recruiter)", props[PropSubject])
	assert.Equal(t, "Placed 400 nurses", props[PropContent])
	assert.Equal(t, "pipe", props[PropPipeline])
	assert.Equal(t, "stage-1", props[PropPipelineStage])
	assert.Equal(t, "role-specific-excellence", props[PropCategoryID])
	assert.NotContains(t, props, PropLiveURL)
}

func TestPropertiesCompact(t *testing.T) {
	blank := "  "
	kept := "x"
	var nilPtr *string
	p := Properties{
		"a": "",
		"b": nil,
		"c": "   ",
		"d": "value",
		"e": 0,
		"f": false,
		"g": &blank,
		"h": &kept,
		"i": nilPtr,
	}
	got := p.Compact()
	assert.Equal(t, Properties{"d": "value", "e": 0, "f": false, "h": "x"}, got)
	assert.Len(t, p, 9, "Compact must not modify the receiver")
}
