package patient

import (
	"sort"
	"strings"
)

// Searchable field names accepted by the fields parameter.
const (
	FieldName  = "name"
	FieldMRN   = "mrn"
	FieldPhone = "phone"
	FieldEmail = "email"
)

// AllFields is the default field set when the caller names none.
var AllFields = []string{FieldName, FieldMRN, FieldPhone, FieldEmail}

// Relevance weights. Field categories are additive; within the name category
// only the strongest condition counts, so an exact first-name hit is not
// inflated by the full name containing the query as well.
const (
	scoreMRNExact      = 100
	scoreMRNSubstring  = 50
	scoreFullExact     = 90
	scoreFullSubstring = 40
	scoreNameExact     = 80
	scoreNamePrefix    = 35
	scoreNameSubstring = 20
	scorePhone         = 70
	scoreEmail         = 60
)

// matchesField reports whether p passes the inclusion test for one
// searchable field. Filtering precedes scoring: only patients passing at
// least one requested field test get scored.
func matchesField(p *Patient, field, q string) bool {
	switch field {
	case FieldName:
		return strings.Contains(strings.ToLower(p.FirstName), q) ||
			strings.Contains(strings.ToLower(p.LastName), q) ||
			strings.Contains(fullName(p), q)
	case FieldMRN:
		return strings.Contains(strings.ToLower(p.MRN), q)
	case FieldPhone:
		// Raw match: phone numbers have no case.
		return p.Phone != nil && strings.Contains(*p.Phone, strings.TrimSpace(q))
	case FieldEmail:
		return p.Email != nil && strings.Contains(strings.ToLower(*p.Email), q)
	}
	return false
}

func fullName(p *Patient) string {
	return strings.TrimSpace(strings.ToLower(p.FirstName) + " " + strings.ToLower(p.LastName))
}

// Score computes the additive relevance of p for the raw query. Matching is
// case-insensitive except for phone.
func Score(p *Patient, rawQuery string) int {
	q := strings.ToLower(strings.TrimSpace(rawQuery))
	if q == "" {
		return 0
	}
	score := 0

	mrn := strings.ToLower(p.MRN)
	if mrn == q {
		score += scoreMRNExact
	} else if mrn != "" && strings.Contains(mrn, q) {
		score += scoreMRNSubstring
	}

	score += nameScore(p, q)

	if p.Phone != nil && strings.Contains(*p.Phone, strings.TrimSpace(rawQuery)) {
		score += scorePhone
	}
	if p.Email != nil && strings.Contains(strings.ToLower(*p.Email), q) {
		score += scoreEmail
	}
	return score
}

// nameScore walks the name conditions strongest-first and returns the first
// hit.
func nameScore(p *Patient, q string) int {
	first := strings.ToLower(p.FirstName)
	last := strings.ToLower(p.LastName)
	full := fullName(p)

	switch {
	case full != "" && full == q:
		return scoreFullExact
	case first == q || last == q:
		return scoreNameExact
	case strings.Contains(q, " ") && strings.Contains(full, q):
		return scoreFullSubstring
	case strings.HasPrefix(first, q) || strings.HasPrefix(last, q):
		return scoreNamePrefix
	case strings.Contains(first, q) || strings.Contains(last, q):
		return scoreNameSubstring
	}
	return 0
}

// Rank filters candidates to those passing at least one requested field test,
// scores them, and orders by score descending with a case-insensitive
// last-name tie-break.
func Rank(candidates []*Patient, query string, fields []string) []*ScoredPatient {
	if len(fields) == 0 {
		fields = AllFields
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var matched []*ScoredPatient
	for _, p := range candidates {
		included := false
		for _, f := range fields {
			if matchesField(p, f, q) {
				included = true
				break
			}
		}
		if !included {
			continue
		}
		matched = append(matched, &ScoredPatient{Patient: p, Score: Score(p, query)})
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Score != matched[j].Score {
			return matched[i].Score > matched[j].Score
		}
		return strings.ToLower(matched[i].LastName) < strings.ToLower(matched[j].LastName)
	})
	return matched
}
