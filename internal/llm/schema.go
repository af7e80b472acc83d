package llm

// ProfileSchema returns the structured-output contract for single-resume field
// extraction as a generic map. It is sent to Gemini as the responseSchema and
// compiled locally to validate the reply before decoding.
//
// Invariant: the property set equals the keys of DefaultTable plus the required
// fields — schema and default table move in lockstep (asserted by a test).
func ProfileSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":             str(),
			"email":            str(),
			"phone":            str(),
			"address":          str(),
			"location":         str(),
			"dob":              map[string]any{"type": []string{"string", "null"}},
			"passport_details": str(),
			"passport_status":  str(),
			"current_company":  str(),
			"previous_companies": arrayOf(map[string]any{
				"company":  str(),
				"role":     str(),
				"duration": str(),
			}),
			"domain":               str(),
			"years_of_experience":  map[string]any{"type": "integer"},
			"professional_summary": str(),
			"skills":               map[string]any{"type": "array", "items": str()},
			"education": arrayOf(map[string]any{
				"degree":         str(),
				"institution":    str(),
				"year":           str(),
				"field_of_study": str(),
			}),
			"projects": arrayOf(map[string]any{
				"title":        str(),
				"description":  str(),
				"technologies": str(),
			}),
			"patents": arrayOf(map[string]any{
				"title":         str(),
				"patent_number": str(),
				"year":          str(),
			}),
			"publications": arrayOf(map[string]any{
				"title":     str(),
				"journal":   str(),
				"year":      str(),
				"citations": str(),
			}),
			"research_papers": arrayOf(map[string]any{
				"title":      str(),
				"conference": str(),
				"year":       str(),
			}),
		},
		"required": []string{"name", "email"},
	}
}

// ProfileRequiredFields are the profile fields the model must always return;
// their absence is a terminal validation failure, never silently defaulted.
func ProfileRequiredFields() []string {
	return []string{"name", "email"}
}

// DefaultTable maps every optional profile field to its documented empty value:
// "" for text, empty array for lists, nil for dates, 0 for counts.
func DefaultTable() map[string]any {
	return map[string]any{
		"phone":                "",
		"address":              "",
		"location":             "",
		"dob":                  nil,
		"passport_details":     "",
		"passport_status":      "",
		"current_company":      "",
		"previous_companies":   []any{},
		"domain":               "",
		"years_of_experience":  0,
		"professional_summary": "",
		"skills":               []any{},
		"education":            []any{},
		"projects":             []any{},
		"patents":              []any{},
		"publications":         []any{},
		"research_papers":      []any{},
	}
}

// RankingSchema returns the structured-output contract for the multi-resume
// comparative ranking task: a JSON array sorted by match score, one entry per
// resume, echoing back the resume id it was given.
func RankingSchema() map[string]any {
	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"resume_id": map[string]any{
					"type":        "integer",
					"description": "The unique ID of the resume from the input.",
				},
				"name": map[string]any{
					"type":        "string",
					"description": "The candidate's full name extracted from the resume text.",
				},
				"years_of_experience": map[string]any{
					"type":        "integer",
					"description": "The total years of professional experience.",
				},
				"skills": map[string]any{
					"type":        "array",
					"items":       str(),
					"description": "Top 5 skills relevant to the job role.",
				},
				"match_score": map[string]any{
					"type":        "integer",
					"description": "Match score between 0 and 100.",
				},
				"ranking_reason": map[string]any{
					"type":        "string",
					"description": "Brief explanation for the match score and ranking.",
				},
			},
			"required": []string{"resume_id", "name", "years_of_experience", "skills", "match_score", "ranking_reason"},
		},
	}
}

func str() map[string]any {
	return map[string]any{"type": "string"}
}

func arrayOf(props map[string]any) map[string]any {
	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":       "object",
			"properties": props,
		},
	}
}
