package llm

// Request is one LLM call's full payload: the instruction turns plus the
// structured-output contract the reply must satisfy.
type Request struct {
	System string
	User   string
	Schema map[string]any
}

// Document pairs a stored resume's identity with its extracted text for the
// combined ranking request.
type Document struct {
	ID   int
	Name string
	Text string
}

type Employment struct {
	Company  string `json:"company"`
	Role     string `json:"role"`
	Duration string `json:"duration"`
}

type Education struct {
	Degree       string `json:"degree"`
	Institution  string `json:"institution"`
	Year         string `json:"year"`
	FieldOfStudy string `json:"field_of_study"`
}

type Project struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Technologies string `json:"technologies"`
}

type Patent struct {
	Title        string `json:"title"`
	PatentNumber string `json:"patent_number"`
	Year         string `json:"year"`
}

type Publication struct {
	Title     string `json:"title"`
	Journal   string `json:"journal"`
	Year      string `json:"year"`
	Citations string `json:"citations"`
}

type ResearchPaper struct {
	Title      string `json:"title"`
	Conference string `json:"conference"`
	Year       string `json:"year"`
}

// Profile is the structured candidate metadata extracted from one resume.
// After normalization every optional field holds a typed empty value
// ("", empty slice, nil dob) — never absence.
type Profile struct {
	Name                string          `json:"name"`
	Email               string          `json:"email"`
	Phone               string          `json:"phone"`
	Address             string          `json:"address"`
	Location            string          `json:"location"`
	DOB                 *string         `json:"dob"`
	PassportDetails     string          `json:"passport_details"`
	PassportStatus      string          `json:"passport_status"`
	CurrentCompany      string          `json:"current_company"`
	PreviousCompanies   []Employment    `json:"previous_companies"`
	Domain              string          `json:"domain"`
	YearsOfExperience   int             `json:"years_of_experience"`
	ProfessionalSummary string          `json:"professional_summary"`
	Skills              []string        `json:"skills"`
	SkillsText          string          `json:"skills_text"`
	Education           []Education     `json:"education"`
	Projects            []Project       `json:"projects"`
	Patents             []Patent        `json:"patents"`
	Publications        []Publication   `json:"publications"`
	ResearchPapers      []ResearchPaper `json:"research_papers"`
}

// RankingEntry is one per-resume judgment from the combined ranking call.
type RankingEntry struct {
	ResumeID          int      `json:"resume_id"`
	Name              string   `json:"name"`
	YearsOfExperience int      `json:"years_of_experience"`
	Skills            []string `json:"skills"`
	MatchScore        int      `json:"match_score"`
	RankingReason     string   `json:"ranking_reason"`
	ResumeFilename    string   `json:"resume_filename,omitempty"`
}

// Ranking holds the model's ordering as delivered: entries are kept in reply
// order (descending match score per the prompt), never re-sorted here.
type Ranking struct {
	JobRole string         `json:"job_role"`
	Entries []RankingEntry `json:"ranked_resumes"`

	// Unknown lists resume ids the model referenced that were not part of
	// the request. Their entries are dropped; the batch is still usable.
	Unknown []int `json:"-"`
}
