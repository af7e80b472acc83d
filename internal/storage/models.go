package storage

import (
	"encoding/json"
	"time"
)

// Resume is one uploaded resume file plus the metadata extracted from it.
// The repeated substructures (education, projects, ...) are stored as JSONB
// and carried here as raw JSON; the typed shapes live in internal/llm.
type Resume struct {
	ID          int    `json:"id"`
	CandidateID string `json:"candidate_id"`
	Filename    string `json:"filename"`
	FilePath    string `json:"file_path"`

	Name                string          `json:"name"`
	Email               string          `json:"email"`
	Phone               string          `json:"phone"`
	Address             string          `json:"address"`
	Location            string          `json:"location"`
	DOB                 *string         `json:"dob"`
	PassportDetails     string          `json:"passport_details"`
	PassportStatus      string          `json:"passport_status"`
	CurrentCompany      string          `json:"current_company"`
	Domain              string          `json:"domain"`
	YearsOfExperience   int             `json:"years_of_experience"`
	ProfessionalSummary string          `json:"professional_summary"`
	Skills              string          `json:"skills"` // comma-joined, flattened at normalization
	PreviousCompanies   json.RawMessage `json:"previous_companies"`
	Education           json.RawMessage `json:"education"`
	Projects            json.RawMessage `json:"projects"`
	Patents             json.RawMessage `json:"patents"`
	Publications        json.RawMessage `json:"publications"`
	ResearchPapers      json.RawMessage `json:"research_papers"`

	IsParsed   bool      `json:"is_parsed"`
	ParseError string    `json:"parse_error"`
	UploadedAt time.Time `json:"uploaded_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
