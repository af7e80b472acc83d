package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"resume-rank/internal/llm"
)

type DB struct {
	connection *sql.DB
	logger     *zap.Logger
}

func NewDB(dataSourceName string, logger *zap.Logger) (*DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, err
	}

	// Connection pool tuning
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	return &DB{connection: db, logger: logger}, nil
}

func (db *DB) Close() {
	if err := db.connection.Close(); err != nil {
		db.logger.Error("error closing the database connection", zap.Error(err))
	}
}

const resumeColumns = `id, candidate_id, filename, file_path,
	name, email, phone, address, location, dob, passport_details, passport_status,
	current_company, domain, years_of_experience, professional_summary, skills,
	previous_companies, education, projects, patents, publications, research_papers,
	is_parsed, parse_error, uploaded_at, updated_at`

// InsertResume records a freshly uploaded file and returns its id. Extracted
// fields are written later by UpdateProfile once the pipeline resolves.
func (db *DB) InsertResume(ctx context.Context, filename, filePath string) (int, error) {
	query := `INSERT INTO resumes (candidate_id, filename, file_path, uploaded_at, updated_at)
              VALUES ($1, $2, $3, NOW(), NOW())
              RETURNING id`
	var id int
	err := db.connection.QueryRowContext(ctx, query, uuid.New().String(), filename, filePath).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert resume: %w", err)
	}
	return id, nil
}

// UpdateProfile writes the normalized extraction result back onto the resume
// row and marks it parsed.
func (db *DB) UpdateProfile(ctx context.Context, id int, p *llm.Profile) error {
	prev, err := json.Marshal(p.PreviousCompanies)
	if err != nil {
		return fmt.Errorf("marshal previous_companies: %w", err)
	}
	edu, err := json.Marshal(p.Education)
	if err != nil {
		return fmt.Errorf("marshal education: %w", err)
	}
	proj, err := json.Marshal(p.Projects)
	if err != nil {
		return fmt.Errorf("marshal projects: %w", err)
	}
	pat, err := json.Marshal(p.Patents)
	if err != nil {
		return fmt.Errorf("marshal patents: %w", err)
	}
	pub, err := json.Marshal(p.Publications)
	if err != nil {
		return fmt.Errorf("marshal publications: %w", err)
	}
	res, err := json.Marshal(p.ResearchPapers)
	if err != nil {
		return fmt.Errorf("marshal research_papers: %w", err)
	}

	query := `UPDATE resumes SET
                name = $1, email = $2, phone = $3, address = $4, location = $5, dob = $6,
                passport_details = $7, passport_status = $8, current_company = $9, domain = $10,
                years_of_experience = $11, professional_summary = $12, skills = $13,
                previous_companies = $14, education = $15, projects = $16,
                patents = $17, publications = $18, research_papers = $19,
                is_parsed = TRUE, parse_error = '', updated_at = NOW()
              WHERE id = $20`
	_, err = db.connection.ExecContext(ctx, query,
		p.Name, p.Email, p.Phone, p.Address, p.Location, p.DOB,
		p.PassportDetails, p.PassportStatus, p.CurrentCompany, p.Domain,
		p.YearsOfExperience, p.ProfessionalSummary, p.SkillsText,
		prev, edu, proj, pat, pub, res,
		id,
	)
	if err != nil {
		return fmt.Errorf("update resume profile: %w", err)
	}
	return nil
}

// MarkParseFailed records a definitive extraction failure for the resume.
func (db *DB) MarkParseFailed(ctx context.Context, id int, reason string) error {
	query := `UPDATE resumes SET is_parsed = FALSE, parse_error = $1, updated_at = NOW() WHERE id = $2`
	if _, err := db.connection.ExecContext(ctx, query, reason, id); err != nil {
		return fmt.Errorf("mark parse failed: %w", err)
	}
	return nil
}

func (db *DB) GetResume(ctx context.Context, id int) (*Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes WHERE id = $1`
	return scanResume(db.connection.QueryRowContext(ctx, query, id))
}

func (db *DB) ListResumes(ctx context.Context) ([]*Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes ORDER BY uploaded_at DESC`
	return db.queryResumes(ctx, query)
}

// ListResumesByIDs returns the requested resumes in the order the ids were
// given, so the ranking prompt's identifier-to-position mapping stays stable.
func (db *DB) ListResumesByIDs(ctx context.Context, ids []int) ([]*Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes WHERE id = ANY($1)`
	found, err := db.queryResumes(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	byID := make(map[int]*Resume, len(found))
	for _, r := range found {
		byID[r.ID] = r
	}
	ordered := make([]*Resume, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			ordered = append(ordered, r)
		}
	}
	return ordered, nil
}

// ListUnparsed returns resumes whose extraction has not succeeded yet, oldest
// first, for the reparse tool.
func (db *DB) ListUnparsed(ctx context.Context, limit int) ([]*Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes WHERE NOT is_parsed ORDER BY uploaded_at ASC LIMIT $1`
	return db.queryResumes(ctx, query, limit)
}

func (db *DB) queryResumes(ctx context.Context, query string, args ...any) ([]*Resume, error) {
	rows, err := db.connection.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Resume
	for rows.Next() {
		r, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (*Resume, error) {
	r := &Resume{}
	var dob sql.NullString
	err := row.Scan(
		&r.ID, &r.CandidateID, &r.Filename, &r.FilePath,
		&r.Name, &r.Email, &r.Phone, &r.Address, &r.Location, &dob,
		&r.PassportDetails, &r.PassportStatus,
		&r.CurrentCompany, &r.Domain, &r.YearsOfExperience, &r.ProfessionalSummary, &r.Skills,
		&r.PreviousCompanies, &r.Education, &r.Projects, &r.Patents, &r.Publications, &r.ResearchPapers,
		&r.IsParsed, &r.ParseError, &r.UploadedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if dob.Valid {
		r.DOB = &dob.String
	}
	return r, nil
}
