package llm

import (
	"fmt"
	"strings"
)

const extractionSystemPrompt = `You are an expert resume parser.
Extract information from resumes flexibly.
Not all resumes will have all fields - that's okay!
Extract what's available and use empty values for missing fields.
Different resume types (engineer, researcher, manager) will have different fields.`

const rankingSystemPrompt = "You are a recruitment expert and an efficient JSON generator. " +
	"Your task is to extract required information from the provided resumes and rank them based on a given job role."

// BuildExtractionPrompt renders the single-resume extraction request. The model
// is told to extract only information that is actually present and to use the
// documented empty values otherwise.
func BuildExtractionPrompt(text string) Request {
	var b strings.Builder
	b.WriteString("Extract information from this resume.\n\n")
	b.WriteString("IMPORTANT:\n")
	b.WriteString("- Extract ONLY fields that are actually present in the resume\n")
	b.WriteString(`- For missing fields, use: empty string ("") for text, empty array ([]) for lists, null for dates` + "\n")
	b.WriteString("- Don't make up information that isn't in the resume\n")
	b.WriteString("- Different resume types will have different fields\n\n")
	b.WriteString("RESUME TEXT:\n")
	b.WriteString(text)
	b.WriteString("\n\nExtract these fields (if available):\n")
	b.WriteString("- Personal: name, email, phone, address, location, dob, passport_details, passport_status\n")
	b.WriteString("- Professional: current_company, previous_companies (array), domain, years_of_experience, professional_summary\n")
	b.WriteString("- Skills & Education: skills (array), education (array)\n")
	b.WriteString("- For Engineers: projects (array)\n")
	b.WriteString("- For Researchers: patents (array), publications (array), research_papers (array)\n\n")
	b.WriteString("FORMATS:\n")
	b.WriteString(`- previous_companies: [{"company": "Microsoft", "role": "Engineer", "duration": "2018-2020"}, ...]` + "\n")
	b.WriteString(`- education: [{"degree": "B.Tech", "institution": "IIT", "year": "2020", "field_of_study": "CS"}, ...]` + "\n")
	b.WriteString(`- projects: [{"title": "Project Name", "description": "...", "technologies": "Python, Django"}, ...]` + "\n")
	b.WriteString(`- patents: [{"title": "Patent Title", "patent_number": "US12345", "year": "2022"}, ...]` + "\n")
	b.WriteString(`- publications: [{"title": "Paper Title", "journal": "Nature", "year": "2023", "citations": "50"}, ...]` + "\n")
	b.WriteString(`- research_papers: [{"title": "Paper Title", "conference": "CVPR", "year": "2023"}, ...]` + "\n")

	return Request{
		System: extractionSystemPrompt,
		User:   b.String(),
		Schema: ProfileSchema(),
	}
}

// BuildRankingPrompt embeds every readable resume into one combined request,
// each tagged with its database id so the model can echo it back. Documents are
// written in input order; one request regardless of batch size — prompt size is
// traded for round trips and the API's input limit is surfaced by the client.
func BuildRankingPrompt(role string, docs []Document) Request {
	var b strings.Builder
	fmt.Fprintf(&b, "I have %d resumes and need you to:\n", len(docs))
	b.WriteString("1. Extract key information from each resume (Name, Years of Experience, Skills).\n")
	fmt.Fprintf(&b, "2. Rank them based on how well they match the job role: %q.\n\n", role)
	b.WriteString("For each resume, you MUST extract the following from the resume text itself:\n")
	b.WriteString("- Name: The candidate's actual name from the resume\n")
	b.WriteString("- Years of Experience: Calculate or extract the total years of professional experience\n")
	b.WriteString("- Key Skills: List the top 5 most relevant skills for this job role\n")
	fmt.Fprintf(&b, "- Match Score: Rate 0-100 on how well they match the %q position\n", role)
	b.WriteString("- Ranking Reason: Brief explanation of why this ranking\n\n")
	b.WriteString("Here are the resumes to analyze:\n")

	sep := strings.Repeat("=", 50)
	for i, doc := range docs {
		fmt.Fprintf(&b, "\n%s\nRESUME %d (DB ID: %d):\n%s\n%s\n", sep, i+1, doc.ID, sep, doc.Text)
	}

	b.WriteString("\n\nIMPORTANT: Extract the actual name from each resume text. Do NOT use generic names.\n")
	b.WriteString("Provide your response ONLY as a JSON array of objects, sorted by match_score (highest first).\n")

	return Request{
		System: rankingSystemPrompt,
		User:   b.String(),
		Schema: RankingSchema(),
	}
}
