package llm

import (
	"encoding/json"
	"strings"
)

// NormalizeProfile parses the schema-conformant JSON text from a profile
// extraction reply, fills absent optional fields from the default table and
// derives the flattened skills string used for storage.
func NormalizeProfile(raw []byte) (*Profile, error) {
	if err := validateAgainstSchema(ProfileSchema(), raw); err != nil {
		return nil, WrapFailure(KindMalformedResponse, err, "profile reply failed validation")
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, WrapFailure(KindMalformedResponse, err, "profile reply is not a JSON object")
	}

	// Absent and explicit-null optionals both take the documented default;
	// dob is the one field where null is the default itself.
	for key, def := range DefaultTable() {
		cur, ok := fields[key]
		if !ok || (cur == nil && key != "dob") {
			fields[key] = def
		}
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return nil, WrapFailure(KindMalformedResponse, err, "re-encode normalized profile")
	}
	var p Profile
	if err := json.Unmarshal(merged, &p); err != nil {
		return nil, WrapFailure(KindMalformedResponse, err, "decode normalized profile")
	}

	p.SkillsText = strings.Join(p.Skills, ", ")
	return &p, nil
}

// NormalizeRanking parses a ranking reply, drops entries that reference resume
// ids outside knownIDs (recorded in Ranking.Unknown, not fatal) and clamps
// match scores into [0,100]. Reply order is preserved — the model's declared
// ranking is the ranking.
func NormalizeRanking(raw []byte, knownIDs []int) (*Ranking, error) {
	if err := validateAgainstSchema(RankingSchema(), raw); err != nil {
		return nil, WrapFailure(KindMalformedResponse, err, "ranking reply failed validation")
	}

	var entries []RankingEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, WrapFailure(KindMalformedResponse, err, "ranking reply is not a JSON array")
	}

	known := make(map[int]bool, len(knownIDs))
	for _, id := range knownIDs {
		known[id] = true
	}

	ranking := &Ranking{Entries: make([]RankingEntry, 0, len(entries))}
	for _, e := range entries {
		if !known[e.ResumeID] {
			ranking.Unknown = append(ranking.Unknown, e.ResumeID)
			continue
		}
		if e.MatchScore < 0 {
			e.MatchScore = 0
		} else if e.MatchScore > 100 {
			e.MatchScore = 100
		}
		if e.Skills == nil {
			e.Skills = []string{}
		}
		ranking.Entries = append(ranking.Entries, e)
	}
	return ranking, nil
}
