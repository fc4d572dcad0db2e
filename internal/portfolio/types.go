package portfolio

import (
	"encoding/json"
	"strings"
)

// Portfolio is the structured description of a portfolio owner: identity,
// skills, projects, verified chat answers, and cosmetic mood tags. The chat
// core treats it as a read-only snapshot; mutation belongs to the editing
// surface (HTTP API / CLI).
type Portfolio struct {
	Name          string            `json:"name,omitempty"`
	Job           string            `json:"job,omitempty"`
	Strength      string            `json:"strength,omitempty"`
	Intro         string            `json:"intro,omitempty"`
	CareerSummary string            `json:"career_summary,omitempty"`
	Email         string            `json:"email,omitempty"`
	Phone         string            `json:"phone,omitempty"`
	GitHub        string            `json:"github,omitempty"`
	LinkedIn      string            `json:"linkedin,omitempty"`
	Skills        []string          `json:"skills,omitempty"`
	Projects      []Project         `json:"projects,omitempty"`
	ChatAnswers   map[string]string `json:"chat_answers,omitempty"`
	Moods         []string          `json:"moods,omitempty"`
}

// Project is a single portfolio entry. TechStack supersedes the legacy Tags
// list; consumers fall back to Tags only when TechStack is empty. LiveURL
// supersedes the generic Link the same way.
type Project struct {
	Title        string   `json:"title,omitempty"`
	Desc         string   `json:"desc,omitempty"`
	Period       string   `json:"period,omitempty"`
	Role         string   `json:"role,omitempty"`
	TechStack    string   `json:"tech_stack,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	TeamSize     string   `json:"team_size,omitempty"`
	Achievements string   `json:"achievements,omitempty"`
	GitHubURL    string   `json:"github_url,omitempty"`
	LiveURL      string   `json:"live_url,omitempty"`
	Link         string   `json:"link,omitempty"`
	Detail       string   `json:"detail,omitempty"`
}

// Decode parses a portfolio-context string received over the wire. Clients
// send either a JSON-encoded portfolio object or free text; free text (or an
// empty string) yields a nil portfolio rather than an error, since the chat
// endpoint degrades to answering without structured context.
func Decode(raw string) *Portfolio {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw[0] != '{' {
		return nil
	}
	var p Portfolio
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil
	}
	return &p
}

// VerifiedAnswer looks up an owner-authored answer by its stable question key.
// Whitespace-only values do not count; a non-empty result always takes
// precedence over any generated answer for the same question.
func (p *Portfolio) VerifiedAnswer(key string) (string, bool) {
	if p == nil || p.ChatAnswers == nil {
		return "", false
	}
	v, ok := p.ChatAnswers[key]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	return v, true
}

// Clone returns a deep copy so cached snapshots cannot be mutated by callers.
func (p *Portfolio) Clone() *Portfolio {
	if p == nil {
		return nil
	}
	cp := *p

	if p.Skills != nil {
		cp.Skills = make([]string, len(p.Skills))
		copy(cp.Skills, p.Skills)
	}
	if p.Moods != nil {
		cp.Moods = make([]string, len(p.Moods))
		copy(cp.Moods, p.Moods)
	}
	if p.Projects != nil {
		cp.Projects = make([]Project, len(p.Projects))
		copy(cp.Projects, p.Projects)
		for i := range p.Projects {
			if p.Projects[i].Tags != nil {
				cp.Projects[i].Tags = make([]string, len(p.Projects[i].Tags))
				copy(cp.Projects[i].Tags, p.Projects[i].Tags)
			}
		}
	}
	if p.ChatAnswers != nil {
		cp.ChatAnswers = make(map[string]string, len(p.ChatAnswers))
		for k, v := range p.ChatAnswers {
			cp.ChatAnswers[k] = v
		}
	}
	return &cp
}
