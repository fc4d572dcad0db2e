// Package composer turns a portfolio snapshot into the context document and
// system prompts fed to the answering model. Output is deterministic: the
// same snapshot always serializes to the same bytes, and sections with no
// data are omitted entirely rather than emitted as empty headers.
package composer

import (
	"fmt"
	"strings"

	"github.com/kalambet/docent/internal/catalog"
	"github.com/kalambet/docent/internal/portfolio"
)

const notProvided = "정보 없음"

// BuildContext serializes a portfolio into the single ordered text block
// injected into the answering model's prompt. Missing optional fields degrade
// to omission, never to failure; a nil portfolio yields an empty document.
func BuildContext(p *portfolio.Portfolio) string {
	if p == nil {
		return ""
	}

	var sections []string

	// Identity block, always present. Individual fields fall back to an
	// explicit sentinel so the model never sees a blank label.
	sections = append(sections, "=== 포트폴리오 소유자 정보 ===")
	sections = append(sections, "이름: "+orElse(p.Name, notProvided))
	sections = append(sections, "직무: "+orElse(p.Job, notProvided))
	sections = append(sections, "강점/전문분야: "+orElse(p.Strength, notProvided))

	if p.Intro != "" {
		sections = append(sections, "\n자기소개:\n"+p.Intro)
	}

	if p.CareerSummary != "" {
		sections = append(sections, "\n=== 경력 요약 ===")
		sections = append(sections, p.CareerSummary)
	}

	if len(p.Skills) > 0 {
		sections = append(sections, "\n=== 보유 기술 ===")
		sections = append(sections, strings.Join(p.Skills, ", "))
	}

	if len(p.Projects) > 0 {
		sections = append(sections, fmt.Sprintf("\n=== 프로젝트 목록 (총 %d개) ===", len(p.Projects)))
		for i, pr := range p.Projects {
			sections = append(sections, projectLines(i+1, pr)...)
		}
	}

	if len(p.Moods) > 0 {
		sections = append(sections, "\n=== 관심 분야/키워드 ===")
		sections = append(sections, strings.Join(p.Moods, ", "))
	}

	if p.Email != "" || p.GitHub != "" || p.LinkedIn != "" {
		sections = append(sections, "\n=== 연락처 정보 ===")
		if p.Email != "" {
			sections = append(sections, "이메일: "+p.Email)
		}
		if p.GitHub != "" {
			sections = append(sections, "GitHub: "+p.GitHub)
		}
		if p.LinkedIn != "" {
			sections = append(sections, "LinkedIn: "+p.LinkedIn)
		}
	}

	if lines := verifiedAnswerLines(p); len(lines) > 0 {
		sections = append(sections, "\n=== 지원자가 직접 검수하고 승인한 핵심 질문 답변 (최우선 활용) ===")
		sections = append(sections, lines...)
		sections = append(sections, "\n※ 위 답변들은 지원자가 직접 확인한 내용입니다. 관련 질문 시 이 내용을 최우선으로 인용하고, \"지원자가 검증한 정보\"임을 명시하세요.")
		sections = append(sections, "※ 만약 위 목록에 없는 질문에 답해야 한다면, 반드시 '포트폴리오 데이터'에 기반한 객관적인 사실만 요약하세요. 절대 '추측'하거나 지어내지 마세요.")
	}

	return strings.Join(sections, "\n")
}

func projectLines(n int, pr portfolio.Project) []string {
	lines := []string{fmt.Sprintf("\n[프로젝트 %d] %s", n, orElse(pr.Title, "제목 없음"))}

	if pr.Desc != "" {
		lines = append(lines, "설명: "+pr.Desc)
	}
	if pr.Period != "" {
		lines = append(lines, "작업 기간: "+pr.Period)
	}
	if pr.Role != "" {
		lines = append(lines, "역할: "+pr.Role)
	}
	// Tech stack string supersedes the legacy tag list.
	if pr.TechStack != "" {
		lines = append(lines, "사용 기술: "+pr.TechStack)
	} else if len(pr.Tags) > 0 {
		lines = append(lines, "사용 기술: "+strings.Join(pr.Tags, ", "))
	}
	if pr.TeamSize != "" {
		lines = append(lines, "팀 규모: "+pr.TeamSize)
	}
	if pr.Achievements != "" {
		lines = append(lines, "주요 성과: "+pr.Achievements)
	}
	if pr.GitHubURL != "" {
		lines = append(lines, "GitHub: "+pr.GitHubURL)
	}
	// Live URL supersedes the generic link.
	if pr.LiveURL != "" {
		lines = append(lines, "라이브 URL: "+pr.LiveURL)
	} else if pr.Link != "" {
		lines = append(lines, "링크: "+pr.Link)
	}
	if pr.Detail != "" {
		lines = append(lines, "상세: "+pr.Detail)
	}
	return lines
}

// verifiedAnswerLines emits question/answer pairs in catalog order for every
// catalog key the owner has answered. Whitespace-only answers are skipped.
func verifiedAnswerLines(p *portfolio.Portfolio) []string {
	var lines []string
	for _, c := range catalog.Categories() {
		for _, q := range c.Questions {
			if answer, ok := p.VerifiedAnswer(q.Key); ok {
				lines = append(lines, fmt.Sprintf("[질문: %s] 답변: %s", q.Text, answer))
			}
		}
	}
	return lines
}

// HasSufficientContext reports whether a portfolio carries enough material to
// support any assistant answer at all. The presentation layer hides the
// assistant entirely when this is false.
func HasSufficientContext(p *portfolio.Portfolio) bool {
	if p == nil {
		return false
	}
	return len(p.ChatAnswers) > 0 || len(p.Projects) > 0 || p.CareerSummary != "" || p.Intro != ""
}

func orElse(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
