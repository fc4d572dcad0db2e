// Package catalog holds the fixed question taxonomy offered to portfolio
// visitors: three categories, four questions each. Question keys are stable
// identifiers that pair with the owner's verified chat answers; the Korean
// keyword and text are display strings.
package catalog

// Question is one selectable menu entry.
type Question struct {
	Key     string // stable identifier, matches Portfolio.ChatAnswers keys
	Keyword string // compact button label
	Text    string // full natural-language question
}

// Category groups four related questions under a titled menu entry.
type Category struct {
	ID        string
	Title     string
	Questions []Question
}

var categories = []Category{
	{
		ID:    "skills",
		Title: "1. 핵심 역량 및 기술 요약",
		Questions: []Question{
			{Key: "core_skills", Keyword: "핵심 요약", Text: "지원자의 핵심 역량 3가지를 요약한다면?"},
			{Key: "main_stack", Keyword: "메인 스택", Text: "이 포트폴리오에서 가장 주력으로 사용한 '기술 스택(Main Skill)'은 무엇인가요?"},
			{Key: "tech_depth", Keyword: "기술 깊이", Text: "기술적으로 가장 깊이 있게 파고들거나 연구해 본 분야는 어디인가요?"},
			{Key: "documentation", Keyword: "문서화", Text: "코드 작성 외에 설계 문서(API 명세, 기획서 등)도 작성할 줄 아나요?"},
		},
	},
	{
		ID:    "contribution",
		Title: "2. 역할 및 기여도 검증",
		Questions: []Question{
			{Key: "role_contribution", Keyword: "기여도", Text: "각 프로젝트에서의 지원자의 구체적인 역할과 기여도는 어땠나요?"},
			{Key: "collaboration", Keyword: "협업 방식", Text: "팀 프로젝트에서 동료들과의 협업(코드 리뷰, 일정 관리)은 어떻게 진행했나요?"},
			{Key: "cycle", Keyword: "범위 확인", Text: "기획부터 배포/운영까지 '전체 사이클'을 경험해 본 프로젝트가 있나요?"},
			{Key: "artifacts", Keyword: "산출물", Text: "실제 작성한 소스 코드나 디자인 원본 파일(Figma 등)을 볼 수 있나요?"},
		},
	},
	{
		ID:    "achievements",
		Title: "3. 문제 해결 및 성과",
		Questions: []Question{
			{Key: "best_project", Keyword: "대표작", Text: "포트폴리오 중 가장 자신 있는 프로젝트 하나를 소개한다면?"},
			{Key: "troubleshooting", Keyword: "트러블슈팅", Text: "개발(또는 진행) 중 발생한 가장 치명적인 문제와 해결 과정은 무엇인가요?"},
			{Key: "decision_making", Keyword: "의사결정", Text: "해당 기술(또는 디자인 컨셉)을 선정하게 된 특별한 이유나 논리가 있나요?"},
			{Key: "quantitative_performance", Keyword: "정량 성과", Text: "프로젝트를 통해 얻은 구체적인 수치 성과(사용자 수, 성능 개선율 등)가 있나요?"},
		},
	},
}

// Categories returns the full taxonomy in display order. The returned slices
// are copies; the catalog itself is immutable.
func Categories() []Category {
	out := make([]Category, len(categories))
	for i, c := range categories {
		qs := make([]Question, len(c.Questions))
		copy(qs, c.Questions)
		c.Questions = qs
		out[i] = c
	}
	return out
}

// CategoryByID returns the category with the given id.
func CategoryByID(id string) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			qs := make([]Question, len(c.Questions))
			copy(qs, c.Questions)
			c.Questions = qs
			return c, true
		}
	}
	return Category{}, false
}

// QuestionByKey returns the question with the given stable key.
func QuestionByKey(key string) (Question, bool) {
	for _, c := range categories {
		for _, q := range c.Questions {
			if q.Key == key {
				return q, true
			}
		}
	}
	return Question{}, false
}

// Keys returns all stable question keys in catalog order.
func Keys() []string {
	var keys []string
	for _, c := range categories {
		for _, q := range c.Questions {
			keys = append(keys, q.Key)
		}
	}
	return keys
}
