package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kalambet/docent/internal/portfolio"
)

// instantClock fires every timer immediately.
type instantClock struct{}

func (instantClock) Now() time.Time { return time.Unix(1000, 0) }

func (instantClock) After(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Unix(1000, 0)
	return ch
}

type fakeAnswerer struct {
	mu    sync.Mutex
	calls []AnswerRequest
	reply string
	err   error
}

func (a *fakeAnswerer) Answer(ctx context.Context, req AnswerRequest) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, req)
	return a.reply, a.err
}

func (a *fakeAnswerer) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.calls)
}

func testPortfolio() *portfolio.Portfolio {
	return &portfolio.Portfolio{
		Name:  "김지원",
		Email: "jiwon@example.com",
		ChatAnswers: map[string]string{
			"best_project": "결제 시스템을 가장 자신 있게 소개할 수 있습니다.",
		},
	}
}

func newTestSession(mode Mode, p *portfolio.Portfolio, a Answerer) *Session {
	return NewWithClock(mode, p, a, instantClock{})
}

func TestOpenShared(t *testing.T) {
	s := newTestSession(ModeShared, testPortfolio(), &fakeAnswerer{})
	s.Open()

	msgs := s.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected greeting + category menu, got %d messages", len(msgs))
	}
	if !strings.Contains(msgs[0].Text, "김지원님의 포트폴리오 도슨트 **무무(Mumu)**") {
		t.Errorf("greeting missing owner name and persona: %q", msgs[0].Text)
	}
	if !msgs[1].CategoryPrompt {
		t.Error("second message should be the category menu")
	}
	if s.State() != StateCategoryMenu {
		t.Errorf("expected category menu state, got %v", s.State())
	}
}

func TestOpenSharedDefaultName(t *testing.T) {
	s := newTestSession(ModeShared, &portfolio.Portfolio{}, &fakeAnswerer{})
	s.Open()

	if !strings.Contains(s.Messages()[0].Text, "지원자님의 포트폴리오 도슨트") {
		t.Errorf("missing default owner name: %q", s.Messages()[0].Text)
	}
}

func TestOpenOwner(t *testing.T) {
	s := newTestSession(ModeOwner, testPortfolio(), &fakeAnswerer{})
	s.Open()

	msgs := s.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected single greeting, got %d messages", len(msgs))
	}
	if !strings.Contains(msgs[0].Text, "포트폴리오 코치 **포포(Popo)**") {
		t.Errorf("missing coach greeting: %q", msgs[0].Text)
	}
	if msgs[0].CategoryPrompt {
		t.Error("owner mode must not offer the category menu")
	}
	if s.State() != StateFreeInput {
		t.Errorf("expected free-input state, got %v", s.State())
	}
}

func TestOpenIdempotent(t *testing.T) {
	s := newTestSession(ModeShared, testPortfolio(), &fakeAnswerer{})
	s.Open()
	s.Open()
	if got := len(s.Messages()); got != 2 {
		t.Errorf("second Open must be a no-op, got %d messages", got)
	}
}

func TestSelectCategory(t *testing.T) {
	s := newTestSession(ModeShared, testPortfolio(), &fakeAnswerer{})
	s.Open()
	s.SelectCategory("achievements")

	msgs := s.Messages()
	last := msgs[len(msgs)-1]
	prev := msgs[len(msgs)-2]

	if prev.Role != RoleUser || prev.Text != "3. 문제 해결 및 성과" {
		t.Errorf("expected category title echo, got %+v", prev)
	}
	if last.QuestionPrompt != "achievements" {
		t.Errorf("expected question menu for achievements, got %+v", last)
	}
	if s.State() != StateQuestionMenu || s.ActiveCategory() != "achievements" {
		t.Errorf("unexpected state %v / category %q", s.State(), s.ActiveCategory())
	}
}

func TestSelectCategoryUnknown(t *testing.T) {
	s := newTestSession(ModeShared, testPortfolio(), &fakeAnswerer{})
	s.Open()
	before := len(s.Messages())
	s.SelectCategory("nope")
	if len(s.Messages()) != before {
		t.Error("unknown category must be ignored")
	}
}

func TestBack(t *testing.T) {
	s := newTestSession(ModeShared, testPortfolio(), &fakeAnswerer{})
	s.Open()
	s.SelectCategory("skills")
	before := len(s.Messages())
	s.Back()

	msgs := s.Messages()
	if len(msgs) != before+1 {
		t.Fatalf("back should append exactly one message")
	}
	last := msgs[len(msgs)-1]
	if last.Role != RoleAssistant || !last.CategoryPrompt {
		t.Errorf("expected category menu without user echo, got %+v", last)
	}
	if s.ActiveCategory() != "" {
		t.Error("active category should be cleared")
	}
}

func TestSelectQuestionVerified(t *testing.T) {
	answerer := &fakeAnswerer{reply: "생성된 답변"}
	s := newTestSession(ModeShared, testPortfolio(), answerer)
	s.Open()
	s.SelectCategory("achievements")
	s.SelectQuestion(context.Background(), "best_project")

	if answerer.callCount() != 0 {
		t.Fatal("verified answer must not trigger an external call")
	}

	msgs := s.Messages()
	// echo, answer, category re-prompt
	answer := msgs[len(msgs)-2]
	echo := msgs[len(msgs)-3]

	if echo.Role != RoleUser || echo.Text != "포트폴리오 중 가장 자신 있는 프로젝트 하나를 소개한다면?" {
		t.Errorf("expected question text echo, got %+v", echo)
	}
	want := "지원자가 직접 작성한 답변입니다:\n\n결제 시스템을 가장 자신 있게 소개할 수 있습니다."
	if answer.Role != RoleAssistant || answer.Text != want {
		t.Errorf("expected prefixed verified answer, got %q", answer.Text)
	}
	if !msgs[len(msgs)-1].CategoryPrompt {
		t.Error("shared mode should re-offer the category menu after the answer")
	}
	if s.Loading() {
		t.Error("loading flag should be cleared")
	}
}

func TestSelectQuestionFallsBackToAnswerer(t *testing.T) {
	answerer := &fakeAnswerer{reply: "핵심 역량은 Go 백엔드입니다."}
	s := newTestSession(ModeShared, testPortfolio(), answerer)
	s.Open()
	s.SelectQuestion(context.Background(), "core_skills")

	if answerer.callCount() != 1 {
		t.Fatalf("expected one external call, got %d", answerer.callCount())
	}
	req := answerer.calls[0]
	if req.Message != "지원자의 핵심 역량 3가지를 요약한다면?" {
		t.Errorf("expected full question text, got %q", req.Message)
	}
	if !req.Shared {
		t.Error("shared mode must be flagged on the request")
	}
	if !strings.Contains(req.PortfolioContext, `"name": "김지원"`) {
		t.Errorf("expected serialized portfolio context, got %q", req.PortfolioContext)
	}

	msgs := s.Messages()
	if got := msgs[len(msgs)-2].Text; got != "핵심 역량은 Go 백엔드입니다." {
		t.Errorf("unexpected reply %q", got)
	}
	// Exactly one user echo for the whole exchange.
	echoes := 0
	for _, m := range msgs {
		if m.Role == RoleUser {
			echoes++
		}
	}
	if echoes != 1 {
		t.Errorf("expected a single user echo, got %d", echoes)
	}
}

func TestSelectQuestionUnknownKey(t *testing.T) {
	answerer := &fakeAnswerer{}
	s := newTestSession(ModeShared, testPortfolio(), answerer)
	s.Open()
	before := len(s.Messages())
	s.SelectQuestion(context.Background(), "nope")
	if len(s.Messages()) != before || answerer.callCount() != 0 {
		t.Error("unknown question key must be ignored")
	}
}

func TestSendFailureApology(t *testing.T) {
	answerer := &fakeAnswerer{err: errors.New("connection refused")}
	s := newTestSession(ModeShared, testPortfolio(), answerer)
	s.Open()
	s.Send(context.Background(), "이 사람 괜찮나요?")

	msgs := s.Messages()
	apology := msgs[len(msgs)-2]
	if apology.Text != "죄송합니다. 서버가 꺼져있는 것 같아요!" {
		t.Errorf("expected fixed apology, got %q", apology.Text)
	}
	if s.Loading() {
		t.Error("loading flag should be cleared after a failure")
	}
	if !msgs[len(msgs)-1].CategoryPrompt {
		t.Error("menu should be re-offered even after a failure")
	}
}

func TestSendEmptyIsNoOp(t *testing.T) {
	answerer := &fakeAnswerer{}
	s := newTestSession(ModeShared, testPortfolio(), answerer)
	s.Open()
	before := len(s.Messages())

	for _, raw := range []any{"", "   ", nil, "\n\t"} {
		s.Send(context.Background(), raw)
	}

	if len(s.Messages()) != before || answerer.callCount() != 0 {
		t.Error("empty submissions must be silent no-ops")
	}
	if s.Loading() {
		t.Error("no-op submissions must not set the loading flag")
	}
}

func TestSendOwnerMode(t *testing.T) {
	answerer := &fakeAnswerer{reply: "프로젝트 요약을 먼저 다듬어 보세요."}
	s := newTestSession(ModeOwner, testPortfolio(), answerer)
	s.Open()
	s.Send(context.Background(), "포트폴리오 어떻게 시작하죠?")

	req := answerer.calls[0]
	if req.Shared {
		t.Error("owner mode must not be flagged as shared")
	}

	msgs := s.Messages()
	last := msgs[len(msgs)-1]
	echo := msgs[len(msgs)-2]
	if echo.Role != RoleUser || echo.Text != "포트폴리오 어떻게 시작하죠?" {
		t.Errorf("expected exact user echo first, got %+v", echo)
	}
	if last.CategoryPrompt {
		t.Error("owner mode must not re-offer the category menu")
	}
	if last.Text != "프로젝트 요약을 먼저 다듬어 보세요." {
		t.Errorf("unexpected reply %q", last.Text)
	}
	if s.State() != StateFreeInput {
		t.Errorf("expected free-input state, got %v", s.State())
	}
}

func TestContactOwner(t *testing.T) {
	p := testPortfolio()
	p.Phone = "010-1234-5678"
	s := newTestSession(ModeShared, p, &fakeAnswerer{})
	s.Open()
	s.ContactOwner()

	msgs := s.Messages()
	card := msgs[len(msgs)-1]
	echo := msgs[len(msgs)-2]

	if echo.Role != RoleUser || echo.Text != "지원자 연락처 확인하기" {
		t.Errorf("unexpected contact echo %+v", echo)
	}
	if !strings.Contains(card.Text, "**이메일**: jiwon@example.com") {
		t.Errorf("missing email line: %q", card.Text)
	}
	if !strings.Contains(card.Text, "**전화번호**: 010-1234-5678") {
		t.Errorf("missing phone line: %q", card.Text)
	}
}

func TestContactOwnerNoPhone(t *testing.T) {
	s := newTestSession(ModeShared, &portfolio.Portfolio{}, &fakeAnswerer{})
	s.Open()
	s.ContactOwner()

	msgs := s.Messages()
	card := msgs[len(msgs)-1]
	if !strings.Contains(card.Text, "**이메일**: 정보 없음") {
		t.Errorf("missing email sentinel: %q", card.Text)
	}
	if strings.Contains(card.Text, "전화번호") {
		t.Errorf("phone line must be omitted when absent: %q", card.Text)
	}
}

func TestScrollTarget(t *testing.T) {
	s := newTestSession(ModeShared, testPortfolio(), &fakeAnswerer{})
	if s.ScrollTarget() != -1 {
		t.Error("empty log should yield -1")
	}

	s.Open()
	// Last message is the category menu; target is the greeting above it.
	if got := s.ScrollTarget(); got != 0 {
		t.Errorf("expected target 0 above the trailing menu, got %d", got)
	}

	s.SelectQuestion(context.Background(), "best_project")
	msgs := s.Messages()
	// echo, answer, re-prompt: target is the answer.
	if got := s.ScrollTarget(); got != len(msgs)-2 {
		t.Errorf("expected target %d, got %d", len(msgs)-2, got)
	}
}

func TestScrollTargetOwner(t *testing.T) {
	answerer := &fakeAnswerer{reply: "답변"}
	s := newTestSession(ModeOwner, testPortfolio(), answerer)
	s.Open()
	s.Send(context.Background(), "질문")

	msgs := s.Messages()
	if got := s.ScrollTarget(); got != len(msgs)-1 {
		t.Errorf("owner mode should target the last message, got %d", got)
	}
}

func TestMessagesReturnsCopy(t *testing.T) {
	s := newTestSession(ModeShared, testPortfolio(), &fakeAnswerer{})
	s.Open()

	msgs := s.Messages()
	msgs[0].Text = "변조"
	if s.Messages()[0].Text == "변조" {
		t.Error("mutation of returned log leaked into the session")
	}
}
