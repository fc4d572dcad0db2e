package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/kalambet/docent/internal/catalog"
	"github.com/kalambet/docent/internal/portfolio"
)

// Mode selects the widget flavor: shared/public visitors get the menu-driven
// docent, the owner gets a free-text coach.
type Mode int

const (
	ModeShared Mode = iota
	ModeOwner
)

// State is the session's position in the menu flow.
type State int

const (
	StateIdle State = iota
	StateCategoryMenu
	StateQuestionMenu
	StateAwaitingAnswer
	StateFreeInput
)

// AnswerRequest is the outbound payload for the external answering service.
type AnswerRequest struct {
	Message          string `json:"message"`
	PortfolioContext string `json:"portfolio_context"`
	Shared           bool   `json:"is_shared"`
}

// Answerer is the injected capability that produces an assistant reply for a
// free-text question. The session treats every failure uniformly.
type Answerer interface {
	Answer(ctx context.Context, req AnswerRequest) (string, error)
}

const (
	sharedGreetingSuffix = "님의 포트폴리오 도슨트 **무무(Mumu)**입니다.\n지원자의 역량과 프로젝트에 대해 궁금한 점을 카테고리별로 안내해 드릴게요."
	ownerGreeting        = "안녕하세요! 포트폴리오 코치 **포포(Popo)**입니다.\n혼자 쓰기 막막한 포트폴리오,\n저랑 같이 쉽고 빠르게 완성해볼까요?"
	categoryMenuText     = "원하시는 질문 카테고리를 선택해주세요."
	categoryReprompt     = "다른 궁금한 점이 있으신가요? 아래 카테고리에서 선택해주시면 더 안내해 드릴게요!"
	questionMenuText     = "상세 질문을 선택해주세요:"
	backToCategories     = "다른 카테고리를 선택하시겠어요?"
	verifiedPrefix       = "지원자가 직접 작성한 답변입니다:\n\n"
	apologyText          = "죄송합니다. 서버가 꺼져있는 것 같아요!"
	contactEcho          = "지원자 연락처 확인하기"
	defaultOwnerName     = "지원자"

	// Verified answers are revealed after a short fixed delay so the instant
	// path feels like an actual request.
	revealDelay = 600 * time.Millisecond
)

// Session owns the message log for one open chat widget. All methods are safe
// for concurrent use, but the loading flag is advisory only: overlapping
// free-text dispatches are not serialized, and whichever reply returns first
// is appended first. Each exchange is self-contained, so this is accepted.
type Session struct {
	mode     Mode
	profile  *portfolio.Portfolio
	answerer Answerer
	clock    Clock

	mu       sync.Mutex
	msgs     []Message
	loading  bool
	state    State
	category string // active category id while in the question menu
}

// New creates a session over a portfolio snapshot. The snapshot is read-only
// from the session's perspective; profile edits belong to the owner surface.
func New(mode Mode, p *portfolio.Portfolio, answerer Answerer) *Session {
	return NewWithClock(mode, p, answerer, realClock{})
}

// NewWithClock creates a session with a custom clock (for testing).
func NewWithClock(mode Mode, p *portfolio.Portfolio, answerer Answerer, clock Clock) *Session {
	return &Session{
		mode:     mode,
		profile:  p,
		answerer: answerer,
		clock:    clock,
		state:    StateIdle,
	}
}

// Open seeds the greeting. Shared mode immediately offers the category menu;
// owner mode greets once and leaves the free-text box as the only affordance.
func (s *Session) Open() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return
	}

	if s.mode == ModeShared {
		name := defaultOwnerName
		if s.profile != nil && s.profile.Name != "" {
			name = s.profile.Name
		}
		s.msgs = append(s.msgs,
			assistantMessage("안녕하세요! "+name+sharedGreetingSuffix),
			categoryPrompt(categoryMenuText),
		)
		s.state = StateCategoryMenu
		return
	}

	s.msgs = append(s.msgs, assistantMessage(ownerGreeting))
	s.state = StateFreeInput
}

// SelectCategory echoes the chosen category and offers its four questions.
// Unknown ids are ignored.
func (s *Session) SelectCategory(id string) {
	cat, ok := catalog.CategoryByID(id)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.msgs = append(s.msgs,
		userMessage(cat.Title),
		questionPrompt(questionMenuText, cat.ID),
	)
	s.state = StateQuestionMenu
	s.category = cat.ID
}

// Back returns from the question menu to the category menu without a user
// echo.
func (s *Session) Back() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.msgs = append(s.msgs, categoryPrompt(backToCategories))
	s.state = StateCategoryMenu
	s.category = ""
}

// SelectQuestion answers one catalog question. A non-empty verified answer is
// revealed directly after the fixed delay, with no external call; otherwise
// the question text goes through the free-text dispatch path. Unknown keys
// are ignored.
func (s *Session) SelectQuestion(ctx context.Context, key string) {
	q, ok := catalog.QuestionByKey(key)
	if !ok {
		return
	}

	res := Resolve(q, s.profile)
	if !res.Verified {
		s.Send(ctx, res.Text)
		return
	}

	s.mu.Lock()
	s.msgs = append(s.msgs, userMessage(q.Text))
	s.loading = true
	s.state = StateAwaitingAnswer
	s.mu.Unlock()

	select {
	case <-s.clock.After(revealDelay):
	case <-ctx.Done():
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, assistantMessage(verifiedPrefix+res.Text))
	s.finishExchangeLocked()
}

// ContactOwner appends the owner's contact details with no external call.
// The phone line appears only when a phone number exists.
func (s *Session) ContactOwner() {
	email := notProvidedContact
	phone := ""
	if s.profile != nil {
		if s.profile.Email != "" {
			email = s.profile.Email
		}
		phone = s.profile.Phone
	}

	text := "지원자님께 직접 궁금한 점을 문의해보세요!\n\n**이메일**: " + email
	if phone != "" {
		text += "\n**전화번호**: " + phone
	}
	text += "\n\n다른 궁금한 점이 있으시면 언제든 물어보세요!"

	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, userMessage(contactEcho), assistantMessage(text))
}

const notProvidedContact = "정보 없음"

// Send dispatches a free-text submission. Empty or whitespace-only input is a
// silent no-op; non-string payloads are coerced first. Any failure of the
// answering call surfaces as the fixed apology message, never as an error.
func (s *Session) Send(ctx context.Context, raw any) {
	text, ok := NormalizeInput(raw)
	if !ok {
		return
	}

	s.mu.Lock()
	s.msgs = append(s.msgs, userMessage(text))
	s.loading = true
	s.state = StateAwaitingAnswer
	s.mu.Unlock()

	reply, err := s.answerer.Answer(ctx, AnswerRequest{
		Message:          text,
		PortfolioContext: s.contextString(),
		Shared:           s.mode == ModeShared,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.msgs = append(s.msgs, assistantMessage(apologyText))
	} else {
		s.msgs = append(s.msgs, assistantMessage(reply))
	}
	s.finishExchangeLocked()
}

// finishExchangeLocked clears the loading flag and, in shared mode, re-offers
// the category menu after every answer. Callers hold s.mu.
func (s *Session) finishExchangeLocked() {
	s.loading = false
	if s.mode == ModeShared {
		s.msgs = append(s.msgs, categoryPrompt(categoryReprompt))
		s.state = StateCategoryMenu
		s.category = ""
	} else {
		s.state = StateFreeInput
	}
}

// contextString serializes the portfolio snapshot for transmission. A missing
// snapshot yields an empty string; the answering service degrades gracefully.
func (s *Session) contextString() string {
	if s.profile == nil {
		return ""
	}
	data, err := json.MarshalIndent(s.profile, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}

// Messages returns a copy of the conversation log.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.msgs))
	copy(out, s.msgs)
	return out
}

// Loading reports whether an answer is pending. Advisory only.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// State returns the session's current menu state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ActiveCategory returns the category id shown in the question menu, or ""
// outside of it.
func (s *Session) ActiveCategory() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.category
}

// ScrollTarget returns the index of the message a view should scroll to, or
// -1 for an empty log. In shared mode the substantive answer sits above the
// trailing category menu, so the target is the second-to-last entry whenever
// the last one is a category prompt.
func (s *Session) ScrollTarget() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.msgs)
	if n == 0 {
		return -1
	}
	if s.mode == ModeShared && n >= 2 && s.msgs[n-1].CategoryPrompt {
		return n - 2
	}
	return n - 1
}
