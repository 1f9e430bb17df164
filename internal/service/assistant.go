package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/healthsync/internal/analysis"
	"github.com/iliyamo/healthsync/internal/model"
)

const (
	assistantHabitLimit   = 3
	assistantRecordLimit  = 2
	assistantMessageLimit = 5
	maxChatMessage        = 4000
)

type AssistantService struct {
	Users    UserStore
	Habits   HabitStore
	Records  RecordStore
	Chats    ChatStore
	Analyzer *analysis.Analyzer
	Now      Clock
}

func NewAssistantService(users UserStore, habits HabitStore, records RecordStore, chats ChatStore, a *analysis.Analyzer) *AssistantService {
	return &AssistantService{Users: users, Habits: habits, Records: records, Chats: chats, Analyzer: a, Now: systemClock}
}

type ChatInput struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

type ChatResult struct {
	SessionID         string           `json:"session_id"`
	Reply             string           `json:"reply"`
	Urgency           analysis.Urgency `json:"urgency"`
	Recommendations   []string         `json:"recommendations"`
	FollowUpSuggested bool             `json:"follow_up_suggested"`
	Degradation
}

// Chat answers a question with the user's recent health data folded into
// the prompt.  A missing SessionID starts a new session.
func (s *AssistantService) Chat(ctx context.Context, in ChatInput) (ChatResult, error) {
	if in.UserID == "" {
		return ChatResult{}, invalid("user_id required")
	}
	msg := strings.TrimSpace(in.Message)
	if msg == "" {
		return ChatResult{}, invalid("message required")
	}
	if len(msg) > maxChatMessage {
		return ChatResult{}, invalid("message longer than %d bytes", maxChatMessage)
	}
	u, err := s.Users.GetByID(ctx, in.UserID)
	if err != nil {
		return ChatResult{}, fmt.Errorf("get user: %w", err)
	}

	now := s.Now().UTC()
	session, err := s.session(ctx, u.ID, in.SessionID, msg)
	if err != nil {
		return ChatResult{}, err
	}
	history, err := s.Chats.RecentMessages(ctx, session.ID, assistantMessageLimit)
	if err != nil {
		return ChatResult{}, fmt.Errorf("recent messages: %w", err)
	}
	habits, err := s.Habits.ListByUser(ctx, u.ID, assistantHabitLimit)
	if err != nil {
		return ChatResult{}, fmt.Errorf("list habits: %w", err)
	}
	records, err := s.Records.ListByUser(ctx, u.ID, assistantRecordLimit)
	if err != nil {
		return ChatResult{}, fmt.Errorf("list records: %w", err)
	}

	res := analysis.TryExternalText(ctx, s.Analyzer,
		analysis.AssistantPrompt(assistantContext(u, habits, records, history), msg),
		analysis.AssistantFallback)
	reply := res.Value
	urgency := analysis.ClassifyUrgency(msg, reply)
	level := string(urgency)

	userMsg := &model.ChatMessage{SessionID: session.ID, UserID: u.ID, MessageType: model.MessageUser, Content: msg, CreatedAt: now}
	botMsg := &model.ChatMessage{SessionID: session.ID, UserID: u.ID, MessageType: model.MessageAssistant, Content: reply, Urgency: &level, CreatedAt: s.Now().UTC()}
	if err := s.Chats.AppendMessages(ctx, session.ID, userMsg, botMsg); err != nil {
		return ChatResult{}, fmt.Errorf("store messages: %w", err)
	}

	recs := analysis.ExtractRecommendations(reply)
	if recs == nil {
		recs = []string{}
	}
	return ChatResult{
		SessionID:         session.ID,
		Reply:             reply,
		Urgency:           urgency,
		Recommendations:   recs,
		FollowUpSuggested: analysis.SuggestsFollowUp(reply),
		Degradation:       degradation(res),
	}, nil
}

func (s *AssistantService) session(ctx context.Context, userID, id, firstMessage string) (model.ChatSession, error) {
	if id != "" {
		sess, err := s.Chats.GetSession(ctx, id, userID)
		if err != nil {
			return model.ChatSession{}, fmt.Errorf("get session: %w", err)
		}
		return sess, nil
	}
	now := s.Now().UTC()
	sess := model.ChatSession{UserID: userID, Name: sessionName(firstMessage), CreatedAt: now, LastActivity: now}
	if err := s.Chats.CreateSession(ctx, &sess); err != nil {
		return model.ChatSession{}, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

func sessionName(msg string) string {
	const maxName = 40
	r := []rune(msg)
	if len(r) <= maxName {
		return msg
	}
	return string(r[:maxName]) + "..."
}

func assistantContext(u model.User, habits []model.HabitRecord, records []model.MedicalRecord, history []model.ChatMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s. Health score: %.0f/100. Tokens: %d.", u.Name, u.HealthScore, u.Tokens)
	if u.Age != nil {
		fmt.Fprintf(&b, " Age: %d.", *u.Age)
	}
	if len(habits) > 0 {
		b.WriteString("\nRecent habits:")
		for _, h := range habits {
			fmt.Fprintf(&b, "\n- %s: score impact %.0f", h.HabitDate, h.HealthScoreImpact)
			if h.SleepHours != nil {
				fmt.Fprintf(&b, ", sleep %.1fh", *h.SleepHours)
			}
			if h.ExerciseMinutes != nil {
				fmt.Fprintf(&b, ", exercise %dmin", *h.ExerciseMinutes)
			}
			if h.WaterGlasses != nil {
				fmt.Fprintf(&b, ", water %d glasses", *h.WaterGlasses)
			}
			if h.MoodRating != nil {
				fmt.Fprintf(&b, ", mood %d/5", *h.MoodRating)
			}
		}
	}
	if len(records) > 0 {
		b.WriteString("\nRecent medical records:")
		for _, r := range records {
			fmt.Fprintf(&b, "\n- %s: %s", r.Filename, r.AISummary)
		}
	}
	if len(history) > 0 {
		b.WriteString("\nConversation so far:")
		for _, m := range history {
			fmt.Fprintf(&b, "\n%s: %s", m.MessageType, m.Content)
		}
	}
	return b.String()
}
