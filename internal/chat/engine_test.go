package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/botgpt/botgpt/internal/llm"
	"github.com/botgpt/botgpt/internal/log"
	"github.com/botgpt/botgpt/internal/store"
)

// mockStore records engine persistence calls in memory.
type mockStore struct {
	users         map[string]*store.User
	conversations map[string]*store.Conversation
	messages      []*store.Message
	attachedDocs  map[string][]string
	tokenAdds     []int

	addMessageErr error
}

func newMockStore() *mockStore {
	return &mockStore{
		users:         map[string]*store.User{"u1": {ID: "u1", Name: "Ann", Email: "ann@example.com"}},
		conversations: map[string]*store.Conversation{},
		attachedDocs:  map[string][]string{},
	}
}

func (m *mockStore) GetUser(_ context.Context, id string) (*store.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func (m *mockStore) CreateConversation(_ context.Context, userID, mode, title string) (*store.Conversation, error) {
	c := &store.Conversation{ID: "c1", UserID: userID, Mode: mode, Title: title}
	m.conversations[c.ID] = c
	return c, nil
}

func (m *mockStore) GetConversation(_ context.Context, id string) (*store.Conversation, error) {
	c, ok := m.conversations[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return c, nil
}

func (m *mockStore) AddMessage(_ context.Context, conversationID, role, content string, tokens int) (*store.Message, error) {
	if m.addMessageErr != nil {
		return nil, m.addMessageErr
	}
	msg := &store.Message{ConversationID: conversationID, Role: role, Content: content, Tokens: tokens}
	m.messages = append(m.messages, msg)
	return msg, nil
}

func (m *mockStore) AddConversationTokens(_ context.Context, conversationID string, n int) error {
	if _, ok := m.conversations[conversationID]; !ok {
		return store.ErrNotFound
	}
	m.tokenAdds = append(m.tokenAdds, n)
	return nil
}

func (m *mockStore) DocumentIDsForConversation(_ context.Context, conversationID string) ([]string, error) {
	return m.attachedDocs[conversationID], nil
}

// mockRetriever returns canned chunks and records queries.
type mockRetriever struct {
	chunks    []string
	err       error
	callCount int
	lastQuery string
	lastDocs  []string
}

func (m *mockRetriever) Retrieve(_ context.Context, query string, docIDs []string) ([]string, error) {
	m.callCount++
	m.lastQuery = query
	m.lastDocs = docIDs
	if len(docIDs) == 0 {
		return nil, nil
	}
	return m.chunks, m.err
}

// mockGenerator returns a canned reply and records the messages it saw.
type mockGenerator struct {
	reply        *llm.Reply
	err          error
	lastMessages []llm.Message
}

func (m *mockGenerator) Generate(_ context.Context, messages []llm.Message) (*llm.Reply, error) {
	m.lastMessages = messages
	if m.err != nil {
		return nil, m.err
	}
	return m.reply, nil
}

func newEngine(t *testing.T, st Store, r Retriever, g Generator) *Engine {
	t.Helper()
	e, err := New(Config{Store: st, Retriever: r, Generator: g, Logger: log.NewNop()})
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	return e
}

func TestNewValidation(t *testing.T) {
	st := newMockStore()
	r := &mockRetriever{}
	g := &mockGenerator{}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing store", Config{Retriever: r, Generator: g}},
		{"missing retriever", Config{Store: st, Generator: g}},
		{"missing generator", Config{Store: st, Retriever: r}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); err == nil {
				t.Error("New() expected error")
			}
		})
	}
}

func TestStartConversation(t *testing.T) {
	st := newMockStore()
	retriever := &mockRetriever{}
	generator := &mockGenerator{reply: &llm.Reply{Text: "hi there", Tokens: 42}}
	e := newEngine(t, st, retriever, generator)

	result, err := e.StartConversation(context.Background(), "u1", store.ModeRAG, "hello")
	if err != nil {
		t.Fatalf("StartConversation() unexpected error: %v", err)
	}

	if result.Response != "hi there" || result.Tokens != 42 {
		t.Errorf("result = %q/%d, want %q/42", result.Response, result.Tokens, "hi there")
	}
	if result.Conversation.Title != "hello" {
		t.Errorf("title = %q, want %q", result.Conversation.Title, "hello")
	}
	if retriever.callCount != 0 {
		t.Error("first turn must not retrieve")
	}
	if len(st.messages) != 2 {
		t.Fatalf("persisted %d messages, want 2", len(st.messages))
	}
	if st.messages[0].Role != store.RoleUser || st.messages[1].Role != store.RoleAssistant {
		t.Error("messages persisted in wrong roles/order")
	}
	if st.messages[1].Tokens != 42 {
		t.Errorf("assistant message tokens = %d, want 42", st.messages[1].Tokens)
	}
	if len(st.tokenAdds) != 1 || st.tokenAdds[0] != 42 {
		t.Errorf("token adds = %v, want [42]", st.tokenAdds)
	}
}

func TestStartConversationTitleTruncation(t *testing.T) {
	st := newMockStore()
	generator := &mockGenerator{reply: &llm.Reply{Text: "ok"}}
	e := newEngine(t, st, &mockRetriever{}, generator)

	long := strings.Repeat("x", 60)
	result, err := e.StartConversation(context.Background(), "u1", store.ModeOpen, long)
	if err != nil {
		t.Fatal(err)
	}

	want := strings.Repeat("x", 50) + "..."
	if result.Conversation.Title != want {
		t.Errorf("title = %q, want %q", result.Conversation.Title, want)
	}

	// Exactly at the limit stays untouched.
	st2 := newMockStore()
	e2 := newEngine(t, st2, &mockRetriever{}, generator)
	exact := strings.Repeat("y", 50)
	result, err = e2.StartConversation(context.Background(), "u1", store.ModeOpen, exact)
	if err != nil {
		t.Fatal(err)
	}
	if result.Conversation.Title != exact {
		t.Errorf("title = %q, want %q", result.Conversation.Title, exact)
	}
}

func TestStartConversationOmittedModeIsOpen(t *testing.T) {
	st := newMockStore()
	retriever := &mockRetriever{}
	e := newEngine(t, st, retriever, &mockGenerator{reply: &llm.Reply{Text: "hi"}})

	result, err := e.StartConversation(context.Background(), "u1", "", "hello")
	if err != nil {
		t.Fatalf("StartConversation() unexpected error: %v", err)
	}
	if result.Conversation.Mode != store.ModeOpen {
		t.Errorf("mode = %q, want %q", result.Conversation.Mode, store.ModeOpen)
	}
	if retriever.callCount != 0 {
		t.Error("open conversation must not retrieve")
	}
}

func TestStartConversationRejections(t *testing.T) {
	e := newEngine(t, newMockStore(), &mockRetriever{}, &mockGenerator{reply: &llm.Reply{}})

	if _, err := e.StartConversation(context.Background(), "u1", "turbo", "hi"); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("invalid mode error = %v, want %v", err, ErrInvalidMode)
	}
	if _, err := e.StartConversation(context.Background(), "ghost", store.ModeOpen, "hi"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("unknown user error = %v, want %v", err, store.ErrNotFound)
	}
}

func TestSendMessageOpenMode(t *testing.T) {
	st := newMockStore()
	st.conversations["c1"] = &store.Conversation{ID: "c1", UserID: "u1", Mode: store.ModeOpen}
	retriever := &mockRetriever{chunks: []string{"should not appear"}}
	generator := &mockGenerator{reply: &llm.Reply{Text: "answer", Tokens: 7}}
	e := newEngine(t, st, retriever, generator)

	result, err := e.SendMessage(context.Background(), "c1", "question")
	if err != nil {
		t.Fatal(err)
	}

	if retriever.callCount != 0 {
		t.Error("open mode must not retrieve")
	}
	if len(generator.lastMessages) != 1 || generator.lastMessages[0].Role != llm.RoleUser {
		t.Errorf("model saw %v, want a single user message", generator.lastMessages)
	}
	if result.Tokens != 7 {
		t.Errorf("tokens = %d, want 7", result.Tokens)
	}
}

func TestSendMessageRAGMode(t *testing.T) {
	st := newMockStore()
	st.conversations["c1"] = &store.Conversation{ID: "c1", UserID: "u1", Mode: store.ModeRAG}
	st.attachedDocs["c1"] = []string{"d1", "d2"}
	retriever := &mockRetriever{chunks: []string{"alpha", "beta"}}
	generator := &mockGenerator{reply: &llm.Reply{Text: "grounded", Tokens: 9}}
	e := newEngine(t, st, retriever, generator)

	if _, err := e.SendMessage(context.Background(), "c1", "what is alpha?"); err != nil {
		t.Fatal(err)
	}

	if retriever.lastQuery != "what is alpha?" {
		t.Errorf("retrieval query = %q", retriever.lastQuery)
	}
	if len(retriever.lastDocs) != 2 {
		t.Errorf("retrieval docs = %v, want [d1 d2]", retriever.lastDocs)
	}

	if len(generator.lastMessages) != 2 {
		t.Fatalf("model saw %d messages, want 2", len(generator.lastMessages))
	}
	sys := generator.lastMessages[0]
	if sys.Role != llm.RoleSystem {
		t.Errorf("first message role = %q, want system", sys.Role)
	}
	want := "Answer based on this context:\n\nCHUNK 1:\nalpha\n\nCHUNK 2:\nbeta"
	if sys.Content != want {
		t.Errorf("system message = %q, want %q", sys.Content, want)
	}
	if generator.lastMessages[1].Role != llm.RoleUser || generator.lastMessages[1].Content != "what is alpha?" {
		t.Error("user message missing or mangled")
	}
}

func TestSendMessageRAGDegradesWithoutChunks(t *testing.T) {
	tests := []struct {
		name string
		docs []string
	}{
		{"no attached documents", nil},
		{"attached but nothing retrieved", []string{"d1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newMockStore()
			st.conversations["c1"] = &store.Conversation{ID: "c1", UserID: "u1", Mode: store.ModeRAG}
			st.attachedDocs["c1"] = tt.docs
			generator := &mockGenerator{reply: &llm.Reply{Text: "plain"}}
			e := newEngine(t, st, &mockRetriever{}, generator)

			if _, err := e.SendMessage(context.Background(), "c1", "hi"); err != nil {
				t.Fatal(err)
			}
			if len(generator.lastMessages) != 1 {
				t.Errorf("model saw %d messages, want 1 (no system message)", len(generator.lastMessages))
			}
		})
	}
}

func TestSendMessageModelFailureKeepsUserMessage(t *testing.T) {
	st := newMockStore()
	st.conversations["c1"] = &store.Conversation{ID: "c1", UserID: "u1", Mode: store.ModeOpen}
	modelErr := errors.New("model down")
	e := newEngine(t, st, &mockRetriever{}, &mockGenerator{err: modelErr})

	_, err := e.SendMessage(context.Background(), "c1", "hello?")
	if !errors.Is(err, modelErr) {
		t.Fatalf("error = %v, want %v", err, modelErr)
	}

	if len(st.messages) != 1 || st.messages[0].Role != store.RoleUser {
		t.Errorf("persisted messages = %v, want the user message only", st.messages)
	}
	if len(st.tokenAdds) != 0 {
		t.Errorf("token total changed on failure: %v", st.tokenAdds)
	}
}

func TestSendMessageRetrievalFailureKeepsUserMessage(t *testing.T) {
	st := newMockStore()
	st.conversations["c1"] = &store.Conversation{ID: "c1", UserID: "u1", Mode: store.ModeRAG}
	st.attachedDocs["c1"] = []string{"d1"}
	retrieveErr := errors.New("embedder down")
	generator := &mockGenerator{reply: &llm.Reply{Text: "never"}}
	e := newEngine(t, st, &mockRetriever{err: retrieveErr}, generator)

	_, err := e.SendMessage(context.Background(), "c1", "hi")
	if !errors.Is(err, retrieveErr) {
		t.Fatalf("error = %v, want %v", err, retrieveErr)
	}
	if len(st.messages) != 1 || st.messages[0].Role != store.RoleUser {
		t.Errorf("persisted messages = %v, want the user message only", st.messages)
	}
	if generator.lastMessages != nil {
		t.Error("model called despite retrieval failure")
	}
}

func TestSendMessageUnknownConversation(t *testing.T) {
	e := newEngine(t, newMockStore(), &mockRetriever{}, &mockGenerator{reply: &llm.Reply{}})

	if _, err := e.SendMessage(context.Background(), "nope", "hi"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("error = %v, want %v", err, store.ErrNotFound)
	}
}
