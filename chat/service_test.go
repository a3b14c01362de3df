package chat

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edubot/agent"
	"edubot/generation"
	"edubot/llm"
	"edubot/store"
)

type stubClient struct {
	generateFunc func(ctx context.Context, req llm.Request) (*llm.Response, error)
}

func (s *stubClient) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return s.generateFunc(ctx, req)
}

func (s *stubClient) GetModel() string                     { return "stub" }
func (s *stubClient) GetProvider() string                  { return "stub" }
func (s *stubClient) IsAvailable(ctx context.Context) bool { return true }

func replyWith(content string) *stubClient {
	return &stubClient{
		generateFunc: func(ctx context.Context, req llm.Request) (*llm.Response, error) {
			return &llm.Response{Content: content}, nil
		},
	}
}

func newTestService(t *testing.T, clients map[llm.Purpose]llm.Client) (*Service, *store.Store) {
	t.Helper()

	st, err := store.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	manager := llm.NewManager()
	for purpose, client := range clients {
		manager.RegisterClient(purpose, llm.Config{Model: "stub"}, client)
	}

	pipeline := generation.NewPipeline(manager, st, nil)
	orch := agent.NewOrchestrator(manager, st, pipeline, nil)
	return NewService(st, orch), st
}

func chatClients(reply string) map[llm.Purpose]llm.Client {
	return map[llm.Purpose]llm.Client{
		llm.PurposeClassify: replyWith(`{"intent": "chat", "entities": {}}`),
		llm.PurposeChat:     replyWith(reply),
	}
}

func TestProcessMessageNewSession(t *testing.T) {
	svc, st := newTestService(t, chatClients("Hello, teacher!"))

	resp, err := svc.ProcessMessage(context.Background(), MessageRequest{
		Message: "Hi there",
		UserID:  "u1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello, teacher!", resp.Reply)
	require.NotEmpty(t, resp.SessionID)
	require.NotEmpty(t, resp.MessageID)

	// Both sides of the exchange are persisted in order
	msgs, err := st.History(resp.SessionID, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, store.SenderUser, msgs[0].Sender)
	assert.Equal(t, "Hi there", msgs[0].Content)
	assert.Equal(t, store.SenderAssistant, msgs[1].Sender)
}

func TestProcessMessageSetsTitleFromFirstMessage(t *testing.T) {
	svc, st := newTestService(t, chatClients("ok"))

	first := strings.Repeat("How do I explain photosynthesis to ten year olds? ", 3)
	resp, err := svc.ProcessMessage(context.Background(), MessageRequest{Message: first, UserID: "u1"})
	require.NoError(t, err)

	sess, err := st.GetSession(resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, first[:50]+"...", sess.Title)

	// A second message leaves the title alone
	_, err = svc.ProcessMessage(context.Background(), MessageRequest{
		Message: "And what about respiration?", SessionID: resp.SessionID, UserID: "u1",
	})
	require.NoError(t, err)

	sess, err = st.GetSession(resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, first[:50]+"...", sess.Title)
}

func TestProcessMessageShortTitleNotTruncated(t *testing.T) {
	svc, st := newTestService(t, chatClients("ok"))

	resp, err := svc.ProcessMessage(context.Background(), MessageRequest{Message: "Hi", UserID: "u1"})
	require.NoError(t, err)

	sess, err := st.GetSession(resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "Hi", sess.Title)
}

func TestProcessMessageUnknownSession(t *testing.T) {
	svc, _ := newTestService(t, chatClients("ok"))

	_, err := svc.ProcessMessage(context.Background(), MessageRequest{
		Message: "hi", SessionID: "missing", UserID: "u1",
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestProcessMessageContinuesSession(t *testing.T) {
	svc, _ := newTestService(t, chatClients("ok"))

	first, err := svc.ProcessMessage(context.Background(), MessageRequest{Message: "one", UserID: "u1"})
	require.NoError(t, err)

	second, err := svc.ProcessMessage(context.Background(), MessageRequest{
		Message: "two", SessionID: first.SessionID, UserID: "u1",
	})
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)

	msgs, err := svc.History(first.SessionID, 0)
	require.NoError(t, err)
	assert.Len(t, msgs, 4)
}

func TestProcessMessageLectureReplyTyped(t *testing.T) {
	clients := map[llm.Purpose]llm.Client{
		llm.PurposeClassify: replyWith(`{"intent": "create_lecture", "entities": {}}`),
		llm.PurposeGenerate: replyWith(`{"title": "Gravity", "subject": "Physics", "outline": []}`),
	}
	svc, st := newTestService(t, clients)

	resp, err := svc.ProcessMessage(context.Background(), MessageRequest{
		Message: "make a lecture about gravity", UserID: "u1",
	})
	require.NoError(t, err)
	assert.Equal(t, "lecture", resp.Metadata["type"])

	msgs, err := st.History(resp.SessionID, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "lecture", msgs[1].Type)
	assert.Equal(t, true, msgs[1].Metadata["editable"])
}

func TestSessionsAndDelete(t *testing.T) {
	svc, _ := newTestService(t, chatClients("ok"))

	resp, err := svc.ProcessMessage(context.Background(), MessageRequest{Message: "hi", UserID: "u1"})
	require.NoError(t, err)

	sessions, err := svc.Sessions("u1", 0)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 2, sessions[0].MessageCount)

	require.NoError(t, svc.Delete(resp.SessionID))

	sessions, err = svc.Sessions("u1", 0)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
