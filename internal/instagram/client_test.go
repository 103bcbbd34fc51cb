package instagram

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"instagram-agent/internal/model"
)

type recordedRequest struct {
	method string
	path   string
	query  map[string]string
	body   map[string]interface{}
}

func newGraphStub(t *testing.T, status int, responseBody string) (*httptest.Server, *recordedRequest) {
	t.Helper()
	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = map[string]string{}
		for key := range r.URL.Query() {
			rec.query[key] = r.URL.Query().Get(key)
		}
		data, _ := io.ReadAll(r.Body)
		if len(data) > 0 {
			_ = json.Unmarshal(data, &rec.body)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(responseBody))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func testTenant() *model.Tenant {
	return &model.Tenant{
		AccessToken:        "secret-token",
		InstagramAccountID: "178414000000000",
	}
}

func TestSendMessage(t *testing.T) {
	srv, rec := newGraphStub(t, http.StatusOK, `{"recipient_id":"user-1","message_id":"mid-1"}`)
	c := NewClient(srv.URL, srv.Client(), testTenant(), zap.NewNop())

	result, err := c.SendMessage("user-1", "Olá!")
	require.NoError(t, err)
	assert.Equal(t, "mid-1", result["message_id"])

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/178414000000000/messages", rec.path)
	assert.Equal(t, "secret-token", rec.query["access_token"])

	recipient := rec.body["recipient"].(map[string]interface{})
	message := rec.body["message"].(map[string]interface{})
	assert.Equal(t, "user-1", recipient["id"])
	assert.Equal(t, "Olá!", message["text"])
}

func TestSendMedia(t *testing.T) {
	srv, rec := newGraphStub(t, http.StatusOK, `{"message_id":"mid-2"}`)
	c := NewClient(srv.URL, srv.Client(), testTenant(), zap.NewNop())

	_, err := c.SendMedia("user-1", "https://cdn.example.com/a.png", "image")
	require.NoError(t, err)

	message := rec.body["message"].(map[string]interface{})
	attachment := message["attachment"].(map[string]interface{})
	payload := attachment["payload"].(map[string]interface{})
	assert.Equal(t, "image", attachment["type"])
	assert.Equal(t, "https://cdn.example.com/a.png", payload["url"])
}

func TestSendFileAndAudio(t *testing.T) {
	srv, rec := newGraphStub(t, http.StatusOK, `{"message_id":"mid-3"}`)
	c := NewClient(srv.URL, srv.Client(), testTenant(), zap.NewNop())

	_, err := c.SendFile("user-1", "https://cdn.example.com/doc.pdf")
	require.NoError(t, err)
	attachment := rec.body["message"].(map[string]interface{})["attachment"].(map[string]interface{})
	assert.Equal(t, "file", attachment["type"])

	_, err = c.SendAudio("user-1", "https://cdn.example.com/voice.mp3")
	require.NoError(t, err)
	attachment = rec.body["message"].(map[string]interface{})["attachment"].(map[string]interface{})
	assert.Equal(t, "audio", attachment["type"])
}

func TestReplyToComment(t *testing.T) {
	srv, rec := newGraphStub(t, http.StatusOK, `{"id":"reply-1"}`)
	c := NewClient(srv.URL, srv.Client(), testTenant(), zap.NewNop())

	result, err := c.ReplyToComment("comment-9", "@maria Olá!")
	require.NoError(t, err)
	assert.Equal(t, "reply-1", result["id"])

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/comment-9/replies", rec.path)
	assert.Equal(t, "@maria Olá!", rec.query["message"])
	assert.Equal(t, "secret-token", rec.query["access_token"])
}

func TestGetCommentDetails(t *testing.T) {
	srv, rec := newGraphStub(t, http.StatusOK, `{"text":"qual o preço?","username":"maria"}`)
	c := NewClient(srv.URL, srv.Client(), testTenant(), zap.NewNop())

	result, err := c.GetCommentDetails("comment-9")
	require.NoError(t, err)
	assert.Equal(t, "maria", result["username"])

	assert.Equal(t, http.MethodGet, rec.method)
	assert.Equal(t, "/comment-9", rec.path)
	assert.Equal(t, "text,username,timestamp,media", rec.query["fields"])
}

func TestErrorStatusReturnsNilResult(t *testing.T) {
	srv, _ := newGraphStub(t, http.StatusBadRequest, `{"error":{"message":"Invalid OAuth access token"}}`)
	c := NewClient(srv.URL, srv.Client(), testTenant(), zap.NewNop())

	result, err := c.SendMessage("user-1", "Olá!")
	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "Invalid OAuth access token")
}

func TestFactoryBindsTenantCredentials(t *testing.T) {
	srv, rec := newGraphStub(t, http.StatusOK, `{"message_id":"mid-1"}`)
	factory := NewFactory(srv.URL, srv.Client(), zap.NewNop())

	api := factory(&model.Tenant{AccessToken: "tenant-a-token", InstagramAccountID: "acct-a"})
	_, err := api.SendMessage("user-1", "oi")
	require.NoError(t, err)
	assert.Equal(t, "tenant-a-token", rec.query["access_token"])
	assert.Equal(t, "/acct-a/messages", rec.path)
}
