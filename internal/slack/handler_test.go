package slack

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/keshon/slashbot/internal/help"
	"github.com/keshon/slashbot/pkg/args"
	"github.com/keshon/slashbot/pkg/cmd"
	"github.com/stretchr/testify/require"
)

const testToken = "xoxb-test"

func newTestHandler(t *testing.T, cfg Config, extra func(*cmd.Registry)) *Handler {
	t.Helper()
	reg := cmd.NewRegistry()
	reg.MustRegister("echo", "Echo a greeting", args.Schema{
		args.Required{Name: "title"},
		args.Optional{Name: "lastName", Default: "User"},
		args.Variadic{Name: "words"},
	}, func(_ context.Context, inv *cmd.Invocation, done cmd.Done) {
		a := inv.Args
		done(cmd.Ephemeral("Hello "+a.String("title")+" "+a.String("lastName")+", "+a.Joined("words")), nil)
	})
	reg.MustRegister("fail", "Always fails", nil, func(_ context.Context, _ *cmd.Invocation, done cmd.Done) {
		done(nil, errors.New("boom"))
	})
	require.NoError(t, reg.RegisterAction("testButtonAction", func(_ context.Context, inv *cmd.Invocation, done cmd.Done) {
		done(cmd.InChannel("You pressed the "+inv.Command+" button"), nil)
	}))
	if extra != nil {
		extra(reg)
	}

	if cfg.Token == "" {
		cfg.Token = testToken
	}
	if cfg.ResponseTimeout == 0 {
		cfg.ResponseTimeout = time.Second
	}
	return NewHandler(cfg, cmd.NewDispatcher(reg, help.Handler(reg)), NewDelivery(nil))
}

func postForm(t *testing.T, h http.Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) Message {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var msg Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	return msg
}

func command(text string) url.Values {
	return url.Values{
		"token":      {testToken},
		"command":    {"/bot"},
		"text":       {text},
		"user_id":    {"U1"},
		"user_name":  {"bob"},
		"channel_id": {"C1"},
	}
}

func TestRejectsInvalidToken(t *testing.T) {
	h := newTestHandler(t, Config{}, nil).Routes()

	form := command("echo Sir")
	form.Set("token", "wrong")
	rec := postForm(t, h, form)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid Slack token", strings.TrimSpace(rec.Body.String()))
}

func TestRejectsWhenNoTokenConfigured(t *testing.T) {
	h := newTestHandler(t, Config{}, nil)
	h.cfg.Token = ""

	form := command("echo Sir")
	form.Set("token", "")
	require.Equal(t, http.StatusUnauthorized, postForm(t, h, form).Code)
}

func TestEchoCommand(t *testing.T) {
	h := newTestHandler(t, Config{}, nil).Routes()

	msg := decodeMessage(t, postForm(t, h, command("echo Sir User how are you today?")))
	require.Equal(t, "ephemeral", msg.ResponseType)
	require.Equal(t, "Hello Sir User, how are you today?", msg.Text)
}

func TestJSONBody(t *testing.T) {
	h := newTestHandler(t, Config{}, nil).Routes()

	body := `{"token":"` + testToken + `","text":"echo Dr Who is here","user_id":"U1","channel_id":"C1"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, "Hello Dr Who, is here", decodeMessage(t, rec).Text)
}

func TestHelpFallback(t *testing.T) {
	h := newTestHandler(t, Config{}, nil).Routes()

	for _, text := range []string{"", "unknown", "echo"} {
		msg := decodeMessage(t, postForm(t, h, command(text)))
		require.Equal(t, "ephemeral", msg.ResponseType)
		require.Equal(t, help.Title, msg.Text)
		require.Len(t, msg.Attachments, 1)
		require.Contains(t, msg.Attachments[0].Text, "echo title lastName:User words...: Echo a greeting")
	}
}

func TestHandlerErrorIsReported(t *testing.T) {
	h := newTestHandler(t, Config{}, nil).Routes()

	msg := decodeMessage(t, postForm(t, h, command("fail")))
	require.Equal(t, "ephemeral", msg.ResponseType)
	require.Equal(t, FailureText, msg.Text)
}

func TestActionCallback(t *testing.T) {
	h := newTestHandler(t, Config{}, nil).Routes()

	payload := `{"type":"interactive_message","token":"` + testToken + `",` +
		`"user":{"id":"U1","name":"bob"},"channel":{"id":"C1"},` +
		`"actions":[{"name":"testButtonAction","value":"yes","type":"button"}]}`
	msg := decodeMessage(t, postForm(t, h, url.Values{"payload": {payload}}))

	require.Equal(t, "in_channel", msg.ResponseType)
	require.Equal(t, "You pressed the testButtonAction button", msg.Text)
}

func TestUnknownActionFallsBackToHelp(t *testing.T) {
	h := newTestHandler(t, Config{}, nil).Routes()

	payload := `{"token":"` + testToken + `","actions":[{"action_id":"missing"}]}`
	msg := decodeMessage(t, postForm(t, h, url.Values{"payload": {payload}}))
	require.Equal(t, help.Title, msg.Text)
}

func TestMalformedRequests(t *testing.T) {
	h := newTestHandler(t, Config{}, nil).Routes()

	rec := postForm(t, h, url.Values{"payload": {"{not json"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postForm(t, h, url.Values{"payload": {`{"token":"` + testToken + `","actions":[]}`}})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPing(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler(t, Config{PingEnabled: true}, nil).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Ok", rec.Body.String())

	rec = httptest.NewRecorder()
	newTestHandler(t, Config{}, nil).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLateReplyGoesToResponseURL(t *testing.T) {
	var (
		mu       sync.Mutex
		received []Message
	)
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var msg Message
		_ = json.Unmarshal(body, &msg)
		mu.Lock()
		received = append(received, msg)
		mu.Unlock()
	}))
	defer hook.Close()

	release := make(chan struct{})
	h := newTestHandler(t, Config{ResponseTimeout: 20 * time.Millisecond}, func(reg *cmd.Registry) {
		reg.MustRegister("slow", "", nil, func(_ context.Context, _ *cmd.Invocation, done cmd.Done) {
			go func() {
				<-release
				done(cmd.InChannel("finally"), nil)
				done(cmd.InChannel("twice"), nil)
			}()
		})
	})

	form := command("slow")
	form.Set("response_url", hook.URL)
	rec := postForm(t, h.Routes(), form)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Body.String())

	close(release)
	h.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	require.Equal(t, Message{ResponseType: "in_channel", Text: "finally"}, received[0])
}

func TestNewMessage(t *testing.T) {
	require.Nil(t, NewMessage(nil, nil))

	msg := NewMessage(cmd.Ephemeral("x").WithAttachment("y"), nil)
	require.Equal(t, &Message{ResponseType: "ephemeral", Text: "x", Attachments: []Attachment{{Text: "y"}}}, msg)

	require.Equal(t, FailureText, NewMessage(cmd.InChannel("ignored"), errors.New("boom")).Text)
}
