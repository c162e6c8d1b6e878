package chatcmder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/819SauCe/Galaxy/pkg/llm"
	"github.com/819SauCe/Galaxy/pkg/provider"
	"github.com/819SauCe/Galaxy/pkg/provider/openai"
	"github.com/819SauCe/Galaxy/pkg/settings"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte{
	0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n',
	0x00, 0x00, 0x00, 0x0d, 'I', 'H', 'D', 'R',
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x02, 0x00, 0x00, 0x00,
}

type fakeSender struct {
	requests []llm.ChatRequest
	reply    string
	err      error
}

func (f *fakeSender) Send(_ context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	f.requests = append(f.requests, *req)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.ChatResponse{Text: f.reply}, nil
}

var _ = Describe("Images", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "galaxy-chat-images-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	It("inlines a local image as a data URL", func() {
		path := filepath.Join(tmpDir, "cat.png")
		Expect(os.WriteFile(path, pngHeader, 0o600)).To(Succeed())

		img, err := loadImage(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(img.Name).To(Equal("cat.png"))
		Expect(img.Size).To(Equal(uint64(len(pngHeader))))
		Expect(img.URL).To(HavePrefix("data:image/png;base64,"))
		Expect(img.ID).NotTo(BeEmpty())
	})

	It("passes URLs through", func() {
		for _, ref := range []string{"https://x/cat.png", "http://x/cat.png", "data:image/png;base64,AAAA"} {
			img, err := loadImage(ref)
			Expect(err).NotTo(HaveOccurred())
			Expect(img.URL).To(Equal(ref))
		}
	})

	It("rejects files that are not images", func() {
		path := filepath.Join(tmpDir, "notes.txt")
		Expect(os.WriteFile(path, []byte("just some text"), 0o600)).To(Succeed())

		_, err := loadImage(path)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("is not an image"))
	})

	It("fails on a missing file", func() {
		_, err := loadImages([]string{"https://x/a.png", filepath.Join(tmpDir, "missing.png")})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Remote sender", func() {
	var (
		server   *httptest.Server
		status   int
		respBody string
		received llm.ChatRequest
	)

	BeforeEach(func() {
		status = http.StatusOK
		respBody = `{"text":"pong"}`
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.URL.Path).To(Equal("/api/chat"))
			Expect(r.Header.Get("Content-Type")).To(Equal("application/json"))
			body, err := io.ReadAll(r.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(json.Unmarshal(body, &received)).To(Succeed())
			w.WriteHeader(status)
			w.Write([]byte(respBody))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	It("posts the request and decodes the reply", func() {
		s := newRemoteSender(server.URL + "/")
		resp, err := s.Send(context.Background(), &llm.ChatRequest{Provider: "openai", Message: "ping"})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Text).To(Equal("pong"))
		Expect(received.Message).To(Equal("ping"))
		Expect(received.Provider).To(Equal("openai"))
	})

	It("surfaces the relay's error message", func() {
		status = http.StatusBadGateway
		respBody = `{"error":"OpenAI error 401 Unauthorized: bad key"}`

		_, err := newRemoteSender(server.URL).Send(context.Background(), &llm.ChatRequest{Message: "ping"})
		Expect(err).To(MatchError("OpenAI error 401 Unauthorized: bad key"))
	})

	It("reports unexpected error bodies with the status", func() {
		status = http.StatusInternalServerError
		respBody = "boom"

		_, err := newRemoteSender(server.URL).Send(context.Background(), &llm.ChatRequest{Message: "ping"})
		Expect(err).To(MatchError("server returned 500: boom"))
	})
})

var _ = Describe("Local sender", func() {
	var (
		ctx      context.Context
		server   *httptest.Server
		authz    []string
		storer   *settings.MemoryStorer
		registry *provider.Registry
	)

	BeforeEach(func() {
		ctx = context.Background()
		authz = nil
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz = append(authz, r.Header.Get("Authorization"))
			w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hi"}}]}`))
		}))
		storer = settings.NewMemoryStorer()
		registry = provider.NewRegistry(openai.New(openai.Config{BaseURL: server.URL}, nil))
	})

	AfterEach(func() {
		server.Close()
	})

	It("stops before calling the provider when no API key is known", func() {
		s := &localSender{registry: registry, storer: storer, defaultModel: "gpt-4o"}

		_, err := s.Send(ctx, &llm.ChatRequest{Message: "Hi"})
		Expect(err).To(MatchError(settings.ErrMissingAPIKey))
		Expect(authz).To(BeEmpty())
	})

	It("falls back to the environment key", func() {
		s := &localSender{registry: registry, storer: storer, defaultModel: "gpt-4o", envAPIKey: "sk-env"}

		resp, err := s.Send(ctx, &llm.ChatRequest{Message: "Hi"})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Text).To(Equal("hi"))
		Expect(authz).To(Equal([]string{"Bearer sk-env"}))
	})

	It("reports an unknown provider before a missing key", func() {
		s := &localSender{registry: registry, storer: storer, defaultModel: "gpt-4o"}

		_, err := s.Send(ctx, &llm.ChatRequest{Provider: "copilot", Message: "Hi"})
		Expect(err).To(MatchError(provider.ErrUnsupportedProvider))
	})
})

var _ = Describe("Chat Command", func() {
	var (
		ctx    context.Context
		tmpDir string
		server *httptest.Server
		last   llm.ChatRequest
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		tmpDir, err = os.MkdirTemp("", "galaxy-chat-test-*")
		Expect(err).NotTo(HaveOccurred())
		GinkgoT().Setenv("HOME", tmpDir)

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(json.NewDecoder(r.Body).Decode(&last)).To(Succeed())
			w.Write([]byte(`{"text":"**hello** back"}`))
		}))
	})

	AfterEach(func() {
		server.Close()
		os.RemoveAll(tmpDir)
	})

	run := func(stdin string, args ...string) (string, error) {
		cmd := NewChatCmd()
		cmd.PersistentFlags().String("config", "", "")
		cmd.PersistentFlags().Bool("debug", false, "")
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetIn(strings.NewReader(stdin))
		cmd.SetArgs(append(args, "--server", server.URL))
		err := cmd.ExecuteContext(ctx)
		return out.String(), err
	}

	It("sends --message once and prints the raw reply when not on a terminal", func() {
		out, err := run("", "-m", "hello", "-p", "openai", "--model", "gpt-4o", "--system", "Be brief")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("**hello** back\n"))
		Expect(last.Message).To(Equal("hello"))
		Expect(last.Provider).To(Equal("openai"))
		Expect(last.Model).To(Equal("gpt-4o"))
		Expect(last.SystemPrompt).To(Equal("Be brief"))
	})

	It("sends piped stdin", func() {
		out, err := run("  from a pipe\n")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("**hello** back\n"))
		Expect(last.Message).To(Equal("from a pipe"))
	})

	It("refuses empty stdin", func() {
		_, err := run("")
		Expect(err).To(MatchError(ContainSubstring("nothing to send")))
	})

	It("attaches images to the message", func() {
		_, err := run("", "-m", "look", "-i", "https://x/cat.png")
		Expect(err).NotTo(HaveOccurred())
		Expect(last.Attachments.Images).To(HaveLen(1))
		Expect(last.Attachments.Images[0].URL).To(Equal("https://x/cat.png"))
	})
})

var _ = Describe("Interactive chat model", func() {
	var (
		s *fakeSender
		m chatModel
	)

	BeforeEach(func() {
		s = &fakeSender{reply: "hi there"}
		images := []llm.ImageAttachment{{ID: "1", Name: "cat.png", URL: "https://x/cat.png"}}
		m = newChatModel(context.Background(), s, llm.ChatRequest{Provider: "openai", SystemPrompt: "S"}, images)
	})

	submit := func(text string) tea.Cmd {
		m.input.SetValue(text)
		next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		m = next.(chatModel)
		return cmd
	}

	deliver := func(msg tea.Msg) {
		next, _ := m.Update(msg)
		m = next.(chatModel)
	}

	It("sends the whole conversation ending with the current turn", func() {
		reply := m.send("first")
		Expect(m.pending).To(BeEmpty())
		Expect(m.waiting).To(BeTrue())
		deliver(reply())

		Expect(s.requests).To(HaveLen(1))
		first := s.requests[0]
		Expect(first.Message).To(Equal("first"))
		Expect(first.SystemPrompt).To(Equal("S"))
		Expect(first.History).To(Equal([]llm.HistoryMessage{{Role: llm.RoleUser, Content: "first"}}))
		Expect(first.Attachments.Images).To(HaveLen(1))

		deliver(m.send("second")())

		second := s.requests[1]
		Expect(second.History).To(Equal([]llm.HistoryMessage{
			{Role: llm.RoleUser, Content: "first"},
			{Role: llm.RoleAssistant, Content: "hi there"},
			{Role: llm.RoleUser, Content: "second"},
		}))
		Expect(second.Attachments.Images).To(BeEmpty())
		Expect(m.history).To(HaveLen(4))
		Expect(m.waiting).To(BeFalse())
	})

	It("drops a failed turn from the history", func() {
		s.err = errors.New("OpenAI error 500 Internal Server Error: down")
		deliver(m.send("first")())

		Expect(m.history).To(BeEmpty())
		Expect(m.err).To(MatchError(ContainSubstring("down")))
		Expect(m.view.View()).To(ContainSubstring("down"))
	})

	It("sends on enter and ignores blank input", func() {
		Expect(submit("   ")).To(BeNil())
		Expect(m.history).To(BeEmpty())

		Expect(submit("hello")).NotTo(BeNil())
		Expect(m.history).To(HaveLen(1))
		Expect(m.input.Value()).To(BeEmpty())
	})

	It("handles slash commands without sending", func() {
		submit("/image " + filepath.Join(os.TempDir(), "galaxy-missing-image.png"))
		Expect(m.err).To(HaveOccurred())
		Expect(m.pending).To(HaveLen(1))

		submit("/image https://x/dog.png")
		Expect(m.err).NotTo(HaveOccurred())
		Expect(m.pending).To(HaveLen(2))

		submit("/clear")
		Expect(m.pending).To(BeEmpty())
		Expect(s.requests).To(BeEmpty())
	})
})
