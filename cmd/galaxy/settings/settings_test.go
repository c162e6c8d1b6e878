package settingscmder

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/819SauCe/Galaxy/pkg/settings"
)

var _ = Describe("Settings Command", func() {
	var (
		ctx    context.Context
		tmpDir string
		dbPath string
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		tmpDir, err = os.MkdirTemp("", "galaxy-settings-test-*")
		Expect(err).NotTo(HaveOccurred())
		dbPath = filepath.Join(tmpDir, "galaxy.db")

		// keep the test away from the real ~/.galaxy/config.toml
		GinkgoT().Setenv("HOME", tmpDir)
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	run := func(args ...string) (string, error) {
		cmd := NewSettingsCmd()
		cmd.PersistentFlags().String("config", "", "")
		cmd.PersistentFlags().Bool("debug", false, "")
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs(append(args, "--sqlite", dbPath))
		err := cmd.ExecuteContext(ctx)
		return out.String(), err
	}

	It("stores and prints a setting", func() {
		out, err := run("set", "theme", `{"name":"dark"}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Saved theme"))

		out, err = run("get", "theme")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(MatchJSON(`{"name":"dark"}`))

		storer, err := settings.NewSQLiteStorer(dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer storer.Close()
		keys, err := storer.Keys(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(keys).To(Equal([]string{"theme"}))
	})

	It("prints the general defaults before anything is saved", func() {
		out, err := run("get", "general")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring(`"primaryAI": "openai"`))
	})

	It("rejects values that are not JSON", func() {
		_, err := run("set", "theme", "{dark")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("not valid JSON"))
	})

	It("rejects general settings with the wrong shape", func() {
		_, err := run("set", "general", `{"apiKeys": "sk-oops"}`)
		Expect(err).To(HaveOccurred())
	})

	It("lists keys", func() {
		out, err := run("list")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("No settings stored."))

		_, err = run("set", "b", "1")
		Expect(err).NotTo(HaveOccurred())
		_, err = run("set", "a", "2")
		Expect(err).NotTo(HaveOccurred())

		out, err = run("list")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("a\nb\n"))
	})

	It("fails for a missing key", func() {
		_, err := run("get", "missing")
		Expect(err).To(BeAssignableToTypeOf(settings.ErrNotFound{}))
	})
})
