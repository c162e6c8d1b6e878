package settings_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/819SauCe/Galaxy/pkg/settings"
)

var _ = Describe("Save and Load", func() {
	var (
		ctx    context.Context
		storer *settings.MemoryStorer
	)

	BeforeEach(func() {
		ctx = context.Background()
		storer = settings.NewMemoryStorer()
	})

	It("round-trips typed values", func() {
		Expect(settings.Save(ctx, storer, "count", 3)).To(Succeed())

		n, err := settings.Load(ctx, storer, "count", 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(3))
	})

	It("returns the fallback for a missing key", func() {
		v, err := settings.Load(ctx, storer, "missing", "fallback")
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal("fallback"))
	})

	It("returns the fallback for a value that does not decode", func() {
		Expect(storer.Put(ctx, "broken", []byte(`{not json`))).To(Succeed())

		v, err := settings.Load(ctx, storer, "broken", 7)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(7))
	})

	Describe("LoadGeneral", func() {
		It("returns the defaults before anything is saved", func() {
			general, err := settings.LoadGeneral(ctx, storer)
			Expect(err).NotTo(HaveOccurred())
			Expect(general.PrimaryAI).To(Equal("openai"))
			Expect(general.AppLanguage).To(Equal("pt-BR"))
			Expect(general.SelectedModels).To(HaveKeyWithValue("openai", "gpt-4"))
			Expect(general.SystemPrompt).To(BeEmpty())
		})

		It("returns what was saved", func() {
			saved := settings.DefaultGeneralSettings()
			saved.APIKeys["openai"] = "sk-saved"
			saved.SystemPrompt = "Be brief"
			Expect(settings.Save(ctx, storer, settings.GeneralKey, saved)).To(Succeed())

			general, err := settings.LoadGeneral(ctx, storer)
			Expect(err).NotTo(HaveOccurred())
			Expect(general).To(Equal(saved))
		})
	})
})
