package settings_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/819SauCe/Galaxy/pkg/settings"
)

// storerBehaviour runs the Storer contract against the storer returned by newStorer.
func storerBehaviour(newStorer func() settings.Storer) {
	var (
		storer settings.Storer
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		storer = newStorer()
	})

	AfterEach(func() {
		if storer != nil {
			storer.Close()
		}
	})

	Describe("Put and Get", func() {
		It("stores and retrieves a value", func() {
			Expect(storer.Put(ctx, "theme", []byte(`"dark"`))).To(Succeed())

			value, err := storer.Get(ctx, "theme")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(value)).To(Equal(`"dark"`))
		})

		It("replaces an existing value", func() {
			Expect(storer.Put(ctx, "theme", []byte(`"dark"`))).To(Succeed())
			Expect(storer.Put(ctx, "theme", []byte(`"light"`))).To(Succeed())

			value, err := storer.Get(ctx, "theme")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(value)).To(Equal(`"light"`))

			keys, err := storer.Keys(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(keys).To(Equal([]string{"theme"}))
		})

		It("returns ErrNotFound for a missing key", func() {
			_, err := storer.Get(ctx, "nonexistent")
			Expect(err).To(HaveOccurred())

			var notFoundErr settings.ErrNotFound
			Expect(err).To(BeAssignableToTypeOf(notFoundErr))
			Expect(err.Error()).To(ContainSubstring("nonexistent"))
		})
	})

	Describe("Delete", func() {
		It("removes a key", func() {
			Expect(storer.Put(ctx, "a", []byte(`1`))).To(Succeed())
			Expect(storer.Delete(ctx, "a")).To(Succeed())

			_, err := storer.Get(ctx, "a")
			Expect(err).To(BeAssignableToTypeOf(settings.ErrNotFound{}))
		})

		It("is a no-op for a missing key", func() {
			Expect(storer.Delete(ctx, "missing")).To(Succeed())
		})
	})

	Describe("Keys", func() {
		It("returns an empty slice for an empty store", func() {
			keys, err := storer.Keys(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(keys).To(BeEmpty())
		})

		It("returns keys in sorted order", func() {
			Expect(storer.Put(ctx, "b", []byte(`1`))).To(Succeed())
			Expect(storer.Put(ctx, "a", []byte(`2`))).To(Succeed())

			keys, err := storer.Keys(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(keys).To(Equal([]string{"a", "b"}))
		})
	})
}

var _ = Describe("MemoryStorer", func() {
	storerBehaviour(func() settings.Storer {
		return settings.NewMemoryStorer()
	})
})

var _ = Describe("SQLiteStorer", func() {
	storerBehaviour(func() settings.Storer {
		s, err := settings.NewSQLiteStorer(":memory:")
		Expect(err).NotTo(HaveOccurred())
		return s
	})

	It("creates the database file and its directory", func() {
		dbPath := filepath.Join(GinkgoT().TempDir(), "nested", "galaxy.db")

		s, err := settings.NewSQLiteStorer(dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()

		_, err = os.Stat(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	It("keeps values across reopen", func() {
		ctx := context.Background()
		dbPath := filepath.Join(GinkgoT().TempDir(), "galaxy.db")

		s, err := settings.NewSQLiteStorer(dbPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Put(ctx, "k", []byte(`{"v":1}`))).To(Succeed())
		Expect(s.Close()).To(Succeed())

		s, err = settings.NewSQLiteStorer(dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()

		value, err := s.Get(ctx, "k")
		Expect(err).NotTo(HaveOccurred())
		Expect(value).To(MatchJSON(`{"v":1}`))
	})
})
