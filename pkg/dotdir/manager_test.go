package dotdir_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/forumsearch/pkg/dotdir"
)

var _ = Describe("dotdir", func() {
	var tmpDir string
	var m *dotdir.Manager

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "dotdir-test-*")
		Expect(err).NotTo(HaveOccurred())

		// Resolve symlinks so paths match filepath.Abs results
		// (e.g. on macOS /var -> /private/var).
		tmpDir, err = filepath.EvalSymlinks(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		m = dotdir.NewManager()
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("NewManager", func() {
		It("creates a new manager", func() {
			Expect(m).ToNot(BeNil())
		})
	})

	Describe("Target", func() {
		It("creates the directory if it doesn't exist", func() {
			dir := filepath.Join(tmpDir, "newdir")
			result, err := m.Target(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(dir))

			info, err := os.Stat(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.IsDir()).To(BeTrue())
		})

		It("returns existing directory without error", func() {
			result, err := m.Target(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(tmpDir))
		})

		It("returns the override dir even when a local .forumsearch dir exists", func() {
			// Create a local .forumsearch dir in the tmpDir
			localDir := filepath.Join(tmpDir, ".forumsearch")
			Expect(os.Mkdir(localDir, 0o755)).To(Succeed())

			// Change to tmpDir so the local dir is discoverable
			origDir, err := os.Getwd()
			Expect(err).NotTo(HaveOccurred())
			Expect(os.Chdir(tmpDir)).To(Succeed())
			DeferCleanup(func() { os.Chdir(origDir) })

			overrideDir := filepath.Join(tmpDir, "override")
			result, err := m.Target(overrideDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(overrideDir))
		})

		It("returns the local .forumsearch dir when it exists and no override is provided", func() {
			// Create a local .forumsearch dir in the tmpDir
			localDir := filepath.Join(tmpDir, ".forumsearch")
			Expect(os.Mkdir(localDir, 0o755)).To(Succeed())

			// Change to tmpDir so the local dir is discoverable
			origDir, err := os.Getwd()
			Expect(err).NotTo(HaveOccurred())
			Expect(os.Chdir(tmpDir)).To(Succeed())
			DeferCleanup(func() { os.Chdir(origDir) })

			result, err := m.Target("")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(localDir))
		})

		It("falls back to the home .forumsearch dir when no local dir or override exists", func() {
			// Ensure we're in a directory without a .forumsearch subdir
			emptyDir := filepath.Join(tmpDir, "empty")
			Expect(os.Mkdir(emptyDir, 0o755)).To(Succeed())

			origDir, err := os.Getwd()
			Expect(err).NotTo(HaveOccurred())
			Expect(os.Chdir(emptyDir)).To(Succeed())
			DeferCleanup(func() { os.Chdir(origDir) })

			GinkgoT().Setenv(dotdir.EnvDir, "")

			// Override HOME so that the real ~/.forumsearch is not touched.
			origHome := os.Getenv("HOME")
			Expect(os.Setenv("HOME", emptyDir)).To(Succeed())
			DeferCleanup(func() { os.Setenv("HOME", origHome) })

			result, err := m.Target("")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(filepath.Join(emptyDir, ".forumsearch")))

			info, err := os.Stat(result)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.IsDir()).To(BeTrue())
		})

		It("prefers FORUMSEARCH_CONFIG_DIR over the home dir", func() {
			emptyDir := filepath.Join(tmpDir, "empty")
			Expect(os.Mkdir(emptyDir, 0o755)).To(Succeed())

			origDir, err := os.Getwd()
			Expect(err).NotTo(HaveOccurred())
			Expect(os.Chdir(emptyDir)).To(Succeed())
			DeferCleanup(func() { os.Chdir(origDir) })

			envDir := filepath.Join(tmpDir, "from-env")
			GinkgoT().Setenv(dotdir.EnvDir, envDir)

			result, err := m.Target("")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(envDir))
			Expect(envDir).To(BeADirectory())
		})
	})

	Describe("InitLocal", func() {
		BeforeEach(func() {
			origDir, err := os.Getwd()
			Expect(err).NotTo(HaveOccurred())
			Expect(os.Chdir(tmpDir)).To(Succeed())
			DeferCleanup(func() { os.Chdir(origDir) })
		})

		It("creates ./.forumsearch once", func() {
			dir, created, err := m.InitLocal()
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeTrue())
			Expect(dir).To(Equal(filepath.Join(tmpDir, dotdir.DirName)))
			Expect(dir).To(BeADirectory())

			again, created, err := m.InitLocal()
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeFalse())
			Expect(again).To(Equal(dir))
		})

		It("refuses a regular file in the way", func() {
			Expect(os.WriteFile(filepath.Join(tmpDir, dotdir.DirName), []byte("x"), 0o600)).To(Succeed())

			_, _, err := m.InitLocal()
			Expect(err).To(MatchError(ContainSubstring("is not a directory")))
		})

		It("reports the local path without creating it", func() {
			path, err := m.LocalPath()
			Expect(err).NotTo(HaveOccurred())
			Expect(path).To(Equal(filepath.Join(tmpDir, dotdir.DirName)))
			Expect(path).NotTo(BeAnExistingFile())
		})
	})
})
