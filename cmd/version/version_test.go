package versioncmder_test

import (
	"bytes"
	"runtime"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	versioncmder "github.com/papercomputeco/forumsearch/cmd/version"
	"github.com/papercomputeco/forumsearch/pkg/utils"
)

var _ = Describe("NewVersionCmd", func() {
	var out *bytes.Buffer

	run := func(args ...string) error {
		cmd := versioncmder.NewVersionCmd()
		cmd.SetOut(out)
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	BeforeEach(func() {
		out = &bytes.Buffer{}
	})

	It("prints build details", func() {
		Expect(run()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("forumsearch " + utils.Version + "\n"))
		Expect(out.String()).To(ContainSubstring("commit: " + utils.Sha))
		Expect(out.String()).To(ContainSubstring("go: " + runtime.Version()))
	})

	It("prints only the version with --short", func() {
		Expect(run("--short")).To(Succeed())
		Expect(out.String()).To(Equal(utils.Version + "\n"))
	})

	It("rejects arguments", func() {
		Expect(run("extra")).NotTo(Succeed())
	})
})
