package utils

import (
	"context"
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Lazy", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("builds once and reuses the value", func() {
		calls := 0
		l := NewLazy(func(context.Context) (int, error) {
			calls++
			return 42, nil
		})

		for range 3 {
			v, err := l.Get(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(42))
		}
		Expect(calls).To(Equal(1))
	})

	It("retries after a failed build", func() {
		calls := 0
		l := NewLazy(func(context.Context) (string, error) {
			calls++
			if calls == 1 {
				return "", errors.New("not yet")
			}
			return "ready", nil
		})

		_, err := l.Get(ctx)
		Expect(err).To(MatchError("not yet"))

		_, ok := l.Peek()
		Expect(ok).To(BeFalse())

		v, err := l.Get(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal("ready"))
		Expect(calls).To(Equal(2))
	})

	It("builds once under concurrent use", func() {
		var mu sync.Mutex
		calls := 0
		l := NewLazy(func(context.Context) (int, error) {
			mu.Lock()
			defer mu.Unlock()
			calls++
			return calls, nil
		})

		var wg sync.WaitGroup
		for range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer GinkgoRecover()
				v, err := l.Get(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(v).To(Equal(1))
			}()
		}
		wg.Wait()
		Expect(calls).To(Equal(1))
	})
})
