package cmd

import (
	"bytes"
	"context"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/luma/boingscope/client"
	"github.com/luma/boingscope/transport"
	"github.com/luma/boingscope/viewer"
)

var _ = Describe("view", func() {
	Describe("runSessions()", func() {
		AfterEach(func() {
			reconnect = false
		})

		It("fails without a transport", func() {
			err := runSessions(context.Background(), transport.Options{}, client.Options{}, zap.NewNop())
			Expect(err).To(MatchError(transport.ErrNoTransport))
		})

		It("decodes an emulated device until cancelled", func() {
			server := transport.NewServer(transport.ServerOptions{Host: "127.0.0.1"})
			Expect(server.Listen()).To(Succeed())

			serveDone := make(chan error, 1)
			go func() {
				serveDone <- server.Serve(context.Background())
			}()
			defer func() {
				Expect(server.Close()).To(Succeed())
				Eventually(serveDone).Should(Receive(BeNil()))
			}()

			reconnect = true
			reconnectDelay = 10 * time.Millisecond

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			v := viewer.New()
			done := make(chan error, 1)
			go func() {
				done <- runSessions(ctx,
					transport.Options{Addr: server.Addr().String()},
					client.Options{Sink: v},
					zap.NewNop())
			}()

			Eventually(v.Paints, 5*time.Second).Should(BeNumerically(">=", 2))

			data, ok, err := v.PNG()
			Expect(err).To(Succeed())
			Expect(ok).To(BeTrue())
			Expect(bytes.HasPrefix(data, []byte("\x89PNG"))).To(BeTrue())

			cancel()
			Eventually(done).Should(Receive(BeNil()))
		})
	})

	It("registers every subcommand", func() {
		names := []string{}
		for _, c := range RootCmd.Commands() {
			names = append(names, c.Name())
		}
		Expect(names).To(ContainElements("view", "emulate", "ports", "version", "gen"))
	})
})
