package env_test

import (
	"context"
	"os"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"go.uber.org/zap/zapcore"

	"github.com/luma/boingscope/internal/env"
)

var _ = Describe("env", func() {
	Describe("LoadConfig()", func() {
		AfterEach(func() {
			os.Unsetenv("BOINGSCOPE_DEVICE")
			os.Unsetenv("BOINGSCOPE_BAUD")
		})

		It("applies defaults", func() {
			conf, err := env.LoadConfig(context.Background())
			Expect(err).To(Succeed())
			Expect(conf.Baud).To(Equal(115200))
			Expect(conf.HTTPAddr).To(Equal("127.0.0.1:7362"))
			Expect(conf.LogLevel).To(Equal("info"))
		})

		It("reads the environment", func() {
			Expect(os.Setenv("BOINGSCOPE_DEVICE", "/dev/ttyACM0")).To(Succeed())
			Expect(os.Setenv("BOINGSCOPE_BAUD", "9600")).To(Succeed())

			conf, err := env.LoadConfig(context.Background())
			Expect(err).To(Succeed())
			Expect(conf.Device).To(Equal("/dev/ttyACM0"))
			Expect(conf.Baud).To(Equal(9600))
		})
	})

	Describe("MakeLogger()", func() {
		It("builds a logger at the requested level", func() {
			log, err := env.MakeLogger("warn")
			Expect(err).To(Succeed())
			Expect(log.Core().Enabled(zapcore.InfoLevel)).To(BeFalse())
			Expect(log.Core().Enabled(zapcore.WarnLevel)).To(BeTrue())
		})

		It("rejects unknown levels", func() {
			_, err := env.MakeLogger("loud")
			Expect(err).To(HaveOccurred())
		})
	})
})
