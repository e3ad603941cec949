package protocol_test

import (
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/boingscope/protocol"
)

var _ = Describe("DecodePayload()", func() {
	It("joins fragments before decoding", func() {
		Expect(protocol.DecodePayload([]string{"AAAA", "////"})).To(Equal([]byte{0, 0, 0, 0xff, 0xff, 0xff}))
	})

	It("decodes an empty payload to no bytes", func() {
		Expect(protocol.DecodePayload(nil)).To(BeEmpty())
	})

	It("returns ErrBadPayload for invalid base64", func() {
		_, err := protocol.DecodePayload([]string{"AA=", "=AA"})
		Expect(errors.Is(err, protocol.ErrBadPayload)).To(BeTrue())
	})
})
