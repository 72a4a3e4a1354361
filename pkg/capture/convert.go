package capture

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/asadnewbie/livecap/internal/ring"
	"github.com/asadnewbie/livecap/pkg/pcm"
)

// pushFunc returns the driver-side data callback for the negotiated
// encoding: it walks a raw interleaved sample block, normalizes each sample
// to canonical float and pushes it into the ring. Samples arriving while the
// ring is full are dropped. The dispatch is a closed match over the three
// supported encodings; negotiation rejects everything else up front.
func pushFunc(enc pcm.Encoding, buf *ring.Buffer) (func([]byte), error) {
	switch enc {
	case pcm.Float32:
		return func(data []byte) {
			for len(data) >= 4 {
				bits := binary.LittleEndian.Uint32(data)
				buf.TryPush(pcm.FromFloat32(math.Float32frombits(bits)))
				data = data[4:]
			}
		}, nil
	case pcm.Signed16:
		return func(data []byte) {
			for len(data) >= 2 {
				s := int16(binary.LittleEndian.Uint16(data))
				buf.TryPush(pcm.FromSigned16(s))
				data = data[2:]
			}
		}, nil
	case pcm.Unsigned16:
		return func(data []byte) {
			for len(data) >= 2 {
				buf.TryPush(pcm.FromUnsigned16(binary.LittleEndian.Uint16(data)))
				data = data[2:]
			}
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, enc)
	}
}
