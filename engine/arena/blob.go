package arena

import (
	"fmt"
	"math"

	"github.com/hujiyo/Mhuixs-sub001/internal/buf"
)

// blobHeader is the length prefix in front of every blob.
const blobHeader = 4

// PutBlob stores data as a length-tagged blob and returns its offset.
func (a *Arena) PutBlob(data []byte) (Offset, error) {
	if uint64(len(data)) > math.MaxUint32-blobHeader {
		return 0, fmt.Errorf("%w: blob of %d bytes", ErrBadOffset, len(data))
	}
	off, err := a.Alloc(blobHeader + len(data))
	if err != nil {
		return 0, err
	}
	b, err := a.Bytes(off, blobHeader+len(data))
	if err != nil {
		return 0, err
	}
	buf.PutU32LE(b, uint32(len(data)))
	copy(b[blobHeader:], data)
	return off, nil
}

// BlobLen returns the payload length of the blob at off.
func (a *Arena) BlobLen(off Offset) (int, error) {
	h, err := a.Bytes(off, blobHeader)
	if err != nil {
		return 0, err
	}
	return int(buf.U32LE(h)), nil
}

// BlobView returns the payload of the blob at off without copying.
// The view is invalidated by growth.
func (a *Arena) BlobView(off Offset) ([]byte, error) {
	n, err := a.BlobLen(off)
	if err != nil {
		return nil, err
	}
	b, err := a.Bytes(off, blobHeader+n)
	if err != nil {
		return nil, err
	}
	return b[blobHeader:], nil
}

// Blob returns a copy of the payload of the blob at off.
func (a *Arena) Blob(off Offset) ([]byte, error) {
	v, err := a.BlobView(off)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// FreeBlob releases the blob at off.
func (a *Arena) FreeBlob(off Offset) error {
	n, err := a.BlobLen(off)
	if err != nil {
		return err
	}
	return a.Free(off, blobHeader+n)
}
