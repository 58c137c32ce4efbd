package protocol

import (
	"bytes"
	"compress/gzip"
	"sync"

	snappy "github.com/eapache/go-xerial-snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
)

var (
	lz4WriterPool = sync.Pool{
		New: func() interface{} {
			return lz4.NewWriter(nil)
		},
	}

	// only default-level writers are pooled
	gzipWriterPool sync.Pool

	zstdEncoder *zstd.Encoder
	zstdOnce    sync.Once
)

func zstdCompress(dst, src []byte) []byte {
	zstdOnce.Do(func() {
		zstdEncoder, _ = zstd.NewWriter(nil)
	})
	return zstdEncoder.EncodeAll(src, dst)
}

// Compress transforms data with the given codec before it is framed as the
// value of a wrapper message. The produce path is encode only; decompression
// belongs to the fetch side of the protocol and has no place here.
func (w *Writer) Compress(cc CompressionCodec, level int, data []byte) []byte {
	if w.err != nil {
		return nil
	}
	switch cc {
	case CompressionNone:
		return data
	case CompressionGZIP:
		var (
			err    error
			buf    bytes.Buffer
			writer *gzip.Writer
		)
		if level != CompressionLevelDefault {
			writer, err = gzip.NewWriterLevel(&buf, level)
			if err != nil {
				w.err = err
				return nil
			}
		} else {
			writerIntf := gzipWriterPool.Get()
			if writerIntf != nil {
				writer = writerIntf.(*gzip.Writer)
				defer gzipWriterPool.Put(writer)
			} else {
				writer = gzip.NewWriter(nil)
				defer gzipWriterPool.Put(writer)
			}
			writer.Reset(&buf)
		}
		if _, err := writer.Write(data); err != nil {
			w.err = err
			return nil
		}
		if err := writer.Close(); err != nil {
			w.err = err
			return nil
		}
		return buf.Bytes()
	case CompressionSnappy:
		return snappy.Encode(data)
	case CompressionLZ4:
		writer := lz4WriterPool.Get().(*lz4.Writer)
		defer lz4WriterPool.Put(writer)

		var buf bytes.Buffer
		writer.Reset(&buf)
		if _, err := writer.Write(data); err != nil {
			w.err = err
			return nil
		}
		if err := writer.Close(); err != nil {
			w.err = err
			return nil
		}
		return buf.Bytes()
	case CompressionZSTD:
		return zstdCompress(nil, data)
	default:
		w.err = NewProtocolException("invalid_compression", "Invalid compression algorithm specified")
		return nil
	}
}
