package protocol

type APIKeyEnum int16

const (
	APIKeyProduce     APIKeyEnum = 0
	APIKeyMetadata    APIKeyEnum = 3
	APIKeyApiVersions APIKeyEnum = 18
)

func (k APIKeyEnum) String() string {
	switch k {
	case APIKeyProduce:
		return "Produce"
	case APIKeyMetadata:
		return "Metadata"
	case APIKeyApiVersions:
		return "ApiVersions"
	default:
		return "Unknown"
	}
}

type CompressionCodec int8

func (cc CompressionCodec) String() string {
	switch cc {
	case 0:
		return "none"
	case 1:
		return "gzip"
	case 2:
		return "snappy"
	case 3:
		return "lz4"
	case 4:
		return "zstd"
	default:
		return ""
	}
}

const (
	//CompressionNone no compression
	CompressionNone CompressionCodec = iota
	//CompressionGZIP compression using GZIP
	CompressionGZIP
	//CompressionSnappy compression using snappy
	CompressionSnappy
	//CompressionLZ4 compression using LZ4
	CompressionLZ4
	//CompressionZSTD compression using ZSTD
	CompressionZSTD

	CompressionLevelDefault      = -1000
	compressionCodecMask    int8 = 0x07
	timestampTypeMask            = 0x08
)

type TimestampType int8

const (
	CreateTime TimestampType = iota
	LogAppendTime
)

func (t TimestampType) String() string {
	switch t {
	case 0:
		return "CreateTime"
	case 1:
		return "LogAppendTime"
	default:
		return ""
	}
}
