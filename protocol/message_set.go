package protocol

/*

Legacy flat message container (magic 0 and 1), the only record format
produce versions 0-8 need on this path. Encode only: parsing message sets
belongs to the fetch side of the protocol.

*/

type MessageSet []MessageBlock

type MessageBlock struct {
	Offset  int64
	Message Message
}

func (r MessageSet) Write(messageVersion int8, w *Writer) {
	for _, block := range r {
		w.Int64(block.Offset)
		mw := NewWriter()
		block.Message.Write(messageVersion, mw)
		md, err := mw.Data()
		if err != nil {
			w.err = err
			return
		}
		w.Int32(int32(len(md)))
		w.RawBytes(md)
	}
}

type Message struct {
	CompressionLevel int
	Attributes       MessageAttributes
	Timestamp        int64
	Key              []byte
	Value            []byte
}

func (r Message) Write(messageVersion int8, w *Writer) {
	mw := NewWriter()

	mw.Int8(messageVersion)
	mw.Int8(int8(r.Attributes))

	if messageVersion >= 1 {
		mw.Int64(r.Timestamp)
	}

	mw.NullableBytes(r.Key)

	if r.Attributes.CompressionCodec() != CompressionNone {
		mw.NullableBytes(mw.Compress(r.Attributes.CompressionCodec(), r.CompressionLevel, r.Value))
	} else {
		mw.NullableBytes(r.Value)
	}

	data, err := mw.Data()
	if err != nil {
		w.err = err
		return
	}

	// CRC over the full message body
	w.CRC32IEEE(data)
	w.RawBytes(data)
}

type MessageAttributes int8

func (a MessageAttributes) CompressionCodec() CompressionCodec {
	return CompressionCodec(int8(a) & compressionCodecMask)
}
func (a MessageAttributes) TimestampType() TimestampType {
	return TimestampType(int8(a) & timestampTypeMask)
}

func NewMessageAttributes(codec CompressionCodec, timestampType TimestampType) MessageAttributes {
	attributes := int8(codec) & compressionCodecMask
	if timestampType == LogAppendTime {
		attributes |= timestampTypeMask
	}
	return MessageAttributes(attributes)
}

// RecordEntry is one key/value pair headed into a message set.
type RecordEntry struct {
	Timestamp int64
	Key       []byte
	Value     []byte
}

// NewMessageSet frames entries for the wire. With a compression codec the
// whole set is encoded once and carried as the value of a single wrapper
// message, which is how the legacy format nests compressed batches.
func NewMessageSet(entries []RecordEntry, messageVersion int8, codec CompressionCodec, level int) (MessageSet, error) {
	set := make(MessageSet, 0, len(entries))
	for index, entry := range entries {
		set = append(set, MessageBlock{
			Offset: int64(index),
			Message: Message{
				Attributes: NewMessageAttributes(CompressionNone, CreateTime),
				Timestamp:  entry.Timestamp,
				Key:        entry.Key,
				Value:      entry.Value,
			},
		})
	}
	if codec == CompressionNone {
		return set, nil
	}

	inner := NewWriter()
	set.Write(messageVersion, inner)
	innerData, err := inner.Data()
	if err != nil {
		return nil, err
	}

	wrapper := MessageSet{
		{
			Offset: int64(len(entries) - 1),
			Message: Message{
				CompressionLevel: level,
				Attributes:       NewMessageAttributes(codec, CreateTime),
				Timestamp:        entries[len(entries)-1].Timestamp,
				Key:              nil,
				Value:            innerData,
			},
		},
	}
	return wrapper, nil
}
