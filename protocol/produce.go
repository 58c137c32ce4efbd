package protocol

/*

Client side of the produce RPC: requests are encoded, responses decoded,
never the reverse. Field presence per version is driven by ProduceFeatures
so the layouts below stay free of version arithmetic.

v0-v8 request:
ProduceRequest => [TransactionalId] RequiredAcks Timeout [TopicName [Partition MessageSetSize MessageSet]]
  TransactionalId => nullable_string (v3+)
  RequiredAcks => int16
  Timeout => int32
  Partition => int32
  MessageSetSize => int32

*/

type ProduceRequest struct {
	TransactionalID NullableString
	Acks            int16
	TimeoutMs       int32
	Topics          []TopicProduceData
}

type TopicProduceData struct {
	Name       string
	Partitions []PartitionProduceData
}

type PartitionProduceData struct {
	PartitionIndex int32
	Records        MessageSet
}

// Write encodes the full request frame, header included. Topics and
// partitions go out in slice order, so the same input always yields the
// same bytes for a fixed correlation id.
func (r ProduceRequest) Write(features ProduceFeatures, header RequestHeader, w *Writer) error {
	header.Write(w)

	if features.TransactionalID {
		w.NullableString(r.TransactionalID)
	}
	w.Int16(r.Acks)
	w.Int32(r.TimeoutMs)
	w.Int32(int32(len(r.Topics)))
	for _, topic := range r.Topics {
		topic.Write(features, w)
	}

	_, err := w.Data()
	return err
}

func (r TopicProduceData) Write(features ProduceFeatures, w *Writer) {
	w.String(r.Name)
	w.Int32(int32(len(r.Partitions)))
	for _, partition := range r.Partitions {
		partition.Write(features, w)
	}
}

func (r PartitionProduceData) Write(features ProduceFeatures, w *Writer) {
	w.Int32(r.PartitionIndex)
	mw := NewWriter()
	r.Records.Write(features.MessageMagic, mw)
	md, err := mw.Data()
	if err != nil {
		w.err = err
		return
	}
	w.Int32(int32(len(md)))
	w.RawBytes(md)
}

type ProduceResponse struct {
	Responses []TopicProduceResponse
	// ThrottleTimeMs is -1 for version 0, where the field does not exist on
	// the wire; for every later version it is present, possibly zero.
	ThrottleTimeMs int32
}

type TopicProduceResponse struct {
	Name       string
	Partitions []PartitionProduceResponse
}

type PartitionProduceResponse struct {
	PartitionIndex  int32
	ErrorCode       int16
	BaseOffset      int64
	LogAppendTimeMs int64
	LogStartOffset  int64
	RecordErrors    []BatchIndexAndErrorMessage
	ErrorMessage    NullableString
}

type BatchIndexAndErrorMessage struct {
	BatchIndex             int32
	BatchIndexErrorMessage string
}

// ReadProduceResponse decodes a response body (header already consumed).
// The trailing throttle_time_ms is read for every version that carries it,
// zero or not; under-reading it would desynchronize the next response on a
// reused connection, which Reader.Error reports as message_not_finished.
func ReadProduceResponse(features ProduceFeatures, r *Reader) (ProduceResponse, error) {
	res := ProduceResponse{ThrottleTimeMs: -1}
	res.Responses = make([]TopicProduceResponse, r.ArrayLength())
	for index := range res.Responses {
		res.Responses[index] = readTopicProduceResponse(features, r)
	}
	if features.ThrottleTime {
		res.ThrottleTimeMs = r.Int32()
	}
	if err := r.Error(); err != nil {
		return res, err
	}
	return res, nil
}

func readTopicProduceResponse(features ProduceFeatures, r *Reader) TopicProduceResponse {
	res := TopicProduceResponse{}
	res.Name = r.String()
	res.Partitions = make([]PartitionProduceResponse, r.ArrayLength())
	for index := range res.Partitions {
		res.Partitions[index] = readPartitionProduceResponse(features, r)
	}
	return res
}

func readPartitionProduceResponse(features ProduceFeatures, r *Reader) PartitionProduceResponse {
	res := PartitionProduceResponse{
		LogAppendTimeMs: -1,
		LogStartOffset:  -1,
	}
	res.PartitionIndex = r.Int32()
	res.ErrorCode = r.Int16()
	res.BaseOffset = r.Int64()

	if features.LogAppendTime {
		res.LogAppendTimeMs = r.Int64()
	}
	if features.LogStartOffset {
		res.LogStartOffset = r.Int64()
	}
	if features.RecordErrors {
		res.RecordErrors = make([]BatchIndexAndErrorMessage, r.ArrayLength())
		for index := range res.RecordErrors {
			res.RecordErrors[index] = BatchIndexAndErrorMessage{
				BatchIndex:             r.Int32(),
				BatchIndexErrorMessage: r.String(),
			}
		}
		res.ErrorMessage = r.NullableString()
	}
	return res
}
