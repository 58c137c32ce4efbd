package protocol

// RequestHeader is written at the front of every outgoing request.
type RequestHeader struct {
	APIKey        APIKeyEnum
	APIVersion    int16
	CorrelationID int32
	ClientID      NullableString
}

func (h RequestHeader) Write(w *Writer) {
	w.Int16(int16(h.APIKey))
	w.Int16(h.APIVersion)
	w.Int32(h.CorrelationID)
	w.NullableString(h.ClientID)
}

// ResponseHeader pairs a response frame with the request that caused it.
type ResponseHeader struct {
	CorrelationID int32
}

func ReadResponseHeader(r *Reader) ResponseHeader {
	res := ResponseHeader{}
	res.CorrelationID = r.Int32()
	return res
}
