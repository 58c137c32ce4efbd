package protocol

// Client side of the api-versions RPC, used once per connection to find the
// highest produce version both ends speak.

type APIVersionsRequest struct{}

func (r APIVersionsRequest) Write(header RequestHeader, w *Writer) error {
	header.Write(w)
	_, err := w.Data()
	return err
}

type APIVersionsResponse struct {
	ErrorCode      int16
	APIKeys        []APIVersionsResponseKey
	ThrottleTimeMs int32
}

type APIVersionsResponseKey struct {
	APIKey     int16
	MinVersion int16
	MaxVersion int16
}

func ReadAPIVersionsResponse(apiVersion int16, r *Reader) (APIVersionsResponse, error) {
	res := APIVersionsResponse{ThrottleTimeMs: -1}

	res.ErrorCode = r.Int16()
	res.APIKeys = make([]APIVersionsResponseKey, r.ArrayLength())
	for index := range res.APIKeys {
		res.APIKeys[index] = APIVersionsResponseKey{
			APIKey:     r.Int16(),
			MinVersion: r.Int16(),
			MaxVersion: r.Int16(),
		}
	}

	if apiVersion >= 1 {
		res.ThrottleTimeMs = r.Int32()
	}

	if err := r.Error(); err != nil {
		return res, err
	}
	return res, nil
}

// MaxVersionFor returns the highest version of the given API the broker
// advertises, or -1 when the API is missing entirely.
func (r APIVersionsResponse) MaxVersionFor(key APIKeyEnum) int16 {
	for _, api := range r.APIKeys {
		if api.APIKey == int16(key) {
			return api.MaxVersion
		}
	}
	return -1
}
